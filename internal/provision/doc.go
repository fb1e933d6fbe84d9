// SPDX-License-Identifier: MPL-2.0

// Package provision drives the compilation of a Julia system image for a
// project and publishes the result under a version-qualified name.
//
// The main entry point is Provisioner. It talks to Julia only through the
// RuntimeBridge interface, so the same state machine runs against a real
// julia subprocess (see internal/juliabridge) or a test double:
//
//	cfg, err := provision.NewProjectConfig("demo", "/abs/path/sys_image",
//		provision.WithRuntimeVersion("1.8.0"))
//	p := provision.NewProvisioner(cfg, bridge)
//	err = p.Compile(ctx)
//	// /abs/path/sys_image/sys_demo-1.8.0.so now exists
//
// Compile and Update always restore the bridge's working directory and active
// environment before returning, whether they succeeded or failed.
//
// A build directory must not be provisioned by two Compile calls at once; the
// lock manifest and the fixed-name compiled image are not guarded.
package provision
