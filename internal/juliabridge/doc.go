// SPDX-License-Identifier: MPL-2.0

// Package juliabridge drives a Julia executable as the runtime behind the
// provisioning state machine.
//
// Each operation runs one short-lived julia process. ExecBridge keeps the
// session state (working directory, active environment and the setup
// expressions evaluated so far) and replays it on every invocation, so the
// sequence of calls behaves like a single embedded session:
//
//	exe, err := juliabridge.NewFinder().Find()
//	if err != nil {
//		return err
//	}
//	bridge := juliabridge.NewExecBridge(exe, juliabridge.WithDepot("/opt/depot"))
//	version, err := bridge.Version(ctx)
package juliabridge
