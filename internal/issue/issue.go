// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"slices"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	JuliaNotFoundId Id = iota + 1
	BuildDirNotFoundId
	ManifestNotFoundId
	ResolutionFailedId
	InstantiationFailedId
	CompileScriptFailedId
	ArtifactNotProducedId
	PublishVerificationFailedId
	InvalidVersionId
	RuntimeBridgeFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the guidance with glamour. An empty stylePath selects the
// "auto" style.
func (i *Issue) Render(stylePath string) (string, error) {
	md := string(i.mdMsg)
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md += "\n\n## See also\n"
		for _, link := range i.docLinks {
			md += "- <" + string(link) + ">\n"
		}
		for _, link := range i.extLinks {
			md += "- <" + string(link) + ">\n"
		}
	}
	if stylePath == "" {
		stylePath = "auto"
	}
	return render(md, stylePath)
}

var (
	render = glamour.Render

	juliaNotFoundIssue = &Issue{
		id: JuliaNotFoundId,
		mdMsg: `
# Julia executable not found!

jlproject needs an installed Julia to resolve dependencies and compile the image.

## Lookup order
1. The ` + "`--julia`" + ` flag or ` + "`julia.executable`" + ` in the config file
2. The ` + "`JULIA`" + ` environment variable (see ` + "`julia.env_var`" + `)
3. ` + "`<dir>/bin/julia`" + ` for each entry of ` + "`julia.search_paths`" + `
4. Your ` + "`PATH`" + `

## Things you can try:
~~~
$ jlproject julia --julia /opt/julia-1.10/bin/julia
~~~`,
		extLinks: []HttpLink{"https://julialang.org/downloads/"},
	}

	buildDirNotFoundIssue = &Issue{
		id: BuildDirNotFoundId,
		mdMsg: `
# Build directory not found!

The system image build directory does not exist.

## Things you can try:
- Check the ` + "`--dir`" + ` flag or ` + "`project.build_dir`" + ` in your config
- Create the directory and add a Project.toml and a compile script to it`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No project manifest found!

The build directory must contain a ` + "`Project.toml`" + ` (or ` + "`JuliaProject.toml`" + `)
that declares the packages baked into the image.

## Example:
~~~toml
name = "MySysImage"

[deps]
PackageCompiler = "9b87118b-4619-50d2-8e1e-99f35a4d4d9d"
~~~`,
		extLinks: []HttpLink{"https://pkgdocs.julialang.org/v1/toml-files/"},
	}

	resolutionFailedIssue = &Issue{
		id: ResolutionFailedId,
		mdMsg: `
# Dependency resolution failed!

Resolving the declared dependencies failed, and so did the retry after updating
the registry and packages.

## Things you can try:
- Check the ` + "`[compat]`" + ` bounds in Project.toml
- Make sure the package registry is reachable from this machine
- Run ` + "`jlproject clean`" + ` and try again`,
	}

	instantiationFailedIssue = &Issue{
		id: InstantiationFailedId,
		mdMsg: `
# Instantiation failed!

The dependencies were resolved but could not be downloaded or built.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see the Julia output
- Check network access and the package depot (` + "`julia.depot`" + `)`,
	}

	compileScriptFailedIssue = &Issue{
		id: CompileScriptFailedId,
		mdMsg: `
# The compile script failed!

The build directory must contain the compile script (default
` + "`compile_julia_project.jl`" + `), and the script must finish without error.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see the script output
- Check ` + "`project.compile_script`" + ` in your config`,
	}

	artifactNotProducedIssue = &Issue{
		id: ArtifactNotProducedId,
		mdMsg: `
# No system image was produced!

The compile script finished, but the expected intermediate image was not written.

## Things you can try:
- Make sure the script writes ` + "`sys_julia_project.<ext>`" + ` into its working directory
- Check the script output with ` + "`--verbose`" + ``,
	}

	publishVerificationFailedIssue = &Issue{
		id: PublishVerificationFailedId,
		mdMsg: `
# Publishing the system image failed!

The compiled image could not be moved to its versioned name, or it was not
found there afterwards.

## Things you can try:
- Check free space and permissions in the build directory
- Make sure no other process holds the target file open`,
	}

	invalidVersionIssue = &Issue{
		id: InvalidVersionId,
		mdMsg: `
# Julia version unknown!

The image file name encodes the Julia version, so a version is required.

## Things you can try:
- Pass ` + "`--julia-version 1.10.4`" + `
- Set ` + "`julia.version`" + ` in your config
- Make sure ` + "`julia --version`" + ` works so the version can be detected`,
	}

	runtimeBridgeFailedIssue = &Issue{
		id: RuntimeBridgeFailedId,
		mdMsg: `
# The Julia session failed!

A session step (activating an environment, changing directory or evaluating
setup code) failed.

## Things you can try:
- Re-run with ` + "`--verbose`" + ` to see which step failed
- Check that the Julia executable runs on its own`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try:
- Check the file for CUE syntax errors
- Compare it with the defaults:
~~~
$ jlproject config dump
~~~
- Create a fresh config file:
~~~
$ jlproject config init
~~~`,
	}

	issues = map[Id]*Issue{
		juliaNotFoundIssue.Id():             juliaNotFoundIssue,
		buildDirNotFoundIssue.Id():          buildDirNotFoundIssue,
		manifestNotFoundIssue.Id():          manifestNotFoundIssue,
		resolutionFailedIssue.Id():          resolutionFailedIssue,
		instantiationFailedIssue.Id():       instantiationFailedIssue,
		compileScriptFailedIssue.Id():       compileScriptFailedIssue,
		artifactNotProducedIssue.Id():       artifactNotProducedIssue,
		publishVerificationFailedIssue.Id(): publishVerificationFailedIssue,
		invalidVersionIssue.Id():            invalidVersionIssue,
		runtimeBridgeFailedIssue.Id():       runtimeBridgeFailedIssue,
		configLoadFailedIssue.Id():          configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}
