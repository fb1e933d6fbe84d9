// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jlproject/jlproject/internal/issue"
	"github.com/jlproject/jlproject/internal/juliabridge"
	"github.com/jlproject/jlproject/internal/provision"

	"github.com/charmbracelet/log"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled message (if present) and the issue guidance before the command exits.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
// All construction sites must use this instead of struct literals.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			log.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// provisionIssues maps provisioning error kinds to catalog entries.
var provisionIssues = map[error]issue.Id{
	provision.ErrMissingDirectory:          issue.BuildDirNotFoundId,
	provision.ErrMissingManifest:           issue.ManifestNotFoundId,
	provision.ErrResolutionFailed:          issue.ResolutionFailedId,
	provision.ErrInstantiationFailed:       issue.InstantiationFailedId,
	provision.ErrCompileScriptFailed:       issue.CompileScriptFailedId,
	provision.ErrArtifactNotProduced:       issue.ArtifactNotProducedId,
	provision.ErrPublishVerificationFailed: issue.PublishVerificationFailedId,
	provision.ErrInvalidVersion:            issue.InvalidVersionId,
	provision.ErrRuntimeBridge:             issue.RuntimeBridgeFailedId,
}

// classifyError wraps err into a ServiceError with the matching issue entry.
// Errors that are already ServiceErrors are returned unchanged.
func classifyError(err error, verbose bool) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}
	return newServiceError(err, issueFor(err), styledDetails(err, verbose))
}

func issueFor(err error) issue.Id {
	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.Issue != 0 {
		return ae.Issue
	}
	if kind := provision.KindOf(err); kind != nil {
		return provisionIssues[kind]
	}
	if errors.Is(err, juliabridge.ErrJuliaNotFound) {
		return issue.JuliaNotFoundId
	}
	if errors.Is(err, provision.ErrInvalidVersion) || errors.Is(err, juliabridge.ErrUnparseableVersion) {
		return issue.InvalidVersionId
	}
	if errors.Is(err, juliabridge.ErrCommandFailed) {
		return issue.RuntimeBridgeFailedId
	}
	return 0
}

// styledDetails renders the parts of err the error line itself does not show:
// the suggestions of an ActionableError and, in verbose mode, the error chain.
func styledDetails(err error, verbose bool) string {
	var sb strings.Builder

	var ae *issue.ActionableError
	if errors.As(err, &ae) && ae.HasSuggestions() {
		sb.WriteString(WarningStyle.Render("Suggestions:"))
		sb.WriteString("\n")
		for _, s := range ae.Suggestions {
			fmt.Fprintf(&sb, "  • %s\n", s)
		}
	}

	if verbose {
		var lines []string
		for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
			lines = append(lines, e.Error())
		}
		var pe *provision.Error
		if errors.As(err, &pe) && pe.Err != nil {
			lines = append(lines, pe.Err.Error())
		}
		if len(lines) > 0 {
			sb.WriteString(VerboseStyle.Render("Error chain:"))
			sb.WriteString("\n")
			for i, l := range lines {
				fmt.Fprintf(&sb, "  %d. %s\n", i+1, VerboseStyle.Render(l))
			}
		}
	}
	return sb.String()
}

// fail renders err for the user and converts it into an ExitError.
func (a *App) fail(err error, verbose bool) error {
	if err == nil {
		return nil
	}
	svcErr := classifyError(err, verbose)
	renderServiceError(a.stderr, svcErr)
	return &ExitError{Code: 1, Err: svcErr}
}
