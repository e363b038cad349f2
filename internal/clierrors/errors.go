// Package clierrors turns pipeline errors into user-facing messages and
// process exit codes.
//
// Every error returned by a command is passed through Classify, which maps
// the domain sentinel in its chain to a UserError:
//
//	Error: Another lexrag instance is running
//	Cause: another instance is running: held by pid 4121 (/home/u/.lexrag/data/lexrag.pid)
//	Fix:   Wait for it to finish, or stop that process
package clierrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/custodia-labs/lexrag/internal/core/domain"
)

// Exit codes for different error categories.
const (
	ExitSuccess  = 0
	ExitConfig   = 1
	ExitStorage  = 2
	ExitNetwork  = 3
	ExitInput    = 4
	ExitNotFound = 6
	ExitLocked   = 7

	// ExitInterrupted follows the shell convention for SIGINT.
	ExitInterrupted = 130

	// ExitInternal signals a bug that should be reported.
	ExitInternal = 10
)

// UserError is an error with a cause and a suggested fix.
type UserError struct {
	Message  string
	Cause    string
	Fix      string
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *UserError) Unwrap() error {
	return e.Err
}

// New creates a UserError.
func New(code int, msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: code, Err: err}
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format renders the error for a terminal. NO_COLOR disables colour.
func (e *UserError) Format(noColor bool) string {
	// Save and restore global color state to avoid side effects
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}
	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}
	return out.String()
}

// Classify maps err to a UserError. An existing UserError in the chain is
// returned as is. Nil maps to nil.
func Classify(err error) *UserError {
	if err == nil {
		return nil
	}
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}

	cause := err.Error()
	switch {
	case errors.Is(err, context.Canceled):
		return New(ExitInterrupted, "Interrupted", "", "", err)
	case errors.Is(err, domain.ErrInstanceLocked):
		return New(ExitLocked, "Another lexrag instance is running", cause,
			"Wait for it to finish, or stop that process", err)
	case errors.Is(err, domain.ErrConfig):
		return New(ExitConfig, "Invalid configuration", cause,
			"Check 'lexrag settings show' and your .env file", err)
	case errors.Is(err, domain.ErrDimensionMismatch):
		return New(ExitConfig, "Embedding dimensions do not match the collection", cause,
			"Run 'lexrag run --full' to re-ingest the sources and rebuild the collection", err)
	case errors.Is(err, domain.ErrNothingStaged):
		return New(ExitInput, "Nothing staged to rebuild from", cause,
			"Run 'lexrag run --full' to re-ingest the sources and rebuild the collection", err)
	case errors.Is(err, domain.ErrStorage):
		return New(ExitStorage, "Local storage failed", cause,
			"Check disk space and permissions of the data directory", err)
	case errors.Is(err, domain.ErrEmbeddingUnavailable),
		errors.Is(err, domain.ErrLLMUnavailable),
		errors.Is(err, domain.ErrVectorStoreUnavailable),
		errors.Is(err, domain.ErrRateLimited):
		return New(ExitNetwork, "A required service is unavailable", cause,
			"Check that the embedding, completion and vector services are reachable", err)
	case errors.Is(err, domain.ErrCollectionNotFound):
		return New(ExitNotFound, "Vector collection not found", cause,
			"Run 'lexrag index' to build it", err)
	case errors.Is(err, domain.ErrNotFound):
		return New(ExitNotFound, "Not found", cause, "", err)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrParse):
		return New(ExitInput, "Invalid input", cause, "", err)
	default:
		return New(ExitInternal, "Unexpected error", cause,
			"Re-run with --verbose and report the output", err)
	}
}

// Report writes the classified error to w and returns its exit code.
func Report(w io.Writer, err error, noColor bool) int {
	ue := Classify(err)
	if ue == nil {
		return ExitSuccess
	}
	fmt.Fprint(w, ue.Format(noColor))
	return ue.ExitCode
}
