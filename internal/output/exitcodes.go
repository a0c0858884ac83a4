package output

import "errors"

// Process exit codes:
// 0 = Success
// 1 = User error (bad args, unknown workflow, not initialized)
// 2 = System error (I/O failure, unreadable bundle content)
// 3 = Conflict (workflow already active, step already saved)
const (
	ExitSuccess     = 0
	ExitUserError   = 1
	ExitSystemError = 2
	ExitConflict    = 3
)

// Kind classifies a failure reported by the orchestration core.
type Kind string

// Error kinds reported at the tool and CLI boundary.
const (
	KindNotInitialized           Kind = "not_initialized"
	KindAlreadyInitialized       Kind = "already_initialized"
	KindUnknownIdentifier        Kind = "unknown_identifier"
	KindPreconditionViolation    Kind = "precondition_violation"
	KindContentError             Kind = "content_error"
	KindStructuralIncompleteness Kind = "structural_incompleteness"
	KindSystem                   Kind = "system"
	KindUsage                    Kind = "usage"
)

// exitCodeFor maps a kind to the process exit code.
func exitCodeFor(kind Kind) int {
	switch kind {
	case KindAlreadyInitialized, KindPreconditionViolation:
		return ExitConflict
	case KindContentError, KindStructuralIncompleteness, KindSystem:
		return ExitSystemError
	default:
		return ExitUserError
	}
}

// ExitError is an error that carries a kind and an exit code for the CLI.
type ExitError struct {
	Code    int
	Kind    Kind
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/errors.As support.
func (e *ExitError) Unwrap() error {
	return e.Cause
}

// NewError creates an error of the given kind.
func NewError(kind Kind, message string) *ExitError {
	return &ExitError{Code: exitCodeFor(kind), Kind: kind, Message: message}
}

// NewErrorWithCause creates an error of the given kind wrapping cause.
func NewErrorWithCause(kind Kind, message string, cause error) *ExitError {
	return &ExitError{Code: exitCodeFor(kind), Kind: kind, Message: message, Cause: cause}
}

// NewUserError creates an error for bad command-line usage (exit code 1).
func NewUserError(message string) *ExitError {
	return NewError(KindUsage, message)
}

// NewSystemErrorWithCause creates a system error wrapping an underlying cause.
func NewSystemErrorWithCause(message string, cause error) *ExitError {
	return NewErrorWithCause(KindSystem, message, cause)
}

// NotInitialized reports an operation against a project without state.
func NotInitialized(projectPath string) *ExitError {
	return NewError(KindNotInitialized,
		"project not initialized at "+projectPath+". Run `bmad_init_project` first")
}

// UnknownIdentifier reports an unknown workflow or agent id.
func UnknownIdentifier(message string) *ExitError {
	return NewError(KindUnknownIdentifier, message)
}

// PreconditionViolation reports an operation whose preconditions do not hold.
func PreconditionViolation(message string) *ExitError {
	return NewError(KindPreconditionViolation, message)
}

// ContentError reports missing, unreadable or malformed bundle content.
func ContentError(message string, cause error) *ExitError {
	return NewErrorWithCause(KindContentError, message, cause)
}

// StructuralIncompleteness reports missing project scaffolding.
func StructuralIncompleteness(message string) *ExitError {
	return NewError(KindStructuralIncompleteness, message)
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil, ExitUserError for non-ExitError errors.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitUserError
}

// KindOf returns the kind carried by err, or KindSystem for foreign errors.
func KindOf(err error) Kind {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Kind
	}
	return KindSystem
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
