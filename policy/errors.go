package policy

import (
	"errors"
	"fmt"
)

// Failure classes shared across the drafting and persistence flow. Callers
// classify with errors.Is so wrapped context survives the boundary.
var (
	// ErrInvalidInput marks a caller error detected before any network
	// call is attempted. Never retried automatically.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable marks a transport or availability failure of
	// an external AI boundary. The draft is left untouched; the operator
	// may retry.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrMalformedResponse marks an AI response that failed schema
	// validation. The draft is left untouched.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrPermissionDenied marks a repository-level authorization failure.
	// Surfaced verbatim, never papered over.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrTranslationFailed aborts the entire create operation. The draft,
	// including any local auto-save, is preserved so no work is lost.
	ErrTranslationFailed = errors.New("translation failed")
)

// InvalidInputf wraps ErrInvalidInput with a formatted detail message.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidInput}, args...)...)
}

// UserMessage maps an error to a short operator-facing message that
// distinguishes "fix your input" from "try again" from "no permission".
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "The input is incomplete or invalid. Fix the highlighted fields and try again."
	case errors.Is(err, ErrPermissionDenied):
		return "You do not have permission to perform this action."
	case errors.Is(err, ErrTranslationFailed):
		return "Translation failed; the policy was not created. Your draft is preserved, try again."
	case errors.Is(err, ErrMalformedResponse):
		return "The AI service returned an unusable response. Try again."
	case errors.Is(err, ErrProviderUnavailable):
		return "The AI service is temporarily unavailable. Try again in a moment."
	default:
		return "Something went wrong. Try again."
	}
}
