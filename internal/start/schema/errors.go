package schema

import "errors"

// ErrDeclined is returned when the user declines a confirmation that guards
// the rest of the run.
var ErrDeclined = errors.New("declined by user")

// ValidationError reports an invalid input value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// GitRequiredError reports that git is missing for an operation that needs it.
type GitRequiredError struct {
	Reason string
	Err    error
}

func (e *GitRequiredError) Error() string {
	return "Git CLI not found on your PATH.\n" + e.Reason
}

func (e *GitRequiredError) Unwrap() error {
	return e.Err
}
