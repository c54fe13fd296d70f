// Package prompt defines the interactive question capability used by the
// creation pipeline, independent of the terminal library rendering it.
package prompt

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNonInteractive is returned when an answer is required but prompting is disabled.
var ErrNonInteractive = errors.New("input required but prompting is disabled (non-interactive mode)")

// Choice is one option of a SelectQuestion.
type Choice struct {
	// Value is returned when the choice is selected.
	Value string
	// Label is the text shown in the list. Defaults to Value.
	Label string
}

// InputQuestion asks for free text.
type InputQuestion struct {
	Name     string
	Message  string
	Default  string
	Validate func(string) error
}

// ConfirmQuestion asks a yes/no question.
type ConfirmQuestion struct {
	Name    string
	Message string
	Default bool
}

// SelectQuestion asks the user to pick exactly one choice.
type SelectQuestion struct {
	Name    string
	Message string
	Choices []Choice
	// Default is the Value pre-selected in the list.
	Default string
}

// Prompter asks questions. Implementations must be safe to call only from the
// pipeline goroutine.
type Prompter interface {
	// Interactive reports whether a human can answer questions.
	Interactive() bool
	Input(q InputQuestion) (string, error)
	Confirm(q ConfirmQuestion) (bool, error)
	Select(q SelectQuestion) (string, error)
}

// NonInteractive answers without a terminal. Confirm returns the question
// default, Input returns a non-empty valid default, everything else fails
// with ErrNonInteractive.
type NonInteractive struct{}

// Interactive always returns false.
func (NonInteractive) Interactive() bool { return false }

// Input returns the default when one is set and passes validation.
func (NonInteractive) Input(q InputQuestion) (string, error) {
	if q.Default == "" {
		return "", fmt.Errorf("%s: %w", questionLabel(q.Name, q.Message), ErrNonInteractive)
	}
	if q.Validate != nil {
		if err := q.Validate(q.Default); err != nil {
			return "", fmt.Errorf("%s: %w", questionLabel(q.Name, q.Message), err)
		}
	}
	return q.Default, nil
}

// Confirm returns the question default.
func (NonInteractive) Confirm(q ConfirmQuestion) (bool, error) {
	return q.Default, nil
}

// Select never guesses.
func (NonInteractive) Select(q SelectQuestion) (string, error) {
	return "", fmt.Errorf("%s: %w", questionLabel(q.Name, q.Message), ErrNonInteractive)
}

func questionLabel(name, message string) string {
	if name != "" {
		return name
	}
	return strings.TrimSuffix(message, ":")
}

// Required rejects empty or whitespace-only answers.
func Required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("value is required")
	}
	return nil
}
