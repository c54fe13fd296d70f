// Package prompttest provides a scripted Prompter for tests.
package prompttest

import (
	"fmt"

	"github.com/tacogips/ionstart/internal/prompt"
)

// Scripted answers questions from a map keyed by question name. Asking a
// question that has no scripted answer is an error, which lets tests assert
// that a prompt never happened.
type Scripted struct {
	// Answers maps question names to string (input/select) or bool (confirm) answers.
	Answers map[string]interface{}
	// NotInteractive makes the prompter behave like prompt.NonInteractive.
	NotInteractive bool
	// Asked records question names in the order they were asked.
	Asked []string
}

// New returns an interactive Scripted prompter.
func New(answers map[string]interface{}) *Scripted {
	if answers == nil {
		answers = map[string]interface{}{}
	}
	return &Scripted{Answers: answers}
}

// Interactive reports whether the prompter pretends to be a terminal.
func (s *Scripted) Interactive() bool { return !s.NotInteractive }

// Input returns the scripted string answer after validation.
func (s *Scripted) Input(q prompt.InputQuestion) (string, error) {
	if s.NotInteractive {
		s.Asked = append(s.Asked, q.Name)
		return prompt.NonInteractive{}.Input(q)
	}
	v, err := s.answer(q.Name)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("prompttest: answer for %q is %T, want string", q.Name, v)
	}
	if q.Validate != nil {
		if err := q.Validate(str); err != nil {
			return "", err
		}
	}
	return str, nil
}

// Confirm returns the scripted bool answer.
func (s *Scripted) Confirm(q prompt.ConfirmQuestion) (bool, error) {
	if s.NotInteractive {
		s.Asked = append(s.Asked, q.Name)
		return prompt.NonInteractive{}.Confirm(q)
	}
	v, err := s.answer(q.Name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("prompttest: answer for %q is %T, want bool", q.Name, v)
	}
	return b, nil
}

// Select returns the scripted value, which must be one of the choices.
func (s *Scripted) Select(q prompt.SelectQuestion) (string, error) {
	if s.NotInteractive {
		s.Asked = append(s.Asked, q.Name)
		return prompt.NonInteractive{}.Select(q)
	}
	v, err := s.answer(q.Name)
	if err != nil {
		return "", err
	}
	str, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("prompttest: answer for %q is %T, want string", q.Name, v)
	}
	for _, c := range q.Choices {
		if c.Value == str {
			return str, nil
		}
	}
	return "", fmt.Errorf("prompttest: %q is not a choice of %q", str, q.Name)
}

// WasAsked reports whether a question with the given name was asked.
func (s *Scripted) WasAsked(name string) bool {
	for _, n := range s.Asked {
		if n == name {
			return true
		}
	}
	return false
}

func (s *Scripted) answer(name string) (interface{}, error) {
	s.Asked = append(s.Asked, name)
	v, ok := s.Answers[name]
	if !ok {
		return nil, fmt.Errorf("prompttest: unexpected question %q", name)
	}
	return v, nil
}
