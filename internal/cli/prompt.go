package cli

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/tacogips/ionstart/internal/prompt"
)

// ErrInterrupted is returned when the user aborts a prompt with Ctrl-C.
var ErrInterrupted = errors.New("interrupted")

// SurveyPrompter asks questions on the terminal.
type SurveyPrompter struct {
	opts []survey.AskOpt
}

// NewSurveyPrompter creates a prompter on the process terminal.
func NewSurveyPrompter(opts ...survey.AskOpt) *SurveyPrompter {
	return &SurveyPrompter{opts: opts}
}

// Interactive always returns true.
func (p *SurveyPrompter) Interactive() bool { return true }

// Input asks for free text.
func (p *SurveyPrompter) Input(q prompt.InputQuestion) (string, error) {
	var result string
	opts := p.opts
	if q.Validate != nil {
		opts = append(append([]survey.AskOpt(nil), opts...), survey.WithValidator(stringValidator(q.Validate)))
	}
	err := survey.AskOne(&survey.Input{Message: q.Message, Default: q.Default}, &result, opts...)
	return result, wrapSurveyError(err)
}

// Confirm asks a yes/no question.
func (p *SurveyPrompter) Confirm(q prompt.ConfirmQuestion) (bool, error) {
	var result bool
	err := survey.AskOne(&survey.Confirm{Message: q.Message, Default: q.Default}, &result, p.opts...)
	return result, wrapSurveyError(err)
}

// Select asks for one of the choices and returns its value.
func (p *SurveyPrompter) Select(q prompt.SelectQuestion) (string, error) {
	labels, values := selectOptions(q.Choices)
	if len(labels) == 0 {
		return "", fmt.Errorf("%s: no choices", q.Name)
	}

	sel := &survey.Select{Message: q.Message, Options: labels, PageSize: 10}
	for i, v := range values {
		if v == q.Default {
			sel.Default = labels[i]
		}
	}

	var index int
	if err := survey.AskOne(sel, &index, p.opts...); err != nil {
		return "", wrapSurveyError(err)
	}
	return values[index], nil
}

// selectOptions splits choices into display labels and returned values.
func selectOptions(choices []prompt.Choice) (labels, values []string) {
	for _, c := range choices {
		label := c.Label
		if label == "" {
			label = c.Value
		}
		labels = append(labels, label)
		values = append(values, c.Value)
	}
	return labels, values
}

// stringValidator adapts a string validator to survey.
func stringValidator(fn func(string) error) survey.Validator {
	return func(ans interface{}) error {
		s, ok := ans.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", ans)
		}
		return fn(s)
	}
}

func wrapSurveyError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrInterrupted
	}
	return err
}
