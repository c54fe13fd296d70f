// Package shelltest provides a recording shell.Runner for tests.
package shelltest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tacogips/ionstart/internal/shell"
)

// Call is one recorded invocation.
type Call struct {
	Name string
	Args []string
	Dir  string
	Env  []string
}

// String renders the call like a command line.
func (c Call) String() string {
	return shell.FormatCommand(c.Name, c.Args)
}

// Recorder records commands instead of running them.
type Recorder struct {
	// Calls lists every Run and Output invocation in order.
	Calls []Call
	// Fail maps a command-line prefix (e.g. "git commit") to the error returned.
	Fail map[string]error
	// Outputs maps a command-line prefix to the stdout returned by Output.
	Outputs map[string]string
	// Missing lists executables LookPath reports as absent.
	Missing []string
	// OnRun is invoked for every successful Run, e.g. to create files a real
	// command would have produced.
	OnRun func(c Call) error
	// AlterPath is the last function passed to SetAlterPath.
	AlterPath func(string) string
}

// New returns an empty Recorder.
func New() *Recorder {
	return &Recorder{Fail: map[string]error{}, Outputs: map[string]string{}}
}

func (r *Recorder) match(table map[string]string, c Call) (string, bool) {
	line := c.String()
	for prefix, v := range table {
		if strings.HasPrefix(line, prefix) {
			return v, true
		}
	}
	return "", false
}

func (r *Recorder) failure(c Call) error {
	line := c.String()
	for prefix, err := range r.Fail {
		if strings.HasPrefix(line, prefix) {
			return err
		}
	}
	return nil
}

// SetAlterPath records fn.
func (r *Recorder) SetAlterPath(fn func(string) string) { r.AlterPath = fn }

// Run records the call and returns a scripted failure, if any.
func (r *Recorder) Run(ctx context.Context, name string, args []string, opts shell.RunOptions) error {
	c := Call{Name: name, Args: append([]string(nil), args...), Dir: opts.Dir, Env: opts.Env}
	r.Calls = append(r.Calls, c)
	if err := r.failure(c); err != nil {
		return err
	}
	if r.OnRun != nil {
		return r.OnRun(c)
	}
	return nil
}

// Output records the call and returns scripted output.
func (r *Recorder) Output(ctx context.Context, name string, args []string, opts shell.RunOptions) (string, error) {
	c := Call{Name: name, Args: append([]string(nil), args...), Dir: opts.Dir, Env: opts.Env}
	r.Calls = append(r.Calls, c)
	if err := r.failure(c); err != nil {
		return "", err
	}
	out, _ := r.match(r.Outputs, c)
	return out, nil
}

// LookPath reports every executable as present unless listed in Missing.
func (r *Recorder) LookPath(name string) (string, error) {
	for _, m := range r.Missing {
		if m == name {
			return "", fmt.Errorf("exec: %q: executable file not found in $PATH", name)
		}
	}
	return filepath.Join(string(os.PathSeparator)+"usr", "bin", name), nil
}

// Commands returns the recorded command lines.
func (r *Recorder) Commands() []string {
	out := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		out = append(out, c.String())
	}
	return out
}

// Ran reports whether a command line starting with prefix was recorded.
func (r *Recorder) Ran(prefix string) bool {
	for _, c := range r.Calls {
		if strings.HasPrefix(c.String(), prefix) {
			return true
		}
	}
	return false
}

// Count returns how many recorded command lines start with prefix.
func (r *Recorder) Count(prefix string) int {
	n := 0
	for _, c := range r.Calls {
		if strings.HasPrefix(c.String(), prefix) {
			n++
		}
	}
	return n
}
