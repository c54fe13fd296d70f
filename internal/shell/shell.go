// Package shell runs external tooling (git, package managers, framework CLIs).
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kballard/go-shellquote"

	"github.com/tacogips/ionstart/internal/debug"
)

var log = debug.New("shell")

// RunOptions configures a subprocess.
type RunOptions struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Stdin, Stdout and Stderr default to the process streams when Inherit is set,
	// and to nothing otherwise.
	Inherit bool
	// Quiet suppresses the "> command" echo.
	Quiet bool
	// Env holds extra KEY=VALUE pairs added to the process environment.
	Env []string
}

// Runner executes commands.
type Runner interface {
	// Run executes a command and waits for it to exit.
	Run(ctx context.Context, name string, args []string, opts RunOptions) error
	// Output executes a command and returns its trimmed standard output.
	Output(ctx context.Context, name string, args []string, opts RunOptions) (string, error)
	// LookPath resolves an executable using the runner's PATH.
	LookPath(name string) (string, error)
}

// ExitError reports a command that could not run or exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Stderr  string
	Err     error
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command failed: %s", e.Command)
	if e.Code > 0 {
		msg = fmt.Sprintf("%s (exit code %d)", msg, e.Code)
	}
	if e.Stderr != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Stderr)
	}
	if e.Err != nil && e.Code <= 0 {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// Shell is the os/exec backed Runner.
type Shell struct {
	mu        sync.RWMutex
	alterPath func(string) string
	echo      io.Writer
	stdout    io.Writer
	stderr    io.Writer
	stdin     io.Reader
}

// New creates a Shell that echoes commands to echo (may be nil).
func New(echo io.Writer) *Shell {
	return &Shell{
		echo:   echo,
		stdout: os.Stdout,
		stderr: os.Stderr,
		stdin:  os.Stdin,
	}
}

// SetAlterPath installs a function applied to PATH for every spawned command.
func (s *Shell) SetAlterPath(fn func(string) string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alterPath = fn
}

func (s *Shell) path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := os.Getenv("PATH")
	if s.alterPath != nil {
		p = s.alterPath(p)
	}
	return p
}

func (s *Shell) command(ctx context.Context, name string, args []string, opts RunOptions) (*exec.Cmd, error) {
	p := s.path()
	bin, err := lookPathIn(name, p)
	if err != nil {
		return nil, &ExitError{Command: FormatCommand(name, args), Code: -1, Err: err}
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = opts.Dir
	cmd.Env = append(append(os.Environ(), "PATH="+p), opts.Env...)
	return cmd, nil
}

// Run executes a command and waits for it to exit.
func (s *Shell) Run(ctx context.Context, name string, args []string, opts RunOptions) error {
	cmd, err := s.command(ctx, name, args, opts)
	if err != nil {
		return err
	}

	display := FormatCommand(name, args)
	if !opts.Quiet && s.echo != nil {
		fmt.Fprintf(s.echo, "> %s\n", display)
	}
	log.Printf("run %s (cwd=%s)", display, opts.Dir)

	var stderr bytes.Buffer
	if opts.Inherit {
		cmd.Stdin = s.stdin
		cmd.Stdout = s.stdout
		cmd.Stderr = s.stderr
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Run(); err != nil {
		return toExitError(display, err, stderr.String())
	}
	return nil
}

// Output executes a command and returns its trimmed standard output.
func (s *Shell) Output(ctx context.Context, name string, args []string, opts RunOptions) (string, error) {
	cmd, err := s.command(ctx, name, args, opts)
	if err != nil {
		return "", err
	}

	display := FormatCommand(name, args)
	log.Printf("output %s (cwd=%s)", display, opts.Dir)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", toExitError(display, err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

// LookPath resolves an executable using the altered PATH.
func (s *Shell) LookPath(name string) (string, error) {
	return lookPathIn(name, s.path())
}

func toExitError(display string, err error, stderr string) error {
	exitErr := &ExitError{Command: display, Code: -1, Stderr: strings.TrimSpace(stderr), Err: err}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		exitErr.Code = ee.ExitCode()
	}
	return exitErr
}

// lookPathIn resolves name against an explicit PATH value.
func lookPathIn(name, pathEnv string) (string, error) {
	if strings.ContainsRune(name, filepath.Separator) {
		return exec.LookPath(name)
	}
	for _, dir := range filepath.SplitList(pathEnv) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, name)
		if p, err := exec.LookPath(candidate); err == nil {
			return p, nil
		}
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// FormatCommand renders a command line with shell quoting for display.
func FormatCommand(name string, args []string) string {
	return shellquote.Join(append([]string{name}, args...)...)
}

// PrependNodeModulesBin returns pathEnv with the project's node_modules/.bin
// in front, so locally installed tooling wins over global installs.
func PrependNodeModulesBin(projectDir, pathEnv string) string {
	bin := filepath.Join(projectDir, "node_modules", ".bin")
	if pathEnv == "" {
		return bin
	}
	return bin + string(os.PathListSeparator) + pathEnv
}
