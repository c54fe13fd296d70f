// Package git wraps the git executable.
package git

import (
	"context"
	"errors"

	"github.com/tacogips/ionstart/internal/debug"
	"github.com/tacogips/ionstart/internal/shell"
)

var log = debug.New("git")

// ErrNotInstalled is returned when git is not on PATH.
var ErrNotInstalled = errors.New("git CLI not found on your PATH")

// InstallationDocs points users at git installation instructions.
const InstallationDocs = "https://git-scm.com/book/en/v2/Getting-Started-Installing-Git"

// Client runs git subcommands through a shell.Runner.
type Client struct {
	runner shell.Runner
}

// New creates a Client.
func New(runner shell.Runner) *Client {
	return &Client{runner: runner}
}

// IsInstalled reports whether git can be executed.
func (c *Client) IsInstalled(ctx context.Context) bool {
	if _, err := c.runner.LookPath("git"); err != nil {
		log.Printf("git not found: %v", err)
		return false
	}
	version, err := c.runner.Output(ctx, "git", []string{"--version"}, shell.RunOptions{})
	if err != nil {
		log.Printf("git --version failed: %v", err)
		return false
	}
	log.Printf("found %s", version)
	return true
}

// TopLevel returns the root of the repository enclosing dir, or "" when dir
// is not inside a repository.
func (c *Client) TopLevel(ctx context.Context, dir string) string {
	out, err := c.runner.Output(ctx, "git", []string{"rev-parse", "--show-toplevel"}, shell.RunOptions{Dir: dir})
	if err != nil {
		return ""
	}
	return out
}

// Clone clones url into dir, streaming progress to the terminal.
func (c *Client) Clone(ctx context.Context, url, dir string) error {
	return c.runner.Run(ctx, "git", []string{"clone", url, dir, "--progress"}, shell.RunOptions{Inherit: true})
}

// Init initializes a repository in dir.
func (c *Client) Init(ctx context.Context, dir string) error {
	return c.runner.Run(ctx, "git", []string{"init"}, shell.RunOptions{Dir: dir, Inherit: true})
}

// AddAll stages every file in dir.
func (c *Client) AddAll(ctx context.Context, dir string) error {
	return c.runner.Run(ctx, "git", []string{"add", "-A"}, shell.RunOptions{Dir: dir, Inherit: true})
}

// Commit records staged changes without GPG signing.
func (c *Client) Commit(ctx context.Context, dir, message string) error {
	return c.runner.Run(ctx, "git", []string{"commit", "-m", message, "--no-gpg-sign"}, shell.RunOptions{Dir: dir, Inherit: true})
}
