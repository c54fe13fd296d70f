package app

import (
	"errors"
	"sync"
	"time"

	"github.com/tacogips/ionstart/internal/appflow"
	"github.com/tacogips/ionstart/internal/build"
	"github.com/tacogips/ionstart/internal/config"
	"github.com/tacogips/ionstart/internal/git"
	"github.com/tacogips/ionstart/internal/httpclient"
	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/project"
	"github.com/tacogips/ionstart/internal/prompt"
	"github.com/tacogips/ionstart/internal/shell"
	"github.com/tacogips/ionstart/internal/start/catalog"
	"github.com/tacogips/ionstart/internal/tasks"
)

// ErrProjectAlreadySet is returned when the project slot is written twice.
var ErrProjectAlreadySet = errors.New("project already set for this invocation")

// Shell is a command runner whose PATH can be re-pointed.
type Shell interface {
	shell.Runner
	SetAlterPath(fn func(string) string)
}

// EnvOptions configures NewEnv.
type EnvOptions struct {
	Config  *config.Config
	Log     output.Logger
	Colors  output.Colors
	Prompt  prompt.Prompter
	Shell   Shell
	Tasks   tasks.Sink
	WorkDir string
}

// Env is the execution environment of one invocation. Network and tool
// capabilities are created on first use.
type Env struct {
	Config  *config.Config
	Log     output.Logger
	Colors  output.Colors
	Prompt  prompt.Prompter
	Shell   Shell
	Tasks   tasks.Sink
	WorkDir string

	http    func() (*httpclient.Client, error)
	git     func() *git.Client
	catalog func() (*catalog.Catalog, error)

	mu      sync.Mutex
	project *project.Project
}

// NewEnv creates an Env.
func NewEnv(opts EnvOptions) *Env {
	e := &Env{
		Config:  opts.Config,
		Log:     opts.Log,
		Colors:  opts.Colors,
		Prompt:  opts.Prompt,
		Shell:   opts.Shell,
		Tasks:   opts.Tasks,
		WorkDir: opts.WorkDir,
	}
	e.http = sync.OnceValues(func() (*httpclient.Client, error) {
		return httpclient.New(httpclient.Config{
			Timeout:   time.Duration(e.Config.HTTP.Timeout) * time.Second,
			Proxy:     e.Config.HTTP.Proxy,
			UserAgent: build.UserAgent(),
		})
	})
	e.git = sync.OnceValue(func() *git.Client {
		return git.New(e.Shell)
	})
	e.catalog = sync.OnceValues(func() (*catalog.Catalog, error) {
		client, err := e.http()
		if err != nil {
			return nil, err
		}
		return catalog.New(e.Config.URLs.Starters, client)
	})
	return e
}

// HTTP returns the shared HTTP client.
func (e *Env) HTTP() (*httpclient.Client, error) { return e.http() }

// Git returns the git capability.
func (e *Env) Git() *git.Client { return e.git() }

// Catalog returns the starter catalog.
func (e *Env) Catalog() (*catalog.Catalog, error) { return e.catalog() }

// Apps returns the app service client authenticated with the stored token.
func (e *Env) Apps() (*appflow.Client, error) {
	client, err := e.http()
	if err != nil {
		return nil, err
	}
	return appflow.New(e.Config.URLs.API, e.Config.Tokens.User, client), nil
}

// Project returns the project created or loaded by this invocation.
func (e *Env) Project() *project.Project {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project
}

// SetProject fills the project slot. It can be written once.
func (e *Env) SetProject(p *project.Project) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.project != nil {
		return ErrProjectAlreadySet
	}
	e.project = p
	return nil
}
