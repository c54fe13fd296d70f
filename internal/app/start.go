package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/tacogips/ionstart/internal/debug"
	"github.com/tacogips/ionstart/internal/integrations"
	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/project"
	"github.com/tacogips/ionstart/internal/start/acquire"
	"github.com/tacogips/ionstart/internal/start/integrate"
	"github.com/tacogips/ionstart/internal/start/model"
	"github.com/tacogips/ionstart/internal/start/nextsteps"
	"github.com/tacogips/ionstart/internal/start/schema"
	"github.com/tacogips/ionstart/internal/start/wizard"
)

var log = debug.New("app")

// StartOptions holds the inputs of the start workflow.
type StartOptions struct {
	// Inputs are the positional name and template.
	Inputs schema.Inputs
	// Raw are the command line flags before canonicalization.
	Raw schema.RawOptions
}

// StartResult holds the result of project creation.
type StartResult struct {
	Schema   model.Schema
	Template *model.StarterTemplate
	Project  *project.Project
	Outcome  *integrate.Outcome
	Steps    []string
}

// Start creates a project: it resolves the creation plan, fetches the
// starter, integrates it and prints the next steps.
func Start(ctx context.Context, env *Env, opts StartOptions) (*StartResult, error) {
	log.Section("Start workflow")
	log.Value("inputs", fmt.Sprintf("%+v", opts.Inputs))

	options, err := schema.Canonicalize(opts.Raw, env.Log, env.Colors)
	if err != nil {
		return nil, classify(err)
	}

	client, err := env.HTTP()
	if err != nil {
		return nil, NewFatalError("failed to create HTTP client", err)
	}
	cat, err := env.Catalog()
	if err != nil {
		return nil, NewTemplateFetchError("failed to load starter catalog", err)
	}

	current, err := project.Find(env.WorkDir)
	if err != nil {
		return nil, NewFatalError("failed to inspect current directory", err)
	}

	builder := &schema.Builder{
		Catalog: cat,
		Prompt:  env.Prompt,
		Log:     env.Log,
		Colors:  env.Colors,
		Wizard:  func() schema.Wizard { return wizard.New(env.Config.URLs.Wizard, client) },
		Apps:    func() (schema.AppLookup, error) { return env.Apps() },
		Git:     func() schema.GitProbe { return env.Git() },
		WorkDir: env.WorkDir,
		Current: current,
	}
	res, err := builder.Build(ctx, opts.Inputs, options)
	if err != nil {
		return nil, classify(err)
	}
	if res == nil || res.Schema == nil {
		return nil, NewInvalidSchemaError("no creation plan was produced", nil)
	}
	s := res.Schema
	log.Value("projectDir", s.ProjectDir())
	log.Value("cloned", s.IsCloned())

	orch := &integrate.Orchestrator{
		Shell:        env.Shell,
		Path:         env.Shell,
		NpmClient:    env.Config.NpmClient,
		Git:          func() integrate.Git { return env.Git() },
		Integrations: &integrations.Enabler{Shell: env.Shell, NpmClient: env.Config.NpmClient},
		Linker:       func() (integrate.Linker, error) { return env.Apps() },
		Prompt:       env.Prompt,
		Log:          env.Log,
		Colors:       env.Colors,
	}
	state := orch.Begin(ctx, s, res.Options, env.WorkDir)

	// The starter is resolved before anything touches the disk so that an
	// unknown template leaves the target directory alone.
	result := &StartResult{Schema: s}
	if g, ok := s.(*model.Generated); ok {
		tmpl, err := cat.Resolve(ctx, g.TemplateName(), g.ProjectType(), res.Options.Tag)
		if err != nil {
			return nil, NewTemplateFetchError(fmt.Sprintf("unable to find starter template for %s", g.TemplateName()), err)
		}
		result.Template = &tmpl
	}

	engine := &acquire.Engine{
		HTTP:   client,
		Git:    func() acquire.Cloner { return env.Git() },
		Tasks:  env.Tasks,
		Colors: env.Colors,
	}
	if err := engine.PrepareDirectory(s.ProjectDir(), res.MayOverwrite); err != nil {
		return nil, NewAcquisitionError("", err)
	}
	if c, ok := s.(*model.Cloned); ok {
		if err := engine.Clone(ctx, c.SourceURL(), s.ProjectDir()); err != nil {
			return nil, NewAcquisitionError("", err)
		}
	} else if err := engine.Download(ctx, *result.Template, s.ProjectDir()); err != nil {
		return nil, NewAcquisitionError("", err)
	}

	p, err := acquire.RegisterProject(current, s)
	switch {
	case err == nil:
		if err := env.SetProject(p); err != nil {
			return nil, NewFatalError("", err)
		}
	case s.IsCloned() && errors.Is(err, project.ErrNotFound):
		log.Printf("cloned repository has no %s: %v", project.ConfigFileName, err)
	default:
		return nil, NewAcquisitionError("failed to load the new project", err)
	}
	result.Project = p

	outcome, err := orch.Run(ctx, integrate.Plan{
		Schema:  s,
		Project: p,
		Options: res.Options,
		State:   state,
	})
	if err != nil {
		return nil, classify(err)
	}
	result.Outcome = outcome

	result.Steps = nextsteps.Steps(env.Colors, s.ProjectDir(), s.IsCloned(), outcome.State.Link.Confirmed(), !outcome.State.CordovaEnabled())
	nextsteps.Print(env.Log, env.Colors, result.Steps)
	return result, nil
}

// ListStarters prints the built-in starters grouped by project type.
func ListStarters(env *Env) error {
	cat, err := env.Catalog()
	if err != nil {
		return NewTemplateFetchError("failed to load starter catalog", err)
	}

	env.Log.Msg(fmt.Sprintf("Starters for %s:", env.Colors.Strong("ionstart start")))
	for _, t := range cat.ProjectTypes() {
		starters := cat.List(t)
		if len(starters) == 0 {
			continue
		}
		env.Log.Nl()
		env.Log.Msg(env.Colors.Strong(fmt.Sprintf("%s (--type=%s)", t, t)))
		env.Log.Nl()

		rows := make([][]string, 0, len(starters))
		for _, s := range starters {
			rows = append(rows, []string{env.Colors.Input(s.Name), s.Description})
		}
		for _, line := range output.Columnar(rows) {
			env.Log.Msg(line)
		}
	}
	return nil
}
