// Package integrate runs the post-acquisition steps that turn a fetched
// starter into a ready project.
package integrate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tacogips/ionstart/internal/appflow"
	"github.com/tacogips/ionstart/internal/debug"
	"github.com/tacogips/ionstart/internal/integrations"
	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/pkgmanager"
	"github.com/tacogips/ionstart/internal/project"
	"github.com/tacogips/ionstart/internal/prompt"
	"github.com/tacogips/ionstart/internal/shell"
	"github.com/tacogips/ionstart/internal/start/model"
	"github.com/tacogips/ionstart/internal/start/schema"
)

var log = debug.New("start:integrate")

// CommitMessage is used for the first commit of a generated project.
const CommitMessage = "Initial commit"

// Git is the git capability used by the orchestrator.
type Git interface {
	IsInstalled(ctx context.Context) bool
	TopLevel(ctx context.Context, dir string) string
	Init(ctx context.Context, dir string) error
	AddAll(ctx context.Context, dir string) error
	Commit(ctx context.Context, dir, message string) error
}

// Integrations enables native integrations.
type Integrations interface {
	Enable(ctx context.Context, p *project.Project, name integrations.Name, appName, packageID string) error
}

// Linker links a project to a remote app.
type Linker interface {
	Link(ctx context.Context, p *project.Project, appID, name string) (*appflow.App, error)
}

// PathAlterer re-points the PATH of spawned commands.
type PathAlterer interface {
	SetAlterPath(fn func(string) string)
}

// Orchestrator sequences the integration steps.
type Orchestrator struct {
	Shell        shell.Runner
	Path         PathAlterer
	NpmClient    string
	Git          func() Git
	Integrations Integrations
	Linker       func() (Linker, error)
	Prompt       prompt.Prompter
	Log          output.Logger
	Colors       output.Colors
}

// Plan is the input of Run.
type Plan struct {
	Schema  model.Schema
	Project *project.Project
	Options schema.Options
	State   *State
}

// Outcome is the result of Run.
type Outcome struct {
	State    *State
	Manifest *model.StarterManifest
}

// Begin computes the initial orchestration state. It runs before the project
// directory is created so an enclosing repository is detected from workDir.
func (o *Orchestrator) Begin(ctx context.Context, s model.Schema, opts schema.Options, workDir string) *State {
	g := o.Git()
	installed := g.IsInstalled(ctx)
	topLevel := ""
	if installed {
		topLevel = g.TopLevel(ctx, workDir)
	}
	if topLevel != "" && !s.IsCloned() {
		o.Log.Info(fmt.Sprintf("Existing git project found (%s). Git operations are disabled.", o.Colors.Strong(topLevel)))
	}

	st := &State{
		Capacitor: copyBool(opts.Capacitor),
		Cordova:   copyBool(opts.Cordova),
		Git:       NewGitState(opts.Git, installed, topLevel),
	}
	if g, ok := s.(*model.Generated); ok {
		st.Link.AppIDSupplied = g.RemoteAppID() != ""
	}
	log.Printf("initial state: git=%v capacitor=%v cordova=%v", st.Git.Enabled(), st.Capacitor, st.Cordova)
	return st
}

// Run executes the integration steps in order. Recoverable failures are
// reported as warnings and only change State.
func (o *Orchestrator) Run(ctx context.Context, plan Plan) (*Outcome, error) {
	if plan.Schema == nil || plan.State == nil {
		return nil, errors.New("integration plan is incomplete")
	}
	st := plan.State
	dir := plan.Schema.ProjectDir()
	out := &Outcome{State: st}

	o.Path.SetAlterPath(func(p string) string { return shell.PrependNodeModulesBin(dir, p) })

	g, generated := plan.Schema.(*model.Generated)
	if generated {
		if plan.Project == nil {
			return nil, fmt.Errorf("no project found in %s", dir)
		}
		if err := o.nativeIntegrations(ctx, plan, g); err != nil {
			return nil, err
		}
		if err := plan.Project.Personalize(project.Personalization{
			Name:       g.DisplayName(),
			ProjectID:  g.ProjectID(),
			PackageID:  g.PackageID(),
			AppIcon:    g.AppIcon(),
			Splash:     g.Splash(),
			ThemeColor: g.ThemeColor(),
		}); err != nil {
			return nil, fmt.Errorf("failed to personalize project: %w", err)
		}
		o.Log.Nl()
	}

	if err := o.installDependencies(ctx, plan.Options.Deps, dir); err != nil {
		return nil, err
	}

	if !generated {
		o.Log.Nl()
		return out, nil
	}

	if st.Git.Enabled() {
		if err := o.Git().Init(ctx, dir); err != nil {
			log.Printf("git init failed: %v", err)
			o.Log.Warn("Error encountered during repo initialization. Disabling further git operations.")
			st.Git.Disable()
		}
	}

	if plan.Options.Link {
		linker, err := o.Linker()
		if err != nil {
			return nil, err
		}
		if _, err := linker.Link(ctx, plan.Project, g.RemoteAppID(), g.DisplayName()); err != nil {
			return nil, fmt.Errorf("failed to link app: %w", err)
		}
		st.Link.LinkStepRan = true
	}

	out.Manifest = o.consumeManifest(dir)

	if st.Git.Enabled() {
		git := o.Git()
		err := git.AddAll(ctx, dir)
		if err == nil {
			err = git.Commit(ctx, dir, CommitMessage)
		}
		if err != nil {
			log.Printf("git commit failed: %v", err)
			o.Log.Warn("Error encountered during commit. Disabling further git operations.")
			st.Git.Disable()
		}
	}

	if out.Manifest != nil && out.Manifest.Welcome != "" {
		o.Log.Nl()
		o.Log.Msg(o.Colors.Strong("Starter Welcome") + ":")
		o.Log.Msg(out.Manifest.Welcome)
	}

	o.Log.Nl()
	return out, nil
}

func (o *Orchestrator) nativeIntegrations(ctx context.Context, plan Plan, g *model.Generated) error {
	st := plan.State

	switch g.ProjectType() {
	case project.React, project.Vue:
		st.Capacitor = boolPtr(true)
	case project.Angular:
		if st.Cordova == nil {
			st.Capacitor = boolPtr(true)
		}
	}

	if st.CordovaEnabled() {
		if err := integrations.CheckCordovaSupport(g.ProjectType()); err != nil {
			o.Log.Error(err.Error())
			st.Cordova = boolPtr(false)
		} else {
			confirm, err := integrations.ConfirmCordovaUsage(o.Prompt, o.Log, o.Colors)
			if err != nil {
				return err
			}
			if confirm {
				if err := o.Integrations.Enable(ctx, plan.Project, integrations.Cordova, g.DisplayName(), g.PackageID()); err != nil {
					o.Log.Warn(fmt.Sprintf("Cordova integration could not be enabled: %v", err))
					st.Cordova = boolPtr(false)
				}
			} else {
				st.Cordova = boolPtr(false)
			}
		}
	}

	if st.Capacitor == nil && !st.CordovaEnabled() {
		confirm, err := o.Prompt.Confirm(prompt.ConfirmQuestion{
			Name:    "capacitor",
			Message: "Integrate your new app with Capacitor to target native iOS and Android?",
			Default: false,
		})
		if err != nil {
			return err
		}
		st.Capacitor = boolPtr(confirm)
	}

	if st.CapacitorEnabled() {
		packageID := g.PackageID()
		if packageID == "" {
			packageID = integrations.DefaultPackageID
		}
		if err := o.Integrations.Enable(ctx, plan.Project, integrations.Capacitor, g.DisplayName(), packageID); err != nil {
			o.Log.Warn(fmt.Sprintf("Capacitor integration could not be enabled: %v", err))
			st.Capacitor = boolPtr(false)
		}
	}
	return nil
}

func (o *Orchestrator) installDependencies(ctx context.Context, deps bool, dir string) error {
	if !deps {
		o.Log.Warn("Using the --no-deps flag results in an out of date package lock file. The lock file can be updated by performing an `install` with your package manager.")
		return nil
	}

	o.Log.Msg("Installing dependencies may take several minutes.")
	args, err := pkgmanager.Args(o.NpmClient, pkgmanager.Intent{Command: pkgmanager.Install})
	if err != nil {
		return err
	}
	if err := o.Shell.Run(ctx, args[0], args[1:], shell.RunOptions{Dir: dir, Inherit: true}); err != nil {
		return fmt.Errorf("failed to install dependencies: %w", err)
	}
	return nil
}

// consumeManifest reads and removes the starter manifest. A manifest that
// cannot be read is treated as absent but still removed.
func (o *Orchestrator) consumeManifest(dir string) *model.StarterManifest {
	path := filepath.Join(dir, model.ManifestFileName)
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	m, err := model.ReadManifest(path)
	if err != nil {
		log.Printf("error with manifest file %s: %v", output.PrettyPath(path), err)
		m = nil
	}
	if err := os.Remove(path); err != nil {
		log.Printf("failed to remove %s: %v", path, err)
	}
	return m
}
