package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/pkgmanager"
	"github.com/tacogips/ionstart/internal/project"
	"github.com/tacogips/ionstart/internal/shell"
)

// ServeFlags are the serve options as given on the command line, including
// deprecated spellings.
type ServeFlags struct {
	project.ServeOptions

	// NoLiveReloadOld is --nolivereload.
	NoLiveReloadOld bool
	// NoBrowserOld is --nobrowser.
	NoBrowserOld bool
	// NoProxyOld is --noproxy.
	NoProxyOld bool
	// NoOpenShort is -b.
	NoOpenShort bool
	// NoProxyShort is -x.
	NoProxyShort bool
	// LabAlias is set when invoked as lab.
	LabAlias bool
}

// NormalizeServeFlags folds deprecated flags into their replacements,
// warning about each long spelling.
func NormalizeServeFlags(f ServeFlags, out output.Logger, c output.Colors) project.ServeOptions {
	opts := f.ServeOptions
	deprecated := func(old, repl string) {
		out.Warn(fmt.Sprintf("The %s option has been deprecated. Please use %s.", c.Input(old), c.Input(repl)))
	}

	if f.LabAlias {
		opts.Lab = true
	}
	if f.NoLiveReloadOld {
		deprecated("--nolivereload", "--no-livereload")
		opts.LiveReload = false
	}
	if f.NoBrowserOld {
		deprecated("--nobrowser", "--no-open")
		opts.Open = false
	}
	if f.NoOpenShort {
		opts.Open = false
	}
	if f.NoProxyOld {
		deprecated("--noproxy", "--no-proxy")
		opts.Proxy = false
	}
	if f.NoProxyShort {
		opts.Proxy = false
	}
	return opts
}

// Serve starts the dev server of the project enclosing the working directory.
func Serve(ctx context.Context, env *Env, flags ServeFlags) error {
	log.Section("Serve workflow")

	p := env.Project()
	if p == nil {
		found, err := project.Find(env.WorkDir)
		if err != nil {
			return NewFatalError("failed to inspect current directory", err)
		}
		if found == nil {
			return NewFatalError(fmt.Sprintf("Cannot run %s outside a project directory.", env.Colors.Input("ionstart serve")), nil)
		}
		if err := env.SetProject(found); err != nil {
			return NewFatalError("", err)
		}
		p = found
	}

	opts := NormalizeServeFlags(flags, env.Log, env.Colors)
	t := p.Type()
	if opts.Lab && !project.SupportsLab(t) {
		env.Log.Warn(fmt.Sprintf("%s is not supported for %s projects. Starting the regular dev server.", env.Colors.Input("--lab"), env.Colors.Strong(string(t))))
		opts.Lab = false
	}
	log.JSON("serveOptions", opts)

	cmd, err := project.ServeCommandFor(t, opts)
	if err != nil {
		var unsupported *project.ErrServeUnsupported
		if errors.As(err, &unsupported) {
			return NewFatalError("", err)
		}
		return NewFatalError("failed to determine dev server", err)
	}

	env.Shell.SetAlterPath(func(path string) string { return shell.PrependNodeModulesBin(p.Dir, path) })

	name, args := cmd.Bin, cmd.Args
	if cmd.Script != "" {
		argv, err := pkgmanager.Args(env.Config.NpmClient, pkgmanager.Intent{Command: pkgmanager.Run, Script: cmd.Script, Args: cmd.Args})
		if err != nil {
			return NewValidationError("", err)
		}
		name, args = argv[0], argv[1:]
	}

	if err := env.Shell.Run(ctx, name, args, shell.RunOptions{Dir: p.Dir, Inherit: true, Env: cmd.Env}); err != nil {
		return NewFatalError("dev server exited with an error", err)
	}
	return nil
}
