// Package integrations enables native runtime integrations in a project.
package integrations

import (
	"context"
	"fmt"

	"github.com/tacogips/ionstart/internal/debug"
	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/pkgmanager"
	"github.com/tacogips/ionstart/internal/project"
	"github.com/tacogips/ionstart/internal/prompt"
	"github.com/tacogips/ionstart/internal/shell"
)

var log = debug.New("integrations")

// Name identifies an integration.
type Name string

const (
	Capacitor Name = "capacitor"
	Cordova   Name = "cordova"
)

// DefaultPackageID is used for Capacitor when no package id was given.
const DefaultPackageID = "io.ionic.starter"

// Enabler turns on integrations in a project.
type Enabler struct {
	Shell     shell.Runner
	NpmClient string
}

// webDir is the build output directory Capacitor copies into native projects.
func webDir(t project.Type) string {
	switch t {
	case project.React:
		return "build"
	case project.Vue:
		return "dist"
	default:
		return "www"
	}
}

// Enable dispatches to the integration-specific enable step.
func (e *Enabler) Enable(ctx context.Context, p *project.Project, name Name, appName, packageID string) error {
	switch name {
	case Capacitor:
		return e.EnableCapacitor(ctx, p, appName, packageID)
	case Cordova:
		return e.EnableCordova(p)
	}
	return fmt.Errorf("unknown integration: %s", name)
}

// EnableCapacitor initializes Capacitor and records the integration in the
// project configuration.
func (e *Enabler) EnableCapacitor(ctx context.Context, p *project.Project, appName, packageID string) error {
	if packageID == "" {
		packageID = DefaultPackageID
	}

	args, err := pkgmanager.Args(e.NpmClient, pkgmanager.Intent{
		Command:  pkgmanager.Exec,
		Packages: []string{"cap"},
		Args:     []string{"init", appName, packageID, "--web-dir", webDir(p.Type())},
	})
	if err != nil {
		return err
	}
	if err := e.Shell.Run(ctx, args[0], args[1:], shell.RunOptions{Dir: p.Dir, Inherit: true}); err != nil {
		return fmt.Errorf("failed to initialize capacitor: %w", err)
	}

	if err := p.Config.SetRaw("integrations.capacitor", "{}"); err != nil {
		return err
	}
	log.Printf("capacitor enabled in %s (%s)", p.Dir, packageID)
	return nil
}

// EnableCordova records the Cordova integration in the project configuration.
func (e *Enabler) EnableCordova(p *project.Project) error {
	if err := CheckCordovaSupport(p.Type()); err != nil {
		return err
	}
	if err := p.Config.SetRaw("integrations.cordova", "{}"); err != nil {
		return err
	}
	log.Printf("cordova enabled in %s", p.Dir)
	return nil
}

// CheckCordovaSupport fails for project types that cannot use Cordova.
func CheckCordovaSupport(t project.Type) error {
	switch t {
	case project.Angular, project.IonicAngular, project.Ionic1:
		return nil
	}
	return fmt.Errorf("Cordova is not supported for %s projects. Use Capacitor instead", t)
}

// ConfirmCordovaUsage warns about Cordova and asks the user to continue.
func ConfirmCordovaUsage(p prompt.Prompter, out output.Logger, colors output.Colors) (bool, error) {
	out.Warn(fmt.Sprintf("%s is the recommended native runtime. Cordova support is limited and may be removed in a future release.", colors.Strong("Capacitor")))
	return p.Confirm(prompt.ConfirmQuestion{
		Name:    "cordova",
		Message: "Are you sure you want to continue with Cordova?",
		Default: true,
	})
}
