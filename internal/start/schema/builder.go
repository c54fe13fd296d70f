// Package schema turns start inputs, options and prompt answers into one
// immutable creation plan.
package schema

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tacogips/ionstart/internal/appflow"
	"github.com/tacogips/ionstart/internal/debug"
	"github.com/tacogips/ionstart/internal/git"
	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/project"
	"github.com/tacogips/ionstart/internal/prompt"
	"github.com/tacogips/ionstart/internal/start/model"
	"github.com/tacogips/ionstart/internal/start/wizard"
)

var log = debug.New("start:schema")

// Catalog is the part of the template catalog the builder consults.
type Catalog interface {
	Frameworks() []model.Framework
	List(t project.Type) []model.StarterTemplate
	Find(name string, t project.Type) (model.StarterTemplate, bool)
	IsValidType(t project.Type) bool
}

// Wizard converts a web wizard session into an app definition.
type Wizard interface {
	Lookup(ctx context.Context, id string) (*wizard.App, error)
	MarkStarted(ctx context.Context, id string) error
}

// AppLookup loads remote apps for --id.
type AppLookup interface {
	Load(ctx context.Context, id string) (*appflow.App, error)
}

// GitProbe reports git availability.
type GitProbe interface {
	IsInstalled(ctx context.Context) bool
}

// Inputs are the positional arguments of start.
type Inputs struct {
	Name     string
	Template string
}

// Result is the outcome of Build.
type Result struct {
	Schema model.Schema
	// MayOverwrite is set when the user agreed to replace an existing directory.
	MayOverwrite bool
	// Options are the options after resolution. Git is forced on for clones
	// and ProjectID holds the resolved id.
	Options Options
}

// Builder resolves a creation plan. Wizard, Apps and Git are called only
// when the inputs need them, so their construction can be deferred.
type Builder struct {
	Catalog Catalog
	Prompt  prompt.Prompter
	Log     output.Logger
	Colors  output.Colors
	Wizard  func() Wizard
	Apps    func() (AppLookup, error)
	Git     func() GitProbe
	// WorkDir is the absolute directory new projects are created in.
	WorkDir string
	// Current is the project enclosing WorkDir, if any.
	Current *project.Project
}

// Build resolves inputs and options into a Result.
func (b *Builder) Build(ctx context.Context, in Inputs, opts Options) (*Result, error) {
	if opts.StartID != "" {
		return b.fromWizard(ctx, in, opts)
	}

	projectType, err := b.projectType(in, opts)
	if err != nil {
		return nil, err
	}
	log.Value("projectType", projectType)

	name := in.Name
	if name == "" {
		if name, err = b.name(ctx, &opts); err != nil {
			return nil, err
		}
	}

	template := in.Template
	if template == "" {
		if template, err = b.selectTemplate(projectType); err != nil {
			return nil, err
		}
	}
	if entry, ok := b.Catalog.Find(template, projectType); ok && entry.Kind == model.KindRepo {
		log.Printf("starter %s is backed by %s", template, entry.RepoURL)
		template = entry.RepoURL
	}
	cloned := IsValidURL(template)

	if !b.Catalog.IsValidType(projectType) {
		return nil, &ValidationError{
			Field: "--type",
			Message: fmt.Sprintf("%s is not a valid project type.\nPlease choose a different %s. Use %s to list all available starter templates.",
				b.Colors.Input(string(projectType)), b.Colors.Input("--type"), b.Colors.Input("ionstart start --list")),
		}
	}

	if cloned {
		if !b.Git().IsInstalled(ctx) {
			return nil, &GitRequiredError{
				Reason: fmt.Sprintf("Git must be installed to clone apps with %s. See installation docs for git: %s",
					b.Colors.Input("ionstart start"), b.Colors.Strong(git.InstallationDocs)),
				Err: git.ErrNotInstalled,
			}
		}
		if !opts.Git {
			b.Log.Warn(fmt.Sprintf("The %s option has no effect when cloning apps. Git must be used.", b.Colors.Input("--no-git")))
		}
		opts.Git = true
	}
	if opts.AppID != "" && !b.Git().IsInstalled(ctx) {
		return nil, &GitRequiredError{
			Reason: fmt.Sprintf("Git must be installed to connect this app to Ionic. See installation docs for git: %s",
				b.Colors.Strong(git.InstallationDocs)),
			Err: git.ErrNotInstalled,
		}
	}

	projectID := opts.ProjectID
	if projectID != "" {
		if !IsValidProjectID(projectID) {
			return nil, &ValidationError{
				Field: "--project-id",
				Message: fmt.Sprintf("%s is not a valid package or directory name.\nPlease choose a different %s. Alphanumeric characters are always safe.",
					b.Colors.Input(projectID), b.Colors.Input("--project-id")),
			}
		}
	} else if IsValidProjectID(name) {
		projectID = name
	} else {
		projectID = Slugify(name)
	}
	opts.ProjectID = projectID
	projectDir := filepath.Join(b.WorkDir, projectID)

	mayOverwrite, err := b.checkForExisting(projectDir)
	if err != nil {
		return nil, err
	}
	if err := b.checkNotInsideProject(); err != nil {
		return nil, err
	}

	var s model.Schema
	if cloned {
		s = model.NewCloned(template, projectID, projectDir)
	} else {
		s = model.NewGenerated(model.GeneratedFields{
			DisplayName:  name,
			ProjectType:  projectType,
			TemplateName: template,
			ProjectID:    projectID,
			ProjectDir:   projectDir,
			PackageID:    opts.PackageID,
			RemoteAppID:  opts.AppID,
		})
	}
	log.JSON("options", opts)
	return &Result{Schema: s, MayOverwrite: mayOverwrite, Options: opts}, nil
}

func (b *Builder) projectType(in Inputs, opts Options) (project.Type, error) {
	if IsValidURL(in.Template) {
		return project.Custom, nil
	}
	if opts.Type != "" {
		return opts.Type, nil
	}

	frameworks := b.Catalog.Frameworks()
	if b.Prompt.Interactive() {
		b.Log.Nl()
		b.Log.Msg(fmt.Sprintf("%s\n\nPlease select the JavaScript framework to use for your new app. To bypass this prompt next time, supply a value for the %s option.\n",
			b.Colors.Strong("Pick a framework!"), b.Colors.Input("--type")))
	}

	rows := make([][]string, len(frameworks))
	for i, f := range frameworks {
		rows[i] = []string{b.Colors.Input(f.Name), f.Description}
	}
	cols := output.Columnar(rows)
	choices := make([]prompt.Choice, len(frameworks))
	for i, f := range frameworks {
		choices[i] = prompt.Choice{Value: string(f.Type), Label: cols[i]}
	}
	def := ""
	if len(frameworks) > 0 {
		def = string(frameworks[0].Type)
	}

	answer, err := b.Prompt.Select(prompt.SelectQuestion{Name: "frameworks", Message: "Framework:", Choices: choices, Default: def})
	if err != nil {
		return "", fmt.Errorf("cannot determine the project type, supply %s: %w", b.Colors.Input("--type"), err)
	}
	return project.Type(answer), nil
}

func (b *Builder) name(ctx context.Context, opts *Options) (string, error) {
	if opts.AppID != "" {
		apps, err := b.Apps()
		if err != nil {
			return "", err
		}
		app, err := apps.Load(ctx, opts.AppID)
		if err != nil {
			return "", err
		}
		b.Log.Info(fmt.Sprintf("Using %s for %s and %s for %s.",
			b.Colors.Strong(app.Name), b.Colors.Input("name"), b.Colors.Strong(app.Slug), b.Colors.Input("--project-id")))
		opts.ProjectID = app.Slug
		return app.Name, nil
	}

	if b.Prompt.Interactive() {
		b.Log.Nl()
		b.Log.Msg(fmt.Sprintf("%s\nPlease enter the full name of your app. You can change this at any time. To bypass this prompt next time, supply %s, the first argument to %s.\n",
			b.Colors.Strong("Every great app needs a name!"), b.Colors.Input("name"), b.Colors.Input("ionstart start")))
	}
	name, err := b.Prompt.Input(prompt.InputQuestion{Name: "name", Message: "Project name:", Validate: prompt.Required})
	if err != nil {
		return "", fmt.Errorf("cannot determine the project name, supply %s: %w", b.Colors.Input("name"), err)
	}
	return name, nil
}

func (b *Builder) selectTemplate(t project.Type) (string, error) {
	starters := b.Catalog.List(t)
	if len(starters) == 0 {
		return "", &ValidationError{
			Field:   "template",
			Message: fmt.Sprintf("No starter templates found for project type: %s.", b.Colors.Input(string(t))),
		}
	}

	if b.Prompt.Interactive() {
		b.Log.Nl()
		b.Log.Msg(fmt.Sprintf("%s\nStarter templates are ready-to-go apps that come packed with everything you need to build your app. To bypass this prompt next time, supply %s, the second argument to %s.\n",
			b.Colors.Strong("Let's pick the perfect starter template!"), b.Colors.Input("template"), b.Colors.Input("ionstart start")))
	}

	rows := make([][]string, len(starters))
	for i, s := range starters {
		rows[i] = []string{b.Colors.Input(s.Name), s.Description}
	}
	cols := output.Columnar(rows)
	choices := make([]prompt.Choice, len(starters))
	for i, s := range starters {
		choices[i] = prompt.Choice{Value: s.Name, Label: cols[i]}
	}

	answer, err := b.Prompt.Select(prompt.SelectQuestion{Name: "template", Message: "Starter template:", Choices: choices})
	if err != nil {
		return "", fmt.Errorf("cannot determine the starter template, supply %s: %w", b.Colors.Input("template"), err)
	}
	return answer, nil
}

func (b *Builder) checkForExisting(projectDir string) (bool, error) {
	if _, err := os.Stat(projectDir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	pretty := b.Colors.Input(output.PrettyPath(projectDir))
	confirm, err := b.Prompt.Confirm(prompt.ConfirmQuestion{
		Name:    "overwrite",
		Message: fmt.Sprintf("%s exists. %s", pretty, b.Colors.Failure("Overwrite?")),
		Default: false,
	})
	if err != nil {
		return false, err
	}
	if !confirm {
		b.Log.Msg(fmt.Sprintf("Not erasing existing project in %s.", pretty))
		return false, ErrDeclined
	}
	return true, nil
}

func (b *Builder) checkNotInsideProject() error {
	if b.Current == nil || b.Current.Context != project.ContextApp {
		return nil
	}
	confirm, err := b.Prompt.Confirm(prompt.ConfirmQuestion{
		Name:    "inside-project",
		Message: "You are already in a project directory. Do you really want to start another project here?",
		Default: false,
	})
	if err != nil {
		return err
	}
	if !confirm {
		b.Log.Info("Not starting project within existing project.")
		return ErrDeclined
	}
	return nil
}

const wizardRetryURL = "https://ionicframework.com/start"

// decodeWizardImage returns nil with a warning when the data URL is unusable;
// the app is still created, just without that resource.
func (b *Builder) decodeWizardImage(what, dataURL string) []byte {
	data, err := wizard.DecodeImage(dataURL)
	if err != nil {
		b.Log.Warn(fmt.Sprintf("Ignoring the app %s from the wizard: %v", what, err))
		return nil
	}
	return data
}

func (b *Builder) fromWizard(ctx context.Context, in Inputs, opts Options) (*Result, error) {
	wz := b.Wizard()
	app, err := wz.Lookup(ctx, opts.StartID)
	if err != nil {
		return nil, fmt.Errorf("%w\nThis app configuration may have expired. Please retry at %s", err, wizardRetryURL)
	}

	dirName := Slugify(app.Name)
	if in.Name != "" && in.Template == "" {
		dirName = in.Name
	}
	projectDir := dirName
	if !filepath.IsAbs(projectDir) {
		projectDir = filepath.Join(b.WorkDir, dirName)
	}

	mayOverwrite, err := b.checkForExisting(projectDir)
	if err != nil {
		return nil, err
	}

	if err := wz.MarkStarted(ctx, opts.StartID); err != nil {
		b.Log.Warn(fmt.Sprintf("Unable to set app flag on server: %v", err))
	}

	icon := b.decodeWizardImage("icon", app.AppIcon)
	splash := b.decodeWizardImage("splash screen", app.AppSplash)

	projectID := Slugify(app.Name)
	opts.ProjectID = projectID
	opts.PackageID = app.PackageID
	opts.AppID = ""

	s := model.NewGenerated(model.GeneratedFields{
		DisplayName:  app.Name,
		ProjectType:  app.Type,
		TemplateName: app.Template,
		ProjectID:    projectID,
		ProjectDir:   projectDir,
		PackageID:    app.PackageID,
		AppIcon:      icon,
		Splash:       splash,
		ThemeColor:   app.Theme,
	})
	return &Result{Schema: s, MayOverwrite: mayOverwrite, Options: opts}, nil
}
