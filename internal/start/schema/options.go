package schema

import (
	"fmt"

	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/project"
	"github.com/tacogips/ionstart/internal/start/catalog"
)

// RawOptions are the start flags as given on the command line, including
// removed and deprecated ones.
type RawOptions struct {
	Type      string
	Cordova   *bool
	Capacitor *bool
	NoDeps    bool
	NoGit     bool
	Link      bool
	ID        string
	ProjectID string
	PackageID string
	StartID   string
	Tag       string

	V1          bool
	V2          bool
	AppName     string
	DisplayName string
	BundleID    string
}

// Options are the canonical start options. Deprecated spellings have been
// folded in and removed ones rejected.
type Options struct {
	Type project.Type
	// Cordova and Capacitor are nil when the user made no explicit choice.
	Cordova   *bool
	Capacitor *bool
	Deps      bool
	Git       bool
	Link      bool
	// AppID is the remote app to link against (--id).
	AppID     string
	ProjectID string
	PackageID string
	StartID   string
	Tag       string
}

// Canonicalize validates raw options and remaps deprecated ones, warning
// through log.
func Canonicalize(raw RawOptions, log output.Logger, colors output.Colors) (Options, error) {
	if raw.V1 || raw.V2 {
		return Options{}, &ValidationError{
			Field: "--v1/--v2",
			Message: fmt.Sprintf("The %s and %s flags have been removed.\nUse the %s option. (see %s)",
				colors.Input("--v1"), colors.Input("--v2"), colors.Input("--type"), colors.Input("ionstart start --help")),
		}
	}

	for _, removed := range []struct{ flag, value string }{
		{"--app-name", raw.AppName},
		{"--display-name", raw.DisplayName},
	} {
		if flag := removed.flag; removed.value != "" {
			log.Warn(fmt.Sprintf("The %s option has been removed. Use the %s argument with double quotes: e.g. %s",
				colors.Input(flag), colors.Input("name"), colors.Input(`ionstart start "My App"`)))
		}
	}

	opts := Options{
		Type:      project.Type(raw.Type),
		Cordova:   raw.Cordova,
		Capacitor: raw.Capacitor,
		Deps:      !raw.NoDeps,
		Git:       !raw.NoGit,
		Link:      raw.Link,
		AppID:     raw.ID,
		ProjectID: raw.ProjectID,
		PackageID: raw.PackageID,
		StartID:   raw.StartID,
		Tag:       raw.Tag,
	}

	if raw.BundleID != "" {
		log.Warn(fmt.Sprintf("The %s option has been deprecated. Please use %s.", colors.Input("--bundle-id"), colors.Input("--package-id")))
		if opts.PackageID == "" {
			opts.PackageID = raw.BundleID
		}
	}

	if opts.Tag == "" {
		opts.Tag = catalog.DefaultTag
	}
	if err := catalog.ValidateTag(opts.Tag); err != nil {
		return Options{}, &ValidationError{Field: "--tag", Message: err.Error()}
	}

	return opts, nil
}
