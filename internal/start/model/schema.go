// Package model holds the values passed between the stages of project creation.
package model

import "github.com/tacogips/ionstart/internal/project"

// Schema is the immutable creation plan. It is either a *Cloned or a
// *Generated value; both are built only through their constructors.
type Schema interface {
	// IsCloned reports whether the project comes from a git repository.
	IsCloned() bool
	// ProjectID is the identifier-safe slug used for directories and packages.
	ProjectID() string
	// ProjectDir is the absolute target directory.
	ProjectDir() string

	schema()
}

// Cloned is the plan for a project cloned from a git repository.
type Cloned struct {
	sourceURL  string
	projectID  string
	projectDir string
}

// NewCloned builds a Cloned plan.
func NewCloned(sourceURL, projectID, projectDir string) *Cloned {
	return &Cloned{sourceURL: sourceURL, projectID: projectID, projectDir: projectDir}
}

func (*Cloned) schema()              {}
func (*Cloned) IsCloned() bool       { return true }
func (c *Cloned) ProjectID() string  { return c.projectID }
func (c *Cloned) ProjectDir() string { return c.projectDir }

// SourceURL is the repository to clone.
func (c *Cloned) SourceURL() string { return c.sourceURL }

// GeneratedFields are the inputs of NewGenerated.
type GeneratedFields struct {
	DisplayName  string
	ProjectType  project.Type
	TemplateName string
	ProjectID    string
	ProjectDir   string
	PackageID    string
	RemoteAppID  string
	AppIcon      []byte
	Splash       []byte
	ThemeColor   string
}

// Generated is the plan for a project generated from a starter template.
type Generated struct {
	f GeneratedFields
}

// NewGenerated builds a Generated plan. Byte slices are copied.
func NewGenerated(f GeneratedFields) *Generated {
	f.AppIcon = cloneBytes(f.AppIcon)
	f.Splash = cloneBytes(f.Splash)
	return &Generated{f: f}
}

func (*Generated) schema()              {}
func (*Generated) IsCloned() bool       { return false }
func (g *Generated) ProjectID() string  { return g.f.ProjectID }
func (g *Generated) ProjectDir() string { return g.f.ProjectDir }

// DisplayName is the human readable app name, kept verbatim.
func (g *Generated) DisplayName() string { return g.f.DisplayName }

// ProjectType is the resolved framework.
func (g *Generated) ProjectType() project.Type { return g.f.ProjectType }

// TemplateName is the starter template name within ProjectType.
func (g *Generated) TemplateName() string { return g.f.TemplateName }

// PackageID is the reverse-DNS bundle identifier, or "".
func (g *Generated) PackageID() string { return g.f.PackageID }

// RemoteAppID is the app id to link against, or "".
func (g *Generated) RemoteAppID() string { return g.f.RemoteAppID }

// ThemeColor is the primary color, or "".
func (g *Generated) ThemeColor() string { return g.f.ThemeColor }

// AppIcon returns a copy of the icon image, or nil.
func (g *Generated) AppIcon() []byte { return cloneBytes(g.f.AppIcon) }

// Splash returns a copy of the splash image, or nil.
func (g *Generated) Splash() []byte { return cloneBytes(g.f.Splash) }

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
