package model

import "github.com/tacogips/ionstart/internal/project"

// TemplateKind tells how a starter template is obtained.
type TemplateKind string

const (
	// KindManaged templates are downloaded as archives from the starters host.
	KindManaged TemplateKind = "managed"
	// KindRepo templates are cloned from a git repository.
	KindRepo TemplateKind = "repo"
)

// StarterTemplate describes one resolvable starter.
type StarterTemplate struct {
	Name        string
	ProjectType project.Type
	Kind        TemplateKind
	ID          string
	Description string
	// ArchiveURL is set for resolved managed and registry templates.
	ArchiveURL string
	// RepoURL is set for KindRepo templates.
	RepoURL string
}

// Framework is a project type offered in the interactive framework selection.
type Framework struct {
	Name        string
	Type        project.Type
	Description string
}
