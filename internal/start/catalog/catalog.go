// Package catalog resolves starter templates from the built-in list and the
// remote starter registry.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tacogips/ionstart/internal/debug"
	"github.com/tacogips/ionstart/internal/httpclient"
	"github.com/tacogips/ionstart/internal/project"
	"github.com/tacogips/ionstart/internal/start/model"
)

var log = debug.New("start:catalog")

//go:embed catalog.yaml
var catalogYAML []byte

//go:embed starters.schema.json
var registrySchemaJSON []byte

// DefaultTag selects the current release of the starters.
const DefaultTag = "latest"

// ErrTemplateNotFound is returned when neither the built-in list nor the
// registry holds a (type, name) pair.
var ErrTemplateNotFound = errors.New("starter template not found")

// Fetcher performs JSON GET requests.
type Fetcher interface {
	GetJSON(ctx context.Context, rawURL string, v interface{}, opts ...httpclient.RequestOption) error
}

type starterEntry struct {
	Name        string             `yaml:"name"`
	Type        project.Type       `yaml:"type"`
	Kind        model.TemplateKind `yaml:"kind"`
	ID          string             `yaml:"id"`
	Repo        string             `yaml:"repo"`
	Description string             `yaml:"description"`
}

type frameworkEntry struct {
	Name        string       `yaml:"name"`
	Type        project.Type `yaml:"type"`
	Description string       `yaml:"description"`
}

type document struct {
	ProjectTypes []project.Type   `yaml:"projectTypes"`
	Frameworks   []frameworkEntry `yaml:"frameworks"`
	Starters     []starterEntry   `yaml:"starters"`
}

// Registry is the remote starter index.
type Registry struct {
	Starters []RegistryStarter `json:"starters"`
}

// RegistryStarter is one entry of the remote index.
type RegistryStarter struct {
	Name string       `json:"name"`
	ID   string       `json:"id"`
	Type project.Type `json:"type"`
	SHA1 string       `json:"sha1,omitempty"`
}

// Catalog resolves starter templates. Registry indexes are fetched at most
// once per tag for the lifetime of the Catalog.
type Catalog struct {
	baseURL string
	fetcher Fetcher
	doc     document

	mu       sync.Mutex
	registry map[string]*Registry
}

// New parses the built-in catalog. baseURL is the host of starter archives
// and registry indexes.
func New(baseURL string, fetcher Fetcher) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(catalogYAML, &doc); err != nil {
		return nil, fmt.Errorf("parsing built-in catalog: %w", err)
	}
	return &Catalog{
		baseURL:  strings.TrimRight(baseURL, "/"),
		fetcher:  fetcher,
		doc:      doc,
		registry: map[string]*Registry{},
	}, nil
}

// ProjectTypes returns every project type that has starters.
func (c *Catalog) ProjectTypes() []project.Type {
	return append([]project.Type(nil), c.doc.ProjectTypes...)
}

// IsValidType reports whether t is a known project type or custom.
func (c *Catalog) IsValidType(t project.Type) bool {
	if t == project.Custom {
		return true
	}
	for _, pt := range c.doc.ProjectTypes {
		if pt == t {
			return true
		}
	}
	return false
}

// Frameworks returns the frameworks offered interactively. The first is the default.
func (c *Catalog) Frameworks() []model.Framework {
	out := make([]model.Framework, 0, len(c.doc.Frameworks))
	for _, f := range c.doc.Frameworks {
		out = append(out, model.Framework{Name: f.Name, Type: f.Type, Description: f.Description})
	}
	return out
}

// List returns the built-in starters of a project type.
func (c *Catalog) List(t project.Type) []model.StarterTemplate {
	var out []model.StarterTemplate
	for _, s := range c.doc.Starters {
		if s.Type == t {
			out = append(out, s.template())
		}
	}
	return out
}

// Find returns the built-in starter with the given name and type.
func (c *Catalog) Find(name string, t project.Type) (model.StarterTemplate, bool) {
	for _, s := range c.doc.Starters {
		if s.Type == t && s.Name == name {
			return s.template(), true
		}
	}
	return model.StarterTemplate{}, false
}

func (s starterEntry) template() model.StarterTemplate {
	return model.StarterTemplate{
		Name:        s.Name,
		ProjectType: s.Type,
		Kind:        s.Kind,
		ID:          s.ID,
		RepoURL:     s.Repo,
		Description: s.Description,
	}
}

// ArchiveURL builds the archive location of a starter. The latest tag is
// served from the root of base.
func ArchiveURL(base, tag, id string) string {
	base = strings.TrimRight(base, "/")
	if tag == "" || tag == DefaultTag {
		return base + "/" + id + ".tar.gz"
	}
	return base + "/" + tag + "/" + id + ".tar.gz"
}

func registryURL(base, tag string) string {
	base = strings.TrimRight(base, "/")
	if tag == "" || tag == DefaultTag {
		return base + "/starters.json"
	}
	return base + "/" + tag + "/starters.json"
}

// ValidateTag accepts latest, next, testing and semantic versions.
func ValidateTag(tag string) error {
	switch tag {
	case "latest", "next", "testing":
		return nil
	}
	if _, err := semver.NewVersion(tag); err != nil {
		return fmt.Errorf("invalid starter tag %q: must be latest, next, testing or a version", tag)
	}
	return nil
}

// Resolve returns the downloadable descriptor for (name, type). Built-in
// managed starters resolve locally; anything else is looked up in the
// registry index for tag.
func (c *Catalog) Resolve(ctx context.Context, name string, t project.Type, tag string) (model.StarterTemplate, error) {
	if tag == "" {
		tag = DefaultTag
	}

	if s, ok := c.Find(name, t); ok && s.Kind == model.KindManaged {
		s.ArchiveURL = ArchiveURL(c.baseURL, tag, s.ID)
		log.Printf("resolved managed starter %s/%s -> %s", t, name, s.ArchiveURL)
		return s, nil
	}

	reg, err := c.Registry(ctx, tag)
	if err != nil {
		return model.StarterTemplate{}, err
	}
	for _, s := range reg.Starters {
		if s.Type == t && s.Name == name {
			url := ArchiveURL(c.baseURL, tag, s.ID)
			log.Printf("resolved registry starter %s/%s -> %s", t, name, url)
			return model.StarterTemplate{
				Name:        s.Name,
				ProjectType: s.Type,
				Kind:        model.KindManaged,
				ID:          s.ID,
				ArchiveURL:  url,
			}, nil
		}
	}

	return model.StarterTemplate{}, fmt.Errorf("%w: %s (type %s)", ErrTemplateNotFound, name, t)
}

// Registry returns the validated registry index for tag, fetching it on first use.
func (c *Catalog) Registry(ctx context.Context, tag string) (*Registry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if reg, ok := c.registry[tag]; ok {
		return reg, nil
	}
	if c.fetcher == nil {
		return nil, fmt.Errorf("starter registry is unavailable")
	}

	url := registryURL(c.baseURL, tag)
	log.Printf("fetching starter registry %s", url)

	var raw json.RawMessage
	if err := c.fetcher.GetJSON(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("failed to fetch starter registry: %w", err)
	}
	if err := validateRegistry(raw); err != nil {
		return nil, err
	}

	var reg Registry
	if err := json.Unmarshal(raw, &reg); err != nil {
		return nil, fmt.Errorf("failed to decode starter registry: %w", err)
	}
	c.registry[tag] = &reg
	return &reg, nil
}

var (
	registrySchema     *jsonschema.Schema
	registrySchemaOnce sync.Once
	registrySchemaErr  error
	printer            = message.NewPrinter(language.English)
)

func getRegistrySchema() (*jsonschema.Schema, error) {
	registrySchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(registrySchemaJSON))
		if err != nil {
			registrySchemaErr = fmt.Errorf("unmarshaling registry schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("starters.schema.json", doc); err != nil {
			registrySchemaErr = fmt.Errorf("adding registry schema: %w", err)
			return
		}
		registrySchema, registrySchemaErr = c.Compile("starters.schema.json")
	})
	return registrySchema, registrySchemaErr
}

func validateRegistry(raw []byte) error {
	schema, err := getRegistrySchema()
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("starter registry is not valid JSON: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			if cause := firstCause(ve); cause.ErrorKind != nil {
				loc := "/" + strings.Join(cause.InstanceLocation, "/")
				return fmt.Errorf("starter registry is malformed at %s: %s", loc, cause.ErrorKind.LocalizedString(printer))
			}
		}
		return fmt.Errorf("starter registry is malformed: %w", err)
	}
	return nil
}

func firstCause(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
