// Package project models an existing or newly created app project on disk.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tacogips/ionstart/internal/debug"
)

var log = debug.New("project")

// ConfigFileName is the per-project (or per-workspace) configuration file.
const ConfigFileName = "ionic.config.json"

// ErrNotFound is returned when a directory holds no project configuration.
var ErrNotFound = errors.New("no project configuration found")

// Type is the framework flavor of a project.
type Type string

const (
	Angular      Type = "angular"
	React        Type = "react"
	Vue          Type = "vue"
	IonicAngular Type = "ionic-angular"
	Ionic1       Type = "ionic1"
	// Custom marks a project cloned from an arbitrary repository.
	Custom Type = "custom"
)

// Context describes how a project directory is laid out.
type Context string

const (
	// ContextApp is a directory holding exactly one app.
	ContextApp Context = "app"
	// ContextMultiApp is a workspace whose config lists several apps under "projects".
	ContextMultiApp Context = "multiapp"
)

// Project is an app located on disk together with its configuration.
type Project struct {
	// Dir is the app directory.
	Dir string
	// RootDir is the directory containing the config file. It equals Dir for
	// ContextApp and is the workspace root for ContextMultiApp.
	RootDir string
	// Context is the directory layout.
	Context Context
	// ID is the sub-project key inside a multi-app workspace.
	ID string
	// Config reads and writes this project's configuration.
	Config *Config
}

// Type returns the configured project type.
func (p *Project) Type() Type {
	return Type(p.Config.GetString("type"))
}

// Name returns the configured display name.
func (p *Project) Name() string {
	return p.Config.GetString("name")
}

// Load reads the single-app project rooted at dir.
func Load(dir string) (*Project, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrNotFound, dir)
		}
		return nil, err
	}
	return &Project{
		Dir:     dir,
		RootDir: dir,
		Context: ContextApp,
		Config:  OpenConfig(configPath, ""),
	}, nil
}

// NewMultiApp returns the sub-project id of the workspace at rootDir whose
// app lives in dir. Configuration keys are scoped to projects.<id>.
func NewMultiApp(rootDir, id, dir string) *Project {
	return &Project{
		Dir:     dir,
		RootDir: rootDir,
		Context: ContextMultiApp,
		ID:      id,
		Config:  OpenConfig(filepath.Join(rootDir, ConfigFileName), "projects."+EscapeKey(id)),
	}
}

// Find looks for a project configuration in dir and its parents. It returns
// nil without error when none exists.
func Find(dir string) (*Project, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	for current := dir; ; {
		configPath := filepath.Join(current, ConfigFileName)
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			return detect(current, dir, data)
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
		}

		parent := filepath.Dir(current)
		if parent == current {
			return nil, nil
		}
		current = parent
	}
}

func detect(rootDir, cwd string, data []byte) (*Project, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON in %s", filepath.Join(rootDir, ConfigFileName))
	}

	projects := gjson.GetBytes(data, "projects")
	if !projects.IsObject() {
		log.Printf("found app project at %s", rootDir)
		return &Project{
			Dir:     rootDir,
			RootDir: rootDir,
			Context: ContextApp,
			Config:  OpenConfig(filepath.Join(rootDir, ConfigFileName), ""),
		}, nil
	}

	id, dir := "", rootDir
	projects.ForEach(func(key, value gjson.Result) bool {
		root := value.Get("root").String()
		if root == "" {
			return true
		}
		candidate := filepath.Join(rootDir, filepath.FromSlash(root))
		if cwd == candidate || strings.HasPrefix(cwd, candidate+string(os.PathSeparator)) {
			id, dir = key.String(), candidate
			return false
		}
		return true
	})
	if id == "" {
		if def := gjson.GetBytes(data, "defaultProject").String(); def != "" {
			id = def
			if root := projects.Get(EscapeKey(def) + ".root").String(); root != "" {
				dir = filepath.Join(rootDir, filepath.FromSlash(root))
			}
		}
	}

	log.Printf("found multi-app workspace at %s (project %q)", rootDir, id)
	p := NewMultiApp(rootDir, id, dir)
	return p, nil
}
