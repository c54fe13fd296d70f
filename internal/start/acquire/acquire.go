// Package acquire materializes a creation plan into a populated project directory.
package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tacogips/ionstart/internal/archive"
	"github.com/tacogips/ionstart/internal/debug"
	"github.com/tacogips/ionstart/internal/httpclient"
	"github.com/tacogips/ionstart/internal/output"
	"github.com/tacogips/ionstart/internal/project"
	"github.com/tacogips/ionstart/internal/start/model"
	"github.com/tacogips/ionstart/internal/tasks"
)

var log = debug.New("start:acquire")

// Downloader streams a URL into a writer.
type Downloader interface {
	Download(ctx context.Context, rawURL string, w io.Writer, progress httpclient.ProgressFunc, opts ...httpclient.RequestOption) error
}

// Cloner clones git repositories.
type Cloner interface {
	Clone(ctx context.Context, url, dir string) error
}

// Engine fetches starter sources.
type Engine struct {
	HTTP   Downloader
	Git    func() Cloner
	Tasks  tasks.Sink
	Colors output.Colors
}

// PrepareDirectory creates dir, removing it first when mayOverwrite is set.
func (e *Engine) PrepareDirectory(dir string, mayOverwrite bool) error {
	e.Tasks.Next(fmt.Sprintf("Preparing directory %s", e.Colors.Input(output.PrettyPath(dir))))
	defer e.Tasks.End()

	if mayOverwrite {
		log.Printf("removing %s", dir)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}

// Clone clones url into dir with progress shown on the terminal.
func (e *Engine) Clone(ctx context.Context, url, dir string) error {
	if err := e.Git().Clone(ctx, url, dir); err != nil {
		return fmt.Errorf("failed to clone %s: %w", url, err)
	}
	return nil
}

// Download fetches the archive of tmpl and extracts it into dir while it
// streams, reporting byte progress to the task sink.
func (e *Engine) Download(ctx context.Context, tmpl model.StarterTemplate, dir string) error {
	if tmpl.ArchiveURL == "" {
		return fmt.Errorf("starter %s has no archive URL", tmpl.Name)
	}

	task := e.Tasks.Next(fmt.Sprintf("Downloading and extracting %s starter", e.Colors.Input(tmpl.Name)))
	log.Printf("tar extraction created for %s", dir)

	pr, pw := io.Pipe()
	extracted := make(chan error, 1)
	go func() {
		err := archive.ExtractTarGz(pr, dir, archive.ExtractOptions{})
		if err == nil {
			// Consume trailing padding so the download can finish.
			_, err = io.Copy(io.Discard, pr)
		}
		pr.CloseWithError(err)
		extracted <- err
	}()

	downloadErr := e.HTTP.Download(ctx, tmpl.ArchiveURL, pw, task.Progress)
	pw.CloseWithError(downloadErr)
	extractErr := <-extracted

	switch {
	case extractErr != nil && (downloadErr == nil || errors.Is(downloadErr, extractErr)):
		return fmt.Errorf("failed to extract %s: %w", tmpl.ArchiveURL, extractErr)
	case downloadErr != nil:
		return fmt.Errorf("failed to download %s: %w", tmpl.ArchiveURL, downloadErr)
	}

	e.Tasks.End()
	return nil
}

// RegisterProject returns the project model for the acquired directory.
// Inside a multi-app workspace a generated app drops its own configuration
// file and is registered in the workspace configuration instead.
func RegisterProject(current *project.Project, s model.Schema) (*project.Project, error) {
	dir := s.ProjectDir()

	if current != nil && current.Context == project.ContextMultiApp && !s.IsCloned() {
		g, ok := s.(*model.Generated)
		if !ok {
			return nil, fmt.Errorf("unexpected schema %T", s)
		}

		configPath := filepath.Join(dir, project.ConfigFileName)
		if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove %s: %w", configPath, err)
		}

		root, err := filepath.Rel(current.RootDir, dir)
		if err != nil {
			return nil, fmt.Errorf("failed to compute project root: %w", err)
		}

		p := project.NewMultiApp(current.RootDir, s.ProjectID(), dir)
		if err := p.Config.Set("type", string(g.ProjectType())); err != nil {
			return nil, err
		}
		if err := p.Config.Set("root", filepath.ToSlash(root)); err != nil {
			return nil, err
		}
		log.Printf("registered %s in workspace %s as %s", dir, current.RootDir, root)
		return p, nil
	}

	p, err := project.Load(dir)
	if err != nil {
		return nil, err
	}
	return p, nil
}
