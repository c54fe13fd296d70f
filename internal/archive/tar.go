// Package archive extracts starter archives.
package archive

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tacogips/ionstart/internal/debug"
)

var log = debug.New("archive")

// ExtractOptions controls ExtractTarGz.
type ExtractOptions struct {
	// StripComponents removes that many leading path elements from entry names.
	StripComponents int
}

// ExtractTarGz reads a gzip-compressed tar stream and writes its entries below
// dest. The stream is consumed incrementally; the archive is never held in
// memory. Entries resolving outside dest are rejected.
func ExtractTarGz(r io.Reader, dest string, opts ExtractOptions) error {
	gzr, err := gzip.NewReader(bufio.NewReader(r))
	if err != nil {
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzr.Close()

	return ExtractTar(gzr, dest, opts)
}

// ExtractTar extracts an uncompressed tar stream below dest.
func ExtractTar(r io.Reader, dest string, opts ExtractOptions) error {
	root, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("failed to resolve destination: %w", err)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return fmt.Errorf("failed to create destination: %w", err)
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return fmt.Errorf("failed to resolve destination: %w", err)
	}

	tr := tar.NewReader(r)
	files := 0
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read tar entry: %w", err)
		}

		name := stripComponents(header.Name, opts.StripComponents)
		if name == "" {
			continue
		}

		target, err := safeJoin(root, name)
		if err != nil {
			return err
		}
		// Links extracted earlier may redirect the parent directory.
		parent, err := realPath(filepath.Dir(target))
		if err != nil {
			return err
		}
		if !within(realRoot, parent) {
			return fmt.Errorf("archive entry escapes destination through a symlink: %s", name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, dirMode(header.Mode)); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, header.Mode); err != nil {
				return err
			}
			files++
		case tar.TypeSymlink:
			if err := writeSymlink(realRoot, parent, target, header.Linkname); err != nil {
				return err
			}
		default:
			log.Printf("skipping %s (type %c)", header.Name, header.Typeflag)
		}
	}

	log.Printf("extracted %d files into %s", files, root)
	return nil
}

func writeFile(target string, r io.Reader, mode int64) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	perm := os.FileMode(mode).Perm()
	if perm == 0 {
		perm = 0644
	}
	if fi, err := os.Lstat(target); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("failed to replace symlink %s: %w", target, err)
		}
	}

	outFile, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", target, err)
	}

	if _, err := io.Copy(outFile, r); err != nil {
		outFile.Close()
		return fmt.Errorf("failed to write file %s: %w", target, err)
	}
	return outFile.Close()
}

// writeSymlink creates target -> linkname. The link is resolved against the
// real location of its parent, so chained links cannot climb out of root.
func writeSymlink(realRoot, parent, target, linkname string) error {
	resolved := linkname
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(parent, linkname)
	}
	if !within(realRoot, filepath.Clean(resolved)) {
		return fmt.Errorf("symlink %s points outside destination: %s", target, linkname)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	_ = os.Remove(target)
	if err := os.Symlink(linkname, target); err != nil {
		return fmt.Errorf("failed to create symlink %s: %w", target, err)
	}
	return nil
}

func dirMode(mode int64) os.FileMode {
	perm := os.FileMode(mode).Perm()
	if perm == 0 {
		return 0755
	}
	return perm | 0700
}

func stripComponents(name string, n int) string {
	name = strings.TrimPrefix(filepath.ToSlash(name), "./")
	if n <= 0 {
		return strings.TrimSuffix(name, "/")
	}
	parts := strings.SplitN(name, "/", n+1)
	if len(parts) <= n {
		return ""
	}
	return strings.TrimSuffix(parts[n], "/")
}

// safeJoin joins name to root and rejects results outside root.
func safeJoin(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if !within(root, target) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return target, nil
}

// realPath resolves symlinks in the longest existing prefix of path and
// appends the components that do not exist yet.
func realPath(path string) (string, error) {
	var missing []string
	current := path
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			for i := len(missing) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, missing[i])
			}
			return resolved, nil
		}
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to resolve %s: %w", current, err)
		}
		if fi, lerr := os.Lstat(current); lerr == nil && fi.Mode()&os.ModeSymlink != 0 {
			return "", fmt.Errorf("archive path goes through dangling symlink %s", current)
		}
		parent := filepath.Dir(current)
		if parent == current {
			return "", fmt.Errorf("failed to resolve %s: %w", path, err)
		}
		missing = append(missing, filepath.Base(current))
		current = parent
	}
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
