// Package archive reads the zip dumps written by the unzbd tools.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrEntryNotFound is returned when an archive has no entry with the given
// name. Callers treat it as recoverable.
var ErrEntryNotFound = errors.New("entry not found")

// Archive is an open zip dump.
type Archive struct {
	Path string

	rc      *zip.ReadCloser
	entries map[string]*zip.File
}

// Open opens the zip file at path.
func Open(path string) (*Archive, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	a := &Archive{
		Path:    path,
		rc:      rc,
		entries: make(map[string]*zip.File, len(rc.File)),
	}
	for _, f := range rc.File {
		a.entries[f.Name] = f
	}
	return a, nil
}

// Stem is the archive file name without directory or extension
// ("rmechtex" for "/data/rmechtex.zip").
func (a *Archive) Stem() string {
	base := filepath.Base(a.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Names lists entry names in archive order.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.rc.File))
	for _, f := range a.rc.File {
		names = append(names, f.Name)
	}
	return names
}

// Has reports whether an entry exists.
func (a *Archive) Has(name string) bool {
	_, ok := a.entries[name]
	return ok
}

// ReadFile returns the contents of the named entry.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	f, ok := a.entries[name]
	if !ok {
		return nil, fmt.Errorf("archive: %s: %q: %w", a.Stem(), name, ErrEntryNotFound)
	}
	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("archive: %s: open %q: %w", a.Stem(), name, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("archive: %s: read %q: %w", a.Stem(), name, err)
	}
	return data, nil
}

// Extract writes the named entry below dir and returns the written path.
func (a *Archive) Extract(name, dir string) (string, error) {
	f, ok := a.entries[name]
	if !ok {
		return "", fmt.Errorf("archive: %s: %q: %w", a.Stem(), name, ErrEntryNotFound)
	}
	dst := filepath.Join(dir, filepath.FromSlash(name))
	if !strings.HasPrefix(dst, filepath.Clean(dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive: %s: entry %q escapes extraction dir", a.Stem(), name)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("archive: %s: %w", a.Stem(), err)
	}

	r, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("archive: %s: open %q: %w", a.Stem(), name, err)
	}
	defer r.Close()

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("archive: %s: %w", a.Stem(), err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return "", fmt.Errorf("archive: %s: extract %q: %w", a.Stem(), name, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("archive: %s: %w", a.Stem(), err)
	}
	return dst, nil
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	return a.rc.Close()
}
