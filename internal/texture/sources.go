package texture

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"mech3-scene/internal/archive"
	"mech3-scene/internal/logging"
)

// ErrNotFound is returned when no configured archive holds a texture.
var ErrNotFound = errors.New("texture not found")

// Sources looks textures up in an ordered list of texture archives.
// Earlier archives win. Entries are staged in a temp directory that lives
// until Close.
type Sources struct {
	Logger *log.Logger

	archives []*archive.Archive
	tempDir  string
}

// OpenSources opens every archive in priority order. An archive that cannot
// be opened fails the whole call.
func OpenSources(paths []string) (*Sources, error) {
	s := &Sources{}
	for _, p := range paths {
		a, err := archive.Open(p)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("texture: %w", err)
		}
		s.archives = append(s.archives, a)
	}
	if len(s.archives) > 0 {
		dir, err := os.MkdirTemp("", "mech3-textures-")
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("texture: staging dir: %w", err)
		}
		s.tempDir = dir
	}
	return s, nil
}

// Len returns the number of configured archives.
func (s *Sources) Len() int {
	return len(s.archives)
}

// Lookup finds <stem>.png, or failing that <stem>.tga, in the first archive
// that has either, stages it, loads it and returns a packed image.
func (s *Sources) Lookup(stem string) (*Image, error) {
	for _, a := range s.archives {
		for _, ext := range Extensions {
			filename := stem + ext
			if !a.Has(filename) {
				continue
			}
			path, err := a.Extract(filename, filepath.Join(s.tempDir, a.Stem()))
			if err != nil {
				return nil, fmt.Errorf("texture: %w", err)
			}
			px, err := LoadTexture(path)
			if err != nil {
				return nil, err
			}
			logging.Or(s.Logger).Debug("texture loaded", "name", stem, "archive", a.Stem(), "file", filename)
			return &Image{
				Name:     stem,
				Pixels:   px,
				Packed:   true,
				FilePath: "//" + filename,
			}, nil
		}
	}
	return nil, fmt.Errorf("texture: %q: %w", stem, ErrNotFound)
}

// Close releases the archives and removes the staging directory.
func (s *Sources) Close() error {
	var errs []error
	for _, a := range s.archives {
		if err := a.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.archives = nil
	if s.tempDir != "" {
		if err := os.RemoveAll(s.tempDir); err != nil {
			errs = append(errs, err)
		}
		s.tempDir = ""
	}
	return errors.Join(errs...)
}
