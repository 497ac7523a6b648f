package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestEntry represents one model in the output manifest.
type ManifestEntry struct {
	Model   string `json:"model"`
	Output  string `json:"output,omitempty"`
	RunID   string `json:"run_id,omitempty"`
	Faces   int    `json:"faces"`
	Bones   int    `json:"bones"`
	Tracks  int    `json:"tracks"`
	Missing int    `json:"missing_textures"`
	Error   string `json:"error,omitempty"`
}

// WriteManifest writes manifest.json for a batch. Output paths are written
// relative to the manifest's directory.
func WriteManifest(path string, results []Result) error {
	base := filepath.Dir(path)
	entries := make([]ManifestEntry, len(results))
	for i, r := range results {
		out := r.Output
		if rel, err := filepath.Rel(base, out); err == nil && out != "" {
			out = filepath.ToSlash(rel)
		}
		entries[i] = ManifestEntry{
			Model:   r.Model,
			Output:  out,
			RunID:   r.RunID,
			Faces:   r.Faces,
			Bones:   r.Bones,
			Tracks:  r.Tracks,
			Missing: r.Missing,
			Error:   r.Error,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: manifest: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
