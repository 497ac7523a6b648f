package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"mech3-scene/internal/archive/archivetest"
	"mech3-scene/internal/convert"
	"mech3-scene/internal/gltfexport"
	"mech3-scene/internal/logging"
)

const materialsJSON = `[{"Colored": {"color": {"r": 10, "g": 20, "b": 30}}}]`

const modelJSON = `{
	"nodes": [
		{"Object3d": {"name": "root", "mesh_index": -1, "children": [1]}},
		{"Object3d": {"name": "hip", "mesh_index": 0, "children": []}}
	],
	"meshes": [{
		"vertices": [{"x": 0, "y": 0, "z": 0}, {"x": 1, "y": 0, "z": 0}, {"x": 0, "y": 1, "z": 0}],
		"polygons": [{"vertex_indices": [0, 1, 2], "texture_index": 0}]
	}]
}`

func TestRunWritesModelsAndManifest(t *testing.T) {
	archive := archivetest.WriteZip(t, "mechlib.zip", map[string][]byte{
		convert.MaterialsEntry:       []byte(materialsJSON),
		convert.ModelEntry("madcat"): []byte(modelJSON),
		convert.ModelEntry("owens"):  []byte(modelJSON),
		convert.ModelEntry("broken"): []byte(`{"nodes": []}`),
	})
	models, err := convert.Models(archive)
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	out := t.TempDir()

	results := Run(Config{
		Logger:  logging.Discard(),
		Archive: archive,
		Convert: convert.Options{Logger: logging.Discard()},
		Export:  gltfexport.Options{Logger: logging.Discard()},
		OutputPath: func(model string) string {
			return filepath.Join(out, "models", model+".glb")
		},
		Workers: 2,
	}, models)

	if len(results) != 3 {
		t.Fatalf("got %d results", len(results))
	}
	byModel := map[string]Result{}
	for _, r := range results {
		byModel[r.Model] = r
	}
	if r := byModel["broken"]; r.Success || r.Error == "" {
		t.Fatalf("broken model should fail: %+v", r)
	}
	for _, name := range []string{"madcat", "owens"} {
		r := byModel[name]
		if !r.Success || r.Faces != 1 || r.Bones != 1 || r.RunID == "" {
			t.Fatalf("%s: %+v", name, r)
		}
		if _, err := os.Stat(r.Output); err != nil {
			t.Fatalf("%s: output missing: %v", name, err)
		}
	}
	if byModel["madcat"].RunID == byModel["owens"].RunID {
		t.Fatalf("runs must have distinct ids")
	}

	manifest := filepath.Join(out, "manifest.json")
	if err := WriteManifest(manifest, results); err != nil {
		t.Fatalf("manifest: %v", err)
	}
	data, err := os.ReadFile(manifest)
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var entries []ManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	for _, e := range entries {
		if e.Model == "madcat" && e.Output != "models/madcat.glb" {
			t.Fatalf("output should be relative, got %q", e.Output)
		}
	}
}
