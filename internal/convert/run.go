package convert

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"mech3-scene/internal/archive"
	"mech3-scene/internal/scene"
	"mech3-scene/internal/schema"
	"mech3-scene/internal/texture"
)

// Entry names inside the dump archives.
const (
	MaterialsEntry = "materials.json"
	NodesEntry     = "nodes.json"
	MeshesEntry    = "meshes.json"
)

// ModelEntry returns the archive entry of a mechlib model.
func ModelEntry(model string) string {
	return "mech_" + model + ".json"
}

// Models lists the model names in a mechlib archive, sorted.
func Models(path string) ([]string, error) {
	a, err := archive.Open(path)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	defer a.Close()

	var out []string
	for _, name := range a.Names() {
		if strings.HasPrefix(name, "mech_") && strings.HasSuffix(name, ".json") {
			out = append(out, strings.TrimSuffix(strings.TrimPrefix(name, "mech_"), ".json"))
		}
	}
	sort.Strings(out)
	return out, nil
}

// RunMechlib converts one model of a mechlib archive. Texture staging is
// released before it returns, on every path. The scene is nil whenever the
// error is not.
func RunMechlib(path, model string, opts Options) (sc *scene.Scene, err error) {
	a, err := archive.Open(path)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	defer a.Close()

	materials, err := readMaterials(a)
	if err != nil {
		return nil, err
	}
	raw, err := a.ReadFile(ModelEntry(model))
	if err != nil {
		return nil, fmt.Errorf("convert: model %s: %w", model, err)
	}
	data, err := schema.DecodeModel(raw)
	if err != nil {
		return nil, fmt.Errorf("convert: model %s: %w", model, err)
	}

	var motions []Motion
	if opts.MotionArchive != "" {
		ma, err := archive.Open(opts.MotionArchive)
		if err != nil {
			return nil, fmt.Errorf("convert: %w", err)
		}
		motions, err = LoadMotions(ma, model)
		ma.Close()
		if err != nil {
			return nil, err
		}
		opts.logger().Debug("motions loaded", "model", model, "count", len(motions))
	}

	src, err := openSources(opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		sc, err = release(sc, err, src)
	}()

	return BuildMechlib(model, data, materials, motions, src, opts)
}

// RunGamez converts the world in a gamez archive.
func RunGamez(path string, opts Options) (sc *scene.Scene, err error) {
	a, err := archive.Open(path)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	defer a.Close()

	materials, err := readMaterials(a)
	if err != nil {
		return nil, err
	}
	raw, err := a.ReadFile(NodesEntry)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	nodes, err := schema.DecodeNodes(raw)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	raw, err = a.ReadFile(MeshesEntry)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	meshes, err := schema.DecodeMeshes(raw)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	src, err := openSources(opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		sc, err = release(sc, err, src)
	}()

	return BuildGamez(a.Stem(), nodes, meshes, materials, src, opts)
}

func readMaterials(a *archive.Archive) ([]schema.MaterialSpec, error) {
	raw, err := a.ReadFile(MaterialsEntry)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	materials, err := schema.DecodeMaterials(raw)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	return materials, nil
}

func openSources(opts Options) (*texture.Sources, error) {
	src, err := texture.OpenSources(opts.TextureArchives)
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}
	src.Logger = opts.Logger
	return src, nil
}

// release closes the texture sources of a finished run. A run whose
// sources fail to close returns no scene.
func release(sc *scene.Scene, err error, src io.Closer) (*scene.Scene, error) {
	if cerr := src.Close(); cerr != nil {
		return nil, errors.Join(err, fmt.Errorf("convert: release textures: %w", cerr))
	}
	return sc, err
}
