package convert

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"mech3-scene/internal/material"
	"mech3-scene/internal/mathutil"
	"mech3-scene/internal/mesh"
	"mech3-scene/internal/nodetree"
	"mech3-scene/internal/scene"
	"mech3-scene/internal/schema"
)

// Collections of a world scene.
const (
	WorldCollection = "world"
	OtherCollection = "other"
)

// RootScale shrinks world roots; the maps are huge.
const RootScale = 0.05

// rootRotation turns the Y-up world into a Z-up scene.
var rootRotation = mathutil.EulerToQuat(mathutil.Deg2Rad(90), 0, mathutil.Deg2Rad(180))

// BuildGamez converts a world dump. Every mesh is built up front as "%04d";
// its materials are resolved when the first object uses it. Empty nodes are
// dropped together with everything below them.
func BuildGamez(name string, nodes []schema.Node, meshes []schema.MeshData,
	materials []schema.MaterialSpec, textures material.TextureLookup, opts Options) (*scene.Scene, error) {

	logger := opts.logger().With("world", name)

	tree, err := nodetree.FromParents(nodes, nodetree.ParentOptions{
		SkipKinds: []schema.Kind{schema.KindEmpty},
	})
	if err != nil {
		return nil, fmt.Errorf("convert: %s: %w", name, err)
	}

	cache := material.NewCache(materials, material.Gamez, textures)
	cache.Logger = logger
	builder := &mesh.Builder{Logger: logger}

	sc := scene.New(name, material.Gamez)
	logger = logger.With("run", sc.RunID.String())

	for i := range meshes {
		m, _, err := builder.Build(fmt.Sprintf("%04d", i), &meshes[i])
		if err != nil {
			return nil, fmt.Errorf("convert: %s: %w", name, err)
		}
		sc.Meshes = append(sc.Meshes, m)
	}

	sc.AddCollection(WorldCollection, false)
	sc.AddCollection(OtherCollection, true)

	attach := func(m *mesh.Mesh) error {
		if m.Materials != nil {
			return nil
		}
		m.Materials = make([]*material.Material, len(m.Textures))
		for slot, tex := range m.Textures {
			mat, err := cache.Resolve(tex)
			if err != nil {
				return err
			}
			m.Materials[slot] = mat
		}
		return nil
	}

	var visit func(i, parent int, collection string) error
	visit = func(i, parent int, collection string) error {
		node := tree.Node(i)
		o := scene.Object{
			Name:       node.Name,
			Kind:       node.Kind,
			Parent:     parent,
			Rotation:   mgl64.QuatIdent(),
			Collection: collection,
		}
		if node.Kind != schema.KindObject3d {
			o.Name = node.Kind.String() + " " + node.Name
		} else if node.HasMesh() {
			if _, err := meshAt(meshes, node.MeshIndex, "node "+node.Name); err != nil {
				return err
			}
			o.Mesh = sc.Meshes[node.MeshIndex]
			if err := attach(o.Mesh); err != nil {
				return err
			}
		}
		if t := node.Transformation; t != nil {
			o.Location = t.Translation.Mgl()
			o.Rotation = mathutil.EulerToQuat(t.Rotation.X, t.Rotation.Y, t.Rotation.Z)
		}
		if parent < 0 {
			o.Rotation = rootRotation
			o.Scale = RootScale
		}
		idx := sc.AddObject(o)
		for _, c := range tree.Children(i) {
			if err := visit(c, idx, collection); err != nil {
				return err
			}
		}
		return nil
	}

	for _, r := range tree.Roots {
		collection := OtherCollection
		if tree.Node(r).Kind == schema.KindWorld {
			collection = WorldCollection
		}
		if err := visit(r, -1, collection); err != nil {
			return nil, fmt.Errorf("convert: %s: %w", name, err)
		}
	}

	sc.Materials = cache.Resolved()
	sc.Missing = cache.Missing()
	logger.Info("converted", "summary", sc.Summary())
	return sc, nil
}
