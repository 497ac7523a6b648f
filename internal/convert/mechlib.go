package convert

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"mech3-scene/internal/material"
	"mech3-scene/internal/mesh"
	"mech3-scene/internal/nodetree"
	"mech3-scene/internal/pose"
	"mech3-scene/internal/scene"
	"mech3-scene/internal/schema"
	"mech3-scene/internal/skeleton"
)

// hiddenMeshes are mesh objects kept in the scene but not shown.
var hiddenMeshes = map[string]bool{
	"mesh_head": true,
}

// BuildMechlib converts one mechlib model. textures may be nil.
//
// Phases run in order: node tree, skeleton, one mesh object per bone that
// references a mesh, the default pose, then one track per motion. The
// per-model calf correction is only applied when there are no motions.
func BuildMechlib(name string, model *schema.Model, materials []schema.MaterialSpec,
	motions []Motion, textures material.TextureLookup, opts Options) (*scene.Scene, error) {

	logger := opts.logger().With("model", name)

	tree, err := nodetree.Build(model.Nodes, opts.Scheme, nodetree.ParentOptions{})
	if err != nil {
		return nil, fmt.Errorf("convert: %s: %w", name, err)
	}
	skel, err := skeleton.Build(tree)
	if err != nil {
		return nil, fmt.Errorf("convert: %s: %w", name, err)
	}

	cache := material.NewCache(materials, material.Mechlib, textures)
	cache.Logger = logger
	builder := &mesh.Builder{Logger: logger, Resolver: cache}

	sc := scene.New(name, material.Mechlib)
	sc.Skeleton = skel
	logger = logger.With("run", sc.RunID.String())

	for _, b := range skel.Bones {
		rest := skel.Rest[b.Name]
		if rest.MeshIndex < 0 {
			continue
		}
		data, err := meshAt(model.Meshes, rest.MeshIndex, "bone "+b.Name)
		if err != nil {
			return nil, fmt.Errorf("convert: %s: %w", name, err)
		}
		objName := "mesh_" + b.Name
		m, _, err := builder.Build(objName, data)
		if err != nil {
			return nil, fmt.Errorf("convert: %s: %w", name, err)
		}
		sc.Meshes = append(sc.Meshes, m)
		sc.AddObject(scene.Object{
			Name:     objName,
			Kind:     schema.KindObject3d,
			Mesh:     m,
			Parent:   -1,
			Bone:     b.Name,
			Rotation: mgl64.QuatIdent(),
			Hidden:   hiddenMeshes[objName],
		})
	}

	anim := pose.NewAnimator(skel, name)
	anim.Logger = logger
	def, err := anim.Default(len(motions) == 0)
	if err != nil {
		return nil, fmt.Errorf("convert: %s: %w", name, err)
	}
	sc.DefaultPose = &def
	for _, mo := range motions {
		if _, err := anim.Animate(mo.Name, mo.Motion); err != nil {
			return nil, fmt.Errorf("convert: %s: %w", name, err)
		}
	}
	sc.Tracks = anim.Tracks()

	sc.Materials = cache.Resolved()
	sc.Missing = cache.Missing()
	logger.Info("converted", "summary", sc.Summary())
	return sc, nil
}
