package convert

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"mech3-scene/internal/archive/archivetest"
	"mech3-scene/internal/mathutil/mathtest"
	"mech3-scene/internal/schema"
	"mech3-scene/internal/texture"
)

const gamezMaterials = `[
	{"Textured": {"texture": "rock.tif", "flag": 2}},
	{"Colored": {"color": [0, 255, 0]}},
	{"Textured": {"texture": "unused.tif", "flag": 0}}
]`

const gamezNodes = `[
	{"World": {"name": "world1", "parent": null}},
	{"Object3d": {"name": "hill", "mesh_index": 0, "parent": 0,
		"transformation": {"translation": [10, 0, 0], "rotation": [0, 0, 0]}}},
	{"Empty": {"name": "marker", "parent": 0}},
	{"Object3d": {"name": "lost", "mesh_index": -1, "parent": 2}},
	{"Camera": {"name": "cam"}},
	{"Lod": {"name": "tree_lod", "parent": 4}}
]`

const gamezMeshes = `[
	{"vertices": [[0, 0, 0], [1, 0, 0], [0, 1, 0], [1, 1, 0]],
	 "polygons": [
		{"vertex_indices": [0, 1, 2], "texture_index": 0, "vertices_ptr": 1,
		 "uv_coords": [[0, 0], [1, 0], [0, 1]], "vertex_colors": [[255, 255, 255], [0, 0, 0], [255, 0, 0]]},
		{"vertex_indices": [1, 3, 2], "texture_index": 1, "vertices_ptr": 2}
	 ]},
	{"vertices": [[0, 0, 0], [1, 0, 0], [0, 1, 0]],
	 "polygons": [{"vertex_indices": [0, 1, 2], "texture_index": 2, "vertices_ptr": 3}]}
]`

func decodeWorld(t *testing.T) ([]schema.Node, []schema.MeshData, []schema.MaterialSpec) {
	t.Helper()
	nodes, err := schema.DecodeNodes([]byte(gamezNodes))
	if err != nil {
		t.Fatalf("nodes: %v", err)
	}
	meshes, err := schema.DecodeMeshes([]byte(gamezMeshes))
	if err != nil {
		t.Fatalf("meshes: %v", err)
	}
	materials, err := schema.DecodeMaterials([]byte(gamezMaterials))
	if err != nil {
		t.Fatalf("materials: %v", err)
	}
	return nodes, meshes, materials
}

func TestBuildGamez(t *testing.T) {
	nodes, meshes, materials := decodeWorld(t)
	sc, err := BuildGamez("gamez", nodes, meshes, materials, nil, quiet())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if len(sc.Meshes) != 2 || sc.Meshes[0].Name != "0000" || sc.Meshes[1].Name != "0001" {
		t.Fatalf("meshes not built up front")
	}
	// world1, hill, Camera cam, Lod tree_lod. The Empty and its subtree are dropped.
	if len(sc.Objects) != 4 {
		t.Fatalf("got %d objects, want 4", len(sc.Objects))
	}
	if _, ok := sc.Object("lost"); ok {
		t.Fatalf("child of an Empty must be dropped")
	}

	world, ok := sc.Object("World world1")
	if !ok || world.Collection != WorldCollection || world.Scale != RootScale {
		t.Fatalf("world root: %+v", world)
	}
	// X by 90 degrees, then Z by 180 degrees.
	wantRot := mgl64.QuatRotate(math.Pi, mgl64.Vec3{0, 0, 1}).Mul(mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0}))
	if !mathtest.NearQuat(world.Rotation, wantRot) {
		t.Fatalf("root rotation %v, want %v", world.Rotation, wantRot)
	}

	hill, ok := sc.Object("hill")
	if !ok || hill.Mesh != sc.Meshes[0] || hill.Collection != WorldCollection {
		t.Fatalf("hill: %+v", hill)
	}
	if hill.Location != (mgl64.Vec3{10, 0, 0}) || hill.Scale != 1 {
		t.Fatalf("child keeps its own transform, got %v scale %v", hill.Location, hill.Scale)
	}

	cam, ok := sc.Object("Camera cam")
	if !ok || cam.Collection != OtherCollection || sc.Visible(sc.Roots()[1]) {
		t.Fatalf("non-world roots go to the hidden collection")
	}
	if _, ok := sc.Object("Lod tree_lod"); !ok {
		t.Fatalf("lod child missing")
	}

	// Only materials of meshes used by an object are resolved.
	if len(sc.Materials) != 2 {
		t.Fatalf("got %d materials, want 2", len(sc.Materials))
	}
	rock := sc.Materials[0]
	if rock.Name != "rock 2" || !rock.BlendAlpha || rock.ShowBackface {
		t.Fatalf("textured gamez material: %+v", rock)
	}
	if rock.Image != texture.Placeholder() {
		t.Fatalf("expected placeholder image")
	}
	if sc.Meshes[1].Materials != nil {
		t.Fatalf("unused mesh should not resolve materials")
	}
	c := sc.Meshes[0].Faces[0].Corners[2].Color
	if c == nil || c[0] != 1 || c[1] != 0 || c[3] != 1 {
		t.Fatalf("corner color %v", c)
	}
}

func TestBuildGamezRejectsCycles(t *testing.T) {
	nodes := []schema.Node{
		{Kind: schema.KindObject3d, Name: "a", MeshIndex: -1, Parent: ptr(1)},
		{Kind: schema.KindObject3d, Name: "b", MeshIndex: -1, Parent: ptr(0)},
	}
	_, err := BuildGamez("gamez", nodes, nil, nil, nil, quiet())
	if !errors.Is(err, schema.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestRunGamezTexturePriority(t *testing.T) {
	gamez := archivetest.WriteZip(t, "gamez.zip", map[string][]byte{
		MaterialsEntry: []byte(gamezMaterials),
		NodesEntry:     []byte(gamezNodes),
		MeshesEntry:    []byte(gamezMeshes),
	})
	rtexture := archivetest.WriteZip(t, "rtexture.zip", map[string][]byte{
		"other.png": pngBytes(t),
	})
	rmechtex := archivetest.WriteZip(t, "rmechtex.zip", map[string][]byte{
		"rock.png": pngBytes(t),
	})
	opts := quiet()
	opts.TextureArchives = []string{rtexture, rmechtex}

	sc, err := RunGamez(gamez, opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if sc.Name != "gamez" {
		t.Fatalf("scene name %q", sc.Name)
	}
	rock := sc.Materials[0]
	if rock.Image == texture.Placeholder() || rock.Image.FilePath != "//rock.png" {
		t.Fatalf("rock should load from the second archive: %+v", rock.Image)
	}
	if sc.Missing != 0 {
		t.Fatalf("missing = %d", sc.Missing)
	}
}
