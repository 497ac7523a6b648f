package convert

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"strings"
	"testing"

	"mech3-scene/internal/archive/archivetest"
	"mech3-scene/internal/logging"
	"mech3-scene/internal/nodetree"
	"mech3-scene/internal/schema"
	"mech3-scene/internal/texture"
)

const materialsJSON = `[
	{"Colored": {"color": {"r": 255, "g": 0, "b": 0}}},
	{"Textured": {"texture": "hip_tex", "flag": 0}},
	{"Colored": {"color": {"r": 0, "g": 0, "b": 255}}},
	{"Textured": {"texture": "torso_tex", "flag": 0}}
]`

const modelJSON = `{
	"nodes": [
		{"Object3d": {"name": "root", "mesh_index": -1, "children": [1]}},
		{"Object3d": {"name": "hip", "mesh_index": -1, "parent": 0, "children": [2]}},
		{"Object3d": {"name": "torso", "mesh_index": 0, "parent": 1, "children": [],
			"transformation": {"translation": {"x": 0, "y": 1, "z": 0}, "rotation": {"x": 0, "y": 0, "z": 0}}}}
	],
	"meshes": [{
		"vertices": [{"x": 0, "y": 0, "z": 0}, {"x": 1, "y": 0, "z": 0}, {"x": 0, "y": 1, "z": 0}, {"x": 1, "y": 1, "z": 0}],
		"polygons": [
			{"vertex_indices": [0, 1, 2], "texture_index": 3, "vertices_ptr": 16,
			 "uv_coords": [{"u": 0, "v": 0}, {"u": 1, "v": 0}, {"u": 0, "v": 1}]},
			{"vertex_indices": [1, 3, 2], "texture_index": 0, "vertices_ptr": 32}
		]
	}]
}`

func quiet() Options {
	return Options{Logger: logging.Discard()}
}

func mustModel(t *testing.T, raw string) *schema.Model {
	t.Helper()
	m, err := schema.DecodeModel([]byte(raw))
	if err != nil {
		t.Fatalf("decode model: %v", err)
	}
	return m
}

func mustMaterials(t *testing.T) []schema.MaterialSpec {
	t.Helper()
	m, err := schema.DecodeMaterials([]byte(materialsJSON))
	if err != nil {
		t.Fatalf("decode materials: %v", err)
	}
	return m
}

func TestEndToEndParentScheme(t *testing.T) {
	nodes := []schema.Node{
		{Kind: schema.KindObject3d, Name: "root", MeshIndex: -1, Children: []int{1}},
		{Kind: schema.KindObject3d, Name: "hip", MeshIndex: -1, Parent: ptr(0)},
		{Kind: schema.KindObject3d, Name: "torso", MeshIndex: 0, Parent: ptr(1)},
	}
	model := &schema.Model{Nodes: nodes, Meshes: mustModel(t, modelJSON).Meshes}
	opts := quiet()
	opts.Scheme = nodetree.ByParents

	sc, err := BuildMechlib("test", model, mustMaterials(t), nil, nil, opts)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if sc.Skeleton.Len() != 2 {
		t.Fatalf("got %d bones, want 2", sc.Skeleton.Len())
	}
	hip, _ := sc.Skeleton.Bone("hip")
	torso, ok := sc.Skeleton.Bone("torso")
	if !ok || torso.Parent != hip || hip.Parent != nil {
		t.Fatalf("expected hip -> torso")
	}
	if _, ok := sc.Skeleton.Bone("root"); ok {
		t.Fatalf("root must be discarded")
	}

	if len(sc.Objects) != 1 {
		t.Fatalf("got %d objects, want 1", len(sc.Objects))
	}
	obj := sc.Objects[0]
	if obj.Name != "mesh_torso" || obj.Bone != "torso" {
		t.Fatalf("mesh object %q on bone %q", obj.Name, obj.Bone)
	}
	if len(obj.Mesh.Faces) != 2 {
		t.Fatalf("got %d faces, want 2", len(obj.Mesh.Faces))
	}
	if obj.Mesh.Faces[0].Material != 0 || obj.Mesh.Faces[1].Material != 1 {
		t.Fatalf("face materials %d, %d", obj.Mesh.Faces[0].Material, obj.Mesh.Faces[1].Material)
	}
	if len(sc.Materials) != 2 {
		t.Fatalf("got %d resolved materials, want 2", len(sc.Materials))
	}
	if sc.Materials[0].Name != "material_0" || sc.Materials[1].Name != "torso_tex" {
		t.Fatalf("materials %q, %q", sc.Materials[0].Name, sc.Materials[1].Name)
	}
	if sc.Materials[1].Image != texture.Placeholder() {
		t.Fatalf("textured material without archives should use the placeholder")
	}
	if sc.DefaultPose == nil || sc.DefaultPose.Name != "default" || len(sc.Tracks) != 0 {
		t.Fatalf("expected only the default pose")
	}
}

func TestChildrenSchemeIsDefault(t *testing.T) {
	sc, err := BuildMechlib("test", mustModel(t, modelJSON), mustMaterials(t), nil, nil, quiet())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if sc.Skeleton.Len() != 2 || len(sc.Objects) != 1 {
		t.Fatalf("bones=%d objects=%d", sc.Skeleton.Len(), len(sc.Objects))
	}
}

func TestMeshIndexOutOfRange(t *testing.T) {
	model := mustModel(t, modelJSON)
	model.Nodes[2].MeshIndex = 5
	_, err := BuildMechlib("test", model, mustMaterials(t), nil, nil, quiet())
	if !errors.Is(err, schema.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestHeadMeshHidden(t *testing.T) {
	model := mustModel(t, modelJSON)
	model.Nodes[2].Name = "head"
	sc, err := BuildMechlib("test", model, mustMaterials(t), nil, nil, quiet())
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if o, ok := sc.Object("mesh_head"); !ok || !o.Hidden {
		t.Fatalf("mesh_head should be hidden")
	}
}

func ptr(i int) *int { return &i }

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = 0x80
	}
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

const motionJSON = `{
	"frame_count": 2,
	"loop_time": 1.0,
	"parts": [
		{"name": "torso", "frames": [
			{"translation": {"x": 5, "y": 5, "z": 5}, "rotation": {"x": 0, "y": 0, "z": 0, "w": 1}},
			{"translation": {"x": 6, "y": 6, "z": 6}, "rotation": {"x": 1, "y": 0, "z": 0, "w": 0}}
		]},
		{"name": "hip", "frames": [
			{"translation": {"x": 0, "y": 2, "z": 0}, "rotation": {"x": 0, "y": 0, "z": 0, "w": 1}},
			{"translation": {"x": 0, "y": 3, "z": 0}, "rotation": {"x": 0, "y": 0, "z": 0, "w": 1}}
		]}
	]
}`

func TestRunMechlibFromArchives(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("TMPDIR", tmp)

	mechlib := archivetest.WriteZip(t, "mechlib.zip", map[string][]byte{
		MaterialsEntry:       []byte(materialsJSON),
		ModelEntry("madcat"): []byte(modelJSON),
	})
	textures := archivetest.WriteZip(t, "rmechtex.zip", map[string][]byte{
		"torso_tex.png": pngBytes(t),
	})
	motions := archivetest.WriteZip(t, "motion.zip", map[string][]byte{
		"madcat_WALK.json": []byte(motionJSON),
		"madcat_run.json":  []byte(motionJSON),
		"thor_walk.json":   []byte(motionJSON),
	}, "madcat_WALK.json", "thor_walk.json", "madcat_run.json")

	opts := quiet()
	opts.TextureArchives = []string{textures}
	opts.MotionArchive = motions

	sc, err := RunMechlib(mechlib, "madcat", opts)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(sc.Tracks) != 2 || sc.Tracks[0].Name != "walk" || sc.Tracks[1].Name != "run" {
		t.Fatalf("unexpected tracks %v", sc.Tracks)
	}
	if sc.Tracks[1].Start != sc.Tracks[0].End+1 {
		t.Fatalf("tracks overlap")
	}
	torsoRest := sc.Skeleton.Rest["torso"].Translation
	for _, p := range sc.Tracks[0].Poses {
		if p.Bones["torso"].Translation != torsoRest {
			t.Fatalf("torso translation must stay at rest, got %v", p.Bones["torso"].Translation)
		}
	}

	tex := sc.Materials[1]
	if tex.Image == texture.Placeholder() || !tex.Image.Packed || tex.Image.FilePath != "//torso_tex.png" {
		t.Fatalf("texture not loaded from archive: %+v", tex.Image)
	}
	if tex.Image.Pixels.NRGBAAt(0, 0).R != 255 {
		t.Fatalf("texture pixels not kept in memory")
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("read temp: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "mech3-textures-") {
			t.Fatalf("staging dir %s left behind", e.Name())
		}
	}
}

func TestRunMechlibMissingModel(t *testing.T) {
	mechlib := archivetest.WriteZip(t, "mechlib.zip", map[string][]byte{
		MaterialsEntry: []byte(materialsJSON),
	})
	if _, err := RunMechlib(mechlib, "nope", quiet()); err == nil {
		t.Fatalf("expected an error for a missing model")
	}
}

func TestRunMechlibBadTextureArchive(t *testing.T) {
	mechlib := archivetest.WriteZip(t, "mechlib.zip", map[string][]byte{
		MaterialsEntry:       []byte(materialsJSON),
		ModelEntry("madcat"): []byte(modelJSON),
	})
	opts := quiet()
	opts.TextureArchives = []string{"/does/not/exist.zip"}
	if _, err := RunMechlib(mechlib, "madcat", opts); err == nil {
		t.Fatalf("an unreadable texture archive must abort the run")
	}
}

func TestModels(t *testing.T) {
	path := archivetest.WriteZip(t, "mechlib.zip", map[string][]byte{
		MaterialsEntry:        []byte(materialsJSON),
		ModelEntry("thor"):    []byte(modelJSON),
		ModelEntry("madcat"):  []byte(modelJSON),
		"textures/readme.txt": nil,
	})
	got, err := Models(path)
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	if len(got) != 2 || got[0] != "madcat" || got[1] != "thor" {
		t.Fatalf("models = %v", got)
	}
}

func TestRunMechlibMissingTextureUsesPlaceholder(t *testing.T) {
	mechlib := archivetest.WriteZip(t, "mechlib.zip", map[string][]byte{
		MaterialsEntry:       []byte(materialsJSON),
		ModelEntry("madcat"): []byte(modelJSON),
	})
	textures := archivetest.WriteZip(t, "rmechtex.zip", map[string][]byte{
		"hip_tex.png": pngBytes(t),
	})
	opts := quiet()
	opts.TextureArchives = []string{textures}

	sc, err := RunMechlib(mechlib, "madcat", opts)
	if err != nil {
		t.Fatalf("a missing texture must not abort the run: %v", err)
	}
	if len(sc.Materials) != 2 || sc.Materials[1].Name != "torso_tex" {
		t.Fatalf("unexpected materials %+v", sc.Materials)
	}
	if sc.Materials[1].Image != texture.Placeholder() {
		t.Fatalf("missing texture should use the shared placeholder, got %+v", sc.Materials[1].Image)
	}
	if sc.Missing != 1 {
		t.Fatalf("missing = %d, want 1", sc.Missing)
	}
}
