package skeleton

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"mech3-scene/internal/mathutil/mathtest"
	"mech3-scene/internal/nodetree"
	"mech3-scene/internal/schema"
)

func intp(i int) *int { return &i }

func rigNodes() []schema.Node {
	return []schema.Node{
		{Kind: schema.KindObject3d, Name: "root", MeshIndex: -1, Children: []int{1}},
		{Kind: schema.KindObject3d, Name: "hip", MeshIndex: -1, Children: []int{2, 3},
			Transformation: &schema.Transformation{Translation: schema.Vec3{Y: 2}}},
		{Kind: schema.KindObject3d, Name: "torso", MeshIndex: 0,
			Transformation: &schema.Transformation{
				Translation: schema.Vec3{Y: 1},
				Rotation:    schema.Vec3{Z: math.Pi / 2},
			}},
		{Kind: schema.KindEmpty, Name: "group", MeshIndex: -1, Children: []int{4}},
		{Kind: schema.KindObject3d, Name: "rcalf", MeshIndex: 1},
	}
}

func TestBuildDiscardsSentinel(t *testing.T) {
	tree, err := nodetree.FromChildren(rigNodes(), 0)
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	s, err := Build(tree)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("got %d bones, want 3", s.Len())
	}
	if _, ok := s.Bone("root"); ok {
		t.Fatalf("sentinel root must not become a bone")
	}
	hip, _ := s.Bone("hip")
	torso, _ := s.Bone("torso")
	calf, _ := s.Bone("rcalf")
	if hip.Parent != nil || torso.Parent != hip {
		t.Fatalf("torso should hang off hip")
	}
	if calf.Parent != hip {
		t.Fatalf("bone below an Empty should attach to the nearest bone, got %v", calf.Parent)
	}
	for _, b := range s.Bones {
		if b.Parent != nil && b.Parent.Index >= b.Index {
			t.Fatalf("bone %q created before its parent", b.Name)
		}
	}
}

func TestRestTable(t *testing.T) {
	tree, _ := nodetree.FromChildren(rigNodes(), 0)
	s, err := Build(tree)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if r := s.Rest["rcalf"]; r.Rotation != mgl64.QuatIdent() || r.Translation != (mgl64.Vec3{}) || r.MeshIndex != 1 {
		t.Fatalf("untransformed bone should rest at identity, got %+v", r)
	}
	r := s.Rest["torso"]
	if r.MeshIndex != 0 || r.Euler[2] != math.Pi/2 {
		t.Fatalf("torso rest = %+v", r)
	}

	worlds := s.WorldMatrices()
	torso, _ := s.Bone("torso")
	origin := worlds[torso.Index].Mul4x1(mgl64.Vec4{0, 0, 0, 1}).Vec3()
	if !mathtest.Near(origin, mgl64.Vec3{0, 3, 0}) {
		t.Fatalf("torso world origin = %v", origin)
	}
	// 90 degrees about Z maps +X to +Y.
	x := worlds[torso.Index].Mul4x1(mgl64.Vec4{1, 0, 0, 0}).Vec3()
	if !mathtest.Near(x, mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("torso world x axis = %v", x)
	}
}

func TestParentSchemeTree(t *testing.T) {
	nodes := []schema.Node{
		{Kind: schema.KindObject3d, Name: "root", MeshIndex: -1},
		{Kind: schema.KindObject3d, Name: "hip", MeshIndex: -1, Parent: intp(0)},
		{Kind: schema.KindObject3d, Name: "torso", MeshIndex: 0, Parent: intp(1)},
	}
	tree, err := nodetree.FromParents(nodes, nodetree.ParentOptions{})
	if err != nil {
		t.Fatalf("tree: %v", err)
	}
	s, err := Build(tree)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if s.Len() != 2 || s.Bones[0].Name != "hip" || s.Bones[1].Name != "torso" {
		t.Fatalf("unexpected bones %v", s.Bones)
	}
}

func TestSentinelMustHaveOneChild(t *testing.T) {
	nodes := []schema.Node{
		{Kind: schema.KindObject3d, Name: "root", MeshIndex: -1, Children: []int{1, 2}},
		{Kind: schema.KindObject3d, Name: "a", MeshIndex: -1},
		{Kind: schema.KindObject3d, Name: "b", MeshIndex: -1},
	}
	tree, _ := nodetree.FromChildren(nodes, 0)
	if _, err := Build(tree); !errors.Is(err, schema.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}

func TestDuplicateBoneName(t *testing.T) {
	nodes := []schema.Node{
		{Kind: schema.KindObject3d, Name: "root", MeshIndex: -1, Children: []int{1}},
		{Kind: schema.KindObject3d, Name: "hip", MeshIndex: -1, Children: []int{2}},
		{Kind: schema.KindObject3d, Name: "hip", MeshIndex: -1},
	}
	tree, _ := nodetree.FromChildren(nodes, 0)
	if _, err := Build(tree); !errors.Is(err, schema.ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput, got %v", err)
	}
}
