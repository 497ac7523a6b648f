// Package skeleton builds a bone hierarchy with a rest-pose table from a
// reconstructed node tree.
package skeleton

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"mech3-scene/internal/mathutil"
	"mech3-scene/internal/nodetree"
	"mech3-scene/internal/schema"
)

// Bone is one joint. Parent is nil for top-level bones.
type Bone struct {
	Name   string
	Parent *Bone
	Index  int // creation order; parents always come first
	Node   int // source node index
}

// Rest is the rest transform of a bone.
type Rest struct {
	Translation mgl64.Vec3
	Rotation    mgl64.Quat
	// Euler keeps the authored XYZ angles for per-model corrections.
	Euler     mgl64.Vec3
	MeshIndex int
}

// Skeleton is the structural rig. It carries no pose values.
type Skeleton struct {
	Bones []*Bone
	Rest  map[string]Rest

	byName map[string]*Bone
}

// Build walks the tree from the single child of its sentinel root (the first
// tree root, which is discarded). Every Object3d node becomes a bone; other
// node kinds are skipped and their children hang off the nearest bone above.
func Build(tree *nodetree.Tree) (*Skeleton, error) {
	if len(tree.Roots) == 0 {
		return nil, fmt.Errorf("skeleton: tree has no root: %w", schema.ErrMalformedInput)
	}
	sentinel := tree.Roots[0]
	children := tree.Children(sentinel)
	if len(children) != 1 {
		return nil, fmt.Errorf("skeleton: root %q has %d children, want 1: %w",
			tree.Node(sentinel).Name, len(children), schema.ErrMalformedInput)
	}

	s := &Skeleton{
		Rest:   make(map[string]Rest),
		byName: make(map[string]*Bone),
	}

	var visit func(i int, parent *Bone) error
	visit = func(i int, parent *Bone) error {
		node := tree.Node(i)
		next := parent
		if node.Kind == schema.KindObject3d {
			if _, dup := s.byName[node.Name]; dup {
				return fmt.Errorf("skeleton: duplicate bone name %q (node %d): %w",
					node.Name, i, schema.ErrMalformedInput)
			}
			b := &Bone{Name: node.Name, Parent: parent, Index: len(s.Bones), Node: i}
			s.Bones = append(s.Bones, b)
			s.byName[b.Name] = b
			s.Rest[b.Name] = restOf(node)
			next = b
		}
		for _, c := range tree.Children(i) {
			if err := visit(c, next); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(children[0], nil); err != nil {
		return nil, err
	}
	return s, nil
}

func restOf(n *schema.Node) Rest {
	r := Rest{Rotation: mgl64.QuatIdent(), MeshIndex: n.MeshIndex}
	if t := n.Transformation; t != nil {
		r.Translation = t.Translation.Mgl()
		r.Euler = t.Rotation.Mgl()
		r.Rotation = mathutil.EulerToQuat(r.Euler[0], r.Euler[1], r.Euler[2])
	}
	return r
}

// Bone looks a bone up by name.
func (s *Skeleton) Bone(name string) (*Bone, bool) {
	b, ok := s.byName[name]
	return b, ok
}

// Len returns the number of bones.
func (s *Skeleton) Len() int {
	return len(s.Bones)
}

// Local returns the rest-pose local matrix of a bone.
func (s *Skeleton) Local(b *Bone) mgl64.Mat4 {
	r := s.Rest[b.Name]
	return mathutil.TRS(r.Translation, r.Rotation)
}

// WorldMatrices composes the rest transforms parent-first. The result is
// indexed by Bone.Index.
func (s *Skeleton) WorldMatrices() []mgl64.Mat4 {
	worlds := make([]mgl64.Mat4, len(s.Bones))
	for i, b := range s.Bones {
		local := s.Local(b)
		if b.Parent != nil {
			worlds[i] = worlds[b.Parent.Index].Mul4(local)
		} else {
			worlds[i] = local
		}
	}
	return worlds
}
