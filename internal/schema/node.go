package schema

import (
	"encoding/json"
	"fmt"
)

// Kind is the tag of a node record.
type Kind int

const (
	KindObject3d Kind = iota
	KindWorld
	KindEmpty
	KindCamera
	KindLight
	KindWindow
	KindDisplay
	KindLod
)

var kindNames = map[Kind]string{
	KindObject3d: "Object3d",
	KindWorld:    "World",
	KindEmpty:    "Empty",
	KindCamera:   "Camera",
	KindLight:    "Light",
	KindWindow:   "Window",
	KindDisplay:  "Display",
	KindLod:      "Lod",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind maps a record tag to its Kind.
func ParseKind(tag string) (Kind, bool) {
	for k, name := range kindNames {
		if name == tag {
			return k, true
		}
	}
	return 0, false
}

// Transformation is a node's local translation and Euler XYZ rotation (radians).
type Transformation struct {
	Translation Vec3 `json:"translation"`
	Rotation    Vec3 `json:"rotation"`
}

// Node is one record of the flat node array.
// Parent and Children are indices into the same array; which one is
// meaningful depends on the producer.
type Node struct {
	Kind           Kind
	Name           string
	MeshIndex      int // -1 = no mesh
	Transformation *Transformation
	Parent         *int
	Children       []int
}

// HasMesh reports whether the node references a mesh.
func (n *Node) HasMesh() bool {
	return n.MeshIndex >= 0
}

type nodePayload struct {
	Name           *string         `json:"name"`
	MeshIndex      *int            `json:"mesh_index"`
	Transformation *Transformation `json:"transformation"`
	Parent         *int            `json:"parent"`
	Children       []int           `json:"children"`
}

// UnmarshalJSON decodes a single-key tagged record such as {"Object3d": {...}}.
func (n *Node) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("node: want exactly one tag, got %d: %w", len(tagged), ErrMalformedInput)
	}

	for tag, raw := range tagged {
		kind, ok := ParseKind(tag)
		if !ok {
			return fmt.Errorf("node: unknown tag %q: %w", tag, ErrMalformedInput)
		}
		var p nodePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return fmt.Errorf("node: %s payload: %w", tag, err)
		}
		if p.Name == nil {
			return fmt.Errorf("node: %s without name: %w", tag, ErrMalformedInput)
		}
		*n = Node{
			Kind:           kind,
			Name:           *p.Name,
			MeshIndex:      -1,
			Transformation: p.Transformation,
			Parent:         p.Parent,
			Children:       p.Children,
		}
		if p.MeshIndex != nil {
			n.MeshIndex = *p.MeshIndex
		}
	}
	return nil
}

// DecodeNodes decodes a nodes array.
func DecodeNodes(data []byte) ([]Node, error) {
	var nodes []Node
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("schema: nodes: %w", err)
	}
	return nodes, nil
}
