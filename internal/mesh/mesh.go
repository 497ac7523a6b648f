// Package mesh turns dumped vertex/polygon lists into face meshes with
// per-corner attributes and local material slots.
package mesh

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"mech3-scene/internal/material"
)

var (
	// ErrDuplicateFace is reported for a polygon whose vertex set is
	// already a face of the mesh. Some models contain such duplicates on
	// purpose; the face is skipped.
	ErrDuplicateFace = errors.New("face already exists")
	// ErrDegenerateFace is reported for a polygon with fewer than three
	// distinct vertices, which strips commonly produce.
	ErrDegenerateFace = errors.New("degenerate face")
)

// Corner is one face corner. UV and Color are nil when the source polygon
// carries no such data.
type Corner struct {
	Vertex int
	UV     *mgl64.Vec2
	Color  *[4]float64
}

// Face is a polygon of the built mesh.
type Face struct {
	Corners  []Corner
	Material int // local material slot
	Smooth   bool
	Normal   mgl64.Vec3
	Polygon  int // index of the source polygon
	// Strip is set for faces cut from a triangle strip. Mechlib strips
	// store their V coordinate flipped relative to plain polygons.
	Strip bool
}

// Skipped records a polygon (or strip triangle) that did not become a face.
type Skipped struct {
	Polygon int
	Ptr     uint32
	Err     error
}

// Mesh is a built mesh.
type Mesh struct {
	Name     string
	Vertices []mgl64.Vec3
	// Normals are per vertex, recomputed from the faces.
	Normals []mgl64.Vec3
	Faces   []Face

	// Textures holds the global material index of each local slot.
	Textures []int
	// Materials holds the resolved handle of each local slot when the
	// builder had a resolver.
	Materials []*material.Material

	HasUV    bool
	HasColor bool

	Skipped []Skipped
}

// FaceVertices returns the vertex indices of a face in corner order.
func (f *Face) FaceVertices() []int {
	out := make([]int, len(f.Corners))
	for i, c := range f.Corners {
		out[i] = c.Vertex
	}
	return out
}
