// Package scene holds the converted result of one run: the artifact a scene
// host (glTF export, inspection) consumes.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"mech3-scene/internal/material"
	"mech3-scene/internal/mesh"
	"mech3-scene/internal/pose"
	"mech3-scene/internal/schema"
	"mech3-scene/internal/skeleton"
)

// Object is a placed node of the scene. An object either hangs off another
// object (Parent >= 0), off a bone (Bone != ""), or is a root.
type Object struct {
	Name       string
	Kind       schema.Kind
	Mesh       *mesh.Mesh // nil for empties
	Parent     int        // object index, -1 for none
	Bone       string
	Location   mgl64.Vec3
	Rotation   mgl64.Quat
	Scale      float64
	Hidden     bool
	Collection string
}

// Local returns the object's local matrix.
func (o *Object) Local() mgl64.Mat4 {
	s := o.Scale
	if s == 0 {
		s = 1
	}
	return mgl64.Translate3D(o.Location[0], o.Location[1], o.Location[2]).
		Mul4(o.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(s, s, s))
}

// Collection groups root objects. Hidden collections are kept but not shown.
type Collection struct {
	Name   string
	Hidden bool
}

// Scene is the result of one conversion run.
type Scene struct {
	Name     string
	RunID    uuid.UUID
	Producer material.Producer

	Materials   []*material.Material
	Meshes      []*mesh.Mesh
	Objects     []Object
	Collections []Collection

	// Skeleton, DefaultPose and Tracks are only set for mechlib models.
	Skeleton    *skeleton.Skeleton
	DefaultPose *pose.Pose
	Tracks      []*pose.Track

	// Missing counts textures that fell back to the placeholder.
	Missing int
}

// New returns an empty scene with a fresh run id.
func New(name string, producer material.Producer) *Scene {
	return &Scene{Name: name, RunID: uuid.New(), Producer: producer}
}

// AddObject appends an object and returns its index.
func (s *Scene) AddObject(o Object) int {
	if o.Scale == 0 {
		o.Scale = 1
	}
	s.Objects = append(s.Objects, o)
	return len(s.Objects) - 1
}

// AddCollection registers a collection once.
func (s *Scene) AddCollection(name string, hidden bool) {
	for _, c := range s.Collections {
		if c.Name == name {
			return
		}
	}
	s.Collections = append(s.Collections, Collection{Name: name, Hidden: hidden})
}

// CollectionHidden reports whether the named collection is hidden.
func (s *Scene) CollectionHidden(name string) bool {
	for _, c := range s.Collections {
		if c.Name == name {
			return c.Hidden
		}
	}
	return false
}

// Object looks an object up by name.
func (s *Scene) Object(name string) (*Object, bool) {
	for i := range s.Objects {
		if s.Objects[i].Name == name {
			return &s.Objects[i], true
		}
	}
	return nil, false
}

// Children returns the indices of the objects parented to object i.
func (s *Scene) Children(i int) []int {
	var out []int
	for j := range s.Objects {
		if s.Objects[j].Parent == i {
			out = append(out, j)
		}
	}
	return out
}

// Roots returns objects with neither an object nor a bone parent.
func (s *Scene) Roots() []int {
	var out []int
	for i := range s.Objects {
		if s.Objects[i].Parent < 0 && s.Objects[i].Bone == "" {
			out = append(out, i)
		}
	}
	return out
}

// Visible reports whether object i and all of its ancestors are shown.
func (s *Scene) Visible(i int) bool {
	for i >= 0 {
		o := &s.Objects[i]
		if o.Hidden || s.CollectionHidden(o.Collection) {
			return false
		}
		i = o.Parent
	}
	return true
}

// Summary is a one-line description for logs.
func (s *Scene) Summary() string {
	faces := 0
	for _, m := range s.Meshes {
		faces += len(m.Faces)
	}
	bones := 0
	if s.Skeleton != nil {
		bones = s.Skeleton.Len()
	}
	return fmt.Sprintf("%s: %d objects, %d meshes, %d faces, %d materials, %d bones, %d tracks",
		s.Name, len(s.Objects), len(s.Meshes), faces, len(s.Materials), bones, len(s.Tracks))
}
