package mesh

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"mech3-scene/internal/logging"
	"mech3-scene/internal/material"
	"mech3-scene/internal/mathutil"
	"mech3-scene/internal/schema"
)

// MaterialResolver resolves global material indices.
type MaterialResolver interface {
	Resolve(index int) (*material.Material, error)
}

// Builder builds meshes. Resolver is optional; without it only the local
// slot table is produced.
type Builder struct {
	Logger   *log.Logger
	Resolver MaterialResolver
}

// Build converts mesh data into a Mesh and returns it with the mapping from
// global texture index to local material slot.
func (b *Builder) Build(name string, data *schema.MeshData) (*Mesh, map[int]int, error) {
	if err := data.Validate(); err != nil {
		return nil, nil, fmt.Errorf("mesh: %s: %w", name, err)
	}

	m := &Mesh{
		Name:     name,
		Vertices: make([]mgl64.Vec3, len(data.Vertices)),
	}
	for i, v := range data.Vertices {
		m.Vertices[i] = v.Mgl()
	}

	// Local slots in the order textures are first referenced.
	slots := make(map[int]int)
	for _, p := range data.Polygons {
		if _, ok := slots[p.TextureIndex]; ok {
			continue
		}
		slots[p.TextureIndex] = len(m.Textures)
		m.Textures = append(m.Textures, p.TextureIndex)
	}
	if b.Resolver != nil {
		m.Materials = make([]*material.Material, len(m.Textures))
		for slot, tex := range m.Textures {
			mat, err := b.Resolver.Resolve(tex)
			if err != nil {
				return nil, nil, fmt.Errorf("mesh: %s: %w", name, err)
			}
			m.Materials[slot] = mat
		}
	}

	existing := make(map[string]bool)
	for pi := range data.Polygons {
		p := &data.Polygons[pi]
		if !p.TriangleStrip {
			b.addFace(m, existing, pi, p, p.VertexIndices, p.UVCoords, p.VertexColors, slots[p.TextureIndex], false)
			continue
		}
		for i := 0; i+3 <= len(p.VertexIndices); i++ {
			b.addFace(m, existing, pi, p,
				p.VertexIndices[i:i+3], window(p.UVCoords, i), window(p.VertexColors, i),
				slots[p.TextureIndex], true)
		}
	}

	m.recalcNormals()
	return m, slots, nil
}

// window returns the 3-element window at i, or nil for absent data.
func window[T any](s []T, i int) []T {
	if len(s) == 0 {
		return nil
	}
	return s[i : i+3]
}

func (b *Builder) addFace(m *Mesh, existing map[string]bool, pi int, p *schema.Polygon,
	verts []int, uvs []schema.UV, colors []schema.Color, slot int, strip bool) {

	key, err := faceKey(verts)
	if err == nil && existing[key] {
		err = ErrDuplicateFace
	}
	if err != nil {
		logging.Or(b.Logger).Warn("skipping face", "mesh", m.Name, "ptr", p.VerticesPtr, "err", err)
		m.Skipped = append(m.Skipped, Skipped{Polygon: pi, Ptr: p.VerticesPtr, Err: err})
		return
	}
	existing[key] = true

	f := Face{
		Corners:  make([]Corner, len(verts)),
		Material: slot,
		Smooth:   true,
		Polygon:  pi,
		Strip:    strip,
	}
	for i, v := range verts {
		c := Corner{Vertex: v}
		if uvs != nil {
			uv := mgl64.Vec2{uvs[i].U, uvs[i].V}
			c.UV = &uv
			m.HasUV = true
		}
		if colors != nil {
			rgba := colors[i].Unit()
			c.Color = &rgba
			m.HasColor = true
		}
		f.Corners[i] = c
	}
	m.Faces = append(m.Faces, f)
}

// faceKey identifies a face by its vertex set, independent of winding.
func faceKey(verts []int) (string, error) {
	sorted := append([]int(nil), verts...)
	sort.Ints(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return "", ErrDegenerateFace
		}
	}
	if len(sorted) < 3 {
		return "", ErrDegenerateFace
	}
	var sb strings.Builder
	for i, v := range sorted {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String(), nil
}

// recalcNormals recomputes face normals and area-weighted vertex normals.
// The dumped normals are never used.
func (m *Mesh) recalcNormals() {
	m.Normals = make([]mgl64.Vec3, len(m.Vertices))
	points := make([]mgl64.Vec3, 0, 4)
	for fi := range m.Faces {
		f := &m.Faces[fi]
		points = points[:0]
		for _, c := range f.Corners {
			points = append(points, m.Vertices[c.Vertex])
		}
		n := mathutil.NewellVector(points)
		f.Normal = mathutil.Normalize(n)
		for _, c := range f.Corners {
			m.Normals[c.Vertex] = m.Normals[c.Vertex].Add(n)
		}
	}
	for i := range m.Normals {
		m.Normals[i] = mathutil.Normalize(m.Normals[i])
	}
}
