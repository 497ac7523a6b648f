package gltfexport

import (
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"mech3-scene/internal/material"
	"mech3-scene/internal/mesh"
)

// corners collects un-indexed triangle corners of one material slot.
type corners struct {
	pos    [][3]float32
	normal [][3]float32
	uv     [][2]float32
	color  [][4]float32
}

// mesh adds a mesh with one primitive per used material slot. Meshes
// without faces are not exported; ok is false for them.
func (e *exporter) mesh(m *mesh.Mesh) (idx uint32, ok bool, err error) {
	if idx, ok := e.meshes[m]; ok {
		return idx, true, nil
	}
	if len(m.Faces) == 0 {
		return 0, false, nil
	}

	// glTF puts the texture origin top-left, so V is flipped, except on
	// mechlib strips whose dumped V is already flipped.
	stripFlipped := e.sc.Producer == material.Mechlib

	slots := make([]*corners, len(m.Textures))
	for fi := range m.Faces {
		f := &m.Faces[fi]
		if slots[f.Material] == nil {
			slots[f.Material] = &corners{}
		}
		c := slots[f.Material]
		flipV := !(f.Strip && stripFlipped)
		// Fan triangulation; faces are convex.
		for i := 1; i+1 < len(f.Corners); i++ {
			for _, k := range [3]int{0, i, i + 1} {
				c.add(m, &f.Corners[k], flipV)
			}
		}
	}

	gm := &gltf.Mesh{Name: m.Name}
	for slot, c := range slots {
		if c == nil {
			continue
		}
		attrs := gltf.Attribute{
			gltf.POSITION: modeler.WritePosition(e.doc, c.pos),
			gltf.NORMAL:   modeler.WriteNormal(e.doc, c.normal),
		}
		if m.HasUV {
			attrs[gltf.TEXCOORD_0] = modeler.WriteTextureCoord(e.doc, c.uv)
		}
		if m.HasColor {
			attrs[gltf.COLOR_0] = modeler.WriteColor(e.doc, c.color)
		}
		prim := &gltf.Primitive{Attributes: attrs}
		if slot < len(m.Materials) && m.Materials[slot] != nil {
			mi, err := e.material(m.Materials[slot])
			if err != nil {
				return 0, false, err
			}
			prim.Material = gltf.Index(mi)
		}
		gm.Primitives = append(gm.Primitives, prim)
	}

	idx = uint32(len(e.doc.Meshes))
	e.doc.Meshes = append(e.doc.Meshes, gm)
	e.meshes[m] = idx
	return idx, true, nil
}

func (c *corners) add(m *mesh.Mesh, k *mesh.Corner, flipV bool) {
	p := m.Vertices[k.Vertex]
	n := m.Normals[k.Vertex]
	c.pos = append(c.pos, [3]float32{float32(p[0]), float32(p[1]), float32(p[2])})
	c.normal = append(c.normal, [3]float32{float32(n[0]), float32(n[1]), float32(n[2])})

	uv := [2]float32{0, 1}
	if k.UV != nil {
		v := k.UV[1]
		if flipV {
			v = 1 - v
		}
		uv = [2]float32{float32(k.UV[0]), float32(v)}
	}
	c.uv = append(c.uv, uv)

	col := [4]float32{1, 1, 1, 1}
	if k.Color != nil {
		col = [4]float32{float32(k.Color[0]), float32(k.Color[1]), float32(k.Color[2]), float32(k.Color[3])}
	}
	c.color = append(c.color, col)
}
