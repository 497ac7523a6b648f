package schema

import (
	"encoding/json"
	"fmt"
)

// Polygon is one polygon record. UVCoords and VertexColors, when present,
// run parallel to VertexIndices.
type Polygon struct {
	VertexIndices []int   `json:"vertex_indices"`
	TextureIndex  int     `json:"texture_index"`
	UVCoords      []UV    `json:"uv_coords"`
	VertexColors  []Color `json:"vertex_colors"`
	TriangleStrip bool    `json:"triangle_strip"`
	VerticesPtr   uint32  `json:"vertices_ptr"`
}

// MeshData is the geometry of one mesh. Normals in the dumps are ignored.
type MeshData struct {
	Vertices []Vec3    `json:"vertices"`
	Polygons []Polygon `json:"polygons"`
}

// Validate checks local vertex ranges and parallel-array lengths.
func (m *MeshData) Validate() error {
	for i, p := range m.Polygons {
		if p.VertexIndices == nil {
			return fmt.Errorf("polygon %d (ptr %d): missing vertex_indices: %w", i, p.VerticesPtr, ErrMalformedInput)
		}
		for _, vi := range p.VertexIndices {
			if vi < 0 || vi >= len(m.Vertices) {
				return fmt.Errorf("polygon %d (ptr %d): vertex index %d out of range [0,%d): %w",
					i, p.VerticesPtr, vi, len(m.Vertices), ErrMalformedInput)
			}
		}
		if len(p.UVCoords) > 0 && len(p.UVCoords) != len(p.VertexIndices) {
			return fmt.Errorf("polygon %d (ptr %d): %d uv coords for %d vertices: %w",
				i, p.VerticesPtr, len(p.UVCoords), len(p.VertexIndices), ErrMalformedInput)
		}
		if len(p.VertexColors) > 0 && len(p.VertexColors) != len(p.VertexIndices) {
			return fmt.Errorf("polygon %d (ptr %d): %d vertex colors for %d vertices: %w",
				i, p.VerticesPtr, len(p.VertexColors), len(p.VertexIndices), ErrMalformedInput)
		}
		if p.TextureIndex < 0 {
			return fmt.Errorf("polygon %d (ptr %d): negative texture index: %w", i, p.VerticesPtr, ErrMalformedInput)
		}
	}
	return nil
}

// DecodeMeshes decodes a meshes array.
func DecodeMeshes(data []byte) ([]MeshData, error) {
	var meshes []MeshData
	if err := json.Unmarshal(data, &meshes); err != nil {
		return nil, fmt.Errorf("schema: meshes: %w", err)
	}
	return meshes, nil
}

// Model is a mechlib model dump: its node array and meshes.
type Model struct {
	Nodes  []Node     `json:"nodes"`
	Meshes []MeshData `json:"meshes"`
}

// DecodeModel decodes a mech_<name>.json entry.
func DecodeModel(data []byte) (*Model, error) {
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("schema: model: %w", err)
	}
	if len(m.Nodes) == 0 {
		return nil, fmt.Errorf("schema: model has no nodes: %w", ErrMalformedInput)
	}
	return &m, nil
}
