package schema

import (
	"encoding/json"
	"fmt"
)

// MaterialSpec is either Colored or Textured; exactly one is set.
type MaterialSpec struct {
	Colored  *Colored
	Textured *Textured
}

// Colored is a solid color material.
type Colored struct {
	Color Color `json:"color"`
}

// Textured references a texture by name. Flag is only written by the gamez dumps.
type Textured struct {
	Texture string `json:"texture"`
	Flag    string `json:"flag"`
}

func (m *MaterialSpec) UnmarshalJSON(data []byte) error {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if len(tagged) != 1 {
		return fmt.Errorf("material: want exactly one tag, got %d: %w", len(tagged), ErrMalformedInput)
	}
	*m = MaterialSpec{}
	if raw, ok := tagged["Colored"]; ok {
		var c Colored
		if err := json.Unmarshal(raw, &c); err != nil {
			return fmt.Errorf("material: Colored: %w", err)
		}
		m.Colored = &c
		return nil
	}
	if raw, ok := tagged["Textured"]; ok {
		var t struct {
			Texture *string         `json:"texture"`
			Flag    json.RawMessage `json:"flag"`
		}
		if err := json.Unmarshal(raw, &t); err != nil {
			return fmt.Errorf("material: Textured: %w", err)
		}
		if t.Texture == nil {
			return fmt.Errorf("material: Textured without texture: %w", ErrMalformedInput)
		}
		m.Textured = &Textured{Texture: *t.Texture, Flag: flagString(t.Flag)}
		return nil
	}
	for tag := range tagged {
		return fmt.Errorf("material: unknown tag %q: %w", tag, ErrMalformedInput)
	}
	return nil
}

// flagString renders the flag as the dumps print it, whatever its JSON type.
func flagString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// DecodeMaterials decodes a materials array.
func DecodeMaterials(data []byte) ([]MaterialSpec, error) {
	var materials []MaterialSpec
	if err := json.Unmarshal(data, &materials); err != nil {
		return nil, fmt.Errorf("schema: materials: %w", err)
	}
	return materials, nil
}
