package schema

import (
	"encoding/json"
	"fmt"
)

// Frame is one keyframe of a motion part.
type Frame struct {
	Translation Vec3 `json:"translation"`
	Rotation    Quat `json:"rotation"`
}

// Part is the authored channel data for one bone.
type Part struct {
	Name   string  `json:"name"`
	Frames []Frame `json:"frames"`
}

// Motion is a keyframed animation for a skeleton.
type Motion struct {
	FrameCount int     `json:"frame_count"`
	LoopTime   float64 `json:"loop_time"`
	Parts      []Part  `json:"parts"`
}

// Validate requires every part to carry exactly FrameCount frames.
func (m *Motion) Validate() error {
	if m.FrameCount < 0 {
		return fmt.Errorf("motion: negative frame count %d: %w", m.FrameCount, ErrMalformedInput)
	}
	for _, p := range m.Parts {
		if len(p.Frames) != m.FrameCount {
			return fmt.Errorf("motion: part %q has %d frames, want %d: %w",
				p.Name, len(p.Frames), m.FrameCount, ErrMalformedInput)
		}
	}
	return nil
}

// DecodeMotion decodes and validates a motion dump.
func DecodeMotion(data []byte) (*Motion, error) {
	var m Motion
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("schema: motion: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return &m, nil
}
