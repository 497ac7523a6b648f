package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"mech3-scene/internal/mathutil"
)

// The mechlib dumps write vectors as objects ({"x":1,"y":2,"z":3}), the gamez
// dumps as arrays ([1,2,3]). Every vector type here accepts both.

// Vec3 is a position, translation or Euler rotation.
type Vec3 struct {
	X, Y, Z float64
}

func (v *Vec3) UnmarshalJSON(data []byte) error {
	if isArray(data) {
		var a []float64
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		if len(a) != 3 {
			return fmt.Errorf("vec3: want 3 components, got %d: %w", len(a), ErrMalformedInput)
		}
		*v = Vec3{a[0], a[1], a[2]}
		return nil
	}
	var o struct {
		X, Y, Z *float64
	}
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}
	if o.X == nil || o.Y == nil || o.Z == nil {
		return fmt.Errorf("vec3: missing component in %s: %w", data, ErrMalformedInput)
	}
	*v = Vec3{*o.X, *o.Y, *o.Z}
	return nil
}

// Mgl converts to an mgl64 vector.
func (v Vec3) Mgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Quat is a rotation quaternion in x, y, z, w order.
type Quat struct {
	X, Y, Z, W float64
}

func (q *Quat) UnmarshalJSON(data []byte) error {
	if isArray(data) {
		var a []float64
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		if len(a) != 4 {
			return fmt.Errorf("quat: want 4 components, got %d: %w", len(a), ErrMalformedInput)
		}
		*q = Quat{a[0], a[1], a[2], a[3]}
		return nil
	}
	var o struct {
		X, Y, Z, W *float64
	}
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}
	if o.X == nil || o.Y == nil || o.Z == nil || o.W == nil {
		return fmt.Errorf("quat: missing component in %s: %w", data, ErrMalformedInput)
	}
	*q = Quat{*o.X, *o.Y, *o.Z, *o.W}
	return nil
}

// Mgl converts to a normalized mgl64 quaternion.
func (q Quat) Mgl() mgl64.Quat {
	return mathutil.QuatXYZW(q.X, q.Y, q.Z, q.W)
}

// Color is a byte-valued (0-255) RGB triple, stored as floats like the dumps.
type Color struct {
	R, G, B float64
}

func (c *Color) UnmarshalJSON(data []byte) error {
	if isArray(data) {
		var a []float64
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		if len(a) != 3 {
			return fmt.Errorf("color: want 3 channels, got %d: %w", len(a), ErrMalformedInput)
		}
		*c = Color{a[0], a[1], a[2]}
		return nil
	}
	var o struct {
		R, G, B *float64
	}
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}
	if o.R == nil || o.G == nil || o.B == nil {
		return fmt.Errorf("color: missing channel in %s: %w", data, ErrMalformedInput)
	}
	*c = Color{*o.R, *o.G, *o.B}
	return nil
}

// Unit converts the byte channels to unit-interval RGBA with opaque alpha.
func (c Color) Unit() [4]float64 {
	return [4]float64{c.R / 255.0, c.G / 255.0, c.B / 255.0, 1}
}

// UV is a texture coordinate.
type UV struct {
	U, V float64
}

func (uv *UV) UnmarshalJSON(data []byte) error {
	if isArray(data) {
		var a []float64
		if err := json.Unmarshal(data, &a); err != nil {
			return err
		}
		if len(a) != 2 {
			return fmt.Errorf("uv: want 2 components, got %d: %w", len(a), ErrMalformedInput)
		}
		*uv = UV{a[0], a[1]}
		return nil
	}
	var o struct {
		U, V *float64
	}
	if err := json.Unmarshal(data, &o); err != nil {
		return err
	}
	if o.U == nil || o.V == nil {
		return fmt.Errorf("uv: missing component in %s: %w", data, ErrMalformedInput)
	}
	*uv = UV{*o.U, *o.V}
	return nil
}

func isArray(data []byte) bool {
	data = bytes.TrimSpace(data)
	return len(data) > 0 && data[0] == '['
}
