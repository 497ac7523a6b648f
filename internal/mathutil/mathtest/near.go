// Package mathtest has comparison helpers for tests.
package mathtest

import "github.com/go-gl/mathgl/mgl64"

// Tolerance is the absolute per-component tolerance of the helpers.
const Tolerance = 1e-9

// Near reports whether a and b differ by less than Tolerance in every
// component. Unlike mgl64's ApproxEqual it is absolute, so values that
// should be exactly zero compare against float noise correctly.
func Near(a, b mgl64.Vec3) bool {
	for i := range a {
		if d := a[i] - b[i]; d > Tolerance || d < -Tolerance {
			return false
		}
	}
	return true
}

// NearQuat is Near for quaternions, component by component.
func NearQuat(a, b mgl64.Quat) bool {
	d := a.W - b.W
	return d <= Tolerance && d >= -Tolerance && Near(a.V, b.V)
}
