package mathutil

import "github.com/go-gl/mathgl/mgl64"

// NewellNormal returns the unit normal of a (possibly non-planar) polygon
// using Newell's method. Degenerate polygons yield the zero vector.
func NewellNormal(points []mgl64.Vec3) mgl64.Vec3 {
	return Normalize(NewellVector(points))
}

// NewellVector is the unnormalized Newell normal; its length is twice the
// polygon area.
func NewellVector(points []mgl64.Vec3) mgl64.Vec3 {
	var n mgl64.Vec3
	for i := range points {
		cur := points[i]
		next := points[(i+1)%len(points)]
		n[0] += (cur[1] - next[1]) * (cur[2] + next[2])
		n[1] += (cur[2] - next[2]) * (cur[0] + next[0])
		n[2] += (cur[0] - next[0]) * (cur[1] + next[1])
	}
	return n
}

// Normalize is mgl64's Normalize without the NaN on zero-length input.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}
