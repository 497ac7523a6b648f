package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// EulerToQuat converts Euler XYZ (radians) to a unit quaternion.
// X is applied first, then Y, then Z.
func EulerToQuat(rx, ry, rz float64) mgl64.Quat {
	cx, sx := math.Cos(rx*0.5), math.Sin(rx*0.5)
	cy, sy := math.Cos(ry*0.5), math.Sin(ry*0.5)
	cz, sz := math.Cos(rz*0.5), math.Sin(rz*0.5)

	return mgl64.Quat{
		W: cx*cy*cz + sx*sy*sz,
		V: mgl64.Vec3{
			sx*cy*cz - cx*sy*sz,
			cx*sy*cz + sx*cy*sz,
			cx*cy*sz - sx*sy*cz,
		},
	}.Normalize()
}

// QuatXYZW builds a normalized quaternion from components in x, y, z, w order.
// A zero quaternion becomes identity.
func QuatXYZW(x, y, z, w float64) mgl64.Quat {
	q := mgl64.Quat{W: w, V: mgl64.Vec3{x, y, z}}
	if q.Len() < 1e-12 {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}

// TRS composes translation and rotation into an affine matrix.
func TRS(t mgl64.Vec3, r mgl64.Quat) mgl64.Mat4 {
	return mgl64.Translate3D(t[0], t[1], t[2]).Mul4(r.Mat4())
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}
