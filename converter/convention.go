// Package converter moves motion between rig stand-ins and BVH
// documents under a selectable axis convention, and exports decoded
// motion to glTF.
package converter

import (
	"math"

	"github.com/emilianavt/BVHTools/geom"
)

// Convention selects the axis remap reconciling the engine's axis
// system with the BVH file's. Standard targets the BVH default
// Y-up/Z-forward space; Blender targets a right-handed Z-up/Y-forward
// space.
type Convention int

const (
	Standard Convention = iota
	Blender
)

func (c Convention) String() string {
	if c == Blender {
		return "blender"
	}
	return "standard"
}

// WrapDeg wraps an angle to (-180, 180].
func WrapDeg(a float32) float32 {
	if a > 180 {
		return a - 360
	}
	if a < -180 {
		return a + 360
	}
	return a
}

// remap converts an engine-space rotation to file space.
func remap(q *geom.Quaternion, conv Convention) *geom.Quaternion {
	if conv == Blender {
		return &geom.Quaternion{X: q.X, Y: q.Z, Z: -q.Y, W: q.W}
	}
	return &geom.Quaternion{X: q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// unremap is the inverse of remap.
func unremap(q *geom.Quaternion, conv Convention) *geom.Quaternion {
	if conv == Blender {
		return &geom.Quaternion{X: q.X, Y: -q.Z, Z: q.Y, W: q.W}
	}
	return &geom.Quaternion{X: q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// ToEulerZXY decomposes an engine-space unit quaternion into the BVH
// file-space Z/X/Y rotation-order triple, in degrees, wrapped to
// (-180, 180].
func ToEulerZXY(q *geom.Quaternion, conv Convention) (z, x, y float32) {
	t := remap(q, conv)
	qx, qy, qz, qw := float64(t.X), float64(t.Y), float64(t.Z), float64(t.W)

	zr := math.Atan2(2*(qx*qy-qw*qz), qw*qw-qx*qx+qy*qy-qz*qz)
	xr := math.Asin(math.Max(-1, math.Min(2*(qy*qz+qw*qx), 1)))
	yr := math.Atan2(-2*(qx*qz-qw*qy), qw*qw-qx*qx-qy*qy+qz*qz)

	z = WrapDeg(geom.RadToDeg(float32(zr)))
	x = WrapDeg(geom.RadToDeg(float32(xr)))
	y = WrapDeg(geom.RadToDeg(float32(yr)))
	return
}

// FromEulerZXY composes a file-space Z/X/Y Euler triple (degrees) back
// into an engine-space quaternion. Exact inverse of ToEulerZXY up to
// quaternion sign: the decomposition above extracts z with the
// opposite winding, so z is negated before composing.
func FromEulerZXY(z, x, y float32, conv Convention) *geom.Quaternion {
	q := geom.NewAngleAxis(geom.DegToRad(-z), geom.NewVector3(0, 0, 1)).
		Mul(geom.NewAngleAxis(geom.DegToRad(x), geom.NewVector3(1, 0, 0))).
		Mul(geom.NewAngleAxis(geom.DegToRad(y), geom.NewVector3(0, 1, 0)))
	return unremap(q, conv)
}

// ToPosition converts an engine-space translation to file space.
func ToPosition(v *geom.Vector3, conv Convention) *geom.Vector3 {
	if conv == Blender {
		return &geom.Vector3{X: -v.X, Y: -v.Z, Z: v.Y}
	}
	return &geom.Vector3{X: -v.X, Y: v.Y, Z: v.Z}
}

// FromPosition is the inverse of ToPosition.
func FromPosition(v *geom.Vector3, conv Convention) *geom.Vector3 {
	if conv == Blender {
		return &geom.Vector3{X: -v.X, Y: v.Z, Z: -v.Y}
	}
	return &geom.Vector3{X: -v.X, Y: v.Y, Z: v.Z}
}

// CompensateScale divides each offset component by the rig's scale.
// Offsets are authored in the node's local, possibly scaled space.
func CompensateScale(v, scale *geom.Vector3) *geom.Vector3 {
	return &geom.Vector3{X: v.X / scale.X, Y: v.Y / scale.Y, Z: v.Z / scale.Z}
}
