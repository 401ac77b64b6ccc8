package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Forward is the local axis a camera looks along.
var Forward = mgl64.Vec3{0, 0, 1}

// Angles holds Euler angles in degrees. X is pitch, Y is yaw, Z is roll.
// Rotation order is yaw, then pitch, then roll (Y * X * Z).
type Angles struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Quat converts the angles to a rotation.
func (a Angles) Quat() mgl64.Quat {
	yaw := mgl64.QuatRotate(mgl64.DegToRad(a.Y), mgl64.Vec3{0, 1, 0})
	pitch := mgl64.QuatRotate(mgl64.DegToRad(a.X), mgl64.Vec3{1, 0, 0})
	roll := mgl64.QuatRotate(mgl64.DegToRad(a.Z), mgl64.Vec3{0, 0, 1})
	return yaw.Mul(pitch).Mul(roll).Normalize()
}

// Add returns the component-wise sum.
func (a Angles) Add(b Angles) Angles {
	return Angles{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

// AnglesFromQuat extracts Y*X*Z Euler angles (degrees) from a rotation.
func AnglesFromQuat(q mgl64.Quat) Angles {
	m := q.Normalize().Mat4()

	sinPitch := -m.At(1, 2)
	if sinPitch > 1 {
		sinPitch = 1
	} else if sinPitch < -1 {
		sinPitch = -1
	}
	pitch := math.Asin(sinPitch)

	var yaw, roll float64
	if math.Abs(sinPitch) < 0.9999999 {
		yaw = math.Atan2(m.At(0, 2), m.At(2, 2))
		roll = math.Atan2(m.At(1, 0), m.At(1, 1))
	} else {
		// gimbal lock: fold roll into yaw
		yaw = math.Atan2(-m.At(2, 0), m.At(0, 0))
		roll = 0
	}

	return Angles{
		X: mgl64.RadToDeg(pitch),
		Y: mgl64.RadToDeg(yaw),
		Z: mgl64.RadToDeg(roll),
	}
}

// Unwrap shifts every component of a by whole turns so it lies within
// 180 degrees of the matching component of ref.
func (a Angles) Unwrap(ref Angles) Angles {
	return Angles{
		X: unwrapDeg(a.X, ref.X),
		Y: unwrapDeg(a.Y, ref.Y),
		Z: unwrapDeg(a.Z, ref.Z),
	}
}

func unwrapDeg(v, ref float64) float64 {
	turns := math.Round((v - ref) / 360)
	if math.IsNaN(turns) || math.IsInf(turns, 0) {
		return v
	}
	return v - 360*turns
}

// LookRotation returns the rotation that points Forward from eye towards
// center with zero roll. ok is false when the two points coincide.
func LookRotation(eye, center mgl64.Vec3) (mgl64.Quat, bool) {
	dir := center.Sub(eye)
	if dir.Len() < 1e-9 {
		return mgl64.QuatIdent(), false
	}
	dir = dir.Normalize()
	yaw := math.Atan2(dir.X(), dir.Z())
	pitch := math.Asin(-dir.Y())
	return Angles{X: mgl64.RadToDeg(pitch), Y: mgl64.RadToDeg(yaw)}.Quat(), true
}

// Transform is a rigid placement in the scene.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// Identity is the transform at the origin with no rotation.
func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// ToLocal expresses a world-space point relative to t.
func (t Transform) ToLocal(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Inverse().Rotate(world.Sub(t.Position))
}

// ToWorld maps a point expressed relative to t into world space.
func (t Transform) ToWorld(local mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(local))
}
