package vmath

import (
	"math"
)

// Vec3F is a float64 3D vector used for positions, velocities and orientation bases
type Vec3F struct {
	X, Y, Z float64
}

var (
	// Up is the fixed up vector of the listener and emitter basis
	Up = Vec3F{0, 1, 0}
	// Forward is the default emitter facing (+Z)
	Forward = Vec3F{0, 0, 1}
)

func V3FAdd(a, b Vec3F) Vec3F {
	return Vec3F{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3FSub(a, b Vec3F) Vec3F {
	return Vec3F{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3FScale(v Vec3F, s float64) Vec3F {
	return Vec3F{v.X * s, v.Y * s, v.Z * s}
}

func V3FDot(a, b Vec3F) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

func V3FMagSq(v Vec3F) float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func V3FMag(v Vec3F) float64 {
	return math.Sqrt(V3FMagSq(v))
}

func V3FNormalize(v Vec3F) Vec3F {
	mag := V3FMag(v)
	if mag == 0 {
		return Vec3F{}
	}
	inv := 1.0 / mag
	return Vec3F{v.X * inv, v.Y * inv, v.Z * inv}
}

// V3FMaxAxisDelta returns the largest per-axis absolute difference
func V3FMaxAxisDelta(a, b Vec3F) float64 {
	return math.Max(math.Abs(a.X-b.X), math.Max(math.Abs(a.Y-b.Y), math.Abs(a.Z-b.Z)))
}

// V3FFromYawPitch converts yaw/pitch in degrees to a unit forward vector
// Yaw 0 faces +Z, positive yaw turns toward -X, positive pitch looks down
func V3FFromYawPitch(yaw, pitch float64) Vec3F {
	yawRad := yaw * math.Pi / 180
	pitchRad := pitch * math.Pi / 180
	cp := math.Cos(pitchRad)
	return Vec3F{
		X: -math.Sin(yawRad) * cp,
		Y: -math.Sin(pitchRad),
		Z: math.Cos(yawRad) * cp,
	}
}

// AngleDelta returns the absolute smallest difference between two angles in degrees
func AngleDelta(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d < -180 {
		d += 360
	} else if d > 180 {
		d -= 360
	}
	return math.Abs(d)
}
