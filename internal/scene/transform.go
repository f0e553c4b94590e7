package scene

import "math"

// Vec3 is a 3D vector in world or local units.
type Vec3 struct {
	X, Y, Z float64
}

// Zero and One are the neutral offset and scale vectors.
var (
	Zero = Vec3{}
	One  = Vec3{X: 1, Y: 1, Z: 1}
)

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length returns the euclidean length of v.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns v scaled to unit length. Zero stays zero.
func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return Zero
	}
	return v.Scale(1 / l)
}

// Distance returns the distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

// LookRotation returns Euler angles (pitch, yaw, 0) in radians that turn the
// -Z forward axis toward dir. A zero direction yields a zero rotation.
func LookRotation(dir Vec3) Vec3 {
	if dir == Zero {
		return Zero
	}
	d := dir.Normalized()
	horiz := math.Sqrt(d.X*d.X + d.Z*d.Z)
	return Vec3{
		X: math.Atan2(d.Y, horiz),
		Y: math.Atan2(-d.X, -d.Z),
	}
}

// Transform is a position/rotation/scale triple. Rotation is Euler radians.
type Transform struct {
	Position Vec3
	Rotation Vec3
	Scale    Vec3
}

// Identity returns the neutral transform (origin, no rotation, unit scale).
func Identity() Transform {
	return Transform{Scale: One}
}

// At returns an identity transform translated to pos.
func At(pos Vec3) Transform {
	return Transform{Position: pos, Scale: One}
}

// WithScale returns t with a uniform scale s.
func (t Transform) WithScale(s float64) Transform {
	t.Scale = One.Scale(s)
	return t
}
