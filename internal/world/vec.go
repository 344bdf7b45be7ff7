package world

import "math"

// Vec2 is a 2D world position. All proximity checks in the server are 2D;
// the third coordinate only rides along for client display.
type Vec2 struct {
	X, Y float32
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float32) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.LengthSquared())))
}

func (v Vec2) DistanceSquared(o Vec2) float32 {
	return v.Sub(o).LengthSquared()
}

func (v Vec2) Distance(o Vec2) float32 {
	return v.Sub(o).Length()
}

// Normalize returns the unit vector, or the zero vector for zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return Vec2{v.X / l, v.Y / l}
}

// Vec3 is a world position with height.
type Vec3 struct {
	X, Y, Z float32
}

func (v Vec3) XY() Vec2 { return Vec2{v.X, v.Y} }
