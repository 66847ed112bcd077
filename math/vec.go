// math/vec.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// world-space vectors

// Vec is a position or displacement in world space. X grows east, Y grows
// south, Z grows up. Components are world units, CellSize to a cell edge.
type Vec struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
	Z int64 `json:"z"`
}

// a+b
func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// a-b
func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// a*s
func (v Vec) Scale(s int64) Vec {
	return Vec{v.X * s, v.Y * s, v.Z * s}
}

// a/s, truncating toward zero
func (v Vec) Div(s int64) Vec {
	return Vec{v.X / s, v.Y / s, v.Z / s}
}

func (v Vec) Neg() Vec {
	return Vec{-v.X, -v.Y, -v.Z}
}

func (v Vec) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Horizontal drops the vertical component.
func (v Vec) Horizontal() Vec {
	return Vec{v.X, v.Y, 0}
}

// WithZ returns v at altitude z.
func (v Vec) WithZ(z int64) Vec {
	return Vec{v.X, v.Y, z}
}

func (v Vec) LengthSquared() int64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vec) Length() int64 {
	return ISqrt(v.LengthSquared())
}

func (v Vec) HorizontalLengthSquared() int64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec) HorizontalLength() int64 {
	return ISqrt(v.HorizontalLengthSquared())
}

func Dot(a, b Vec) int64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Distance between two points
func Distance(a, b Vec) int64 {
	return a.Sub(b).Length()
}

// Distance between two points ignoring altitude
func HorizontalDistance(a, b Vec) int64 {
	return a.Sub(b).HorizontalLength()
}

func HorizontalDistanceSquared(a, b Vec) int64 {
	return a.Sub(b).HorizontalLengthSquared()
}
