// math/angle.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// headings and directions

// Heading is a discrete facing with 1024 units to a full turn: 0 is north,
// 256 east, 512 south, 768 west, increasing clockwise. Arithmetic wraps.
type Heading int32

const (
	HeadingUnits = 1024
	headingMask  = HeadingUnits - 1

	North Heading = 0
	East  Heading = 256
	South Heading = 512
	West  Heading = 768
)

// Trigonometry over headings is a table lookup so that rotation is exact
// integer math. Entries are scaled by CellSize.
var sinTable [HeadingUnits]int64

// atanTable[i] is atan(i/256) in heading units, for the octant reduction
// in VectorHeading.
var atanTable [257]int32

func init() {
	for i := range sinTable {
		sinTable[i] = int64(gomath.Round(CellSize * gomath.Sin(2*gomath.Pi*float64(i)/HeadingUnits)))
	}
	for i := range atanTable {
		atanTable[i] = int32(gomath.Round(gomath.Atan(float64(i)/256) * HeadingUnits / (2 * gomath.Pi)))
	}
}

// Sin returns sin(h) scaled by CellSize.
func (h Heading) Sin() int64 {
	return sinTable[int32(h)&headingMask]
}

// Cos returns cos(h) scaled by CellSize.
func (h Heading) Cos() int64 {
	return sinTable[(int32(h)+256)&headingMask]
}

// Normalize reduces h to [0,1024).
func (h Heading) Normalize() Heading {
	return h & headingMask
}

func (h Heading) Opposite() Heading {
	return (h + South) & headingMask
}

// Compass converts a heading into the name of the closest compass
// direction.
func (h Heading) Compass() string {
	idx := ((int32(h) + 64) & headingMask) / 128
	return [...]string{"North", "Northeast", "East", "Southeast",
		"South", "Southwest", "West", "Northwest"}[idx]
}

// HeadingDifference returns the minimum difference between two headings.
// (i.e., the result is always in the range [0,512].)
func HeadingDifference(a, b Heading) int32 {
	d := int32((a - b) & headingMask)
	if d > 512 {
		d = 1024 - d
	}
	return d
}

// HeadingSignedTurn returns the shortest turn from cur to target in the
// range (-512,512]; positive is clockwise. An exact 180 degree difference
// comes back positive so opposed headings always resolve clockwise.
func HeadingSignedTurn(cur, target Heading) int32 {
	d := int32((target - cur) & headingMask)
	if d > 512 {
		d -= 1024
	}
	return d
}

// TurnToward rotates cur toward target by at most rate units per call,
// taking the shorter way around.
func TurnToward(cur, target Heading, rate int32) Heading {
	d := HeadingSignedTurn(cur, target)
	if Abs(d) <= rate {
		return target.Normalize()
	}
	if d > 0 {
		return (cur + Heading(rate)) & headingMask
	}
	return (cur - Heading(rate)) & headingMask
}

// HeadingVector returns the forward vector for h, scaled to horizontal
// length CellSize.
func HeadingVector(h Heading) Vec {
	return Vec{X: h.Sin(), Y: -h.Cos()}
}

// VectorHeading returns the heading of v projected onto the map plane; a
// zero-length projection gives north.
func VectorHeading(v Vec) Heading {
	if v.X == 0 && v.Y == 0 {
		return North
	}
	return Heading(256-atan2Units(-v.Y, v.X)) & headingMask
}

// atan2Units returns the counterclockwise angle of (x,y) from the +x axis
// in heading units, y up, in [0,1024).
func atan2Units(y, x int64) int32 {
	if x == 0 && y == 0 {
		return 0
	}
	ax, ay := Abs(x), Abs(y)
	var a int32
	if ax >= ay {
		a = atanTable[(ay*256+ax/2)/ax]
	} else {
		a = 256 - atanTable[(ax*256+ay/2)/ay]
	}
	if x < 0 {
		a = 512 - a
	}
	if y < 0 {
		a = -a
	}
	return a & headingMask
}
