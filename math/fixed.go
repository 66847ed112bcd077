// math/fixed.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package math provides integer fixed-point arithmetic for the simulation.
// All of it is exact: the same inputs give the same results on every
// platform, which the lockstep model depends on.
package math

import (
	"math/bits"

	"golang.org/x/exp/constraints"
)

// World space is measured in integer units with 1024 units to a cell edge,
// so conversions between cells and positions are shifts and masks.
const (
	CellShift = 10
	CellSize  = 1 << CellShift
	HalfCell  = CellSize / 2
)

func Abs[V constraints.Signed](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

// Sign returns -1, 0, or 1 according to the sign of x.
func Sign[V constraints.Signed](x V) V {
	if x > 0 {
		return 1
	} else if x < 0 {
		return -1
	}
	return 0
}

func Sqr[V constraints.Integer](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// ISqrt returns the largest r with r*r <= v, via Newton iteration seeded
// from the bit length. Negative v gives 0.
func ISqrt(v int64) int64 {
	if v <= 0 {
		return 0
	}
	r := int64(1) << ((bits.Len64(uint64(v)) + 1) / 2)
	for {
		next := (r + v/r) / 2
		if next >= r {
			return r
		}
		r = next
	}
}
