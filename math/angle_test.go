// math/angle_test.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestHeadingVector(t *testing.T) {
	for _, tc := range []struct {
		h    Heading
		want Vec
	}{
		{h: North, want: Vec{0, -1024, 0}},
		{h: East, want: Vec{1024, 0, 0}},
		{h: South, want: Vec{0, 1024, 0}},
		{h: West, want: Vec{-1024, 0, 0}},
		{h: 128, want: Vec{724, -724, 0}},
		{h: 384, want: Vec{724, 724, 0}},
		{h: 640, want: Vec{-724, 724, 0}},
		{h: 896, want: Vec{-724, -724, 0}},
	} {
		if got := HeadingVector(tc.h); got != tc.want {
			t.Errorf("HeadingVector(%d) = %v, expected %v", tc.h, got, tc.want)
		}
	}

	// A full turn of forward vectors must be symmetric under 180 degree
	// rotation or turning in place would drift.
	for h := Heading(0); h < HeadingUnits; h++ {
		a, b := HeadingVector(h), HeadingVector(h.Opposite())
		if a.X != -b.X || a.Y != -b.Y {
			t.Errorf("HeadingVector(%d) = %v not opposite of HeadingVector(%d) = %v", h, a, h.Opposite(), b)
		}
	}
}

func TestVectorHeading(t *testing.T) {
	for _, tc := range []struct {
		v    Vec
		want Heading
	}{
		{v: Vec{0, -500, 0}, want: North},
		{v: Vec{500, 0, 0}, want: East},
		{v: Vec{0, 500, 0}, want: South},
		{v: Vec{-500, 0, 0}, want: West},
		{v: Vec{300, -300, 0}, want: 128},
		{v: Vec{-1, -1000, 0}, want: 1024 - 0}, // rounds back to north
		{v: Vec{0, 0, 0}, want: North},
		{v: Vec{0, 0, 900}, want: North}, // vertical only
	} {
		if got := VectorHeading(tc.v); got != tc.want.Normalize() {
			t.Errorf("VectorHeading(%v) = %d, expected %d", tc.v, got, tc.want.Normalize())
		}
	}

	// Round-tripping through the rotation tables may be off by one unit
	// from table quantization but never more.
	for h := Heading(0); h < HeadingUnits; h++ {
		got := VectorHeading(HeadingVector(h))
		if d := HeadingDifference(got, h); d > 1 {
			t.Errorf("VectorHeading(HeadingVector(%d)) = %d, off by %d", h, got, d)
		}
	}
}

func TestHeadingDifference(t *testing.T) {
	for _, tc := range []struct {
		a, b Heading
		want int32
	}{
		{a: 0, b: 0, want: 0},
		{a: 10, b: 1014, want: 20},
		{a: 1014, b: 10, want: 20},
		{a: 0, b: 512, want: 512},
		{a: 100, b: 400, want: 300},
		{a: 900, b: 100, want: 224},
	} {
		if got := HeadingDifference(tc.a, tc.b); got != tc.want {
			t.Errorf("HeadingDifference(%d, %d) = %d, expected %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestHeadingSignedTurn(t *testing.T) {
	for _, tc := range []struct {
		cur, target Heading
		want        int32
	}{
		{cur: 0, target: 10, want: 10},
		{cur: 10, target: 0, want: -10},
		{cur: 1000, target: 20, want: 44},
		{cur: 20, target: 1000, want: -44},
		{cur: 0, target: 512, want: 512}, // opposed headings turn clockwise
		{cur: 512, target: 0, want: 512},
		{cur: 300, target: 300, want: 0},
	} {
		if got := HeadingSignedTurn(tc.cur, tc.target); got != tc.want {
			t.Errorf("HeadingSignedTurn(%d, %d) = %d, expected %d", tc.cur, tc.target, got, tc.want)
		}
	}
}

func TestTurnToward(t *testing.T) {
	for _, tc := range []struct {
		cur, target Heading
		rate        int32
		want        Heading
	}{
		{cur: 0, target: 100, rate: 16, want: 16},
		{cur: 0, target: 100, rate: 200, want: 100},
		{cur: 100, target: 0, rate: 16, want: 84},
		{cur: 1000, target: 20, rate: 16, want: 1016},
		{cur: 1016, target: 20, rate: 16, want: 8},
		{cur: 8, target: 20, rate: 16, want: 20},
		{cur: 0, target: 512, rate: 16, want: 16}, // opposed: clockwise
		{cur: 77, target: 77, rate: 16, want: 77},
	} {
		if got := TurnToward(tc.cur, tc.target, tc.rate); got != tc.want {
			t.Errorf("TurnToward(%d, %d, %d) = %d, expected %d", tc.cur, tc.target, tc.rate, got, tc.want)
		}
	}

	// Repeated turning always reaches the target eventually.
	cur := Heading(700)
	for i := 0; i < 100 && cur != 130; i++ {
		cur = TurnToward(cur, 130, 12)
	}
	if cur != 130 {
		t.Errorf("TurnToward never reached target, stuck at %d", cur)
	}
}

func TestCompass(t *testing.T) {
	for _, tc := range []struct {
		h    Heading
		want string
	}{
		{h: 0, want: "North"},
		{h: 63, want: "North"},
		{h: 64, want: "Northeast"},
		{h: 256, want: "East"},
		{h: 512, want: "South"},
		{h: 768, want: "West"},
		{h: 1000, want: "North"},
	} {
		if got := tc.h.Compass(); got != tc.want {
			t.Errorf("Compass(%d) = %q, expected %q", tc.h, got, tc.want)
		}
	}
}
