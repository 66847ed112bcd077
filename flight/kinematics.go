// flight/kinematics.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package flight holds the pure aircraft movement computations: step
// vectors, altitude classification, separation forces and landing-site
// search. Everything here is stateless; the simulation owns the state.
package flight

import (
	"github.com/gatekeep/OpenRA/game"
	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/rand"
)

// RepulsionFalloff scales the inverse-square separation force between
// cruising aircraft.
const RepulsionFalloff = 8192

// StepVector returns the displacement for one tick of flight at speed
// along facing. The heading vector is at fixed-point scale, so the
// product is rescaled by the cell radix.
func StepVector(speed int32, facing math.Heading) math.Vec {
	return math.HeadingVector(facing).Scale(int64(speed)).Div(math.CellSize)
}

// AltitudeClass describes where an aircraft sits relative to its
// configured altitude thresholds. Grounded and Airborne are mutually
// exclusive since the minimum airborne altitude is validated to be at
// or above the land altitude; Cruising holds only at exactly the
// cruise altitude.
type AltitudeClass struct {
	Grounded bool
	Airborne bool
	Cruising bool
}

func ClassifyAltitude(distAboveTerrain int64, ut *game.UnitType) AltitudeClass {
	return AltitudeClass{
		Grounded: distAboveTerrain <= ut.LandAltitude,
		Airborne: distAboveTerrain >= ut.MinAirborneAltitude,
		Cruising: distAboveTerrain == ut.CruiseAltitude,
	}
}

// RepulsionForce sums the separation force pushing an aircraft at pos
// away from neighbors. Callers pass only neighbors that are themselves
// repulsable and share the aircraft's cruise altitude; neighbors below
// the aircraft or beyond idealSeparation contribute nothing. Two
// aircraft at the same spot break the tie with a random direction from
// r, so the draw order is part of the replayed stream. Aircraft off
// the map get an extra nudge toward the map center, and non-hover
// aircraft drop any force pointing behind their current facing rather
// than be pushed into a stall.
func RepulsionForce(pos math.Vec, facing math.Heading, hover bool, idealSeparation int64,
	neighbors []math.Vec, m *game.Map, r *rand.Rand) math.Vec {
	var force math.Vec
	sepSq := idealSeparation * idealSeparation
	for _, n := range neighbors {
		if n.Z < pos.Z {
			continue
		}
		d := pos.Sub(n).Horizontal()
		distSq := d.LengthSquared()
		if distSq == 0 {
			force = force.Add(math.HeadingVector(math.Heading(r.Int31n(math.HeadingUnits))))
		} else if distSq <= sepSq {
			force = force.Add(d.Scale(RepulsionFalloff).Div(distSq))
		}
	}

	if !m.Contains(math.CellContaining(pos)) {
		inward := m.Center().Sub(pos).Horizontal()
		if l := inward.Length(); l > 0 {
			force = force.Add(inward.Scale(math.CellSize).Div(l))
		}
	}

	if !hover && !force.IsZero() {
		if math.Dot(math.HeadingVector(facing), force) < 0 {
			return math.Vec{}
		}
	}
	return force
}

// FindLandableCell returns target if isLandable accepts it, and
// otherwise scans concentric rings around it out to maxSearchRadius,
// returning the first acceptable cell whose center lies strictly
// closer than maxSearchRadius. The ring order is fixed so that
// repeated runs of a simulation search cells identically.
func FindLandableCell(m *game.Map, target math.Cell, maxSearchRadius int64,
	isLandable func(math.Cell) bool) (math.Cell, bool) {
	if m.Contains(target) && isLandable(target) {
		return target, true
	}

	maxRings := int32((maxSearchRadius + math.CellSize - 1) / math.CellSize)
	for radius := int32(1); radius <= maxRings; radius++ {
		for _, c := range math.RingCells(target, radius) {
			if !m.Contains(c) || target.DistanceTo(c) >= maxSearchRadius {
				continue
			}
			if isLandable(c) {
				return c, true
			}
		}
	}
	return math.Cell{}, false
}
