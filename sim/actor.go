// sim/actor.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gatekeep/OpenRA/game"
	"github.com/gatekeep/OpenRA/math"
)

// ActorID identifies a unit for the lifetime of a world. IDs start at 1;
// zero is never assigned, so it can serve as "nobody" in event records.
type ActorID int32

// MovementTypes is the set of ways an aircraft moved over the last tick.
type MovementTypes uint8

const (
	MovementNone       MovementTypes = 0
	MovementTurning    MovementTypes = 1 << 0
	MovementHorizontal MovementTypes = 1 << 1
	MovementVertical   MovementTypes = 1 << 2
)

func (m MovementTypes) String() string {
	if m == MovementNone {
		return "none"
	}
	var parts []string
	if m&MovementTurning != 0 {
		parts = append(parts, "turning")
	}
	if m&MovementHorizontal != 0 {
		parts = append(parts, "horizontal")
	}
	if m&MovementVertical != 0 {
		parts = append(parts, "vertical")
	}
	return strings.Join(parts, "+")
}

// Actor is one unit in the world. Ground units carry only position and
// health; aircraft additionally own an Aircraft with the flight state
// machine.
type Actor struct {
	ID     ActorID
	Type   *game.UnitType
	Owner  *game.Player
	Label  string
	Dead   bool
	Health int32
	Ammo   int32

	Position math.Vec
	Facing   math.Heading

	Flight *Aircraft

	conditions []ConditionToken
}

func (a *Actor) String() string {
	if a.Label != "" {
		return fmt.Sprintf("%s#%d(%s)", a.Type.Name, a.ID, a.Label)
	}
	return fmt.Sprintf("%s#%d", a.Type.Name, a.ID)
}

func (a *Actor) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("id", int(a.ID)),
		slog.String("type", a.Type.Name),
		slog.String("owner", a.Owner.Name),
		slog.Int64("x", a.Position.X),
		slog.Int64("y", a.Position.Y),
		slog.Int64("z", a.Position.Z))
}

// Cell returns the map cell the actor currently occupies.
func (a *Actor) Cell() math.Cell {
	return math.CellContaining(a.Position)
}

// IsIdle reports whether the actor has no queued activity. Ground units
// are always idle in this model; they only move when nudged.
func (a *Actor) IsIdle() bool {
	return a.Flight == nil || len(a.Flight.activities) == 0
}

// IsResupplier reports whether other aircraft can dock here to rearm or
// repair.
func (a *Actor) IsResupplier() bool {
	return a.Type.Reservable && (a.Type.Rearms || a.Type.Repairs)
}
