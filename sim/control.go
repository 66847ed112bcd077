// sim/control.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"

	"github.com/gatekeep/OpenRA/math"
)

// dispatchAircraftOrder runs cmd against the aircraft with the given ID
// after the shared validity checks. Orders arrive from outside the tick
// loop (a viewer, a script); whatever they queue takes effect on the
// actor's own next tick, so ordering stays deterministic.
func (w *World) dispatchAircraftOrder(id ActorID, order string, cmd func(a *Actor)) error {
	a := w.Actor(id)
	if a == nil {
		return ErrNoActorForID
	}
	if a.Dead {
		return ErrActorIsDead
	}
	if a.Flight == nil {
		return ErrNotAnAircraft
	}

	pre := *a
	cmd(a)

	w.lg.Info("dispatch_order", slog.String("order", order),
		slog.Any("prepost_actor", []Actor{pre, *a}))
	return nil
}

// DispatchMove orders the aircraft to fly to cell at cruise altitude.
func (w *World) DispatchMove(id ActorID, cell math.Cell) error {
	if !w.Map.Contains(cell) {
		return ErrCellOutsideMap
	}
	return w.dispatchAircraftOrder(id, "move", func(a *Actor) {
		w.OrderMove(a, cell)
	})
}

// DispatchReturnToBase sends the aircraft to its nearest resupplier.
func (w *World) DispatchReturnToBase(id ActorID, alwaysLand bool) error {
	return w.dispatchAircraftOrder(id, "return_to_base", func(a *Actor) {
		w.OrderReturnToBase(a, alwaysLand)
	})
}

// DispatchLandNow sets or clears the land-now condition on the aircraft.
func (w *World) DispatchLandNow(id ActorID, v bool) error {
	return w.dispatchAircraftOrder(id, "land_now", func(a *Actor) {
		w.OrderLandNow(a, v)
	})
}

// DispatchStop cancels the aircraft's agenda. An aircraft parked on a
// pad keeps its claim; one that was heading for one gives it up.
func (w *World) DispatchStop(id ActorID) error {
	return w.dispatchAircraftOrder(id, "stop", func(a *Actor) {
		a.Flight.CancelActivities(w)
	})
}
