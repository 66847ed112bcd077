// sim/rtb.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/util"
)

// ReturnToBase sends an aircraft to the nearest resupplier. It is a
// retrying protocol rather than a flight plan: every tick it
// re-validates its destination, falls back to approach-and-wait when
// every pad is claimed, and abandons cleanly when the owner has no
// resupply infrastructure at all. It terminates successfully once a
// landing and resupply have been sequenced.
type ReturnToBase struct {
	Destination util.Optional[ActorID]
	AlwaysLand  bool
}

func (r *ReturnToBase) ActivityName() string { return "returntobase" }

func (r *ReturnToBase) State() ActivityState {
	return ActivityState{Kind: "returntobase", Target: r.Destination,
		AlwaysLand: r.AlwaysLand}
}

func (r *ReturnToBase) Tick(w *World, a *Actor) bool {
	ac, ut := a.Flight, a.Type

	// A forced landing in progress takes priority; hold the protocol
	// rather than fight over the activity queue.
	if ac.ForceLanding {
		return false
	}

	// Get airborne first when starting from the ground; the protocol
	// resumes once the climb finishes.
	if !w.isAirborne(a) {
		ac.PrependActivity(&TakeOff{})
		return false
	}

	// Drop a destination that died or was claimed since last tick.
	if r.Destination.IsSet {
		host := w.Actor(r.Destination.Value)
		if host == nil || host.Dead || !host.IsResupplier() ||
			!w.Reservations.IsAvailable(host.ID, a.ID) {
			r.Destination.Clear()
		}
	}

	if !r.Destination.IsSet {
		if host := w.closestResupplier(a, true); host != nil {
			r.Destination.Set(host.ID)
		}
	}

	if !r.Destination.IsSet {
		// Everything is claimed; wait near the closest pad if there is
		// one, otherwise give up rather than retry forever.
		fallback := w.closestResupplier(a, false)
		if fallback == nil {
			w.postEvent(Event{Type: ReturnAbandonedEvent, Actor: a.ID, Pos: a.Position})
			return true
		}

		if math.HorizontalDistance(a.Position, fallback.Position) > ut.WaitDistance {
			ac.cruiseToward(w, fallback.Position)
		} else if !ut.Dynamics.Hover {
			// Fly a full loiter turn before looking again.
			ac.PrependActivity(&FlyCircle{Remaining: ut.CirclingTicks})
		}
		return false
	}

	host := w.Actor(r.Destination.Value)
	if !r.AlwaysLand && !ut.NeedsResupply(a.Health, a.Ammo, host.Type) {
		// Nothing to pick up; shadow the destination and keep checking.
		ac.cruiseToward(w, host.Position)
		return false
	}

	if !ac.MakeReservation(w, host) {
		// Claimed in front of us this very tick. Re-select next tick.
		r.Destination.Clear()
		return false
	}

	var dockFacing util.Optional[math.Heading]
	if ut.Dynamics.TurnToDock {
		dockFacing.Set(host.Type.DockFacing)
	}
	ac.QueueActivity(&Land{Host: r.Destination, TargetFacing: dockFacing})
	ac.QueueActivity(&Resupply{Host: r.Destination})
	if ut.Dynamics.TakeOffOnResupply && !r.AlwaysLand {
		ac.QueueActivity(&TakeOff{})
	}
	return true
}

func (r *ReturnToBase) Cancel(w *World, a *Actor) {}
