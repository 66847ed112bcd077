// sim/aircraft.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"log/slog"

	"github.com/gatekeep/OpenRA/flight"
	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/util"
)

// Aircraft is the per-unit flight state machine. Altitude conditions
// are granted and revoked exactly once per threshold crossing, force
// landing is a transient overlay that suppresses takeoff while an
// external land-now condition holds, and each tick's movement is
// classified against the previous tick's cached position and facing.
type Aircraft struct {
	actor *Actor

	prevPosition math.Vec
	prevFacing   math.Heading
	movement     MovementTypes

	airborneToken util.Optional[ConditionToken]
	cruisingToken util.Optional[ConditionToken]

	ForceLanding bool
	landNow      bool

	reservation util.Optional[Reservation]

	activities []Activity

	ticked bool
}

func newAircraft(a *Actor) *Aircraft {
	return &Aircraft{
		actor:        a,
		prevPosition: a.Position,
		prevFacing:   a.Facing,
	}
}

///////////////////////////////////////////////////////////////////////////
// position updates

// SetPosition moves the aircraft and reclassifies its altitude,
// toggling the airborne and cruising conditions on threshold crossings
// and re-running ground-level crush checks.
func (ac *Aircraft) SetPosition(w *World, p math.Vec) {
	a := ac.actor
	a.Position = p

	alt := flight.ClassifyAltitude(w.Map.DistanceAboveTerrain(p), a.Type)

	if alt.Airborne && !ac.airborneToken.IsSet {
		ac.airborneToken.Set(w.GrantCondition(a, ConditionAirborne))
	} else if !alt.Airborne && ac.airborneToken.IsSet {
		w.RevokeCondition(ac.airborneToken.Value)
		ac.airborneToken.Clear()
	}

	if alt.Cruising && !ac.cruisingToken.IsSet {
		ac.cruisingToken.Set(w.GrantCondition(a, ConditionCruising))
	} else if !alt.Cruising && ac.cruisingToken.IsSet {
		w.RevokeCondition(ac.cruisingToken.Value)
		ac.cruisingToken.Clear()
	}

	if alt.Grounded {
		for _, other := range w.EntitiesAt(a.Cell()) {
			if other != a && !other.Dead && a.Type.CanCrush(other.Type) {
				w.crush(other, a)
			}
		}
	}
}

// SetLandNow drives the external "should land now" condition. The
// response happens on the aircraft's own tick so that ordering stays
// deterministic.
func (ac *Aircraft) SetLandNow(v bool) {
	ac.landNow = v
}

///////////////////////////////////////////////////////////////////////////
// per-tick evaluation

func (ac *Aircraft) Tick(w *World) {
	a := ac.actor

	if !ac.ticked {
		ac.ticked = true
		ac.firstTick(w)
	}

	ac.updateForceLanding(w)
	ac.updateMovementTypes(w)
	ac.repulse(w)

	if len(ac.activities) > 0 {
		// While the land-now condition holds, everything except the
		// forced landing itself stays suspended.
		if ac.ForceLanding && ac.landNow && ac.CurrentActivity() != "land" {
			return
		}
		act := ac.activities[0]
		if act.Tick(w, a) {
			// The activity may have queued others behind itself.
			if len(ac.activities) > 0 && ac.activities[0] == act {
				ac.activities = ac.activities[1:]
			}
		}
	} else {
		ac.idleTick(w)
	}
}

// idleTick keeps a passive airborne aircraft physically sensible:
// types that settle when idle land beneath themselves when the cell
// allows it, and non-hover types keep circling since they cannot stop.
func (ac *Aircraft) idleTick(w *World) {
	a := ac.actor
	if !w.isAirborne(a) {
		return
	}
	if a.Type.Dynamics.LandWhenIdle && w.CanLand(a, a.Cell(), LandingCheck{Soft: true}) {
		land := &Land{TargetCell: a.Cell()}
		if a.Type.Dynamics.TurnToLand {
			land.TargetFacing.Set(a.Type.LandFacing)
		}
		ac.QueueActivity(land)
		return
	}
	if !a.Type.Dynamics.Hover {
		ac.circleStep(w)
	}
}

// firstTick checks for a host beneath a freshly created aircraft: a
// unit spawned on its pad starts with the pad reserved, and types
// configured for it launch immediately.
func (ac *Aircraft) firstTick(w *World) {
	a := ac.actor
	for _, other := range w.EntitiesAt(a.Cell()) {
		if other != a && !other.Dead && other.Type.Reservable {
			ac.MakeReservation(w, other)
			break
		}
	}
	if a.Type.Dynamics.TakeOffOnCreation {
		ac.QueueActivity(&TakeOff{})
	}
}

// updateForceLanding maintains the forced-landing overlay. The landing
// is prepended rather than replacing the agenda, so whatever the
// aircraft was doing resumes once the land-now condition lifts.
func (ac *Aircraft) updateForceLanding(w *World) {
	a := ac.actor
	alt := flight.ClassifyAltitude(w.Map.DistanceAboveTerrain(a.Position), a.Type)

	if ac.landNow && alt.Airborne && ac.CurrentActivity() != "land" {
		if w.CanLand(a, a.Cell(), LandingCheck{Soft: true}) {
			if !ac.ForceLanding {
				ac.ForceLanding = true
				w.postEvent(Event{Type: ForceLandingEvent, Actor: a.ID, Pos: a.Position})
			}
			land := &Land{TargetCell: a.Cell()}
			if a.Type.Dynamics.TurnToLand {
				land.TargetFacing.Set(a.Type.LandFacing)
			}
			ac.PrependActivity(land)
		}
	} else if !ac.landNow && ac.ForceLanding && !alt.Cruising {
		ac.ForceLanding = false
		if ac.CurrentActivity() == "land" {
			ac.activities[0].Cancel(w, a)
			ac.activities = ac.activities[1:]
		}
		if len(ac.activities) == 0 && !a.Type.Dynamics.LandWhenIdle {
			ac.QueueActivity(&TakeOff{})
		}
	}
}

// updateMovementTypes diffs facing and position against the previous
// tick and fires a single notification when the flag set changes.
func (ac *Aircraft) updateMovementTypes(w *World) {
	a := ac.actor

	var cur MovementTypes
	if a.Facing != ac.prevFacing {
		cur |= MovementTurning
	}
	d := a.Position.Sub(ac.prevPosition)
	if d.HorizontalLengthSquared() != 0 {
		cur |= MovementHorizontal
	}
	if d.Z != 0 {
		cur |= MovementVertical
	}

	if cur != ac.movement {
		ac.movement = cur
		w.postEvent(Event{Type: MovementChangedEvent, Actor: a.ID, Movement: cur})
	}

	ac.prevPosition = a.Position
	ac.prevFacing = a.Facing
}

// repulse nudges airborne aircraft apart. The neighbor set is collected
// in actor order so the zero-distance RNG draws replay identically.
func (ac *Aircraft) repulse(w *World) {
	a := ac.actor
	ut := a.Type
	if !ut.Dynamics.Repulsable {
		return
	}
	if !flight.ClassifyAltitude(w.Map.DistanceAboveTerrain(a.Position), ut).Airborne {
		return
	}

	neighbors := w.collectRepulsors(a)
	force := flight.RepulsionForce(a.Position, a.Facing, ut.Dynamics.Hover,
		ut.IdealSeparation, neighbors, w.Map, w.Rand)
	if force.IsZero() {
		return
	}

	step := flight.StepVector(ut.RepulsionSpeed, math.VectorHeading(force))
	ac.SetPosition(w, a.Position.Add(step))
}

///////////////////////////////////////////////////////////////////////////
// activities

func (ac *Aircraft) QueueActivity(act Activity) {
	ac.activities = append(ac.activities, act)
}

// PrependActivity puts act in front of the queue; it runs before the
// current activity resumes.
func (ac *Aircraft) PrependActivity(act Activity) {
	ac.activities = append([]Activity{act}, ac.activities...)
}

// ReplaceAgenda swaps the activity queue for act. A forced landing in
// progress stays at the head and the new agenda runs after it.
func (ac *Aircraft) ReplaceAgenda(w *World, act Activity) {
	if ac.ForceLanding && ac.CurrentActivity() == "land" {
		ac.activities = append(ac.activities[:1:1], act)
		return
	}
	ac.CancelActivities(w)
	ac.QueueActivity(act)
}

// CancelActivities cancels the running activity and drops the queue.
func (ac *Aircraft) CancelActivities(w *World) {
	if len(ac.activities) > 0 {
		ac.activities[0].Cancel(w, ac.actor)
	}
	ac.activities = nil
}

// CurrentActivity returns the name of the running activity, or "" when
// idle.
func (ac *Aircraft) CurrentActivity() string {
	if len(ac.activities) == 0 {
		return ""
	}
	return ac.activities[0].ActivityName()
}

///////////////////////////////////////////////////////////////////////////
// reservations

// MakeReservation claims target as this aircraft's landing host, always
// releasing any prior claim first. Failure is a normal outcome, not an
// error: the caller keeps flying and retries on a later tick.
func (ac *Aircraft) MakeReservation(w *World, target *Actor) bool {
	a := ac.actor
	if ac.reservation.IsSet {
		subject := ac.reservation.Value.Resource
		w.Reservations.Release(ac.reservation.Value)
		ac.reservation.Clear()
		w.postEvent(Event{Type: ReservationReleasedEvent, Actor: a.ID, Subject: subject})
	}

	res, ok := w.Reservations.Reserve(target.ID, a.ID)
	if !ok {
		w.lg.Debug("reservation contention", slog.Any("actor", a), slog.Any("target", target))
		return false
	}
	ac.reservation.Set(res)
	w.postEvent(Event{Type: ReservationMadeEvent, Actor: a.ID, Subject: target.ID})
	return true
}

// UnReserve releases the aircraft's claim, if any. With takeOff set, an
// aircraft still at or below its land altitude queues a takeoff.
func (ac *Aircraft) UnReserve(w *World, takeOff bool) {
	a := ac.actor
	if ac.reservation.IsSet {
		subject := ac.reservation.Value.Resource
		w.Reservations.Release(ac.reservation.Value)
		ac.reservation.Clear()
		w.postEvent(Event{Type: ReservationReleasedEvent, Actor: a.ID, Subject: subject})
	}

	if takeOff && w.Map.DistanceAboveTerrain(a.Position) <= a.Type.LandAltitude {
		ac.QueueActivity(&TakeOff{})
	}
}

// Reservation returns the host this aircraft holds a claim on, if any.
func (ac *Aircraft) Reservation() (ActorID, bool) {
	if !ac.reservation.IsSet {
		return 0, false
	}
	return ac.reservation.Value.Resource, true
}

// destroy runs the cleanup path when the actor dies: the activity queue
// is cancelled, the reservation released and any outstanding condition
// grants revoked.
func (ac *Aircraft) destroy(w *World) {
	ac.CancelActivities(w)
	ac.UnReserve(w, false)
	if ac.airborneToken.IsSet {
		w.RevokeCondition(ac.airborneToken.Value)
		ac.airborneToken.Clear()
	}
	if ac.cruisingToken.IsSet {
		w.RevokeCondition(ac.cruisingToken.Value)
		ac.cruisingToken.Clear()
	}
}

///////////////////////////////////////////////////////////////////////////
// maneuver helpers

// turnToward rotates toward want at the type's turn rate, or snaps for
// instant-turn types, and returns the new facing.
func (ac *Aircraft) turnToward(want math.Heading) math.Heading {
	a := ac.actor
	if a.Type.Dynamics.InstantTurn {
		a.Facing = want.Normalize()
	} else {
		a.Facing = math.TurnToward(a.Facing, want, a.Type.TurnRate)
	}
	return a.Facing
}

// holdClearance returns the Z that moves one vertical-rate step toward
// the given clearance above the terrain under pos.
func (ac *Aircraft) holdClearance(w *World, pos math.Vec, clearance int64) int64 {
	target := w.Map.ElevationAt(math.CellContaining(pos)) + clearance
	dz := math.Clamp(target-pos.Z, -int64(ac.actor.Type.VerticalRate), int64(ac.actor.Type.VerticalRate))
	return pos.Z + dz
}

// cruiseToward flies one tick toward target, holding cruise clearance.
// Hover aircraft translate straight at the target and stop over it;
// they cannot be trapped orbiting a point inside their turn radius.
// Fixed-wing aircraft step along their facing, so their callers must
// accept arrival radii no tighter than the turn circle.
func (ac *Aircraft) cruiseToward(w *World, target math.Vec) {
	a, ut := ac.actor, ac.actor.Type
	pos := a.Position
	hdist := math.HorizontalDistance(pos, target)
	if hdist > 0 {
		ac.turnToward(math.VectorHeading(target.Sub(pos)))
	}
	if ut.Dynamics.Hover {
		if hdist <= int64(ut.Speed) {
			pos.X, pos.Y = target.X, target.Y
		} else {
			d := target.Sub(pos).Horizontal()
			pos = pos.Add(d.Scale(int64(ut.Speed)).Div(hdist))
		}
	} else {
		pos = pos.Add(flight.StepVector(ut.Speed, a.Facing))
	}
	pos.Z = ac.holdClearance(w, pos, ut.CruiseAltitude)
	ac.SetPosition(w, pos)
}

// circleStep holds one tick of a continuous turn at cruise clearance.
func (ac *Aircraft) circleStep(w *World) {
	a, ut := ac.actor, ac.actor.Type
	a.Facing = (a.Facing + math.Heading(ut.TurnRate)).Normalize()
	pos := a.Position.Add(flight.StepVector(ut.Speed, a.Facing))
	pos.Z = ac.holdClearance(w, pos, ut.CruiseAltitude)
	ac.SetPosition(w, pos)
}
