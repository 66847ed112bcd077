// sim/activity.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/gatekeep/OpenRA/flight"
	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/util"
)

// Activity is one step of a unit's current agenda. Exactly one activity
// runs per tick; when Tick reports done the next queued activity starts
// on the following tick. Cancel is invoked only on the running activity.
type Activity interface {
	Tick(w *World, a *Actor) bool
	Cancel(w *World, a *Actor)
	ActivityName() string
	// State flattens the activity for savegames; loadActivity is its
	// inverse.
	State() ActivityState
}

// ActivityState is the serialized form of any activity.
type ActivityState struct {
	Kind       string
	Target     util.Optional[ActorID]
	Cell       math.Cell
	Pos        math.Vec
	Within     int64
	Facing     util.Optional[math.Heading]
	Ticks      int32
	Ticks2     int32
	Flags      uint8
	AlwaysLand bool
}

func loadActivity(st ActivityState) Activity {
	switch st.Kind {
	case "takeoff":
		return &TakeOff{Released: st.Flags&1 != 0}
	case "land":
		return &Land{Host: st.Target, TargetCell: st.Cell, TargetFacing: st.Facing,
			Warned: st.Flags&1 != 0}
	case "fly":
		return &Fly{Target: st.Pos, Within: st.Within}
	case "flycircle":
		return &FlyCircle{Remaining: st.Ticks}
	case "resupply":
		return &Resupply{Host: st.Target, RearmCounter: st.Ticks, RepairCounter: st.Ticks2,
			Started: st.Flags&1 != 0}
	case "returntobase":
		return &ReturnToBase{Destination: st.Target, AlwaysLand: st.AlwaysLand}
	default:
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////
// TakeOff

// TakeOff climbs the aircraft from the ground to its cruise altitude,
// releasing any held reservation as it leaves the surface. Non-VTOL
// aircraft roll forward while climbing.
type TakeOff struct {
	Released bool
}

func (t *TakeOff) ActivityName() string { return "takeoff" }

func (t *TakeOff) State() ActivityState {
	return ActivityState{Kind: "takeoff", Flags: util.Select[uint8](t.Released, 1, 0)}
}

func (t *TakeOff) Tick(w *World, a *Actor) bool {
	ac, ut := a.Flight, a.Type
	if !t.Released {
		t.Released = true
		ac.UnReserve(w, false)
		w.postEvent(Event{Type: TookOffEvent, Actor: a.ID, Pos: a.Position})
	}

	pos := a.Position
	if !ut.Dynamics.VTOL {
		pos = pos.Add(flight.StepVector(ut.Speed, a.Facing))
	}

	dist := w.Map.DistanceAboveTerrain(pos)
	climb := min(int64(ut.VerticalRate), ut.CruiseAltitude-dist)
	if climb > 0 {
		pos.Z += climb
	}
	ac.SetPosition(w, pos)

	return flight.ClassifyAltitude(w.Map.DistanceAboveTerrain(a.Position), ut).Cruising
}

func (t *TakeOff) Cancel(w *World, a *Actor) {}

///////////////////////////////////////////////////////////////////////////
// Land

// Land brings the aircraft down, either onto open terrain at TargetCell
// or onto the host it is docking with. The approach is horizontal
// first; if a landing facing is required it is reached before the
// descent starts. Terrain landings re-check cell legality every tick:
// clearable blockers are nudged out of the way, and a properly blocked
// cell diverts the landing to the nearest open one.
type Land struct {
	Host         util.Optional[ActorID]
	TargetCell   math.Cell
	TargetFacing util.Optional[math.Heading]
	Warned       bool
}

func (l *Land) ActivityName() string { return "land" }

func (l *Land) State() ActivityState {
	return ActivityState{Kind: "land", Target: l.Host, Cell: l.TargetCell,
		Facing: l.TargetFacing, Flags: util.Select[uint8](l.Warned, 1, 0)}
}

func (l *Land) Tick(w *World, a *Actor) bool {
	ac, ut := a.Flight, a.Type

	var target math.Vec
	if l.Host.IsSet {
		host := w.Actor(l.Host.Value)
		if host == nil || host.Dead {
			return true
		}
		target = host.Position.Add(host.Type.DockOffset).WithZ(0)
	} else {
		target = l.TargetCell.Center()
	}

	pos := a.Position
	dist := w.Map.DistanceAboveTerrain(pos)
	hdist := math.HorizontalDistance(pos, target)

	// Horizontal approach; motion is straight at the target so the
	// final line-up cannot orbit a point tighter than the turn circle.
	// Snap once a single step would overshoot.
	if hdist > int64(ut.Speed) {
		ac.turnToward(math.VectorHeading(target.Sub(pos)))
		d := target.Sub(pos).Horizontal()
		pos = pos.Add(d.Scale(int64(ut.Speed)).Div(hdist))

		// Non-VTOL aircraft descend on a glide as they approach; VTOL
		// aircraft stay level until they are overhead.
		if !ut.Dynamics.VTOL && hdist*int64(ut.VerticalRate) <= (dist-ut.LandAltitude)*int64(ut.Speed) {
			pos.Z -= min(int64(ut.VerticalRate), dist-ut.LandAltitude)
		}
		ac.SetPosition(w, pos)
		return false
	}
	if hdist > 0 {
		pos.X, pos.Y = target.X, target.Y
		ac.SetPosition(w, pos)
		return false
	}

	// Reach the required facing before descending.
	if l.TargetFacing.IsSet && a.Facing != l.TargetFacing.Value {
		ac.turnToward(l.TargetFacing.Value)
		return false
	}

	cell := a.Cell()
	if !l.Host.IsSet {
		if !w.CanLand(a, cell, LandingCheck{}) {
			if w.CanLand(a, cell, LandingCheck{Soft: true}) {
				// Blockers can step aside; ask and try again next tick.
				w.nudgeBlockers(a, cell)
				return false
			}
			// Properly blocked: divert to the closest cell that will
			// take the aircraft, or give up when there is none in
			// range. An aborted lander is left airborne for its idle
			// handling to sort out.
			landable := func(c math.Cell) bool {
				return w.CanLand(a, c, LandingCheck{Soft: true})
			}
			found, ok := flight.FindLandableCell(w.Map, cell, ut.LandRange, landable)
			if !ok {
				return true
			}
			l.TargetCell = found
			return false
		}
	}

	if !l.Warned {
		l.Warned = true
		for _, other := range w.EntitiesAt(cell) {
			if other != a && ut.CanCrush(other.Type) {
				w.postEvent(Event{Type: CrushWarningEvent, Actor: a.ID, Subject: other.ID})
			}
		}
	}

	if dist > ut.LandAltitude {
		pos.Z -= min(int64(ut.VerticalRate), dist-ut.LandAltitude)
		ac.SetPosition(w, pos)
	}
	if !flight.ClassifyAltitude(w.Map.DistanceAboveTerrain(a.Position), ut).Grounded {
		return false
	}

	if l.Host.IsSet {
		if host := w.Actor(l.Host.Value); host != nil {
			dock := host.Position.Add(host.Type.DockOffset)
			final := a.Position
			final.X, final.Y = dock.X, dock.Y
			ac.SetPosition(w, final)
			if l.TargetFacing.IsSet {
				a.Facing = l.TargetFacing.Value
			}
		}
	}
	w.postEvent(Event{Type: LandedEvent, Actor: a.ID, Pos: a.Position})
	return true
}

// Cancel gives up the docking claim; an aircraft ordered away before
// touching down must not keep its host locked. Terrain landings hold
// no claim. Once it is down, departure is what releases (see TakeOff).
func (l *Land) Cancel(w *World, a *Actor) {
	if l.Host.IsSet {
		a.Flight.UnReserve(w, false)
	}
}

///////////////////////////////////////////////////////////////////////////
// Fly

// Fly steers toward Target at cruise clearance and finishes once within
// the given horizontal distance.
type Fly struct {
	Target math.Vec
	Within int64
}

func (f *Fly) ActivityName() string { return "fly" }

func (f *Fly) State() ActivityState {
	return ActivityState{Kind: "fly", Pos: f.Target, Within: f.Within}
}

func (f *Fly) Tick(w *World, a *Actor) bool {
	ac := a.Flight
	if math.HorizontalDistance(a.Position, f.Target) <= f.Within {
		return true
	}
	ac.cruiseToward(w, f.Target)
	return math.HorizontalDistance(a.Position, f.Target) <= f.Within
}

func (f *Fly) Cancel(w *World, a *Actor) {}

///////////////////////////////////////////////////////////////////////////
// FlyCircle

// FlyCircle holds a continuous turn at cruise clearance for a fixed
// number of ticks; non-hover aircraft use it to loiter.
type FlyCircle struct {
	Remaining int32
}

func (f *FlyCircle) ActivityName() string { return "flycircle" }

func (f *FlyCircle) State() ActivityState {
	return ActivityState{Kind: "flycircle", Ticks: f.Remaining}
}

func (f *FlyCircle) Tick(w *World, a *Actor) bool {
	a.Flight.circleStep(w)
	f.Remaining--
	return f.Remaining <= 0
}

func (f *FlyCircle) Cancel(w *World, a *Actor) {}

///////////////////////////////////////////////////////////////////////////
// Resupply

// Resupply rearms and repairs the docked aircraft at its host's
// configured rates and finishes once neither has anything left to do.
type Resupply struct {
	Host          util.Optional[ActorID]
	RearmCounter  int32
	RepairCounter int32
	Started       bool
}

func (r *Resupply) ActivityName() string { return "resupply" }

func (r *Resupply) State() ActivityState {
	return ActivityState{Kind: "resupply", Target: r.Host, Ticks: r.RearmCounter,
		Ticks2: r.RepairCounter, Flags: util.Select[uint8](r.Started, 1, 0)}
}

func (r *Resupply) Tick(w *World, a *Actor) bool {
	if !r.Host.IsSet {
		return true
	}
	host := w.Actor(r.Host.Value)
	if host == nil || host.Dead {
		return true
	}

	if !r.Started {
		r.Started = true
		w.postEvent(Event{Type: ResupplyStartedEvent, Actor: a.ID, Subject: host.ID})
	}

	ut, ht := a.Type, host.Type
	if ht.Rearms && ut.MaxAmmo > 0 && a.Ammo < ut.MaxAmmo {
		r.RearmCounter++
		if r.RearmCounter >= ut.RearmTicks {
			r.RearmCounter = 0
			a.Ammo++
		}
	}
	if ht.Repairs && a.Health < ut.MaxHealth {
		r.RepairCounter++
		if r.RepairCounter >= ut.RepairTicks {
			r.RepairCounter = 0
			a.Health = math.Clamp(a.Health+ut.RepairStep, 0, ut.MaxHealth)
		}
	}

	if !ut.NeedsResupply(a.Health, a.Ammo, ht) {
		w.postEvent(Event{Type: ResupplyFinishedEvent, Actor: a.ID, Subject: host.ID})
		return true
	}
	return false
}

func (r *Resupply) Cancel(w *World, a *Actor) {}
