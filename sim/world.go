// sim/world.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package sim runs the deterministic unit simulation: a single-threaded
// tick loop over a fixed actor order, with all randomness drawn from
// one seeded generator so that equal seeds give bit-equal runs.
package sim

import (
	"log/slog"
	"time"

	"github.com/gatekeep/OpenRA/flight"
	"github.com/gatekeep/OpenRA/game"
	"github.com/gatekeep/OpenRA/log"
	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/rand"
	"github.com/gatekeep/OpenRA/util"
)

// World owns all simulation state. Actors tick in creation order;
// nothing in a tick blocks, and all cross-unit waiting is expressed as
// per-tick polling.
type World struct {
	Scenario  *game.Scenario
	Map       *game.Map
	Rand      *rand.Rand
	TickCount int64

	Actors []*Actor
	byID   map[ActorID]*Actor
	nextID ActorID

	nextTokenSeq int32

	Reservations *ReservationRegistry
	Events       *EventStream

	Paused bool

	lg          *log.Logger
	lastUpdate  time.Time
	accumulated time.Duration
}

func NewWorld(sc *game.Scenario, seed int64, lg *log.Logger) *World {
	w := &World{
		Scenario:   sc,
		Map:        sc.Map,
		Rand:       rand.Make(),
		byID:       make(map[ActorID]*Actor),
		Events:     NewEventStream(lg),
		lg:         lg,
		lastUpdate: time.Now(),
	}
	w.Reservations = NewReservationRegistry(w)

	if seed == 0 {
		seed = sc.Seed
	}
	w.Rand.Seed(seed)

	for _, up := range sc.Units {
		w.spawnPlacement(up)
	}
	for _, sp := range sc.Spawns {
		w.spawnGroup(sp)
	}

	lg.Infof("world created: scenario %q, %d actors, seed %d", sc.Name, len(w.Actors), seed)
	return w
}

///////////////////////////////////////////////////////////////////////////
// actor management

func (w *World) addActor(ut *game.UnitType, owner *game.Player, pos math.Vec,
	facing math.Heading, health, ammo int32, label string) *Actor {
	w.nextID++
	a := &Actor{
		ID:       w.nextID,
		Type:     ut,
		Owner:    owner,
		Label:    label,
		Health:   health,
		Ammo:     ammo,
		Position: pos,
		Facing:   facing.Normalize(),
	}
	if ut.Aircraft {
		a.Flight = newAircraft(a)
	}
	w.Actors = append(w.Actors, a)
	w.byID[a.ID] = a
	w.postEvent(Event{Type: SpawnedEvent, Actor: a.ID, Pos: pos})
	if a.Flight != nil {
		// Classify the spawn altitude so units created in the air hold
		// their conditions from the start.
		a.Flight.SetPosition(w, pos)
	}
	return a
}

func (w *World) spawnPlacement(up game.UnitPlacement) {
	ut := w.Scenario.UnitTypes[up.Type]
	owner := w.player(up.Owner)

	pos := up.Cell.Center()
	elev := w.Map.ElevationAt(up.Cell)
	if up.Altitude != nil {
		pos.Z = elev + *up.Altitude
	} else {
		pos.Z = elev + ut.LandAltitude
	}

	health, ammo := ut.MaxHealth, ut.MaxAmmo
	if up.Health != nil {
		health = *up.Health
	}
	if up.Ammo != nil {
		ammo = *up.Ammo
	}

	w.addActor(ut, owner, pos, up.Facing, health, ammo, up.Label)
}

// spawnGroup places randomly chosen aircraft. The draw order (type,
// cell x, cell y, facing) is fixed per unit so all clients running the
// same seed place the same group.
func (w *World) spawnGroup(sp game.SpawnSpec) {
	owner := w.player(sp.Owner)
	area := [4]int32{0, 0, w.Map.Width - 1, w.Map.Height - 1}
	if sp.Area != nil {
		area = *sp.Area
	}
	names := util.SortedMapKeys(sp.Types)

	for i := 0; i < sp.Count; i++ {
		name, ok := rand.SampleWeighted(w.Rand, names, func(n string) int { return sp.Types[n] })
		if !ok {
			return
		}
		ut := w.Scenario.UnitTypes[name]

		cell := math.Cell{
			X: area[0] + w.Rand.Int31n(area[2]-area[0]+1),
			Y: area[1] + w.Rand.Int31n(area[3]-area[1]+1),
		}
		facing := math.Heading(w.Rand.Int31n(math.HeadingUnits))

		if sp.Airborne {
			pos := cell.Center()
			pos.Z = w.Map.ElevationAt(cell) + ut.CruiseAltitude
			w.addActor(ut, owner, pos, facing, ut.MaxHealth, ut.MaxAmmo, "")
			continue
		}

		// Grounded spawns need an open, landable cell nearby.
		open := func(c math.Cell) bool {
			return ut.CanLandOnTerrain(w.Map.TerrainAt(c)) && len(w.EntitiesAt(c)) == 0
		}
		found, ok := flight.FindLandableCell(w.Map, cell, game.DefaultLandRange, open)
		if !ok {
			w.lg.Warnf("no open cell near %v for spawned %s", cell, name)
			continue
		}
		pos := found.Center()
		pos.Z = w.Map.ElevationAt(found) + ut.LandAltitude
		w.addActor(ut, owner, pos, facing, ut.MaxHealth, ut.MaxAmmo, "")
	}
}

// Actor returns the live or dying actor with the given ID, or nil once
// it has been removed from the world.
func (w *World) Actor(id ActorID) *Actor {
	return w.byID[id]
}

func (w *World) player(name string) *game.Player {
	for _, p := range w.Scenario.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Kill marks the actor dead and runs its cleanup; the body leaves the
// actor list at the end of the tick. A dying resupplier evicts whoever
// is parked on it.
func (w *World) Kill(a *Actor) {
	if a.Dead {
		return
	}
	a.Dead = true
	if a.Flight != nil {
		a.Flight.destroy(w)
	}
	if a.Type.Reservable {
		if holder, ok := w.Reservations.Holder(a.ID); ok {
			if h := w.Actor(holder); h != nil && h.Flight != nil {
				h.Flight.UnReserve(w, true)
			}
		}
	}
	w.postEvent(Event{Type: RemovedEvent, Actor: a.ID, Pos: a.Position})
}

func (w *World) crush(victim, crusher *Actor) {
	w.postEvent(Event{Type: CrushedEvent, Actor: crusher.ID, Subject: victim.ID})
	w.lg.Info("crushed", slog.Any("victim", victim), slog.Any("crusher", crusher))
	w.Kill(victim)
}

func (w *World) removeDead() {
	any := false
	for _, a := range w.Actors {
		if a.Dead {
			delete(w.byID, a.ID)
			any = true
		}
	}
	if any {
		w.Actors = util.FilterSliceInPlace(w.Actors, func(a *Actor) bool { return !a.Dead })
	}
}

///////////////////////////////////////////////////////////////////////////
// tick loop

// Tick advances the simulation one step. Actors are processed in
// creation order; dead actors are removed only after every actor has
// run, so mid-tick kills cannot reorder processing.
func (w *World) Tick() {
	w.TickCount++
	for _, a := range w.Actors {
		if !a.Dead && a.Flight != nil {
			a.Flight.Tick(w)
		}
	}
	w.removeDead()
}

// Update catches the simulation up with wall-clock time at the
// scenario's tick rate. Interactive front ends call this from their
// frame loop; headless runs call Tick directly instead.
func (w *World) Update() {
	now := time.Now()
	if w.Paused {
		w.lastUpdate = now
		return
	}
	w.accumulated += now.Sub(w.lastUpdate)
	w.lastUpdate = now

	tickDur := time.Second / time.Duration(w.Scenario.TickRate)
	for w.accumulated >= tickDur {
		w.accumulated -= tickDur
		w.Tick()
	}
}

func (w *World) postEvent(e Event) {
	e.Tick = w.TickCount
	w.Events.Post(e)
}

///////////////////////////////////////////////////////////////////////////
// spatial queries

// EntitiesAt returns the live actors occupying the cell, in actor
// order. There is no spatial index; the scan order doubles as the
// deterministic tie-break everywhere occupancy matters.
func (w *World) EntitiesAt(cell math.Cell) []*Actor {
	var out []*Actor
	for _, a := range w.Actors {
		if !a.Dead && a.Cell() == cell {
			out = append(out, a)
		}
	}
	return out
}

func (w *World) isAirborne(a *Actor) bool {
	return a.Flight != nil &&
		flight.ClassifyAltitude(w.Map.DistanceAboveTerrain(a.Position), a.Type).Airborne
}

// collectRepulsors gathers the positions of nearby aircraft that push
// against a: repulsable, cruising at a's cruise altitude, within the
// ideal separation. Climbers and descenders pass below undisturbed.
func (w *World) collectRepulsors(a *Actor) []math.Vec {
	var out []math.Vec
	for _, other := range w.Actors {
		if other == a || other.Dead || other.Flight == nil {
			continue
		}
		if !other.Type.Dynamics.Repulsable || other.Type.CruiseAltitude != a.Type.CruiseAltitude {
			continue
		}
		if !flight.ClassifyAltitude(w.Map.DistanceAboveTerrain(other.Position), other.Type).Cruising {
			continue
		}
		if math.HorizontalDistance(a.Position, other.Position) > a.Type.IdealSeparation {
			continue
		}
		out = append(out, other.Position)
	}
	return out
}

// closestResupplier returns the nearest same-owner resupplier, or nil.
// With mustBeAvailable set, pads claimed by someone else are skipped.
// Distance ties keep the earliest actor, so selection is deterministic.
func (w *World) closestResupplier(a *Actor, mustBeAvailable bool) *Actor {
	var best *Actor
	var bestDist int64
	for _, other := range w.Actors {
		if other.Dead || !other.IsResupplier() || other.Owner != a.Owner {
			continue
		}
		if mustBeAvailable && !w.Reservations.IsAvailable(other.ID, a.ID) {
			continue
		}
		d := math.HorizontalDistance(a.Position, other.Position)
		if best == nil || d < bestDist {
			best, bestDist = other, d
		}
	}
	return best
}

///////////////////////////////////////////////////////////////////////////
// landing legality

// LandingCheck tunes CanLand. A soft check is a forecast used when
// committing to a landing: friendly idle mobile units that have
// somewhere to go are assumed to move aside, and the Land activity
// nudges them once it is overhead. The hard check (Soft unset) is the
// per-tick descent gate and treats them as blockers until they have
// actually moved. Docking bypasses the terrain test and never counts
// the host as a blocker.
type LandingCheck struct {
	Ignore  util.Optional[ActorID]
	Soft    bool
	Docking util.Optional[ActorID]
}

// CanLand reports whether the aircraft may put down at cell. Airborne
// units never block; blockers are waived when explicitly ignored or
// when the aircraft crushes them.
func (w *World) CanLand(a *Actor, cell math.Cell, opt LandingCheck) bool {
	if !w.Map.Contains(cell) {
		return false
	}
	for _, other := range w.EntitiesAt(cell) {
		if other == a {
			continue
		}
		if opt.Ignore.IsSet && other.ID == opt.Ignore.Value {
			continue
		}
		if opt.Docking.IsSet && other.ID == opt.Docking.Value {
			continue
		}
		if w.isAirborne(other) {
			continue
		}
		allied := a.Owner.IsAlliedWith(other.Owner.Name)
		if opt.Soft && allied && other.Type.Mobile && other.IsIdle() && w.canNudge(other) {
			continue
		}
		if a.Type.CanCrush(other.Type) {
			continue
		}
		return false
	}
	if !opt.Docking.IsSet {
		return a.Type.CanLandOnTerrain(w.Map.TerrainAt(cell))
	}
	return true
}

// canNudge reports whether a blocker has somewhere adjacent to go.
func (w *World) canNudge(a *Actor) bool {
	for _, c := range math.RingCells(a.Cell(), 1) {
		if w.Map.Contains(c) && len(w.EntitiesAt(c)) == 0 {
			return true
		}
	}
	return false
}

// nudgeBlockers asks clearable blockers at cell to step aside; they hop
// to the first open adjacent cell.
func (w *World) nudgeBlockers(a *Actor, cell math.Cell) {
	for _, other := range w.EntitiesAt(cell) {
		if other == a || w.isAirborne(other) {
			continue
		}
		if !other.Type.Mobile || !a.Owner.IsAlliedWith(other.Owner.Name) {
			continue
		}
		for _, c := range math.RingCells(other.Cell(), 1) {
			if w.Map.Contains(c) && len(w.EntitiesAt(c)) == 0 {
				pos := c.Center()
				pos.Z = w.Map.ElevationAt(c)
				other.Position = pos
				w.postEvent(Event{Type: NudgedEvent, Actor: a.ID, Subject: other.ID})
				break
			}
		}
	}
}

///////////////////////////////////////////////////////////////////////////
// orders

// OrderReturnToBase replaces the aircraft's agenda with the resupply
// protocol.
func (w *World) OrderReturnToBase(a *Actor, alwaysLand bool) {
	if a.Flight == nil {
		return
	}
	a.Flight.ReplaceAgenda(w, &ReturnToBase{AlwaysLand: alwaysLand})
}

// OrderMove sends the aircraft flying to the cell at cruise altitude,
// taking off first if it is on the ground.
func (w *World) OrderMove(a *Actor, cell math.Cell) {
	if a.Flight == nil {
		return
	}
	target := cell.Center()
	target.Z = w.Map.ElevationAt(cell) + a.Type.CruiseAltitude
	// Fixed-wing aircraft cannot stop over a point; they arrive at loiter
	// range instead.
	within := int64(a.Type.Speed)
	if !a.Type.Dynamics.Hover {
		within = a.Type.WaitDistance
	}
	fly := &Fly{Target: target, Within: within}
	if w.isAirborne(a) {
		a.Flight.ReplaceAgenda(w, fly)
	} else {
		a.Flight.ReplaceAgenda(w, &TakeOff{})
		a.Flight.QueueActivity(fly)
	}
}

// OrderLandNow drives the external land-now condition on the aircraft.
func (w *World) OrderLandNow(a *Actor, v bool) {
	if a.Flight != nil {
		a.Flight.SetLandNow(v)
	}
}

///////////////////////////////////////////////////////////////////////////
// observability

// Stats is a point-in-time summary for telemetry and status displays.
type Stats struct {
	Tick         int64
	Actors       int
	Aircraft     int
	Airborne     int
	Grounded     int
	Reservations int
}

func (w *World) Stats() Stats {
	st := Stats{Tick: w.TickCount, Actors: len(w.Actors)}
	for _, a := range w.Actors {
		if a.Flight == nil {
			continue
		}
		st.Aircraft++
		if w.isAirborne(a) {
			st.Airborne++
		} else {
			st.Grounded++
		}
		if a.Flight.reservation.IsSet {
			st.Reservations++
		}
	}
	return st
}

// Destroy shuts down the event stream's monitor; the world itself needs
// no other teardown.
func (w *World) Destroy() {
	w.Events.Destroy()
}
