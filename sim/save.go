// sim/save.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"bytes"
	"compress/flate"
	"fmt"
	"slices"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/gatekeep/OpenRA/game"
	"github.com/gatekeep/OpenRA/log"
	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/rand"
	"github.com/gatekeep/OpenRA/util"
)

const saveVersion = 1

// savedWorld is the serialized form of a World between ticks. The
// scenario travels as its original JSON so a save file is loadable
// without the scenario that produced it; everything else is flattened
// into slices so the encoding is byte-stable across runs.
type savedWorld struct {
	Version      int
	ScenarioName string
	Scenario     []byte
	TickCount    int64
	RandSeed     int64
	RandDraws    uint64
	NextID       ActorID
	NextTokenSeq int32
	Actors       []savedActor
	Reservations []Reservation
	NextResSeq   int64
}

type savedActor struct {
	ID         ActorID
	Type       string
	Owner      string
	Label      string
	Health     int32
	Ammo       int32
	Position   math.Vec
	Facing     math.Heading
	Conditions []ConditionToken
	Flight     *savedFlight
}

type savedFlight struct {
	PrevPosition  math.Vec
	PrevFacing    math.Heading
	Movement      MovementTypes
	AirborneToken util.Optional[ConditionToken]
	CruisingToken util.Optional[ConditionToken]
	ForceLanding  bool
	LandNow       bool
	Reservation   util.Optional[Reservation]
	Activities    []ActivityState
	Ticked        bool
}

func (rr *ReservationRegistry) save() ([]Reservation, int64) {
	var out []Reservation
	for res, ent := range rr.byResource {
		if rr.live(ent.claimant) {
			out = append(out, Reservation{Resource: res, Claimant: ent.claimant, Seq: ent.seq})
		}
	}
	slices.SortFunc(out, func(a, b Reservation) int { return int(a.Resource - b.Resource) })
	return out, rr.nextSeq
}

func (rr *ReservationRegistry) restore(rs []Reservation, nextSeq int64) {
	for _, r := range rs {
		rr.byResource[r.Resource] = reservationEntry{claimant: r.Claimant, seq: r.Seq}
	}
	rr.nextSeq = nextSeq
}

// Save serializes the world by msgpack-encoding it and then compressing
// with flate. Two runs of the same scenario and seed produce identical
// bytes, which the headless runner uses as its determinism check.
func (w *World) Save() ([]byte, error) {
	sv := savedWorld{
		Version:      saveVersion,
		ScenarioName: w.Scenario.Name,
		Scenario:     w.Scenario.Raw,
		TickCount:    w.TickCount,
		NextID:       w.nextID,
		NextTokenSeq: w.nextTokenSeq,
	}
	sv.RandSeed, sv.RandDraws = w.Rand.State()
	sv.Reservations, sv.NextResSeq = w.Reservations.save()

	for _, a := range w.Actors {
		if a.Dead {
			continue
		}
		sa := savedActor{
			ID:         a.ID,
			Type:       a.Type.Name,
			Owner:      a.Owner.Name,
			Label:      a.Label,
			Health:     a.Health,
			Ammo:       a.Ammo,
			Position:   a.Position,
			Facing:     a.Facing,
			Conditions: a.conditions,
		}
		if ac := a.Flight; ac != nil {
			sf := &savedFlight{
				PrevPosition:  ac.prevPosition,
				PrevFacing:    ac.prevFacing,
				Movement:      ac.movement,
				AirborneToken: ac.airborneToken,
				CruisingToken: ac.cruisingToken,
				ForceLanding:  ac.ForceLanding,
				LandNow:       ac.landNow,
				Reservation:   ac.reservation,
				Ticked:        ac.ticked,
			}
			for _, act := range ac.activities {
				sf.Activities = append(sf.Activities, act.State())
			}
			sa.Flight = sf
		}
		sv.Actors = append(sv.Actors, sa)
	}

	var buf bytes.Buffer
	if err := msgpack.NewEncoder(&buf).Encode(sv); err != nil {
		return nil, fmt.Errorf("msgpack encode: %w", err)
	}

	var compressed bytes.Buffer
	writer, err := flate.NewWriter(&compressed, flate.BestCompression)
	if err != nil {
		return nil, fmt.Errorf("flate writer: %w", err)
	}
	if _, err := writer.Write(buf.Bytes()); err != nil {
		writer.Close()
		return nil, fmt.Errorf("flate write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("flate close: %w", err)
	}
	return compressed.Bytes(), nil
}

// LoadWorld rebuilds a world from Save output. The embedded scenario is
// re-validated from scratch, then the dynamic state is laid over it
// without re-running spawning, so no random draws happen here.
func LoadWorld(data []byte, lg *log.Logger) (*World, error) {
	reader := flate.NewReader(bytes.NewReader(data))
	defer reader.Close()
	var decompressed bytes.Buffer
	if _, err := decompressed.ReadFrom(reader); err != nil {
		return nil, fmt.Errorf("flate decompress: %w", err)
	}

	var sv savedWorld
	if err := msgpack.NewDecoder(&decompressed).Decode(&sv); err != nil {
		return nil, fmt.Errorf("msgpack decode: %w", err)
	}
	if sv.Version != saveVersion {
		return nil, fmt.Errorf("%w: %d", ErrSaveVersion, sv.Version)
	}

	var e util.ErrorLogger
	sc := game.LoadScenarioBytes(sv.ScenarioName, sv.Scenario, &e)
	if sc == nil {
		return nil, fmt.Errorf("saved scenario: %s", e.String())
	}

	w := &World{
		Scenario:     sc,
		Map:          sc.Map,
		Rand:         rand.Restore(sv.RandSeed, sv.RandDraws),
		TickCount:    sv.TickCount,
		byID:         make(map[ActorID]*Actor),
		nextID:       sv.NextID,
		nextTokenSeq: sv.NextTokenSeq,
		Events:       NewEventStream(lg),
		lg:           lg,
		lastUpdate:   time.Now(),
	}
	w.Reservations = NewReservationRegistry(w)
	w.Reservations.restore(sv.Reservations, sv.NextResSeq)

	for _, sa := range sv.Actors {
		ut, ok := sc.UnitTypes[sa.Type]
		if !ok {
			return nil, fmt.Errorf("actor %d: %w: %q", sa.ID, ErrUnknownUnitType, sa.Type)
		}
		owner := w.player(sa.Owner)
		if owner == nil {
			return nil, fmt.Errorf("actor %d: %w: %q", sa.ID, ErrUnknownPlayer, sa.Owner)
		}

		a := &Actor{
			ID:         sa.ID,
			Type:       ut,
			Owner:      owner,
			Label:      sa.Label,
			Health:     sa.Health,
			Ammo:       sa.Ammo,
			Position:   sa.Position,
			Facing:     sa.Facing,
			conditions: sa.Conditions,
		}
		if sf := sa.Flight; sf != nil {
			ac := newAircraft(a)
			ac.prevPosition = sf.PrevPosition
			ac.prevFacing = sf.PrevFacing
			ac.movement = sf.Movement
			ac.airborneToken = sf.AirborneToken
			ac.cruisingToken = sf.CruisingToken
			ac.ForceLanding = sf.ForceLanding
			ac.landNow = sf.LandNow
			ac.reservation = sf.Reservation
			ac.ticked = sf.Ticked
			for _, st := range sf.Activities {
				act := loadActivity(st)
				if act == nil {
					return nil, fmt.Errorf("actor %d: %w: %q", sa.ID, ErrUnknownActivity, st.Kind)
				}
				ac.activities = append(ac.activities, act)
			}
			a.Flight = ac
		}
		w.Actors = append(w.Actors, a)
		w.byID[a.ID] = a
	}

	lg.Infof("world restored: scenario %q, tick %d, %d actors",
		sc.Name, w.TickCount, len(w.Actors))
	return w, nil
}
