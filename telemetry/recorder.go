// telemetry/recorder.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package telemetry

import (
	"time"

	"github.com/gatekeep/OpenRA/sim"
)

// Recorder drives a Backend from a live world: one batch of actor
// states per captured tick plus every event posted since the previous
// capture. Call Capture after each World.Tick from the same goroutine.
type Recorder struct {
	world   *sim.World
	backend Backend
	events  *sim.EventsSubscription
}

func NewRecorder(w *sim.World, backend Backend, seed int64) (*Recorder, error) {
	run := &Run{
		Scenario:  w.Scenario.Name,
		MapName:   w.Map.Name,
		Seed:      seed,
		TickRate:  w.Scenario.TickRate,
		StartedAt: time.Now(),
	}
	if err := backend.BeginRun(run); err != nil {
		return nil, err
	}
	return &Recorder{world: w, backend: backend, events: w.Events.Subscribe()}, nil
}

func (r *Recorder) Capture() error {
	dv := r.world.DynamicView()
	states := make([]ActorState, 0, len(dv.Actors))
	for _, ra := range dv.Actors {
		states = append(states, ActorState{
			Tick:     dv.Tick,
			ActorID:  int32(ra.ID),
			Type:     ra.Type,
			Owner:    ra.Owner,
			X:        ra.Pos.X,
			Y:        ra.Pos.Y,
			Z:        ra.Pos.Z,
			Facing:   int32(ra.Facing),
			Health:   ra.Health,
			Ammo:     ra.Ammo,
			Activity: ra.Activity,
		})
	}
	if err := r.backend.RecordState(states); err != nil {
		return err
	}

	for _, ev := range r.events.Get() {
		re := RunEvent{
			Tick:    ev.Tick,
			Name:    ev.Type.String(),
			ActorID: int32(ev.Actor),
			Subject: int32(ev.Subject),
			X:       ev.Pos.X,
			Y:       ev.Pos.Y,
			Z:       ev.Pos.Z,
		}
		if err := r.backend.RecordEvent(&re); err != nil {
			return err
		}
	}
	return nil
}

// Close detaches from the world and closes the backend.
func (r *Recorder) Close() error {
	r.events.Unsubscribe()
	return r.backend.Close()
}
