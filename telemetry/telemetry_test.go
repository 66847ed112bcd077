// telemetry/telemetry_test.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package telemetry

import (
	"io"
	"log/slog"
	"testing"

	"github.com/gatekeep/OpenRA/game"
	"github.com/gatekeep/OpenRA/log"
	"github.com/gatekeep/OpenRA/sim"
	"github.com/gatekeep/OpenRA/util"
)

func testWorld(t *testing.T) *sim.World {
	t.Helper()
	var e util.ErrorLogger
	sc := game.DefaultScenario(&e)
	if sc == nil {
		t.Fatalf("default scenario: %s", e.String())
	}
	lg := &log.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	return sim.NewWorld(sc, 1, lg)
}

func TestMemoryBackendRecords(t *testing.T) {
	w := testWorld(t)
	defer w.Destroy()

	mb := NewMemory()
	rec, err := NewRecorder(w, mb, 1)
	if err != nil {
		t.Fatal(err)
	}

	actors := len(w.DynamicView().Actors)
	if actors == 0 {
		t.Fatal("default scenario spawned no actors")
	}

	const ticks = 10
	for i := 0; i < ticks; i++ {
		w.Tick()
		if err := rec.Capture(); err != nil {
			t.Fatal(err)
		}
	}

	run := mb.Run()
	if run == nil || run.ID == 0 {
		t.Fatal("no run was begun")
	}
	if run.Scenario != w.Scenario.Name || run.TickRate != w.Scenario.TickRate {
		t.Errorf("run header %+v does not match the scenario", run)
	}

	states := mb.States()
	if got := len(states); got != ticks*actors {
		t.Fatalf("got %d state rows, want %d ticks x %d actors = %d",
			got, ticks, actors, ticks*actors)
	}
	if first, last := states[0].Tick, states[len(states)-1].Tick; first != 1 || last != ticks {
		t.Errorf("state rows span ticks %d..%d, want 1..%d", first, last, ticks)
	}
	for _, st := range states {
		if st.RunID != run.ID {
			t.Fatalf("state row stamped with run %d, want %d", st.RunID, run.ID)
		}
	}

	if err := rec.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestRecorderCapturesEvents(t *testing.T) {
	w := testWorld(t)
	defer w.Destroy()

	mb := NewMemory()
	rec, err := NewRecorder(w, mb, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()

	w.Kill(w.Actors[0])
	w.Tick()
	if err := rec.Capture(); err != nil {
		t.Fatal(err)
	}

	var removed bool
	for _, ev := range mb.Events() {
		if ev.Name == "Removed" {
			removed = true
		}
		if ev.RunID != mb.Run().ID {
			t.Fatalf("event row stamped with run %d, want %d", ev.RunID, mb.Run().ID)
		}
	}
	if !removed {
		t.Error("no Removed event was recorded after a kill")
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	if _, err := New(Config{Driver: "carrier-pigeon"}); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}
