// sim/world_test.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"io"
	"log/slog"
	"testing"

	"github.com/gatekeep/OpenRA/game"
	"github.com/gatekeep/OpenRA/log"
	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/util"
)

// testScenarioJSON has a flat 12x8 map with a water column on the right
// edge and a water row at the bottom, three players (Blue and Green
// allied, Red hostile) and no pre-placed units; tests place what they
// need.
const testScenarioJSON = `
{
    "name": "test",
    "tick_rate": 25,
    "seed": 7,
    "map": {
        "name": "flats",
        "legend": {"C": "Clear", "W": "Water"},
        "rows": [
            "CCCCCCCCCCCW",
            "CCCCCCCCCCCW",
            "CCCCCCCCCCCW",
            "CCCCCCCCCCCW",
            "CCCCCCCCCCCW",
            "CCCCCCCCCCCW",
            "CCCCCCCCCCCW",
            "WWWWWWWWWWWW"
        ]
    },
    "players": [
        {"name": "Blue", "allies": ["Green"]},
        {"name": "Red"},
        {"name": "Green", "allies": ["Blue"]}
    ],
    "unit_types": {
        "heli": {
            "aircraft": true,
            "speed": 100,
            "turn_rate": 32,
            "vertical_rate": 64,
            "cruise_altitude": 1280,
            "landable_terrain": "Clear",
            "crushes": ["crate"],
            "max_health": 100,
            "max_ammo": 2,
            "rearm_ticks": 2,
            "repair_ticks": 2,
            "repair_step": 50,
            "dynamics": {
                "hover": true,
                "vtol": true,
                "turn_to_dock": true,
                "take_off_on_resupply": true
            }
        },
        "plane": {
            "aircraft": true,
            "speed": 120,
            "turn_rate": 32,
            "vertical_rate": 64,
            "cruise_altitude": 1536,
            "min_airborne_altitude": 512,
            "circling_ticks": 12,
            "landable_terrain": "Clear",
            "max_health": 100,
            "max_ammo": 4,
            "rearm_ticks": 2,
            "dynamics": {"turn_to_land": true}
        },
        "drone": {
            "aircraft": true,
            "speed": 80,
            "vertical_rate": 128,
            "cruise_altitude": 1024,
            "landable_terrain": "Clear",
            "dynamics": {
                "hover": true,
                "vtol": true,
                "instant_turn": true,
                "take_off_on_creation": true,
                "repulsable": false
            }
        },
        "pad": {
            "reservable": true,
            "rearms": true,
            "repairs": true,
            "dock_offset": {"x": 0, "y": -128},
            "dock_facing": 256,
            "max_health": 400
        },
        "truck": {"mobile": true, "max_health": 50},
        "crate": {"crush_classes": ["crate"], "max_health": 10}
    }
}
`

func testLogger() *log.Logger {
	return &log.Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testWorld(t *testing.T) *World {
	t.Helper()
	var e util.ErrorLogger
	sc := game.LoadScenarioBytes("test", []byte(testScenarioJSON), &e)
	if sc == nil {
		t.Fatalf("test scenario: %s", e.String())
	}
	return NewWorld(sc, 1, testLogger())
}

func place(w *World, typeName, owner string, cell math.Cell, alt int64) *Actor {
	ut := w.Scenario.UnitTypes[typeName]
	pos := cell.Center()
	pos.Z = w.Map.ElevationAt(cell) + alt
	return w.addActor(ut, w.player(owner), pos, 0, ut.MaxHealth, ut.MaxAmmo, "")
}

func runTicks(w *World, n int) {
	for i := 0; i < n; i++ {
		w.Tick()
	}
}

func runUntil(t *testing.T, w *World, maxTicks int, desc string, done func() bool) {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		if done() {
			return
		}
		w.Tick()
	}
	t.Fatalf("%s: not reached after %d ticks", desc, maxTicks)
}

func countEvents(evs []Event, ty EventType) int {
	n := 0
	for _, ev := range evs {
		if ev.Type == ty {
			n++
		}
	}
	return n
}

func TestEntitiesAt(t *testing.T) {
	w := testWorld(t)
	cell := math.Cell{X: 4, Y: 4}
	tr := place(w, "truck", "Blue", cell, 0)
	cr := place(w, "crate", "Red", cell, 0)
	place(w, "truck", "Blue", math.Cell{X: 5, Y: 4}, 0)

	got := w.EntitiesAt(cell)
	if len(got) != 2 || got[0] != tr || got[1] != cr {
		t.Errorf("EntitiesAt(%v) returned %v, want truck then crate", cell, got)
	}

	cr.Dead = true
	if got := w.EntitiesAt(cell); len(got) != 1 || got[0] != tr {
		t.Errorf("dead actors should not occupy cells, got %v", got)
	}
}

func TestCanLand(t *testing.T) {
	for _, tc := range []struct {
		name  string
		setup func(w *World) (math.Cell, LandingCheck)
		want  bool
	}{
		{
			name: "open clear cell",
			setup: func(w *World) (math.Cell, LandingCheck) {
				return math.Cell{X: 4, Y: 4}, LandingCheck{}
			},
			want: true,
		},
		{
			name: "water is not landable",
			setup: func(w *World) (math.Cell, LandingCheck) {
				return math.Cell{X: 4, Y: 7}, LandingCheck{}
			},
			want: false,
		},
		{
			name: "outside the map",
			setup: func(w *World) (math.Cell, LandingCheck) {
				return math.Cell{X: -1, Y: 3}, LandingCheck{}
			},
			want: false,
		},
		{
			name: "enemy unit blocks",
			setup: func(w *World) (math.Cell, LandingCheck) {
				c := math.Cell{X: 4, Y: 4}
				place(w, "truck", "Red", c, 0)
				return c, LandingCheck{}
			},
			want: false,
		},
		{
			name: "allied mobile unit still blocks the hard check",
			setup: func(w *World) (math.Cell, LandingCheck) {
				c := math.Cell{X: 4, Y: 4}
				place(w, "truck", "Green", c, 0)
				return c, LandingCheck{}
			},
			want: false,
		},
		{
			name: "allied idle mobile unit waived by the soft check",
			setup: func(w *World) (math.Cell, LandingCheck) {
				c := math.Cell{X: 4, Y: 4}
				place(w, "truck", "Green", c, 0)
				return c, LandingCheck{Soft: true}
			},
			want: true,
		},
		{
			name: "enemy unit not waived by the soft check",
			setup: func(w *World) (math.Cell, LandingCheck) {
				c := math.Cell{X: 4, Y: 4}
				place(w, "truck", "Red", c, 0)
				return c, LandingCheck{Soft: true}
			},
			want: false,
		},
		{
			name: "boxed-in ally not waived by the soft check",
			setup: func(w *World) (math.Cell, LandingCheck) {
				c := math.Cell{X: 4, Y: 4}
				place(w, "truck", "Blue", c, 0)
				for _, rc := range math.RingCells(c, 1) {
					place(w, "crate", "Red", rc, 0)
				}
				return c, LandingCheck{Soft: true}
			},
			want: false,
		},
		{
			name: "crushable cargo does not block",
			setup: func(w *World) (math.Cell, LandingCheck) {
				c := math.Cell{X: 4, Y: 4}
				place(w, "crate", "Red", c, 0)
				return c, LandingCheck{}
			},
			want: true,
		},
		{
			name: "airborne aircraft does not block",
			setup: func(w *World) (math.Cell, LandingCheck) {
				c := math.Cell{X: 4, Y: 4}
				place(w, "heli", "Red", c, 1280)
				return c, LandingCheck{}
			},
			want: true,
		},
		{
			name: "grounded aircraft blocks",
			setup: func(w *World) (math.Cell, LandingCheck) {
				c := math.Cell{X: 4, Y: 4}
				place(w, "heli", "Red", c, 0)
				return c, LandingCheck{}
			},
			want: false,
		},
		{
			name: "ignored blocker",
			setup: func(w *World) (math.Cell, LandingCheck) {
				c := math.Cell{X: 4, Y: 4}
				tr := place(w, "truck", "Red", c, 0)
				return c, LandingCheck{Ignore: util.MakeOptional(tr.ID)}
			},
			want: true,
		},
		{
			name: "docking skips the terrain test",
			setup: func(w *World) (math.Cell, LandingCheck) {
				c := math.Cell{X: 4, Y: 7}
				pad := place(w, "pad", "Blue", c, 0)
				return c, LandingCheck{Docking: util.MakeOptional(pad.ID)}
			},
			want: true,
		},
		{
			name: "host blocks when not docking with it",
			setup: func(w *World) (math.Cell, LandingCheck) {
				c := math.Cell{X: 4, Y: 4}
				place(w, "pad", "Blue", c, 0)
				return c, LandingCheck{}
			},
			want: false,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			w := testWorld(t)
			a := place(w, "heli", "Blue", math.Cell{X: 9, Y: 1}, 1280)
			cell, opt := tc.setup(w)
			if got := w.CanLand(a, cell, opt); got != tc.want {
				t.Errorf("CanLand(%v, %+v) = %v, want %v", cell, opt, got, tc.want)
			}
		})
	}
}

func TestNudgeBlockers(t *testing.T) {
	w := testWorld(t)
	cell := math.Cell{X: 4, Y: 4}
	tr := place(w, "truck", "Green", cell, 0)
	h := place(w, "heli", "Blue", cell, 1280)

	sub := w.Events.Subscribe()
	defer sub.Unsubscribe()

	w.nudgeBlockers(h, cell)
	if tr.Cell() == cell {
		t.Fatal("blocker was not moved")
	}
	if want := (math.Cell{X: 3, Y: 3}); tr.Cell() != want {
		t.Errorf("blocker hopped to %v, want first open ring cell %v", tr.Cell(), want)
	}
	if n := countEvents(sub.Get(), NudgedEvent); n != 1 {
		t.Errorf("got %d nudge events, want 1", n)
	}
}

func TestClosestResupplier(t *testing.T) {
	w := testWorld(t)
	h := place(w, "heli", "Blue", math.Cell{X: 1, Y: 1}, 1280)
	place(w, "pad", "Red", math.Cell{X: 1, Y: 2}, 0) // closest, wrong owner
	far := place(w, "pad", "Blue", math.Cell{X: 9, Y: 5}, 0)
	near := place(w, "pad", "Blue", math.Cell{X: 2, Y: 2}, 0)

	if got := w.closestResupplier(h, false); got != near {
		t.Errorf("closestResupplier = %v, want %v", got, near)
	}

	rival := place(w, "heli", "Blue", math.Cell{X: 9, Y: 1}, 1280)
	if _, ok := w.Reservations.Reserve(near.ID, rival.ID); !ok {
		t.Fatal("claim on near pad failed")
	}
	if got := w.closestResupplier(h, true); got != far {
		t.Errorf("closestResupplier with near pad claimed = %v, want %v", got, far)
	}
	if got := w.closestResupplier(h, false); got != near {
		t.Errorf("closestResupplier ignoring claims = %v, want %v", got, near)
	}
}

func TestClosestResupplierTieBreak(t *testing.T) {
	w := testWorld(t)
	h := place(w, "heli", "Blue", math.Cell{X: 1, Y: 1}, 1280)
	first := place(w, "pad", "Blue", math.Cell{X: 3, Y: 1}, 0)
	place(w, "pad", "Blue", math.Cell{X: 1, Y: 3}, 0) // same distance

	if got := w.closestResupplier(h, false); got != first {
		t.Errorf("distance tie should keep the earliest actor, got %v", got)
	}
}
