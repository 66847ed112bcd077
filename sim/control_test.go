// sim/control_test.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
	"testing"

	"github.com/gatekeep/OpenRA/math"
)

func TestDispatchErrors(t *testing.T) {
	w := testWorld(t)
	h := place(w, "heli", "Blue", math.Cell{X: 1, Y: 1}, 1280)
	truck := place(w, "truck", "Blue", math.Cell{X: 4, Y: 4}, 0)
	dead := place(w, "heli", "Blue", math.Cell{X: 2, Y: 2}, 1280)
	w.Kill(dead)

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unknown id", w.DispatchStop(9999), ErrNoActorForID},
		{"ground unit", w.DispatchMove(truck.ID, math.Cell{X: 5, Y: 5}), ErrNotAnAircraft},
		{"dead aircraft", w.DispatchReturnToBase(dead.ID, false), ErrActorIsDead},
		{"cell off map", w.DispatchMove(h.ID, math.Cell{X: -1, Y: 0}), ErrCellOutsideMap},
	}
	for _, tc := range tests {
		if !errors.Is(tc.err, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, tc.err, tc.want)
		}
	}

	// Once the corpse is swept the ID stops resolving entirely.
	w.Tick()
	if err := w.DispatchStop(dead.ID); !errors.Is(err, ErrNoActorForID) {
		t.Errorf("dispatch to removed actor: got %v, want %v", err, ErrNoActorForID)
	}
}

func TestDispatchMoveAndStop(t *testing.T) {
	w := testWorld(t)
	h := place(w, "heli", "Blue", math.Cell{X: 1, Y: 1}, 1280)
	start := h.Position

	if err := w.DispatchMove(h.ID, math.Cell{X: 9, Y: 2}); err != nil {
		t.Fatalf("DispatchMove: %v", err)
	}
	if got := h.Flight.CurrentActivity(); got != "fly" {
		t.Fatalf("current activity %q after move order, want \"fly\"", got)
	}

	runTicks(w, 3)
	if h.Position == start {
		t.Fatal("aircraft did not move after three ticks")
	}

	if err := w.DispatchStop(h.ID); err != nil {
		t.Fatalf("DispatchStop: %v", err)
	}
	if !h.IsIdle() {
		t.Fatal("aircraft still busy after stop order")
	}

	held := h.Position
	runTicks(w, 5)
	if h.Position != held {
		t.Errorf("stopped aircraft drifted from %v to %v", held, h.Position)
	}
}

// An aircraft that was heading for a pad gives the claim back when
// stopped; the pad must be immediately available to the next customer.
func TestStopReleasesClaimInFlight(t *testing.T) {
	w := testWorld(t)
	pad := place(w, "pad", "Blue", math.Cell{X: 8, Y: 4}, 0)
	h := place(w, "heli", "Blue", math.Cell{X: 1, Y: 1}, 1280)
	h.Ammo = 0
	h2 := place(w, "heli", "Blue", math.Cell{X: 1, Y: 6}, 1280)

	sub := w.Events.Subscribe()
	defer sub.Unsubscribe()

	if err := w.DispatchReturnToBase(h.ID, false); err != nil {
		t.Fatalf("DispatchReturnToBase: %v", err)
	}
	runUntil(t, w, 5, "approach with claim", func() bool {
		_, ok := h.Flight.Reservation()
		return ok && h.Flight.CurrentActivity() == "land"
	})
	if avail := w.Reservations.IsAvailable(pad.ID, h2.ID); avail {
		t.Fatal("pad available to a rival while claimed")
	}

	if err := w.DispatchStop(h.ID); err != nil {
		t.Fatalf("DispatchStop: %v", err)
	}

	if _, ok := h.Flight.Reservation(); ok {
		t.Error("stopped aircraft still holds its claim")
	}
	if holder, ok := w.Reservations.Holder(pad.ID); ok {
		t.Errorf("pad still claimed by %d after stop", holder)
	}
	if !w.Reservations.IsAvailable(pad.ID, h2.ID) {
		t.Error("pad not available to a rival after stop")
	}
	if !h.IsIdle() || !w.isAirborne(h) {
		t.Error("stopped aircraft should idle in the air")
	}

	evs := sub.Get()
	if got := countEvents(evs, ReservationReleasedEvent); got != 1 {
		t.Errorf("got %d release events, want 1", got)
	}
}

// Stopping mid-resupply interrupts the transfer but the aircraft is
// physically on the pad, so the claim stays until it departs.
func TestStopWhileParkedKeepsClaim(t *testing.T) {
	w := testWorld(t)
	pad := place(w, "pad", "Blue", math.Cell{X: 4, Y: 4}, 0)
	h := place(w, "heli", "Blue", math.Cell{X: 4, Y: 4}, 0)
	h.Ammo = 0

	w.Tick() // first tick claims the pad underneath
	if holder, ok := w.Reservations.Holder(pad.ID); !ok || holder != h.ID {
		t.Fatalf("holder %d ok %v after spawn on pad, want %d", holder, ok, h.ID)
	}

	if err := w.DispatchReturnToBase(h.ID, false); err != nil {
		t.Fatalf("DispatchReturnToBase: %v", err)
	}
	runUntil(t, w, 80, "back on pad resupplying", func() bool {
		return h.Flight.CurrentActivity() == "resupply"
	})

	if err := w.DispatchStop(h.ID); err != nil {
		t.Fatalf("DispatchStop: %v", err)
	}
	if !h.IsIdle() {
		t.Fatal("aircraft still busy after stop order")
	}

	runTicks(w, 5)
	if holder, ok := w.Reservations.Holder(pad.ID); !ok || holder != h.ID {
		t.Errorf("holder %d ok %v after stopping on pad, want %d", holder, ok, h.ID)
	}
	if w.isAirborne(h) {
		t.Error("stopped aircraft left the pad")
	}
	if h.Cell() != pad.Cell() {
		t.Errorf("aircraft at %v, want parked at %v", h.Cell(), pad.Cell())
	}
}

func TestDispatchLandNowRoundTrip(t *testing.T) {
	w := testWorld(t)
	h := place(w, "heli", "Blue", math.Cell{X: 3, Y: 3}, 1280)

	if err := w.DispatchLandNow(h.ID, true); err != nil {
		t.Fatalf("DispatchLandNow: %v", err)
	}
	runUntil(t, w, 60, "forced landing", func() bool {
		return !w.isAirborne(h) && h.IsIdle()
	})

	if err := w.DispatchLandNow(h.ID, false); err != nil {
		t.Fatalf("DispatchLandNow clear: %v", err)
	}
	runUntil(t, w, 60, "airborne again", func() bool {
		return w.IsConditionActive(h, ConditionCruising)
	})
	if h.Flight.ForceLanding {
		t.Error("force-landing flag still set after release")
	}
}
