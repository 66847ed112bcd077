// sim/rtb_test.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"testing"

	"github.com/gatekeep/OpenRA/math"
)

func TestReturnToBaseResupplies(t *testing.T) {
	w := testWorld(t)
	pad := place(w, "pad", "Blue", math.Cell{X: 8, Y: 4}, 0)
	h := place(w, "heli", "Blue", math.Cell{X: 1, Y: 1}, 1280)
	h.Health = 30
	h.Ammo = 0

	sub := w.Events.Subscribe()
	defer sub.Unsubscribe()

	w.OrderReturnToBase(h, false)
	runUntil(t, w, 400, "resupply cycle", func() bool {
		return h.IsIdle() && w.IsConditionActive(h, ConditionCruising)
	})

	if h.Health != 100 || h.Ammo != 2 {
		t.Errorf("health %d ammo %d after resupply, want 100 and 2", h.Health, h.Ammo)
	}
	if _, ok := h.Flight.Reservation(); ok {
		t.Error("reservation still held after taking off again")
	}
	if _, ok := w.Reservations.Holder(pad.ID); ok {
		t.Error("pad still claimed after the visit")
	}

	evs := sub.Get()
	for ty, want := range map[EventType]int{
		ReservationMadeEvent:     1,
		LandedEvent:              1,
		ResupplyStartedEvent:     1,
		ResupplyFinishedEvent:    1,
		TookOffEvent:             1,
		ReservationReleasedEvent: 1,
		ReturnAbandonedEvent:     0,
	} {
		if got := countEvents(evs, ty); got != want {
			t.Errorf("got %d %s events, want %d", got, ty, want)
		}
	}
}

func TestReturnToBaseAbandons(t *testing.T) {
	w := testWorld(t)
	place(w, "pad", "Red", math.Cell{X: 8, Y: 4}, 0) // wrong owner
	h := place(w, "heli", "Blue", math.Cell{X: 1, Y: 1}, 1280)
	h.Ammo = 0

	sub := w.Events.Subscribe()
	defer sub.Unsubscribe()

	w.OrderReturnToBase(h, false)
	w.Tick()

	if !h.IsIdle() {
		t.Errorf("protocol still running as %q with nowhere to go", h.Flight.CurrentActivity())
	}
	if got := countEvents(sub.Get(), ReturnAbandonedEvent); got != 1 {
		t.Errorf("got %d abandonment events, want 1", got)
	}
}

func TestReturnToBaseWaitsWhenClaimed(t *testing.T) {
	w := testWorld(t)
	pad := place(w, "pad", "Blue", math.Cell{X: 8, Y: 4}, 0)
	h := place(w, "heli", "Blue", math.Cell{X: 1, Y: 1}, 1280)
	h.Ammo = 0
	rival := place(w, "heli", "Blue", math.Cell{X: 10, Y: 1}, 1280)

	res, ok := w.Reservations.Reserve(pad.ID, rival.ID)
	if !ok {
		t.Fatal("rival claim failed")
	}

	sub := w.Events.Subscribe()
	defer sub.Unsubscribe()

	w.OrderReturnToBase(h, false)
	runTicks(w, 120)

	// The pad is claimed, so the aircraft closes to wait range and holds
	// there without landing.
	if got := h.Flight.CurrentActivity(); got != "returntobase" {
		t.Fatalf("activity %q while waiting, want the protocol to keep running", got)
	}
	if !w.isAirborne(h) {
		t.Error("waiting aircraft must stay airborne")
	}
	d := math.HorizontalDistance(h.Position, pad.Position)
	if d <= 2900 || d >= 3100 {
		t.Errorf("waiting %d from the pad, want just inside wait distance", d)
	}
	if got := countEvents(sub.Get(), LandedEvent); got != 0 {
		t.Errorf("got %d landed events while the pad was claimed", got)
	}

	w.Reservations.Release(res)
	runUntil(t, w, 400, "resupply after release", func() bool {
		return h.IsIdle() && w.IsConditionActive(h, ConditionCruising)
	})
	if h.Ammo != 2 {
		t.Errorf("ammo %d after the pad freed up, want 2", h.Ammo)
	}
}

func TestReturnToBaseHostDies(t *testing.T) {
	w := testWorld(t)
	pad := place(w, "pad", "Blue", math.Cell{X: 8, Y: 4}, 0)
	h := place(w, "heli", "Blue", math.Cell{X: 1, Y: 1}, 1280)
	h.Ammo = 0

	sub := w.Events.Subscribe()
	defer sub.Unsubscribe()

	w.OrderReturnToBase(h, false)
	runUntil(t, w, 5, "reservation made", func() bool {
		_, ok := h.Flight.Reservation()
		return ok
	})

	w.Kill(pad)
	if _, ok := h.Flight.Reservation(); ok {
		t.Error("claim survived the host's death")
	}

	runUntil(t, w, 10, "sequence unwound", func() bool {
		return h.IsIdle()
	})
	if !w.isAirborne(h) {
		t.Error("aircraft should still be flying after its destination died")
	}
	evs := sub.Get()
	if got := countEvents(evs, LandedEvent); got != 0 {
		t.Errorf("got %d landed events for a dead host", got)
	}
	if got := countEvents(evs, ResupplyStartedEvent); got != 0 {
		t.Errorf("got %d resupply events for a dead host", got)
	}
}

func TestReturnToBaseAlwaysLand(t *testing.T) {
	w := testWorld(t)
	pad := place(w, "pad", "Blue", math.Cell{X: 8, Y: 4}, 0)
	h := place(w, "heli", "Blue", math.Cell{X: 1, Y: 1}, 1280)

	sub := w.Events.Subscribe()
	defer sub.Unsubscribe()

	w.OrderReturnToBase(h, true)
	runUntil(t, w, 300, "dock and stay", func() bool {
		return !w.isAirborne(h) && h.IsIdle()
	})

	if host, ok := h.Flight.Reservation(); !ok || host != pad.ID {
		t.Error("docked aircraft should keep its claim")
	}
	if holder, ok := w.Reservations.Holder(pad.ID); !ok || holder != h.ID {
		t.Error("registry does not show the docked aircraft as holder")
	}
	if h.Cell() != pad.Cell() {
		t.Errorf("docked at %v, want the pad's cell %v", h.Cell(), pad.Cell())
	}
	if h.Facing != 256 {
		t.Errorf("docked facing %d, want the pad's docking facing", h.Facing)
	}

	evs := sub.Get()
	for ty, want := range map[EventType]int{
		LandedEvent:           1,
		ResupplyStartedEvent:  1,
		ResupplyFinishedEvent: 1,
		TookOffEvent:          0,
	} {
		if got := countEvents(evs, ty); got != want {
			t.Errorf("got %d %s events, want %d", got, ty, want)
		}
	}
}

func TestReturnToBaseShadowsUntilNeeded(t *testing.T) {
	w := testWorld(t)
	pad := place(w, "pad", "Blue", math.Cell{X: 8, Y: 4}, 0)
	h := place(w, "heli", "Blue", math.Cell{X: 1, Y: 1}, 1280)

	sub := w.Events.Subscribe()
	defer sub.Unsubscribe()

	// Nothing to pick up yet: the aircraft shadows the pad from the air
	// instead of landing.
	w.OrderReturnToBase(h, false)
	runTicks(w, 150)

	if got := h.Flight.CurrentActivity(); got != "returntobase" {
		t.Fatalf("activity %q, want the protocol still running", got)
	}
	if h.Cell() != pad.Cell() || !w.isAirborne(h) {
		t.Errorf("want the aircraft hovering over the pad, got %v airborne=%v",
			h.Cell(), w.isAirborne(h))
	}
	if got := countEvents(sub.Get(), LandedEvent); got != 0 {
		t.Errorf("got %d landed events with nothing to resupply", got)
	}

	// The moment there is something to fix, the same order lands.
	h.Health = 30
	runUntil(t, w, 100, "resupply once damaged", func() bool {
		return h.Health == 100 && h.IsIdle() && w.IsConditionActive(h, ConditionCruising)
	})
}

func TestReturnToBaseLoitersInCircles(t *testing.T) {
	w := testWorld(t)
	pad := place(w, "pad", "Blue", math.Cell{X: 8, Y: 4}, 0)
	p := place(w, "plane", "Blue", math.Cell{X: 1, Y: 1}, 1536)
	p.Ammo = 0
	rival := place(w, "heli", "Blue", math.Cell{X: 10, Y: 1}, 1280)

	res, ok := w.Reservations.Reserve(pad.ID, rival.ID)
	if !ok {
		t.Fatal("rival claim failed")
	}

	sub := w.Events.Subscribe()
	defer sub.Unsubscribe()

	// A fixed-wing aircraft cannot hover at wait range; it flies full
	// loiter turns between availability checks.
	w.OrderReturnToBase(p, false)
	runUntil(t, w, 200, "loiter begins", func() bool {
		return p.Flight.CurrentActivity() == "flycircle"
	})
	if !w.isAirborne(p) {
		t.Error("loitering aircraft must stay airborne")
	}
	if got := countEvents(sub.Get(), LandedEvent); got != 0 {
		t.Errorf("got %d landed events while the pad was claimed", got)
	}

	w.Reservations.Release(res)
	runUntil(t, w, 600, "docked and rearmed", func() bool {
		return p.Ammo == 4 && p.IsIdle() && !w.isAirborne(p)
	})
	if holder, ok := w.Reservations.Holder(pad.ID); !ok || holder != p.ID {
		t.Error("docked aircraft should hold the pad")
	}
}
