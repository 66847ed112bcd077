// sim/reservation.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import "fmt"

// Reservation is an exclusive claim on a reservable host. It is a value
// handle: releasing it twice is harmless, but releasing it after the
// host was claimed by someone else panics, since only corrupted state
// machines try that.
type Reservation struct {
	Resource ActorID
	Claimant ActorID
	Seq      int64
}

type reservationEntry struct {
	claimant ActorID
	seq      int64
}

// ReservationRegistry hands out exclusive reservations on reservable
// actors. There is no queuing: contention is resolved by whoever
// reserves first, and later callers poll again on their own ticks.
type ReservationRegistry struct {
	world      *World
	byResource map[ActorID]reservationEntry
	nextSeq    int64
}

func NewReservationRegistry(w *World) *ReservationRegistry {
	return &ReservationRegistry{
		world:      w,
		byResource: make(map[ActorID]reservationEntry),
	}
}

// live reports whether the claimant of record still exists; claims by
// dead actors do not hold a resource.
func (rr *ReservationRegistry) live(id ActorID) bool {
	a := rr.world.Actor(id)
	return a != nil && !a.Dead
}

// Reserve claims resource for claimant. It fails only when a different
// live claimant already holds the resource; re-reserving one's own
// resource succeeds and returns a fresh reservation.
func (rr *ReservationRegistry) Reserve(resource, claimant ActorID) (Reservation, bool) {
	if cur, ok := rr.byResource[resource]; ok && cur.claimant != claimant && rr.live(cur.claimant) {
		return Reservation{}, false
	}
	rr.nextSeq++
	rr.byResource[resource] = reservationEntry{claimant: claimant, seq: rr.nextSeq}
	return Reservation{Resource: resource, Claimant: claimant, Seq: rr.nextSeq}, true
}

// Release ends the claim. Releasing an already-released reservation is a
// no-op; releasing while another claimant holds the resource panics.
func (rr *ReservationRegistry) Release(res Reservation) {
	cur, ok := rr.byResource[res.Resource]
	if !ok || cur.seq != res.Seq {
		if ok && cur.claimant != res.Claimant && rr.live(cur.claimant) {
			panic(fmt.Sprintf("released reservation %+v now held by %d", res, cur.claimant))
		}
		return
	}
	delete(rr.byResource, res.Resource)
}

// IsAvailable reports whether asking could reserve the resource right
// now: it is free, held by asking itself, or held by a dead claimant.
func (rr *ReservationRegistry) IsAvailable(resource, asking ActorID) bool {
	cur, ok := rr.byResource[resource]
	return !ok || cur.claimant == asking || !rr.live(cur.claimant)
}

// Holder returns the live claimant currently holding the resource, if
// any.
func (rr *ReservationRegistry) Holder(resource ActorID) (ActorID, bool) {
	cur, ok := rr.byResource[resource]
	if !ok || !rr.live(cur.claimant) {
		return 0, false
	}
	return cur.claimant, true
}
