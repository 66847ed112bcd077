// telemetry/memory.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package telemetry

// MemoryBackend accumulates rows in slices. Tests and short headless
// runs use it to inspect what was recorded without touching disk.
type MemoryBackend struct {
	run    *Run
	states []ActorState
	events []RunEvent
	nextID uint
}

func NewMemory() *MemoryBackend {
	return &MemoryBackend{}
}

func (b *MemoryBackend) BeginRun(run *Run) error {
	b.nextID++
	run.ID = b.nextID
	b.run = run
	b.states = nil
	b.events = nil
	return nil
}

func (b *MemoryBackend) RecordState(states []ActorState) error {
	for i := range states {
		states[i].RunID = b.run.ID
	}
	b.states = append(b.states, states...)
	return nil
}

func (b *MemoryBackend) RecordEvent(ev *RunEvent) error {
	ev.RunID = b.run.ID
	b.events = append(b.events, *ev)
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

// Run returns the run begun on this backend, or nil.
func (b *MemoryBackend) Run() *Run { return b.run }

// States returns every recorded state row in insertion order.
func (b *MemoryBackend) States() []ActorState { return b.states }

// Events returns every recorded event row in insertion order.
func (b *MemoryBackend) Events() []RunEvent { return b.events }
