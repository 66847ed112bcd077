// telemetry/telemetry.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package telemetry persists per-tick simulation state and events
// behind a storage backend interface, for offline analysis of runs.
package telemetry

import (
	"fmt"
	"time"
)

// Backend is the interface all telemetry sinks satisfy. Implementations
// need not be safe for concurrent use; the recorder drives them from
// the simulation goroutine.
type Backend interface {
	BeginRun(run *Run) error
	RecordState(states []ActorState) error
	RecordEvent(ev *RunEvent) error
	Close() error
}

// Run is one recorded simulation run. BeginRun assigns the ID.
type Run struct {
	ID        uint   `gorm:"primarykey;autoIncrement"`
	Scenario  string `gorm:"size:200"`
	MapName   string `gorm:"size:200"`
	Seed      int64
	TickRate  int32
	StartedAt time.Time
}

// ActorState is one actor's state at one captured tick.
type ActorState struct {
	ID       uint   `gorm:"primarykey;autoIncrement"`
	RunID    uint   `gorm:"index:idx_actorstate_run"`
	Tick     int64  `gorm:"index:idx_actorstate_tick"`
	ActorID  int32
	Type     string `gorm:"size:64"`
	Owner    string `gorm:"size:64"`
	X, Y, Z  int64
	Facing   int32
	Health   int32
	Ammo     int32
	Activity string `gorm:"size:32"`
}

// RunEvent is one simulation event with its world position.
type RunEvent struct {
	ID      uint   `gorm:"primarykey;autoIncrement"`
	RunID   uint   `gorm:"index:idx_runevent_run"`
	Tick    int64  `gorm:"index:idx_runevent_tick"`
	Name    string `gorm:"size:64"`
	ActorID int32
	Subject int32
	X, Y, Z int64
}

// Config selects and parameterizes a backend.
type Config struct {
	Driver string // "sqlite" or "memory"
	Path   string // sqlite database file
}

// New creates the backend the config names.
func New(cfg Config) (Backend, error) {
	switch cfg.Driver {
	case "sqlite":
		return NewSQLite(cfg.Path)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown telemetry driver: %q", cfg.Driver)
	}
}
