// sim/errors.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"errors"
)

var (
	ErrActorIsDead      = errors.New("Actor is dead")
	ErrCellOutsideMap   = errors.New("Cell is outside the map")
	ErrNoActorForID     = errors.New("No actor with that ID")
	ErrNotAnAircraft    = errors.New("Actor is not an aircraft")
	ErrReplayFrameRange = errors.New("Replay frame index out of range")
	ErrReplayVersion    = errors.New("Unsupported replay version")
	ErrSaveVersion      = errors.New("Unsupported save version")
	ErrUnknownActivity  = errors.New("Unknown activity kind in save")
	ErrUnknownPlayer    = errors.New("Unknown player in save")
	ErrUnknownUnitType  = errors.New("Unknown unit type in save")
)
