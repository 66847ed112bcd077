// sim/state.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import (
	"github.com/brunoga/deep"

	"github.com/gatekeep/OpenRA/game"
	"github.com/gatekeep/OpenRA/math"
)

// StaticState is the part of a run that never changes: the terrain
// grid, the players, the tick rate. A viewer fetches it once and
// renders every subsequent DynamicState against it.
type StaticState struct {
	ScenarioName string
	MapName      string
	TickRate     int32
	Width        int32
	Height       int32
	Terrain      []string // row-major terrain type names
	Elevation    []int64  // row-major elevations in world units
	Players      []PlayerView
}

type PlayerView struct {
	Name    string
	Allies  []string
	Neutral bool
}

// DynamicState is the per-tick projection: who exists, where they are
// and what they are doing. Actors appear in creation order with the
// dead already filtered out.
type DynamicState struct {
	Tick   int64
	Stats  Stats
	Actors []ReplayActor
}

// ViewState is the complete picture a newly attached viewer needs.
type ViewState struct {
	StaticState
	DynamicState
}

// StaticViewOf builds the immutable description of a scenario without
// needing a running world. Replay tooling uses it to render frames
// recorded elsewhere.
func StaticViewOf(sc *game.Scenario) StaticState {
	m := sc.Map
	ss := StaticState{
		ScenarioName: sc.Name,
		MapName:      m.Name,
		TickRate:     sc.TickRate,
		Width:        m.Width,
		Height:       m.Height,
		Terrain:      make([]string, 0, m.Width*m.Height),
		Elevation:    make([]int64, 0, m.Width*m.Height),
	}
	for y := int32(0); y < m.Height; y++ {
		for x := int32(0); x < m.Width; x++ {
			c := math.Cell{X: x, Y: y}
			ss.Terrain = append(ss.Terrain, m.TerrainAt(c))
			ss.Elevation = append(ss.Elevation, m.ElevationAt(c))
		}
	}
	for _, p := range sc.Players {
		ss.Players = append(ss.Players, PlayerView{
			Name:    p.Name,
			Allies:  p.Allies,
			Neutral: p.Neutral,
		})
	}
	return deep.MustCopy(ss)
}

// StaticView builds the immutable description of the world. The result
// shares nothing with live simulation structures, so callers may keep
// it for the whole run.
func (w *World) StaticView() StaticState {
	return StaticViewOf(w.Scenario)
}

// DynamicView builds the current per-tick projection. Call it between
// ticks, never from inside one.
func (w *World) DynamicView() DynamicState {
	ds := DynamicState{
		Tick:  w.TickCount,
		Stats: w.Stats(),
	}
	for _, a := range w.Actors {
		if a.Dead {
			continue
		}
		ds.Actors = append(ds.Actors, replayActorFor(a))
	}
	return ds
}

// View combines both halves for a viewer that is just attaching.
func (w *World) View() ViewState {
	return ViewState{StaticState: w.StaticView(), DynamicState: w.DynamicView()}
}

// replayActorFor projects one actor into its drawable form. The
// recorder and the live view share it so a replayed frame and a live
// frame of the same tick come out identical.
func replayActorFor(a *Actor) ReplayActor {
	ra := ReplayActor{
		ID:     a.ID,
		Type:   a.Type.Name,
		Owner:  a.Owner.Name,
		Pos:    a.Position,
		Facing: a.Facing,
		Health: a.Health,
		Ammo:   a.Ammo,
	}
	if ac := a.Flight; ac != nil {
		ra.Movement = ac.movement
		ra.Activity = ac.CurrentActivity()
	}
	return ra
}
