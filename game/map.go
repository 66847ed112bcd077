// game/map.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package game

import (
	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/util"
)

// ElevationStep is the height of one elevation level in world units;
// elevation rows in scenario files give levels as single digits.
const ElevationStep = 512

// Map is the static terrain grid for a scenario. Terrain is stored as
// indices into TerrainTypes so cell queries stay allocation-free.
type Map struct {
	Name          string
	Width, Height int32
	TerrainTypes  []string

	terrain   []uint8
	elevation []int16
}

// MapSpec is the JSON form of a map: a legend from single characters to
// terrain type names and one row string per cell row. Elevation rows are
// optional digit strings giving each cell's level.
type MapSpec struct {
	Name          string            `json:"name"`
	Legend        map[string]string `json:"legend"`
	Rows          []string          `json:"rows"`
	ElevationRows []string          `json:"elevation_rows"`
}

func (ms *MapSpec) PostDeserialize(e *util.ErrorLogger) *Map {
	defer e.CheckDepth(e.CurrentDepth())
	e.Push("map " + ms.Name)
	defer e.Pop()

	if len(ms.Rows) == 0 {
		e.ErrorString("no \"rows\" given")
		return nil
	}
	if len(ms.Legend) == 0 {
		e.ErrorString("no \"legend\" given")
		return nil
	}

	m := &Map{
		Name:   ms.Name,
		Width:  int32(len(ms.Rows[0])),
		Height: int32(len(ms.Rows)),
	}
	if m.Width == 0 {
		e.ErrorString("rows must not be empty")
		return nil
	}

	// Index terrain type names in sorted order so the compiled map does
	// not depend on legend iteration order.
	index := make(map[string]uint8)
	for _, name := range util.SortedMapKeys(ms.Legend) {
		ty := ms.Legend[name]
		if _, ok := index[ty]; !ok {
			index[ty] = uint8(len(m.TerrainTypes))
			m.TerrainTypes = append(m.TerrainTypes, ty)
		}
	}

	legend := make(map[byte]uint8)
	for ch, ty := range ms.Legend {
		if len(ch) != 1 {
			e.ErrorString("legend key %q must be a single character", ch)
			continue
		}
		legend[ch[0]] = index[ty]
	}

	m.terrain = make([]uint8, int(m.Width)*int(m.Height))
	for y, row := range ms.Rows {
		if int32(len(row)) != m.Width {
			e.ErrorString("row %d has %d cells; expected %d", y, len(row), m.Width)
			continue
		}
		for x := 0; x < len(row); x++ {
			idx, ok := legend[row[x]]
			if !ok {
				e.ErrorString("row %d: character %q is not in the legend", y, string(row[x]))
				continue
			}
			m.terrain[y*int(m.Width)+x] = idx
		}
	}

	if len(ms.ElevationRows) > 0 {
		if len(ms.ElevationRows) != len(ms.Rows) {
			e.ErrorString("%d elevation rows for %d terrain rows", len(ms.ElevationRows), len(ms.Rows))
			return nil
		}
		m.elevation = make([]int16, int(m.Width)*int(m.Height))
		for y, row := range ms.ElevationRows {
			if int32(len(row)) != m.Width {
				e.ErrorString("elevation row %d has %d cells; expected %d", y, len(row), m.Width)
				continue
			}
			for x := 0; x < len(row); x++ {
				if row[x] < '0' || row[x] > '9' {
					e.ErrorString("elevation row %d: %q is not a digit", y, string(row[x]))
					continue
				}
				m.elevation[y*int(m.Width)+x] = int16(row[x]-'0') * ElevationStep
			}
		}
	}

	return m
}

func (m *Map) Contains(c math.Cell) bool {
	return c.X >= 0 && c.X < m.Width && c.Y >= 0 && c.Y < m.Height
}

// HasTerrainType reports whether the map uses the named terrain type
// anywhere in its legend.
func (m *Map) HasTerrainType(name string) bool {
	for _, ty := range m.TerrainTypes {
		if ty == name {
			return true
		}
	}
	return false
}

// TerrainAt returns the terrain type name at c, or "" outside the map.
func (m *Map) TerrainAt(c math.Cell) string {
	if !m.Contains(c) {
		return ""
	}
	return m.TerrainTypes[m.terrain[c.Y*m.Width+c.X]]
}

// ElevationAt returns the terrain height at c in world units; cells
// outside the map report zero.
func (m *Map) ElevationAt(c math.Cell) int64 {
	if m.elevation == nil || !m.Contains(c) {
		return 0
	}
	return int64(m.elevation[c.Y*m.Width+c.X])
}

// DistanceAboveTerrain returns how far p is above the terrain under it.
func (m *Map) DistanceAboveTerrain(p math.Vec) int64 {
	return p.Z - m.ElevationAt(math.CellContaining(p))
}

// Center returns the world position at the middle of the map.
func (m *Map) Center() math.Vec {
	return math.Vec{
		X: int64(m.Width) * math.CellSize / 2,
		Y: int64(m.Height) * math.CellSize / 2,
	}
}
