// math/cell.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import "fmt"

///////////////////////////////////////////////////////////////////////////
// map cells

// Cell addresses one map cell. The world position (x,y) lies in cell
// (x>>CellShift, y>>CellShift).
type Cell struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func (c Cell) Add(dx, dy int32) Cell {
	return Cell{c.X + dx, c.Y + dy}
}

// Center returns the world position of the center of c at altitude zero.
func (c Cell) Center() Vec {
	return Vec{int64(c.X)*CellSize + HalfCell, int64(c.Y)*CellSize + HalfCell, 0}
}

// DistanceTo returns the world-space distance between the centers of two
// cells.
func (c Cell) DistanceTo(o Cell) int64 {
	dx := int64(c.X-o.X) * CellSize
	dy := int64(c.Y-o.Y) * CellSize
	return ISqrt(dx*dx + dy*dy)
}

// CellContaining returns the cell that position p falls in. The shift
// floors, so positions just outside the origin map to negative cells
// rather than wrapping.
func CellContaining(p Vec) Cell {
	return Cell{int32(p.X >> CellShift), int32(p.Y >> CellShift)}
}

// RingCells returns the cells at Chebyshev distance radius from center, in
// row scan order: top to bottom, left to right within a row. Radius zero
// gives just the center. Callers filter for map bounds.
func RingCells(center Cell, radius int32) []Cell {
	if radius <= 0 {
		return []Cell{center}
	}
	cells := make([]Cell, 0, 8*radius)
	for dy := -radius; dy <= radius; dy++ {
		if dy == -radius || dy == radius {
			for dx := -radius; dx <= radius; dx++ {
				cells = append(cells, center.Add(dx, dy))
			}
		} else {
			cells = append(cells, center.Add(-radius, dy), center.Add(radius, dy))
		}
	}
	return cells
}
