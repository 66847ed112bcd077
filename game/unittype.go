// game/unittype.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package game

import (
	"strings"

	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/util"
)

// Default tuning values applied by PostDeserialize when a unit type
// leaves the corresponding field unset.
const (
	DefaultCruiseAltitude  = 1280
	DefaultIdealSeparation = 1706
	DefaultWaitDistance    = 3 * math.CellSize
	DefaultLandRange       = 5 * math.CellSize
	DefaultCirclingTicks   = 150
	DefaultMaxHealth       = 100
	DefaultRearmTicks      = 20
	DefaultRepairTicks     = 10
	DefaultRepairStep      = 10
)

// Dynamics is the set of flight behavior flags for an aircraft type.
type Dynamics struct {
	// Hover aircraft can stop in place; non-hover aircraft always keep
	// forward motion and fly holding circles instead of idling.
	Hover bool `json:"hover"`
	// VTOL aircraft take off and land strictly vertically.
	VTOL bool `json:"vtol"`
	// InstantTurn aircraft snap to their desired facing instead of
	// turning at TurnRate.
	InstantTurn bool `json:"instant_turn"`
	// TurnToLand requires the landing facing to be reached before
	// descending onto open terrain.
	TurnToLand bool `json:"turn_to_land"`
	// TurnToDock requires the host's docking facing to be reached
	// before descending onto a resupplier.
	TurnToDock bool `json:"turn_to_dock"`
	// TakeOffOnResupply sends the aircraft airborne again as soon as
	// resupplying finishes.
	TakeOffOnResupply bool `json:"take_off_on_resupply"`
	// TakeOffOnCreation launches the aircraft on its first tick.
	TakeOffOnCreation bool `json:"take_off_on_creation"`
	// LandWhenIdle lets an idle aircraft settle onto terrain below it.
	LandWhenIdle bool `json:"land_when_idle"`
	// MoveIntoShroud allows movement into unexplored cells.
	MoveIntoShroud bool `json:"move_into_shroud"`

	// RepulsableJSON defaults to true when absent from JSON.
	RepulsableJSON *bool `json:"repulsable"`
	Repulsable     bool  `json:"-"` // not in JSON, set during deserialize
}

// UnitType describes one kind of unit in a scenario. Distances are in
// world units, speeds in world units per tick and turn rates in heading
// units per tick.
type UnitType struct {
	Name string `json:"-"` // not in JSON, set during deserialize

	// Aircraft marks types that fly; everything below through Dynamics
	// only applies to them.
	Aircraft            bool     `json:"aircraft"`
	Speed               int32    `json:"speed"`
	TurnRate            int32    `json:"turn_rate"`
	VerticalRate        int32    `json:"vertical_rate"`
	CruiseAltitude      int64    `json:"cruise_altitude"`
	LandAltitude        int64    `json:"land_altitude"`
	MinAirborneAltitude int64    `json:"min_airborne_altitude"`
	IdealSeparation     int64    `json:"ideal_separation"`
	RepulsionSpeed      int32    `json:"repulsion_speed"`
	WaitDistance        int64    `json:"wait_distance"`
	LandRange           int64    `json:"land_range"`
	CirclingTicks       int32    `json:"circling_ticks"`
	// LandFacing is the heading required for terrain landings when
	// TurnToLand is set.
	LandFacing math.Heading `json:"land_facing"`
	Dynamics   Dynamics     `json:"dynamics"`

	LandableTerrain util.SingleOrArray[string] `json:"landable_terrain"`

	// Crushes lists the crush classes this unit may land on top of;
	// CrushClasses lists the classes the unit itself belongs to.
	Crushes      []string `json:"crushes"`
	CrushClasses []string `json:"crush_classes"`

	// Mobile ground units can be asked to clear a landing cell.
	Mobile bool `json:"mobile"`

	// Reservable hosts hand out exclusive landing reservations.
	Reservable bool `json:"reservable"`
	Rearms     bool `json:"rearms"`
	Repairs    bool `json:"repairs"`
	// DockOffset is where a docked aircraft sits relative to the host
	// center; DockFacing is the heading it docks at.
	DockOffset math.Vec     `json:"dock_offset"`
	DockFacing math.Heading `json:"dock_facing"`

	MaxHealth   int32 `json:"max_health"`
	MaxAmmo     int32 `json:"max_ammo"`
	RearmTicks  int32 `json:"rearm_ticks"`
	RepairTicks int32 `json:"repair_ticks"`
	RepairStep  int32 `json:"repair_step"`
}

func (ut *UnitType) PostDeserialize(name string, m *Map, e *util.ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())
	e.Push("unit type " + name)
	defer e.Pop()

	ut.Name = name

	ut.Dynamics.Repulsable = ut.Dynamics.RepulsableJSON == nil || *ut.Dynamics.RepulsableJSON
	ut.Dynamics.RepulsableJSON = nil

	if ut.MaxHealth == 0 {
		ut.MaxHealth = DefaultMaxHealth
	}
	if ut.MaxHealth < 0 {
		e.ErrorString("\"max_health\" %d must be positive", ut.MaxHealth)
	}
	if ut.MaxAmmo < 0 {
		e.ErrorString("\"max_ammo\" %d must not be negative", ut.MaxAmmo)
	}
	if ut.RearmTicks == 0 {
		ut.RearmTicks = DefaultRearmTicks
	}
	if ut.RepairTicks == 0 {
		ut.RepairTicks = DefaultRepairTicks
	}
	if ut.RepairStep == 0 {
		ut.RepairStep = DefaultRepairStep
	}

	for _, ty := range ut.LandableTerrain {
		if !m.HasTerrainType(ty) {
			e.ErrorString("landable terrain %q is not used by map %q. Options: %s",
				ty, m.Name, strings.Join(m.TerrainTypes, ", "))
		}
	}

	if !ut.Aircraft {
		if ut.CruiseAltitude != 0 || ut.VerticalRate != 0 {
			e.ErrorString("flight fields given for a non-aircraft type")
		}
		return
	}

	if ut.Speed <= 0 {
		e.ErrorString("aircraft \"speed\" %d must be positive", ut.Speed)
	}
	if !ut.Dynamics.InstantTurn && ut.TurnRate <= 0 {
		e.ErrorString("aircraft \"turn_rate\" %d must be positive unless \"instant_turn\" is set", ut.TurnRate)
	}
	if ut.VerticalRate <= 0 {
		e.ErrorString("aircraft \"vertical_rate\" %d must be positive", ut.VerticalRate)
	}

	if ut.CruiseAltitude == 0 {
		ut.CruiseAltitude = DefaultCruiseAltitude
	}
	if ut.MinAirborneAltitude == 0 {
		ut.MinAirborneAltitude = 1
	}
	if ut.LandAltitude < 0 {
		e.ErrorString("\"land_altitude\" %d must not be negative", ut.LandAltitude)
	}
	if ut.MinAirborneAltitude < ut.LandAltitude {
		e.ErrorString("\"min_airborne_altitude\" %d must not be below \"land_altitude\" %d",
			ut.MinAirborneAltitude, ut.LandAltitude)
	}
	if ut.CruiseAltitude < ut.MinAirborneAltitude {
		e.ErrorString("\"cruise_altitude\" %d must not be below \"min_airborne_altitude\" %d",
			ut.CruiseAltitude, ut.MinAirborneAltitude)
	}

	if ut.IdealSeparation == 0 {
		ut.IdealSeparation = DefaultIdealSeparation
	}
	if ut.RepulsionSpeed == 0 {
		ut.RepulsionSpeed = ut.Speed
	}
	if ut.WaitDistance == 0 {
		ut.WaitDistance = DefaultWaitDistance
	}
	if ut.LandRange == 0 {
		ut.LandRange = DefaultLandRange
	}
	if ut.CirclingTicks == 0 {
		ut.CirclingTicks = DefaultCirclingTicks
	}

	if len(ut.LandableTerrain) == 0 && (ut.Dynamics.LandWhenIdle || ut.Dynamics.TurnToLand) {
		e.ErrorString("aircraft that land on terrain need \"landable_terrain\"")
	}
}

// NeedsResupply reports whether an aircraft with the given health and
// ammo would gain anything from docking at host.
func (ut *UnitType) NeedsResupply(health, ammo int32, host *UnitType) bool {
	if host.Repairs && health < ut.MaxHealth {
		return true
	}
	return host.Rearms && ut.MaxAmmo > 0 && ammo < ut.MaxAmmo
}

// CanCrush reports whether this unit may land on top of other.
func (ut *UnitType) CanCrush(other *UnitType) bool {
	for _, class := range other.CrushClasses {
		for _, crushes := range ut.Crushes {
			if class == crushes {
				return true
			}
		}
	}
	return false
}

// CanLandOnTerrain reports whether the named terrain type is in the
// unit's landable set.
func (ut *UnitType) CanLandOnTerrain(terrain string) bool {
	for _, ty := range ut.LandableTerrain {
		if ty == terrain {
			return true
		}
	}
	return false
}
