// game/scenario.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package game

import (
	"embed"
	"os"
	"strconv"
	"strings"

	"github.com/gatekeep/OpenRA/math"
	"github.com/gatekeep/OpenRA/util"
)

//go:embed scenarios
var scenariosFS embed.FS

// DefaultTickRate is the simulation rate in ticks per second when a
// scenario does not give one.
const DefaultTickRate = 25

// UnitPlacement puts one unit on the map at scenario start. Altitude,
// health and ammo are optional; aircraft spawn resting on the terrain at
// their land altitude unless an altitude is given.
type UnitPlacement struct {
	Type     string       `json:"type"`
	Owner    string       `json:"owner"`
	Cell     math.Cell    `json:"cell"`
	Facing   math.Heading `json:"facing"`
	Altitude *int64       `json:"altitude"`
	Health   *int32       `json:"health"`
	Ammo     *int32       `json:"ammo"`
	Label    string       `json:"label"`
}

// SpawnSpec asks the simulation to place a group of randomly-chosen
// units, with types drawn according to the given weights.
type SpawnSpec struct {
	Count    int            `json:"count"`
	Types    map[string]int `json:"types"`
	Owner    string         `json:"owner"`
	Area     *[4]int32      `json:"area"` // x0, y0, x1, y1 cells, inclusive
	Airborne bool           `json:"airborne"`
}

// Scenario is a fully-validated simulation setup: map, players, unit
// types and initial units.
type Scenario struct {
	Name      string               `json:"name"`
	TickRate  int32                `json:"tick_rate"`
	Seed      int64                `json:"seed"`
	MapSpec   MapSpec              `json:"map"`
	Players   []*Player            `json:"players"`
	UnitTypes map[string]*UnitType `json:"unit_types"`
	Units     []UnitPlacement      `json:"units"`
	Spawns    []SpawnSpec          `json:"spawns"`

	Map *Map   `json:"-"` // not in JSON, set during deserialize
	Raw []byte `json:"-"` // original JSON, kept so saves are self-contained
}

func (s *Scenario) PostDeserialize(e *util.ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())
	e.Push("scenario " + s.Name)
	defer e.Pop()

	if s.TickRate == 0 {
		s.TickRate = DefaultTickRate
	}
	if s.TickRate < 1 || s.TickRate > 100 {
		e.ErrorString("\"tick_rate\" %d is outside of 1-100", s.TickRate)
	}

	s.Map = s.MapSpec.PostDeserialize(e)
	if s.Map == nil {
		return
	}

	if len(s.Players) == 0 {
		e.ErrorString("no \"players\" given")
		return
	}
	seen := make(map[string]bool)
	for _, p := range s.Players {
		if p.Name == "" {
			e.ErrorString("player is missing \"name\"")
		}
		if seen[p.Name] {
			e.ErrorString("player %q is defined multiple times", p.Name)
		}
		seen[p.Name] = true
	}
	for _, p := range s.Players {
		p.PostDeserialize(s.Players, e)
	}

	for _, name := range util.SortedMapKeys(s.UnitTypes) {
		s.UnitTypes[name].PostDeserialize(name, s.Map, e)
	}

	playerNames := util.MapSlice(s.Players, func(p *Player) string { return p.Name })
	typeNames := util.SortedMapKeys(s.UnitTypes)

	checkOwner := func(owner string) {
		if !seen[owner] {
			e.ErrorString("owner %q is not a player. Options: %s", owner,
				strings.Join(playerNames, ", "))
		}
	}

	for i, up := range s.Units {
		e.Push("units[" + strconv.Itoa(i) + "] " + up.Type)
		ut, ok := s.UnitTypes[up.Type]
		if !ok {
			e.ErrorString("unit type %q is not defined. Options: %s", up.Type,
				strings.Join(typeNames, ", "))
			e.Pop()
			continue
		}
		checkOwner(up.Owner)
		if !s.Map.Contains(up.Cell) {
			e.ErrorString("cell %v is outside of the %dx%d map", up.Cell, s.Map.Width, s.Map.Height)
		}
		if up.Altitude != nil && !ut.Aircraft {
			e.ErrorString("\"altitude\" given for a non-aircraft type")
		}
		if up.Health != nil && (*up.Health < 1 || *up.Health > ut.MaxHealth) {
			e.ErrorString("\"health\" %d is outside of 1-%d", *up.Health, ut.MaxHealth)
		}
		if up.Ammo != nil && (*up.Ammo < 0 || *up.Ammo > ut.MaxAmmo) {
			e.ErrorString("\"ammo\" %d is outside of 0-%d", *up.Ammo, ut.MaxAmmo)
		}
		e.Pop()
	}

	for i, sp := range s.Spawns {
		e.Push("spawns[" + strconv.Itoa(i) + "]")
		if sp.Count <= 0 {
			e.ErrorString("\"count\" %d must be positive", sp.Count)
		}
		checkOwner(sp.Owner)
		total := 0
		for _, ty := range util.SortedMapKeys(sp.Types) {
			w := sp.Types[ty]
			if _, ok := s.UnitTypes[ty]; !ok {
				e.ErrorString("unit type %q is not defined. Options: %s", ty,
					strings.Join(typeNames, ", "))
			} else if !s.UnitTypes[ty].Aircraft {
				e.ErrorString("spawned unit type %q must be an aircraft", ty)
			}
			if w < 0 {
				e.ErrorString("weight %d for %q must not be negative", w, ty)
			}
			total += w
		}
		if total == 0 {
			e.ErrorString("spawn weights must not all be zero")
		}
		if sp.Area != nil {
			a := *sp.Area
			if a[0] > a[2] || a[1] > a[3] ||
				!s.Map.Contains(math.Cell{X: a[0], Y: a[1]}) ||
				!s.Map.Contains(math.Cell{X: a[2], Y: a[3]}) {
				e.ErrorString("\"area\" %v is not a rectangle inside the %dx%d map",
					a, s.Map.Width, s.Map.Height)
			}
		}
		e.Pop()
	}
}

// LoadScenarioBytes parses, typechecks and validates a scenario given as
// raw JSON; name is used for error reporting only. Returns nil if any
// errors were reported.
func LoadScenarioBytes(name string, contents []byte, e *util.ErrorLogger) *Scenario {
	defer e.CheckDepth(e.CurrentDepth())
	e.Push("File " + name)
	defer e.Pop()

	for _, dup := range util.FindDuplicateJSONKeys(contents) {
		e.ErrorString("duplicate JSON key %q at %s", dup.Key, dup.Path)
	}

	util.CheckJSON[Scenario](contents, e)
	if e.HaveErrors() {
		return nil
	}

	var s Scenario
	if err := util.UnmarshalJSONBytes(contents, &s); err != nil {
		e.Error(err)
		return nil
	}
	if s.Name == "" {
		e.ErrorString("scenario is missing \"name\"")
		return nil
	}

	s.PostDeserialize(e)
	if e.HaveErrors() {
		return nil
	}
	s.Raw = contents
	return &s
}

// LoadScenario loads a scenario from a JSON file on disk.
func LoadScenario(path string, e *util.ErrorLogger) *Scenario {
	contents, err := os.ReadFile(path)
	if err != nil {
		e.Error(err)
		return nil
	}
	return LoadScenarioBytes(path, contents, e)
}

// DefaultScenario returns the built-in demonstration scenario.
func DefaultScenario(e *util.ErrorLogger) *Scenario {
	contents, err := scenariosFS.ReadFile("scenarios/airlift.json")
	if err != nil {
		e.Error(err)
		return nil
	}
	return LoadScenarioBytes("scenarios/airlift.json", contents, e)
}
