// game/player.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package game

import (
	"strings"

	"github.com/gatekeep/OpenRA/util"
)

type Stance int

const (
	StanceAlly Stance = iota
	StanceNeutral
	StanceEnemy
)

func (s Stance) String() string {
	return []string{"ally", "neutral", "enemy"}[s]
}

// Player owns units in a scenario. Two players are allies only when each
// lists the other; one-sided listings are diagnosed at load time.
type Player struct {
	Name    string   `json:"name"`
	Allies  []string `json:"allies"`
	Neutral bool     `json:"neutral"`

	stances map[string]Stance // not in JSON, set during deserialize
}

func (p *Player) PostDeserialize(players []*Player, e *util.ErrorLogger) {
	defer e.CheckDepth(e.CurrentDepth())
	e.Push("player " + p.Name)
	defer e.Pop()

	names := util.MapSlice(players, func(pl *Player) string { return pl.Name })

	isAlly := func(of *Player, name string) bool {
		for _, a := range of.Allies {
			if a == name {
				return true
			}
		}
		return false
	}

	p.stances = make(map[string]Stance)
	for _, other := range players {
		switch {
		case other.Name == p.Name:
			p.stances[other.Name] = StanceAlly
		case p.Neutral || other.Neutral:
			p.stances[other.Name] = StanceNeutral
		case isAlly(p, other.Name):
			if !isAlly(other, p.Name) {
				e.ErrorString("ally %q does not list %q as an ally in return", other.Name, p.Name)
			}
			p.stances[other.Name] = StanceAlly
		default:
			p.stances[other.Name] = StanceEnemy
		}
	}

	for _, a := range p.Allies {
		if _, ok := p.stances[a]; !ok {
			e.ErrorString("ally %q is not a player. Options: %s", a, strings.Join(names, ", "))
		}
	}
}

// StanceToward returns the stance toward the named player; unknown names
// are treated as enemies.
func (p *Player) StanceToward(other string) Stance {
	if s, ok := p.stances[other]; ok {
		return s
	}
	return StanceEnemy
}

func (p *Player) IsAlliedWith(other string) bool {
	return p.StanceToward(other) == StanceAlly
}
