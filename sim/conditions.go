// sim/conditions.go
// Copyright(c) 2025-2026 OpenRA contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package sim

import "fmt"

// Condition names granted and revoked by the flight state machine as
// altitude thresholds are crossed.
const (
	ConditionAirborne = "airborne"
	ConditionCruising = "cruising"
)

// ConditionToken is the handle returned when a condition is granted; it
// must be presented to revoke that grant. Tokens are never reused, so a
// stale copy cannot revoke a later grant.
type ConditionToken struct {
	Actor ActorID
	Name  string
	Seq   int32
}

// GrantCondition activates the named condition on the actor and returns
// the token for the grant. Conditions stack: the condition is active
// while at least one token is outstanding.
func (w *World) GrantCondition(a *Actor, name string) ConditionToken {
	w.nextTokenSeq++
	t := ConditionToken{Actor: a.ID, Name: name, Seq: w.nextTokenSeq}
	a.conditions = append(a.conditions, t)
	return t
}

// RevokeCondition deactivates the grant behind the token. Revoking a
// token that is not outstanding is state-machine corruption and panics.
func (w *World) RevokeCondition(t ConditionToken) {
	a := w.Actor(t.Actor)
	if a != nil {
		for i, held := range a.conditions {
			if held == t {
				a.conditions = append(a.conditions[:i], a.conditions[i+1:]...)
				return
			}
		}
	}
	panic(fmt.Sprintf("revoked condition token %+v that is not outstanding", t))
}

// IsConditionActive reports whether the actor holds any grant of the
// named condition.
func (w *World) IsConditionActive(a *Actor, name string) bool {
	for _, t := range a.conditions {
		if t.Name == name {
			return true
		}
	}
	return false
}
