// Package character defines the combatant record shared by the player and
// every opponent archetype.
package character

import (
	"fmt"
	"strings"
)

// Role identifies a combatant's archetype. The set is closed: every role has a
// baseline stat entry and a narrative persona.
type Role string

const (
	RoleSpaceMarine  Role = "space_marine"
	RoleOrk          Role = "ork"
	RoleChaosCultist Role = "chaos_cultist"
	RoleTyranid      Role = "tyranid"
	RoleNecron       Role = "necron"
	RoleEldar        Role = "eldar"
	RoleTau          Role = "tau"
)

// RolePlayer is the role assigned to the player character.
const RolePlayer = RoleSpaceMarine

var opponentRoles = []Role{
	RoleOrk,
	RoleChaosCultist,
	RoleTyranid,
	RoleNecron,
	RoleEldar,
	RoleTau,
}

// OpponentRoles returns the opponent archetypes in their canonical order.
//
// Postcondition: Returns a fresh slice; callers may modify it.
func OpponentRoles() []Role {
	out := make([]Role, len(opponentRoles))
	copy(out, opponentRoles)
	return out
}

// AllRoles returns the player role followed by every opponent role.
func AllRoles() []Role {
	return append([]Role{RolePlayer}, opponentRoles...)
}

// IsPlayer reports whether r is the player role.
func (r Role) IsPlayer() bool { return r == RolePlayer }

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	for _, known := range AllRoles() {
		if r == known {
			return true
		}
	}
	return false
}

// String returns the role identifier.
func (r Role) String() string { return string(r) }

// ParseRole converts an identifier such as "chaos_cultist" into a Role.
//
// Postcondition: Returns a valid Role or a non-nil error.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Character is any combatant: the player or an opponent.
//
// Invariant: 0 <= Health <= MaxHealth; MaxHealth >= 1; AttackPower >= 1.
// MaxHealth and AttackPower never change after creation and Health never increases.
type Character struct {
	Name        string `json:"name"`
	Role        Role   `json:"role"`
	Health      int    `json:"health"`
	MaxHealth   int    `json:"max_health"`
	AttackPower int    `json:"attack_power"`
}

// New creates a Character at full health.
//
// Precondition: name non-empty; role valid; maxHealth >= 1; attackPower >= 1.
// Postcondition: Health == MaxHealth.
func New(name string, role Role, maxHealth, attackPower int) *Character {
	return &Character{
		Name:        name,
		Role:        role,
		Health:      maxHealth,
		MaxHealth:   maxHealth,
		AttackPower: attackPower,
	}
}

// IsDefeated reports whether the character has no health left.
func (c *Character) IsDefeated() bool { return c.Health <= 0 }

// ApplyDamage reduces Health by amount, flooring at zero, and returns the
// resulting health.
//
// Precondition: amount >= 0.
// Postcondition: Health == max(0, old Health - amount).
func (c *Character) ApplyDamage(amount int) int {
	c.Health -= amount
	if c.Health < 0 {
		c.Health = 0
	}
	return c.Health
}

// Validate checks the record invariants. It is used when a character is
// reconstructed from storage.
func (c *Character) Validate() error {
	var errs []string
	if strings.TrimSpace(c.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if !c.Role.Valid() {
		errs = append(errs, fmt.Sprintf("unknown role %q", c.Role))
	}
	if c.MaxHealth < 1 {
		errs = append(errs, fmt.Sprintf("max_health must be >= 1, got %d", c.MaxHealth))
	}
	if c.AttackPower < 1 {
		errs = append(errs, fmt.Sprintf("attack_power must be >= 1, got %d", c.AttackPower))
	}
	if c.Health < 0 || c.Health > c.MaxHealth {
		errs = append(errs, fmt.Sprintf("health %d outside [0,%d]", c.Health, c.MaxHealth))
	}
	if len(errs) > 0 {
		return fmt.Errorf("character %q: %s", c.Name, strings.Join(errs, "; "))
	}
	return nil
}
