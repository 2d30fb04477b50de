// Package roster builds the player and opponent characters for a new game.
package roster

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/character"
)

// Baseline is the fixed starting stat block for one role.
type Baseline struct {
	Role        character.Role `yaml:"role"`
	Name        string         `yaml:"name"`
	MaxHealth   int            `yaml:"max_health"`
	AttackPower int            `yaml:"attack_power"`
}

// Validate checks that the baseline can produce a valid Character.
//
// Postcondition: Returns nil iff Role is valid, Name is non-empty,
// MaxHealth >= 1 and AttackPower >= 1.
func (b Baseline) Validate() error {
	if !b.Role.Valid() {
		return fmt.Errorf("baseline: unknown role %q", b.Role)
	}
	if strings.TrimSpace(b.Name) == "" {
		return fmt.Errorf("baseline %q: name must not be empty", b.Role)
	}
	if b.MaxHealth < 1 {
		return fmt.Errorf("baseline %q: max_health must be >= 1", b.Role)
	}
	if b.AttackPower < 1 {
		return fmt.Errorf("baseline %q: attack_power must be >= 1", b.Role)
	}
	return nil
}

// Baselines is the stat lookup table keyed by role.
type Baselines map[character.Role]Baseline

// DefaultBaselines returns the built-in table covering every role.
//
// Postcondition: Returns a fresh map that passes Validate.
func DefaultBaselines() Baselines {
	return Baselines{
		character.RoleSpaceMarine:  {Role: character.RoleSpaceMarine, Name: "Space Marine", MaxHealth: 30, AttackPower: 6},
		character.RoleOrk:          {Role: character.RoleOrk, Name: "Ork Boy", MaxHealth: 30, AttackPower: 4},
		character.RoleChaosCultist: {Role: character.RoleChaosCultist, Name: "Chaos Cultist", MaxHealth: 20, AttackPower: 3},
		character.RoleTyranid:      {Role: character.RoleTyranid, Name: "Tyranid Warrior", MaxHealth: 35, AttackPower: 5},
		character.RoleNecron:       {Role: character.RoleNecron, Name: "Necron Warrior", MaxHealth: 25, AttackPower: 4},
		character.RoleEldar:        {Role: character.RoleEldar, Name: "Eldar Guardian", MaxHealth: 22, AttackPower: 5},
		character.RoleTau:          {Role: character.RoleTau, Name: "Tau Fire Warrior", MaxHealth: 24, AttackPower: 4},
	}
}

// Validate checks that every role in the closed set has a valid entry keyed
// under its own role.
func (b Baselines) Validate() error {
	var errs []string
	for _, role := range character.AllRoles() {
		entry, ok := b[role]
		if !ok {
			errs = append(errs, fmt.Sprintf("missing baseline for role %q", role))
			continue
		}
		if entry.Role != role {
			errs = append(errs, fmt.Sprintf("baseline keyed %q declares role %q", role, entry.Role))
			continue
		}
		if err := entry.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("roster baselines invalid: %s", strings.Join(errs, "; "))
	}
	return nil
}

type baselineFile struct {
	Baselines []Baseline `yaml:"baselines"`
}

// LoadBaselinesFromBytes parses a YAML override document and applies it over
// DefaultBaselines. Roles not mentioned keep their default entry.
//
// Postcondition: Returns a validated table, or an error.
func LoadBaselinesFromBytes(data []byte) (Baselines, error) {
	var doc baselineFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing roster YAML: %w", err)
	}
	table := DefaultBaselines()
	for _, entry := range doc.Baselines {
		if err := entry.Validate(); err != nil {
			return nil, err
		}
		table[entry.Role] = entry
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

// LoadBaselines reads a YAML override file. An empty path yields the defaults.
//
// Postcondition: Returns a validated table, or an error.
func LoadBaselines(path string) (Baselines, error) {
	if path == "" {
		return DefaultBaselines(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading roster file %q: %w", path, err)
	}
	table, err := LoadBaselinesFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return table, nil
}

// WithPlayerName returns a copy of b whose player baseline carries name.
// A blank name returns an unchanged copy.
func (b Baselines) WithPlayerName(name string) Baselines {
	out := make(Baselines, len(b))
	for k, v := range b {
		out[k] = v
	}
	if name = strings.TrimSpace(name); name != "" {
		p := out[character.RolePlayer]
		p.Name = name
		out[character.RolePlayer] = p
	}
	return out
}
