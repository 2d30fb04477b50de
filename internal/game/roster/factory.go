package roster

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/skirmish/internal/game/character"
)

// Die is the subset of dice.Roller used for random opponent selection.
type Die interface {
	Roll(sides int) int
}

// Factory produces characters from a baseline table. It holds no mutable state.
type Factory struct {
	baselines Baselines
	die       Die
}

// NewFactory creates a Factory over baselines.
//
// Precondition: die must be non-nil.
// Postcondition: Returns a Factory or an error if baselines does not cover every role.
func NewFactory(baselines Baselines, die Die) (*Factory, error) {
	if err := baselines.Validate(); err != nil {
		return nil, err
	}
	cp := make(Baselines, len(baselines))
	for k, v := range baselines {
		cp[k] = v
	}
	return &Factory{baselines: cp, die: die}, nil
}

// DefaultPlayerName is the name given to a player created with a blank name.
func (f *Factory) DefaultPlayerName() string {
	return f.baselines[character.RolePlayer].Name
}

// CreatePlayer builds the player character. Surrounding whitespace is trimmed
// and a blank name falls back to DefaultPlayerName.
//
// Postcondition: Returns a Player-role character at full health.
func (f *Factory) CreatePlayer(name string) *character.Character {
	b := f.baselines[character.RolePlayer]
	name = strings.TrimSpace(name)
	if name == "" {
		name = b.Name
	}
	return character.New(name, character.RolePlayer, b.MaxHealth, b.AttackPower)
}

// CreateOpponent builds an opponent of the given role.
//
// Precondition: role is an opponent role. A role with no baseline is a
// programming error and panics.
func (f *Factory) CreateOpponent(role character.Role) *character.Character {
	if role.IsPlayer() {
		panic("roster: CreateOpponent called with the player role")
	}
	b, ok := f.baselines[role]
	if !ok {
		panic(fmt.Sprintf("roster: no baseline for role %q", role))
	}
	return character.New(b.Name, role, b.MaxHealth, b.AttackPower)
}

// CreateRandomOpponent selects an opponent role uniformly at random.
//
// Postcondition: Returns an opponent at full health.
func (f *Factory) CreateRandomOpponent() *character.Character {
	roles := character.OpponentRoles()
	idx := f.die.Roll(len(roles)) - 1
	return f.CreateOpponent(roles[idx])
}

// CreateOpponents produces count independently randomized opponents in
// encounter order.
//
// Precondition: count >= 0.
// Postcondition: len(result) == count; count == 0 yields an empty, non-nil slice.
func (f *Factory) CreateOpponents(count int) []*character.Character {
	out := make([]*character.Character, 0, max(count, 0))
	for i := 0; i < count; i++ {
		out = append(out, f.CreateRandomOpponent())
	}
	return out
}
