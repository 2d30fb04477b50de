package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/character"
)

func TestParseRole(t *testing.T) {
	r, err := character.ParseRole(" Chaos_Cultist ")
	require.NoError(t, err)
	assert.Equal(t, character.RoleChaosCultist, r)

	_, err = character.ParseRole("grot")
	assert.Error(t, err)
}

func TestRoles_ClosedSet(t *testing.T) {
	all := character.AllRoles()
	require.Len(t, all, 7)
	assert.Equal(t, character.RolePlayer, all[0])
	for _, r := range character.OpponentRoles() {
		assert.True(t, r.Valid())
		assert.False(t, r.IsPlayer())
	}
	assert.True(t, character.RolePlayer.IsPlayer())
	assert.False(t, character.Role("grot").Valid())
}

func TestOpponentRoles_ReturnsCopy(t *testing.T) {
	roles := character.OpponentRoles()
	roles[0] = "mutated"
	assert.Equal(t, character.RoleOrk, character.OpponentRoles()[0])
}

func TestCharacter_ApplyDamage(t *testing.T) {
	c := character.New("Ork Boy", character.RoleOrk, 30, 4)
	assert.Equal(t, 21, c.ApplyDamage(9))
	assert.False(t, c.IsDefeated())
	assert.Equal(t, 0, c.ApplyDamage(50))
	assert.True(t, c.IsDefeated())
}

func TestCharacter_Property_HealthNeverNegative(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHealth := rapid.IntRange(1, 200).Draw(rt, "max_health")
		dmg := rapid.IntRange(0, 500).Draw(rt, "damage")
		c := character.New("X", character.RoleTau, maxHealth, 1)
		got := c.ApplyDamage(dmg)
		assert.Equal(rt, max(0, maxHealth-dmg), got)
		assert.NoError(rt, c.Validate())
	})
}

func TestCharacter_Validate(t *testing.T) {
	c := &character.Character{Name: "", Role: "grot", Health: 5, MaxHealth: 3, AttackPower: 0}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name must not be empty")
	assert.Contains(t, err.Error(), "unknown role")
	assert.Contains(t, err.Error(), "attack_power")
	assert.Contains(t, err.Error(), "outside [0,3]")
}
