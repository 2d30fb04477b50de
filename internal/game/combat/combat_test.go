package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

func scripted(faces ...int) *dice.Roller {
	return dice.NewLoggedRoller(dice.NewScriptedSource(faces...), zap.NewNop())
}

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		roll int
		want bool
	}{
		{1, false}, {2, false}, {3, true}, {4, true}, {5, true}, {6, true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, combat.IsSuccess(tc.roll), "roll=%d", tc.roll)
	}
}

func TestResolve_Property_SuccessAndDamage(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		roll := rapid.IntRange(1, 6).Draw(rt, "roll")
		power := rapid.IntRange(1, 20).Draw(rt, "attack_power")
		health := rapid.IntRange(1, 100).Draw(rt, "health")

		attacker := character.New("A", character.RoleSpaceMarine, 30, power)
		defender := character.New("D", character.RoleOrk, health, 4)

		out := combat.Resolve(attacker, defender, scripted(roll))

		assert.Equal(rt, roll, out.Roll)
		assert.Equal(rt, roll >= 3, out.Success)
		if out.Success {
			assert.Equal(rt, power+roll, out.Damage)
		} else {
			assert.Equal(rt, 0, out.Damage)
		}
		assert.Equal(rt, max(0, health-out.Damage), out.DefenderHealthAfter)
		assert.Equal(rt, out.DefenderHealthAfter, defender.Health)
		assert.Equal(rt, out.DefenderHealthAfter == 0, out.DefenderDefeated)
		assert.Equal(rt, 30, attacker.Health, "attacker is never mutated")
	})
}

func TestResolve_Hit(t *testing.T) {
	attacker := character.New("Titus", character.RoleSpaceMarine, 30, 6)
	defender := character.New("Cultist", character.RoleChaosCultist, 20, 4)

	out := combat.Resolve(attacker, defender, scripted(5))

	assert.Equal(t, combat.Outcome{
		AttackerName:        "Titus",
		AttackerRole:        character.RoleSpaceMarine,
		DefenderName:        "Cultist",
		DefenderRole:        character.RoleChaosCultist,
		Roll:                5,
		Success:             true,
		Damage:              11,
		DefenderHealthAfter: 9,
		DefenderDefeated:    false,
	}, out)
}

func TestResolve_Miss(t *testing.T) {
	attacker := character.New("Cultist", character.RoleChaosCultist, 20, 4)
	defender := character.New("Titus", character.RoleSpaceMarine, 30, 6)

	out := combat.Resolve(attacker, defender, scripted(2))
	assert.False(t, out.Success)
	assert.Zero(t, out.Damage)
	assert.Equal(t, 30, defender.Health)
}

func TestResolve_DeadAttackerStillResolves(t *testing.T) {
	attacker := character.New("Ghost", character.RoleNecron, 25, 4)
	attacker.ApplyDamage(25)
	defender := character.New("Titus", character.RoleSpaceMarine, 30, 6)

	out := combat.Resolve(attacker, defender, scripted(6))
	assert.Equal(t, 10, out.Damage)
	assert.Equal(t, 20, defender.Health)
}

func TestResolve_OverkillFloorsAtZero(t *testing.T) {
	attacker := character.New("Tyranid Warrior", character.RoleTyranid, 35, 5)
	defender := character.New("Titus", character.RoleSpaceMarine, 30, 6)
	defender.ApplyDamage(29)

	out := combat.Resolve(attacker, defender, scripted(6))
	require.True(t, out.DefenderDefeated)
	assert.Equal(t, 0, out.DefenderHealthAfter)
	assert.Equal(t, 11, out.Damage)
}

func TestSituation(t *testing.T) {
	hit := combat.Outcome{AttackerName: "Titus", AttackerRole: character.RoleSpaceMarine,
		DefenderName: "Ork Boy", DefenderRole: character.RoleOrk, Roll: 4, Success: true}
	assert.Equal(t, "Titus (space_marine) attacks Ork Boy (ork) with a roll of 4. The attack hits and deals damage!",
		combat.Situation(hit))

	miss := hit
	miss.Success = false
	miss.Roll = 1
	assert.Contains(t, combat.Situation(miss), "The attack misses!")
}
