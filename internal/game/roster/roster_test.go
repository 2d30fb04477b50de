package roster_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/character"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/roster"
)

func newFactory(t *testing.T, faces ...int) *roster.Factory {
	t.Helper()
	roller := dice.NewLoggedRoller(dice.NewScriptedSource(faces...), zap.NewNop())
	f, err := roster.NewFactory(roster.DefaultBaselines(), roller)
	require.NoError(t, err)
	return f
}

func TestDefaultBaselines_CoverEveryRole(t *testing.T) {
	require.NoError(t, roster.DefaultBaselines().Validate())
}

func TestBaselines_Validate_MissingRole(t *testing.T) {
	table := roster.DefaultBaselines()
	delete(table, character.RoleNecron)
	err := table.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing baseline for role "necron"`)

	_, err = roster.NewFactory(table, dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop()))
	assert.Error(t, err)
}

func TestCreatePlayer_BaselineAndDefaultName(t *testing.T) {
	f := newFactory(t)

	p := f.CreatePlayer("  Titus ")
	assert.Equal(t, "Titus", p.Name)
	assert.Equal(t, character.RolePlayer, p.Role)
	assert.Equal(t, 30, p.MaxHealth)
	assert.Equal(t, 30, p.Health)
	assert.Equal(t, 6, p.AttackPower)

	anon := f.CreatePlayer("   ")
	assert.Equal(t, "Space Marine", anon.Name)
	assert.Equal(t, "Space Marine", f.DefaultPlayerName())
}

func TestCreateOpponent_UsesRoleBaseline(t *testing.T) {
	f := newFactory(t)
	o := f.CreateOpponent(character.RoleChaosCultist)
	assert.Equal(t, "Chaos Cultist", o.Name)
	assert.Equal(t, 20, o.MaxHealth)
	assert.Equal(t, 20, o.Health)
	assert.Equal(t, 3, o.AttackPower)
}

func TestCreateOpponent_PanicsOnPlayerRole(t *testing.T) {
	f := newFactory(t)
	assert.Panics(t, func() { f.CreateOpponent(character.RolePlayer) })
	assert.Panics(t, func() { f.CreateOpponent("grot") })
}

func TestCreateRandomOpponent_MapsRollToRole(t *testing.T) {
	f := newFactory(t, 1, 6, 3)
	assert.Equal(t, character.RoleOrk, f.CreateRandomOpponent().Role)
	assert.Equal(t, character.RoleTau, f.CreateRandomOpponent().Role)
	assert.Equal(t, character.RoleTyranid, f.CreateRandomOpponent().Role)
}

func TestCreateOpponents_Zero(t *testing.T) {
	f := newFactory(t)
	got := f.CreateOpponents(0)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestCreateOpponents_Property_CountAndValidity(t *testing.T) {
	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	f, err := roster.NewFactory(roster.DefaultBaselines(), roller)
	require.NoError(t, err)
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 25).Draw(rt, "count")
		opponents := f.CreateOpponents(n)
		assert.Len(rt, opponents, n)
		for _, o := range opponents {
			assert.False(rt, o.Role.IsPlayer())
			assert.NoError(rt, o.Validate())
			assert.Equal(rt, o.MaxHealth, o.Health)
		}
	})
}

func TestLoadBaselinesFromBytes_OverridesOneRole(t *testing.T) {
	data := []byte(`
baselines:
  - role: ork
    name: Ork Nob
    max_health: 40
    attack_power: 7
`)
	table, err := roster.LoadBaselinesFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "Ork Nob", table[character.RoleOrk].Name)
	assert.Equal(t, 40, table[character.RoleOrk].MaxHealth)
	assert.Equal(t, roster.DefaultBaselines()[character.RoleTau], table[character.RoleTau])
}

func TestLoadBaselinesFromBytes_RejectsInvalidEntry(t *testing.T) {
	_, err := roster.LoadBaselinesFromBytes([]byte(`
baselines:
  - role: tau
    name: Tau
    max_health: 0
    attack_power: 4
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_health must be >= 1")

	_, err = roster.LoadBaselinesFromBytes([]byte(`
baselines:
  - role: grot
    name: Grot
    max_health: 5
    attack_power: 1
`))
	assert.Error(t, err)
}

func TestLoadBaselines_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(path, []byte("baselines: []\n"), 0o600))

	table, err := roster.LoadBaselines(path)
	require.NoError(t, err)
	assert.Equal(t, roster.DefaultBaselines(), table)

	table, err = roster.LoadBaselines("")
	require.NoError(t, err)
	assert.Equal(t, roster.DefaultBaselines(), table)

	_, err = roster.LoadBaselines(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestBaselines_WithPlayerName(t *testing.T) {
	base := roster.DefaultBaselines()
	renamed := base.WithPlayerName("  Brother Titus ")
	assert.Equal(t, "Brother Titus", renamed[character.RolePlayer].Name)
	assert.Equal(t, "Space Marine", base[character.RolePlayer].Name, "original table is untouched")
	assert.Equal(t, base, base.WithPlayerName(""))
	assert.NoError(t, renamed.Validate())
}

func TestLoadBaselines_BundledContent(t *testing.T) {
	table, err := roster.LoadBaselines(filepath.Join("..", "..", "..", "content", "roster.yaml"))
	require.NoError(t, err)
	assert.NoError(t, table.Validate())
	assert.Equal(t, 30, table[character.RolePlayer].MaxHealth)
	assert.Equal(t, 6, table[character.RolePlayer].AttackPower)
}
