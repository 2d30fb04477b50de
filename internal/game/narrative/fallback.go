package narrative

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/character"
)

// fallbackLines holds one fixed line per (role, success) pair.
var fallbackLines = map[character.Role]map[bool]string{
	character.RoleSpaceMarine: {
		true:  "FOR THE EMPEROR! PURGE THE XENOS!",
		false: "By the Throne! I shall not fail!",
	},
	character.RoleOrk: {
		true:  "WAAAGH! SMASH 'EM GOOD!",
		false: "OI! DAT AIN'T RIGHT!",
	},
	character.RoleChaosCultist: {
		true:  "BLOOD FOR THE BLOOD GOD! SKULLS FOR THE SKULL THRONE!",
		false: "The Dark Gods will grant me strength!",
	},
	character.RoleTyranid: {
		true:  "*SCREECHING ROAR* *BIOLOGICAL HORROR SOUNDS*",
		false: "*HISSING* *ALIEN GROWL*",
	},
	character.RoleNecron: {
		true:  "Target eliminated. Proceeding to next objective.",
		false: "Recalibrating targeting systems.",
	},
	character.RoleEldar: {
		true:  "By Asuryan's grace, the enemy falls!",
		false: "The strands of fate shift... I must adapt.",
	},
	character.RoleTau: {
		true:  "For the Greater Good! Eliminate the threat!",
		false: "Tactical reassessment required.",
	},
}

func init() {
	for _, role := range character.AllRoles() {
		for _, success := range []bool{true, false} {
			if fallbackLines[role][success] == "" {
				panic(fmt.Sprintf("narrative: fallback table missing (%s, %t)", role, success))
			}
			if personas[role] == "" {
				panic(fmt.Sprintf("narrative: persona missing for %s", role))
			}
		}
	}
}

// FallbackLine returns the fixed line for role after an attack that landed
// (success) or missed.
//
// Precondition: role is in the closed role set.
func FallbackLine(role character.Role, success bool) string {
	return fallbackLines[role][success]
}
