package narrative

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/character"
)

var personas = map[character.Role]string{
	character.RoleSpaceMarine:  "a Space Marine of the Imperium who roars battle cries in High Gothic and English",
	character.RoleOrk:          "an Ork who bellows crude, aggressive war cries in Orkish",
	character.RoleChaosCultist: "a Chaos Cultist who screams curses and calls upon the dark powers",
	character.RoleTyranid:      "a Tyranid creature that answers only with biological shrieks and roars",
	character.RoleNecron:       "a Necron warrior who speaks in a cold, emotionless machine voice",
	character.RoleEldar:        "an Eldar Guardian who speaks with refined, elegant disdain",
	character.RoleTau:          "a Tau Fire Warrior who speaks in formal, disciplined military cadence",
}

// Persona describes how a role speaks.
func Persona(role character.Role) string {
	return personas[role]
}

// Prompt renders the generator instruction for req.
func Prompt(req Request) string {
	result := "misses"
	if req.Success {
		result = "lands a hit"
	}
	return fmt.Sprintf(`You are %s.

Situation: %s
Die roll: %d
Attack result: %s

Write one short battle cry (one or two sentences at most) that this character shouts right now.
It must fit the character and the situation. Reply with the battle cry only.`,
		Persona(req.Role), req.Situation, req.Roll, result)
}
