// Package combat resolves single attacks between two characters.
package combat

import (
	"fmt"

	"github.com/cory-johannsen/skirmish/internal/game/character"
)

const (
	// DieSides is the face count of the attack die.
	DieSides = 6
	// SuccessThreshold is the minimum roll that lands an attack.
	SuccessThreshold = 3
)

// Outcome is the immutable result of one attack.
//
// Invariant: Damage > 0 implies Success; DefenderDefeated iff DefenderHealthAfter == 0.
type Outcome struct {
	AttackerName        string         `json:"attacker_name"`
	AttackerRole        character.Role `json:"attacker_role"`
	DefenderName        string         `json:"defender_name"`
	DefenderRole        character.Role `json:"defender_role"`
	Roll                int            `json:"roll"`
	Success             bool           `json:"success"`
	Damage              int            `json:"damage"`
	DefenderHealthAfter int            `json:"defender_health_after"`
	DefenderDefeated    bool           `json:"defender_defeated"`
}

// IsSuccess reports whether roll lands an attack.
//
// Postcondition: Returns true iff roll >= SuccessThreshold.
func IsSuccess(roll int) bool {
	return roll >= SuccessThreshold
}

// DamageFor returns the damage an attack deals.
//
// Postcondition: Returns attackPower + roll on success, 0 otherwise.
func DamageFor(attackPower, roll int) int {
	if !IsSuccess(roll) {
		return 0
	}
	return attackPower + roll
}

// Situation describes an attack in plain language for the narrative generator.
func Situation(o Outcome) string {
	verdict := "The attack misses!"
	if o.Success {
		verdict = "The attack hits and deals damage!"
	}
	return fmt.Sprintf("%s (%s) attacks %s (%s) with a roll of %d. %s",
		o.AttackerName, o.AttackerRole, o.DefenderName, o.DefenderRole, o.Roll, verdict)
}
