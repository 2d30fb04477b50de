package combat

import "github.com/cory-johannsen/skirmish/internal/game/character"

// Die is the subset of dice.Roller used by the resolver.
// Using a local interface avoids a circular import.
type Die interface {
	Roll(sides int) int
}

// Resolve rolls one attack of attacker against defender and applies the
// damage to defender in place. This is the only code path that lowers a
// character's health.
//
// Resolve does not check whether attacker is defeated; callers decide who
// may act.
//
// Precondition: attacker, defender and die must be non-nil.
// Postcondition: defender.Health == max(0, old health - result.Damage).
func Resolve(attacker, defender *character.Character, die Die) Outcome {
	roll := die.Roll(DieSides)
	success := IsSuccess(roll)
	damage := DamageFor(attacker.AttackPower, roll)
	after := defender.ApplyDamage(damage)

	return Outcome{
		AttackerName:        attacker.Name,
		AttackerRole:        attacker.Role,
		DefenderName:        defender.Name,
		DefenderRole:        defender.Role,
		Roll:                roll,
		Success:             success,
		Damage:              damage,
		DefenderHealthAfter: after,
		DefenderDefeated:    after == 0,
	}
}
