// Package effect defines status effects and their stat modifiers.
//
// Effects are plain values carried on a combatant. The package never mutates
// stored stats: effective values are recomputed from base stats plus the
// active effect list at every evaluation.
package effect

// Type identifies a status effect kind.
type Type string

const (
	Poisoned  Type = "poisoned"
	Stunned   Type = "stunned"
	Burning   Type = "burning"
	Bleeding  Type = "bleeding"
	Buffed    Type = "buffed"
	Debuffed  Type = "debuffed"
	Defending Type = "defending"
)

// Effect is one applied status effect instance.
//
// Multiple instances of the same Type may coexist on a combatant; no
// deduplication is enforced.
type Effect struct {
	// Type is the effect kind.
	Type Type
	// TurnsRemaining is the number of round ticks left, >= 0. An effect
	// applied with TurnsRemaining 1 expires after its one application.
	TurnsRemaining int
	// Value is the effect magnitude: flat damage for poisoned/burning,
	// percent-of-max-HP for bleeding, percent stat change for buffed and
	// debuffed, percent damage reduction for defending.
	Value float64
	// SourceID identifies the combatant that applied the effect, if any.
	SourceID string
}

// DealsDamageOverTime reports whether t damages its holder at round start.
func (t Type) DealsDamageOverTime() bool {
	switch t {
	case Poisoned, Burning, Bleeding:
		return true
	default:
		return false
	}
}

// Has reports whether any effect in effects has the given type.
func Has(effects []Effect, t Type) bool {
	for _, e := range effects {
		if e.Type == t {
			return true
		}
	}
	return false
}

// TickDurations returns the effects surviving one round-start tick.
//
// Effects with TurnsRemaining > 1 are kept with the count decremented by
// exactly 1; all others are dropped. The input slice is not modified.
//
// Postcondition: every returned effect has TurnsRemaining >= 1.
func TickDurations(effects []Effect) []Effect {
	var kept []Effect
	for _, e := range effects {
		if e.TurnsRemaining > 1 {
			e.TurnsRemaining--
			kept = append(kept, e)
		}
	}
	return kept
}
