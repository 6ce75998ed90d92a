// Package combat implements the turn-based encounter engine: combatant
// state, the action pipeline, turn order, the phase state machine, and
// reward computation. Engine operations clone state in and hand state out;
// callers own every State they hold.
package combat

import (
	"github.com/rgault/duskfall/internal/game/effect"
	"github.com/rgault/duskfall/internal/game/encounter"
)

// Kind is a combatant's faction.
type Kind int

const (
	KindPlayer Kind = iota
	KindEnemy
	KindAlly
)

// String returns the faction label.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	case KindAlly:
		return "ally"
	default:
		return "unknown"
	}
}

// Position is a hex grid coordinate carried for the presentation layer.
// Combat resolution ignores it.
type Position struct {
	Q int
	R int
}

// Combatant is one participant's full in-combat state. Base stats never
// change during combat; effective values are derived on demand from Stats
// plus Effects.
type Combatant struct {
	// ID is the per-combat instance id; the player is always "player".
	ID string
	// DefinitionID references the enemy template this instance came from.
	DefinitionID string
	Name         string
	Kind         Kind
	IsPlayer     bool
	// Stats is the immutable base stat block.
	Stats encounter.Stats
	// HP is current hit points, in [0, Stats.MaxHP].
	HP int
	// Effects is the active status effect list, ticked at round start.
	Effects  []effect.Effect
	Position Position
	WeaponID string
	AmmoID   string
	// Alive is false once HP reaches 0; dead combatants never act.
	Alive bool
	// HasActed is set once the combatant acts and cleared when its turn
	// comes around again.
	HasActed bool
	// Behavior is the AI policy tag; empty for the player.
	Behavior string
	// Fatigue raises with exertion and scales damage down.
	Fatigue float64
	// XPReward, GoldReward, and LootTableID are granted on this
	// combatant's defeat; zero for the player and allies.
	XPReward    int
	GoldReward  int
	LootTableID string
}

// EffectiveAttack returns the attack stat after active effect scaling.
func (c *Combatant) EffectiveAttack() float64 {
	return effect.EffectiveAttack(c.Stats.Attack, c.Effects)
}

// EffectiveDefense returns the defense stat after active effect scaling,
// including the defending-stance multiplier.
func (c *Combatant) EffectiveDefense() float64 {
	return effect.EffectiveDefense(c.Stats.Defense, c.Effects)
}

// EffectiveAccuracy returns the accuracy stat after active effect scaling.
func (c *Combatant) EffectiveAccuracy() float64 {
	return effect.EffectiveAccuracy(c.Stats.Accuracy, c.Effects)
}

// EffectiveSpeed returns the speed stat; stunned combatants have speed 0.
func (c *Combatant) EffectiveSpeed() float64 {
	return effect.EffectiveSpeed(c.Stats.Speed, c.Effects)
}

// IsDefending reports whether a defending stance is active.
func (c *Combatant) IsDefending() bool {
	return effect.Has(c.Effects, effect.Defending)
}

// IsStunned reports whether a stun is active.
func (c *Combatant) IsStunned() bool {
	return effect.Has(c.Effects, effect.Stunned)
}

// Opposes reports whether other is on the opposing side. The player and
// allies oppose enemies and nothing else.
func (c *Combatant) Opposes(other *Combatant) bool {
	return (c.Kind == KindEnemy) != (other.Kind == KindEnemy)
}

// ApplyDamage removes amount HP, flooring at 0 and clearing Alive when the
// floor is hit.
//
// Precondition: amount must be >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.HP -= amount
	if c.HP <= 0 {
		c.HP = 0
		c.Alive = false
	}
}

// ApplyHeal restores amount HP, capped at Stats.MaxHP. Healing never
// revives: dead combatants stay dead.
//
// Precondition: amount must be >= 0.
func (c *Combatant) ApplyHeal(amount int) {
	if !c.Alive {
		return
	}
	c.HP += amount
	if c.HP > c.Stats.MaxHP {
		c.HP = c.Stats.MaxHP
	}
}

// clone returns a deep copy of the combatant.
func (c *Combatant) clone() *Combatant {
	cp := *c
	cp.Effects = make([]effect.Effect, len(c.Effects))
	copy(cp.Effects, c.Effects)
	return &cp
}
