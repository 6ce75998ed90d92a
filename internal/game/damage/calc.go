// Package damage implements the pure numeric formulas of the combat core.
//
// Every function is a value-in value-out computation with no hidden state;
// chance-dependent steps take the sampled value in [0, 1) as an explicit
// argument so outcomes are reproducible.
package damage

import (
	"math"

	"github.com/rgault/duskfall/internal/game/effect"
)

// Tuning defaults. Callers may override the factor/multiplier arguments;
// zero values fall back to these.
const (
	// DefaultVarianceFactor is the +/-10% damage spread.
	DefaultVarianceFactor = 0.1
	// DefaultCritMultiplier scales damage on a critical hit.
	DefaultCritMultiplier = 1.5
	// MaxFatiguePenalty is the damage reduction at full fatigue.
	MaxFatiguePenalty = 0.3
	// FatigueScale is the fatigue input range upper bound.
	FatigueScale = 100
)

// Hit and flee chance clamps.
const (
	MinHitChance  = 5
	MaxHitChance  = 95
	MinFleeChance = 10
	MaxFleeChance = 90
	// FleeBaseChance is the flee success chance at equal speeds.
	FleeBaseChance = 40
)

// Base computes raw attack damage before any multiplier.
//
// Postcondition: returns max(1, floor(attack - defense*0.5)).
func Base(attack, defense float64) int {
	return atLeastOne(math.Floor(attack - defense*0.5))
}

// ApplyVariance spreads dmg by +/-factor around neutral. A sample of 0.5 is
// the neutral point; factor 0 falls back to DefaultVarianceFactor.
//
// Precondition: sample in [0, 1).
// Postcondition: returns >= 1.
func ApplyVariance(dmg int, sample, factor float64) int {
	if factor == 0 {
		factor = DefaultVarianceFactor
	}
	return atLeastOne(math.Floor(float64(dmg) * (1 + (2*sample-1)*factor)))
}

// ApplyCrit scales dmg by the critical multiplier; multiplier 0 falls back to
// DefaultCritMultiplier.
//
// Postcondition: returns >= 1 for dmg >= 1.
func ApplyCrit(dmg int, multiplier float64) int {
	if multiplier == 0 {
		multiplier = DefaultCritMultiplier
	}
	return atLeastOne(math.Floor(float64(dmg) * multiplier))
}

// ApplyFatigue reduces dmg by up to MaxFatiguePenalty at full fatigue.
// Fatigue is clamped into [0, FatigueScale] before normalizing.
//
// Postcondition: returns >= 1.
func ApplyFatigue(dmg int, fatigue float64) int {
	if fatigue < 0 {
		fatigue = 0
	}
	if fatigue > FatigueScale {
		fatigue = FatigueScale
	}
	penalty := fatigue / FatigueScale * MaxFatiguePenalty
	return atLeastOne(math.Floor(float64(dmg) * (1 - penalty)))
}

// ApplyTypeEffectiveness scales dmg by the attack-vs-target type multiplier.
//
// Precondition: multiplier > 0.
// Postcondition: returns >= 1.
func ApplyTypeEffectiveness(dmg int, multiplier float64) int {
	return atLeastOne(math.Floor(float64(dmg) * multiplier))
}

// ApplyDefendReduction halves dmg for a defending target.
//
// Postcondition: returns >= 1.
func ApplyDefendReduction(dmg int) int {
	return atLeastOne(math.Floor(float64(dmg) * 0.5))
}

// Input bundles the parameters of a full damage resolution.
type Input struct {
	// Attack is the attacker's effective attack.
	Attack float64
	// Defense is the target's effective defense.
	Defense float64
	// VarianceSample is the [0, 1) sample driving variance; 0.5 is neutral.
	VarianceSample float64
	// VarianceFactor overrides DefaultVarianceFactor when non-zero.
	VarianceFactor float64
	// Crit marks whether the critical roll succeeded.
	Crit bool
	// CritMultiplier overrides DefaultCritMultiplier when non-zero.
	CritMultiplier float64
	// Fatigue is the attacker's fatigue in [0, FatigueScale].
	Fatigue float64
	// TypeMultiplier is the type-effectiveness factor; 0 means neutral (1.0).
	TypeMultiplier float64
	// TargetDefending marks whether the target holds a defending effect.
	TargetDefending bool
}

// Resolve runs the full damage pipeline in its fixed order:
// base, variance, crit, fatigue, type effectiveness, defend reduction.
// The order changes numeric outcomes and must not be rearranged.
//
// Postcondition: returns >= 1.
func Resolve(in Input) int {
	dmg := Base(in.Attack, in.Defense)
	dmg = ApplyVariance(dmg, in.VarianceSample, in.VarianceFactor)
	if in.Crit {
		dmg = ApplyCrit(dmg, in.CritMultiplier)
	}
	if in.Fatigue > 0 {
		dmg = ApplyFatigue(dmg, in.Fatigue)
	}
	if in.TypeMultiplier > 0 && in.TypeMultiplier != 1 {
		dmg = ApplyTypeEffectiveness(dmg, in.TypeMultiplier)
	}
	if in.TargetDefending {
		dmg = ApplyDefendReduction(dmg)
	}
	return dmg
}

// HitChance computes the percent chance for an attack to land.
//
// Postcondition: returns a value in [MinHitChance, MaxHitChance].
func HitChance(accuracy, evasion, modifiers float64) float64 {
	return clamp(accuracy-evasion+modifiers, MinHitChance, MaxHitChance)
}

// RollHit reports whether the sampled value lands a hit against chance.
//
// Precondition: sample in [0, 1).
func RollHit(chance, sample float64) bool {
	return sample*100 < chance
}

// RollCrit reports whether the sampled value triggers a critical hit.
// Unlike HitChance the crit chance is not clamped.
//
// Precondition: sample in [0, 1).
func RollCrit(critChance, sample float64) bool {
	return sample*100 < critChance
}

// FleeChance computes the percent chance to escape combat.
//
// Postcondition: returns a value in [MinFleeChance, MaxFleeChance].
func FleeChance(actorSpeed, avgEnemySpeed float64) float64 {
	return clamp(FleeBaseChance+(actorSpeed-avgEnemySpeed)*2, MinFleeChance, MaxFleeChance)
}

// OverTime computes one round-start tick of damage for a status effect.
// Poison deals the flat value, burning value*1.5, bleeding a percentage of
// max HP with a minimum of 1. Types without a damage component deal 0.
func OverTime(t effect.Type, value, maxHP float64) int {
	switch t {
	case effect.Poisoned:
		return int(math.Floor(value))
	case effect.Burning:
		return int(math.Floor(value * 1.5))
	case effect.Bleeding:
		return atLeastOne(math.Floor(maxHP * value / 100))
	default:
		return 0
	}
}

// Heal computes the applied heal amount, capped at missing HP.
//
// Postcondition: returns a value in [0, maxHP-currentHP].
func Heal(currentHP, maxHP, amount int) int {
	missing := maxHP - currentHP
	if missing < 0 {
		missing = 0
	}
	if amount < 0 {
		return 0
	}
	if amount > missing {
		return missing
	}
	return amount
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
