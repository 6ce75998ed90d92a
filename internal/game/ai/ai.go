// Package ai implements target selection and per-behavior decision policies
// for non-player combatants.
//
// Policies are pure: the same state and sample sequence always produce the
// same action. The built-in set never chooses item, skill, or flee.
package ai

import (
	"github.com/rgault/duskfall/internal/game/combat"
	"github.com/rgault/duskfall/internal/game/rng"
)

// Strategy names a target-selection rule.
type Strategy string

const (
	StrategyLowestHP      Strategy = "lowest_hp"
	StrategyHighestThreat Strategy = "highest_threat"
	StrategyPlayerFirst   Strategy = "player_first"
	StrategyRandom        Strategy = "random"
)

// Behavior names a decision policy. Unknown or empty tags fall back to
// aggressive.
type Behavior string

const (
	BehaviorAggressive Behavior = "aggressive"
	BehaviorDefensive  Behavior = "defensive"
	BehaviorRanged     Behavior = "ranged"
	BehaviorSupport    Behavior = "support"
	BehaviorRandom     Behavior = "random"
)

// SelectTarget picks a living opponent of actor using the given strategy.
// Only the opposing faction's living members are ever candidates.
//
// StrategyRandom consumes one sample from src; the others consume none.
//
// Postcondition: Returns nil iff actor has no living opponents.
func SelectTarget(strategy Strategy, s *combat.State, actor *combat.Combatant, src rng.Source) *combat.Combatant {
	candidates := s.LivingOpponents(actor)
	if len(candidates) == 0 {
		return nil
	}

	switch strategy {
	case StrategyHighestThreat:
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.EffectiveAttack() > best.EffectiveAttack() {
				best = c
			}
		}
		return best
	case StrategyPlayerFirst:
		for _, c := range candidates {
			if c.IsPlayer {
				return c
			}
		}
		return candidates[0]
	case StrategyRandom:
		return candidates[src.Intn(len(candidates))]
	default: // StrategyLowestHP
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.HP < best.HP {
				best = c
			}
		}
		return best
	}
}

// Decide produces an action for actor according to its behavior tag.
//
// Sample consumption depends on the policy branch taken; given identical
// state and samples the decision is identical. Any policy that cannot find a
// valid target falls back to defending.
func Decide(s *combat.State, actor *combat.Combatant, src rng.Source) combat.Action {
	switch Behavior(actor.Behavior) {
	case BehaviorDefensive:
		return decideDefensive(s, actor, src)
	case BehaviorRandom:
		return decideRandom(s, actor, src)
	case BehaviorSupport:
		// Placeholder: routes to a plain attack with highest-threat
		// targeting until a real ally-assist policy is designed.
		return attackOrDefend(s, actor, StrategyHighestThreat, src)
	case BehaviorRanged:
		return attackOrDefend(s, actor, StrategyLowestHP, src)
	default: // BehaviorAggressive and unknown tags
		return attackOrDefend(s, actor, StrategyLowestHP, src)
	}
}

// decideDefensive defends unconditionally below 30% HP, defends with 50%
// probability below 50% HP (one sample), and otherwise attacks a random
// target.
func decideDefensive(s *combat.State, actor *combat.Combatant, src rng.Source) combat.Action {
	ratio := float64(actor.HP) / float64(actor.Stats.MaxHP)
	if ratio < 0.3 {
		return defend(actor)
	}
	if ratio < 0.5 && src.Float64() < 0.5 {
		return defend(actor)
	}
	return attackOrDefend(s, actor, StrategyRandom, src)
}

// decideRandom defends 20% of the time (one sample) and otherwise attacks a
// random target.
func decideRandom(s *combat.State, actor *combat.Combatant, src rng.Source) combat.Action {
	if src.Float64() < 0.2 {
		return defend(actor)
	}
	return attackOrDefend(s, actor, StrategyRandom, src)
}

// attackOrDefend attacks the target chosen by strategy, defending when no
// valid target exists.
func attackOrDefend(s *combat.State, actor *combat.Combatant, strategy Strategy, src rng.Source) combat.Action {
	target := SelectTarget(strategy, s, actor, src)
	if target == nil {
		return defend(actor)
	}
	return combat.Action{
		Type:     combat.ActionAttack,
		ActorID:  actor.ID,
		TargetID: target.ID,
	}
}

func defend(actor *combat.Combatant) combat.Action {
	return combat.Action{Type: combat.ActionDefend, ActorID: actor.ID}
}
