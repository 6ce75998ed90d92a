package combat

import (
	"github.com/google/uuid"

	"github.com/rgault/duskfall/internal/game/rng"
)

// LootDrop is one rolled reward item.
type LootDrop struct {
	ItemID     string
	Quantity   int
	InstanceID string
}

// RewardSummary is the aggregate reward for a won encounter. It is handed to
// the surrounding progression systems; the combat core applies nothing
// itself.
type RewardSummary struct {
	XP   int
	Gold int
	Loot []LootDrop
}

// ComputeRewards aggregates the encounter's base xp/gold with every defeated
// enemy's individual rewards, then rolls each configured loot entry
// independently against its drop chance.
//
// Each loot entry consumes exactly one sample from src, in table order.
//
// Postcondition: Returns the zero summary unless s.Phase is victory.
func (e *Engine) ComputeRewards(s *State, src rng.Source) RewardSummary {
	if s.Phase != PhaseVictory {
		return RewardSummary{}
	}

	summary := RewardSummary{
		XP:   s.Rewards.XP,
		Gold: s.Rewards.Gold,
	}
	for _, c := range s.Combatants {
		if c.Kind == KindEnemy && !c.Alive {
			summary.XP += c.XPReward
			summary.Gold += c.GoldReward
		}
	}
	for _, item := range s.Rewards.Items {
		if src.Float64() < item.Chance {
			summary.Loot = append(summary.Loot, LootDrop{
				ItemID:     item.ItemID,
				Quantity:   item.Quantity,
				InstanceID: uuid.New().String(),
			})
		}
	}
	return summary
}
