package combat

import "sort"

// ComputeTurnOrder returns the ids of living combatants ranked by descending
// effective speed. Ties break in favor of the player, then by roster order.
//
// Postcondition: every returned id belongs to a living combatant; the result
// is recomputed state, not a view.
func ComputeTurnOrder(combatants []*Combatant) []string {
	var living []*Combatant
	for _, c := range combatants {
		if c.Alive {
			living = append(living, c)
		}
	}

	sort.SliceStable(living, func(i, j int) bool {
		si, sj := living[i].EffectiveSpeed(), living[j].EffectiveSpeed()
		if si != sj {
			return si > sj
		}
		return living[i].IsPlayer && !living[j].IsPlayer
	})

	order := make([]string, len(living))
	for i, c := range living {
		order[i] = c.ID
	}
	return order
}
