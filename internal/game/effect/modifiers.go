package effect

import "math"

// scaleByBuffs applies every buffed/debuffed instance to base in order.
// Buffs multiply by 1+Value/100, debuffs by 1-Value/100.
func scaleByBuffs(base float64, effects []Effect) float64 {
	v := base
	for _, e := range effects {
		switch e.Type {
		case Buffed:
			v *= 1 + e.Value/100
		case Debuffed:
			v *= 1 - e.Value/100
		}
	}
	return v
}

// EffectiveAttack returns the attack stat after buff/debuff scaling.
//
// Postcondition: returns >= 0.
func EffectiveAttack(base float64, effects []Effect) float64 {
	return clampFloor(scaleByBuffs(base, effects))
}

// EffectiveDefense returns the defense stat after buff/debuff scaling and the
// defending-stance x1.5 multiplier.
//
// Postcondition: returns >= 0.
func EffectiveDefense(base float64, effects []Effect) float64 {
	v := scaleByBuffs(base, effects)
	if Has(effects, Defending) {
		v *= 1.5
	}
	return clampFloor(v)
}

// EffectiveAccuracy returns the accuracy stat after buff/debuff scaling.
//
// Postcondition: returns >= 0.
func EffectiveAccuracy(base float64, effects []Effect) float64 {
	return clampFloor(scaleByBuffs(base, effects))
}

// EffectiveSpeed returns the speed stat with stunned forcing it to 0.
// Buffs and debuffs do not touch speed.
//
// Postcondition: returns >= 0.
func EffectiveSpeed(base float64, effects []Effect) float64 {
	if Has(effects, Stunned) {
		return 0
	}
	return clampFloor(base)
}

// clampFloor floors v and clamps the result to a minimum of 0.
func clampFloor(v float64) float64 {
	v = math.Floor(v)
	if v < 0 {
		return 0
	}
	return v
}
