package combat

import "fmt"

// IsActionValid reports whether a would be accepted by ProcessAction, with a
// human-readable reason on rejection. It is advisory for callers building
// action menus; the dispatch path re-checks defensively and never relies on
// callers having validated first.
//
// Postcondition: Returns (true, "") or (false, non-empty reason). Never
// mutates s.
func IsActionValid(s *State, a Action) (bool, string) {
	if s.Phase.Terminal() {
		return false, "the battle is already over"
	}
	actor := s.Combatant(a.ActorID)
	if actor == nil {
		return false, fmt.Sprintf("combatant %q not found", a.ActorID)
	}
	if !actor.Alive {
		return false, fmt.Sprintf("%s is down and cannot act", actor.Name)
	}
	if actor.HasActed {
		return false, fmt.Sprintf("%s has already acted this turn", actor.Name)
	}
	if actor.IsStunned() {
		return false, fmt.Sprintf("%s is stunned", actor.Name)
	}

	switch a.Type {
	case ActionAttack:
		if a.TargetID == "" {
			return false, "attack requires a target"
		}
		target := s.Combatant(a.TargetID)
		if target == nil || !target.Alive {
			return false, "that target is not available"
		}
	case ActionDefend:
		// Always valid for a live, un-acted actor.
	case ActionItem:
		if a.ItemID == "" {
			return false, "item use requires an item"
		}
	case ActionFlee:
		if !s.CanFlee {
			return false, "fleeing is not allowed in this encounter"
		}
	case ActionSkill:
		return false, "skills are not supported"
	default:
		return false, fmt.Sprintf("unsupported action type %q", a.Type)
	}
	return true, ""
}
