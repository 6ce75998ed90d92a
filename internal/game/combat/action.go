package combat

// ActionType identifies what a combatant intends to do on their turn.
// The zero value (ActionUnknown) is intentionally invalid.
type ActionType int

const (
	ActionUnknown ActionType = iota // zero value; intentionally invalid
	ActionAttack
	ActionDefend
	ActionItem
	ActionFlee
	ActionSkill
)

// String returns the human-readable name of the ActionType.
func (a ActionType) String() string {
	switch a {
	case ActionAttack:
		return "attack"
	case ActionDefend:
		return "defend"
	case ActionItem:
		return "item"
	case ActionFlee:
		return "flee"
	case ActionSkill:
		return "skill"
	default:
		return "unknown"
	}
}

// Action is one chosen action, constructed per decision and consumed
// immediately by the engine.
type Action struct {
	Type    ActionType
	ActorID string
	// TargetID is required for attack.
	TargetID string
	// ItemID is required for item use.
	ItemID string
	// SkillID is carried for the unimplemented skill path.
	SkillID string
}
