package combat

import (
	"github.com/rgault/duskfall/internal/game/encounter"
)

// Phase is the combat state machine's current mode.
type Phase int

const (
	PhaseInitializing Phase = iota
	PhasePlayerTurn
	PhaseEnemyTurn
	PhaseAllyTurn
	PhaseVictory
	PhaseDefeat
	PhaseFled
)

// String returns the snake_case phase label.
func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhasePlayerTurn:
		return "player_turn"
	case PhaseEnemyTurn:
		return "enemy_turn"
	case PhaseAllyTurn:
		return "ally_turn"
	case PhaseVictory:
		return "victory"
	case PhaseDefeat:
		return "defeat"
	case PhaseFled:
		return "fled"
	default:
		return "unknown"
	}
}

// Terminal reports whether p is a terminal phase. No transition leaves a
// terminal phase.
func (p Phase) Terminal() bool {
	return p == PhaseVictory || p == PhaseDefeat || p == PhaseFled
}

// phaseFor maps a faction to its turn phase.
func phaseFor(k Kind) Phase {
	switch k {
	case KindEnemy:
		return PhaseEnemyTurn
	case KindAlly:
		return PhaseAllyTurn
	default:
		return PhasePlayerTurn
	}
}

// State is the full mutable state of one encounter. Engine operations clone
// the state and return the clone, so callers may snapshot, fork, or discard
// states freely; a State is owned by exactly one caller at a time.
type State struct {
	// ID uniquely identifies this combat session.
	ID string
	// EncounterID references the encounter definition.
	EncounterID string
	// Phase is the state machine's current mode.
	Phase Phase
	// Combatants is the full roster, player first, in creation order.
	// Entries are never removed; dead combatants stay.
	Combatants []*Combatant
	// TurnOrder holds ids of living combatants in initiative order,
	// recomputed at every round start.
	TurnOrder []string
	// CurrentTurnIndex indexes TurnOrder at the active combatant.
	CurrentTurnIndex int
	// Round starts at 1 and increments when the turn pointer wraps.
	Round int
	// Log is the capped result log.
	Log *Log
	// CanFlee and IsBoss are copied from the encounter definition.
	CanFlee bool
	IsBoss  bool
	// Rewards is the encounter's base reward table, consumed on victory.
	Rewards encounter.Rewards
	// SelectedTargetID is a UI-facing transient; combat logic ignores it.
	SelectedTargetID string
}

// Combatant returns the roster entry with the given id, or nil.
func (s *State) Combatant(id string) *Combatant {
	for _, c := range s.Combatants {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Player returns the player combatant, or nil if absent.
func (s *State) Player() *Combatant {
	for _, c := range s.Combatants {
		if c.IsPlayer {
			return c
		}
	}
	return nil
}

// CurrentCombatant returns the combatant whose turn it is, or nil when the
// turn order is empty.
func (s *State) CurrentCombatant() *Combatant {
	if len(s.TurnOrder) == 0 || s.CurrentTurnIndex < 0 || s.CurrentTurnIndex >= len(s.TurnOrder) {
		return nil
	}
	return s.Combatant(s.TurnOrder[s.CurrentTurnIndex])
}

// LivingOpponents returns the living members of the faction opposing c, in
// roster order.
func (s *State) LivingOpponents(c *Combatant) []*Combatant {
	var out []*Combatant
	for _, other := range s.Combatants {
		if other.Alive && c.Opposes(other) {
			out = append(out, other)
		}
	}
	return out
}

// Clone returns a deep copy of the state. The clone shares nothing with the
// original; mutating one never affects the other.
func (s *State) Clone() *State {
	cp := *s
	cp.Combatants = make([]*Combatant, len(s.Combatants))
	for i, c := range s.Combatants {
		cp.Combatants[i] = c.clone()
	}
	cp.TurnOrder = make([]string, len(s.TurnOrder))
	copy(cp.TurnOrder, s.TurnOrder)
	cp.Log = s.Log.clone()
	return &cp
}
