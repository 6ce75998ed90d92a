package encounter

import "fmt"

// Ally describes one ally combatant supplied at combat start.
type Ally struct {
	ID       string
	Name     string
	Stats    Stats
	WeaponID string
	// Behavior is the AI policy tag; empty defaults to aggressive.
	Behavior string
}

// InitContext is the player-side snapshot handed to combat initialization.
// It is supplied by the surrounding game systems; the combat core never
// reads player state from anywhere else.
type InitContext struct {
	PlayerName  string
	PlayerStats Stats
	// CurrentHP is the player's HP entering combat; 0 or negative means
	// start at full health.
	CurrentHP int
	WeaponID  string
	Allies    []Ally
	// Fatigue is the player's fatigue in [0, 100] for the damage penalty.
	Fatigue float64
}

// Validate checks the init context invariants.
//
// Postcondition: Returns nil iff PlayerName is non-empty, the player stat
// block is valid, fatigue is in [0, 100], and every ally has an id, a name,
// and a valid stat block.
func (c InitContext) Validate() error {
	if c.PlayerName == "" {
		return fmt.Errorf("init context: player name must not be empty")
	}
	if err := c.PlayerStats.Validate(); err != nil {
		return fmt.Errorf("init context: player %w", err)
	}
	if c.Fatigue < 0 || c.Fatigue > 100 {
		return fmt.Errorf("init context: fatigue must be in [0, 100], got %v", c.Fatigue)
	}
	for i, a := range c.Allies {
		if a.ID == "" || a.Name == "" {
			return fmt.Errorf("init context: allies[%d] must have id and name", i)
		}
		if err := a.Stats.Validate(); err != nil {
			return fmt.Errorf("init context: ally %q: %w", a.ID, err)
		}
	}
	return nil
}
