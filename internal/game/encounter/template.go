// Package encounter provides the YAML-defined content consumed by the combat
// core: enemy templates, encounter definitions with reward tables, and the
// player-side initialization context.
package encounter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Stats is the numeric stat block shared by templates and combatants.
type Stats struct {
	MaxHP          int     `yaml:"max_hp"`
	Attack         float64 `yaml:"attack"`
	Defense        float64 `yaml:"defense"`
	Speed          float64 `yaml:"speed"`
	Accuracy       float64 `yaml:"accuracy"`
	Evasion        float64 `yaml:"evasion"`
	CritChance     float64 `yaml:"crit_chance"`
	CritMultiplier float64 `yaml:"crit_multiplier"`
}

// Validate checks the stat block invariants.
//
// Postcondition: Returns nil iff MaxHP >= 1 and no stat is negative.
func (s Stats) Validate() error {
	if s.MaxHP < 1 {
		return fmt.Errorf("stats: max_hp must be >= 1, got %d", s.MaxHP)
	}
	for name, v := range map[string]float64{
		"attack": s.Attack, "defense": s.Defense, "speed": s.Speed,
		"accuracy": s.Accuracy, "evasion": s.Evasion,
		"crit_chance": s.CritChance, "crit_multiplier": s.CritMultiplier,
	} {
		if v < 0 {
			return fmt.Errorf("stats: %s must be >= 0, got %v", name, v)
		}
	}
	return nil
}

// EnemyTemplate defines a reusable enemy species loaded from YAML.
type EnemyTemplate struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Stats       Stats  `yaml:"stats"`
	// Behavior is the AI policy tag; empty defaults to aggressive.
	// A "script:<hook>" value routes decisions to a Lua behavior script.
	Behavior string `yaml:"behavior"`
	// WeaponID and SpriteID are presentation/equipment references opaque
	// to the combat core.
	WeaponID string `yaml:"weapon"`
	SpriteID string `yaml:"sprite"`
	// XPReward and GoldReward are granted per defeated instance.
	XPReward   int `yaml:"xp_reward"`
	GoldReward int `yaml:"gold_reward"`
	// LootTableID references an external loot table for this species.
	LootTableID string `yaml:"loot_table"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty, the stat block is
// valid, and rewards are non-negative.
func (t *EnemyTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("enemy template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("enemy template %q: name must not be empty", t.ID)
	}
	if err := t.Stats.Validate(); err != nil {
		return fmt.Errorf("enemy template %q: %w", t.ID, err)
	}
	if t.XPReward < 0 || t.GoldReward < 0 {
		return fmt.Errorf("enemy template %q: rewards must be >= 0", t.ID)
	}
	return nil
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
// Unknown fields are rejected.
//
// Postcondition: Returns a validated *EnemyTemplate, or an error.
func LoadTemplateFromBytes(data []byte) (*EnemyTemplate, error) {
	var tmpl EnemyTemplate
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing enemy template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir and returns the parsed templates
// keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse,
// validate, or duplicate-ID failure; on error, the partial result is discarded.
func LoadTemplates(dir string) (map[string]*EnemyTemplate, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading enemy dir %q: %w", dir, err)
	}
	out := make(map[string]*EnemyTemplate)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
		if _, dup := out[tmpl.ID]; dup {
			return nil, fmt.Errorf("%q: duplicate enemy template id %q", path, tmpl.ID)
		}
		out[tmpl.ID] = tmpl
	}
	return out, nil
}
