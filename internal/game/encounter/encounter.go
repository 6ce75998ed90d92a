package encounter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnemyEntry is one species slot in an encounter roster.
type EnemyEntry struct {
	EnemyID string `yaml:"enemy"`
	Count   int    `yaml:"count"`
}

// ItemDrop defines a single reward item entry with an independent drop chance.
type ItemDrop struct {
	ItemID   string  `yaml:"item"`
	Quantity int     `yaml:"quantity"`
	Chance   float64 `yaml:"chance"`
}

// Rewards is the encounter-level reward table. Per-enemy xp/gold rewards from
// templates are added on top of the base values.
type Rewards struct {
	XP    int        `yaml:"xp"`
	Gold  int        `yaml:"gold"`
	Items []ItemDrop `yaml:"items"`
}

// Encounter defines one combat encounter loaded from YAML.
type Encounter struct {
	ID      string       `yaml:"id"`
	Name    string       `yaml:"name"`
	Enemies []EnemyEntry `yaml:"enemies"`
	CanFlee bool         `yaml:"can_flee"`
	IsBoss  bool         `yaml:"is_boss"`
	Rewards Rewards      `yaml:"rewards"`
}

// Validate checks that the encounter satisfies its invariants.
//
// Precondition: e must not be nil.
// Postcondition: Returns nil iff ID is non-empty, at least one enemy entry
// exists with a non-empty id and count >= 1, rewards are non-negative, and
// every item drop has a chance in (0, 1] and quantity >= 1.
func (e *Encounter) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("encounter: id must not be empty")
	}
	if len(e.Enemies) == 0 {
		return fmt.Errorf("encounter %q: must have at least one enemy entry", e.ID)
	}
	for i, entry := range e.Enemies {
		if entry.EnemyID == "" {
			return fmt.Errorf("encounter %q: enemies[%d] must have a non-empty enemy id", e.ID, i)
		}
		if entry.Count < 1 {
			return fmt.Errorf("encounter %q: enemies[%d] count must be >= 1, got %d", e.ID, i, entry.Count)
		}
	}
	if e.Rewards.XP < 0 || e.Rewards.Gold < 0 {
		return fmt.Errorf("encounter %q: base rewards must be >= 0", e.ID)
	}
	for i, item := range e.Rewards.Items {
		if item.ItemID == "" {
			return fmt.Errorf("encounter %q: rewards.items[%d] must have a non-empty item id", e.ID, i)
		}
		if item.Chance <= 0 || item.Chance > 1.0 {
			return fmt.Errorf("encounter %q: rewards.items[%d] chance must be in (0, 1.0], got %f", e.ID, i, item.Chance)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("encounter %q: rewards.items[%d] quantity must be >= 1, got %d", e.ID, i, item.Quantity)
		}
	}
	return nil
}

// LoadEncounterFromBytes parses a single encounter from raw YAML bytes.
// Unknown fields are rejected.
//
// Postcondition: Returns a validated *Encounter, or an error.
func LoadEncounterFromBytes(data []byte) (*Encounter, error) {
	var enc Encounter
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&enc); err != nil {
		return nil, fmt.Errorf("parsing encounter YAML: %w", err)
	}
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	return &enc, nil
}

// LoadEncounters reads all *.yaml files in dir and returns the parsed
// encounters keyed by ID.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all encounters or an error on the first parse,
// validate, or duplicate-ID failure.
func LoadEncounters(dir string) (map[string]*Encounter, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading encounter dir %q: %w", dir, err)
	}
	out := make(map[string]*Encounter)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		enc, err := LoadEncounterFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", path, err)
		}
		if _, dup := out[enc.ID]; dup {
			return nil, fmt.Errorf("%q: duplicate encounter id %q", path, enc.ID)
		}
		out[enc.ID] = enc
	}
	return out, nil
}
