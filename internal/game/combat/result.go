package combat

import (
	"time"

	"github.com/rgault/duskfall/internal/game/effect"
)

// Result records the outcome of one dispatched action or status tick.
// Results are append-only: once written to the log they are never mutated.
type Result struct {
	// Success is true when the action resolved as intended. A miss or a
	// failed flee attempt is not a success but still consumes the turn.
	Success bool
	// Damage is the HP removed from the target, if any.
	Damage int
	// Heal is the HP restored, if any.
	Heal int
	// Crit is set when the damage included a critical multiplier.
	Crit bool
	// Dodged is set when an attack missed.
	Dodged bool
	// Blocked is set when the target's defending stance reduced the damage.
	Blocked bool
	// EffectApplied holds the status effect the action added, if any.
	EffectApplied *effect.Effect
	// Fled is set when a flee attempt succeeded.
	Fled bool
	// Message is the human-readable narration for the presentation layer.
	Message string
	// Timestamp is when the result was produced.
	Timestamp time.Time
}

// DefaultLogCapacity bounds the combat log when no capacity is configured.
const DefaultLogCapacity = 100

// Log is a capacity-bounded combat log; appending beyond capacity drops the
// oldest entries.
type Log struct {
	capacity int
	entries  []Result
}

// NewLog creates a Log with the given capacity; capacity <= 0 uses
// DefaultLogCapacity.
func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &Log{capacity: capacity}
}

// Append adds r to the log, evicting the oldest entry when full.
//
// Postcondition: Len() <= capacity.
func (l *Log) Append(r Result) {
	l.entries = append(l.entries, r)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[len(l.entries)-l.capacity:]
	}
}

// Len returns the number of retained entries.
func (l *Log) Len() int { return len(l.entries) }

// Entries returns a copy of the retained results, oldest first.
func (l *Log) Entries() []Result {
	cp := make([]Result, len(l.entries))
	copy(cp, l.entries)
	return cp
}

// Last returns the most recent entry, or a zero Result if the log is empty.
func (l *Log) Last() (Result, bool) {
	if len(l.entries) == 0 {
		return Result{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// clone returns a deep copy of the log.
func (l *Log) clone() *Log {
	cp := &Log{capacity: l.capacity, entries: make([]Result, len(l.entries))}
	copy(cp.entries, l.entries)
	return cp
}
