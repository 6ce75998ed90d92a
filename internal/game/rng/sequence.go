package rng

// Sequence is a Source that replays a fixed list of samples in order.
//
// It exists for tests and for replaying recorded encounters: feed it the
// samples an earlier run consumed and every roll resolves identically.
// When the samples run out, Sequence wraps around to the beginning; an empty
// Sequence always yields 0.
type Sequence struct {
	samples []float64
	next    int
}

// NewSequence returns a Sequence over the given samples.
//
// Precondition: every sample must be in [0, 1).
func NewSequence(samples ...float64) *Sequence {
	cp := make([]float64, len(samples))
	copy(cp, samples)
	return &Sequence{samples: cp}
}

// Float64 returns the next sample, wrapping around when exhausted.
func (s *Sequence) Float64() float64 {
	if len(s.samples) == 0 {
		return 0
	}
	v := s.samples[s.next%len(s.samples)]
	s.next++
	return v
}

// Intn maps the next sample onto [0, n).
//
// Precondition: n > 0. Panics with "rng: Intn called with n <= 0" if n <= 0.
func (s *Sequence) Intn(n int) int {
	if n <= 0 {
		panic("rng: Intn called with n <= 0")
	}
	return int(s.Float64() * float64(n))
}

// Consumed reports how many samples have been drawn so far.
func (s *Sequence) Consumed() int { return s.next }
