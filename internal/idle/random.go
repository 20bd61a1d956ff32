package idle

import (
	"math/rand/v2"
	"sync"
)

// RandomSource yields uniform floats in [0, 1). Crit rolls are its only consumer.
type RandomSource interface {
	Float64() float64
}

// MathRand draws from math/rand/v2. The zero value uses the global generator.
type MathRand struct {
	r *rand.Rand
}

// NewSeededRand returns a reproducible source.
func NewSeededRand(seed uint64) *MathRand {
	return &MathRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (m *MathRand) Float64() float64 {
	if m == nil || m.r == nil {
		return rand.Float64()
	}
	return m.r.Float64()
}

// SequenceRandom replays a fixed list of draws, then repeats the last one.
// An empty sequence always returns 0.99.
type SequenceRandom struct {
	mu    sync.Mutex
	draws []float64
	next  int
}

func NewSequenceRandom(draws ...float64) *SequenceRandom {
	return &SequenceRandom{draws: draws}
}

func (s *SequenceRandom) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.draws) == 0 {
		return 0.99
	}
	if s.next >= len(s.draws) {
		return s.draws[len(s.draws)-1]
	}
	v := s.draws[s.next]
	s.next++
	return v
}
