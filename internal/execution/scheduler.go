package execution

import (
	"math/rand/v2"

	"github.com/jbolsens-legion/docker-selenium/internal/domain"
)

// Scheduler flattens test groups into the order cases are submitted
type Scheduler interface {
	Schedule(groups []domain.TestGroup) []domain.TestCase
	// Seed identifies the order so a run can be reproduced
	Seed() uint64
}

// ShuffleScheduler expands every group and shuffles the whole pool so cases
// from different groups interleave.
type ShuffleScheduler struct {
	seed uint64
	rng  *rand.Rand
}

// NewShuffleScheduler creates a ShuffleScheduler. A zero seed picks a random one.
func NewShuffleScheduler(seed uint64) *ShuffleScheduler {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &ShuffleScheduler{
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the permutation is derived from
func (s *ShuffleScheduler) Seed() uint64 {
	return s.seed
}

// Schedule returns all cases of all groups in a uniform random permutation
func (s *ShuffleScheduler) Schedule(groups []domain.TestGroup) []domain.TestCase {
	var pool []domain.TestCase
	for _, group := range groups {
		pool = append(pool, group.Cases()...)
	}
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	return pool
}
