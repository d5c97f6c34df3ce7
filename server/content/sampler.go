package content

import (
	"math/rand"
)

const (
	// DefaultSampleCap bounds the evidence volume handed to generation.
	DefaultSampleCap = 40
	// maxIdleRounds stops round-robin selection after this many consecutive
	// rounds without progress.
	maxIdleRounds = 200
)

// Sampler selects a bounded, source-diversified subset of chunks. The random
// source is injected so selection is reproducible in tests.
type Sampler struct {
	rng *rand.Rand
}

// NewSampler creates a Sampler seeded with the given value.
func NewSampler(seed int64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewSource(seed))}
}

// Sample picks up to cap chunks, round-robin across source documents, one
// uniformly random not-yet-selected chunk per document per round. While
// multiple documents still have chunks available, no single source can
// monopolize the output.
func (s *Sampler) Sample(chunks []Chunk, cap int) []Chunk {
	if cap <= 0 {
		cap = DefaultSampleCap
	}
	if len(chunks) == 0 {
		return nil
	}

	// Group by source, preserving first-seen group order.
	groups := make(map[string][]Chunk)
	var order []string
	for _, chunk := range chunks {
		if _, ok := groups[chunk.SourceName]; !ok {
			order = append(order, chunk.SourceName)
		}
		groups[chunk.SourceName] = append(groups[chunk.SourceName], chunk)
	}

	var selected []Chunk
	total := len(chunks)
	idleRounds := 0
	for i := 0; len(selected) < cap && total > 0 && idleRounds < maxIdleRounds; i++ {
		source := order[i%len(order)]
		remaining := groups[source]
		if len(remaining) == 0 {
			idleRounds++
			continue
		}
		idleRounds = 0
		total--
		pick := s.rng.Intn(len(remaining))
		selected = append(selected, remaining[pick])
		remaining[pick] = remaining[len(remaining)-1]
		groups[source] = remaining[:len(remaining)-1]
	}

	return selected
}
