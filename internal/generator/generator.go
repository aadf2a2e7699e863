// Package generator draws round content and display order.
package generator

import (
	"math/rand"
	"sync"
	"time"
)

// Generator produces randomized samples and orderings. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// SampleIndexes picks min(count, n) distinct indexes from [0, n) uniformly
// without replacement.
func (g *Generator) SampleIndexes(n, count int) []int {
	if count > n {
		count = n
	}
	if count <= 0 {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	// Partial Fisher-Yates over the index space.
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < count; i++ {
		j := i + g.rnd.Intn(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count]
}

// Shuffle returns a permuted copy of ids.
func (g *Generator) Shuffle(ids []string) []string {
	out := append([]string(nil), ids...)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}
