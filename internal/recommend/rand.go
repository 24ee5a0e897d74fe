package recommend

import (
	"math/rand/v2"
	"sync"
)

// Rand is the source of randomness for every pick the Selector makes.
// Tests inject a seeded or scripted implementation.
type Rand interface {
	// IntN returns a value in [0, n). n is always > 0.
	IntN(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand returns a goroutine-safe PCG source. A zero seed draws a random one.
func NewRand(seed uint64) Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Pick returns a uniformly chosen element of pool, or "" when pool is empty.
func Pick(r Rand, pool []string) string {
	if len(pool) == 0 {
		return ""
	}
	return pool[r.IntN(len(pool))]
}

// Sample draws k distinct positions of pool without replacement. pool is
// not modified. When k >= len(pool) every element is returned in shuffled order.
func Sample[T any](r Rand, pool []T, k int) []T {
	if k <= 0 || len(pool) == 0 {
		return nil
	}
	cp := append([]T(nil), pool...)
	k = min(k, len(cp))
	for i := 0; i < k; i++ {
		j := i + r.IntN(len(cp)-i)
		cp[i], cp[j] = cp[j], cp[i]
	}
	return cp[:k]
}
