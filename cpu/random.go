package cpu

import (
	"math/rand"
	"time"
)

// A RandomSource hands the RND instruction one random byte at a time.
// Tests swap in a source that replays a fixed sequence.
type RandomSource interface {
	Next() byte
}

// Random is a RandomSource backed by math/rand.
type Random struct {
	rnd *rand.Rand
}

// NewRandom returns a Random seeded with seed. A zero seed picks one from the clock.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rnd: rand.New(rand.NewSource(seed))}
}

// Next returns a byte uniformly distributed over 0-255.
func (r *Random) Next() byte {
	return byte(r.rnd.Intn(256))
}
