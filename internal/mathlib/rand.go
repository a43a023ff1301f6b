package mathlib

const defaultRandSeed = 0x9e3779b9

// Rand is the xorshift generator behind the rand op. Each evaluator owns
// one; the native runtime keeps the same state in its invocation.
type Rand struct {
	State uint32
}

// NewRand seeds a generator; a zero seed selects a fixed default
func NewRand(seed uint32) *Rand {
	if seed == 0 {
		seed = defaultRandSeed
	}
	return &Rand{State: seed}
}

func (r *Rand) next() uint32 {
	x := r.State
	if x == 0 {
		x = defaultRandSeed
	}
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.State = x
	return x
}

// Float returns a uniform number in [lo, hi)
func (r *Rand) Float(lo, hi float32) float32 {
	u := float32(r.next()>>8) / (1 << 24)
	return lo + (hi-lo)*u
}
