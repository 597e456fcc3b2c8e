// Package dp derives the parameters of the binomial differential-privacy
// mechanism used to add noise to query answers: the number of coin flips N
// and the centering offset N/2, chosen from a privacy budget (epsilon,
// delta).
package dp

import "math"

// DefaultDelta is used when the caller does not supply an explicit delta.
// The protocol fixes this to a small constant rather than deriving it from
// the database size, unlike the db-size-dependent default of the reference
// construction this mechanism is adapted from.
const DefaultDelta = 1.0 / (1 << 100)

// Params holds the derived binomial-mechanism parameters for one session.
type Params struct {
	Epsilon float64
	Delta   float64
	N       uint64
}

// Derive computes N from (epsilon, delta) via N = ceil(8*log2(2/delta)/epsilon^2).
// If delta <= 0, DefaultDelta is used.
func Derive(epsilon, delta float64) Params {
	if delta <= 0 {
		delta = DefaultDelta
	}
	n := math.Ceil((8.0 * math.Log2(2.0/delta)) / (epsilon * epsilon))
	if n < 1 {
		n = 1
	}
	return Params{Epsilon: epsilon, Delta: delta, N: uint64(n)}
}

// Center returns N/2 as used to recenter the sum of N independent coin
// flips into signed noise: X = (sum of flips) - N/2.
func (p Params) Center() uint64 {
	return p.N / 2
}

// StdDev returns the standard deviation of the binomial noise distribution,
// Binomial(N, 1/2), equal to sqrt(N)/2.
func (p Params) StdDev() float64 {
	return math.Sqrt(float64(p.N)) / 2
}
