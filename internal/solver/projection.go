package solver

import (
	"fmt"
	"math"
)

// FeasibilityTolerance is the slack allowed when checking Σlo ≤ 1 ≤ Σhi.
const FeasibilityTolerance = 1e-9

// Bounds holds per-asset lower and upper weight limits.
type Bounds struct {
	Lower []float64
	Upper []float64
}

// UniformBounds returns n copies of [lo, hi].
func UniformBounds(n int, lo, hi float64) Bounds {
	b := Bounds{Lower: make([]float64, n), Upper: make([]float64, n)}
	for i := 0; i < n; i++ {
		b.Lower[i] = lo
		b.Upper[i] = hi
	}
	return b
}

// Validate reports whether a fully invested portfolio can satisfy the bounds.
func (b Bounds) Validate() error {
	if len(b.Lower) != len(b.Upper) {
		return fmt.Errorf("bounds length mismatch: %d lower, %d upper", len(b.Lower), len(b.Upper))
	}
	if len(b.Lower) == 0 {
		return fmt.Errorf("no assets to allocate")
	}
	sumLo, sumHi := 0.0, 0.0
	for i := range b.Lower {
		lo, hi := b.Lower[i], b.Upper[i]
		if math.IsNaN(lo) || math.IsNaN(hi) {
			return fmt.Errorf("bound %d is NaN", i)
		}
		if lo > hi {
			return fmt.Errorf("lower bound %.4f exceeds upper bound %.4f at %d", lo, hi, i)
		}
		sumLo += lo
		sumHi += hi
	}
	if sumLo > 1+FeasibilityTolerance {
		return fmt.Errorf("lower bounds sum to %.4f, more than 1", sumLo)
	}
	if sumHi < 1-FeasibilityTolerance {
		return fmt.Errorf("upper bounds sum to %.4f, less than 1", sumHi)
	}
	return nil
}

// Project returns the Euclidean projection of x onto {w : Σw = 1, lo ≤ w ≤ hi}.
// The projection has the form w_i = clip(x_i − τ, lo_i, hi_i); τ is found by bisection.
// Bounds must already be valid.
func (b Bounds) Project(x []float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	xs := make([]float64, n)
	for i, v := range x {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs[i] = v
		}
	}

	clipped := func(tau float64) float64 {
		sum := 0.0
		for i := 0; i < n; i++ {
			sum += clamp(xs[i]-tau, b.Lower[i], b.Upper[i])
		}
		return sum
	}

	// At tauLow every weight sits at its upper bound, at tauHigh at its lower bound.
	tauLow, tauHigh := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		tauLow = math.Min(tauLow, xs[i]-b.Upper[i])
		tauHigh = math.Max(tauHigh, xs[i]-b.Lower[i])
	}

	for iter := 0; iter < 200; iter++ {
		mid := 0.5 * (tauLow + tauHigh)
		if mid == tauLow || mid == tauHigh {
			break
		}
		if clipped(mid) > 1 {
			tauLow = mid
		} else {
			tauHigh = mid
		}
	}

	tau := 0.5 * (tauLow + tauHigh)
	for i := 0; i < n; i++ {
		out[i] = clamp(xs[i]-tau, b.Lower[i], b.Upper[i])
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
