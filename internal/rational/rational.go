// Package rational reconstructs small exact rationals from the
// floating-point entries an SVD null-space basis produces, and normalizes
// a vector of rationals to the unique integer vector with gcd 1. It is a
// standalone numeric utility, deliberately kept separate from the
// linear-algebra backend it supports.
package rational

import "math"

// GCD returns the greatest common divisor of a and b (always non-negative).
func GCD(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// LCM returns the least common multiple of a and b.
func LCM(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	g := GCD(a, b)
	return a / g * b
}

// Reconstruct finds the simplest fraction num/den within tol of x, using a
// continued-fraction expansion bounded by maxDen. ok is false when no
// fraction with denominator <= maxDen approximates x within tol.
func Reconstruct(x float64, maxDen int64, tol float64) (num, den int64, ok bool) {
	if math.Abs(x) < tol {
		return 0, 1, true
	}
	sign := int64(1)
	if x < 0 {
		sign = -1
		x = -x
	}

	// Continued fraction convergents p_k/q_k.
	var p0, q0, p1, q1 int64 = 0, 1, 1, 0
	r := x
	for i := 0; i < 64; i++ {
		a := int64(math.Floor(r))
		p2 := a*p1 + p0
		q2 := a*q1 + q0
		if q2 > maxDen {
			break
		}
		p0, q0 = p1, q1
		p1, q1 = p2, q2

		approx := float64(p1) / float64(q1)
		if math.Abs(approx-x) <= tol*math.Max(1, x) {
			return sign * p1, q1, true
		}

		frac := r - math.Floor(r)
		if frac < 1e-12 {
			break
		}
		r = 1 / frac
	}
	if q1 == 0 {
		return 0, 0, false
	}
	approx := float64(p1) / float64(q1)
	if math.Abs(approx-x) <= tol*math.Max(1, x) {
		return sign * p1, q1, true
	}
	return 0, 0, false
}

// NormalizeIntegers scales a slice of rationals (num[i]/common denominator)
// to the smallest integer vector with the same ratios and gcd 1. dens[i]
// pairs with nums[i]. Returns nil, false if every entry is zero.
func NormalizeIntegers(nums, dens []int64) ([]int64, bool) {
	if len(nums) == 0 {
		return nil, false
	}
	// Scale all entries to a common denominator (LCM of dens), then
	// divide out the GCD of the resulting integers.
	var lcm int64 = 1
	for _, d := range dens {
		if d == 0 {
			d = 1
		}
		lcm = LCM(lcm, d)
	}
	scaled := make([]int64, len(nums))
	anyNonZero := false
	for i, n := range nums {
		d := dens[i]
		if d == 0 {
			d = 1
		}
		scaled[i] = n * (lcm / d)
		if scaled[i] != 0 {
			anyNonZero = true
		}
	}
	if !anyNonZero {
		return nil, false
	}
	var g int64
	for _, v := range scaled {
		if v != 0 {
			g = GCD(g, v)
		}
	}
	if g == 0 {
		g = 1
	}
	for i := range scaled {
		scaled[i] /= g
	}
	return scaled, true
}
