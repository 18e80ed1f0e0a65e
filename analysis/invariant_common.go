package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/shypn/topology/internal/rational"
)

// nullBasis is one vector from the null space of (or left null space of)
// the incidence matrix, before sign-flip and rationalization.
type nullBasis struct {
	vec []float64
}

// svdNullSpace computes an orthonormal basis for the null space of c (when
// left is false, giving T-invariant candidates: Cx=0) or the left null
// space of c (when left is true, giving P-invariant candidates: Cᵀy=0).
// Singular values with magnitude below 1e-9*sigmaMax count as zero.
// conditionNumber is sigmaMax/sigmaMin over the nonzero singular
// values, used to flag numeric instability.
func svdNullSpace(c *mat.Dense, left bool) (basis []nullBasis, conditionNumber float64, ok bool) {
	rows, cols := c.Dims()
	if rows == 0 || cols == 0 {
		return nil, 0, true
	}

	var svd mat.SVD
	if !svd.Factorize(c, mat.SVDFull) {
		return nil, 0, false
	}
	values := svd.Values(nil)

	sigmaMax := 0.0
	sigmaMinNonzero := math.MaxFloat64
	for _, s := range values {
		if s > sigmaMax {
			sigmaMax = s
		}
	}
	threshold := sigmaMax * 1e-9
	for _, s := range values {
		if s > threshold && s < sigmaMinNonzero {
			sigmaMinNonzero = s
		}
	}
	if sigmaMinNonzero == math.MaxFloat64 {
		conditionNumber = 0
	} else {
		conditionNumber = sigmaMax / sigmaMinNonzero
	}

	var mDense mat.Dense
	var basisLen int
	if left {
		svd.UTo(&mDense)
		basisLen = rows
	} else {
		svd.VTo(&mDense)
		basisLen = cols
	}

	for col := 0; col < basisLen; col++ {
		var sigma float64
		if col < len(values) {
			sigma = values[col]
		}
		if sigma > threshold {
			continue
		}
		v := make([]float64, basisLen)
		for r := 0; r < basisLen; r++ {
			v[r] = mDense.At(r, col)
		}
		basis = append(basis, nullBasis{vec: v})
	}
	return basis, conditionNumber, true
}

// rationalizeVector flips a null-space vector to non-negative, rejects it
// if that is impossible, and reconstructs an integer vector with gcd 1 by
// scaling the smallest positive entry to 1 and clearing denominators, per
// the "scale, rationalize, gcd-normalize" recipe.
func rationalizeVector(v []float64) (indices []int, coeffs []int64, ok bool) {
	const zeroTol = 1e-9

	flipped := make([]float64, len(v))
	copy(flipped, v)

	anyPositive := false
	for _, x := range flipped {
		if x > zeroTol {
			anyPositive = true
			break
		}
	}
	if !anyPositive {
		for i := range flipped {
			flipped[i] = -flipped[i]
		}
	}
	for _, x := range flipped {
		if x < -zeroTol {
			return nil, nil, false
		}
	}

	minPositive := math.MaxFloat64
	for _, x := range flipped {
		if x > zeroTol && x < minPositive {
			minPositive = x
		}
	}
	if minPositive == math.MaxFloat64 {
		return nil, nil, false
	}

	var nums, dens []int64
	var idxs []int
	for i, x := range flipped {
		if x <= zeroTol {
			continue
		}
		ratio := x / minPositive
		num, den, ok := rational.Reconstruct(ratio, 1000, 1e-6)
		if !ok {
			return nil, nil, false
		}
		nums = append(nums, num)
		dens = append(dens, den)
		idxs = append(idxs, i)
	}
	if len(idxs) == 0 {
		return nil, nil, false
	}
	ints, ok := rational.NormalizeIntegers(nums, dens)
	if !ok {
		return nil, nil, false
	}
	return idxs, ints, true
}

// invariantKey builds a canonical key for deduplication: two invariants
// are equal when one is a positive integer multiple of the other, which
// (after gcd-normalizing to a primitive vector) means their supports and
// coefficients coincide exactly.
func invariantKey(indices []int, coeffs []int64) string {
	type pair struct {
		idx   int
		coeff int64
	}
	pairs := make([]pair, len(indices))
	for i := range indices {
		pairs[i] = pair{indices[i], coeffs[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].idx < pairs[j].idx })

	buf := make([]byte, 0, 16*len(pairs))
	for _, p := range pairs {
		buf = appendInt(buf, int64(p.idx))
		buf = append(buf, ':')
		buf = appendInt(buf, p.coeff)
		buf = append(buf, ';')
	}
	return string(buf)
}
