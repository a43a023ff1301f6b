package mathlib

import tlerrors "tlog.app/go/errors"

// MaxLinearDim bounds the dimension SolveLinear accepts
const MaxLinearDim = 10

// SolveLinear solves a x = b for the dim x dim row-major matrix a by
// Gaussian elimination with row exchange. The pivot for column i is the
// first non-zero entry at or below the diagonal. A zero diagonal after
// elimination yields 0 for that component instead of failing. a and b are
// not modified.
func SolveLinear(dim int, a, b []float32) ([]float32, error) {
	if dim > MaxLinearDim {
		return nil, tlerrors.New("linear system of dimension %d exceeds %d", dim, MaxLinearDim)
	}
	if dim < 0 || len(a) < dim*dim || len(b) < dim {
		return nil, tlerrors.New("linear system of dimension %d needs %d coefficients and %d constants, got %d and %d",
			dim, dim*dim, dim, len(a), len(b))
	}

	m := make([]float32, dim*dim)
	copy(m, a)
	rhs := make([]float32, dim)
	copy(rhs, b)

	exch := make([]int, dim)
	for i := range exch {
		exch[i] = i
	}
	at := func(r, c int) *float32 { return &m[exch[r]*dim+c] }
	rhsAt := func(r int) *float32 { return &rhs[exch[r]] }

	for i := 0; i < dim-1; i++ {
		p := i
		for ; p < dim; p++ {
			if *at(p, i) != 0 {
				break
			}
		}
		if p == dim {
			continue
		}
		exch[p], exch[i] = exch[i], exch[p]

		for j := i + 1; j < dim; j++ {
			if *at(j, i) == 0 {
				continue
			}
			f := *at(i, i) / *at(j, i)
			*at(j, i) = 0
			for k := i + 1; k < dim; k++ {
				*at(j, k) = *at(j, k)*f - *at(i, k)
			}
			*rhsAt(j) = *rhsAt(j)*f - *rhsAt(i)
		}
	}

	r := make([]float32, dim)
	for i := dim - 1; i >= 0; i-- {
		if *at(i, i) == 0 {
			r[i] = 0
			continue
		}
		var v float32
		for j := i + 1; j < dim; j++ {
			v += *at(i, j) * r[j]
		}
		r[i] = (*rhsAt(i) - v) / *at(i, i)
	}
	return r, nil
}
