package geometry

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Transport returns jac * cov * jac^T, symmetrised against rounding.
func Transport(jac mat.Matrix, cov mat.Symmetric) *mat.SymDense {
	var tmp mat.Dense
	tmp.Product(jac, cov, jac.T())
	n, _ := tmp.Dims()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, (tmp.At(i, j)+tmp.At(j, i))/2)
		}
	}
	return out
}

// ReversalJacobian is the Jacobian of Reverse for n perigee-like
// parameters: phi0 is unchanged up to a constant, all others flip sign.
func ReversalJacobian(n int, phiIndex int) *mat.Dense {
	jac := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		if i == phiIndex {
			jac.Set(i, i, 1)
		} else {
			jac.Set(i, i, -1)
		}
	}
	return jac
}

// CovarianceFromFullPrecision inverts a full rank precision matrix.
func CovarianceFromFullPrecision(precision mat.Symmetric) (*mat.SymDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(precision); !ok {
		n := precision.SymmetricDim()
		return nanSym(n), ErrSingular
	}
	var cov mat.SymDense
	if err := chol.InverseTo(&cov); err != nil {
		return nanSym(precision.SymmetricDim()), ErrSingular
	}
	return &cov, nil
}

func nanSym(n int) *mat.SymDense {
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, math.NaN())
		}
	}
	return out
}

// symHasNaN reports whether any element is not finite.
func symHasNaN(s mat.Symmetric) bool {
	n := s.SymmetricDim()
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			if !isFinite(s.At(i, j)) {
				return true
			}
		}
	}
	return false
}
