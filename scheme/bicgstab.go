package scheme

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// ErrNoConvergence is returned when the iterative solver runs out of iterations.
var ErrNoConvergence = errors.New("scheme: iterative solver did not converge")

// biCGStab is the preconditioned stabilised bi-conjugate gradient method
// for A x = b with A and the preconditioner M ≈ A^{-1} given as functions.
type biCGStab struct {
	apply        func(x []float64) []float64
	precondition func(x []float64) ([]float64, error)
	maxIter      int
	relTol       float64
}

// solve starts from x0 and returns the solution and the iteration count.
func (s biCGStab) solve(b, x0 []float64) ([]float64, int, error) {
	n := len(b)
	bnorm := floats.Norm(b, 2)
	if bnorm == 0 {
		return make([]float64, n), 0, nil
	}

	x := append([]float64(nil), x0...)
	r := sub(b, s.apply(x))
	rTld := append([]float64(nil), r...)
	p := make([]float64, n)
	v := make([]float64, n)
	var pTld, sv, sTld, tv []float64
	rho, rhoTld, alpha, omega := 0.0, 1.0, 0.0, 1.0

	residual := floats.Norm(r, 2) / bnorm
	i := 0
	for ; i < s.maxIter && residual >= s.relTol; i++ {
		rho = floats.Dot(rTld, r)
		if rho == 0 || omega == 0 {
			break
		}
		if i > 0 {
			beta := (rho / rhoTld) * (alpha / omega)
			// p = r + beta (p - omega v)
			floats.AddScaled(p, -omega, v)
			floats.Scale(beta, p)
			floats.Add(p, r)
		} else {
			copy(p, r)
		}

		var err error
		if pTld, err = s.precondition(p); err != nil {
			return nil, i, err
		}
		v = s.apply(pTld)
		alpha = rho / floats.Dot(rTld, v)
		sv = addScaled(r, -alpha, v)
		if floats.Norm(sv, 2) < s.relTol*bnorm {
			floats.AddScaled(x, alpha, pTld)
			residual = floats.Norm(sv, 2) / bnorm
			i++
			break
		}

		if sTld, err = s.precondition(sv); err != nil {
			return nil, i, err
		}
		tv = s.apply(sTld)
		omega = floats.Dot(tv, sv) / floats.Dot(tv, tv)
		floats.AddScaled(x, alpha, pTld)
		floats.AddScaled(x, omega, sTld)
		r = addScaled(sv, -omega, tv)
		residual = floats.Norm(r, 2) / bnorm
		rhoTld = rho
	}

	if residual >= s.relTol {
		return nil, i, fmt.Errorf("biCGStab: %w: residual %g after %d iterations", ErrNoConvergence, residual, i)
	}
	return x, i, nil
}
