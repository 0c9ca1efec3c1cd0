package dynamics

import (
	"gonum.org/v1/gonum/mat"
)

// Linearization is a constraint evaluated at an assignment: the residual
// and one Jacobian block per variable, in the variable's local coordinates
// (right perturbation for poses).
type Linearization struct {
	Residual  []float64
	Jacobians map[Key]*mat.Dense
}

// Constraint is one residual block of a dynamics graph. Linearize returns
// analytic Jacobians; Sigma is the isotropic noise scale used to weight the
// residual.
type Constraint interface {
	Keys() []Key
	Dim() int
	Sigma() float64
	Linearize(a Assignment) (*Linearization, error)
}

// NumericalJacobian evaluates the Jacobian of c with respect to key by
// centered differences with the given step, retracting perturbations in the
// variable's local coordinates. It is a validation helper for tests and
// graph checks, not an evaluation path.
func NumericalJacobian(c Constraint, a Assignment, key Key, step float64) (*mat.Dense, error) {
	dim := c.Dim()
	n := key.LocalDim()
	out := mat.NewDense(dim, n, nil)
	for i := 0; i < n; i++ {
		delta := make([]float64, n)

		delta[i] = step
		plus := a.Clone()
		if err := plus.Retract(key, delta); err != nil {
			return nil, err
		}
		linPlus, err := c.Linearize(plus)
		if err != nil {
			return nil, err
		}

		delta[i] = -step
		minus := a.Clone()
		if err := minus.Retract(key, delta); err != nil {
			return nil, err
		}
		linMinus, err := c.Linearize(minus)
		if err != nil {
			return nil, err
		}

		for r := 0; r < dim; r++ {
			out.Set(r, i, (linPlus.Residual[r]-linMinus.Residual[r])/(2*step))
		}
	}
	return out, nil
}

func newLinearization(dim int) *Linearization {
	return &Linearization{
		Residual:  make([]float64, dim),
		Jacobians: make(map[Key]*mat.Dense),
	}
}

// identity6 returns a 6x6 identity, optionally negated.
func identity6(sign float64) *mat.Dense {
	m := mat.NewDense(6, 6, nil)
	for i := 0; i < 6; i++ {
		m.Set(i, i, sign)
	}
	return m
}

// columnOf returns a 6x1 Jacobian block holding v scaled by sign.
func columnOf(v [6]float64, sign float64) *mat.Dense {
	m := mat.NewDense(6, 1, nil)
	for i := 0; i < 6; i++ {
		m.Set(i, 0, sign*v[i])
	}
	return m
}

// negate returns -m.
func negate(m *mat.Dense) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c, nil)
	out.Scale(-1, m)
	return out
}
