package optimize

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/kinodynamics/kinodyn/dynamics"
	"github.com/kinodynamics/kinodyn/spatialmath"
)

// chart flattens a graph's variables into one coordinate vector about a
// seed assignment. Poses contribute 6 exponential coordinates, spatial
// vectors 6, scalars 1, laid out in the stable key order. The seed itself
// maps to the zero vector.
type chart struct {
	keys    []dynamics.Key
	offsets map[dynamics.Key]int
	dim     int
	seed    dynamics.Assignment
}

func newChart(g *dynamics.Graph, seed dynamics.Assignment) (*chart, error) {
	keys := g.Keys()
	c := &chart{
		keys:    keys,
		offsets: make(map[dynamics.Key]int, len(keys)),
		seed:    seed,
	}
	for _, k := range keys {
		if !seed.Has(k) {
			return nil, errors.Wrap(dynamics.NewMissingKeyError(k), "incomplete initial assignment")
		}
		c.offsets[k] = c.dim
		c.dim += k.LocalDim()
	}
	return c, nil
}

// assignment materializes the coordinates x as a full assignment.
func (c *chart) assignment(x []float64) (dynamics.Assignment, error) {
	a := c.seed.Clone()
	for _, k := range c.keys {
		off := c.offsets[k]
		if err := a.Retract(k, x[off:off+k.LocalDim()]); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// accumulate adds one linearized constraint's contribution to the weighted
// squared error and its gradient. The pose chain rule maps local Jacobians
// through the right Jacobian of the current chart coordinates.
func (c *chart) accumulate(lin *dynamics.Linearization, sigma float64, x, grad []float64) float64 {
	w := 1 / (sigma * sigma)
	total := w * floats.Dot(lin.Residual, lin.Residual)
	if grad == nil {
		return total
	}
	for k, jac := range lin.Jacobians {
		off, ok := c.offsets[k]
		if !ok {
			continue
		}
		n := k.LocalDim()
		block := jac
		if k.Kind == dynamics.KindPose {
			var xi spatialmath.Vector6
			copy(xi[:], x[off:off+6])
			chained := mat.NewDense(len(lin.Residual), 6, nil)
			chained.Mul(jac, spatialmath.RightJacobian(xi))
			block = chained
		}
		for col := 0; col < n; col++ {
			var g float64
			for row, r := range lin.Residual {
				g += block.At(row, col) * r
			}
			grad[off+col] += 2 * w * g
		}
	}
	return total
}
