package dynamics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/kinodynamics/kinodyn/spatialmath"
)

// PosePrior anchors a pose variable: Log(prior^-1 T) = 0.
type PosePrior struct {
	key   Key
	prior spatialmath.Pose
	sigma float64
}

// NewPosePrior builds a pose anchor.
func NewPosePrior(key Key, prior spatialmath.Pose, sigma float64) *PosePrior {
	return &PosePrior{key: key, prior: prior, sigma: sigma}
}

// Keys lists the constrained variables.
func (c *PosePrior) Keys() []Key { return []Key{c.key} }

// Dim returns the residual dimension.
func (c *PosePrior) Dim() int { return 6 }

// Sigma returns the noise scale.
func (c *PosePrior) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *PosePrior) Linearize(a Assignment) (*Linearization, error) {
	p, err := a.Pose(c.key)
	if err != nil {
		return nil, err
	}
	e := spatialmath.Log(c.prior.Invert().Compose(p))
	lin := newLinearization(6)
	copy(lin.Residual, e.Slice())
	lin.Jacobians[c.key] = spatialmath.RightJacobianInverse(e)
	return lin, nil
}

// VectorPrior anchors a spatial vector variable to a fixed value.
type VectorPrior struct {
	key   Key
	prior spatialmath.Vector6
	sigma float64
}

// NewVectorPrior builds a spatial vector anchor.
func NewVectorPrior(key Key, prior spatialmath.Vector6, sigma float64) *VectorPrior {
	return &VectorPrior{key: key, prior: prior, sigma: sigma}
}

// Keys lists the constrained variables.
func (c *VectorPrior) Keys() []Key { return []Key{c.key} }

// Dim returns the residual dimension.
func (c *VectorPrior) Dim() int { return 6 }

// Sigma returns the noise scale.
func (c *VectorPrior) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *VectorPrior) Linearize(a Assignment) (*Linearization, error) {
	v, err := a.Vector(c.key)
	if err != nil {
		return nil, err
	}
	lin := newLinearization(6)
	copy(lin.Residual, v.Sub(c.prior).Slice())
	lin.Jacobians[c.key] = identity6(1)
	return lin, nil
}

// ScalarPrior anchors a scalar variable to a fixed value.
type ScalarPrior struct {
	key   Key
	prior float64
	sigma float64
}

// NewScalarPrior builds a scalar anchor.
func NewScalarPrior(key Key, prior, sigma float64) *ScalarPrior {
	return &ScalarPrior{key: key, prior: prior, sigma: sigma}
}

// Keys lists the constrained variables.
func (c *ScalarPrior) Keys() []Key { return []Key{c.key} }

// Dim returns the residual dimension.
func (c *ScalarPrior) Dim() int { return 1 }

// Sigma returns the noise scale.
func (c *ScalarPrior) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *ScalarPrior) Linearize(a Assignment) (*Linearization, error) {
	s, err := a.Scalar(c.key)
	if err != nil {
		return nil, err
	}
	lin := newLinearization(1)
	lin.Residual[0] = s - c.prior
	lin.Jacobians[c.key] = mat.NewDense(1, 1, []float64{1})
	return lin, nil
}
