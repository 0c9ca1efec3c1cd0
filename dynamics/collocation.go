package dynamics

import (
	"gonum.org/v1/gonum/mat"
)

// CollocationScheme selects the numerical integration rule tying adjacent
// timesteps together.
type CollocationScheme int

// Supported and declared schemes. RungeKutta and HermiteSimpson are
// declared for completeness but not implemented; requesting them fails.
const (
	Euler CollocationScheme = iota
	Trapezoidal
	RungeKutta
	HermiteSimpson
)

func (s CollocationScheme) String() string {
	switch s {
	case Euler:
		return "euler"
	case Trapezoidal:
		return "trapezoidal"
	case RungeKutta:
		return "runge-kutta"
	case HermiteSimpson:
		return "hermite-simpson"
	default:
		return "unknown"
	}
}

// EulerCollocation ties a scalar state to its derivative across one fixed
// step: x0 + dt dx0 - x1 = 0.
type EulerCollocation struct {
	x0, dx0, x1 Key
	dt          float64
	sigma       float64
}

// NewEulerCollocation builds a fixed-step Euler tie.
func NewEulerCollocation(x0, dx0, x1 Key, dt, sigma float64) *EulerCollocation {
	return &EulerCollocation{x0: x0, dx0: dx0, x1: x1, dt: dt, sigma: sigma}
}

// Keys lists the constrained variables.
func (c *EulerCollocation) Keys() []Key { return []Key{c.x0, c.dx0, c.x1} }

// Dim returns the residual dimension.
func (c *EulerCollocation) Dim() int { return 1 }

// Sigma returns the noise scale.
func (c *EulerCollocation) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *EulerCollocation) Linearize(a Assignment) (*Linearization, error) {
	x0, err := a.Scalar(c.x0)
	if err != nil {
		return nil, err
	}
	dx0, err := a.Scalar(c.dx0)
	if err != nil {
		return nil, err
	}
	x1, err := a.Scalar(c.x1)
	if err != nil {
		return nil, err
	}
	lin := newLinearization(1)
	lin.Residual[0] = x0 + c.dt*dx0 - x1
	lin.Jacobians[c.x0] = mat.NewDense(1, 1, []float64{1})
	lin.Jacobians[c.dx0] = mat.NewDense(1, 1, []float64{c.dt})
	lin.Jacobians[c.x1] = mat.NewDense(1, 1, []float64{-1})
	return lin, nil
}

// TrapezoidalCollocation ties a scalar state to its derivative across one
// fixed step: x0 + dt/2 (dx0 + dx1) - x1 = 0.
type TrapezoidalCollocation struct {
	x0, dx0, dx1, x1 Key
	dt               float64
	sigma            float64
}

// NewTrapezoidalCollocation builds a fixed-step trapezoidal tie.
func NewTrapezoidalCollocation(x0, dx0, dx1, x1 Key, dt, sigma float64) *TrapezoidalCollocation {
	return &TrapezoidalCollocation{x0: x0, dx0: dx0, dx1: dx1, x1: x1, dt: dt, sigma: sigma}
}

// Keys lists the constrained variables.
func (c *TrapezoidalCollocation) Keys() []Key { return []Key{c.x0, c.dx0, c.dx1, c.x1} }

// Dim returns the residual dimension.
func (c *TrapezoidalCollocation) Dim() int { return 1 }

// Sigma returns the noise scale.
func (c *TrapezoidalCollocation) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *TrapezoidalCollocation) Linearize(a Assignment) (*Linearization, error) {
	x0, err := a.Scalar(c.x0)
	if err != nil {
		return nil, err
	}
	dx0, err := a.Scalar(c.dx0)
	if err != nil {
		return nil, err
	}
	dx1, err := a.Scalar(c.dx1)
	if err != nil {
		return nil, err
	}
	x1, err := a.Scalar(c.x1)
	if err != nil {
		return nil, err
	}
	lin := newLinearization(1)
	lin.Residual[0] = x0 + c.dt/2*(dx0+dx1) - x1
	lin.Jacobians[c.x0] = mat.NewDense(1, 1, []float64{1})
	lin.Jacobians[c.dx0] = mat.NewDense(1, 1, []float64{c.dt / 2})
	lin.Jacobians[c.dx1] = mat.NewDense(1, 1, []float64{c.dt / 2})
	lin.Jacobians[c.x1] = mat.NewDense(1, 1, []float64{-1})
	return lin, nil
}

// EulerPhaseCollocation is the Euler tie with the step duration as a free
// variable: x0 + dt dx0 - x1 = 0. The dt*dx0 product makes the constraint
// bilinear; both partials are exact.
type EulerPhaseCollocation struct {
	x0, dx0, x1, phase Key
	sigma              float64
}

// NewEulerPhaseCollocation builds a variable-duration Euler tie.
func NewEulerPhaseCollocation(x0, dx0, x1, phase Key, sigma float64) *EulerPhaseCollocation {
	return &EulerPhaseCollocation{x0: x0, dx0: dx0, x1: x1, phase: phase, sigma: sigma}
}

// Keys lists the constrained variables.
func (c *EulerPhaseCollocation) Keys() []Key { return []Key{c.x0, c.dx0, c.x1, c.phase} }

// Dim returns the residual dimension.
func (c *EulerPhaseCollocation) Dim() int { return 1 }

// Sigma returns the noise scale.
func (c *EulerPhaseCollocation) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *EulerPhaseCollocation) Linearize(a Assignment) (*Linearization, error) {
	x0, err := a.Scalar(c.x0)
	if err != nil {
		return nil, err
	}
	dx0, err := a.Scalar(c.dx0)
	if err != nil {
		return nil, err
	}
	x1, err := a.Scalar(c.x1)
	if err != nil {
		return nil, err
	}
	dt, err := a.Scalar(c.phase)
	if err != nil {
		return nil, err
	}
	lin := newLinearization(1)
	lin.Residual[0] = x0 + dt*dx0 - x1
	lin.Jacobians[c.x0] = mat.NewDense(1, 1, []float64{1})
	lin.Jacobians[c.dx0] = mat.NewDense(1, 1, []float64{dt})
	lin.Jacobians[c.x1] = mat.NewDense(1, 1, []float64{-1})
	lin.Jacobians[c.phase] = mat.NewDense(1, 1, []float64{dx0})
	return lin, nil
}

// TrapezoidalPhaseCollocation is the trapezoidal tie with the step duration
// as a free variable: x0 + dt/2 (dx0 + dx1) - x1 = 0.
type TrapezoidalPhaseCollocation struct {
	x0, dx0, dx1, x1, phase Key
	sigma                   float64
}

// NewTrapezoidalPhaseCollocation builds a variable-duration trapezoidal
// tie.
func NewTrapezoidalPhaseCollocation(x0, dx0, dx1, x1, phase Key, sigma float64) *TrapezoidalPhaseCollocation {
	return &TrapezoidalPhaseCollocation{x0: x0, dx0: dx0, dx1: dx1, x1: x1, phase: phase, sigma: sigma}
}

// Keys lists the constrained variables.
func (c *TrapezoidalPhaseCollocation) Keys() []Key {
	return []Key{c.x0, c.dx0, c.dx1, c.x1, c.phase}
}

// Dim returns the residual dimension.
func (c *TrapezoidalPhaseCollocation) Dim() int { return 1 }

// Sigma returns the noise scale.
func (c *TrapezoidalPhaseCollocation) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *TrapezoidalPhaseCollocation) Linearize(a Assignment) (*Linearization, error) {
	x0, err := a.Scalar(c.x0)
	if err != nil {
		return nil, err
	}
	dx0, err := a.Scalar(c.dx0)
	if err != nil {
		return nil, err
	}
	dx1, err := a.Scalar(c.dx1)
	if err != nil {
		return nil, err
	}
	x1, err := a.Scalar(c.x1)
	if err != nil {
		return nil, err
	}
	dt, err := a.Scalar(c.phase)
	if err != nil {
		return nil, err
	}
	lin := newLinearization(1)
	lin.Residual[0] = x0 + dt/2*(dx0+dx1) - x1
	lin.Jacobians[c.x0] = mat.NewDense(1, 1, []float64{1})
	lin.Jacobians[c.dx0] = mat.NewDense(1, 1, []float64{dt / 2})
	lin.Jacobians[c.dx1] = mat.NewDense(1, 1, []float64{dt / 2})
	lin.Jacobians[c.x1] = mat.NewDense(1, 1, []float64{-1})
	lin.Jacobians[c.phase] = mat.NewDense(1, 1, []float64{(dx0 + dx1) / 2})
	return lin, nil
}
