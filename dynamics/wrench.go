package dynamics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/kinodynamics/kinodyn/robot"
	"github.com/kinodynamics/kinodyn/spatialmath"
)

// WrenchBalance is the Newton-Euler balance of one link in its CoM frame:
// G A - ad_V^T (G V) - sum_j F_j - gravity wrench = 0, with one wrench
// variable per joint the link touches.
type WrenchBalance struct {
	pose     Key
	twist    Key
	accel    Key
	wrenches []Key
	inertia  *mat.Dense // 6x6 generalized inertia
	mass     float64
	gravity  r3.Vector
	sigma    float64
}

// NewWrenchBalance builds the wrench balance constraint of a link at a
// timestep. The wrench variable order follows the link's joint id order.
func NewWrenchBalance(l *robot.Link, t int, gravity r3.Vector, sigma float64) *WrenchBalance {
	ids := l.JointIDs()
	wrenches := make([]Key, 0, len(ids))
	for _, jid := range ids {
		wrenches = append(wrenches, WrenchKey(l.ID(), jid, t))
	}
	return &WrenchBalance{
		pose:     PoseKey(l.ID(), t),
		twist:    TwistKey(l.ID(), t),
		accel:    TwistAccelKey(l.ID(), t),
		wrenches: wrenches,
		inertia:  l.GeneralizedInertia(),
		mass:     l.Mass(),
		gravity:  gravity,
		sigma:    sigma,
	}
}

// Keys lists the constrained variables: pose, twist, accel, then wrenches.
func (c *WrenchBalance) Keys() []Key {
	out := []Key{c.pose, c.twist, c.accel}
	return append(out, c.wrenches...)
}

// Dim returns the residual dimension.
func (c *WrenchBalance) Dim() int { return 6 }

// Sigma returns the noise scale.
func (c *WrenchBalance) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *WrenchBalance) Linearize(a Assignment) (*Linearization, error) {
	pose, err := a.Pose(c.pose)
	if err != nil {
		return nil, err
	}
	twist, err := a.Vector(c.twist)
	if err != nil {
		return nil, err
	}
	accel, err := a.Vector(c.accel)
	if err != nil {
		return nil, err
	}

	gv := spatialmath.MulVec6(c.inertia, twist)
	momentum := spatialmath.MulVec6T(spatialmath.SmallAdjoint(twist), gv)
	e := spatialmath.MulVec6(c.inertia, accel).Sub(momentum)
	for _, wk := range c.wrenches {
		w, err := a.Vector(wk)
		if err != nil {
			return nil, err
		}
		e = e.Sub(w)
	}

	// gravity force in the link CoM frame
	localG := pose.Invert().RotatePoint(c.gravity)
	e = e.Sub(spatialmath.NewVector6(r3.Vector{}, localG.Mul(c.mass)))

	jTwist := mat.NewDense(6, 6, nil)
	jTwist.Mul(negate(spatialmath.SmallAdjoint(twist)).T(), c.inertia)
	jTwist.Sub(jTwist, spatialmath.TwistTransposeMap(gv))

	// rotating the pose rotates the gravity wrench: force rows, angular cols
	jPose := mat.NewDense(6, 6, nil)
	gSkew := spatialmath.Skew(localG)
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			jPose.Set(3+r, col, -c.mass*gSkew.At(r, col))
		}
	}

	lin := newLinearization(6)
	copy(lin.Residual, e.Slice())
	lin.Jacobians[c.pose] = jPose
	lin.Jacobians[c.twist] = jTwist
	lin.Jacobians[c.accel] = c.inertia
	for _, wk := range c.wrenches {
		lin.Jacobians[wk] = identity6(-1)
	}
	return lin, nil
}

// WrenchEquivalence maps the wrench a joint applies on its child link into
// the parent link frame: F_pj + Ad_{cTp(q)}^T F_cj = 0.
type WrenchEquivalence struct {
	parentWrench Key
	childWrench  Key
	angle        Key
	restCom      spatialmath.Pose
	screw        spatialmath.Vector6
	sigma        float64
}

// NewWrenchEquivalence builds the wrench equivalence constraint of a joint
// at a timestep.
func NewWrenchEquivalence(j *robot.Joint, t int, sigma float64) *WrenchEquivalence {
	return &WrenchEquivalence{
		parentWrench: WrenchKey(j.ParentID(), j.ID(), t),
		childWrench:  WrenchKey(j.ChildID(), j.ID(), t),
		angle:        JointAngleKey(j.ID(), t),
		restCom:      j.RestComTransform(),
		screw:        j.ScrewAxis(),
		sigma:        sigma,
	}
}

// Keys lists the constrained variables.
func (c *WrenchEquivalence) Keys() []Key {
	return []Key{c.parentWrench, c.childWrench, c.angle}
}

// Dim returns the residual dimension.
func (c *WrenchEquivalence) Dim() int { return 6 }

// Sigma returns the noise scale.
func (c *WrenchEquivalence) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *WrenchEquivalence) Linearize(a Assignment) (*Linearization, error) {
	fp, err := a.Vector(c.parentWrench)
	if err != nil {
		return nil, err
	}
	fc, err := a.Vector(c.childWrench)
	if err != nil {
		return nil, err
	}
	q, err := a.Scalar(c.angle)
	if err != nil {
		return nil, err
	}

	cTp := c.restCom.Compose(spatialmath.Exp(c.screw.Scale(q))).Invert()
	adT := spatialmath.AdjointTranspose(cTp)
	e := fp.Add(spatialmath.MulVec6(adT, fc))

	// d/dq Ad^T F_c = -Ad^T ad_S^T F_c
	adSTfc := spatialmath.MulVec6T(spatialmath.SmallAdjoint(c.screw), fc)
	jq := spatialmath.MulVec6(adT, adSTfc)

	lin := newLinearization(6)
	copy(lin.Residual, e.Slice())
	lin.Jacobians[c.parentWrench] = identity6(1)
	lin.Jacobians[c.childWrench] = adT
	lin.Jacobians[c.angle] = columnOf(jq, -1)
	return lin, nil
}

// Torque projects the child-side joint wrench onto the screw axis:
// S^T F_cj - tau = 0.
type Torque struct {
	wrench Key
	torque Key
	screw  spatialmath.Vector6
	sigma  float64
}

// NewTorque builds the torque constraint of a joint at a timestep.
func NewTorque(j *robot.Joint, t int, sigma float64) *Torque {
	return &Torque{
		wrench: WrenchKey(j.ChildID(), j.ID(), t),
		torque: TorqueKey(j.ID(), t),
		screw:  j.ScrewAxis(),
		sigma:  sigma,
	}
}

// Keys lists the constrained variables.
func (c *Torque) Keys() []Key { return []Key{c.wrench, c.torque} }

// Dim returns the residual dimension.
func (c *Torque) Dim() int { return 1 }

// Sigma returns the noise scale.
func (c *Torque) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *Torque) Linearize(a Assignment) (*Linearization, error) {
	f, err := a.Vector(c.wrench)
	if err != nil {
		return nil, err
	}
	tau, err := a.Scalar(c.torque)
	if err != nil {
		return nil, err
	}

	lin := newLinearization(1)
	lin.Residual[0] = c.screw.Dot(f) - tau
	jw := mat.NewDense(1, 6, nil)
	for i := 0; i < 6; i++ {
		jw.Set(0, i, c.screw[i])
	}
	lin.Jacobians[c.wrench] = jw
	lin.Jacobians[c.torque] = mat.NewDense(1, 1, []float64{-1})
	return lin, nil
}

// WrenchPlanar pins the out-of-plane components of a child-side joint
// wrench to zero for planar mechanisms. The plane is identified by its
// normal, which must be a coordinate axis.
type WrenchPlanar struct {
	wrench  Key
	indices [3]int
	sigma   float64
}

// planarIndices maps an axis-aligned plane normal to the indices of the
// wrench components that must vanish, in [mx my mz fx fy fz] order.
func planarIndices(axis r3.Vector) ([3]int, error) {
	switch {
	case axis.X != 0 && axis.Y == 0 && axis.Z == 0:
		return [3]int{1, 2, 3}, nil
	case axis.Y != 0 && axis.X == 0 && axis.Z == 0:
		return [3]int{0, 2, 4}, nil
	case axis.Z != 0 && axis.X == 0 && axis.Y == 0:
		return [3]int{0, 1, 5}, nil
	default:
		return [3]int{}, NewNonPlanarAxisError()
	}
}

// NewWrenchPlanar builds the planar wrench constraint of a joint at a
// timestep.
func NewWrenchPlanar(j *robot.Joint, t int, axis r3.Vector, sigma float64) (*WrenchPlanar, error) {
	idx, err := planarIndices(axis)
	if err != nil {
		return nil, err
	}
	return &WrenchPlanar{
		wrench:  WrenchKey(j.ChildID(), j.ID(), t),
		indices: idx,
		sigma:   sigma,
	}, nil
}

// Keys lists the constrained variables.
func (c *WrenchPlanar) Keys() []Key { return []Key{c.wrench} }

// Dim returns the residual dimension.
func (c *WrenchPlanar) Dim() int { return 3 }

// Sigma returns the noise scale.
func (c *WrenchPlanar) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *WrenchPlanar) Linearize(a Assignment) (*Linearization, error) {
	f, err := a.Vector(c.wrench)
	if err != nil {
		return nil, err
	}
	lin := newLinearization(3)
	jw := mat.NewDense(3, 6, nil)
	for r, i := range c.indices {
		lin.Residual[r] = f[i]
		jw.Set(r, i, 1)
	}
	lin.Jacobians[c.wrench] = jw
	return lin, nil
}
