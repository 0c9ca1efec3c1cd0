package dynamics

import (
	"gonum.org/v1/gonum/mat"

	"github.com/kinodynamics/kinodyn/robot"
	"github.com/kinodynamics/kinodyn/spatialmath"
)

// PoseClosure relates the world CoM poses of a joint's two links through
// the joint coordinate: Log(wTc^-1 wTp pMc Exp(S q)) vanishes when the
// poses are consistent with the angle. Holds for loop joints as well, which
// is how closed topologies stay implicit.
type PoseClosure struct {
	parentPose Key
	childPose  Key
	angle      Key
	restCom    spatialmath.Pose
	screw      spatialmath.Vector6
	sigma      float64
}

// NewPoseClosure builds the pose closure constraint for a joint at a
// timestep.
func NewPoseClosure(j *robot.Joint, t int, sigma float64) *PoseClosure {
	return &PoseClosure{
		parentPose: PoseKey(j.ParentID(), t),
		childPose:  PoseKey(j.ChildID(), t),
		angle:      JointAngleKey(j.ID(), t),
		restCom:    j.RestComTransform(),
		screw:      j.ScrewAxis(),
		sigma:      sigma,
	}
}

// Keys lists the constrained variables.
func (c *PoseClosure) Keys() []Key { return []Key{c.parentPose, c.childPose, c.angle} }

// Dim returns the residual dimension.
func (c *PoseClosure) Dim() int { return 6 }

// Sigma returns the noise scale.
func (c *PoseClosure) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *PoseClosure) Linearize(a Assignment) (*Linearization, error) {
	wTp, err := a.Pose(c.parentPose)
	if err != nil {
		return nil, err
	}
	wTc, err := a.Pose(c.childPose)
	if err != nil {
		return nil, err
	}
	q, err := a.Scalar(c.angle)
	if err != nil {
		return nil, err
	}

	motion := c.restCom.Compose(spatialmath.Exp(c.screw.Scale(q)))
	e := spatialmath.Log(wTc.Invert().Compose(wTp).Compose(motion))

	jri := spatialmath.RightJacobianInverse(e)
	jp := mat.NewDense(6, 6, nil)
	jp.Mul(jri, spatialmath.Adjoint(motion.Invert()))

	lin := newLinearization(6)
	copy(lin.Residual, e.Slice())
	lin.Jacobians[c.parentPose] = jp
	lin.Jacobians[c.childPose] = negate(spatialmath.LeftJacobianInverse(e))
	lin.Jacobians[c.angle] = columnOf(spatialmath.MulVec6(jri, c.screw), 1)
	return lin, nil
}

// TwistClosure propagates body twists across a joint:
// Vc - Ad_{cTp(q)} Vp - S qdot = 0.
type TwistClosure struct {
	parentTwist Key
	childTwist  Key
	angle       Key
	vel         Key
	restCom     spatialmath.Pose
	screw       spatialmath.Vector6
	sigma       float64
}

// NewTwistClosure builds the twist closure constraint for a joint at a
// timestep.
func NewTwistClosure(j *robot.Joint, t int, sigma float64) *TwistClosure {
	return &TwistClosure{
		parentTwist: TwistKey(j.ParentID(), t),
		childTwist:  TwistKey(j.ChildID(), t),
		angle:       JointAngleKey(j.ID(), t),
		vel:         JointVelKey(j.ID(), t),
		restCom:     j.RestComTransform(),
		screw:       j.ScrewAxis(),
		sigma:       sigma,
	}
}

// Keys lists the constrained variables.
func (c *TwistClosure) Keys() []Key {
	return []Key{c.parentTwist, c.childTwist, c.angle, c.vel}
}

// Dim returns the residual dimension.
func (c *TwistClosure) Dim() int { return 6 }

// Sigma returns the noise scale.
func (c *TwistClosure) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *TwistClosure) Linearize(a Assignment) (*Linearization, error) {
	vp, err := a.Vector(c.parentTwist)
	if err != nil {
		return nil, err
	}
	vc, err := a.Vector(c.childTwist)
	if err != nil {
		return nil, err
	}
	q, err := a.Scalar(c.angle)
	if err != nil {
		return nil, err
	}
	qdot, err := a.Scalar(c.vel)
	if err != nil {
		return nil, err
	}

	cTp := c.restCom.Compose(spatialmath.Exp(c.screw.Scale(q))).Invert()
	ad := spatialmath.Adjoint(cTp)
	adVp := spatialmath.MulVec6(ad, vp)
	e := vc.Sub(adVp).Sub(c.screw.Scale(qdot))

	lin := newLinearization(6)
	copy(lin.Residual, e.Slice())
	lin.Jacobians[c.childTwist] = identity6(1)
	lin.Jacobians[c.parentTwist] = negate(ad)
	lin.Jacobians[c.angle] = columnOf(spatialmath.MulVec6(spatialmath.SmallAdjoint(c.screw), adVp), 1)
	lin.Jacobians[c.vel] = columnOf(c.screw, -1)
	return lin, nil
}

// AccelClosure propagates body twist accelerations across a joint:
// Ac - Ad_{cTp(q)} Ap - ad_{Vc}(S qdot) - S qddot = 0.
type AccelClosure struct {
	parentAccel Key
	childAccel  Key
	childTwist  Key
	angle       Key
	vel         Key
	accel       Key
	restCom     spatialmath.Pose
	screw       spatialmath.Vector6
	sigma       float64
}

// NewAccelClosure builds the acceleration closure constraint for a joint at
// a timestep.
func NewAccelClosure(j *robot.Joint, t int, sigma float64) *AccelClosure {
	return &AccelClosure{
		parentAccel: TwistAccelKey(j.ParentID(), t),
		childAccel:  TwistAccelKey(j.ChildID(), t),
		childTwist:  TwistKey(j.ChildID(), t),
		angle:       JointAngleKey(j.ID(), t),
		vel:         JointVelKey(j.ID(), t),
		accel:       JointAccelKey(j.ID(), t),
		restCom:     j.RestComTransform(),
		screw:       j.ScrewAxis(),
		sigma:       sigma,
	}
}

// Keys lists the constrained variables.
func (c *AccelClosure) Keys() []Key {
	return []Key{c.parentAccel, c.childAccel, c.childTwist, c.angle, c.vel, c.accel}
}

// Dim returns the residual dimension.
func (c *AccelClosure) Dim() int { return 6 }

// Sigma returns the noise scale.
func (c *AccelClosure) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *AccelClosure) Linearize(a Assignment) (*Linearization, error) {
	ap, err := a.Vector(c.parentAccel)
	if err != nil {
		return nil, err
	}
	ac, err := a.Vector(c.childAccel)
	if err != nil {
		return nil, err
	}
	vc, err := a.Vector(c.childTwist)
	if err != nil {
		return nil, err
	}
	q, err := a.Scalar(c.angle)
	if err != nil {
		return nil, err
	}
	qdot, err := a.Scalar(c.vel)
	if err != nil {
		return nil, err
	}
	qddot, err := a.Scalar(c.accel)
	if err != nil {
		return nil, err
	}

	cTp := c.restCom.Compose(spatialmath.Exp(c.screw.Scale(q))).Invert()
	ad := spatialmath.Adjoint(cTp)
	adAp := spatialmath.MulVec6(ad, ap)
	sqdot := c.screw.Scale(qdot)
	coriolis := spatialmath.MulVec6(spatialmath.SmallAdjoint(vc), sqdot)
	e := ac.Sub(adAp).Sub(coriolis).Sub(c.screw.Scale(qddot))

	lin := newLinearization(6)
	copy(lin.Residual, e.Slice())
	lin.Jacobians[c.childAccel] = identity6(1)
	lin.Jacobians[c.parentAccel] = negate(ad)
	lin.Jacobians[c.childTwist] = spatialmath.SmallAdjoint(sqdot)
	lin.Jacobians[c.angle] = columnOf(spatialmath.MulVec6(spatialmath.SmallAdjoint(c.screw), adAp), 1)
	lin.Jacobians[c.vel] = columnOf(spatialmath.MulVec6(spatialmath.SmallAdjoint(vc), c.screw), -1)
	lin.Jacobians[c.accel] = columnOf(c.screw, -1)
	return lin, nil
}
