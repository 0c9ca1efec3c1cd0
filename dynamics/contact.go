package dynamics

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/kinodynamics/kinodyn/spatialmath"
)

// ContactPoint fixes a point on a link to the ground plane for the duration
// of a stance. Offset is expressed in the link CoM frame, Height is the
// ground height along the up axis.
type ContactPoint struct {
	Link   string
	Offset r3.Vector
	Height float64
}

// ContactPose holds a contact point at the ground height: the world height
// of the transformed offset, measured against gravity, minus the ground
// height must vanish.
type ContactPose struct {
	pose   Key
	offset r3.Vector
	up     r3.Vector // unit vector opposing gravity
	height float64
	sigma  float64
}

// NewContactPose builds the contact height constraint for a link at a
// timestep. gravity must be nonzero.
func NewContactPose(link, t int, offset r3.Vector, gravity r3.Vector, height, sigma float64) (*ContactPose, error) {
	if gravity.Norm() == 0 {
		return nil, NewZeroGravityError()
	}
	return &ContactPose{
		pose:   PoseKey(link, t),
		offset: offset,
		up:     gravity.Mul(-1 / gravity.Norm()),
		height: height,
		sigma:  sigma,
	}, nil
}

// Keys lists the constrained variables.
func (c *ContactPose) Keys() []Key { return []Key{c.pose} }

// Dim returns the residual dimension.
func (c *ContactPose) Dim() int { return 1 }

// Sigma returns the noise scale.
func (c *ContactPose) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *ContactPose) Linearize(a Assignment) (*Linearization, error) {
	pose, err := a.Pose(c.pose)
	if err != nil {
		return nil, err
	}
	world := pose.TransformPoint(c.offset)

	lin := newLinearization(1)
	lin.Residual[0] = c.up.Dot(world) - c.height

	// d(T d)/dxi = [-R [d]x | R] under right perturbation, projected on up
	rot := pose.RotationMatrix()
	rd := mat.NewDense(3, 3, nil)
	rd.Mul(rot, spatialmath.Skew(c.offset))
	u := []float64{c.up.X, c.up.Y, c.up.Z}
	j := mat.NewDense(1, 6, nil)
	for col := 0; col < 3; col++ {
		var ang, lift float64
		for k := 0; k < 3; k++ {
			ang -= u[k] * rd.At(k, col)
			lift += u[k] * rot.At(k, col)
		}
		j.Set(0, col, ang)
		j.Set(0, 3+col, lift)
	}
	lin.Jacobians[c.pose] = j
	return lin, nil
}

// ContactTwist pins the linear velocity of a contact point to zero:
// v + w x d = 0 in the link CoM frame.
type ContactTwist struct {
	twist  Key
	offset r3.Vector
	sigma  float64
}

// NewContactTwist builds the zero contact velocity constraint for a link at
// a timestep.
func NewContactTwist(link, t int, offset r3.Vector, sigma float64) *ContactTwist {
	return &ContactTwist{twist: TwistKey(link, t), offset: offset, sigma: sigma}
}

// Keys lists the constrained variables.
func (c *ContactTwist) Keys() []Key { return []Key{c.twist} }

// Dim returns the residual dimension.
func (c *ContactTwist) Dim() int { return 3 }

// Sigma returns the noise scale.
func (c *ContactTwist) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *ContactTwist) Linearize(a Assignment) (*Linearization, error) {
	v, err := a.Vector(c.twist)
	if err != nil {
		return nil, err
	}
	lin := newLinearization(3)
	pointVel := v.Linear().Add(v.Angular().Cross(c.offset))
	lin.Residual[0] = pointVel.X
	lin.Residual[1] = pointVel.Y
	lin.Residual[2] = pointVel.Z
	lin.Jacobians[c.twist] = contactPointJacobian(c.offset)
	return lin, nil
}

// ContactAccel pins the linear acceleration of a contact point to zero in
// the link CoM frame.
type ContactAccel struct {
	accel  Key
	offset r3.Vector
	sigma  float64
}

// NewContactAccel builds the zero contact acceleration constraint for a
// link at a timestep.
func NewContactAccel(link, t int, offset r3.Vector, sigma float64) *ContactAccel {
	return &ContactAccel{accel: TwistAccelKey(link, t), offset: offset, sigma: sigma}
}

// Keys lists the constrained variables.
func (c *ContactAccel) Keys() []Key { return []Key{c.accel} }

// Dim returns the residual dimension.
func (c *ContactAccel) Dim() int { return 3 }

// Sigma returns the noise scale.
func (c *ContactAccel) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *ContactAccel) Linearize(a Assignment) (*Linearization, error) {
	av, err := a.Vector(c.accel)
	if err != nil {
		return nil, err
	}
	lin := newLinearization(3)
	pointAcc := av.Linear().Add(av.Angular().Cross(c.offset))
	lin.Residual[0] = pointAcc.X
	lin.Residual[1] = pointAcc.Y
	lin.Residual[2] = pointAcc.Z
	lin.Jacobians[c.accel] = contactPointJacobian(c.offset)
	return lin, nil
}

// contactPointJacobian is [-[d]x | I3], the map from a spatial vector to
// the linear motion of the offset point.
func contactPointJacobian(offset r3.Vector) *mat.Dense {
	j := mat.NewDense(3, 6, nil)
	dSkew := spatialmath.Skew(offset)
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			j.Set(r, col, -dSkew.At(r, col))
		}
		j.Set(r, 3+r, 1)
	}
	return j
}

// PointGoal drives a point on a link toward a world-frame goal:
// T d - goal = 0. Swing and stance targets in trajectory planning use it.
type PointGoal struct {
	pose   Key
	offset r3.Vector
	goal   r3.Vector
	sigma  float64
}

// NewPointGoal builds the point goal constraint for a link at a timestep.
func NewPointGoal(link, t int, offset, goal r3.Vector, sigma float64) *PointGoal {
	return &PointGoal{pose: PoseKey(link, t), offset: offset, goal: goal, sigma: sigma}
}

// Keys lists the constrained variables.
func (c *PointGoal) Keys() []Key { return []Key{c.pose} }

// Dim returns the residual dimension.
func (c *PointGoal) Dim() int { return 3 }

// Sigma returns the noise scale.
func (c *PointGoal) Sigma() float64 { return c.sigma }

// Linearize evaluates the residual and Jacobians at a.
func (c *PointGoal) Linearize(a Assignment) (*Linearization, error) {
	pose, err := a.Pose(c.pose)
	if err != nil {
		return nil, err
	}
	world := pose.TransformPoint(c.offset)

	lin := newLinearization(3)
	lin.Residual[0] = world.X - c.goal.X
	lin.Residual[1] = world.Y - c.goal.Y
	lin.Residual[2] = world.Z - c.goal.Z

	rot := pose.RotationMatrix()
	dSkew := spatialmath.Skew(c.offset)
	rd := mat.NewDense(3, 3, nil)
	rd.Mul(rot, dSkew)
	j := mat.NewDense(3, 6, nil)
	for r := 0; r < 3; r++ {
		for col := 0; col < 3; col++ {
			j.Set(r, col, -rd.At(r, col))
			j.Set(r, 3+col, rot.At(r, col))
		}
	}
	lin.Jacobians[c.pose] = j
	return lin, nil
}
