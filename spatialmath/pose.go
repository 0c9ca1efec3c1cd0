// Package spatialmath defines the rigid-transform and screw algebra used by
// the kinematics and dynamics packages: poses on SE(3), 6-dimensional twists
// and wrenches, exponential coordinates, and the adjoint maps relating them.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/kinodynamics/kinodyn/utils"
)

// Pose is a rigid transform: a unit rotation quaternion plus a translation.
// The zero value is not a valid pose; use NewZeroPose.
type Pose struct {
	R quat.Number
	T r3.Vector
}

// NewZeroPose returns the identity transform.
func NewZeroPose() Pose {
	return Pose{R: quat.Number{Real: 1}}
}

// NewPoseFromPoint returns a pure translation.
func NewPoseFromPoint(pt r3.Vector) Pose {
	return Pose{R: quat.Number{Real: 1}, T: pt}
}

// NewPoseFromAxisAngle returns the pose rotating by theta radians about the
// given axis, with no translation. A zero axis yields the identity.
func NewPoseFromAxisAngle(axis r3.Vector, theta float64) Pose {
	if axis.Norm() == 0 {
		return NewZeroPose()
	}
	a := axis.Normalize()
	s := math.Sin(theta / 2)
	return Pose{R: quat.Number{
		Real: math.Cos(theta / 2),
		Imag: a.X * s,
		Jmag: a.Y * s,
		Kmag: a.Z * s,
	}}
}

// NewPose returns the pose with the given translation and rotation.
func NewPose(pt r3.Vector, rot quat.Number) Pose {
	return Pose{R: rot, T: pt}
}

// Compose returns p followed by o, i.e. the transform mapping o's frame
// through p's frame.
func (p Pose) Compose(o Pose) Pose {
	return Pose{
		R: quat.Mul(p.R, o.R),
		T: p.T.Add(p.RotatePoint(o.T)),
	}
}

// Invert returns the inverse transform.
func (p Pose) Invert() Pose {
	inv := quat.Conj(p.R)
	return Pose{R: inv, T: rotateByQuat(inv, p.T).Mul(-1)}
}

// RotatePoint applies only the rotational part of p to a point.
func (p Pose) RotatePoint(pt r3.Vector) r3.Vector {
	return rotateByQuat(p.R, pt)
}

// TransformPoint applies the full rigid transform to a point.
func (p Pose) TransformPoint(pt r3.Vector) r3.Vector {
	return p.RotatePoint(pt).Add(p.T)
}

// RotationMatrix returns the 3x3 rotation matrix of the pose.
func (p Pose) RotationMatrix() *mat.Dense {
	w, x, y, z := p.R.Real, p.R.Imag, p.R.Jmag, p.R.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	})
}

// AlmostEqual reports whether two poses agree to within epsilon, comparing
// translations componentwise and rotations up to quaternion sign.
func (p Pose) AlmostEqual(o Pose, epsilon float64) bool {
	if !utils.Float64AlmostEqual(p.T.X, o.T.X, epsilon) ||
		!utils.Float64AlmostEqual(p.T.Y, o.T.Y, epsilon) ||
		!utils.Float64AlmostEqual(p.T.Z, o.T.Z, epsilon) {
		return false
	}
	q := o.R
	if p.R.Real*q.Real+p.R.Imag*q.Imag+p.R.Jmag*q.Jmag+p.R.Kmag*q.Kmag < 0 {
		q = quat.Scale(-1, q)
	}
	return utils.Float64AlmostEqual(p.R.Real, q.Real, epsilon) &&
		utils.Float64AlmostEqual(p.R.Imag, q.Imag, epsilon) &&
		utils.Float64AlmostEqual(p.R.Jmag, q.Jmag, epsilon) &&
		utils.Float64AlmostEqual(p.R.Kmag, q.Kmag, epsilon)
}

// Normalize rescales the rotation to a unit quaternion. Composition chains
// drift slowly; callers doing long products should renormalize.
func (p Pose) Normalize() Pose {
	n := math.Sqrt(p.R.Real*p.R.Real + p.R.Imag*p.R.Imag + p.R.Jmag*p.R.Jmag + p.R.Kmag*p.R.Kmag)
	if n == 0 {
		return NewPoseFromPoint(p.T)
	}
	return Pose{R: quat.Scale(1/n, p.R), T: p.T}
}

func rotateByQuat(q quat.Number, v r3.Vector) r3.Vector {
	vq := quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
	r := quat.Mul(quat.Mul(q, vq), quat.Conj(q))
	return r3.Vector{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// R3VectorAlmostEqual compares two R3 vectors within an epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) <= epsilon && math.Abs(a.Y-b.Y) <= epsilon && math.Abs(a.Z-b.Z) <= epsilon
}
