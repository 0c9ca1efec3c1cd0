package robot

import (
	"github.com/golang/geo/r3"

	"github.com/kinodynamics/kinodyn/spatialmath"
)

// Joint is a typed coupling between exactly one parent link and one child
// link. Endpoints are held by name and id; a joint never owns its links.
// The screw axis is derived once at construction, expressed in the child
// link's CoM frame, and reused for every kinematic query.
type Joint struct {
	name   string
	id     int
	kind   JointKind
	effort EffortType

	parent   string
	child    string
	parentID int
	childID  int

	axis   r3.Vector           // joint axis in the child link frame
	screw  spatialmath.Vector6 // screw axis in the child CoM frame
	limits Limits

	restLink spatialmath.Pose // child link frame in parent link frame, at rest
	restCom  spatialmath.Pose // child CoM frame in parent CoM frame, at rest
}

// Name returns the joint name.
func (j *Joint) Name() string { return j.name }

// ID returns the joint's integer id, unique within its robot.
func (j *Joint) ID() int { return j.id }

// Kind returns the joint type.
func (j *Joint) Kind() JointKind { return j.kind }

// Effort returns how the joint is driven.
func (j *Joint) Effort() EffortType { return j.effort }

// Parent returns the parent link name.
func (j *Joint) Parent() string { return j.parent }

// Child returns the child link name.
func (j *Joint) Child() string { return j.child }

// ParentID returns the parent link id.
func (j *Joint) ParentID() int { return j.parentID }

// ChildID returns the child link id.
func (j *Joint) ChildID() int { return j.childID }

// ScrewAxis returns the joint's screw axis in the child CoM frame.
func (j *Joint) ScrewAxis() spatialmath.Vector6 { return j.screw }

// Axis returns the joint axis in the child link frame.
func (j *Joint) Axis() r3.Vector { return j.axis }

// Limits returns the coordinate limits.
func (j *Joint) Limits() Limits { return j.limits }

// RestTransform returns the child link frame relative to the parent link
// frame at the rest (zero) coordinate.
func (j *Joint) RestTransform() spatialmath.Pose { return j.restLink }

// RestComTransform returns the child CoM frame relative to the parent CoM
// frame at the rest coordinate.
func (j *Joint) RestComTransform() spatialmath.Pose { return j.restCom }

// Transform returns the child link frame relative to the parent link frame
// at coordinate q: the rest transform composed with the joint motion about
// the axis through the child frame origin. An out-of-limit coordinate still
// yields the transform, alongside a non-nil advisory error.
func (j *Joint) Transform(q float64) (spatialmath.Pose, error) {
	var motion spatialmath.Pose
	switch j.kind {
	case Revolute:
		motion = spatialmath.NewPoseFromAxisAngle(j.axis, q)
	case Prismatic:
		motion = spatialmath.NewPoseFromPoint(j.axis.Normalize().Mul(q))
	case Fixed:
		motion = spatialmath.NewZeroPose()
	}
	return j.restLink.Compose(motion), j.checkLimit(q)
}

// ParentToChildCom returns the child CoM frame relative to the parent CoM
// frame at coordinate q: the rest CoM transform composed with the screw
// exponential. This is the product-of-exponentials kernel the constraint
// equations share.
func (j *Joint) ParentToChildCom(q float64) (spatialmath.Pose, error) {
	if j.kind == Fixed {
		return j.restCom, j.checkLimit(q)
	}
	return j.restCom.Compose(spatialmath.Exp(j.screw.Scale(q))), j.checkLimit(q)
}

// ChildToParentCom returns the parent CoM frame relative to the child CoM
// frame at coordinate q; the inverse of ParentToChildCom.
func (j *Joint) ChildToParentCom(q float64) (spatialmath.Pose, error) {
	p, err := j.ParentToChildCom(q)
	return p.Invert(), err
}

func (j *Joint) checkLimit(q float64) error {
	if j.kind == Fixed {
		if q != 0 {
			return newOOBError(j.name, q, 0, 0)
		}
		return nil
	}
	if q < j.limits.Lower || q > j.limits.Upper {
		return newOOBError(j.name, q, j.limits.Lower, j.limits.Upper)
	}
	return nil
}

func (j *Joint) clone() *Joint {
	out := *j
	return &out
}
