package robot

import (
	"go.uber.org/multierr"

	"github.com/kinodynamics/kinodyn/spatialmath"
)

// LinkTransforms evaluates the relative pose of every child link frame in
// its parent link frame at the given joint coordinates. Coordinates default
// to zero for joints not present in the map; an unknown joint name is
// fatal. Out-of-limit coordinates are advisory: the transforms are still
// returned alongside the combined limit error.
func (r *Robot) LinkTransforms(coords map[string]float64) (map[string]map[string]spatialmath.Pose, error) {
	if err := r.checkCoordNames(coords); err != nil {
		return nil, err
	}
	out := make(map[string]map[string]spatialmath.Pose, len(r.links))
	var oob error
	for _, j := range r.joints {
		pose, err := j.Transform(coords[j.name])
		oob = multierr.Combine(oob, err)
		m, ok := out[j.child]
		if !ok {
			m = make(map[string]spatialmath.Pose)
			out[j.child] = m
		}
		m[j.parent] = pose
	}
	return out, oob
}

// ComTransforms evaluates the relative pose of every child link CoM frame
// in its parent link CoM frame at the given joint coordinates, with the
// same defaulting and error behavior as LinkTransforms.
func (r *Robot) ComTransforms(coords map[string]float64) (map[string]map[string]spatialmath.Pose, error) {
	if err := r.checkCoordNames(coords); err != nil {
		return nil, err
	}
	out := make(map[string]map[string]spatialmath.Pose, len(r.links))
	var oob error
	for _, j := range r.joints {
		pose, err := j.ParentToChildCom(coords[j.name])
		oob = multierr.Combine(oob, err)
		m, ok := out[j.child]
		if !ok {
			m = make(map[string]spatialmath.Pose)
			out[j.child] = m
		}
		m[j.parent] = pose
	}
	return out, oob
}

// ComTransform evaluates one joint's child-CoM-in-parent-CoM pose at
// coordinate q.
func (r *Robot) ComTransform(joint string, q float64) (spatialmath.Pose, error) {
	j, err := r.Joint(joint)
	if err != nil {
		return spatialmath.Pose{}, err
	}
	return j.ParentToChildCom(q)
}

// ScrewAxes returns the screw axis of every joint keyed by joint name.
func (r *Robot) ScrewAxes() map[string]spatialmath.Vector6 {
	out := make(map[string]spatialmath.Vector6, len(r.joints))
	for _, j := range r.joints {
		out[j.name] = j.screw
	}
	return out
}

// JointLowerLimits returns the lower position limit of every joint keyed by
// joint name.
func (r *Robot) JointLowerLimits() map[string]float64 {
	out := make(map[string]float64, len(r.joints))
	for _, j := range r.joints {
		out[j.name] = j.limits.Lower
	}
	return out
}

// JointUpperLimits returns the upper position limit of every joint keyed by
// joint name.
func (r *Robot) JointUpperLimits() map[string]float64 {
	out := make(map[string]float64, len(r.joints))
	for _, j := range r.joints {
		out[j.name] = j.limits.Upper
	}
	return out
}

// JointLimitThresholds returns the limit approach threshold of every joint
// keyed by joint name.
func (r *Robot) JointLimitThresholds() map[string]float64 {
	out := make(map[string]float64, len(r.joints))
	for _, j := range r.joints {
		out[j.name] = j.limits.Threshold
	}
	return out
}

func (r *Robot) checkCoordNames(coords map[string]float64) error {
	var err error
	for name := range coords {
		if _, ok := r.jointByName[name]; !ok {
			err = multierr.Combine(err, NewUnknownJointError(name))
		}
	}
	return err
}
