package dynamics

import (
	"sort"

	"github.com/kinodynamics/kinodyn/spatialmath"
)

// Assignment maps variable keys to values. Poses hold spatialmath.Pose,
// twists/accelerations/wrenches hold spatialmath.Vector6, joint coordinates
// and durations hold float64. Accessors are typed and return an error for
// missing keys or mismatched value types.
type Assignment map[Key]any

// Pose returns the pose stored under k.
func (a Assignment) Pose(k Key) (spatialmath.Pose, error) {
	v, ok := a[k]
	if !ok {
		return spatialmath.Pose{}, NewMissingKeyError(k)
	}
	p, ok := v.(spatialmath.Pose)
	if !ok {
		return spatialmath.Pose{}, NewWrongValueTypeError(k, "pose")
	}
	return p, nil
}

// Vector returns the spatial vector stored under k.
func (a Assignment) Vector(k Key) (spatialmath.Vector6, error) {
	v, ok := a[k]
	if !ok {
		return spatialmath.Vector6{}, NewMissingKeyError(k)
	}
	vec, ok := v.(spatialmath.Vector6)
	if !ok {
		return spatialmath.Vector6{}, NewWrongValueTypeError(k, "spatial vector")
	}
	return vec, nil
}

// Scalar returns the scalar stored under k.
func (a Assignment) Scalar(k Key) (float64, error) {
	v, ok := a[k]
	if !ok {
		return 0, NewMissingKeyError(k)
	}
	s, ok := v.(float64)
	if !ok {
		return 0, NewWrongValueTypeError(k, "scalar")
	}
	return s, nil
}

// SetPose stores a pose under k.
func (a Assignment) SetPose(k Key, p spatialmath.Pose) { a[k] = p }

// SetVector stores a spatial vector under k.
func (a Assignment) SetVector(k Key, v spatialmath.Vector6) { a[k] = v }

// SetScalar stores a scalar under k.
func (a Assignment) SetScalar(k Key, s float64) { a[k] = s }

// Has reports whether k has a value.
func (a Assignment) Has(k Key) bool {
	_, ok := a[k]
	return ok
}

// Keys returns all assigned keys in the stable key order.
func (a Assignment) Keys() []Key {
	out := make([]Key, 0, len(a))
	for k := range a {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

// Clone returns a shallow copy. Values are immutable value types, so a
// shallow copy is an independent assignment.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Merge copies all of o's entries into a, overwriting collisions.
func (a Assignment) Merge(o Assignment) {
	for k, v := range o {
		a[k] = v
	}
}

// Retract applies a local update to the value under k: poses compose with
// the exponential of delta, vectors and scalars add. delta must have
// k.LocalDim() entries.
func (a Assignment) Retract(k Key, delta []float64) error {
	switch k.Kind {
	case KindPose:
		p, err := a.Pose(k)
		if err != nil {
			return err
		}
		var xi spatialmath.Vector6
		copy(xi[:], delta)
		a[k] = p.Compose(spatialmath.Exp(xi))
	case KindTwist, KindTwistAccel, KindWrench:
		v, err := a.Vector(k)
		if err != nil {
			return err
		}
		var d spatialmath.Vector6
		copy(d[:], delta)
		a[k] = v.Add(d)
	default:
		s, err := a.Scalar(k)
		if err != nil {
			return err
		}
		a[k] = s + delta[0]
	}
	return nil
}
