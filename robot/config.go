// Package robot models an articulated multibody machine as a topology of
// rigid links coupled by typed joints. The topology is a general graph:
// closed kinematic loops are permitted. The Robot owns every Link and Joint;
// links and joints refer to one another only through ids and name lookup.
package robot

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/kinodynamics/kinodyn/spatialmath"
)

// JointKind enumerates the supported joint types. It is a closed set: the
// coordinate-to-transform mapping switches exhaustively over it.
type JointKind int

const (
	// Revolute joints rotate about an axis by the joint coordinate (radians).
	Revolute JointKind = iota
	// Prismatic joints translate along an axis by the joint coordinate.
	Prismatic
	// Fixed joints rigidly couple their links; the coordinate is always zero.
	Fixed
)

func (k JointKind) String() string {
	switch k {
	case Revolute:
		return "revolute"
	case Prismatic:
		return "prismatic"
	case Fixed:
		return "fixed"
	}
	return "unknown"
}

// EffortType describes how a joint is driven.
type EffortType int

const (
	// Actuated joints are torque-controlled.
	Actuated EffortType = iota
	// Unactuated joints are passive.
	Unactuated
	// Impedance joints are driven through a compliant element.
	Impedance
)

func (e EffortType) String() string {
	switch e {
	case Actuated:
		return "actuated"
	case Unactuated:
		return "unactuated"
	case Impedance:
		return "impedance"
	}
	return "unknown"
}

// Inertia holds the rotational inertia tensor of a link about its center of
// mass, in the CoM frame.
type Inertia struct {
	XX, YY, ZZ float64
	XY, XZ, YZ float64
}

// Limits bound a joint coordinate. Threshold is the margin at which a
// limit-violation objective engages.
type Limits struct {
	Lower     float64
	Upper     float64
	Threshold float64
}

// LinkConfig is the description record for one rigid link, as produced by an
// external robot-description loader.
type LinkConfig struct {
	Name      string
	Mass      float64
	Inertia   Inertia
	Pose      spatialmath.Pose // rest pose of the link frame in the world frame
	ComOffset spatialmath.Pose // pose of the CoM frame in the link frame
	Fixed     bool
	FixedPose *spatialmath.Pose // world pose pin; defaults to the rest CoM pose
}

// JointConfig is the description record for one joint. Axis is expressed in
// the child link frame, with the joint located at the child link frame
// origin; the screw axis in the child CoM frame is derived at construction.
type JointConfig struct {
	Name   string
	Kind   JointKind
	Effort EffortType
	Parent string
	Child  string
	Axis   r3.Vector
	Limits Limits
}

// Config is the full robot description consumed by New.
type Config struct {
	Name   string
	Links  []LinkConfig
	Joints []JointConfig
}

// Validate checks the description records for structural defects that do not
// require the assembled topology: empty or duplicate names, dangling joint
// endpoints, degenerate axes, inverted limits.
func (c *Config) Validate() error {
	var errAll error
	if len(c.Links) == 0 {
		return errors.New("robot config has no links")
	}
	linkNames := make(map[string]bool, len(c.Links))
	for _, lc := range c.Links {
		if lc.Name == "" {
			multierr.AppendInto(&errAll, errors.New("link with empty name"))
			continue
		}
		if linkNames[lc.Name] {
			multierr.AppendInto(&errAll, NewDuplicateNameError("link", lc.Name))
		}
		linkNames[lc.Name] = true
		if lc.Mass < 0 {
			multierr.AppendInto(&errAll, errors.Errorf("link %q has negative mass", lc.Name))
		}
	}
	jointNames := make(map[string]bool, len(c.Joints))
	for _, jc := range c.Joints {
		if jc.Name == "" {
			multierr.AppendInto(&errAll, errors.New("joint with empty name"))
			continue
		}
		if jointNames[jc.Name] {
			multierr.AppendInto(&errAll, NewDuplicateNameError("joint", jc.Name))
		}
		jointNames[jc.Name] = true
		if !linkNames[jc.Parent] {
			multierr.AppendInto(&errAll, NewDanglingJointError(jc.Name, jc.Parent))
		}
		if !linkNames[jc.Child] {
			multierr.AppendInto(&errAll, NewDanglingJointError(jc.Name, jc.Child))
		}
		if jc.Parent == jc.Child {
			multierr.AppendInto(&errAll, errors.Errorf("joint %q connects link %q to itself", jc.Name, jc.Parent))
		}
		if jc.Kind != Fixed && jc.Axis.Norm() == 0 {
			multierr.AppendInto(&errAll, errors.Errorf("joint %q has zero axis", jc.Name))
		}
		if jc.Limits.Lower > jc.Limits.Upper {
			multierr.AppendInto(&errAll, errors.Errorf("joint %q has inverted limits", jc.Name))
		}
	}
	return errAll
}
