package robot

import "github.com/pkg/errors"

// NewUnknownLinkError returns an error for a link name not present in the
// robot's link set.
func NewUnknownLinkError(name string) error {
	return errors.Errorf("link %q not found", name)
}

// NewUnknownJointError returns an error for a joint name not present in the
// robot's joint set.
func NewUnknownJointError(name string) error {
	return errors.Errorf("joint %q not found", name)
}

// NewDanglingJointError returns an error for a joint whose endpoint refers to
// a link that was never declared.
func NewDanglingJointError(joint, link string) error {
	return errors.Errorf("joint %q references unknown link %q", joint, link)
}

// NewDisconnectedTopologyError returns an error for a link graph that is not
// a single connected component.
func NewDisconnectedTopologyError(name string) error {
	return errors.Errorf("link %q is not reachable from the first declared link; disconnected topologies are not supported", name)
}

// NewDuplicateNameError returns an error for a link or joint name declared
// more than once.
func NewDuplicateNameError(kind, name string) error {
	return errors.Errorf("duplicate %s name %q", kind, name)
}

// NewNoJointBetweenError returns an error when no joint connects two links.
func NewNoJointBetweenError(l1, l2 string) error {
	return errors.Errorf("no joint connects links %q and %q", l1, l2)
}

// newOOBError flags a joint coordinate outside its declared limits. It is
// advisory: kinematic queries still return the computed transform.
func newOOBError(joint string, value, lower, upper float64) error {
	return errors.Errorf("joint %q coordinate %.5f out of limits [%.5f, %.5f]", joint, value, lower, upper)
}
