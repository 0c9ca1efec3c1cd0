package robot

import (
	"gonum.org/v1/gonum/mat"

	"github.com/kinodynamics/kinodyn/spatialmath"
)

// Link is a rigid body with mass properties. Joint attachments are recorded
// as joint ids, partitioned into parent joints (this link is the child across
// them) and child joints (this link is the parent). A Link is mutated only
// during topology construction, except for the fixed-pose override.
type Link struct {
	name    string
	id      int
	mass    float64
	inertia Inertia

	restPose spatialmath.Pose // link frame in world, rest configuration
	comPose  spatialmath.Pose // CoM frame in world, rest configuration

	fixed     bool
	fixedPose spatialmath.Pose

	parentJoints []int
	childJoints  []int
}

// Name returns the link name.
func (l *Link) Name() string { return l.name }

// ID returns the link's integer id, unique within its robot.
func (l *Link) ID() int { return l.id }

// Mass returns the link mass.
func (l *Link) Mass() float64 { return l.mass }

// Inertia returns the rotational inertia about the CoM.
func (l *Link) Inertia() Inertia { return l.inertia }

// RestPose returns the rest pose of the link frame in the world frame.
func (l *Link) RestPose() spatialmath.Pose { return l.restPose }

// ComPose returns the rest pose of the CoM frame in the world frame.
func (l *Link) ComPose() spatialmath.Pose { return l.comPose }

// Fixed reports whether the link is pinned to the world.
func (l *Link) Fixed() bool { return l.fixed }

// FixedPose returns the world pose the link is pinned to. Only meaningful
// when Fixed is true.
func (l *Link) FixedPose() spatialmath.Pose { return l.fixedPose }

// Fix pins the link's CoM frame to the given world pose. This is the only
// permitted post-construction mutation; it is how per-phase robot variants
// mark links under active contact.
func (l *Link) Fix(pose spatialmath.Pose) {
	l.fixed = true
	l.fixedPose = pose
}

// Unfix releases a fixed link.
func (l *Link) Unfix() {
	l.fixed = false
	l.fixedPose = spatialmath.NewZeroPose()
}

// ParentJointIDs returns the ids of joints across which this link is the
// child.
func (l *Link) ParentJointIDs() []int {
	return append([]int(nil), l.parentJoints...)
}

// ChildJointIDs returns the ids of joints across which this link is the
// parent.
func (l *Link) ChildJointIDs() []int {
	return append([]int(nil), l.childJoints...)
}

// JointIDs returns all attached joint ids, parents first.
func (l *Link) JointIDs() []int {
	out := make([]int, 0, len(l.parentJoints)+len(l.childJoints))
	out = append(out, l.parentJoints...)
	out = append(out, l.childJoints...)
	return out
}

// Degree returns the link's connectivity degree (number of attached joints).
func (l *Link) Degree() int {
	return len(l.parentJoints) + len(l.childJoints)
}

// InertiaMatrix returns the 3x3 rotational inertia tensor.
func (l *Link) InertiaMatrix() *mat.Dense {
	i := l.inertia
	return mat.NewDense(3, 3, []float64{
		i.XX, i.XY, i.XZ,
		i.XY, i.YY, i.YZ,
		i.XZ, i.YZ, i.ZZ,
	})
}

// GeneralizedInertia returns the 6x6 spatial inertia about the CoM:
// the rotational tensor in the upper-left block and mass on the lower
// diagonal.
func (l *Link) GeneralizedInertia() *mat.Dense {
	i := l.inertia
	m := l.mass
	return mat.NewDense(6, 6, []float64{
		i.XX, i.XY, i.XZ, 0, 0, 0,
		i.XY, i.YY, i.YZ, 0, 0, 0,
		i.XZ, i.YZ, i.ZZ, 0, 0, 0,
		0, 0, 0, m, 0, 0,
		0, 0, 0, 0, m, 0,
		0, 0, 0, 0, 0, m,
	})
}

func (l *Link) clone() *Link {
	out := *l
	out.parentJoints = append([]int(nil), l.parentJoints...)
	out.childJoints = append([]int(nil), l.childJoints...)
	return &out
}
