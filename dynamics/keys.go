package dynamics

import "fmt"

// Kind tags what a variable key refers to.
type Kind int

// Variable kinds. Pose, Twist, TwistAccel and Wrench attach to links,
// Torque and the Joint* kinds attach to joints, PhaseDuration attaches to a
// phase index.
const (
	KindPose Kind = iota
	KindTwist
	KindTwistAccel
	KindWrench
	KindTorque
	KindJointAngle
	KindJointVel
	KindJointAccel
	KindPhaseDuration
)

// Key identifies one optimization variable. Entity is a link or joint id
// depending on Kind; Joint is only used by wrench keys, T is the timestep
// (or the phase index for PhaseDuration). Unused fields stay zero, so keys
// are comparable and usable as map keys.
type Key struct {
	Kind   Kind
	Entity int
	Joint  int
	T      int
}

// PoseKey refers to the world pose of a link CoM frame at a timestep.
func PoseKey(link, t int) Key { return Key{Kind: KindPose, Entity: link, T: t} }

// TwistKey refers to a link's body twist at a timestep.
func TwistKey(link, t int) Key { return Key{Kind: KindTwist, Entity: link, T: t} }

// TwistAccelKey refers to a link's body twist acceleration at a timestep.
func TwistAccelKey(link, t int) Key { return Key{Kind: KindTwistAccel, Entity: link, T: t} }

// WrenchKey refers to the wrench a joint applies on a link at a timestep.
func WrenchKey(link, joint, t int) Key {
	return Key{Kind: KindWrench, Entity: link, Joint: joint, T: t}
}

// TorqueKey refers to a joint's generalized torque at a timestep.
func TorqueKey(joint, t int) Key { return Key{Kind: KindTorque, Entity: joint, T: t} }

// JointAngleKey refers to a joint coordinate at a timestep.
func JointAngleKey(joint, t int) Key { return Key{Kind: KindJointAngle, Entity: joint, T: t} }

// JointVelKey refers to a joint velocity at a timestep.
func JointVelKey(joint, t int) Key { return Key{Kind: KindJointVel, Entity: joint, T: t} }

// JointAccelKey refers to a joint acceleration at a timestep.
func JointAccelKey(joint, t int) Key { return Key{Kind: KindJointAccel, Entity: joint, T: t} }

// PhaseKey refers to the duration of one trajectory phase.
func PhaseKey(phase int) Key { return Key{Kind: KindPhaseDuration, T: phase} }

// Less orders keys by (Kind, Entity, Joint, T). The order is total and
// stable across runs, which the solver chart relies on.
func (k Key) Less(o Key) bool {
	if k.Kind != o.Kind {
		return k.Kind < o.Kind
	}
	if k.Entity != o.Entity {
		return k.Entity < o.Entity
	}
	if k.Joint != o.Joint {
		return k.Joint < o.Joint
	}
	return k.T < o.T
}

// LocalDim is the dimension of the key's local (tangent) coordinates: 6 for
// poses and spatial vectors, 1 for scalars.
func (k Key) LocalDim() int {
	switch k.Kind {
	case KindPose, KindTwist, KindTwistAccel, KindWrench:
		return 6
	default:
		return 1
	}
}

func (k Key) String() string {
	switch k.Kind {
	case KindPose:
		return fmt.Sprintf("p%d_%d", k.Entity, k.T)
	case KindTwist:
		return fmt.Sprintf("V%d_%d", k.Entity, k.T)
	case KindTwistAccel:
		return fmt.Sprintf("A%d_%d", k.Entity, k.T)
	case KindWrench:
		return fmt.Sprintf("F%d%d_%d", k.Entity, k.Joint, k.T)
	case KindTorque:
		return fmt.Sprintf("T%d_%d", k.Entity, k.T)
	case KindJointAngle:
		return fmt.Sprintf("q%d_%d", k.Entity, k.T)
	case KindJointVel:
		return fmt.Sprintf("v%d_%d", k.Entity, k.T)
	case KindJointAccel:
		return fmt.Sprintf("a%d_%d", k.Entity, k.T)
	case KindPhaseDuration:
		return fmt.Sprintf("dt%d", k.T)
	default:
		return fmt.Sprintf("unknown%d_%d", k.Entity, k.T)
	}
}
