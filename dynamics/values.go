package dynamics

import (
	"github.com/kinodynamics/kinodyn/robot"
	"github.com/kinodynamics/kinodyn/spatialmath"
)

// ZeroAssignment seeds every variable of one timestep: link poses at their
// rest CoM frames, all twists, accelerations, wrenches and joint
// coordinates at zero.
func ZeroAssignment(r *robot.Robot, t int) Assignment {
	a := make(Assignment)
	for _, l := range r.Links() {
		a.SetPose(PoseKey(l.ID(), t), l.ComPose())
		a.SetVector(TwistKey(l.ID(), t), spatialmath.Vector6{})
		a.SetVector(TwistAccelKey(l.ID(), t), spatialmath.Vector6{})
		for _, jid := range l.JointIDs() {
			a.SetVector(WrenchKey(l.ID(), jid, t), spatialmath.Vector6{})
		}
	}
	for _, j := range r.Joints() {
		a.SetScalar(JointAngleKey(j.ID(), t), 0)
		a.SetScalar(JointVelKey(j.ID(), t), 0)
		a.SetScalar(JointAccelKey(j.ID(), t), 0)
		a.SetScalar(TorqueKey(j.ID(), t), 0)
	}
	return a
}

// ZeroTrajectoryAssignment seeds all timesteps 0..numSteps and, when
// numPhases is positive, the phase duration variables at dtSeed.
func ZeroTrajectoryAssignment(r *robot.Robot, numSteps, numPhases int, dtSeed float64) Assignment {
	a := make(Assignment)
	for t := 0; t <= numSteps; t++ {
		a.Merge(ZeroAssignment(r, t))
	}
	for p := 0; p < numPhases; p++ {
		a.SetScalar(PhaseKey(p), dtSeed)
	}
	return a
}

// JointAngles extracts the joint angles at timestep t in declared joint
// order.
func JointAngles(r *robot.Robot, a Assignment, t int) ([]float64, error) {
	return extractJointScalars(r, a, t, JointAngleKey)
}

// JointVels extracts the joint velocities at timestep t in declared joint
// order.
func JointVels(r *robot.Robot, a Assignment, t int) ([]float64, error) {
	return extractJointScalars(r, a, t, JointVelKey)
}

// JointAccels extracts the joint accelerations at timestep t in declared
// joint order.
func JointAccels(r *robot.Robot, a Assignment, t int) ([]float64, error) {
	return extractJointScalars(r, a, t, JointAccelKey)
}

// Torques extracts the joint torques at timestep t in declared joint order.
func Torques(r *robot.Robot, a Assignment, t int) ([]float64, error) {
	return extractJointScalars(r, a, t, TorqueKey)
}

func extractJointScalars(r *robot.Robot, a Assignment, t int, key func(int, int) Key) ([]float64, error) {
	out := make([]float64, 0, r.NumJoints())
	for _, j := range r.Joints() {
		v, err := a.Scalar(key(j.ID(), t))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
