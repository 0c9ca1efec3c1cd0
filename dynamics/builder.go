package dynamics

import (
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"

	"github.com/kinodynamics/kinodyn/robot"
	"github.com/kinodynamics/kinodyn/spatialmath"
)

// DefaultMaxWrenchArity bounds how many joints may meet at one link's
// wrench balance.
const DefaultMaxWrenchArity = 4

// Options configures graph assembly. Zero values select the defaults noted
// per field.
type Options struct {
	// Gravity is the world gravity vector. Defaults to (0, 0, -9.8).
	Gravity *r3.Vector
	// PlanarAxis, when set, adds planar wrench constraints for mechanisms
	// confined to the plane normal to it. Must be axis aligned.
	PlanarAxis *r3.Vector
	// ContactPoints are the active stance contacts applied to every
	// assembled timestep.
	ContactPoints []ContactPoint
	// MaxWrenchArity caps the joint count of any one wrench balance.
	// Defaults to DefaultMaxWrenchArity.
	MaxWrenchArity int

	// Per-family noise scales. Zero selects the defaults.
	PoseSigma        float64 // 0.001
	TwistSigma       float64 // 1
	AccelSigma       float64 // 1
	WrenchSigma      float64 // 1
	TorqueSigma      float64 // 1
	PriorSigma       float64 // 1e-5
	CollocationSigma float64 // 0.001
	ContactSigma     float64 // 0.001
}

func (o Options) withDefaults() Options {
	if o.Gravity == nil {
		o.Gravity = &r3.Vector{Z: -9.8}
	}
	if o.MaxWrenchArity == 0 {
		o.MaxWrenchArity = DefaultMaxWrenchArity
	}
	if o.PoseSigma == 0 {
		o.PoseSigma = 0.001
	}
	if o.TwistSigma == 0 {
		o.TwistSigma = 1
	}
	if o.AccelSigma == 0 {
		o.AccelSigma = 1
	}
	if o.WrenchSigma == 0 {
		o.WrenchSigma = 1
	}
	if o.TorqueSigma == 0 {
		o.TorqueSigma = 1
	}
	if o.PriorSigma == 0 {
		o.PriorSigma = 1e-5
	}
	if o.CollocationSigma == 0 {
		o.CollocationSigma = 0.001
	}
	if o.ContactSigma == 0 {
		o.ContactSigma = 0.001
	}
	return o
}

// Builder assembles constraint graphs for robots at timesteps. A Builder is
// immutable after construction and safe for concurrent use.
type Builder struct {
	opts   Options
	logger golog.Logger
}

// NewBuilder returns a Builder with defaulted options.
func NewBuilder(opts Options, logger golog.Logger) *Builder {
	return &Builder{opts: opts.withDefaults(), logger: logger}
}

// Options returns the builder's defaulted options.
func (b *Builder) Options() Options { return b.opts }

// WithContacts returns a builder identical to b except for its contact
// points. Phase-specific builders in trajectory assembly are derived this
// way.
func (b *Builder) WithContacts(pts []ContactPoint) *Builder {
	opts := b.opts
	opts.ContactPoints = pts
	return &Builder{opts: opts, logger: b.logger}
}

// PoseConstraints assembles the pose-level constraints at timestep t: a
// pose closure per joint, a pose anchor per fixed link, a zero angle anchor
// per fixed joint and a ground height constraint per contact point.
func (b *Builder) PoseConstraints(r *robot.Robot, t int) (*Graph, error) {
	g := NewGraph()
	for _, j := range r.Joints() {
		g.Add(NewPoseClosure(j, t, b.opts.PoseSigma))
		if j.Kind() == robot.Fixed {
			g.Add(NewScalarPrior(JointAngleKey(j.ID(), t), 0, b.opts.PriorSigma))
		}
	}
	for _, l := range r.Links() {
		if l.Fixed() {
			g.Add(NewPosePrior(PoseKey(l.ID(), t), l.FixedPose(), b.opts.PriorSigma))
		}
	}
	for _, cp := range b.opts.ContactPoints {
		l, err := r.Link(cp.Link)
		if err != nil {
			return nil, err
		}
		c, err := NewContactPose(l.ID(), t, cp.Offset, *b.opts.Gravity, cp.Height, b.opts.ContactSigma)
		if err != nil {
			return nil, err
		}
		g.Add(c)
	}
	return g, nil
}

// TwistConstraints assembles the velocity-level constraints at timestep t.
func (b *Builder) TwistConstraints(r *robot.Robot, t int) (*Graph, error) {
	g := NewGraph()
	for _, j := range r.Joints() {
		g.Add(NewTwistClosure(j, t, b.opts.TwistSigma))
		if j.Kind() == robot.Fixed {
			g.Add(NewScalarPrior(JointVelKey(j.ID(), t), 0, b.opts.PriorSigma))
		}
	}
	for _, l := range r.Links() {
		if l.Fixed() {
			g.Add(NewVectorPrior(TwistKey(l.ID(), t), spatialmath.Vector6{}, b.opts.PriorSigma))
		}
	}
	for _, cp := range b.opts.ContactPoints {
		l, err := r.Link(cp.Link)
		if err != nil {
			return nil, err
		}
		g.Add(NewContactTwist(l.ID(), t, cp.Offset, b.opts.ContactSigma))
	}
	return g, nil
}

// AccelConstraints assembles the acceleration-level constraints at timestep
// t.
func (b *Builder) AccelConstraints(r *robot.Robot, t int) (*Graph, error) {
	g := NewGraph()
	for _, j := range r.Joints() {
		g.Add(NewAccelClosure(j, t, b.opts.AccelSigma))
		if j.Kind() == robot.Fixed {
			g.Add(NewScalarPrior(JointAccelKey(j.ID(), t), 0, b.opts.PriorSigma))
		}
	}
	for _, l := range r.Links() {
		if l.Fixed() {
			g.Add(NewVectorPrior(TwistAccelKey(l.ID(), t), spatialmath.Vector6{}, b.opts.PriorSigma))
		}
	}
	for _, cp := range b.opts.ContactPoints {
		l, err := r.Link(cp.Link)
		if err != nil {
			return nil, err
		}
		g.Add(NewContactAccel(l.ID(), t, cp.Offset, b.opts.ContactSigma))
	}
	return g, nil
}

// DynamicsConstraints assembles the force-level constraints at timestep t:
// a wrench balance per movable link, plus wrench equivalence, torque and
// optional planar constraints per joint.
func (b *Builder) DynamicsConstraints(r *robot.Robot, t int) (*Graph, error) {
	g := NewGraph()
	for _, l := range r.Links() {
		if l.Fixed() {
			continue
		}
		if l.Degree() > b.opts.MaxWrenchArity {
			return nil, NewTooManyJointsError(l.Name(), l.Degree(), b.opts.MaxWrenchArity)
		}
		g.Add(NewWrenchBalance(l, t, *b.opts.Gravity, b.opts.WrenchSigma))
	}
	for _, j := range r.Joints() {
		g.Add(NewWrenchEquivalence(j, t, b.opts.WrenchSigma))
		g.Add(NewTorque(j, t, b.opts.TorqueSigma))
		if b.opts.PlanarAxis != nil {
			c, err := NewWrenchPlanar(j, t, *b.opts.PlanarAxis, b.opts.WrenchSigma)
			if err != nil {
				return nil, err
			}
			g.Add(c)
		}
	}
	return g, nil
}

// StepConstraints assembles all constraint levels of one timestep.
func (b *Builder) StepConstraints(r *robot.Robot, t int) (*Graph, error) {
	g := NewGraph()
	for _, build := range []func(*robot.Robot, int) (*Graph, error){
		b.PoseConstraints, b.TwistConstraints, b.AccelConstraints, b.DynamicsConstraints,
	} {
		sub, err := build(r, t)
		if err != nil {
			return nil, err
		}
		g.Merge(sub)
	}
	return g, nil
}

// CollocationConstraints ties timestep t to t+1 with a fixed step duration:
// one (angle, velocity) and one (velocity, acceleration) tie per joint.
func (b *Builder) CollocationConstraints(r *robot.Robot, t int, dt float64, scheme CollocationScheme) (*Graph, error) {
	g := NewGraph()
	s := b.opts.CollocationSigma
	for _, j := range r.Joints() {
		id := j.ID()
		switch scheme {
		case Euler:
			g.Add(NewEulerCollocation(JointAngleKey(id, t), JointVelKey(id, t), JointAngleKey(id, t+1), dt, s))
			g.Add(NewEulerCollocation(JointVelKey(id, t), JointAccelKey(id, t), JointVelKey(id, t+1), dt, s))
		case Trapezoidal:
			g.Add(NewTrapezoidalCollocation(
				JointAngleKey(id, t), JointVelKey(id, t), JointVelKey(id, t+1), JointAngleKey(id, t+1), dt, s))
			g.Add(NewTrapezoidalCollocation(
				JointVelKey(id, t), JointAccelKey(id, t), JointAccelKey(id, t+1), JointVelKey(id, t+1), dt, s))
		default:
			return nil, NewUnimplementedSchemeError(scheme)
		}
	}
	return g, nil
}

// MultiPhaseCollocationConstraints ties timestep t to t+1 with the duration
// of the given phase as a free variable.
func (b *Builder) MultiPhaseCollocationConstraints(r *robot.Robot, t, phase int, scheme CollocationScheme) (*Graph, error) {
	g := NewGraph()
	s := b.opts.CollocationSigma
	dtKey := PhaseKey(phase)
	for _, j := range r.Joints() {
		id := j.ID()
		switch scheme {
		case Euler:
			g.Add(NewEulerPhaseCollocation(JointAngleKey(id, t), JointVelKey(id, t), JointAngleKey(id, t+1), dtKey, s))
			g.Add(NewEulerPhaseCollocation(JointVelKey(id, t), JointAccelKey(id, t), JointVelKey(id, t+1), dtKey, s))
		case Trapezoidal:
			g.Add(NewTrapezoidalPhaseCollocation(
				JointAngleKey(id, t), JointVelKey(id, t), JointVelKey(id, t+1), JointAngleKey(id, t+1), dtKey, s))
			g.Add(NewTrapezoidalPhaseCollocation(
				JointVelKey(id, t), JointAccelKey(id, t), JointAccelKey(id, t+1), JointVelKey(id, t+1), dtKey, s))
		default:
			return nil, NewUnimplementedSchemeError(scheme)
		}
	}
	return g, nil
}

// Trajectory assembles numSteps+1 timesteps of one robot tied by fixed-step
// collocation.
func (b *Builder) Trajectory(r *robot.Robot, numSteps int, dt float64, scheme CollocationScheme) (*Graph, error) {
	g := NewGraph()
	for t := 0; t <= numSteps; t++ {
		step, err := b.StepConstraints(r, t)
		if err != nil {
			return nil, err
		}
		g.Merge(step)
		if t < numSteps {
			col, err := b.CollocationConstraints(r, t, dt, scheme)
			if err != nil {
				return nil, err
			}
			g.Merge(col)
		}
	}
	b.logger.Debugf("assembled %d-step trajectory graph with %d constraints", numSteps, g.Size())
	return g, nil
}

// MultiPhaseTrajectory assembles a trajectory whose phases each use their
// own robot variant and a free phase duration. Timestep 0 belongs to the
// first phase; each later phase contributes phaseSteps[p] new steps. At the
// boundary between phases p and p+1 the caller-supplied transition graph is
// used when present, otherwise the incoming phase's step constraints.
// Collocation within a phase references that phase's duration variable.
func (b *Builder) MultiPhaseTrajectory(robots []*robot.Robot, phaseSteps []int, transitions []*Graph, scheme CollocationScheme) (*Graph, error) {
	if len(robots) != len(phaseSteps) {
		return nil, NewLengthMismatchError("phase step counts", len(phaseSteps), len(robots))
	}
	if transitions != nil && len(transitions) != len(robots)-1 {
		return nil, NewLengthMismatchError("transition graphs", len(transitions), len(robots)-1)
	}

	g := NewGraph()
	step, err := b.StepConstraints(robots[0], 0)
	if err != nil {
		return nil, err
	}
	g.Merge(step)

	t := 0
	for p := range robots {
		for s := 1; s <= phaseSteps[p]; s++ {
			t++
			if s == phaseSteps[p] && p < len(robots)-1 && transitions != nil {
				g.Merge(transitions[p])
				continue
			}
			step, err := b.StepConstraints(robots[p], t)
			if err != nil {
				return nil, err
			}
			g.Merge(step)
		}
	}

	t = 0
	for p := range robots {
		for s := 1; s <= phaseSteps[p]; s++ {
			col, err := b.MultiPhaseCollocationConstraints(robots[p], t, p, scheme)
			if err != nil {
				return nil, err
			}
			g.Merge(col)
			t++
		}
	}
	b.logger.Debugf("assembled %d-phase trajectory graph over %d steps with %d constraints",
		len(robots), t, g.Size())
	return g, nil
}

// ForwardDynamicsPriors anchors the known quantities of a forward dynamics
// solve at timestep t: joint angles, velocities and torques in declared
// joint order.
func (b *Builder) ForwardDynamicsPriors(r *robot.Robot, t int, angles, vels, torques []float64) (*Graph, error) {
	n := r.NumJoints()
	for _, v := range []struct {
		name string
		got  int
	}{
		{"joint angles", len(angles)},
		{"joint velocities", len(vels)},
		{"joint torques", len(torques)},
	} {
		if v.got != n {
			return nil, NewLengthMismatchError(v.name, v.got, n)
		}
	}
	g := NewGraph()
	s := b.opts.PriorSigma
	for i, j := range r.Joints() {
		g.Add(NewScalarPrior(JointAngleKey(j.ID(), t), angles[i], s))
		g.Add(NewScalarPrior(JointVelKey(j.ID(), t), vels[i], s))
		g.Add(NewScalarPrior(TorqueKey(j.ID(), t), torques[i], s))
	}
	return g, nil
}

// TrajectoryPriors anchors the initial state and the torque profile of a
// forward-dynamics trajectory: angles and velocities at step 0, torques at
// every step. torques[t][i] follows declared joint order.
func (b *Builder) TrajectoryPriors(r *robot.Robot, numSteps int, angles, vels []float64, torques [][]float64) (*Graph, error) {
	n := r.NumJoints()
	if len(angles) != n {
		return nil, NewLengthMismatchError("joint angles", len(angles), n)
	}
	if len(vels) != n {
		return nil, NewLengthMismatchError("joint velocities", len(vels), n)
	}
	if len(torques) != numSteps+1 {
		return nil, NewLengthMismatchError("torque steps", len(torques), numSteps+1)
	}
	g := NewGraph()
	s := b.opts.PriorSigma
	for i, j := range r.Joints() {
		g.Add(NewScalarPrior(JointAngleKey(j.ID(), 0), angles[i], s))
		g.Add(NewScalarPrior(JointVelKey(j.ID(), 0), vels[i], s))
	}
	for t := 0; t <= numSteps; t++ {
		if len(torques[t]) != n {
			return nil, NewLengthMismatchError("joint torques", len(torques[t]), n)
		}
		for i, j := range r.Joints() {
			g.Add(NewScalarPrior(TorqueKey(j.ID(), t), torques[t][i], s))
		}
	}
	return g, nil
}
