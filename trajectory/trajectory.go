package trajectory

import (
	"github.com/golang/geo/r3"

	"github.com/kinodynamics/kinodyn/dynamics"
	"github.com/kinodynamics/kinodyn/robot"
	"github.com/kinodynamics/kinodyn/spatialmath"
)

// Trajectory is a walk cycle repeated a number of times over one robot.
// Construction resolves every phase to its own robot variant with the
// stance links pinned, and fixes the global timestep ranges. A built
// Trajectory is immutable.
type Trajectory struct {
	robot    *robot.Robot
	steps    []int
	contacts [][]dynamics.ContactPoint
	robots   []*robot.Robot
}

// New builds a trajectory repeating the walk cycle repeat times on r. The
// phases of the cycle are sealed against further configuration.
func New(r *robot.Robot, cycle *WalkCycle, repeat int) (*Trajectory, error) {
	if repeat < 1 {
		return nil, NewRepeatCountError(repeat)
	}

	cyclePhases := cycle.Phases()
	tr := &Trajectory{robot: r}
	for rep := 0; rep < repeat; rep++ {
		for _, p := range cyclePhases {
			contacts := p.ContactPoints()
			variant, err := stanceVariant(r, contacts)
			if err != nil {
				return nil, err
			}
			tr.steps = append(tr.steps, p.NumSteps())
			tr.contacts = append(tr.contacts, contacts)
			tr.robots = append(tr.robots, variant)
		}
	}
	for _, p := range cyclePhases {
		p.seal()
	}
	return tr, nil
}

// stanceVariant pins every contact link at its rest CoM pose.
func stanceVariant(r *robot.Robot, contacts []dynamics.ContactPoint) (*robot.Robot, error) {
	fixed := make(map[string]spatialmath.Pose, len(contacts))
	for _, cp := range contacts {
		l, err := r.Link(cp.Link)
		if err != nil {
			return nil, err
		}
		fixed[cp.Link] = l.ComPose()
	}
	return r.Variant(fixed)
}

// NumPhases returns the total phase count across all repetitions.
func (tr *Trajectory) NumPhases() int { return len(tr.steps) }

// NumSteps returns the total timestep count. Step 0 is shared with the
// first phase, each phase contributes its own steps after it.
func (tr *Trajectory) NumSteps() int {
	var total int
	for _, s := range tr.steps {
		total += s
	}
	return total
}

// PhaseSteps returns the per-phase step counts.
func (tr *Trajectory) PhaseSteps() []int {
	return append([]int(nil), tr.steps...)
}

// PhaseContactPoints returns the contact points of phase p.
func (tr *Trajectory) PhaseContactPoints(p int) ([]dynamics.ContactPoint, error) {
	if p < 0 || p >= len(tr.contacts) {
		return nil, NewPhaseIndexError(p, len(tr.contacts))
	}
	return append([]dynamics.ContactPoint(nil), tr.contacts[p]...), nil
}

// PhaseRobot returns the robot variant of phase p, its stance links fixed.
func (tr *Trajectory) PhaseRobot(p int) (*robot.Robot, error) {
	if p < 0 || p >= len(tr.robots) {
		return nil, NewPhaseIndexError(p, len(tr.robots))
	}
	return tr.robots[p], nil
}

// EndStep returns the global timestep ending phase p.
func (tr *Trajectory) EndStep(p int) (int, error) {
	if p < 0 || p >= len(tr.steps) {
		return 0, NewPhaseIndexError(p, len(tr.steps))
	}
	var end int
	for i := 0; i <= p; i++ {
		end += tr.steps[i]
	}
	return end, nil
}

// StartStep returns the global timestep starting phase p.
func (tr *Trajectory) StartStep(p int) (int, error) {
	end, err := tr.EndStep(p)
	if err != nil {
		return 0, err
	}
	return end - tr.steps[p], nil
}

// TransitionContacts returns the contact points active through the
// boundary after phase p: those held by both adjacent phases.
func (tr *Trajectory) TransitionContacts(p int) ([]dynamics.ContactPoint, error) {
	if p < 0 || p >= len(tr.contacts)-1 {
		return nil, NewPhaseIndexError(p, len(tr.contacts)-1)
	}
	next := make(map[string]bool, len(tr.contacts[p+1]))
	for _, cp := range tr.contacts[p+1] {
		next[cp.Link] = true
	}
	var shared []dynamics.ContactPoint
	for _, cp := range tr.contacts[p] {
		if next[cp.Link] {
			shared = append(shared, cp)
		}
	}
	return shared, nil
}

// TransitionGraphs assembles the boundary timestep of every phase change:
// the incoming phase's robot under the shared contact set.
func (tr *Trajectory) TransitionGraphs(b *dynamics.Builder) ([]*dynamics.Graph, error) {
	out := make([]*dynamics.Graph, 0, len(tr.steps)-1)
	for p := 0; p < len(tr.steps)-1; p++ {
		shared, err := tr.TransitionContacts(p)
		if err != nil {
			return nil, err
		}
		end, err := tr.EndStep(p)
		if err != nil {
			return nil, err
		}
		g, err := b.WithContacts(shared).StepConstraints(tr.robots[p+1], end)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Graph assembles the full multi-phase constraint system: per-phase step
// constraints under that phase's contacts, transition graphs at phase
// boundaries and collocation against per-phase duration variables.
func (tr *Trajectory) Graph(b *dynamics.Builder, scheme dynamics.CollocationScheme) (*dynamics.Graph, error) {
	transitions, err := tr.TransitionGraphs(b)
	if err != nil {
		return nil, err
	}

	g := dynamics.NewGraph()
	first, err := b.WithContacts(tr.contacts[0]).StepConstraints(tr.robots[0], 0)
	if err != nil {
		return nil, err
	}
	g.Merge(first)

	t := 0
	for p := range tr.robots {
		phaseBuilder := b.WithContacts(tr.contacts[p])
		for s := 1; s <= tr.steps[p]; s++ {
			t++
			if s == tr.steps[p] && p < len(tr.robots)-1 {
				g.Merge(transitions[p])
				continue
			}
			step, err := phaseBuilder.StepConstraints(tr.robots[p], t)
			if err != nil {
				return nil, err
			}
			g.Merge(step)
		}
	}

	t = 0
	for p := range tr.robots {
		for s := 1; s <= tr.steps[p]; s++ {
			col, err := b.MultiPhaseCollocationConstraints(tr.robots[p], t, p, scheme)
			if err != nil {
				return nil, err
			}
			g.Merge(col)
			t++
		}
	}
	return g, nil
}

// PhaseDurationPriors anchors every phase duration at dt.
func (tr *Trajectory) PhaseDurationPriors(dt, sigma float64) *dynamics.Graph {
	g := dynamics.NewGraph()
	for p := range tr.steps {
		g.Add(dynamics.NewScalarPrior(dynamics.PhaseKey(p), dt, sigma))
	}
	return g
}

// PointGoals drives the contact points of phase p toward world-frame
// targets at timestep t. Links without a target are skipped.
func (tr *Trajectory) PointGoals(p, t int, goals map[string]r3.Vector, sigma float64) (*dynamics.Graph, error) {
	contacts, err := tr.PhaseContactPoints(p)
	if err != nil {
		return nil, err
	}
	g := dynamics.NewGraph()
	for _, cp := range contacts {
		goal, ok := goals[cp.Link]
		if !ok {
			continue
		}
		l, err := tr.robot.Link(cp.Link)
		if err != nil {
			return nil, err
		}
		g.Add(dynamics.NewPointGoal(l.ID(), t, cp.Offset, goal, sigma))
	}
	return g, nil
}

// InitialAssignment seeds every variable of the trajectory, phase
// durations at dtSeed.
func (tr *Trajectory) InitialAssignment(dtSeed float64) dynamics.Assignment {
	return dynamics.ZeroTrajectoryAssignment(tr.robot, tr.NumSteps(), tr.NumPhases(), dtSeed)
}
