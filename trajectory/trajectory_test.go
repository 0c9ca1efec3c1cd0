package trajectory

import (
	"math"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/kinodynamics/kinodyn/dynamics"
	"github.com/kinodynamics/kinodyn/robot"
	"github.com/kinodynamics/kinodyn/spatialmath"
)

func walkerRobot(t *testing.T) *robot.Robot {
	t.Helper()
	r, err := robot.New(robot.Config{
		Name: "walker",
		Links: []robot.LinkConfig{
			{
				Name:      "torso",
				Mass:      100,
				Inertia:   robot.Inertia{XX: 3, YY: 2, ZZ: 1},
				ComOffset: spatialmath.NewPoseFromPoint(r3.Vector{Z: 1}),
			},
			{
				Name:      "leg",
				Mass:      15,
				Inertia:   robot.Inertia{XX: 1, YY: 2, ZZ: 3},
				Pose:      spatialmath.NewPoseFromPoint(r3.Vector{Z: 2}),
				ComOffset: spatialmath.NewPoseFromPoint(r3.Vector{Z: 1}),
			},
		},
		Joints: []robot.JointConfig{
			{
				Name:   "hip",
				Kind:   robot.Revolute,
				Effort: robot.Actuated,
				Parent: "torso",
				Child:  "leg",
				Axis:   r3.Vector{X: 1},
				Limits: robot.Limits{Lower: -math.Pi, Upper: math.Pi},
			},
		},
	})
	test.That(t, err, test.ShouldBeNil)
	return r
}

func TestPhaseLifecycle(t *testing.T) {
	_, err := NewPhase(0)
	test.That(t, err, test.ShouldNotBeNil)

	p, err := NewPhase(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.NumSteps(), test.ShouldEqual, 2)
	test.That(t, p.Instantiated(), test.ShouldBeFalse)

	err = p.AddContactPoints([]string{"leg"}, r3.Vector{Z: 1}, 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(p.ContactPoints()), test.ShouldEqual, 1)

	err = p.AddContactPoints([]string{"leg"}, r3.Vector{Z: 0.5}, 0)
	test.That(t, err, test.ShouldNotBeNil)

	cycle, err := NewWalkCycle(p)
	test.That(t, err, test.ShouldBeNil)
	_, err = New(walkerRobot(t), cycle, 1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, p.Instantiated(), test.ShouldBeTrue)

	err = p.AddContactPoints([]string{"torso"}, r3.Vector{}, 0)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestWalkCycle(t *testing.T) {
	_, err := NewWalkCycle()
	test.That(t, err, test.ShouldNotBeNil)

	a, err := NewPhase(1)
	test.That(t, err, test.ShouldBeNil)
	b, err := NewPhase(2)
	test.That(t, err, test.ShouldBeNil)
	cycle, err := NewWalkCycle(a, b)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cycle.NumPhases(), test.ShouldEqual, 2)
	test.That(t, cycle.Phases()[1].NumSteps(), test.ShouldEqual, 2)
}

func TestTrajectorySteps(t *testing.T) {
	r := walkerRobot(t)
	a, err := NewPhase(2)
	test.That(t, err, test.ShouldBeNil)
	b, err := NewPhase(3)
	test.That(t, err, test.ShouldBeNil)
	cycle, err := NewWalkCycle(a, b)
	test.That(t, err, test.ShouldBeNil)

	_, err = New(r, cycle, 0)
	test.That(t, err, test.ShouldNotBeNil)

	tr, err := New(r, cycle, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, tr.NumPhases(), test.ShouldEqual, 4)
	test.That(t, tr.PhaseSteps(), test.ShouldResemble, []int{2, 3, 2, 3})
	test.That(t, tr.NumSteps(), test.ShouldEqual, 10)

	start, err := tr.StartStep(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, start, test.ShouldEqual, 0)
	end, err := tr.EndStep(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, end, test.ShouldEqual, 2)
	start, err = tr.StartStep(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, start, test.ShouldEqual, 2)
	end, err = tr.EndStep(3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, end, test.ShouldEqual, 10)

	_, err = tr.EndStep(4)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = tr.StartStep(-1)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestPhaseRobotVariants(t *testing.T) {
	r := walkerRobot(t)
	stance, err := NewPhase(1)
	test.That(t, err, test.ShouldBeNil)
	err = stance.AddContactPoints([]string{"leg"}, r3.Vector{Z: 1}, 0)
	test.That(t, err, test.ShouldBeNil)
	swing, err := NewPhase(1)
	test.That(t, err, test.ShouldBeNil)
	cycle, err := NewWalkCycle(stance, swing)
	test.That(t, err, test.ShouldBeNil)
	tr, err := New(r, cycle, 1)
	test.That(t, err, test.ShouldBeNil)

	pr, err := tr.PhaseRobot(0)
	test.That(t, err, test.ShouldBeNil)
	leg, err := pr.Link("leg")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, leg.Fixed(), test.ShouldBeTrue)

	pr, err = tr.PhaseRobot(1)
	test.That(t, err, test.ShouldBeNil)
	leg, err = pr.Link("leg")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, leg.Fixed(), test.ShouldBeFalse)

	// the source robot stays untouched
	leg, err = r.Link("leg")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, leg.Fixed(), test.ShouldBeFalse)
}

func TestTransitionContacts(t *testing.T) {
	r := walkerRobot(t)
	stance, err := NewPhase(1)
	test.That(t, err, test.ShouldBeNil)
	err = stance.AddContactPoints([]string{"leg"}, r3.Vector{Z: 1}, 0)
	test.That(t, err, test.ShouldBeNil)
	swing, err := NewPhase(1)
	test.That(t, err, test.ShouldBeNil)

	cycle, err := NewWalkCycle(stance, swing)
	test.That(t, err, test.ShouldBeNil)
	tr, err := New(r, cycle, 2)
	test.That(t, err, test.ShouldBeNil)

	// stance -> swing drops the contact
	shared, err := tr.TransitionContacts(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(shared), test.ShouldEqual, 0)

	// swing -> stance (next repetition) also shares nothing
	shared, err = tr.TransitionContacts(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(shared), test.ShouldEqual, 0)

	_, err = tr.TransitionContacts(3)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestTrajectoryGraph(t *testing.T) {
	r := walkerRobot(t)
	stance, err := NewPhase(1)
	test.That(t, err, test.ShouldBeNil)
	err = stance.AddContactPoints([]string{"leg"}, r3.Vector{Z: 1}, 0)
	test.That(t, err, test.ShouldBeNil)
	swing, err := NewPhase(1)
	test.That(t, err, test.ShouldBeNil)
	cycle, err := NewWalkCycle(stance, swing)
	test.That(t, err, test.ShouldBeNil)
	tr, err := New(r, cycle, 1)
	test.That(t, err, test.ShouldBeNil)

	b := dynamics.NewBuilder(dynamics.Options{}, golog.NewTestLogger(t))
	g, err := tr.Graph(b, dynamics.Euler)
	test.That(t, err, test.ShouldBeNil)

	// stance step 12, transition 7, swing step 7, four collocation ties
	test.That(t, g.Size(), test.ShouldEqual, 12+7+7+4)

	a := tr.InitialAssignment(0.1)
	for _, k := range g.Keys() {
		test.That(t, a.Has(k), test.ShouldBeTrue)
	}
	_, err = g.Residual(a)
	test.That(t, err, test.ShouldBeNil)
}

func TestPhaseDurationPriors(t *testing.T) {
	r := walkerRobot(t)
	p, err := NewPhase(1)
	test.That(t, err, test.ShouldBeNil)
	cycle, err := NewWalkCycle(p)
	test.That(t, err, test.ShouldBeNil)
	tr, err := New(r, cycle, 3)
	test.That(t, err, test.ShouldBeNil)

	g := tr.PhaseDurationPriors(0.05, 1e-5)
	test.That(t, g.Size(), test.ShouldEqual, 3)

	a := tr.InitialAssignment(0.05)
	res, err := g.Residual(a)
	test.That(t, err, test.ShouldBeNil)
	for _, v := range res {
		test.That(t, v, test.ShouldAlmostEqual, 0, 1e-12)
	}
}

func TestPointGoals(t *testing.T) {
	r := walkerRobot(t)
	stance, err := NewPhase(1)
	test.That(t, err, test.ShouldBeNil)
	err = stance.AddContactPoints([]string{"leg"}, r3.Vector{Z: 1}, 0)
	test.That(t, err, test.ShouldBeNil)
	cycle, err := NewWalkCycle(stance)
	test.That(t, err, test.ShouldBeNil)
	tr, err := New(r, cycle, 1)
	test.That(t, err, test.ShouldBeNil)

	// rest leg CoM (0,0,3) plus offset z1 sits at (0,0,4)
	g, err := tr.PointGoals(0, 0, map[string]r3.Vector{"leg": {Z: 4}}, 0.001)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Size(), test.ShouldEqual, 1)

	a := tr.InitialAssignment(0.1)
	res, err := g.Residual(a)
	test.That(t, err, test.ShouldBeNil)
	for _, v := range res {
		test.That(t, v, test.ShouldAlmostEqual, 0, 1e-9)
	}

	// links without targets contribute nothing
	g, err = tr.PointGoals(0, 0, map[string]r3.Vector{"torso": {}}, 0.001)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Size(), test.ShouldEqual, 0)
}
