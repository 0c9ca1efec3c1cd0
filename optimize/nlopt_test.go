package optimize

import (
	"context"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/kinodynamics/kinodyn/dynamics"
)

func TestNloptSolvesPoseClosure(t *testing.T) {
	r := pendulumRobot(t)
	j, err := r.Joint("pivot")
	test.That(t, err, test.ShouldBeNil)
	base, err := r.Link("base")
	test.That(t, err, test.ShouldBeNil)

	// anchor the base, ask for a bent pivot; the arm pose must follow
	g := dynamics.NewGraph()
	g.Add(
		dynamics.NewPoseClosure(j, 0, 1),
		dynamics.NewPosePrior(dynamics.PoseKey(base.ID(), 0), base.ComPose(), 1),
		dynamics.NewScalarPrior(dynamics.JointAngleKey(j.ID(), 0), 0.2, 1),
	)

	s := NewNloptSolver(NloptOptions{Epsilon: 1e-12}, golog.NewTestLogger(t))
	solved, err := s.Solve(context.Background(), g, dynamics.ZeroAssignment(r, 0))
	test.That(t, err, test.ShouldBeNil)

	q, err := solved.Scalar(dynamics.JointAngleKey(j.ID(), 0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, q, test.ShouldAlmostEqual, 0.2, 1e-4)

	werr, err := g.WeightedError(solved)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, werr, test.ShouldBeLessThan, 1e-8)

	arm, err := r.Link("arm")
	test.That(t, err, test.ShouldBeNil)
	wTc, err := solved.Pose(dynamics.PoseKey(arm.ID(), 0))
	test.That(t, err, test.ShouldBeNil)
	com, err := j.ParentToChildCom(q)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, wTc.AlmostEqual(base.ComPose().Compose(com), 1e-3), test.ShouldBeTrue)
}

func TestNloptMissingSeed(t *testing.T) {
	r := pendulumRobot(t)
	g := testGraph(t, r)
	s := NewNloptSolver(NloptOptions{}, golog.NewTestLogger(t))
	_, err := s.Solve(context.Background(), g, make(dynamics.Assignment))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestNloptCancelledContext(t *testing.T) {
	r := pendulumRobot(t)
	g := testGraph(t, r)
	s := NewNloptSolver(NloptOptions{}, golog.NewTestLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Solve(ctx, g, dynamics.ZeroAssignment(r, 0))
	test.That(t, err, test.ShouldNotBeNil)
}
