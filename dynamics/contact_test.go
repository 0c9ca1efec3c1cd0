package dynamics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/kinodynamics/kinodyn/spatialmath"
)

func TestContactPoseHeights(t *testing.T) {
	r := twoLinkRobot(t)
	l, err := r.Link("l2")
	test.That(t, err, test.ShouldBeNil)

	gravity := r3.Vector{Z: -9.8}
	offset := r3.Vector{Z: 1}
	c, err := NewContactPose(l.ID(), 0, offset, gravity, 0, 0.001)
	test.That(t, err, test.ShouldBeNil)

	evalAt := func(p spatialmath.Pose) float64 {
		a := ZeroAssignment(r, 0)
		a.SetPose(PoseKey(l.ID(), 0), p)
		lin, err := c.Linearize(a)
		test.That(t, err, test.ShouldBeNil)
		return lin.Residual[0]
	}

	test.That(t, evalAt(spatialmath.NewPoseFromPoint(r3.Vector{Z: 2})), test.ShouldAlmostEqual, 3, 1e-9)
	flipped := spatialmath.NewPoseFromPoint(r3.Vector{Z: 2}).
		Compose(spatialmath.NewPoseFromAxisAngle(r3.Vector{X: 1}, math.Pi))
	test.That(t, evalAt(flipped), test.ShouldAlmostEqual, 1, 1e-9)
	low := spatialmath.NewPoseFromPoint(r3.Vector{Z: 1}).
		Compose(spatialmath.NewPoseFromAxisAngle(r3.Vector{X: 1}, math.Pi))
	test.That(t, evalAt(low), test.ShouldAlmostEqual, 0, 1e-9)

	_, err = NewContactPose(l.ID(), 0, offset, r3.Vector{}, 0, 0.001)
	test.That(t, err, test.ShouldNotBeNil)

	rnd := rand.New(rand.NewSource(8))
	for trial := 0; trial < 5; trial++ {
		checkJacobians(t, c, randomAssignment(t, r, 0, rnd), 1e-5)
	}
}

func TestContactTwist(t *testing.T) {
	r := twoLinkRobot(t)
	l, err := r.Link("l2")
	test.That(t, err, test.ShouldBeNil)

	offset := r3.Vector{Z: 1}
	c := NewContactTwist(l.ID(), 0, offset, 0.001)
	a := ZeroAssignment(r, 0)
	// rotation about x moves the offset point along -y
	a.SetVector(TwistKey(l.ID(), 0), spatialmath.Vector6{0.5, 0, 0, 0, 0, 0})
	lin, err := c.Linearize(a)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lin.Residual[0], test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, lin.Residual[1], test.ShouldAlmostEqual, -0.5, 1e-12)
	test.That(t, lin.Residual[2], test.ShouldAlmostEqual, 0, 1e-12)

	// counter-translating the link stills the point
	a.SetVector(TwistKey(l.ID(), 0), spatialmath.Vector6{0.5, 0, 0, 0, 0.5, 0})
	lin, err = c.Linearize(a)
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 3; i++ {
		test.That(t, lin.Residual[i], test.ShouldAlmostEqual, 0, 1e-12)
	}

	rnd := rand.New(rand.NewSource(9))
	checkJacobians(t, c, randomAssignment(t, r, 0, rnd), 1e-6)
}

func TestContactAccel(t *testing.T) {
	r := twoLinkRobot(t)
	l, err := r.Link("l2")
	test.That(t, err, test.ShouldBeNil)

	c := NewContactAccel(l.ID(), 0, r3.Vector{Z: 1}, 0.001)
	a := ZeroAssignment(r, 0)
	a.SetVector(TwistAccelKey(l.ID(), 0), spatialmath.Vector6{0, 1, 0, 0, 0, 0})
	lin, err := c.Linearize(a)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lin.Residual[0], test.ShouldAlmostEqual, 1, 1e-12)
	test.That(t, lin.Residual[1], test.ShouldAlmostEqual, 0, 1e-12)
	test.That(t, lin.Residual[2], test.ShouldAlmostEqual, 0, 1e-12)

	rnd := rand.New(rand.NewSource(10))
	checkJacobians(t, c, randomAssignment(t, r, 0, rnd), 1e-6)
}

func TestPointGoal(t *testing.T) {
	r := twoLinkRobot(t)
	l, err := r.Link("l2")
	test.That(t, err, test.ShouldBeNil)

	offset := r3.Vector{Z: 1}
	goal := r3.Vector{Z: 4}
	c := NewPointGoal(l.ID(), 0, offset, goal, 0.001)

	// rest CoM pose (0,0,3) plus offset lands exactly on the goal
	a := ZeroAssignment(r, 0)
	lin, err := c.Linearize(a)
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 3; i++ {
		test.That(t, lin.Residual[i], test.ShouldAlmostEqual, 0, 1e-9)
	}

	a.SetPose(PoseKey(l.ID(), 0), spatialmath.NewPoseFromPoint(r3.Vector{X: 1, Z: 3}))
	lin, err = c.Linearize(a)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, lin.Residual[0], test.ShouldAlmostEqual, 1, 1e-9)

	rnd := rand.New(rand.NewSource(11))
	for trial := 0; trial < 5; trial++ {
		checkJacobians(t, c, randomAssignment(t, r, 0, rnd), 1e-5)
	}
}

func TestPosePriorJacobians(t *testing.T) {
	r := twoLinkRobot(t)
	l, err := r.Link("l2")
	test.That(t, err, test.ShouldBeNil)

	prior := spatialmath.NewPoseFromPoint(r3.Vector{Z: 3}).
		Compose(spatialmath.NewPoseFromAxisAngle(r3.Vector{Y: 1}, 0.3))
	c := NewPosePrior(PoseKey(l.ID(), 0), prior, 1e-5)

	a := ZeroAssignment(r, 0)
	a.SetPose(PoseKey(l.ID(), 0), prior)
	lin, err := c.Linearize(a)
	test.That(t, err, test.ShouldBeNil)
	for i := 0; i < 6; i++ {
		test.That(t, lin.Residual[i], test.ShouldAlmostEqual, 0, 1e-9)
	}

	rnd := rand.New(rand.NewSource(12))
	for trial := 0; trial < 5; trial++ {
		checkJacobians(t, c, randomAssignment(t, r, 0, rnd), 1e-5)
	}
}
