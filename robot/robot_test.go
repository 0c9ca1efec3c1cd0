package robot

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/kinodynamics/kinodyn/spatialmath"
)

// two links stacked on z, one revolute joint about x at (0,0,2)
func simpleConfig() Config {
	return Config{
		Name: "simple",
		Links: []LinkConfig{
			{
				Name:      "l1",
				Mass:      100,
				Inertia:   Inertia{XX: 3, YY: 2, ZZ: 1},
				ComOffset: spatialmath.NewPoseFromPoint(r3.Vector{Z: 1}),
			},
			{
				Name:      "l2",
				Mass:      15,
				Inertia:   Inertia{XX: 1, YY: 2, ZZ: 3},
				Pose:      spatialmath.NewPoseFromPoint(r3.Vector{Z: 2}),
				ComOffset: spatialmath.NewPoseFromPoint(r3.Vector{Z: 1}),
			},
		},
		Joints: []JointConfig{
			{
				Name:   "j1",
				Kind:   Revolute,
				Effort: Actuated,
				Parent: "l1",
				Child:  "l2",
				Axis:   r3.Vector{X: 1},
				Limits: Limits{Lower: -math.Pi, Upper: math.Pi},
			},
		},
	}
}

// square loop of four links, each frame offset one unit along x
func fourBarConfig() Config {
	links := make([]LinkConfig, 0, 4)
	for _, name := range []string{"l0", "l1", "l2", "l3"} {
		links = append(links, LinkConfig{
			Name:      name,
			Mass:      1,
			Inertia:   Inertia{XX: 1, YY: 1, ZZ: 1},
			ComOffset: spatialmath.NewPoseFromPoint(r3.Vector{X: 0.5}),
		})
	}
	joints := []JointConfig{
		{Name: "j0", Kind: Revolute, Effort: Actuated, Parent: "l0", Child: "l1", Axis: r3.Vector{Z: 1}, Limits: Limits{Lower: -math.Pi, Upper: math.Pi}},
		{Name: "j1", Kind: Revolute, Effort: Actuated, Parent: "l1", Child: "l2", Axis: r3.Vector{Z: 1}, Limits: Limits{Lower: -math.Pi, Upper: math.Pi}},
		{Name: "j2", Kind: Revolute, Effort: Actuated, Parent: "l2", Child: "l3", Axis: r3.Vector{Z: 1}, Limits: Limits{Lower: -math.Pi, Upper: math.Pi}},
		{Name: "j3", Kind: Revolute, Effort: Actuated, Parent: "l3", Child: "l0", Axis: r3.Vector{Z: 1}, Limits: Limits{Lower: -math.Pi, Upper: math.Pi}},
	}
	return Config{Name: "fourbar", Links: links, Joints: joints}
}

func TestNewSimpleRobot(t *testing.T) {
	r, err := New(simpleConfig())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.NumLinks(), test.ShouldEqual, 2)
	test.That(t, r.NumJoints(), test.ShouldEqual, 1)

	l1, err := r.Link("l1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l1.Mass(), test.ShouldEqual, 100.)
	test.That(t, l1.ComPose().T, test.ShouldResemble, r3.Vector{Z: 1})

	l2, err := r.Link("l2")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l2.ComPose().T, test.ShouldResemble, r3.Vector{Z: 3})

	j1, err := r.Joint("j1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, j1.Parent(), test.ShouldEqual, "l1")
	test.That(t, j1.Child(), test.ShouldEqual, "l2")

	_, err = r.Link("nope")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = r.Joint("nope")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestScrewAxis(t *testing.T) {
	r, err := New(simpleConfig())
	test.That(t, err, test.ShouldBeNil)
	axes := r.ScrewAxes()
	want := spatialmath.Vector6{1, 0, 0, 0, -1, 0}
	for i := 0; i < 6; i++ {
		test.That(t, axes["j1"][i], test.ShouldAlmostEqual, want[i], 1e-12)
	}
}

func TestLinkTransforms(t *testing.T) {
	r, err := New(simpleConfig())
	test.That(t, err, test.ShouldBeNil)

	rest, err := r.LinkTransforms(nil)
	test.That(t, err, test.ShouldBeNil)
	restPose := rest["l2"]["l1"]
	test.That(t, restPose.AlmostEqual(spatialmath.NewPoseFromPoint(r3.Vector{Z: 2}), 1e-9), test.ShouldBeTrue)

	bent, err := r.LinkTransforms(map[string]float64{"j1": math.Pi / 4})
	test.That(t, err, test.ShouldBeNil)
	want := spatialmath.NewPoseFromPoint(r3.Vector{Z: 2}).
		Compose(spatialmath.NewPoseFromAxisAngle(r3.Vector{X: 1}, math.Pi/4))
	test.That(t, bent["l2"]["l1"].AlmostEqual(want, 1e-9), test.ShouldBeTrue)

	_, err = r.LinkTransforms(map[string]float64{"bogus": 1})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestComTransform(t *testing.T) {
	r, err := New(simpleConfig())
	test.That(t, err, test.ShouldBeNil)

	rest, err := r.ComTransform("j1", 0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, rest.AlmostEqual(spatialmath.NewPoseFromPoint(r3.Vector{Z: 2}), 1e-9), test.ShouldBeTrue)

	j1, err := r.Joint("j1")
	test.That(t, err, test.ShouldBeNil)
	cTp, err := j1.ChildToParentCom(-math.Pi / 4)
	test.That(t, err, test.ShouldBeNil)
	want := spatialmath.NewPose(
		r3.Vector{Y: 0.7071067811865475, Z: -1.7071067811865475},
		spatialmath.NewPoseFromAxisAngle(r3.Vector{X: 1}, math.Pi/4).R,
	)
	test.That(t, cTp.AlmostEqual(want, 1e-9), test.ShouldBeTrue)
}

func TestFourBarLoop(t *testing.T) {
	r, err := New(fourBarConfig())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.NumLinks(), test.ShouldEqual, 4)
	test.That(t, r.NumJoints(), test.ShouldEqual, 4)

	// every link sits on exactly one parent joint and one child joint
	for _, name := range []string{"l0", "l1", "l2", "l3"} {
		pj, err := r.ParentJoints(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(pj), test.ShouldEqual, 1)
		cj, err := r.ChildJoints(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(cj), test.ShouldEqual, 1)
		l, err := r.Link(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, l.Degree(), test.ShouldEqual, 2)
	}

	j, err := r.JointBetween("l3", "l0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, j.Name(), test.ShouldEqual, "j3")
	j, err = r.JointBetween("l0", "l1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, j.Name(), test.ShouldEqual, "j0")
	_, err = r.JointBetween("l0", "l2")
	test.That(t, err, test.ShouldNotBeNil)

	parents, err := r.ParentLinks("l1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(parents), test.ShouldEqual, 1)
	test.That(t, parents[0].Name(), test.ShouldEqual, "l0")
	children, err := r.ChildLinks("l1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(children), test.ShouldEqual, 1)
	test.That(t, children[0].Name(), test.ShouldEqual, "l2")
}

func TestDisconnectedTopology(t *testing.T) {
	cfg := simpleConfig()
	cfg.Links = append(cfg.Links, LinkConfig{
		Name:      "orphan",
		Mass:      1,
		Inertia:   Inertia{XX: 1, YY: 1, ZZ: 1},
		ComOffset: spatialmath.NewPoseFromPoint(r3.Vector{Z: 0.5}),
	})
	_, err := New(cfg)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigValidation(t *testing.T) {
	dangling := simpleConfig()
	dangling.Joints[0].Child = "missing"
	_, err := New(dangling)
	test.That(t, err, test.ShouldNotBeNil)

	dup := simpleConfig()
	dup.Links[1].Name = "l1"
	_, err = New(dup)
	test.That(t, err, test.ShouldNotBeNil)

	zeroAxis := simpleConfig()
	zeroAxis.Joints[0].Axis = r3.Vector{}
	_, err = New(zeroAxis)
	test.That(t, err, test.ShouldNotBeNil)

	selfLoop := simpleConfig()
	selfLoop.Joints[0].Parent = "l2"
	_, err = New(selfLoop)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestJointLimitAdvisory(t *testing.T) {
	cfg := simpleConfig()
	cfg.Joints[0].Limits = Limits{Lower: -0.5, Upper: 0.5}
	r, err := New(cfg)
	test.That(t, err, test.ShouldBeNil)

	// out of limits still produces the transform
	poses, err := r.LinkTransforms(map[string]float64{"j1": 1.0})
	test.That(t, err, test.ShouldNotBeNil)
	want := spatialmath.NewPoseFromPoint(r3.Vector{Z: 2}).
		Compose(spatialmath.NewPoseFromAxisAngle(r3.Vector{X: 1}, 1.0))
	test.That(t, poses["l2"]["l1"].AlmostEqual(want, 1e-9), test.ShouldBeTrue)
}

func TestVariant(t *testing.T) {
	r, err := New(simpleConfig())
	test.That(t, err, test.ShouldBeNil)

	pin := spatialmath.NewPoseFromPoint(r3.Vector{Z: 1})
	v, err := r.Variant(map[string]spatialmath.Pose{"l1": pin})
	test.That(t, err, test.ShouldBeNil)

	vl1, err := v.Link("l1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, vl1.Fixed(), test.ShouldBeTrue)
	test.That(t, vl1.FixedPose().AlmostEqual(pin, 1e-9), test.ShouldBeTrue)

	// the original robot is untouched
	l1, err := r.Link("l1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l1.Fixed(), test.ShouldBeFalse)

	_, err = r.Variant(map[string]spatialmath.Pose{"nope": pin})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFixedLinkFromConfig(t *testing.T) {
	cfg := simpleConfig()
	cfg.Links[0].Fixed = true
	r, err := New(cfg)
	test.That(t, err, test.ShouldBeNil)
	l1, err := r.Link("l1")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l1.Fixed(), test.ShouldBeTrue)
	// defaults to the rest CoM pose
	test.That(t, l1.FixedPose().AlmostEqual(spatialmath.NewPoseFromPoint(r3.Vector{Z: 1}), 1e-9), test.ShouldBeTrue)
}
