package dynamics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/kinodynamics/kinodyn/robot"
	"github.com/kinodynamics/kinodyn/spatialmath"
)

// two links stacked on z with a revolute x joint at (0,0,2)
func twoLinkRobot(t *testing.T) *robot.Robot {
	t.Helper()
	r, err := robot.New(robot.Config{
		Name: "simple",
		Links: []robot.LinkConfig{
			{
				Name:      "l1",
				Mass:      100,
				Inertia:   robot.Inertia{XX: 3, YY: 2, ZZ: 1},
				ComOffset: spatialmath.NewPoseFromPoint(r3.Vector{Z: 1}),
			},
			{
				Name:      "l2",
				Mass:      15,
				Inertia:   robot.Inertia{XX: 1, YY: 2, ZZ: 3},
				Pose:      spatialmath.NewPoseFromPoint(r3.Vector{Z: 2}),
				ComOffset: spatialmath.NewPoseFromPoint(r3.Vector{Z: 1}),
			},
		},
		Joints: []robot.JointConfig{
			{
				Name:   "j1",
				Kind:   robot.Revolute,
				Effort: robot.Actuated,
				Parent: "l1",
				Child:  "l2",
				Axis:   r3.Vector{X: 1},
				Limits: robot.Limits{Lower: -math.Pi, Upper: math.Pi},
			},
		},
	})
	test.That(t, err, test.ShouldBeNil)
	return r
}

// randomAssignment perturbs the zero assignment of one timestep so
// Jacobian checks run away from any special configuration.
func randomAssignment(t *testing.T, r *robot.Robot, step int, rnd *rand.Rand) Assignment {
	t.Helper()
	a := ZeroAssignment(r, step)
	for _, k := range a.Keys() {
		switch k.Kind {
		case KindPose:
			xi := spatialmath.Vector6{}
			for i := range xi {
				xi[i] = rnd.Float64() - 0.5
			}
			test.That(t, a.Retract(k, xi.Slice()), test.ShouldBeNil)
		case KindTwist, KindTwistAccel, KindWrench:
			v := spatialmath.Vector6{}
			for i := range v {
				v[i] = 2 * (rnd.Float64() - 0.5)
			}
			a.SetVector(k, v)
		default:
			a.SetScalar(k, rnd.Float64()-0.5)
		}
	}
	return a
}

// checkJacobians compares every analytic Jacobian of c against centered
// finite differences.
func checkJacobians(t *testing.T, c Constraint, a Assignment, tol float64) {
	t.Helper()
	lin, err := c.Linearize(a)
	test.That(t, err, test.ShouldBeNil)
	for _, k := range c.Keys() {
		numeric, err := NumericalJacobian(c, a, k, 1e-5)
		test.That(t, err, test.ShouldBeNil)
		analytic, ok := lin.Jacobians[k]
		test.That(t, ok, test.ShouldBeTrue)
		diff := mat.NewDense(c.Dim(), k.LocalDim(), nil)
		diff.Sub(analytic, numeric)
		test.That(t, mat.Norm(diff, math.Inf(1)), test.ShouldBeLessThan, tol)
	}
}
