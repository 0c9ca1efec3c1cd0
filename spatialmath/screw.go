package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// Numerically below this rotation magnitude the closed-form coefficients of
// the exp/log Jacobians are replaced by their Taylor expansions.
const smallAngle = 1e-8

// Skew returns the 3x3 skew-symmetric matrix of v, so that Skew(v)*u = v x u.
func Skew(v r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	})
}

// Exp maps exponential coordinates xi = [omega; v] to a pose: the rotation is
// exp(skew(omega)) and the translation couples in through the SO(3) left
// Jacobian. This is the matrix exponential of the twist, the building block
// of the product-of-exponentials formulation.
func Exp(xi Vector6) Pose {
	omega := xi.Angular()
	theta := omega.Norm()
	rot := NewPoseFromAxisAngle(omega, theta).R
	jl := so3LeftJacobian(omega)
	lin := xi.Linear()
	t := r3.Vector{
		X: jl.At(0, 0)*lin.X + jl.At(0, 1)*lin.Y + jl.At(0, 2)*lin.Z,
		Y: jl.At(1, 0)*lin.X + jl.At(1, 1)*lin.Y + jl.At(1, 2)*lin.Z,
		Z: jl.At(2, 0)*lin.X + jl.At(2, 1)*lin.Y + jl.At(2, 2)*lin.Z,
	}
	return Pose{R: rot, T: t}
}

// Log is the inverse of Exp, returning the exponential coordinates of a pose.
// The rotation magnitude is mapped into [0, pi].
func Log(p Pose) Vector6 {
	omega := quatLog(p.R)
	jlInv := so3LeftJacobianInverse(omega)
	t := p.T
	v := r3.Vector{
		X: jlInv.At(0, 0)*t.X + jlInv.At(0, 1)*t.Y + jlInv.At(0, 2)*t.Z,
		Y: jlInv.At(1, 0)*t.X + jlInv.At(1, 1)*t.Y + jlInv.At(1, 2)*t.Z,
		Z: jlInv.At(2, 0)*t.X + jlInv.At(2, 1)*t.Y + jlInv.At(2, 2)*t.Z,
	}
	return NewVector6(omega, v)
}

// Adjoint returns the 6x6 adjoint matrix of a pose, mapping twists expressed
// in the pose's source frame into its target frame.
func Adjoint(p Pose) *mat.Dense {
	r := p.RotationMatrix()
	tr := mat.NewDense(3, 3, nil)
	tr.Mul(Skew(p.T), r)
	out := mat.NewDense(6, 6, nil)
	setBlock(out, 0, 0, r)
	setBlock(out, 3, 0, tr)
	setBlock(out, 3, 3, r)
	return out
}

// AdjointTranspose returns Adjoint(p) transposed, which maps wrenches in the
// opposite direction to twists.
func AdjointTranspose(p Pose) *mat.Dense {
	ad := Adjoint(p)
	out := mat.NewDense(6, 6, nil)
	out.Copy(ad.T())
	return out
}

// SmallAdjoint returns the 6x6 matrix ad(xi) of the Lie bracket, so that
// SmallAdjoint(a)*b = [a, b].
func SmallAdjoint(xi Vector6) *mat.Dense {
	w := Skew(xi.Angular())
	v := Skew(xi.Linear())
	out := mat.NewDense(6, 6, nil)
	setBlock(out, 0, 0, w)
	setBlock(out, 3, 0, v)
	setBlock(out, 3, 3, w)
	return out
}

// TwistTransposeMap returns the matrix B(w) such that B(w)*xi equals
// SmallAdjoint(xi) transposed applied to w. It is the derivative of
// ad(V)^T w with respect to V, used by the wrench balance equations.
func TwistTransposeMap(w Vector6) *mat.Dense {
	m := Skew(w.Angular())
	f := Skew(w.Linear())
	out := mat.NewDense(6, 6, nil)
	setBlock(out, 0, 0, m)
	setBlock(out, 0, 3, f)
	setBlock(out, 3, 0, f)
	return out
}

// LeftJacobian returns the 6x6 left Jacobian of SE(3) at xi, relating
// additive changes of exponential coordinates to local frame perturbations:
// Exp(xi + d) ~ Exp(LeftJacobian(xi) d) * Exp(xi).
func LeftJacobian(xi Vector6) *mat.Dense {
	jl := so3LeftJacobian(xi.Angular())
	q := leftJacobianQ(xi)
	out := mat.NewDense(6, 6, nil)
	setBlock(out, 0, 0, jl)
	setBlock(out, 3, 0, q)
	setBlock(out, 3, 3, jl)
	return out
}

// LeftJacobianInverse returns the inverse of the SE(3) left Jacobian at xi.
func LeftJacobianInverse(xi Vector6) *mat.Dense {
	jlInv := so3LeftJacobianInverse(xi.Angular())
	q := leftJacobianQ(xi)
	// block inverse: [[A,0],[Q,A]]^-1 = [[A^-1,0],[-A^-1 Q A^-1, A^-1]]
	lower := mat.NewDense(3, 3, nil)
	lower.Mul(q, jlInv)
	lower.Mul(jlInv, lower)
	lower.Scale(-1, lower)
	out := mat.NewDense(6, 6, nil)
	setBlock(out, 0, 0, jlInv)
	setBlock(out, 3, 0, lower)
	setBlock(out, 3, 3, jlInv)
	return out
}

// RightJacobian returns the 6x6 right Jacobian of SE(3) at xi:
// Exp(xi + d) ~ Exp(xi) * Exp(RightJacobian(xi) d).
func RightJacobian(xi Vector6) *mat.Dense {
	return LeftJacobian(xi.Scale(-1))
}

// RightJacobianInverse returns the inverse of the SE(3) right Jacobian at xi.
// It appears in the exact derivative of residuals of the form Log(...).
func RightJacobianInverse(xi Vector6) *mat.Dense {
	return LeftJacobianInverse(xi.Scale(-1))
}

// quatLog returns the rotation vector of a unit quaternion, with magnitude
// in [0, pi]. Convention follows the Eigen angle-axis extraction the rest of
// the codebase compares against.
func quatLog(q quat.Number) r3.Vector {
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	denom := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	angle := 2 * math.Atan2(denom, q.Real)
	if denom < smallAngle {
		// first-order: omega ~ 2 * imaginary part
		return r3.Vector{X: 2 * q.Imag, Y: 2 * q.Jmag, Z: 2 * q.Kmag}
	}
	s := angle / denom
	return r3.Vector{X: q.Imag * s, Y: q.Jmag * s, Z: q.Kmag * s}
}

func so3LeftJacobian(omega r3.Vector) *mat.Dense {
	theta := omega.Norm()
	w := Skew(omega)
	w2 := mat.NewDense(3, 3, nil)
	w2.Mul(w, w)
	var c1, c2 float64
	if theta < smallAngle {
		c1, c2 = 0.5, 1.0/6.0
	} else {
		c1 = (1 - math.Cos(theta)) / (theta * theta)
		c2 = (theta - math.Sin(theta)) / (theta * theta * theta)
	}
	out := identity3()
	w.Scale(c1, w)
	w2.Scale(c2, w2)
	out.Add(out, w)
	out.Add(out, w2)
	return out
}

func so3LeftJacobianInverse(omega r3.Vector) *mat.Dense {
	theta := omega.Norm()
	w := Skew(omega)
	w2 := mat.NewDense(3, 3, nil)
	w2.Mul(w, w)
	var c2 float64
	if theta < smallAngle {
		c2 = 1.0 / 12.0
	} else {
		c2 = 1/(theta*theta) - (1+math.Cos(theta))/(2*theta*math.Sin(theta))
	}
	out := identity3()
	w.Scale(-0.5, w)
	w2.Scale(c2, w2)
	out.Add(out, w)
	out.Add(out, w2)
	return out
}

// leftJacobianQ is the off-diagonal block of the SE(3) left Jacobian
// (Barfoot's Q matrix).
func leftJacobianQ(xi Vector6) *mat.Dense {
	w := Skew(xi.Angular())
	v := Skew(xi.Linear())
	theta := xi.Angular().Norm()

	var c1, c2, c3 float64
	if theta < smallAngle {
		c1, c2, c3 = 1.0/6.0, 1.0/24.0, 1.0/120.0
	} else {
		t2 := theta * theta
		t3 := t2 * theta
		t4 := t3 * theta
		t5 := t4 * theta
		s, c := math.Sin(theta), math.Cos(theta)
		c1 = (theta - s) / t3
		c2 = (t2 + 2*c - 2) / (2 * t4)
		c3 = (2*theta - 3*s + theta*c) / (2 * t5)
	}

	wv := mul3(w, v)
	vw := mul3(v, w)
	wvw := mul3(wv, w)
	wwv := mul3(w, wv)
	vww := mul3(vw, w)
	wvww := mul3(wvw, w)
	wwvw := mul3(w, wvw)

	q := mat.NewDense(3, 3, nil)
	q.Scale(0.5, v)

	tmp := mat.NewDense(3, 3, nil)
	tmp.Add(wv, vw)
	tmp.Add(tmp, wvw)
	tmp.Scale(c1, tmp)
	q.Add(q, tmp)

	tmp.Add(wwv, vww)
	scaled := mat.NewDense(3, 3, nil)
	scaled.Scale(-3, wvw)
	tmp.Add(tmp, scaled)
	tmp.Scale(c2, tmp)
	q.Add(q, tmp)

	tmp.Add(wvww, wwvw)
	tmp.Scale(c3, tmp)
	q.Add(q, tmp)
	return q
}

func mul3(a, b *mat.Dense) *mat.Dense {
	out := mat.NewDense(3, 3, nil)
	out.Mul(a, b)
	return out
}

func identity3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
}

func setBlock(dst *mat.Dense, row, col int, src *mat.Dense) {
	r, c := src.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			dst.Set(row+i, col+j, src.At(i, j))
		}
	}
}
