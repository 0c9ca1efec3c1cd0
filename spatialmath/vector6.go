package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Vector6 is a 6-dimensional spatial vector, angular components first. It
// represents twists (angular and linear velocity), twist accelerations, and
// wrenches (moment and force) depending on context.
type Vector6 [6]float64

// NewVector6 assembles a spatial vector from angular and linear parts.
func NewVector6(angular, linear r3.Vector) Vector6 {
	return Vector6{angular.X, angular.Y, angular.Z, linear.X, linear.Y, linear.Z}
}

// Angular returns the first three components.
func (v Vector6) Angular() r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// Linear returns the last three components.
func (v Vector6) Linear() r3.Vector {
	return r3.Vector{X: v[3], Y: v[4], Z: v[5]}
}

// Add returns v + o.
func (v Vector6) Add(o Vector6) Vector6 {
	var out Vector6
	for i := range v {
		out[i] = v[i] + o[i]
	}
	return out
}

// Sub returns v - o.
func (v Vector6) Sub(o Vector6) Vector6 {
	var out Vector6
	for i := range v {
		out[i] = v[i] - o[i]
	}
	return out
}

// Scale returns v scaled by s.
func (v Vector6) Scale(s float64) Vector6 {
	var out Vector6
	for i := range v {
		out[i] = v[i] * s
	}
	return out
}

// Dot returns the dot product of two spatial vectors.
func (v Vector6) Dot(o Vector6) float64 {
	sum := 0.0
	for i := range v {
		sum += v[i] * o[i]
	}
	return sum
}

// Norm returns the Euclidean norm.
func (v Vector6) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// Slice returns the components as a fresh slice.
func (v Vector6) Slice() []float64 {
	out := make([]float64, 6)
	copy(out, v[:])
	return out
}

// Vec returns the components as a gonum vector.
func (v Vector6) Vec() *mat.VecDense {
	return mat.NewVecDense(6, v.Slice())
}

// MulVec6 multiplies a 6x6 matrix by a spatial vector.
func MulVec6(m *mat.Dense, v Vector6) Vector6 {
	var out Vector6
	for i := 0; i < 6; i++ {
		sum := 0.0
		for j := 0; j < 6; j++ {
			sum += m.At(i, j) * v[j]
		}
		out[i] = sum
	}
	return out
}

// MulVec6T multiplies the transpose of a 6x6 matrix by a spatial vector.
func MulVec6T(m *mat.Dense, v Vector6) Vector6 {
	var out Vector6
	for i := 0; i < 6; i++ {
		sum := 0.0
		for j := 0; j < 6; j++ {
			sum += m.At(j, i) * v[j]
		}
		out[i] = sum
	}
	return out
}
