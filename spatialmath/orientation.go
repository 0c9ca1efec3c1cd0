package spatialmath

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"

	"github.com/kinodynamics/kinodyn/utils"
)

// NewPoseFromEulerAngles returns a pose rotated by the given x, y, z Euler
// angles in degrees, applied in ZYX order (x first), with no translation.
func NewPoseFromEulerAngles(x, y, z float64) Pose {
	rx := NewPoseFromAxisAngle(r3.Vector{X: 1}, utils.DegToRad(x))
	ry := NewPoseFromAxisAngle(r3.Vector{Y: 1}, utils.DegToRad(y))
	rz := NewPoseFromAxisAngle(r3.Vector{Z: 1}, utils.DegToRad(z))
	return rz.Compose(ry).Compose(rx)
}

// EulerAngles returns the pose's rotation as x, y, z Euler angles in degrees
// under the same ZYX convention. Euler angles are singular at the poles;
// prefer working with poses directly.
func (p Pose) EulerAngles() (x, y, z float64) {
	q := mgl64.Quat{W: p.R.Real, V: mgl64.Vec3{p.R.Imag, p.R.Jmag, p.R.Kmag}}
	m := q.Mat4()
	sy := math.Sqrt(m.At(0, 0)*m.At(0, 0) + m.At(1, 0)*m.At(1, 0))
	if sy < 1e-6 {
		x = utils.RadToDeg(math.Atan2(-m.At(1, 2), m.At(1, 1)))
		y = utils.RadToDeg(math.Atan2(-m.At(2, 0), sy))
		z = 0
		return x, y, z
	}
	x = utils.RadToDeg(math.Atan2(m.At(2, 1), m.At(2, 2)))
	y = utils.RadToDeg(math.Atan2(-m.At(2, 0), sy))
	z = utils.RadToDeg(math.Atan2(m.At(1, 0), m.At(0, 0)))
	return x, y, z
}
