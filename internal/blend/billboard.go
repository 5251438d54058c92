package blend

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/ayusman/yuletide/internal/layout"
)

var worldUp = r3.Vec{Y: 1}

// Billboard returns the orientation that points the +Z face of an object
// at from toward to while keeping its X axis horizontal.
func Billboard(from, to r3.Vec) quat.Number {
	d := r3.Sub(to, from)
	if r3.Norm(d) < 1e-9 {
		return layout.Identity
	}
	z := r3.Unit(d)

	x := r3.Cross(worldUp, z)
	if r3.Norm(x) < 1e-9 {
		// Looking straight up or down.
		x = r3.Vec{X: 1}
	}
	x = r3.Unit(x)
	y := r3.Cross(z, x)

	return fromBasis(x, y, z)
}

// fromBasis converts the rotation matrix with columns x, y, z to a unit
// quaternion.
func fromBasis(x, y, z r3.Vec) quat.Number {
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	var q quat.Number
	switch trace := m00 + m11 + m22; {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = quat.Number{
			Real: 0.25 / s,
			Imag: (m21 - m12) * s,
			Jmag: (m02 - m20) * s,
			Kmag: (m10 - m01) * s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = quat.Number{
			Real: (m21 - m12) / s,
			Imag: 0.25 * s,
			Jmag: (m01 + m10) / s,
			Kmag: (m02 + m20) / s,
		}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = quat.Number{
			Real: (m02 - m20) / s,
			Imag: (m01 + m10) / s,
			Jmag: 0.25 * s,
			Kmag: (m12 + m21) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = quat.Number{
			Real: (m10 - m01) / s,
			Imag: (m02 + m20) / s,
			Jmag: (m12 + m21) / s,
			Kmag: 0.25 * s,
		}
	}
	return quat.Scale(1/quat.Abs(q), q)
}
