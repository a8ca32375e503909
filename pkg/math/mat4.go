package math

import "math"

// Mat4 is a 4x4 matrix in column-major order (OpenGL compatible).
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float64

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale returns a scale matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX returns a rotation matrix around the X axis.
// angle is in radians.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)

	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY returns a rotation matrix around the Y axis.
// angle is in radians.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)

	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ returns a rotation matrix around the Z axis.
// angle is in radians.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)

	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// RotateEuler returns the rotation matrix of XYZ Euler angles (radians):
// Rz * Ry * Rx, so X is applied first.
func RotateEuler(e Vec3) Mat4 {
	return RotateZ(e.Z).Mul(RotateY(e.Y)).Mul(RotateX(e.X))
}

// Compose builds translation * rotation * scale.
func Compose(translation, euler, scale Vec3) Mat4 {
	return Translate(translation).Mul(RotateEuler(euler)).Mul(Scale(scale))
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[0*4+row]*other[col*4+0] +
					m[1*4+row]*other[col*4+1] +
					m[2*4+row]*other[col*4+2] +
					m[3*4+row]*other[col*4+3]
		}
	}
	return result
}

// at returns the element in the given row and column.
func (m Mat4) at(row, col int) float64 {
	return m[col*4+row]
}

// TransformPoint transforms a 3D point by this matrix (assumes w=1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w != 0 && w != 1 {
		return Vec3{x / w, y / w, z / w}
	}
	return Vec3{x, y, z}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Euler extracts XYZ Euler angles (radians) from the rotation part of an
// orthonormal matrix. Both candidate solutions are computed and the one
// with the smaller sum of absolute angles wins.
func (m Mat4) Euler() Vec3 {
	cy := math.Hypot(m.at(0, 0), m.at(1, 0))

	if cy <= 16*1e-7 {
		// Gimbal lock: Z is folded into X.
		return Vec3{
			X: math.Atan2(-m.at(1, 2), m.at(1, 1)),
			Y: math.Atan2(-m.at(2, 0), cy),
			Z: 0,
		}
	}

	a := Vec3{
		X: math.Atan2(m.at(2, 1), m.at(2, 2)),
		Y: math.Atan2(-m.at(2, 0), cy),
		Z: math.Atan2(m.at(1, 0), m.at(0, 0)),
	}
	b := Vec3{
		X: math.Atan2(-m.at(2, 1), -m.at(2, 2)),
		Y: math.Atan2(-m.at(2, 0), -cy),
		Z: math.Atan2(-m.at(1, 0), -m.at(0, 0)),
	}

	if math.Abs(a.X)+math.Abs(a.Y)+math.Abs(a.Z) > math.Abs(b.X)+math.Abs(b.Y)+math.Abs(b.Z) {
		return b
	}
	return a
}
