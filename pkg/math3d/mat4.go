package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order, OpenGL style.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
//
// The element at (row, col) is m[row+col*4].
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = v.X, v.Y, v.Z
	return m
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = v.X, v.Y, v.Z
	return m
}

// ScaleUniform creates a uniform scaling matrix.
func ScaleUniform(s float64) Mat4 {
	return Scale(V3(s, s, s))
}

// RotateX creates a rotation matrix around the X axis (radians).
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

// RotateY creates a rotation matrix around the Y axis (radians).
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// RotateZ creates a rotation matrix around the Z axis (radians).
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// Rotate creates a rotation of angle radians around an arbitrary axis.
func Rotate(axis Vec3, angle float64) Mat4 {
	a := axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c

	m := Identity()
	m[0] = t*a.X*a.X + c
	m[1] = t*a.X*a.Y + s*a.Z
	m[2] = t*a.X*a.Z - s*a.Y
	m[4] = t*a.X*a.Y - s*a.Z
	m[5] = t*a.Y*a.Y + c
	m[6] = t*a.Y*a.Z + s*a.X
	m[8] = t*a.X*a.Z + s*a.Y
	m[9] = t*a.Y*a.Z - s*a.X
	m[10] = t*a.Z*a.Z + c
	return m
}

// ViewMatrix builds the world-to-camera transform for a camera at eye
// looking at target. The camera basis is right-handed: the camera looks
// down its -Z axis and worldUp fixes the roll. The eye maps to the origin.
//
// The caller must ensure eye != target and that worldUp is not parallel
// to the viewing direction; see render.Camera.Validate.
func ViewMatrix(eye, target, worldUp Vec3) Mat4 {
	zAxis := eye.Sub(target).Normalize()
	xAxis := worldUp.Cross(zAxis).Normalize()
	yAxis := zAxis.Cross(xAxis)

	// Rows of the rotation are the camera axes; translation moves eye to 0.
	var m Mat4
	m[0], m[4], m[8] = xAxis.X, xAxis.Y, xAxis.Z
	m[1], m[5], m[9] = yAxis.X, yAxis.Y, yAxis.Z
	m[2], m[6], m[10] = zAxis.X, zAxis.Y, zAxis.Z
	m[12] = -xAxis.Dot(eye)
	m[13] = -yAxis.Dot(eye)
	m[14] = -zAxis.Dot(eye)
	m[15] = 1
	return m
}

// Perspective creates a symmetric perspective projection.
// fovYDegrees is the vertical field of view in degrees, aspect is
// width/height. Points on the near plane map to NDC z = -1 and points on
// the far plane to NDC z = +1.
func Perspective(fovYDegrees, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(Radians(fovYDegrees)/2)
	nf := 1.0 / (near - far)

	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) * nf
	m[11] = -1
	m[14] = 2 * far * near * nf
	return m
}

// Orthographic creates an orthographic projection mapping the box
// [left,right]x[bottom,top]x[-near,-far] to the NDC cube.
func Orthographic(left, right, bottom, top, near, far float64) Mat4 {
	rl := 1.0 / (right - left)
	tb := 1.0 / (top - bottom)
	fn := 1.0 / (far - near)

	m := Identity()
	m[0] = 2 * rl
	m[5] = 2 * tb
	m[10] = -2 * fn
	m[12] = -(right + left) * rl
	m[13] = -(top + bottom) * tb
	m[14] = -(far + near) * fn
	return m
}

// Viewport maps NDC x,y in [-1,1] to screen space [0,width]x[0,height]
// with the origin at the top-left corner. NDC z passes through unchanged.
func Viewport(width, height int) Mat4 {
	hw := float64(width) / 2
	hh := float64(height) / 2

	m := Identity()
	m[0] = hw
	m[5] = -hh
	m[12] = hw
	m[13] = hh
	return m
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulPoint transforms a Vec3 as a point (w=1) without a perspective divide.
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).Vec3()
}

// MulDir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for row := range 4 {
		for col := range 4 {
			t[col+row*4] = m[row+col*4]
		}
	}
	return t
}

// Inverse returns the inverse of the matrix using Gauss-Jordan elimination
// with partial pivoting. ok is false for a singular matrix, in which case
// the identity is returned.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	a := m
	inv = Identity()

	for col := range 4 {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a[row+col*4]) > math.Abs(a[pivot+col*4]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot+col*4]) < 1e-12 {
			return Identity(), false
		}
		if pivot != col {
			swapRows(&a, pivot, col)
			swapRows(&inv, pivot, col)
		}

		p := 1 / a[col+col*4]
		for k := range 4 {
			a[col+k*4] *= p
			inv[col+k*4] *= p
		}

		for row := range 4 {
			if row == col {
				continue
			}
			f := a[row+col*4]
			if f == 0 {
				continue
			}
			for k := range 4 {
				a[row+k*4] -= f * a[col+k*4]
				inv[row+k*4] -= f * inv[col+k*4]
			}
		}
	}
	return inv, true
}

func swapRows(m *Mat4, r1, r2 int) {
	for k := range 4 {
		m[r1+k*4], m[r2+k*4] = m[r2+k*4], m[r1+k*4]
	}
}

// NormalMatrix returns the inverse-transpose of m, used to carry surface
// normals through a non-uniform model transform. A singular m yields m.
func (m Mat4) NormalMatrix() Mat4 {
	inv, ok := m.Inverse()
	if !ok {
		return m
	}
	return inv.Transpose()
}
