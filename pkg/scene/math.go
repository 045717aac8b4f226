package scene

import "math"

// Vec3 is a point in 3D space.
type Vec3 [3]float64

// Matrix is a row-major 4x4 affine transform.
type Matrix [4][4]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translation returns a transform that moves points by t.
func Translation(t Vec3) Matrix {
	m := Identity()
	m[0][3], m[1][3], m[2][3] = t[0], t[1], t[2]
	return m
}

// Scale returns a transform that scales points by s along each axis.
func Scale(s Vec3) Matrix {
	m := Identity()
	m[0][0], m[1][1], m[2][2] = s[0], s[1], s[2]
	return m
}

// RotationEuler returns the XYZ Euler rotation (radians), applied X first.
func RotationEuler(r Vec3) Matrix {
	sx, cx := math.Sincos(r[0])
	sy, cy := math.Sincos(r[1])
	sz, cz := math.Sincos(r[2])

	rx := Matrix{{1, 0, 0, 0}, {0, cx, -sx, 0}, {0, sx, cx, 0}, {0, 0, 0, 1}}
	ry := Matrix{{cy, 0, sy, 0}, {0, 1, 0, 0}, {-sy, 0, cy, 0}, {0, 0, 0, 1}}
	rz := Matrix{{cz, -sz, 0, 0}, {sz, cz, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
	return rz.Mul(ry).Mul(rx)
}

// Compose builds translation * rotation * scale.
func Compose(translation, rotation, scale Vec3) Matrix {
	return Translation(translation).Mul(RotationEuler(rotation)).Mul(Scale(scale))
}

// Mul returns m * o.
func (m Matrix) Mul(o Matrix) Matrix {
	var out Matrix
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				out[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return out
}

// Apply transforms the point p.
func (m Matrix) Apply(p Vec3) Vec3 {
	var out Vec3
	for i := 0; i < 3; i++ {
		out[i] = m[i][0]*p[0] + m[i][1]*p[1] + m[i][2]*p[2] + m[i][3]
	}
	return out
}

// IsZero reports whether m is the zero matrix, which hosts use for "no transform".
func (m Matrix) IsZero() bool {
	return m == Matrix{}
}

// Bounds returns the axis-aligned box of points. ok is false when points is empty.
func Bounds(points []Vec3) (lo, hi Vec3, ok bool) {
	if len(points) == 0 {
		return lo, hi, false
	}
	lo, hi = points[0], points[0]
	for _, p := range points[1:] {
		for i := 0; i < 3; i++ {
			lo[i] = math.Min(lo[i], p[i])
			hi[i] = math.Max(hi[i], p[i])
		}
	}
	return lo, hi, true
}

// Corners returns the eight corners of the box [lo, hi].
func Corners(lo, hi Vec3) [8]Vec3 {
	var out [8]Vec3
	for i := 0; i < 8; i++ {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<axis) != 0 {
				out[i][axis] = hi[axis]
			} else {
				out[i][axis] = lo[axis]
			}
		}
	}
	return out
}
