package render

import (
	"github.com/taigrr/tinyrender/pkg/math3d"
)

// Plane is the set of points p with Normal·p + D = 0. Points with a
// positive distance lie on the inner side.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// Normalize scales the plane so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to point.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Frustum holds the six view-volume planes in world space, in the same
// order Clip uses: near, far, left, right, top, bottom. Normals point
// inward.
type Frustum struct {
	Planes [6]Plane
}

// NewFrustumFromMatrix pulls the clip planes back through a
// view-projection matrix: a world point v is inside clip plane c iff
// c·(M v) >= 0, i.e. (Mᵀc)·v >= 0.
func NewFrustumFromMatrix(m math3d.Mat4) Frustum {
	var f Frustum
	mt := m.Transpose()
	for i, c := range clipPlanes {
		w := mt.MulVec4(c)
		f.Planes[i] = Plane{Normal: w.Vec3(), D: w.W}
		f.Planes[i].Normalize()
	}
	return f
}

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// NewAABB creates an AABB from min and max points.
func NewAABB(min, max math3d.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center of the box.
func (b AABB) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the box.
func (b AABB) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// Transform returns the box bounding all eight corners after m.
func (b AABB) Transform(m math3d.Mat4) AABB {
	var out AABB
	for i := range 8 {
		// Bits 0..2 of i pick max or min on x, y and z.
		dir := math3d.V3(float64(i&1), float64(i&2), float64(i&4)).Sub(math3d.V3(0.5, 0.5, 0.5))
		p := m.MulPoint(b.corner(dir, true))
		if i == 0 {
			out = AABB{Min: p, Max: p}
			continue
		}
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// ContainsPoint reports whether p lies inside the box, borders included.
func (b AABB) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// IntersectsAABB reports whether any part of box may be visible. It tests
// the corner furthest along each plane normal, so it can report boxes
// near frustum corners as visible when they are not; it never rejects a
// visible box.
func (f Frustum) IntersectsAABB(box AABB) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(box.corner(plane.Normal, true)) < 0 {
			return false
		}
	}
	return true
}

// ContainsAABB reports whether box lies completely inside the frustum.
func (f Frustum) ContainsAABB(box AABB) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(box.corner(plane.Normal, false)) < 0 {
			return false
		}
	}
	return true
}

// corner returns the box corner furthest along dir, or the nearest one
// when far is false.
func (b AABB) corner(dir math3d.Vec3, far bool) math3d.Vec3 {
	pick := func(d, lo, hi float64) float64 {
		if (d >= 0) == far {
			return hi
		}
		return lo
	}
	return math3d.V3(
		pick(dir.X, b.Min.X, b.Max.X),
		pick(dir.Y, b.Min.Y, b.Max.Y),
		pick(dir.Z, b.Min.Z, b.Max.Z),
	)
}

// ContainsPoint reports whether p is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}
