package render

import (
	"iter"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// Clip planes in homogeneous coordinates. A clip-space point p is inside a
// plane iff plane·p >= 0.
var (
	ClipNear   = math3d.V4(0, 0, 1, 1)  // z + w >= 0
	ClipFar    = math3d.V4(0, 0, -1, 1) // w - z >= 0
	ClipLeft   = math3d.V4(1, 0, 0, 1)  // x + w >= 0
	ClipRight  = math3d.V4(-1, 0, 0, 1) // w - x >= 0
	ClipTop    = math3d.V4(0, -1, 0, 1) // w - y >= 0
	ClipBottom = math3d.V4(0, 1, 0, 1)  // y + w >= 0
)

// clipPlanes is the order in which Clip visits the planes.
var clipPlanes = [...]math3d.Vec4{ClipNear, ClipFar, ClipLeft, ClipRight, ClipTop, ClipBottom}

// Clip clips the triangle (v0, v1, v2) against the view volume using
// Sutherland-Hodgman, one plane at a time. The result is a convex polygon
// in the winding of the input, or nil when fewer than three vertices
// survive. A triangle inside every plane is returned unchanged.
func Clip(v0, v1, v2 VertexData) []VertexData {
	if insideAll(v0.ClipPos) && insideAll(v1.ClipPos) && insideAll(v2.ClipPos) {
		return []VertexData{v0, v1, v2}
	}

	// Each plane adds at most one vertex.
	const maxVerts = len(clipPlanes) + 3
	poly := append(make([]VertexData, 0, maxVerts), v0, v1, v2)
	scratch := make([]VertexData, 0, maxVerts)
	for _, plane := range clipPlanes {
		scratch = clipAgainst(plane, poly, scratch[:0])
		poly, scratch = scratch, poly
		if len(poly) < 3 {
			return nil
		}
	}
	return poly
}

func clipAgainst(plane math3d.Vec4, in, out []VertexData) []VertexData {
	last := in[len(in)-1]
	dLast := plane.Dot(last.ClipPos)
	for _, cur := range in {
		dCur := plane.Dot(cur.ClipPos)
		if (dLast >= 0) != (dCur >= 0) {
			t := dLast / (dLast - dCur)
			out = append(out, Lerp(last, cur, t))
		}
		if dCur >= 0 {
			out = append(out, cur)
		}
		last, dLast = cur, dCur
	}
	return out
}

func insideAll(p math3d.Vec4) bool {
	for _, plane := range clipPlanes {
		if plane.Dot(p) < 0 {
			return false
		}
	}
	return true
}

// Fan yields the triangles (0, i+1, i+2) of a convex polygon.
func Fan(poly []VertexData) iter.Seq[[3]VertexData] {
	return func(yield func([3]VertexData) bool) {
		for i := 0; i+2 < len(poly); i++ {
			if !yield([3]VertexData{poly[0], poly[i+1], poly[i+2]}) {
				return
			}
		}
	}
}
