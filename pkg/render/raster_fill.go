package render

import "github.com/taigrr/tinyrender/pkg/math3d"

// Sub-sample offsets around a pixel center used for the coverage count.
var subSamples = [4]math3d.Vec2{
	{X: -0.25, Y: 0.25},
	{X: -0.25, Y: -0.25},
	{X: 0.25, Y: 0.25},
	{X: 0.25, Y: -0.25},
}

// RasterizeFill appends the fragments covered by the screen-space triangle
// (v0, v1, v2) to out. Pixel centers lie on integer coordinates. A pixel is
// emitted when at least one of its four sub-samples is inside; its RGB is
// divided by the number of covered samples. Attributes are interpolated
// with barycentric weights taken at the pixel center.
func RasterizeFill(v0, v1, v2 VertexData, width, height int, out []VertexData) []VertexData {
	p0 := screenPoint(v0)
	p1 := screenPoint(v1)
	p2 := screenPoint(v2)

	l1 := p1.Sub(p0)
	l2 := p2.Sub(p0)
	if l1.Cross(l2) == 0 {
		return out
	}

	minX := max(min(v0.ScreenX, v1.ScreenX, v2.ScreenX), 0)
	maxX := min(max(v0.ScreenX, v1.ScreenX, v2.ScreenX), width-1)
	minY := max(min(v0.ScreenY, v1.ScreenY, v2.ScreenY), 0)
	maxY := min(max(v0.ScreenY, v1.ScreenY, v2.ScreenY), height-1)

	for j := minY; j <= maxY; j++ {
		for i := minX; i <= maxX; i++ {
			center := math3d.V2(float64(i), float64(j))

			num := 0
			for _, off := range subSamples {
				if insideTriangle(p0, p1, p2, center.Add(off)) {
					num++
				}
			}
			if num == 0 {
				continue
			}

			frag := BarycentricLerp(v0, v1, v2, barycentric(l1, l2, p0.Sub(center)))
			frag.ScreenX, frag.ScreenY = i, j
			inv := 1 / float64(num)
			frag.Color.X *= inv
			frag.Color.Y *= inv
			frag.Color.Z *= inv
			out = append(out, frag)
		}
	}
	return out
}

func screenPoint(v VertexData) math3d.Vec2 {
	return math3d.V2(float64(v.ScreenX), float64(v.ScreenY))
}

// edge is positive when p lies to the left of a->b in a y-up frame.
func edge(a, b, p math3d.Vec2) float64 {
	return b.Sub(a).Cross(p.Sub(a))
}

// insideTriangle reports whether the three edge functions agree in sign.
// Points on an edge count as inside.
func insideTriangle(p0, p1, p2, p math3d.Vec2) bool {
	e0 := edge(p0, p1, p)
	e1 := edge(p1, p2, p)
	e2 := edge(p2, p0, p)
	return (e0 >= 0 && e1 >= 0 && e2 >= 0) || (e0 <= 0 && e1 <= 0 && e2 <= 0)
}

// barycentric solves p = p0 + u*l1 + v*l2 through the cross product of
// (l1.x, l2.x, l3.x) and (l1.y, l2.y, l3.y), where l3 = p0 - p, and returns
// (1-u-v, u, v).
func barycentric(l1, l2, l3 math3d.Vec2) math3d.Vec3 {
	c := math3d.V3(l1.X, l2.X, l3.X).Cross(math3d.V3(l1.Y, l2.Y, l3.Y))
	return math3d.V3(1-(c.X+c.Y)/c.Z, c.X/c.Z, c.Y/c.Z)
}
