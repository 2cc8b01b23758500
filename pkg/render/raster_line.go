package render

// RasterizeLine appends the fragments of the screen-space segment from -> to
// to out using integer Bresenham. The first fragment sits on from and the
// last on to; attributes are interpolated with t = i/major. Fragments
// outside [0,width)x[0,height) are dropped.
func RasterizeLine(from, to VertexData, width, height int, out []VertexData) []VertexData {
	dx := to.ScreenX - from.ScreenX
	dy := to.ScreenY - from.ScreenY
	stepX, stepY := 1, 1
	if dx < 0 {
		stepX, dx = -1, -dx
	}
	if dy < 0 {
		stepY, dy = -1, -dy
	}

	major, minor := dx, dy
	xMajor := dx >= dy
	if !xMajor {
		major, minor = dy, dx
	}

	x, y := from.ScreenX, from.ScreenY
	// Doubled decision variable: positive once the minor axis error passes
	// half a pixel.
	d := 2*minor - major
	for i := 0; i <= major; i++ {
		if x >= 0 && x < width && y >= 0 && y < height {
			t := 0.0
			if major > 0 {
				t = float64(i) / float64(major)
			}
			frag := Lerp(from, to, t)
			frag.ScreenX, frag.ScreenY = x, y
			out = append(out, frag)
		}

		if d > 0 {
			if xMajor {
				y += stepY
			} else {
				x += stepX
			}
			d -= 2 * major
		}
		d += 2 * minor
		if xMajor {
			x += stepX
		} else {
			y += stepY
		}
	}
	return out
}

// RasterizeWire appends the outline of the triangle (v0, v1, v2) to out.
func RasterizeWire(v0, v1, v2 VertexData, width, height int, out []VertexData) []VertexData {
	out = RasterizeLine(v0, v1, width, height, out)
	out = RasterizeLine(v1, v2, width, height, out)
	return RasterizeLine(v2, v0, width, height, out)
}
