package render

import (
	"math"
	"testing"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

func sampleVertex(seed float64) VertexData {
	return VertexData{
		Position: math3d.V4(0.1*seed, -0.3*seed, 1.7+seed, 1),
		Color:    math3d.V4(0.2, 0.4*seed, 0.7, 0.9),
		Normal:   math3d.V3(seed, 0.5, -0.25),
		TexCoord: math3d.V2(0.3*seed, 0.9),
		ClipPos:  math3d.V4(-0.7*seed, 0.11, 0.5, 1.3+seed),
		ScreenX:  int(3 * seed),
		ScreenY:  17,
		InvW:     1 / (1.3 + seed),
	}
}

func TestLerpEndpoints(t *testing.T) {
	tests := []struct {
		name   string
		v0, v1 VertexData
	}{
		{"distinct", sampleVertex(1), sampleVertex(3.7)},
		{"negative", sampleVertex(-2.2), sampleVertex(0.3)},
		{"same", sampleVertex(1), sampleVertex(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Lerp(tt.v0, tt.v1, 0); got != tt.v0 {
				t.Errorf("Lerp(v0, v1, 0) = %+v, want %+v", got, tt.v0)
			}
			if got := Lerp(tt.v0, tt.v1, 1); got != tt.v1 {
				t.Errorf("Lerp(v0, v1, 1) = %+v, want %+v", got, tt.v1)
			}
		})
	}
}

func TestBarycentricLerpCorners(t *testing.T) {
	v0, v1, v2 := sampleVertex(1), sampleVertex(2), sampleVertex(5)
	tests := []struct {
		w    math3d.Vec3
		want VertexData
	}{
		{math3d.V3(1, 0, 0), v0},
		{math3d.V3(0, 1, 0), v1},
		{math3d.V3(0, 0, 1), v2},
	}
	for _, tt := range tests {
		got := BarycentricLerp(v0, v1, v2, tt.w)
		if got != tt.want {
			t.Errorf("BarycentricLerp(%v) = %+v, want %+v", tt.w, got, tt.want)
		}
	}
}

func TestPerspectiveCorrectionRoundTrip(t *testing.T) {
	v := sampleVertex(2)
	orig := v
	PrePerspectiveCorrection(&v)
	if v.ClipPos != orig.ClipPos {
		t.Error("PrePerspectiveCorrection changed ClipPos")
	}
	if math.Abs(v.InvW-1/orig.ClipPos.W) > 1e-15 {
		t.Errorf("InvW = %v, want %v", v.InvW, 1/orig.ClipPos.W)
	}
	PostPerspectiveCorrection(&v)

	if math.Abs(v.TexCoord.X-orig.TexCoord.X) > 1e-12 ||
		math.Abs(v.Color.Y-orig.Color.Y) > 1e-12 ||
		math.Abs(v.Position.Z-orig.Position.Z) > 1e-12 ||
		math.Abs(v.Normal.X-orig.Normal.X) > 1e-12 {
		t.Errorf("round trip changed attributes: %+v -> %+v", orig, v)
	}
	if v.Position.W != orig.Position.W {
		t.Error("position w must not be scaled")
	}
}

// Interpolating pre-corrected attributes linearly in screen space and then
// post-correcting must match interpolation along the 3D segment.
func TestPerspectiveCorrectInterpolation(t *testing.T) {
	proj := math3d.Perspective(90, 1, 0.1, 100)
	p0 := math3d.V3(-1, 0.5, -2)
	p1 := math3d.V3(1.5, -0.5, -6)
	const a0, a1 = 0.0, 1.0

	makeVertex := func(p math3d.Vec3, attr float64) VertexData {
		return VertexData{
			Position: math3d.V4FromV3(p, 1),
			Color:    math3d.V4(attr, 1-attr, 0, 1),
			TexCoord: math3d.V2(attr, 0),
			ClipPos:  proj.MulVec4(math3d.V4FromV3(p, 1)),
		}
	}
	v0 := makeVertex(p0, a0)
	v1 := makeVertex(p1, a1)
	PrePerspectiveCorrection(&v0)
	PrePerspectiveCorrection(&v1)
	PerspectiveDivide(&v0)
	PerspectiveDivide(&v1)

	d := p1.Sub(p0)
	for _, s := range []float64{0, 0.1, 0.25, 0.5, 0.8, 1} {
		frag := Lerp(v0, v1, s)
		PostPerspectiveCorrection(&frag)

		// Solve for the 3D parameter whose projection lands on the
		// screen-space point: x/(-z) = xs with f = 1.
		xs := v0.ClipPos.X*(1-s) + v1.ClipPos.X*s
		tt := (-xs*p0.Z - p0.X) / (d.X + xs*d.Z)
		want := a0 + (a1-a0)*tt

		if math.Abs(frag.TexCoord.X-want) > 1e-9 {
			t.Errorf("s=%v: texcoord = %v, want %v", s, frag.TexCoord.X, want)
		}
		if math.Abs(frag.Color.Y-(1-want)) > 1e-9 {
			t.Errorf("s=%v: color = %v, want %v", s, frag.Color.Y, 1-want)
		}
		wantZ := p0.Z + d.Z*tt
		if math.Abs(frag.Position.Z-wantZ) > 1e-9 {
			t.Errorf("s=%v: position z = %v, want %v", s, frag.Position.Z, wantZ)
		}
	}
}
