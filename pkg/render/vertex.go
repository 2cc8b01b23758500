// Package render implements the tinyrender software rasterization pipeline:
// vertex shading, homogeneous clipping, back-face culling, line and triangle
// rasterization, perspective-correct interpolation and depth-tested
// resolution into a double-buffered frame.
package render

import (
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// VertexData carries one vertex through the pipeline.
//
// Position starts in model space and holds the world-space position after
// the vertex stage. ClipPos is written by the vertex stage and holds NDC
// after PerspectiveDivide. InvW holds 1/w between PrePerspectiveCorrection
// and PostPerspectiveCorrection.
type VertexData struct {
	Position math3d.Vec4
	Color    math3d.Vec4
	Normal   math3d.Vec3
	TexCoord math3d.Vec2
	ClipPos  math3d.Vec4

	ScreenX, ScreenY int
	InvW             float64
}

// Lerp interpolates every attribute of v0 and v1 by t. t=0 yields v0 and
// t=1 yields v1 exactly. Screen positions are rounded to the nearest pixel.
func Lerp(v0, v1 VertexData, t float64) VertexData {
	return VertexData{
		Position: v0.Position.Lerp(v1.Position, t),
		Color:    v0.Color.Lerp(v1.Color, t),
		Normal:   v0.Normal.Lerp(v1.Normal, t),
		TexCoord: v0.TexCoord.Lerp(v1.TexCoord, t),
		ClipPos:  v0.ClipPos.Lerp(v1.ClipPos, t),
		ScreenX:  roundInt(float64(v0.ScreenX)*(1-t) + float64(v1.ScreenX)*t),
		ScreenY:  roundInt(float64(v0.ScreenY)*(1-t) + float64(v1.ScreenY)*t),
		InvW:     v0.InvW*(1-t) + v1.InvW*t,
	}
}

// BarycentricLerp blends three vertices with weights w (w.X for v0, w.Y for
// v1, w.Z for v2).
func BarycentricLerp(v0, v1, v2 VertexData, w math3d.Vec3) VertexData {
	return VertexData{
		Position: v0.Position.Scale(w.X).Add(v1.Position.Scale(w.Y)).Add(v2.Position.Scale(w.Z)),
		Color:    v0.Color.Scale(w.X).Add(v1.Color.Scale(w.Y)).Add(v2.Color.Scale(w.Z)),
		Normal:   v0.Normal.Scale(w.X).Add(v1.Normal.Scale(w.Y)).Add(v2.Normal.Scale(w.Z)),
		TexCoord: v0.TexCoord.Scale(w.X).Add(v1.TexCoord.Scale(w.Y)).Add(v2.TexCoord.Scale(w.Z)),
		ClipPos:  v0.ClipPos.Scale(w.X).Add(v1.ClipPos.Scale(w.Y)).Add(v2.ClipPos.Scale(w.Z)),
		ScreenX:  roundInt(float64(v0.ScreenX)*w.X + float64(v1.ScreenX)*w.Y + float64(v2.ScreenX)*w.Z),
		ScreenY:  roundInt(float64(v0.ScreenY)*w.X + float64(v1.ScreenY)*w.Y + float64(v2.ScreenY)*w.Z),
		InvW:     v0.InvW*w.X + v1.InvW*w.Y + v2.InvW*w.Z,
	}
}

// PrePerspectiveCorrection stores 1/w of the clip position in InvW and
// divides the interpolated attributes by w so that screen-space linear
// interpolation stays correct. ClipPos is left untouched.
func PrePerspectiveCorrection(v *VertexData) {
	v.InvW = 1 / v.ClipPos.W
	scaleAttributes(v, v.InvW)
}

// PostPerspectiveCorrection undoes PrePerspectiveCorrection on an
// interpolated fragment.
func PostPerspectiveCorrection(v *VertexData) {
	scaleAttributes(v, 1/v.InvW)
}

// PerspectiveDivide turns the clip position into NDC.
func PerspectiveDivide(v *VertexData) {
	v.ClipPos = v.ClipPos.PerspectiveDivide()
}

func scaleAttributes(v *VertexData, s float64) {
	v.Position.X *= s
	v.Position.Y *= s
	v.Position.Z *= s
	v.Color = v.Color.Scale(s)
	v.Normal = v.Normal.Scale(s)
	v.TexCoord = v.TexCoord.Scale(s)
}

func roundInt(f float64) int {
	return int(math.Floor(f + 0.5))
}
