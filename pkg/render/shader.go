package render

import (
	"math"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// Uniforms are the per-draw constants handed to a Shader.
type Uniforms struct {
	Model      math3d.Mat4
	View       math3d.Mat4
	Projection math3d.Mat4
	ViewProj   math3d.Mat4 // Projection * View
	MVP        math3d.Mat4 // Projection * View * Model
	Normal     math3d.Mat4 // inverse-transpose of Model
}

// Shader is the programmable part of the pipeline.
//
// Vertex is called exactly three times per source triangle, in order,
// before clipping. It must set v.ClipPos and may rewrite any other
// attribute. Fragment is called once per fragment that passes the depth
// test, after perspective correction, and returns RGBA in [0,1].
type Shader interface {
	Vertex(u *Uniforms, v *VertexData)
	Fragment(v *VertexData) math3d.Vec4
}

// transformVertex moves v to world space and fills in its clip position.
func transformVertex(u *Uniforms, v *VertexData) {
	v.Position = u.Model.MulVec4(math3d.V4FromV3(v.Position.Vec3(), 1))
	v.ClipPos = u.ViewProj.MulVec4(v.Position)
}

// DefaultShader transforms positions and shows texture coordinates as
// color: (u, v, 0, 1).
type DefaultShader struct{}

func (DefaultShader) Vertex(u *Uniforms, v *VertexData) {
	transformVertex(u, v)
}

func (DefaultShader) Fragment(v *VertexData) math3d.Vec4 {
	return math3d.V4(v.TexCoord.X, v.TexCoord.Y, 0, 1)
}

// ColorShader outputs the interpolated vertex color.
type ColorShader struct{}

func (ColorShader) Vertex(u *Uniforms, v *VertexData) {
	transformVertex(u, v)
}

func (ColorShader) Fragment(v *VertexData) math3d.Vec4 {
	return v.Color
}

// TextureShader samples Texture and modulates it with the vertex color.
// Without a loaded texture it falls back to the vertex color.
type TextureShader struct {
	Texture *Texture
}

func (s TextureShader) Vertex(u *Uniforms, v *VertexData) {
	transformVertex(u, v)
}

func (s TextureShader) Fragment(v *VertexData) math3d.Vec4 {
	if !s.Texture.Loaded() {
		return v.Color
	}
	return s.Texture.Sample(v.TexCoord).Mul(v.Color)
}

// LambertShader applies ambient plus diffuse lighting from a directional
// light to the textured or vertex-colored surface.
type LambertShader struct {
	Texture  *Texture
	LightDir math3d.Vec3 // direction the light travels
	Ambient  float64     // in [0,1]
}

func (s LambertShader) Vertex(u *Uniforms, v *VertexData) {
	transformVertex(u, v)
	v.Normal = u.Normal.MulDir(v.Normal)
}

func (s LambertShader) Fragment(v *VertexData) math3d.Vec4 {
	base := v.Color
	if s.Texture.Loaded() {
		base = s.Texture.Sample(v.TexCoord).Mul(v.Color)
	}

	diffuse := math.Max(0, v.Normal.Normalize().Dot(s.LightDir.Normalize().Negate()))
	intensity := s.Ambient + (1-s.Ambient)*diffuse

	return math3d.V4(base.X*intensity, base.Y*intensity, base.Z*intensity, base.W)
}
