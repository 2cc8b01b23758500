package render

import (
	"fmt"
	"strings"

	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/models"
)

// RasterMode selects filled triangles or wireframe outlines.
type RasterMode int

const (
	ModeFill RasterMode = iota
	ModeWire
)

func (m RasterMode) String() string {
	if m == ModeWire {
		return "wire"
	}
	return "fill"
}

// UnmarshalText parses "fill" or "wire".
func (m *RasterMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "fill", "":
		*m = ModeFill
	case "wire", "wireframe":
		*m = ModeWire
	default:
		return fmt.Errorf("unknown raster mode %q", text)
	}
	return nil
}

// Stats counts what happened to the geometry of one frame.
type Stats struct {
	Meshes       int // meshes submitted
	MeshesCulled int // meshes rejected by their bounding box
	Faces        int // source triangles
	Clipped      int // source triangles with nothing left after clipping
	Culled       int // clipped triangles dropped as back-facing
	Fragments    int // fragments produced by rasterization
	Written      int // fragments that passed the depth test
}

// Renderer drives meshes through the pipeline into a double-buffered frame.
// It is not safe for concurrent use, except for Commit and Present, which
// may be called from other goroutines while a frame renders.
type Renderer struct {
	// Mode selects filled or wireframe rasterization.
	Mode RasterMode
	// DisableBackfaceCulling renders both sides of every triangle.
	DisableBackfaceCulling bool
	// EnableMeshCulling rejects meshes whose model-space bounds fall outside
	// the view volume before any Vertex call. Only enable it for shaders
	// that keep vertices inside the transformed mesh bounds.
	EnableMeshCulling bool
	// Background is the clear color of every frame.
	Background Color

	width, height int
	swap          *SwapChain
	meshes        []*models.Mesh

	model      math3d.Mat4
	view       math3d.Mat4
	projection math3d.Mat4
	viewport   math3d.Mat4
	mvp        math3d.Mat4
	mvpDirty   bool

	frags []VertexData
	stats Stats
}

// NewRenderer creates a renderer with identity transforms and a black
// background.
func NewRenderer(width, height int) (*Renderer, error) {
	swap, err := NewSwapChain(width, height)
	if err != nil {
		return nil, fmt.Errorf("new renderer: %w", err)
	}
	return &Renderer{
		Background: ColorBlack,
		width:      width,
		height:     height,
		swap:       swap,
		model:      math3d.Identity(),
		view:       math3d.Identity(),
		projection: math3d.Identity(),
		viewport:   math3d.Viewport(width, height),
		mvpDirty:   true,
	}, nil
}

// Width returns the frame width in pixels.
func (r *Renderer) Width() int { return r.width }

// Height returns the frame height in pixels.
func (r *Renderer) Height() int { return r.height }

// SetModelMatrix sets the model-to-world transform.
func (r *Renderer) SetModelMatrix(m math3d.Mat4) {
	r.model = m
	r.mvpDirty = true
}

// SetViewMatrix sets the world-to-camera transform.
func (r *Renderer) SetViewMatrix(m math3d.Mat4) {
	r.view = m
	r.mvpDirty = true
}

// SetProjectMatrix sets the camera-to-clip transform.
func (r *Renderer) SetProjectMatrix(m math3d.Mat4) {
	r.projection = m
	r.mvpDirty = true
}

// SetCamera validates c and takes its view and projection matrices.
func (r *Renderer) SetCamera(c *Camera) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.SetViewMatrix(c.ViewMatrix())
	r.SetProjectMatrix(c.ProjectionMatrix())
	return nil
}

// MVP returns projection * view * model, recomputed only after one of
// the matrices changed.
func (r *Renderer) MVP() math3d.Mat4 {
	if r.mvpDirty {
		r.mvp = r.projection.Mul(r.view).Mul(r.model)
		r.mvpDirty = false
	}
	return r.mvp
}

// AddMesh validates m, refreshes its bounds and queues it for rendering.
func (r *Renderer) AddMesh(m *models.Mesh) error {
	if err := m.Validate(); err != nil {
		Logger().Warn("mesh rejected", "mesh", m.Name, "err", err)
		return err
	}
	m.CalculateBounds()
	r.meshes = append(r.meshes, m)
	return nil
}

// UnloadMeshes releases every queued mesh and empties the queue.
func (r *Renderer) UnloadMeshes() {
	for _, m := range r.meshes {
		m.Unload()
	}
	r.meshes = nil
}

// Stats returns the statistics of the last rendered frame.
func (r *Renderer) Stats() Stats {
	return r.stats
}

func (r *Renderer) uniforms() Uniforms {
	return Uniforms{
		Model:      r.model,
		View:       r.view,
		Projection: r.projection,
		ViewProj:   r.projection.Mul(r.view),
		MVP:        r.MVP(),
		Normal:     r.model.NormalMatrix(),
	}
}

// Render draws every queued mesh with sh (DefaultShader when nil) into
// the back buffer and then swaps it to the front.
func (r *Renderer) Render(sh Shader) Stats {
	if sh == nil {
		sh = DefaultShader{}
	}
	fb := r.swap.Back()
	fb.Clear(r.Background)

	u := r.uniforms()
	frustum := NewFrustumFromMatrix(u.ViewProj)

	var st Stats
	for _, mesh := range r.meshes {
		st.Meshes++
		if r.EnableMeshCulling && len(mesh.Faces) > 0 {
			bounds := NewAABB(mesh.BoundsMin, mesh.BoundsMax).Transform(u.Model)
			if !frustum.IntersectsAABB(bounds) {
				st.MeshesCulled++
				st.Faces += len(mesh.Faces)
				st.Clipped += len(mesh.Faces)
				Logger().Debug("mesh outside frustum", "mesh", mesh.Name, "faces", len(mesh.Faces))
				continue
			}
		}

		for i := range mesh.Faces {
			st.Faces++
			var tri [3]VertexData
			for c := range tri {
				corner := mesh.Corner(i, c)
				tri[c] = VertexData{
					Position: math3d.V4FromV3(corner.Position, 1),
					Color:    corner.Color,
					Normal:   corner.Normal,
					TexCoord: corner.TexCoord,
				}
				sh.Vertex(&u, &tri[c])
			}

			poly := Clip(tri[0], tri[1], tri[2])
			if poly == nil {
				st.Clipped++
				continue
			}
			for t := range Fan(poly) {
				r.drawTriangle(fb, sh, t, &st)
			}
		}
	}

	r.swap.Swap()
	r.stats = st
	Logger().Debug("frame rendered",
		"meshes", st.Meshes,
		"meshesCulled", st.MeshesCulled,
		"faces", st.Faces,
		"clipped", st.Clipped,
		"culled", st.Culled,
		"fragments", st.Fragments,
		"written", st.Written)
	return st
}

// drawTriangle takes one clipped triangle from clip space to pixels.
func (r *Renderer) drawTriangle(fb *Framebuffer, sh Shader, tri [3]VertexData, st *Stats) {
	for k := range tri {
		PrePerspectiveCorrection(&tri[k])
		PerspectiveDivide(&tri[k])
	}

	if !r.DisableBackfaceCulling && IsBackFacing(tri[0].ClipPos, tri[1].ClipPos, tri[2].ClipPos) {
		st.Culled++
		return
	}

	for k := range tri {
		s := r.viewport.MulVec4(tri[k].ClipPos)
		tri[k].ScreenX = roundInt(s.X)
		tri[k].ScreenY = roundInt(s.Y)
	}

	r.frags = r.frags[:0]
	if r.Mode == ModeWire {
		r.frags = RasterizeWire(tri[0], tri[1], tri[2], r.width, r.height, r.frags)
	} else {
		r.frags = RasterizeFill(tri[0], tri[1], tri[2], r.width, r.height, r.frags)
	}
	st.Fragments += len(r.frags)

	for i := range r.frags {
		f := &r.frags[i]
		z := f.ClipPos.Z
		if !(z < fb.ReadDepth(f.ScreenX, f.ScreenY)) {
			continue
		}
		PostPerspectiveCorrection(f)
		fb.WriteColor(f.ScreenX, f.ScreenY, ColorFromVec4(sh.Fragment(f)))
		fb.WriteDepth(f.ScreenX, f.ScreenY, z)
		st.Written++
	}
}

// Commit returns a copy of the last completed frame as RGBA bytes,
// width*height*4 long, rows top to bottom.
func (r *Renderer) Commit() []byte {
	return r.swap.FrontPixels()
}

// Present calls fn with the last completed frame under the swap chain's
// read lock. fn must not retain the framebuffer.
func (r *Renderer) Present(fn func(*Framebuffer)) {
	r.swap.Present(fn)
}
