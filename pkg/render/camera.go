package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// ProjectionKind selects perspective or orthographic projection.
type ProjectionKind int

const (
	ProjectionPerspective ProjectionKind = iota
	ProjectionOrthographic
)

func (k ProjectionKind) String() string {
	if k == ProjectionOrthographic {
		return "orthographic"
	}
	return "perspective"
}

// UnmarshalText parses "perspective" or "orthographic".
func (k *ProjectionKind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "perspective", "":
		*k = ProjectionPerspective
	case "orthographic", "ortho":
		*k = ProjectionOrthographic
	default:
		return fmt.Errorf("unknown projection %q", text)
	}
	return nil
}

// Projection describes the camera lens. Perspective uses FovY (degrees)
// and Aspect; orthographic uses the Left/Right/Bottom/Top box. Both use
// Near and Far as distances along the view direction.
type Projection struct {
	Kind   ProjectionKind
	FovY   float64
	Aspect float64

	Left, Right, Bottom, Top float64

	Near, Far float64
}

// PerspectiveProjection returns a perspective lens.
func PerspectiveProjection(fovY, aspect, near, far float64) Projection {
	return Projection{Kind: ProjectionPerspective, FovY: fovY, Aspect: aspect, Near: near, Far: far}
}

// OrthographicProjection returns an orthographic lens.
func OrthographicProjection(left, right, bottom, top, near, far float64) Projection {
	return Projection{
		Kind: ProjectionOrthographic,
		Left: left, Right: right, Bottom: bottom, Top: top,
		Near: near, Far: far,
	}
}

// Validate reports parameters that would make the projection singular.
func (p Projection) Validate() error {
	if p.Near == p.Far {
		return fmt.Errorf("near == far (%v): %w", p.Near, ErrInvalidProjection)
	}
	switch p.Kind {
	case ProjectionPerspective:
		if p.FovY <= 0 || p.FovY >= 180 {
			return fmt.Errorf("fovY %v outside (0, 180): %w", p.FovY, ErrInvalidProjection)
		}
		if p.Aspect <= 0 {
			return fmt.Errorf("aspect %v must be positive: %w", p.Aspect, ErrInvalidProjection)
		}
		if p.Near <= 0 || p.Far <= p.Near {
			return fmt.Errorf("need 0 < near < far, got near=%v far=%v: %w", p.Near, p.Far, ErrInvalidProjection)
		}
	case ProjectionOrthographic:
		if p.Left == p.Right || p.Bottom == p.Top {
			return fmt.Errorf("zero-size orthographic box: %w", ErrInvalidProjection)
		}
	default:
		return fmt.Errorf("projection kind %d: %w", p.Kind, ErrInvalidProjection)
	}
	return nil
}

// Matrix returns the projection matrix.
func (p Projection) Matrix() math3d.Mat4 {
	if p.Kind == ProjectionOrthographic {
		return math3d.Orthographic(p.Left, p.Right, p.Bottom, p.Top, p.Near, p.Far)
	}
	return math3d.Perspective(p.FovY, p.Aspect, p.Near, p.Far)
}

// Camera is a look-at camera with a projection. View and projection
// matrices are cached and rebuilt when a setter marks them dirty or when
// the exported fields no longer match the values they were built from, so
// assigning Eye, Target, Up or Projection directly is safe.
type Camera struct {
	Eye    math3d.Vec3
	Target math3d.Vec3
	Up     math3d.Vec3

	Projection Projection

	viewMatrix     math3d.Mat4
	projMatrix     math3d.Mat4
	viewProjMatrix math3d.Mat4
	viewDirty      bool
	projDirty      bool
	viewProjDirty  bool

	// Inputs of the cached matrices.
	viewFrom [3]math3d.Vec3
	projFrom Projection
}

// NewCamera creates a camera at (0, 0, 5) looking at the origin with a
// 45 degree perspective lens.
func NewCamera() *Camera {
	return &Camera{
		Eye:           math3d.V3(0, 0, 5),
		Target:        math3d.Zero3(),
		Up:            math3d.Up(),
		Projection:    PerspectiveProjection(45, 4.0/3.0, 0.1, 100),
		viewDirty:     true,
		projDirty:     true,
		viewProjDirty: true,
	}
}

// SetView sets the eye, target and up vectors.
func (c *Camera) SetView(eye, target, up math3d.Vec3) {
	c.Eye, c.Target, c.Up = eye, target, up
	c.viewDirty = true
	c.viewProjDirty = true
}

// SetProjection replaces the projection.
func (c *Camera) SetProjection(p Projection) {
	c.Projection = p
	c.projDirty = true
	c.viewProjDirty = true
}

// SetAspectRatio updates the perspective aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.Projection.Aspect = aspect
	c.projDirty = true
	c.viewProjDirty = true
}

// Validate checks that the camera basis and projection are usable.
func (c *Camera) Validate() error {
	if !c.Eye.IsFinite() || !c.Target.IsFinite() || !c.Up.IsFinite() {
		return fmt.Errorf("non-finite camera vector: %w", ErrDegenerateCamera)
	}
	dir := c.Eye.Sub(c.Target)
	if dir.LenSq() == 0 {
		return fmt.Errorf("eye equals target %v: %w", c.Eye, ErrDegenerateCamera)
	}
	if c.Up.Cross(dir).LenSq() < 1e-12*dir.LenSq()*c.Up.LenSq() || c.Up.LenSq() == 0 {
		return fmt.Errorf("up %v parallel to view direction: %w", c.Up, ErrDegenerateCamera)
	}
	return c.Projection.Validate()
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	from := [3]math3d.Vec3{c.Eye, c.Target, c.Up}
	if c.viewDirty || from != c.viewFrom {
		c.viewMatrix = math3d.ViewMatrix(c.Eye, c.Target, c.Up)
		c.viewFrom = from
		c.viewDirty = false
		c.viewProjDirty = true
	}
	return c.viewMatrix
}

// ProjectionMatrix returns the projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	if c.projDirty || c.Projection != c.projFrom {
		c.projMatrix = c.Projection.Matrix()
		c.projFrom = c.Projection
		c.projDirty = false
		c.viewProjDirty = true
	}
	return c.projMatrix
}

// ViewProjectionMatrix returns projection * view.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	view, proj := c.ViewMatrix(), c.ProjectionMatrix()
	if c.viewProjDirty {
		c.viewProjMatrix = proj.Mul(view)
		c.viewProjDirty = false
	}
	return c.viewProjMatrix
}

// Frustum returns the current view frustum.
func (c *Camera) Frustum() Frustum {
	return NewFrustumFromMatrix(c.ViewProjectionMatrix())
}

// Orbit rotates the eye around the target by yaw (around Up) and pitch
// (towards Up), both in radians. Pitch is clamped short of the poles.
func (c *Camera) Orbit(yaw, pitch float64) {
	offset := c.Eye.Sub(c.Target)
	radius := offset.Len()
	if radius == 0 {
		return
	}

	up := c.Up.Normalize()
	// Elevation of the eye above the plane perpendicular to up.
	elev := math.Asin(max(-1, min(1, offset.Dot(up)/radius)))
	const maxPitch = math.Pi/2 - 0.01
	elev = max(-maxPitch, min(maxPitch, elev+pitch))

	flat := offset.Sub(up.Scale(offset.Dot(up)))
	if flat.LenSq() == 0 {
		flat = perpendicular(up)
	}
	flat = math3d.Rotate(up, yaw).MulDir(flat).Normalize()

	eye := flat.Scale(radius * math.Cos(elev)).Add(up.Scale(radius * math.Sin(elev)))
	c.SetView(c.Target.Add(eye), c.Target, c.Up)
}

// perpendicular returns any unit vector perpendicular to v.
func perpendicular(v math3d.Vec3) math3d.Vec3 {
	axis := math3d.V3(1, 0, 0)
	if math.Abs(v.X) > 0.9 {
		axis = math3d.V3(0, 0, 1)
	}
	return v.Cross(axis).Normalize()
}

// WorldToScreen projects a world point to pixel coordinates using the same
// viewport convention as the renderer. visible is false for points outside
// the view volume.
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, width, height int) (x, y int, depth float64, visible bool) {
	clip := c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(worldPos, 1))
	if !insideAll(clip) || clip.W <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	s := math3d.Viewport(width, height).MulVec4(ndc)
	return roundInt(s.X), roundInt(s.Y), ndc.Z, true
}
