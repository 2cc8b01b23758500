package main

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/render"
)

func TestLoadMeshBuiltins(t *testing.T) {
	tests := []struct {
		name  string
		faces int
	}{
		{"triangle", 1},
		{"quad", 2},
		{"Cube", 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := loadMesh(tt.name)
			if err != nil {
				t.Fatalf("loadMesh(%q): %v", tt.name, err)
			}
			if got := m.TriangleCount(); got != tt.faces {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.faces)
			}
		})
	}
}

func TestLoadMeshUnsupported(t *testing.T) {
	if _, err := loadMesh("model.obj"); err == nil {
		t.Error("expected error for .obj")
	}
}

func TestFitMesh(t *testing.T) {
	m, err := loadMesh("cube")
	if err != nil {
		t.Fatal(err)
	}
	m.Transform(math3d.Translate(math3d.V3(3, -2, 1)).Mul(math3d.Scale(math3d.V3(4, 1, 1))))

	fitMesh(m)

	c := m.Center()
	if c.Len() > 1e-9 {
		t.Errorf("center = %v, want origin", c)
	}
	s := m.Size()
	if math.Abs(s.X-2) > 1e-9 || math.Abs(s.Y-0.5) > 1e-9 {
		t.Errorf("size = %v, want (2, 0.5, 0.5)", s)
	}
}

func TestTurntable(t *testing.T) {
	angles := turntable(60, 30)
	if len(angles) != 60 {
		t.Fatalf("len = %d, want 60", len(angles))
	}
	if angles[0] != 0 {
		t.Errorf("first angle = %v, want 0", angles[0])
	}
	for i := 1; i < len(angles); i++ {
		if angles[i] < angles[i-1] {
			t.Fatalf("angle %d = %v decreased from %v", i, angles[i], angles[i-1])
		}
	}
	last := angles[len(angles)-1]
	if last < 1.8*math.Pi || last > 2*math.Pi+1e-9 {
		t.Errorf("last angle = %v, want close to a full turn", last)
	}

	if got := turntable(1, 30); len(got) != 1 || got[0] != 0 {
		t.Errorf("turntable(1) = %v, want [0]", got)
	}
}

func TestSpinDecays(t *testing.T) {
	s := newSpin(30)
	s.impulse(0, 1)
	for range 300 {
		s.update()
	}
	if math.Abs(s.Yaw.Velocity) > 1e-3 {
		t.Errorf("yaw velocity = %v, want ~0", s.Yaw.Velocity)
	}
	if s.Yaw.Position <= 1 {
		t.Errorf("yaw position = %v, want > 1", s.Yaw.Position)
	}

	s.reset()
	if s.Yaw.Position != 0 || s.Yaw.Velocity != 0 {
		t.Errorf("reset left yaw = %+v", s.Yaw)
	}
	if s.model() != math3d.Identity() {
		t.Error("model() after reset is not identity")
	}
}

func TestFramePath(t *testing.T) {
	tests := []struct {
		path   string
		format render.ImageFormat
		i      int
		want   string
	}{
		{"out.png", render.FormatPNG, 7, "out_0007.png"},
		{"out", render.FormatWebP, 12, "out_0012.webp"},
		{filepath.Join("dir", "spin.webp"), render.FormatPNG, 0, filepath.Join("dir", "spin_0000.png")},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := framePath(tt.path, tt.format, tt.i); got != tt.want {
				t.Errorf("framePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestZoom(t *testing.T) {
	cam := render.NewCamera()
	cam.SetView(math3d.V3(0, 0, 10), math3d.V3(0, 0, 0), math3d.V3(0, 1, 0))

	zoom(cam, 0.5)
	if math.Abs(cam.Eye.Z-5) > 1e-9 {
		t.Errorf("eye = %v, want z 5", cam.Eye)
	}
	zoom(cam, 0.01)
	if math.Abs(cam.Eye.Len()-minRadius) > 1e-9 {
		t.Errorf("eye = %v, want radius clamped to %v", cam.Eye, minRadius)
	}
	zoom(cam, 1000)
	if math.Abs(cam.Eye.Len()-maxRadius) > 1e-9 {
		t.Errorf("eye = %v, want radius clamped to %v", cam.Eye, maxRadius)
	}
}

func TestExportSequence(t *testing.T) {
	cfg := config.Default()
	cfg.Width, cfg.Height = 32, 24
	cfg.Output.Path = filepath.Join(t.TempDir(), "spin.png")
	cfg.Output.Frames = 3

	sc, err := loadScene(cfg)
	if err != nil {
		t.Fatalf("loadScene: %v", err)
	}
	if err := export(t.Context(), cfg, sc); err != nil {
		t.Fatalf("export: %v", err)
	}
	for i := range 3 {
		path := framePath(cfg.Output.Path, cfg.Output.Format, i)
		if _, err := render.LoadTexture(path, render.WrapRepeat, render.FilterNearest); err != nil {
			t.Errorf("frame %d: %v", i, err)
		}
	}
}

func TestLoadSceneCheckerFallback(t *testing.T) {
	cfg := config.Default()
	cfg.Shader = config.ShaderTexture

	sc, err := loadScene(cfg)
	if err != nil {
		t.Fatalf("loadScene: %v", err)
	}
	if !sc.texture.Loaded() {
		t.Fatal("texture shader without a texture should get the checker fallback")
	}
	if _, ok := sc.shader.(render.TextureShader); !ok {
		t.Errorf("shader = %T, want render.TextureShader", sc.shader)
	}
}

func TestNewShaderZeroAmbient(t *testing.T) {
	cfg := config.Default()
	cfg.Ambient = 0

	sh, ok := newShader(cfg, nil).(render.LambertShader)
	if !ok {
		t.Fatalf("shader = %T, want render.LambertShader", newShader(cfg, nil))
	}
	// A surface facing away from the light gets no ambient term.
	v := render.VertexData{Color: math3d.V4(1, 1, 1, 1), Normal: cfg.LightDir()}
	if got := sh.Fragment(&v); got != math3d.V4(0, 0, 0, 1) {
		t.Errorf("Fragment() = %v, want opaque black", got)
	}
}

func TestNewRendererMeshCulling(t *testing.T) {
	cfg := config.Default()
	sc := &scene{}
	for _, enabled := range []bool{true, false} {
		cfg.MeshCulling = enabled
		r, err := newRenderer(cfg, sc, cfg.NewCamera(), 8, 8)
		if err != nil {
			t.Fatal(err)
		}
		if r.EnableMeshCulling != enabled {
			t.Errorf("EnableMeshCulling = %v, want %v", r.EnableMeshCulling, enabled)
		}
	}
}
