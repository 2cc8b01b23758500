package main

import (
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"

	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/models"
	"github.com/taigrr/tinyrender/pkg/render"
)

// scene is everything loaded once and shared by every frame.
type scene struct {
	meshes  []*models.Mesh
	texture *render.Texture
	shader  render.Shader
}

func loadScene(cfg config.Config) (*scene, error) {
	sc := &scene{}
	for _, name := range cfg.Meshes {
		m, err := loadMesh(name)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		if cfg.Fit {
			fitMesh(m)
		}
		slog.Info("mesh loaded",
			"mesh", name,
			"vertices", m.VertexCount(),
			"triangles", m.TriangleCount())
		sc.meshes = append(sc.meshes, m)
	}

	if cfg.Texture.Path != "" {
		tex, err := render.LoadTexture(cfg.Texture.Path, cfg.Texture.Wrap, cfg.Texture.Filter)
		if err != nil {
			slog.Warn("could not load texture", "err", err)
		}
		sc.texture = tex
	}
	// Fall back to the first embedded base color texture.
	if !sc.texture.Loaded() {
		for _, m := range sc.meshes {
			if img := m.BaseMap(); img != nil {
				sc.texture = render.TextureFromImage(img, cfg.Texture.Wrap, cfg.Texture.Filter)
				slog.Info("using embedded texture", "mesh", m.Name, "width", sc.texture.Width, "height", sc.texture.Height)
				break
			}
		}
	}
	if !sc.texture.Loaded() && cfg.Shader == config.ShaderTexture {
		sc.texture = render.NewCheckerTexture(64, 64, 8, render.RGB(200, 200, 200), render.RGB(100, 100, 100))
	}

	sc.shader = newShader(cfg, sc.texture)
	return sc, nil
}

// loadMesh resolves a built-in primitive name or loads a glTF file.
func loadMesh(name string) (*models.Mesh, error) {
	switch strings.ToLower(name) {
	case "triangle":
		return models.NewTriangle(), nil
	case "quad":
		return models.NewQuad(), nil
	case "cube":
		return models.NewCube(), nil
	}

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".glb", ".gltf":
		return models.LoadGLB(name)
	default:
		return nil, fmt.Errorf("unsupported format: %s (use .glb, .gltf or a built-in primitive)", ext)
	}
}

// fitMesh centers the mesh on the origin and scales its largest side to 2.
func fitMesh(m *models.Mesh) {
	m.CalculateBounds()
	size := m.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim <= 0 {
		return
	}
	s := 2.0 / maxDim
	m.Transform(math3d.ScaleUniform(s).Mul(math3d.Translate(m.Center().Negate())))
}

func newShader(cfg config.Config, tex *render.Texture) render.Shader {
	switch cfg.Shader {
	case config.ShaderColor:
		return render.ColorShader{}
	case config.ShaderTexture:
		return render.TextureShader{Texture: tex}
	case config.ShaderLambert:
		return render.LambertShader{Texture: tex, LightDir: cfg.LightDir(), Ambient: cfg.Ambient}
	default:
		return render.DefaultShader{}
	}
}

// newRenderer builds a renderer of the given size with every scene mesh
// queued and the camera applied.
func newRenderer(cfg config.Config, sc *scene, cam *render.Camera, width, height int) (*render.Renderer, error) {
	r, err := render.NewRenderer(width, height)
	if err != nil {
		return nil, err
	}
	r.Background = cfg.BackgroundColor()
	r.Mode = cfg.Mode
	r.DisableBackfaceCulling = cfg.DisableBackfaceCulling
	r.EnableMeshCulling = cfg.MeshCulling

	if err := r.SetCamera(cam); err != nil {
		return nil, err
	}
	for _, m := range sc.meshes {
		if err := r.AddMesh(m); err != nil {
			return nil, err
		}
	}
	return r, nil
}
