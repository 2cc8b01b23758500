// Package config loads tinyrender scene files and merges them with
// command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/render"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every error returned from Validate.
var ErrInvalid = errors.New("invalid config")

// Config describes one scene: what to load, how to look at it and where
// the frames go.
type Config struct {
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	Background [3]uint8 `yaml:"background"`

	// Meshes are glTF/GLB paths or the built-in names triangle, quad and cube.
	Meshes []string `yaml:"meshes"`
	// Fit recenters every mesh and scales it into the [-1,1] cube.
	Fit bool `yaml:"fit"`

	Shader  ShaderKind        `yaml:"shader"`
	Mode    render.RasterMode `yaml:"mode"`
	Light   [3]float64        `yaml:"light"`
	Ambient float64           `yaml:"ambient"`

	DisableBackfaceCulling bool `yaml:"disable_backface_culling"`

	// MeshCulling rejects whole meshes outside the view before shading.
	// Every built-in shader keeps vertices inside the mesh bounds.
	MeshCulling bool `yaml:"mesh_culling"`

	Camera  Camera  `yaml:"camera"`
	Texture Texture `yaml:"texture"`
	Output  Output  `yaml:"output"`
}

// Camera is the look-at camera and its lens.
type Camera struct {
	Eye    [3]float64 `yaml:"eye"`
	Target [3]float64 `yaml:"target"`
	Up     [3]float64 `yaml:"up"`

	Projection render.ProjectionKind `yaml:"projection"`
	FovY       float64               `yaml:"fov_y"`  // degrees
	Aspect     float64               `yaml:"aspect"` // zero means width/height
	Near       float64               `yaml:"near"`
	Far        float64               `yaml:"far"`

	// Orthographic box.
	Left   float64 `yaml:"left"`
	Right  float64 `yaml:"right"`
	Bottom float64 `yaml:"bottom"`
	Top    float64 `yaml:"top"`
}

// Texture selects the image sampled by the texture and lambert shaders.
type Texture struct {
	Path   string            `yaml:"path"`
	Wrap   render.WrapMode   `yaml:"wrap"`
	Filter render.FilterMode `yaml:"filter"`
}

// Output controls offline rendering.
type Output struct {
	Path   string             `yaml:"path"`
	Format render.ImageFormat `yaml:"format"`
	Scale  int                `yaml:"scale"`
	// Frames > 1 renders a turntable sequence.
	Frames int `yaml:"frames"`
	FPS    int `yaml:"fps"`
}

// ShaderKind names one of the built-in shaders.
type ShaderKind string

const (
	ShaderDefault ShaderKind = "default"
	ShaderColor   ShaderKind = "color"
	ShaderTexture ShaderKind = "texture"
	ShaderLambert ShaderKind = "lambert"
)

// UnmarshalText accepts the shader names case-insensitively.
func (k *ShaderKind) UnmarshalText(text []byte) error {
	s := ShaderKind(strings.ToLower(string(text)))
	switch s {
	case ShaderDefault, ShaderColor, ShaderTexture, ShaderLambert:
		*k = s
	case "":
		*k = ShaderDefault
	default:
		return fmt.Errorf("unknown shader %q", text)
	}
	return nil
}

// Default returns the scene used when no file is given: a lit cube seen
// from the front, written to frame.png.
func Default() Config {
	return Config{
		Width:       320,
		Height:      240,
		Background:  [3]uint8{30, 30, 40},
		Meshes:      []string{"cube"},
		Fit:         true,
		Shader:      ShaderLambert,
		Mode:        render.ModeFill,
		Light:       [3]float64{-0.5, -1, -0.3},
		Ambient:     0.3,
		MeshCulling: true,
		Camera: Camera{
			Eye:        [3]float64{2.5, 2, 4},
			Target:     [3]float64{0, 0, 0},
			Up:         [3]float64{0, 1, 0},
			Projection: render.ProjectionPerspective,
			FovY:       45,
			Near:       0.1,
			Far:        100,
			Left:       -2,
			Right:      2,
			Bottom:     -1.5,
			Top:        1.5,
		},
		Texture: Texture{
			Wrap:   render.WrapRepeat,
			Filter: render.FilterNearest,
		},
		Output: Output{
			Path:   "frame.png",
			Format: render.FormatPNG,
			Scale:  1,
			Frames: 1,
			FPS:    30,
		},
	}
}

// Load reads a YAML scene file on top of Default. Unknown keys are errors.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, err
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings. Zero
// values leave the file untouched.
type Flags struct {
	Width   int
	Height  int
	Output  string
	Format  string
	Scale   int
	Frames  int
	Texture string
	Wrap    string
	Filter  string
	Mode    string
	Shader  string
	Meshes  []string
}

// Resolve applies non-zero flags. Enumerated flags are parsed with the
// same names the YAML file accepts.
func (c *Config) Resolve(flags Flags) error {
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Output != "" {
		c.Output.Path = flags.Output
	}
	if flags.Scale > 0 {
		c.Output.Scale = flags.Scale
	}
	if flags.Frames > 0 {
		c.Output.Frames = flags.Frames
	}
	if flags.Texture != "" {
		c.Texture.Path = flags.Texture
	}
	if len(flags.Meshes) > 0 {
		c.Meshes = flags.Meshes
	}

	parsers := []struct {
		name  string
		value string
		into  interface{ UnmarshalText([]byte) error }
	}{
		{"format", flags.Format, &c.Output.Format},
		{"wrap", flags.Wrap, &c.Texture.Wrap},
		{"filter", flags.Filter, &c.Texture.Filter},
		{"mode", flags.Mode, &c.Mode},
		{"shader", flags.Shader, &c.Shader},
	}
	for _, p := range parsers {
		if p.value == "" {
			continue
		}
		if err := p.into.UnmarshalText([]byte(p.value)); err != nil {
			return fmt.Errorf("config: -%s: %w", p.name, err)
		}
	}
	return nil
}

// Validate checks the scene before any rendering starts.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("size %dx%d: %w", c.Width, c.Height, ErrInvalid)
	}
	if len(c.Meshes) == 0 {
		return fmt.Errorf("no meshes: %w", ErrInvalid)
	}
	if c.Output.Scale < 1 {
		return fmt.Errorf("output scale %d: %w", c.Output.Scale, ErrInvalid)
	}
	if c.Output.Frames < 1 {
		return fmt.Errorf("output frames %d: %w", c.Output.Frames, ErrInvalid)
	}
	if c.Output.FPS < 1 {
		return fmt.Errorf("output fps %d: %w", c.Output.FPS, ErrInvalid)
	}
	if c.Ambient < 0 || c.Ambient > 1 {
		return fmt.Errorf("ambient %v outside [0,1]: %w", c.Ambient, ErrInvalid)
	}
	switch c.Shader {
	case ShaderDefault, ShaderColor, ShaderTexture, ShaderLambert:
	default:
		return fmt.Errorf("shader %q: %w", c.Shader, ErrInvalid)
	}
	if err := c.NewCamera().Validate(); err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	return nil
}

// Projection returns the configured lens. A zero aspect follows the
// frame size.
func (c Config) Projection() render.Projection {
	cam := c.Camera
	if cam.Projection == render.ProjectionOrthographic {
		return render.OrthographicProjection(cam.Left, cam.Right, cam.Bottom, cam.Top, cam.Near, cam.Far)
	}
	aspect := cam.Aspect
	if aspect == 0 && c.Height > 0 {
		aspect = float64(c.Width) / float64(c.Height)
	}
	return render.PerspectiveProjection(cam.FovY, aspect, cam.Near, cam.Far)
}

// NewCamera builds the configured camera.
func (c Config) NewCamera() *render.Camera {
	cam := render.NewCamera()
	cam.SetView(vec3(c.Camera.Eye), vec3(c.Camera.Target), vec3(c.Camera.Up))
	cam.SetProjection(c.Projection())
	return cam
}

// BackgroundColor returns the opaque clear color.
func (c Config) BackgroundColor() render.Color {
	return render.RGB(c.Background[0], c.Background[1], c.Background[2])
}

// LightDir returns the direction the light travels.
func (c Config) LightDir() math3d.Vec3 {
	return vec3(c.Light)
}

func vec3(v [3]float64) math3d.Vec3 {
	return math3d.V3(v[0], v[1], v[2])
}
