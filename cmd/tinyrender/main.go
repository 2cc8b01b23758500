// tinyrender - software rasterizer
// Renders glTF/GLB models and built-in primitives to PNG or WebP images, or
// previews them live in the terminal.
//
// Terminal controls:
//
//	W/S/A/D     - Spin the model (pitch/yaw)
//	H/L, J/K    - Orbit the camera
//	Space       - Apply random impulse
//	+/-         - Zoom
//	X           - Toggle wireframe
//	C           - Toggle back-face culling
//	R           - Reset view
//	Esc, Q      - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/render"
)

var (
	configPath  = flag.String("config", "", "Path to a YAML scene file")
	outputPath  = flag.String("o", "", "Output image path")
	format      = flag.String("format", "", "Output format (png, webp)")
	width       = flag.Int("width", 0, "Frame width in pixels")
	height      = flag.Int("height", 0, "Frame height in pixels")
	scale       = flag.Int("scale", 0, "Integer upscale factor for saved images")
	frames      = flag.Int("frames", 0, "Number of turntable frames (1 renders a single image)")
	texturePath = flag.String("texture", "", "Path to texture image (PNG/JPG/BMP/TGA/WebP)")
	wrap        = flag.String("wrap", "", "Texture wrap mode (repeat, clamp_to_edge)")
	filter      = flag.String("filter", "", "Texture filter (nearest, bilinear)")
	mode        = flag.String("mode", "", "Raster mode (fill, wire)")
	shader      = flag.String("shader", "", "Shader (default, color, texture, lambert)")
	termView    = flag.Bool("term", false, "Preview in the terminal instead of writing images")
	verbose     = flag.Bool("v", false, "Log per-frame statistics")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tinyrender - software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tinyrender [options] [model.glb|triangle|quad|cube ...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nTerminal controls (-term):\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Spin the model\n")
		fmt.Fprintf(os.Stderr, "  H/L, J/K    - Orbit the camera\n")
		fmt.Fprintf(os.Stderr, "  Space       - Random spin\n")
		fmt.Fprintf(os.Stderr, "  +/-         - Zoom\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  C           - Toggle back-face culling\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  Esc, Q      - Quit\n")
	}
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			return err
		}
	}

	err := cfg.Resolve(config.Flags{
		Width:   *width,
		Height:  *height,
		Output:  *outputPath,
		Format:  *format,
		Scale:   *scale,
		Frames:  *frames,
		Texture: *texturePath,
		Wrap:    *wrap,
		Filter:  *filter,
		Mode:    *mode,
		Shader:  *shader,
		Meshes:  flag.Args(),
	})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sc, err := loadScene(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *termView {
		// Log lines would tear the alternate screen.
		render.SetLogger(nil)
		return view(ctx, cfg, sc)
	}
	return export(ctx, cfg, sc)
}
