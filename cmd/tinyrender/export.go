package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"github.com/taigrr/tinyrender/pkg/render"
)

// export renders the configured frames to image files.
func export(ctx context.Context, cfg config.Config, sc *scene) error {
	r, err := newRenderer(cfg, sc, cfg.NewCamera(), cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	out := cfg.Output

	if out.Frames == 1 {
		start := time.Now()
		st := r.Render(sc.shader)
		if err := saveFrame(r, out.Path, out.Format, out.Scale); err != nil {
			return err
		}
		slog.Info("frame saved",
			"path", out.Path,
			"faces", st.Faces,
			"culled", st.Culled,
			"clipped", st.Clipped,
			"fragments", st.Fragments,
			"elapsed", time.Since(start))
		return nil
	}

	bar := progressbar.Default(int64(out.Frames), "rendering")
	for i, yaw := range turntable(out.Frames, out.FPS) {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.SetModelMatrix(math3d.RotateY(yaw))
		st := r.Render(sc.shader)
		path := framePath(out.Path, out.Format, i)
		if err := saveFrame(r, path, out.Format, out.Scale); err != nil {
			return err
		}
		slog.Debug("frame saved", "path", path, "fragments", st.Fragments, "written", st.Written)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	slog.Info("sequence saved", "frames", out.Frames, "first", framePath(out.Path, out.Format, 0))
	return nil
}

func saveFrame(r *render.Renderer, path string, format render.ImageFormat, scale int) error {
	var err error
	r.Present(func(fb *render.Framebuffer) {
		err = fb.Save(path, format, scale)
	})
	return err
}

// framePath numbers a sequence frame: out.png becomes out_0007.png.
func framePath(path string, format render.ImageFormat, i int) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	return fmt.Sprintf("%s_%04d%s", base, i, format.Ext())
}
