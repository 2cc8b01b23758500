package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/tinyrender/internal/config"
	"github.com/taigrr/tinyrender/pkg/render"
)

const (
	spinStep  = 0.05
	orbitStep = 0.1
	zoomStep  = 0.9
	minRadius = 1.0
	maxRadius = 50.0
)

// view runs the interactive terminal preview until quit or ctx is done.
// Each cell shows two framebuffer rows as a half block.
func view(ctx context.Context, cfg config.Config, sc *scene) error {
	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	defer func() {
		term.ExitAltScreen()
		term.ShowCursor()
		_ = term.Shutdown(context.Background())
	}()

	term.EnterAltScreen()
	term.HideCursor()
	if err := term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}

	cam := cfg.NewCamera()
	homeEye, homeTarget, homeUp := cam.Eye, cam.Target, cam.Up
	r, err := newViewRenderer(cfg, sc, cam, width, height)
	if err != nil {
		return err
	}

	rot := newSpin(cfg.Output.FPS)
	mode := cfg.Mode
	noCull := cfg.DisableBackfaceCulling

	ticker := time.NewTicker(time.Second / time.Duration(cfg.Output.FPS))
	defer ticker.Stop()

	events := term.Events()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				if err := term.Resize(width, height); err != nil {
					return fmt.Errorf("resize terminal: %w", err)
				}
				if r, err = newViewRenderer(cfg, sc, cam, width, height); err != nil {
					return err
				}

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape", "ctrl+c", "q"):
					return nil
				case ev.MatchString("w", "up"):
					rot.impulse(-spinStep, 0)
				case ev.MatchString("s", "down"):
					rot.impulse(spinStep, 0)
				case ev.MatchString("a", "left"):
					rot.impulse(0, -spinStep)
				case ev.MatchString("d", "right"):
					rot.impulse(0, spinStep)
				case ev.MatchString("h"):
					cam.Orbit(-orbitStep, 0)
				case ev.MatchString("l"):
					cam.Orbit(orbitStep, 0)
				case ev.MatchString("k"):
					cam.Orbit(0, orbitStep)
				case ev.MatchString("j"):
					cam.Orbit(0, -orbitStep)
				case ev.MatchString("space"):
					rot.impulse((rand.Float64()-0.5)*0.5, (rand.Float64()-0.5)*0.5)
				case ev.MatchString("+", "="):
					zoom(cam, zoomStep)
				case ev.MatchString("-", "_"):
					zoom(cam, 1/zoomStep)
				case ev.MatchString("x"):
					if mode == render.ModeWire {
						mode = render.ModeFill
					} else {
						mode = render.ModeWire
					}
				case ev.MatchString("c"):
					noCull = !noCull
				case ev.MatchString("r"):
					rot.reset()
					cam.SetView(homeEye, homeTarget, homeUp)
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					zoom(cam, zoomStep)
				case uv.MouseWheelDown:
					zoom(cam, 1/zoomStep)
				}
			}

		case <-ticker.C:
			rot.update()
			r.Mode = mode
			r.DisableBackfaceCulling = noCull
			r.SetModelMatrix(rot.model())
			if err := r.SetCamera(cam); err != nil {
				return err
			}
			r.Render(sc.shader)
			r.Present(func(fb *render.Framebuffer) {
				term.Draw(fb)
			})
			if err := term.Display(); err != nil {
				return fmt.Errorf("display: %w", err)
			}
		}
	}
}

// newViewRenderer sizes a renderer to a terminal of cols x rows cells.
func newViewRenderer(cfg config.Config, sc *scene, cam *render.Camera, cols, rows int) (*render.Renderer, error) {
	w, h := max(cols, 1), max(rows, 1)*2
	cam.SetAspectRatio(float64(w) / float64(h))
	return newRenderer(cfg, sc, cam, w, h)
}

// zoom scales the eye distance from the target by factor.
func zoom(cam *render.Camera, factor float64) {
	offset := cam.Eye.Sub(cam.Target)
	radius := offset.Len()
	if radius == 0 {
		return
	}
	next := math.Max(minRadius, math.Min(maxRadius, radius*factor))
	eye := cam.Target.Add(offset.Scale(next / radius))
	cam.SetView(eye, cam.Target, cam.Up)
}

