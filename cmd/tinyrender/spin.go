package main

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/tinyrender/pkg/math3d"
)

// spinAxis is one rotation axis whose velocity springs back to rest.
type spinAxis struct {
	Position float64
	Velocity float64

	spring harmonica.Spring
	accel  float64
}

func newSpinAxis(fps int) spinAxis {
	// Critically damped, so the spin never reverses.
	return spinAxis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

func (a *spinAxis) update() {
	a.Position += a.Velocity
	a.Velocity, a.accel = a.spring.Update(a.Velocity, a.accel, 0)
}

// spin is the interactive model rotation of the terminal viewer.
type spin struct {
	Pitch, Yaw spinAxis
	fps        int
}

func newSpin(fps int) *spin {
	return &spin{Pitch: newSpinAxis(fps), Yaw: newSpinAxis(fps), fps: fps}
}

func (s *spin) update() {
	s.Pitch.update()
	s.Yaw.update()
}

func (s *spin) impulse(pitch, yaw float64) {
	s.Pitch.Velocity += pitch
	s.Yaw.Velocity += yaw
}

func (s *spin) reset() {
	*s = *newSpin(s.fps)
}

func (s *spin) model() math3d.Mat4 {
	return math3d.RotateX(s.Pitch.Position).Mul(math3d.RotateY(s.Yaw.Position))
}

// turntable returns one yaw angle per frame, easing from rest to a full
// turn with a critically damped spring tuned to settle by the last frame.
func turntable(frames, fps int) []float64 {
	angles := make([]float64, frames)
	if frames < 2 {
		return angles
	}
	duration := float64(frames) / float64(fps)
	spring := harmonica.NewSpring(harmonica.FPS(fps), 7/duration, 1.0)

	var pos, vel float64
	for i := range angles {
		angles[i] = pos
		pos, vel = spring.Update(pos, vel, 2*math.Pi)
	}
	return angles
}
