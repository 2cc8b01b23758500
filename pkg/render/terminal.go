package render

import (
	"image/color"
	"math"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/taigrr/tinyrender/pkg/math3d"
)

// Draw paints the framebuffer onto a terminal screen with half-block cells:
// each terminal row shows two framebuffer rows, the upper one as the
// foreground of ▀ and the lower one as its background.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		if topY >= fb.Height {
			break
		}
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.ReadColor(x, topY)),
					Bg: cellColor(fb.ReadColor(x, topY+1)),
				},
			})
		}
	}
}

// cellColor maps transparent pixels to the terminal default color.
func cellColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack = color.RGBA{0, 0, 0, 255}
	ColorWhite = color.RGBA{255, 255, 255, 255}
	ColorSky   = color.RGBA{135, 206, 235, 255}
)

// RGB creates an opaque color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// ColorFromVec4 converts an RGBA color in [0,1] to 8-bit channels,
// saturating out-of-range values.
func ColorFromVec4(v math3d.Vec4) Color {
	return Color{R: unitToByte(v.X), G: unitToByte(v.Y), B: unitToByte(v.Z), A: unitToByte(v.W)}
}

// Vec4FromColor converts 8-bit channels to an RGBA color in [0,1].
func Vec4FromColor(c Color) math3d.Vec4 {
	return math3d.V4(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

func unitToByte(f float64) uint8 {
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f >= 1 {
		return 255
	}
	return uint8(f*255 + 0.5)
}
