package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"
)

// Framebuffer holds one color plane (RGBA, 8 bits per channel, row-major,
// origin top-left) and one depth plane of NDC z values.
type Framebuffer struct {
	Width  int
	Height int
	color  []uint8
	depth  []float64
}

// NewFramebuffer creates a framebuffer cleared to transparent black with
// every depth at +Inf.
func NewFramebuffer(width, height int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("framebuffer %dx%d: %w", width, height, ErrInvalidSize)
	}
	fb := &Framebuffer{
		Width:  width,
		Height: height,
		color:  make([]uint8, width*height*4),
		depth:  make([]float64, width*height),
	}
	fb.Clear(Color{})
	return fb, nil
}

// Clear fills the color plane with c and resets every depth to +Inf.
func (fb *Framebuffer) Clear(c Color) {
	copy(fb.color, []uint8{c.R, c.G, c.B, c.A})
	fillDoubling(fb.color, 4)

	fb.depth[0] = math.Inf(1)
	fillDoubling(fb.depth, 1)
}

// fillDoubling replicates the first n elements of s across all of s.
func fillDoubling[T any](s []T, n int) {
	for i := n; i < len(s); i *= 2 {
		copy(s[i:], s[:i])
	}
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// WriteColor sets the pixel at (x, y). Out-of-range writes are ignored.
func (fb *Framebuffer) WriteColor(x, y int, c Color) {
	if !fb.inBounds(x, y) {
		return
	}
	i := (y*fb.Width + x) * 4
	fb.color[i] = c.R
	fb.color[i+1] = c.G
	fb.color[i+2] = c.B
	fb.color[i+3] = c.A
}

// ReadColor returns the pixel at (x, y), or transparent black out of range.
func (fb *Framebuffer) ReadColor(x, y int) Color {
	if !fb.inBounds(x, y) {
		return Color{}
	}
	i := (y*fb.Width + x) * 4
	return Color{R: fb.color[i], G: fb.color[i+1], B: fb.color[i+2], A: fb.color[i+3]}
}

// WriteDepth stores z at (x, y). Out-of-range writes are ignored.
func (fb *Framebuffer) WriteDepth(x, y int, z float64) {
	if !fb.inBounds(x, y) {
		return
	}
	fb.depth[y*fb.Width+x] = z
}

// ReadDepth returns the stored depth at (x, y). Out of range it returns
// -Inf so that no fragment passes the depth test there.
func (fb *Framebuffer) ReadDepth(x, y int) float64 {
	if !fb.inBounds(x, y) {
		return math.Inf(-1)
	}
	return fb.depth[y*fb.Width+x]
}

// Pix returns the color plane. The slice is owned by the framebuffer.
func (fb *Framebuffer) Pix() []uint8 {
	return fb.color
}

// ToImage copies the color plane into an image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.color)
	return img
}

// ScaledImage returns the color plane upscaled by an integer factor with
// nearest-neighbor filtering. factor <= 1 returns ToImage.
func (fb *Framebuffer) ScaledImage(factor int) *image.RGBA {
	src := fb.ToImage()
	if factor <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, fb.Width*factor, fb.Height*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// ImageFormat selects the encoder used by Encode and Save.
type ImageFormat int

const (
	FormatPNG ImageFormat = iota
	FormatWebP
)

func (f ImageFormat) String() string {
	switch f {
	case FormatWebP:
		return "webp"
	default:
		return "png"
	}
}

// Ext returns the file extension for the format, including the dot.
func (f ImageFormat) Ext() string {
	return "." + f.String()
}

// UnmarshalText parses "png" or "webp".
func (f *ImageFormat) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "png", "":
		*f = FormatPNG
	case "webp":
		*f = FormatWebP
	default:
		return fmt.Errorf("unknown image format %q", text)
	}
	return nil
}

// Encode writes the color plane to w, upscaled by factor.
func (fb *Framebuffer) Encode(w io.Writer, format ImageFormat, factor int) error {
	img := fb.ScaledImage(factor)
	switch format {
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
	default:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("png encode: %w", err)
		}
	}
	return nil
}

// Save encodes the color plane into the file at path.
func (fb *Framebuffer) Save(path string, format ImageFormat, factor int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fb.Encode(f, format, factor); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	return fb.Save(path, FormatPNG, 1)
}

// SaveWebP saves the framebuffer as a lossless WebP file.
func (fb *Framebuffer) SaveWebP(path string) error {
	return fb.Save(path, FormatWebP, 1)
}
