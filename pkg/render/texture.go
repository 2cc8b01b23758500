package render

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"github.com/taigrr/tinyrender/pkg/math3d"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// textureDecoders maps file extensions to decoders. The TGA package
// registers an empty magic string that matches any input, so image.Decode
// cannot be trusted to pick the format once it is linked.
var textureDecoders = map[string]func(io.Reader) (image.Image, error){
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".gif":  gif.Decode,
	".bmp":  bmp.Decode,
	".tga":  tga.Decode,
	".webp": webp.Decode,
}

// WrapMode determines how texel coordinates outside the image are handled.
type WrapMode int

const (
	WrapRepeat      WrapMode = iota // Tile the texture
	WrapClampToEdge                 // Clamp to the border texel
)

func (m WrapMode) String() string {
	switch m {
	case WrapRepeat:
		return "repeat"
	case WrapClampToEdge:
		return "clamp_to_edge"
	default:
		return fmt.Sprintf("WrapMode(%d)", int(m))
	}
}

// UnmarshalText parses "repeat" or "clamp_to_edge".
func (m *WrapMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "repeat", "":
		*m = WrapRepeat
	case "clamp_to_edge", "clamp":
		*m = WrapClampToEdge
	default:
		return fmt.Errorf("unknown wrap mode %q", text)
	}
	return nil
}

// FilterMode determines how texture sampling is performed.
type FilterMode int

const (
	FilterNearest  FilterMode = iota // Nearest-neighbor (pixelated)
	FilterBilinear                   // Bilinear interpolation (smooth)
)

func (m FilterMode) String() string {
	switch m {
	case FilterNearest:
		return "nearest"
	case FilterBilinear:
		return "bilinear"
	default:
		return fmt.Sprintf("FilterMode(%d)", int(m))
	}
}

// UnmarshalText parses "nearest" or "bilinear".
func (m *FilterMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "nearest", "":
		*m = FilterNearest
	case "bilinear", "linear":
		*m = FilterBilinear
	default:
		return fmt.Errorf("unknown filter mode %q", text)
	}
	return nil
}

// Texture is an immutable 2D image with 1, 3 or 4 channels of 8 bits.
// Row 0 is the bottom row of the source image so that v=0 samples the
// bottom edge.
type Texture struct {
	Width    int
	Height   int
	Channels int
	Wrap     WrapMode
	Filter   FilterMode

	data   []uint8
	loaded bool
}

// LoadTexture decodes the image at path, choosing the decoder by file
// extension. Supported formats are PNG, JPEG, GIF, BMP, TGA and WebP.
func LoadTexture(path string, wrap WrapMode, filter FilterMode) (*Texture, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := textureDecoders[ext]
	if !ok {
		return nil, &TextureError{Op: "decode", Path: path, Err: fmt.Errorf("%w: unsupported format %q", ErrTextureDecode, ext)}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &TextureError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	img, err := decode(f)
	if err != nil {
		return nil, &TextureError{Op: "decode", Path: path, Err: fmt.Errorf("%w: %w", ErrTextureDecode, err)}
	}

	tex := TextureFromImage(img, wrap, filter)
	Logger().Info("texture loaded",
		"path", path,
		"format", strings.TrimPrefix(ext, "."),
		"width", tex.Width,
		"height", tex.Height,
		"channels", tex.Channels)
	return tex, nil
}

// TextureFromImage builds a texture from a decoded image. Gray images keep
// a single channel, opaque images three, everything else four.
func TextureFromImage(img image.Image, wrap WrapMode, filter FilterMode) *Texture {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	channels := 4
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		channels = 1
	default:
		if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
			channels = 3
		}
	}

	tex := &Texture{
		Width:    width,
		Height:   height,
		Channels: channels,
		Wrap:     wrap,
		Filter:   filter,
		data:     make([]uint8, width*height*channels),
		loaded:   true,
	}

	for y := range height {
		// Flip vertically: image row 0 is the top.
		srcY := bounds.Min.Y + height - 1 - y
		for x := range width {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, srcY)).(color.NRGBA)
			i := (y*width + x) * channels
			switch channels {
			case 1:
				tex.data[i] = c.R
			case 3:
				tex.data[i], tex.data[i+1], tex.data[i+2] = c.R, c.G, c.B
			default:
				tex.data[i], tex.data[i+1], tex.data[i+2], tex.data[i+3] = c.R, c.G, c.B, c.A
			}
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural RGBA checkerboard. The cell at the
// texture origin uses c1.
func NewCheckerTexture(width, height, checkSize int, c1, c2 Color) *Texture {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			c := c1
			if (x/checkSize+y/checkSize)%2 != 0 {
				c = c2
			}
			// Written bottom-up so the origin cell survives the load flip.
			img.SetNRGBA(x, height-1-y, color.NRGBA(c))
		}
	}
	return TextureFromImage(img, WrapRepeat, FilterNearest)
}

// Loaded reports whether the texture holds image data.
func (t *Texture) Loaded() bool {
	return t != nil && t.loaded
}

// Unload releases the image data. Sampling afterwards returns opaque white.
func (t *Texture) Unload() {
	t.data = nil
	t.loaded = false
}

// ReadPixel returns the texel at (x, y) after applying the wrap mode.
// Missing alpha reads as 255 and single-channel images replicate gray.
func (t *Texture) ReadPixel(x, y int) [4]uint8 {
	if !t.Loaded() || t.Width == 0 || t.Height == 0 {
		return [4]uint8{255, 255, 255, 255}
	}
	x = wrapCoord(x, t.Width, t.Wrap)
	y = wrapCoord(y, t.Height, t.Wrap)

	i := (y*t.Width + x) * t.Channels
	switch t.Channels {
	case 1:
		g := t.data[i]
		return [4]uint8{g, g, g, 255}
	case 3:
		return [4]uint8{t.data[i], t.data[i+1], t.data[i+2], 255}
	default:
		return [4]uint8{t.data[i], t.data[i+1], t.data[i+2], t.data[i+3]}
	}
}

// wrapCoord maps a texel coordinate into [0, size). Unknown modes clamp.
func wrapCoord(x, size int, mode WrapMode) int {
	if mode == WrapRepeat {
		return ((x % size) + size) % size
	}
	return max(0, min(x, size-1))
}

// Sample returns the color at texture coordinate uv as RGBA in [0,1].
func (t *Texture) Sample(uv math3d.Vec2) math3d.Vec4 {
	if !t.Loaded() {
		return math3d.V4(1, 1, 1, 1)
	}
	if t.Filter == FilterBilinear {
		return t.sampleBilinear(uv)
	}
	x := int(math.Floor(uv.X * float64(t.Width)))
	y := int(math.Floor(uv.Y * float64(t.Height)))
	return texelToVec4(t.ReadPixel(x, y))
}

// sampleBilinear blends the four texels around uv, with texel centers at
// half-integer positions.
func (t *Texture) sampleBilinear(uv math3d.Vec2) math3d.Vec4 {
	fx := uv.X*float64(t.Width) - 0.5
	fy := uv.Y*float64(t.Height) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	c00 := texelToVec4(t.ReadPixel(x0, y0))
	c10 := texelToVec4(t.ReadPixel(x0+1, y0))
	c01 := texelToVec4(t.ReadPixel(x0, y0+1))
	c11 := texelToVec4(t.ReadPixel(x0+1, y0+1))

	bottom := c00.Lerp(c10, tx)
	top := c01.Lerp(c11, tx)
	return bottom.Lerp(top, ty)
}

func texelToVec4(p [4]uint8) math3d.Vec4 {
	return math3d.V4(float64(p[0])/255, float64(p[1])/255, float64(p[2])/255, float64(p[3])/255)
}
