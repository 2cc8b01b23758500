package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/taigrr/tinyrender/pkg/math3d"
)

// redBlue is a 2x1 texture, red on the left and blue on the right.
func redBlue(wrap WrapMode, filter FilterMode) *Texture {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{0, 0, 255, 255})
	return TextureFromImage(img, wrap, filter)
}

func vecNear(a, b math3d.Vec4, eps float64) bool {
	return math.Abs(a.X-b.X) <= eps && math.Abs(a.Y-b.Y) <= eps &&
		math.Abs(a.Z-b.Z) <= eps && math.Abs(a.W-b.W) <= eps
}

func TestTextureFromImageChannels(t *testing.T) {
	opaque := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for i := range opaque.Pix {
		opaque.Pix[i] = 255
	}
	translucent := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	translucent.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 40})
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.SetGray(0, 1, color.Gray{Y: 77})

	tests := []struct {
		name     string
		img      image.Image
		channels int
		pixel    [4]uint8 // at texel (0, 0), the bottom-left corner
	}{
		{"opaque", opaque, 3, [4]uint8{255, 255, 255, 255}},
		{"translucent", translucent, 4, [4]uint8{0, 0, 0, 0}},
		{"gray", gray, 1, [4]uint8{77, 77, 77, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex := TextureFromImage(tt.img, WrapRepeat, FilterNearest)
			if tex.Channels != tt.channels {
				t.Errorf("Channels = %d, want %d", tex.Channels, tt.channels)
			}
			if tex.Width != 2 || tex.Height != 2 {
				t.Errorf("size = %dx%d, want 2x2", tex.Width, tex.Height)
			}
			if got := tex.ReadPixel(0, 0); got != tt.pixel {
				t.Errorf("ReadPixel(0,0) = %v, want %v", got, tt.pixel)
			}
		})
	}
}

func TestTextureVerticalFlip(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255}) // top
	img.SetNRGBA(0, 1, color.NRGBA{0, 255, 0, 255}) // bottom
	tex := TextureFromImage(img, WrapClampToEdge, FilterNearest)

	if got := tex.ReadPixel(0, 0); got != [4]uint8{0, 255, 0, 255} {
		t.Errorf("row 0 = %v, want the bottom image row", got)
	}
	if got := tex.Sample(math3d.V2(0.5, 0.9)); !vecNear(got, math3d.V4(1, 0, 0, 1), 0) {
		t.Errorf("Sample near v=1 = %v, want red", got)
	}
}

func TestTextureWrap(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	for y := range 2 {
		for x := range 3 {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 50), uint8(y * 100), 7, 255})
		}
	}

	t.Run("repeat", func(t *testing.T) {
		tex := TextureFromImage(img, WrapRepeat, FilterNearest)
		for x := range 3 {
			for y := range 2 {
				want := tex.ReadPixel(x, y)
				for _, k := range []int{-3, -1, 1, 4} {
					if got := tex.ReadPixel(x+k*3, y+k*2); got != want {
						t.Errorf("ReadPixel(%d,%d) = %v, want %v", x+k*3, y+k*2, got, want)
					}
				}
			}
		}
	})

	t.Run("clamp", func(t *testing.T) {
		tex := TextureFromImage(img, WrapClampToEdge, FilterNearest)
		tests := []struct{ x, y, wantX, wantY int }{
			{-5, 0, 0, 0},
			{100, 1, 2, 1},
			{1, -1, 1, 0},
			{1, 9, 1, 1},
			{-1, 9, 0, 1},
		}
		for _, tt := range tests {
			if got, want := tex.ReadPixel(tt.x, tt.y), tex.ReadPixel(tt.wantX, tt.wantY); got != want {
				t.Errorf("ReadPixel(%d,%d) = %v, want %v", tt.x, tt.y, got, want)
			}
		}
	})

	t.Run("unknown mode clamps", func(t *testing.T) {
		tex := TextureFromImage(img, WrapMode(42), FilterNearest)
		if got, want := tex.ReadPixel(-4, 0), tex.ReadPixel(0, 0); got != want {
			t.Errorf("ReadPixel(-4,0) = %v, want %v", got, want)
		}
	})
}

func TestTextureSampleNearest(t *testing.T) {
	tex := redBlue(WrapRepeat, FilterNearest)
	red := math3d.V4(1, 0, 0, 1)
	blue := math3d.V4(0, 0, 1, 1)

	tests := []struct {
		u    float64
		want math3d.Vec4
	}{
		{0, red},
		{0.25, red},
		{0.49, red},
		{0.5, blue},
		{0.75, blue},
		{1.25, red},
		{-0.25, blue},
	}
	for _, tt := range tests {
		if got := tex.Sample(math3d.V2(tt.u, 0.5)); !vecNear(got, tt.want, 0) {
			t.Errorf("Sample(u=%v) = %v, want %v", tt.u, got, tt.want)
		}
	}
}

func TestTextureSampleBilinear(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 2, 1))
	img.SetGray(1, 0, color.Gray{Y: 255})
	tex := TextureFromImage(img, WrapClampToEdge, FilterBilinear)

	tests := []struct {
		u    float64
		want float64
	}{
		{0.25, 0},   // texel center
		{0.75, 1},   // texel center
		{0.5, 0.5},  // halfway between
		{0.375, 0.25},
		{0, 0}, // clamped
		{1, 1}, // clamped
	}
	for _, tt := range tests {
		got := tex.Sample(math3d.V2(tt.u, 0.5))
		if math.Abs(got.X-tt.want) > 1e-12 || got.X != got.Y || got.W != 1 {
			t.Errorf("Sample(u=%v) = %v, want gray %v", tt.u, got, tt.want)
		}
	}
}

func TestTextureUnloaded(t *testing.T) {
	white := math3d.V4(1, 1, 1, 1)

	var missing *Texture
	if missing.Loaded() {
		t.Error("nil texture reports loaded")
	}
	if got := missing.Sample(math3d.V2(0.3, 0.3)); got != white {
		t.Errorf("nil texture sample = %v, want white", got)
	}

	tex := redBlue(WrapRepeat, FilterBilinear)
	if !tex.Loaded() {
		t.Fatal("texture not loaded")
	}
	tex.Unload()
	if tex.Loaded() {
		t.Error("texture still loaded after Unload")
	}
	if got := tex.Sample(math3d.V2(0.25, 0.5)); got != white {
		t.Errorf("unloaded sample = %v, want white", got)
	}
	if got := tex.ReadPixel(0, 0); got != [4]uint8{255, 255, 255, 255} {
		t.Errorf("unloaded ReadPixel = %v, want white", got)
	}
}

func TestNewCheckerTexture(t *testing.T) {
	c1, c2 := RGB(255, 0, 0), RGB(0, 0, 255)
	tex := NewCheckerTexture(8, 8, 4, c1, c2)

	tests := []struct {
		x, y int
		want Color
	}{
		{0, 0, c1},
		{3, 3, c1},
		{4, 0, c2},
		{0, 4, c2},
		{4, 4, c1},
	}
	for _, tt := range tests {
		p := tex.ReadPixel(tt.x, tt.y)
		got := Color{R: p[0], G: p[1], B: p[2], A: p[3]}
		if got != tt.want {
			t.Errorf("ReadPixel(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestLoadTexture(t *testing.T) {
	dir := t.TempDir()

	t.Run("png", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
		img.SetNRGBA(0, 1, color.NRGBA{1, 2, 3, 128})
		path := filepath.Join(dir, "tex.png")
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()

		tex, err := LoadTexture(path, WrapClampToEdge, FilterBilinear)
		if err != nil {
			t.Fatal(err)
		}
		if tex.Width != 4 || tex.Height != 2 || tex.Channels != 4 {
			t.Errorf("texture %dx%dx%d, want 4x2x4", tex.Width, tex.Height, tex.Channels)
		}
		if tex.Wrap != WrapClampToEdge || tex.Filter != FilterBilinear {
			t.Errorf("modes = %v/%v", tex.Wrap, tex.Filter)
		}
		if got := tex.ReadPixel(0, 0); got != [4]uint8{1, 2, 3, 128} {
			t.Errorf("ReadPixel(0,0) = %v", got)
		}
	})

	t.Run("tga", func(t *testing.T) {
		img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
		for i := range img.Pix {
			img.Pix[i] = 255
		}
		img.SetNRGBA(0, 1, color.NRGBA{10, 20, 30, 255})
		path := filepath.Join(dir, "tex.tga")
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		if err := tga.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		f.Close()

		tex, err := LoadTexture(path, WrapRepeat, FilterNearest)
		if err != nil {
			t.Fatal(err)
		}
		if tex.Width != 3 || tex.Height != 2 {
			t.Errorf("texture %dx%d, want 3x2", tex.Width, tex.Height)
		}
		if got := tex.ReadPixel(0, 0); got != [4]uint8{10, 20, 30, 255} {
			t.Errorf("ReadPixel(0,0) = %v", got)
		}
		if got := tex.ReadPixel(1, 1); got != [4]uint8{255, 255, 255, 255} {
			t.Errorf("ReadPixel(1,1) = %v", got)
		}
	})

	t.Run("unsupported", func(t *testing.T) {
		path := filepath.Join(dir, "tex.xyz")
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadTexture(path, WrapRepeat, FilterNearest)
		var texErr *TextureError
		if !errors.As(err, &texErr) || texErr.Op != "decode" || !errors.Is(err, ErrTextureDecode) {
			t.Fatalf("err = %v, want a decode TextureError", err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadTexture(filepath.Join(dir, "nope.png"), WrapRepeat, FilterNearest)
		var texErr *TextureError
		if !errors.As(err, &texErr) || texErr.Op != "open" {
			t.Fatalf("err = %v, want an open TextureError", err)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("err = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.png")
		if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := LoadTexture(path, WrapRepeat, FilterNearest)
		var texErr *TextureError
		if !errors.As(err, &texErr) || texErr.Op != "decode" {
			t.Fatalf("err = %v, want a decode TextureError", err)
		}
		if !errors.Is(err, ErrTextureDecode) {
			t.Errorf("err = %v, want ErrTextureDecode", err)
		}
	})
}

func TestTextureModeUnmarshalText(t *testing.T) {
	var w WrapMode
	if err := w.UnmarshalText([]byte("CLAMP_TO_EDGE")); err != nil || w != WrapClampToEdge {
		t.Errorf("wrap = %v, err = %v", w, err)
	}
	if err := w.UnmarshalText([]byte("mirror")); err == nil {
		t.Error("expected an error for an unknown wrap mode")
	}

	var f FilterMode
	if err := f.UnmarshalText([]byte("bilinear")); err != nil || f != FilterBilinear {
		t.Errorf("filter = %v, err = %v", f, err)
	}
	if err := f.UnmarshalText([]byte("trilinear")); err == nil {
		t.Error("expected an error for an unknown filter mode")
	}
}

func BenchmarkTextureSample(b *testing.B) {
	tex := NewCheckerTexture(64, 64, 8, ColorWhite, ColorBlack)
	uv := math3d.V2(0.37, 0.81)

	b.Run("nearest", func(b *testing.B) {
		tex.Filter = FilterNearest
		for b.Loop() {
			_ = tex.Sample(uv)
		}
	})
	b.Run("bilinear", func(b *testing.B) {
		tex.Filter = FilterBilinear
		for b.Loop() {
			_ = tex.Sample(uv)
		}
	})
}
