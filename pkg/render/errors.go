package render

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize is returned for a non-positive frame size.
	ErrInvalidSize = errors.New("invalid frame size")
	// ErrInvalidProjection is returned for projection parameters that do
	// not describe a usable view volume.
	ErrInvalidProjection = errors.New("invalid projection")
	// ErrDegenerateCamera is returned when eye, target and up do not span
	// a camera basis.
	ErrDegenerateCamera = errors.New("degenerate camera")
	// ErrTextureDecode marks a texture file that could not be decoded.
	ErrTextureDecode = errors.New("texture decode failed")
)

// TextureError describes a failed texture load.
type TextureError struct {
	Op   string // "open" or "decode"
	Path string
	Err  error
}

func (e *TextureError) Error() string {
	return fmt.Sprintf("texture %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *TextureError) Unwrap() error {
	return e.Err
}
