package watermark

import (
	"image"
	"image/color"
	"image/draw"
	"io"
)

// Handle is a decoded, drawable image owned by a single Apply call. Release
// is called exactly once when the call returns.
type Handle interface {
	draw.Image
	Release()
}

// Extent is the rendered size of a string in fractional pixels.
type Extent struct {
	Width  float64
	Height float64
}

// Renderer is the imaging capability the Engine relies on. Implementations
// must be safe for concurrent use if the Engine is shared.
type Renderer interface {
	// Decode turns encoded bytes into a Handle. Failures should wrap
	// ErrDecode.
	Decode(data []byte) (Handle, error)
	// MeasureText reports the extent of text rendered with f.
	MeasureText(text string, f Font) (Extent, error)
	// DrawText composites text onto dst with the top-left of its extent at
	// the given origin. The origin may lie partially or fully off-canvas.
	DrawText(dst draw.Image, text string, f Font, c color.Color, at image.Point) error
	// Encode writes img to w in the given codec.
	Encode(w io.Writer, img image.Image, c Codec) error
}
