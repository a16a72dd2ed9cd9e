package watermark

import (
	"image"
	"image/color"
	"image/draw"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Raster is the default Renderer, backed by the standard image codecs,
// golang.org/x/image and the embedded Go fonts.
type Raster struct {
	// JPEGQuality is used for CodecJPEG output; zero means
	// DefaultJPEGQuality.
	JPEGQuality int
}

// rgbaHandle owns the RGBA buffer of a decoded image.
type rgbaHandle struct {
	*image.RGBA
}

func (h *rgbaHandle) Release() {
	h.Pix = nil
}

// Decode decodes data and copies it into a mutable RGBA buffer.
func (r *Raster) Decode(data []byte) (Handle, error) {
	img, _, err := DecodeImageBytes(data)
	if err != nil {
		return nil, err
	}
	return &rgbaHandle{cloneToRGBA(img)}, nil
}

// MeasureText reports the advance width of text and the line height of the
// face.
func (r *Raster) MeasureText(text string, f Font) (Extent, error) {
	face, err := NewFace(f)
	if err != nil {
		return Extent{}, err
	}
	defer face.Close()

	width := font.MeasureString(face, text)
	height := face.Metrics().Height
	return Extent{Width: fixedToFloat(width), Height: fixedToFloat(height)}, nil
}

// DrawText draws text with its line box anchored at the origin: the baseline
// sits one ascent below at.Y.
func (r *Raster) DrawText(dst draw.Image, text string, f Font, c color.Color, at image.Point) error {
	face, err := NewFace(f)
	if err != nil {
		return err
	}
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(at.X, at.Y).Add(fixed.Point26_6{Y: face.Metrics().Ascent}),
	}
	d.DrawString(text)
	return nil
}

func (r *Raster) Encode(w io.Writer, img image.Image, c Codec) error {
	return Encode(w, img, c, r.JPEGQuality)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
