package watermark

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/bmp"
)

// Codec identifies the encoder used for the watermarked output.
type Codec int

// Output codecs. CodecNone means no encoder matched the extension.
const (
	CodecNone Codec = iota
	CodecPNG
	CodecJPEG
	CodecBMP
)

// DefaultJPEGQuality is used when a Raster renderer has no quality set.
const DefaultJPEGQuality = 90

func (c Codec) String() string {
	switch c {
	case CodecPNG:
		return "png"
	case CodecJPEG:
		return "jpeg"
	case CodecBMP:
		return "bmp"
	}
	return "none"
}

// MIMEType returns the media type written by the codec, or
// application/octet-stream for CodecNone.
func (c Codec) MIMEType() string {
	switch c {
	case CodecPNG:
		return "image/png"
	case CodecJPEG:
		return "image/jpeg"
	case CodecBMP:
		return "image/bmp"
	}
	return "application/octet-stream"
}

// CodecForExtension maps a file extension, including the leading dot, to an
// output codec. The match is exact and case-sensitive: ".PNG" is not
// recognized.
func CodecForExtension(ext string) (Codec, bool) {
	switch ext {
	case ".png":
		return CodecPNG, true
	case ".jpg", ".jpeg":
		return CodecJPEG, true
	case ".bmp":
		return CodecBMP, true
	}
	return CodecNone, false
}

// Encode writes img to w with the given codec. quality only applies to JPEG;
// values outside 1..100 use DefaultJPEGQuality.
func Encode(w io.Writer, img image.Image, c Codec, quality int) error {
	switch c {
	case CodecPNG:
		return png.Encode(w, img)
	case CodecJPEG:
		if quality < 1 || quality > 100 {
			quality = DefaultJPEGQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case CodecBMP:
		return bmp.Encode(w, img)
	}
	return fmt.Errorf("%w: %v", ErrUnknownCodec, c)
}
