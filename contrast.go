package watermark

import (
	"image"
	"image/color"
)

// Mean luma above which dark text is chosen for auto-contrast watermarks.
const contrastLumaThreshold = 128.0

// ContrastColor picks black or white, whichever stands out more against the
// pixels of img inside region. Parts of region outside the image are
// ignored; an empty intersection yields white.
func ContrastColor(img image.Image, region image.Rectangle) color.Color {
	mean, count := meanLuma(img, region.Intersect(img.Bounds()))
	if count > 0 && mean > contrastLumaThreshold {
		return color.Black
	}
	return color.White
}

// meanLuma computes the average luma in [0, 255] for pixels in region.
func meanLuma(img image.Image, region image.Rectangle) (float64, int) {
	var sum float64
	var count int

	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sum += 0.2126*float64(r)/257.0 + 0.7152*float64(g)/257.0 + 0.0722*float64(b)/257.0
			count++
		}
	}

	if count == 0 {
		return 0, 0
	}

	return sum / float64(count), count
}
