package watermark

import (
	"fmt"
	"image"
	"strings"
)

// Corner selects where the watermark text is anchored.
type Corner int

// The four anchor corners. TopLeft is the zero value.
const (
	TopLeft Corner = iota
	TopRight
	BottomLeft
	BottomRight
)

func (c Corner) String() string {
	switch c {
	case TopLeft:
		return "top-left"
	case TopRight:
		return "top-right"
	case BottomLeft:
		return "bottom-left"
	case BottomRight:
		return "bottom-right"
	}
	return fmt.Sprintf("Corner(%d)", int(c))
}

// ParseCorner accepts the dashed names reported by String as well as the
// CamelCase constant names, case-insensitively.
func ParseCorner(s string) (Corner, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "top-left", "topleft":
		return TopLeft, nil
	case "top-right", "topright":
		return TopRight, nil
	case "bottom-left", "bottomleft":
		return BottomLeft, nil
	case "bottom-right", "bottomright":
		return BottomRight, nil
	}
	return 0, fmt.Errorf("%w: unknown corner %q", ErrInvalidRequest, s)
}

// Resolve returns the top-left draw origin for text of the given size inside
// an image of the given size. Values outside the four corners resolve like
// TopLeft. The result is not clamped; oversized text yields negative
// coordinates.
func Resolve(imageW, imageH, textW, textH, padding int, c Corner) image.Point {
	switch c {
	case TopRight:
		return image.Pt(imageW-textW-padding, padding)
	case BottomLeft:
		return image.Pt(padding, imageH-textH-padding)
	case BottomRight:
		return image.Pt(imageW-textW-padding, imageH-textH-padding)
	default:
		return image.Pt(padding, padding)
	}
}

// truncate converts a fractional text metric to whole pixels, toward zero.
func truncate(v float64) int {
	return int(v)
}
