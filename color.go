package watermark

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor parses "#rgb", "#rrggbb", "#rrggbbaa" or an SVG color name such
// as "white" or "cornflowerblue".
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return nil, fmt.Errorf("%w: empty color", ErrInvalidRequest)
	}

	if !strings.HasPrefix(s, "#") {
		if c, ok := colornames.Map[s]; ok {
			return c, nil
		}
		return nil, fmt.Errorf("%w: unknown color %q", ErrInvalidRequest, s)
	}

	digits := s[1:]
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	if len(digits) == 6 {
		digits += "ff"
	}
	if len(digits) != 8 {
		return nil, fmt.Errorf("%w: bad hex color %q", ErrInvalidRequest, s)
	}

	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, fmt.Errorf("%w: bad hex color %q", ErrInvalidRequest, s)
	}
	return color.NRGBA{R: b[0], G: b[1], B: b[2], A: b[3]}, nil
}
