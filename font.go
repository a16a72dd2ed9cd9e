package watermark

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Font families understood by the Raster renderer.
const (
	FamilySansSerif = "sans-serif"
	FamilyMonospace = "monospace"
	// FamilyBasic is the fixed 7x13 bitmap face; Size is ignored.
	FamilyBasic = "basic"
)

// Style selects the weight and slant of a font family.
type Style int

// Font styles, in the order of the gofont files they select.
const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

func (s Style) String() string {
	switch s {
	case Regular:
		return "regular"
	case Bold:
		return "bold"
	case Italic:
		return "italic"
	case BoldItalic:
		return "bold-italic"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// ParseStyle reverses Style.String.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regular", "":
		return Regular, nil
	case "bold":
		return Bold, nil
	case "italic":
		return Italic, nil
	case "bold-italic", "bolditalic":
		return BoldItalic, nil
	}
	return 0, fmt.Errorf("%w: unknown font style %q", ErrInvalidRequest, s)
}

// Font describes the face used to measure and draw the watermark text. Size
// is in pixels.
type Font struct {
	Family string
	Size   float64
	Style  Style
}

// DefaultFont is the bold sans-serif face used when a request carries no
// explicit font.
func DefaultFont(size int) Font {
	return Font{Family: FamilySansSerif, Size: float64(size), Style: Bold}
}

type fontKey struct {
	family string
	style  Style
}

type fontEntry struct {
	ttf  []byte
	once sync.Once
	font *opentype.Font
	err  error
}

// fonts lazily parses the embedded Go fonts; entries are read-only after
// init, each parsed at most once.
var fonts = map[fontKey]*fontEntry{
	{FamilySansSerif, Regular}:    {ttf: goregular.TTF},
	{FamilySansSerif, Bold}:       {ttf: gobold.TTF},
	{FamilySansSerif, Italic}:     {ttf: goitalic.TTF},
	{FamilySansSerif, BoldItalic}: {ttf: gobolditalic.TTF},
	{FamilyMonospace, Regular}:    {ttf: gomono.TTF},
	{FamilyMonospace, Bold}:       {ttf: gomonobold.TTF},
	{FamilyMonospace, Italic}:     {ttf: gomonoitalic.TTF},
	{FamilyMonospace, BoldItalic}: {ttf: gomonobolditalic.TTF},
}

// NewFace builds a font.Face for f. The caller must Close the face.
func NewFace(f Font) (font.Face, error) {
	family := strings.ToLower(f.Family)
	if family == FamilyBasic {
		return basicfont.Face7x13, nil
	}
	if f.Size <= 0 {
		return nil, fmt.Errorf("%w: font size %v", ErrInvalidRequest, f.Size)
	}

	entry, ok := fonts[fontKey{family, f.Style}]
	if !ok {
		return nil, fmt.Errorf("%w: %s %v", ErrUnknownFont, f.Family, f.Style)
	}

	entry.once.Do(func() {
		entry.font, entry.err = opentype.Parse(entry.ttf)
	})
	if entry.err != nil {
		return nil, fmt.Errorf("parse %s %v: %w", family, f.Style, entry.err)
	}

	face, err := opentype.NewFace(entry.font, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face %s %v: %w", family, f.Style, err)
	}
	return face, nil
}
