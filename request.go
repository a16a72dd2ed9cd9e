package watermark

import (
	"fmt"
	"image/color"
)

// Defaults applied by NewRequest.
const (
	DefaultPadding  = 10
	DefaultFontSize = 20
)

// Request describes a single text watermark. It is built with NewRequest
// and not modified afterwards.
type Request struct {
	Text         string
	Color        color.Color
	Corner       Corner
	Padding      int
	FontSize     int
	Font         *Font
	AutoContrast bool
}

// Option customises a Request.
type Option func(*Request) error

// WithCorner sets the anchor corner. Default BottomRight.
func WithCorner(c Corner) Option {
	return func(r *Request) error {
		r.Corner = c
		return nil
	}
}

// WithPadding sets the pixel inset from the corner's edges. Default 10.
func WithPadding(px int) Option {
	return func(r *Request) error {
		if px < 0 {
			return fmt.Errorf("%w: negative padding %d", ErrInvalidRequest, px)
		}
		r.Padding = px
		return nil
	}
}

// WithFontSize sets the pixel size of the synthesized default font. It has
// no effect when WithFont is also given. Default 20.
func WithFontSize(px int) Option {
	return func(r *Request) error {
		if px <= 0 {
			return fmt.Errorf("%w: font size %d", ErrInvalidRequest, px)
		}
		r.FontSize = px
		return nil
	}
}

// WithFont overrides the default bold sans-serif font.
func WithFont(f Font) Option {
	return func(r *Request) error {
		r.Font = &f
		return nil
	}
}

// WithAutoContrast draws the text in black or white depending on the
// brightness of the area it covers. The request color is ignored.
func WithAutoContrast() Option {
	return func(r *Request) error {
		r.AutoContrast = true
		return nil
	}
}

// NewRequest builds a Request with defaults applied. c may be nil only when
// WithAutoContrast is given.
func NewRequest(text string, c color.Color, opts ...Option) (Request, error) {
	r := Request{
		Text:     text,
		Color:    c,
		Corner:   BottomRight,
		Padding:  DefaultPadding,
		FontSize: DefaultFontSize,
	}
	for _, opt := range opts {
		if err := opt(&r); err != nil {
			return Request{}, err
		}
	}
	if err := r.validate(); err != nil {
		return Request{}, err
	}
	return r, nil
}

func (r Request) validate() error {
	if r.Text == "" {
		return fmt.Errorf("%w: empty watermark text", ErrInvalidRequest)
	}
	if r.Color == nil && !r.AutoContrast {
		return fmt.Errorf("%w: no color", ErrInvalidRequest)
	}
	if r.Padding < 0 {
		return fmt.Errorf("%w: negative padding %d", ErrInvalidRequest, r.Padding)
	}
	if r.Font == nil && r.FontSize <= 0 {
		return fmt.Errorf("%w: font size %d", ErrInvalidRequest, r.FontSize)
	}
	return nil
}

// font returns the explicit font or synthesizes the bold sans-serif default.
func (r Request) font() Font {
	if r.Font != nil {
		return *r.Font
	}
	return DefaultFont(r.FontSize)
}

// SkipPolicy suppresses watermarking of small images.
type SkipPolicy struct {
	SkipSmallImages          bool
	SmallImagePixelThreshold int
}

// ShouldSkip reports whether an image of w×h pixels falls under the policy.
func (p SkipPolicy) ShouldSkip(w, h int) bool {
	return p.SkipSmallImages && w*h < p.SmallImagePixelThreshold
}
