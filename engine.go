package watermark

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"
)

var (
	// ErrDecode reports input bytes that are not a decodable image.
	ErrDecode = errors.New("decode image")
	// ErrUnknownCodec reports an extension hint with no matching encoder.
	ErrUnknownCodec = errors.New("unknown output codec")
	// ErrInvalidRequest reports an unusable watermark request.
	ErrInvalidRequest = errors.New("invalid watermark request")
	// ErrUnknownFont reports a font family or style the renderer lacks.
	ErrUnknownFont = errors.New("unknown font")
)

// Info captures the image size and the watermark placement of an Apply call.
type Info struct {
	Image  image.Rectangle
	Text   image.Rectangle
	Corner Corner
}

// Result is the outcome of Apply. A skipped result carries no data.
type Result struct {
	Skipped bool
	Data    []byte
	Codec   Codec
	Info    Info
}

// Engine sequences decode, placement, drawing and encoding through a
// Renderer. It keeps no per-call state and may be shared.
type Engine struct {
	renderer Renderer
}

// NewEngine returns an Engine using r, or a default Raster when r is nil.
func NewEngine(r Renderer) *Engine {
	if r == nil {
		r = &Raster{}
	}
	return &Engine{renderer: r}
}

var defaultEngine struct {
	once sync.Once
	eng  *Engine
}

// Apply watermarks data with the default engine.
func Apply(data []byte, ext string, req Request, policy SkipPolicy) (Result, error) {
	defaultEngine.once.Do(func() {
		defaultEngine.eng = NewEngine(nil)
	})

	return defaultEngine.eng.Apply(data, ext, req, policy)
}

// Apply decodes data, stamps req.Text onto it and re-encodes it with the
// codec selected by ext. Images matched by policy return a skipped Result.
// An unmatched ext fails with ErrUnknownCodec before anything is drawn.
func (e *Engine) Apply(data []byte, ext string, req Request, policy SkipPolicy) (Result, error) {
	if err := req.validate(); err != nil {
		return Result{}, err
	}

	img, err := e.decode(data)
	if err != nil {
		return Result{}, err
	}
	defer img.Release()

	bounds := img.Bounds()
	info := Info{Image: bounds, Corner: req.Corner}

	if policy.ShouldSkip(bounds.Dx(), bounds.Dy()) {
		return Result{Skipped: true, Info: info}, nil
	}

	codec, ok := CodecForExtension(ext)
	if !ok {
		return Result{}, fmt.Errorf("%w: extension %q", ErrUnknownCodec, ext)
	}

	f, info, err := e.place(img, req, info)
	if err != nil {
		return Result{}, err
	}

	c := req.Color
	if req.AutoContrast {
		c = ContrastColor(img, info.Text)
	}

	if err := e.renderer.DrawText(img, req.Text, f, c, info.Text.Min); err != nil {
		return Result{}, fmt.Errorf("draw text: %w", err)
	}

	var buf bytes.Buffer
	if err := e.renderer.Encode(&buf, img, codec); err != nil {
		return Result{}, fmt.Errorf("encode %v: %w", codec, err)
	}

	return Result{Data: buf.Bytes(), Codec: codec, Info: info}, nil
}

// Plan decodes data and reports where req would be drawn without drawing or
// encoding. skipped is true when policy matches the image.
func (e *Engine) Plan(data []byte, req Request, policy SkipPolicy) (info Info, skipped bool, err error) {
	if err := req.validate(); err != nil {
		return Info{}, false, err
	}

	img, err := e.decode(data)
	if err != nil {
		return Info{}, false, err
	}
	defer img.Release()

	bounds := img.Bounds()
	info = Info{Image: bounds, Corner: req.Corner}
	if policy.ShouldSkip(bounds.Dx(), bounds.Dy()) {
		return info, true, nil
	}

	_, info, err = e.place(img, req, info)
	if err != nil {
		return Info{}, false, err
	}
	return info, false, nil
}

// decode returns a Handle with a non-empty size. Every error wraps
// ErrDecode; no Handle is left unreleased on failure.
func (e *Engine) decode(data []byte) (Handle, error) {
	img, err := e.renderer.Decode(data)
	if err != nil {
		if !errors.Is(err, ErrDecode) {
			err = fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return nil, err
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		img.Release()
		return nil, fmt.Errorf("%w: invalid image dimensions %dx%d", ErrDecode, bounds.Dx(), bounds.Dy())
	}
	return img, nil
}

// place measures req.Text and resolves its rectangle inside img.
func (e *Engine) place(img Handle, req Request, info Info) (Font, Info, error) {
	f := req.font()
	extent, err := e.renderer.MeasureText(req.Text, f)
	if err != nil {
		return Font{}, Info{}, fmt.Errorf("measure text: %w", err)
	}
	textW, textH := truncate(extent.Width), truncate(extent.Height)

	bounds := img.Bounds()
	origin := Resolve(bounds.Dx(), bounds.Dy(), textW, textH, req.Padding, req.Corner).Add(bounds.Min)
	info.Text = image.Rect(origin.X, origin.Y, origin.X+textW, origin.Y+textH)
	return f, info, nil
}
