package watermark

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrConsumed is returned when a Watermarker is used after its source stream
// has been read or closed.
var ErrConsumed = errors.New("watermarker source already consumed")

// ErrNoSource is returned by AddWatermark when the Watermarker was built
// without a source stream.
var ErrNoSource = errors.New("watermarker has no source")

// Watermarker owns one encoded source image and stamps it once. The source
// is closed, if it is an io.Closer, when AddWatermark returns or when Close
// is called, whichever happens first.
type Watermarker struct {
	SkipSmallImages          bool
	SmallImagePixelThreshold int

	src    io.Reader
	ext    string
	engine *Engine

	mu        sync.Mutex
	consumed  bool
	closeOnce sync.Once
	closeErr  error
}

// NewWatermarker wraps src, whose content is an image with file extension
// ext (for example ".jpg"). A nil engine uses the default Raster renderer.
func NewWatermarker(src io.Reader, ext string, engine *Engine) *Watermarker {
	if engine == nil {
		engine = NewEngine(nil)
	}
	return &Watermarker{src: src, ext: ext, engine: engine}
}

// AddWatermark reads the source and applies req. A skipped Result means the
// image fell under the small-image policy. A nil source yields ErrNoSource.
func (w *Watermarker) AddWatermark(req Request) (Result, error) {
	if w.src == nil {
		return Result{}, ErrNoSource
	}

	w.mu.Lock()
	if w.consumed {
		w.mu.Unlock()
		return Result{}, ErrConsumed
	}
	w.consumed = true
	w.mu.Unlock()
	defer w.Close()

	data, err := io.ReadAll(w.src)
	if err != nil {
		return Result{}, fmt.Errorf("read source: %w", err)
	}

	policy := SkipPolicy{
		SkipSmallImages:          w.SkipSmallImages,
		SmallImagePixelThreshold: w.SmallImagePixelThreshold,
	}
	return w.engine.Apply(data, w.ext, req, policy)
}

// Close releases the source stream. It is safe to call more than once.
func (w *Watermarker) Close() error {
	w.mu.Lock()
	w.consumed = true
	w.mu.Unlock()

	w.closeOnce.Do(func() {
		if c, ok := w.src.(io.Closer); ok {
			w.closeErr = c.Close()
		}
	})
	return w.closeErr
}
