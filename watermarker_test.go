package watermark

import (
	"bytes"
	"errors"
	"image/color"
	"io"
	"testing"
)

type trackingReader struct {
	io.Reader
	closes int
}

func (r *trackingReader) Close() error {
	r.closes++
	return nil
}

func TestWatermarkerClosesSourceOnEveryPath(t *testing.T) {
	req := mustRequest(t, "ACME", color.White)

	cases := []struct {
		name      string
		renderer  *fakeRenderer
		ext       string
		skip      bool
		threshold int
		wantErr   error
		wantSkip  bool
	}{
		{name: "success", renderer: &fakeRenderer{width: 100, height: 100}, ext: ".png"},
		{name: "skip", renderer: &fakeRenderer{width: 10, height: 10}, ext: ".png", skip: true, threshold: 1000, wantSkip: true},
		{name: "decode error", renderer: &fakeRenderer{decodeErr: errors.New("bad")}, ext: ".png", wantErr: ErrDecode},
		{name: "unknown codec", renderer: &fakeRenderer{width: 100, height: 100}, ext: ".tiff", wantErr: ErrUnknownCodec},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := &trackingReader{Reader: bytes.NewReader([]byte("img"))}
			wm := NewWatermarker(src, tc.ext, NewEngine(tc.renderer))
			wm.SkipSmallImages = tc.skip
			wm.SmallImagePixelThreshold = tc.threshold

			res, err := wm.AddWatermark(req)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
			} else if err != nil {
				t.Fatalf("AddWatermark: %v", err)
			}
			if res.Skipped != tc.wantSkip {
				t.Fatalf("skipped = %v, want %v", res.Skipped, tc.wantSkip)
			}
			if src.closes != 1 {
				t.Fatalf("source closed %d times, want 1", src.closes)
			}
			if tc.renderer.decodes != tc.renderer.releases {
				t.Fatalf("decodes=%d releases=%d", tc.renderer.decodes, tc.renderer.releases)
			}

			if err := wm.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}
			if src.closes != 1 {
				t.Fatalf("Close after AddWatermark closed again")
			}
		})
	}
}

func TestWatermarkerSingleUse(t *testing.T) {
	req := mustRequest(t, "ACME", color.White)
	wm := NewWatermarker(bytes.NewReader([]byte("img")), ".png", NewEngine(&fakeRenderer{width: 5, height: 5}))

	if _, err := wm.AddWatermark(req); err != nil {
		t.Fatalf("first AddWatermark: %v", err)
	}
	if _, err := wm.AddWatermark(req); !errors.Is(err, ErrConsumed) {
		t.Fatalf("second AddWatermark: err = %v, want ErrConsumed", err)
	}
}

func TestWatermarkerCloseBeforeUse(t *testing.T) {
	src := &trackingReader{Reader: bytes.NewReader(nil)}
	wm := NewWatermarker(src, ".png", nil)
	if err := wm.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if src.closes != 1 {
		t.Fatalf("closes = %d", src.closes)
	}
	if _, err := wm.AddWatermark(mustRequest(t, "ACME", color.White)); !errors.Is(err, ErrConsumed) {
		t.Fatalf("err = %v, want ErrConsumed", err)
	}
}

func TestWatermarkerNilSource(t *testing.T) {
	wm := NewWatermarker(nil, ".png", nil)
	if _, err := wm.AddWatermark(mustRequest(t, "ACME", color.White)); !errors.Is(err, ErrNoSource) {
		t.Fatalf("err = %v, want ErrNoSource", err)
	}
	if err := wm.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
