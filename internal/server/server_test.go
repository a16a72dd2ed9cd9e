package server

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	watermark "github.com/gcslaoli/text-watermark-go"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	return buf.Bytes()
}

func uploadRequest(t *testing.T, path, filename string, data []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestRouter() *gin.Engine {
	return NewRouter(&Config{Port: DefaultPort, MaxFileSize: DefaultMaxFileSize}, watermark.NewEngine(nil))
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Fatalf("body = %v", body)
	}
}

func TestWatermarkPNG(t *testing.T) {
	req := uploadRequest(t, "/api/watermark", "photo.PNG", pngFixture(t, 200, 100), map[string]string{
		"text":   "ACME",
		"color":  "#ffffff",
		"corner": "top-left",
	})
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %q", ct)
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 200, 100) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
}

func TestWatermarkSkipped(t *testing.T) {
	req := uploadRequest(t, "/api/watermark", "tiny.png", pngFixture(t, 10, 10), map[string]string{
		"text":            "ACME",
		"skip_small":      "true",
		"small_threshold": "1000",
	})
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Header().Get(SkippedHeader) != "true" {
		t.Fatalf("missing %s header", SkippedHeader)
	}
	if w.Body.Len() != 0 {
		t.Fatalf("skipped response has %d bytes", w.Body.Len())
	}
}

func TestWatermarkBadRequests(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		data     []byte
		fields   map[string]string
	}{
		{"not an image", "x.png", []byte("hello"), map[string]string{"text": "ACME"}},
		{"unknown extension", "x.gif", nil, map[string]string{"text": "ACME"}},
		{"missing text", "x.png", nil, map[string]string{}},
		{"bad corner", "x.png", nil, map[string]string{"text": "ACME", "corner": "center"}},
		{"bad color", "x.png", nil, map[string]string{"text": "ACME", "color": "#12"}},
		{"unknown font", "x.png", nil, map[string]string{"text": "ACME", "font_family": "comic"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.data
			if data == nil {
				data = pngFixture(t, 50, 50)
			}
			w := httptest.NewRecorder()
			newTestRouter().ServeHTTP(w, uploadRequest(t, "/api/watermark", tc.filename, data, tc.fields))
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestWatermarkTooLarge(t *testing.T) {
	r := NewRouter(&Config{MaxFileSize: 16}, watermark.NewEngine(nil))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/watermark", "x.png", pngFixture(t, 50, 50), map[string]string{"text": "ACME"}))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestWatermarkBodyBounded(t *testing.T) {
	r := NewRouter(&Config{MaxFileSize: 16}, watermark.NewEngine(nil))
	big := bytes.Repeat([]byte{0xff}, uploadSlack+1024)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, uploadRequest(t, "/api/watermark", "x.png", big, map[string]string{"text": "ACME"}))

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Request body exceeds") {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestPlan(t *testing.T) {
	req := uploadRequest(t, "/api/watermark/plan", "x.png", pngFixture(t, 300, 200), map[string]string{
		"text":        "ACME",
		"font_family": "basic",
		"padding":     "5",
	})
	w := httptest.NewRecorder()
	newTestRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var body struct {
		Skipped bool   `json:"skipped"`
		Corner  string `json:"corner"`
		X       int    `json:"x"`
		Y       int    `json:"y"`
		TextW   int    `json:"text_w"`
		TextH   int    `json:"text_h"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// basic face: 7px advance, 13px line height
	if body.Skipped || body.Corner != "bottom-right" || body.TextW != 28 || body.TextH != 13 {
		t.Fatalf("body = %+v", body)
	}
	if body.X != 300-28-5 || body.Y != 200-13-5 {
		t.Fatalf("origin = (%d,%d)", body.X, body.Y)
	}
}
