package server

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	watermark "github.com/gcslaoli/text-watermark-go"
)

// uploadSlack is the room left for multipart headers and form fields on top
// of MaxFileSize when bounding the request body.
const uploadSlack = 1 << 20

// SkippedHeader is set on 204 responses for images under the skip threshold.
const SkippedHeader = "X-Watermark-Skipped"

type handler struct {
	config *Config
	engine *watermark.Engine
}

// watermark stamps the uploaded "image" file and streams back the result.
func (h *handler) watermark(c *gin.Context) {
	src, ext, ok := h.openUpload(c)
	if !ok {
		return
	}

	req, policy, err := parseRequest(c)
	if err != nil {
		src.Close()
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wm := watermark.NewWatermarker(src, ext, h.engine)
	wm.SkipSmallImages = policy.SkipSmallImages
	wm.SmallImagePixelThreshold = policy.SmallImagePixelThreshold

	res, err := wm.AddWatermark(req)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if res.Skipped {
		c.Header(SkippedHeader, "true")
		c.Status(http.StatusNoContent)
		return
	}

	c.Header("X-Watermark-Position", res.Info.Text.String())
	c.Data(http.StatusOK, res.Codec.MIMEType(), res.Data)
}

// plan reports the watermark placement for the upload without rendering.
func (h *handler) plan(c *gin.Context) {
	src, _, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer src.Close()

	req, policy, err := parseRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read upload"})
		return
	}

	info, skipped, err := h.engine.Plan(data, req, policy)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"skipped": skipped,
		"width":   info.Image.Dx(),
		"height":  info.Image.Dy(),
		"corner":  info.Corner.String(),
		"x":       info.Text.Min.X,
		"y":       info.Text.Min.Y,
		"text_w":  info.Text.Dx(),
		"text_h":  info.Text.Dy(),
	})
}

// openUpload returns the uploaded image and its lowercased extension hint.
// On failure the response has been written and ok is false.
func (h *handler) openUpload(c *gin.Context) (src io.ReadCloser, ext string, ok bool) {
	if h.config.MaxFileSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxFileSize+uploadSlack)
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("Request body exceeds maximum of %d bytes", h.config.MaxFileSize+uploadSlack),
			})
			return nil, "", false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image uploaded"})
		return nil, "", false
	}

	if h.config.MaxFileSize > 0 && header.Size > h.config.MaxFileSize {
		file.Close()
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("File size exceeds maximum of %d bytes", h.config.MaxFileSize),
		})
		return nil, "", false
	}

	ext = c.PostForm("ext")
	if ext == "" {
		ext = filepath.Ext(header.Filename)
	}
	return file, strings.ToLower(ext), true
}

// parseRequest builds the watermark request from multipart form fields.
func parseRequest(c *gin.Context) (watermark.Request, watermark.SkipPolicy, error) {
	var (
		opts   []watermark.Option
		col    = c.DefaultPostForm("color", "white")
		policy watermark.SkipPolicy
	)

	var fill color.Color
	if strings.EqualFold(col, "auto") {
		opts = append(opts, watermark.WithAutoContrast())
	} else {
		parsed, err := watermark.ParseColor(col)
		if err != nil {
			return watermark.Request{}, policy, err
		}
		fill = parsed
	}

	if v := c.PostForm("corner"); v != "" {
		corner, err := watermark.ParseCorner(v)
		if err != nil {
			return watermark.Request{}, policy, err
		}
		opts = append(opts, watermark.WithCorner(corner))
	}

	if v := c.PostForm("padding"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return watermark.Request{}, policy, fmt.Errorf("%w: padding %q", watermark.ErrInvalidRequest, v)
		}
		opts = append(opts, watermark.WithPadding(n))
	}

	size := watermark.DefaultFontSize
	if v := c.PostForm("font_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return watermark.Request{}, policy, fmt.Errorf("%w: font size %q", watermark.ErrInvalidRequest, v)
		}
		size = n
		opts = append(opts, watermark.WithFontSize(n))
	}

	if family := c.PostForm("font_family"); family != "" {
		style, err := watermark.ParseStyle(c.PostForm("font_style"))
		if err != nil {
			return watermark.Request{}, policy, err
		}
		opts = append(opts, watermark.WithFont(watermark.Font{Family: family, Size: float64(size), Style: style}))
	}

	if v := c.PostForm("skip_small"); v != "" {
		skip, err := strconv.ParseBool(v)
		if err != nil {
			return watermark.Request{}, policy, fmt.Errorf("%w: skip_small %q", watermark.ErrInvalidRequest, v)
		}
		policy.SkipSmallImages = skip
	}

	if v := c.PostForm("small_threshold"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return watermark.Request{}, policy, fmt.Errorf("%w: small_threshold %q", watermark.ErrInvalidRequest, v)
		}
		policy.SmallImagePixelThreshold = n
	}

	req, err := watermark.NewRequest(c.PostForm("text"), fill, opts...)
	return req, policy, err
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, watermark.ErrDecode),
		errors.Is(err, watermark.ErrUnknownCodec),
		errors.Is(err, watermark.ErrInvalidRequest),
		errors.Is(err, watermark.ErrUnknownFont):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
