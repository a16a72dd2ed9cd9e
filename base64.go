package watermark

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// ApplyBase64 watermarks a base64-encoded image, optionally given as a data
// URL. When ext is empty it is derived from the data URL media type. The
// output is base64 in the selected codec, or "" for a skipped result.
func ApplyBase64(input, ext string, req Request, policy SkipPolicy) (string, Result, error) {
	data, mediaExt, err := DecodeBase64(input)
	if err != nil {
		return "", Result{}, err
	}
	if ext == "" {
		ext = mediaExt
	}

	res, err := Apply(data, ext, req, policy)
	if err != nil || res.Skipped {
		return "", res, err
	}

	return EncodeBase64(res), res, nil
}

// DecodeBase64 decodes a base64-encoded image, optionally given as a data
// URL. ext is the extension matching the data URL media type, or "" when
// there is none or it is not a supported output codec.
func DecodeBase64(input string) (data []byte, ext string, err error) {
	raw, mediaType := stripDataPrefix(input)

	data, err = base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", fmt.Errorf("decode base64: %w", err)
	}
	return data, extensionForMediaType(mediaType), nil
}

// EncodeBase64 returns the encoded image of res as standard base64.
func EncodeBase64(res Result) string {
	return base64.StdEncoding.EncodeToString(res.Data)
}

// stripDataPrefix removes a "data:<type>;base64," prefix and returns the
// payload with the lowercased media type, if any.
func stripDataPrefix(input string) (payload, mediaType string) {
	lower := strings.ToLower(input)
	if strings.HasPrefix(lower, "data:") {
		if idx := strings.Index(input, ","); idx != -1 {
			header := lower[len("data:"):idx]
			if semi := strings.Index(header, ";"); semi != -1 {
				header = header[:semi]
			}
			return input[idx+1:], header
		}
	}
	return input, ""
}

func extensionForMediaType(mediaType string) string {
	switch mediaType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/bmp", "image/x-ms-bmp":
		return ".bmp"
	}
	return ""
}
