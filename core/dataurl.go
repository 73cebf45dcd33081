package core

import (
	"encoding/base64"
	"strings"
)

// pngDataURLPrefix labels every reloaded header image, whatever format was saved.
const pngDataURLPrefix = "data:image/png;base64,"

// ParseDataURL returns the bytes of a "<prefix>,<base64 payload>" string.
// The prefix, and the MIME type it names, is dropped.
func ParseDataURL(dataURL string) ([]byte, error) {
	_, payload, found := strings.Cut(dataURL, ",")
	if !found {
		return nil, FormatError("Invalid image data format")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, DecodeError("Failed to decode image data", err)
	}
	return data, nil
}

// EncodePNGDataURL wraps raw image bytes in a data URL labelled image/png.
func EncodePNGDataURL(data []byte) string {
	return pngDataURLPrefix + base64.StdEncoding.EncodeToString(data)
}
