package cvbuilder

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// MaxPhotoSize bounds photo files read by LoadPhoto.
const MaxPhotoSize = 2 << 20

// LoadPhoto reads an image file and returns it as a data URI suitable for
// Document.Photo. Only PNG, JPEG, GIF and WebP are accepted, detected from
// the file content rather than its name.
func LoadPhoto(path string) (string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-selected photo
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhoto, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxPhotoSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrInvalidPhoto, path, err)
	}
	if len(data) > MaxPhotoSize {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidPhoto, path, MaxPhotoSize)
	}
	return PhotoDataURI(data)
}

// PhotoDataURI encodes image bytes as a base64 data URI.
func PhotoDataURI(data []byte) (string, error) {
	mime := http.DetectContentType(data)
	switch mime {
	case "image/png", "image/jpeg", "image/gif", "image/webp":
	default:
		return "", fmt.Errorf("%w: unsupported type %s", ErrInvalidPhoto, strings.TrimSuffix(mime, "; charset=utf-8"))
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
