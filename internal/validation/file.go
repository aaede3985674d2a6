package validation

import (
	"fmt"
	"net/http"
)

// FileConstraints defines validation rules for uploaded content
type FileConstraints struct {
	AllowedMimeTypes map[string]bool
	MaxSize          int64
}

// ImageConstraints accepts the photo formats browsers produce for sneaker uploads
var ImageConstraints = FileConstraints{
	AllowedMimeTypes: map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/webp": true,
	},
	MaxSize: 5 << 20, // 5MB
}

// WithMaxSize returns a copy of the constraints with a different size limit.
func (c FileConstraints) WithMaxSize(size int64) FileConstraints {
	c.MaxSize = size
	return c
}

// ValidateContent checks raw upload bytes against the constraints and returns
// the content type detected from the magic number. The client supplied
// Content-Type is never trusted.
func ValidateContent(data []byte, constraints FileConstraints) (string, error) {
	if len(data) == 0 {
		return "", &Error{Field: "file", Message: "file is empty"}
	}

	if int64(len(data)) > constraints.MaxSize {
		maxMB := constraints.MaxSize / (1 << 20)
		return "", &Error{Field: "file", Message: fmt.Sprintf("file too large: maximum size is %d MB", maxMB)}
	}

	sniff := data
	if len(sniff) > 512 {
		sniff = sniff[:512]
	}
	detectedType := http.DetectContentType(sniff)

	if !constraints.AllowedMimeTypes[detectedType] {
		return "", &Error{Field: "file", Message: fmt.Sprintf("invalid file type (detected: %s)", detectedType)}
	}

	return detectedType, nil
}
