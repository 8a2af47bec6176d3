package imaging

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrInvalidUpload is returned by ValidateUpload when a payload is rejected
// before any processing or storage happens.
var ErrInvalidUpload = errors.New("invalid upload")

// allowedExtensions is the filename fallback for clients that send a generic
// content type (iOS photo pickers in particular).
var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".webp": {},
	".heic": {},
	".heif": {},
}

// ValidateUpload is the pure ingestion gate: it accepts a payload when the
// declared content type is an image media type or the filename extension is
// on the allow-list, and rejects empty payloads outright.
func ValidateUpload(contentType, filename string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: uploaded file is empty", ErrInvalidUpload)
	}
	if strings.HasPrefix(contentType, "image/") {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedExtensions[ext]; ok {
		return nil
	}
	return fmt.Errorf("%w: file %q is not a recognized image", ErrInvalidUpload, filename)
}
