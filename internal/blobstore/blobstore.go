// Package blobstore stores book cover images. Callers get back an opaque
// path reference that they persist and later hand back to Delete.
package blobstore

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"libraryapi/internal/apperr"
)

const (
	DefaultMaxBytes = 5 << 20 // 5 MiB
	DefaultFolder   = "images/books"
)

var DefaultAllowedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp"}

// Upload is an image received from a caller.
type Upload struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Empty reports whether the upload carries no bytes.
func (u *Upload) Empty() bool {
	return u == nil || len(u.Content) == 0
}

// Rules restricts what Save accepts.
type Rules struct {
	MaxBytes          int64
	AllowedExtensions []string
}

func DefaultRules() Rules {
	return Rules{MaxBytes: DefaultMaxBytes, AllowedExtensions: DefaultAllowedExtensions}
}

// Validate checks the upload against the rules and returns its normalized
// lower-case extension.
func (r Rules) Validate(u *Upload) (string, error) {
	if u.Empty() {
		return "", apperr.Validation("image file is required",
			apperr.FieldError{Field: "cover", Message: "cover image is required"})
	}

	ext := strings.ToLower(filepath.Ext(u.Filename))
	allowed := false
	for _, a := range r.AllowedExtensions {
		if strings.EqualFold(a, ext) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", apperr.Validation("invalid image",
			apperr.FieldError{Field: "cover", Message: fmt.Sprintf("file type %q is not allowed; allowed: %s", ext, strings.Join(r.AllowedExtensions, ", "))})
	}

	if r.MaxBytes > 0 && int64(len(u.Content)) > r.MaxBytes {
		return "", apperr.Validation("invalid image",
			apperr.FieldError{Field: "cover", Message: fmt.Sprintf("file exceeds the %d byte limit", r.MaxBytes)})
	}
	return ext, nil
}

// objectName returns "<folder>/<uuid><ext>" with forward slashes.
func objectName(folder, ext string) string {
	folder = strings.Trim(filepath.ToSlash(folder), "/")
	name := uuid.NewString() + ext
	if folder == "" {
		return name
	}
	return path.Join(folder, name)
}
