package pipeline

import (
	"path/filepath"
	"strings"

	"invox/internal/domain"
)

// ValidateUpload checks the declared file type and size before any upstream
// call is made. It has no side effects. Oversized files are rejected as too
// large regardless of their type.
func ValidateUpload(file *domain.UploadedFile, maxBytes int64) error {
	if maxBytes > 0 && int64(len(file.Data)) > maxBytes {
		return domain.ErrFileTooLarge
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return domain.ErrUnsupportedFileType
	}

	declared := file.ContentType
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = declared[:i]
	}
	if _, ok := domain.AllowedContentTypes[strings.TrimSpace(declared)]; !ok {
		return domain.ErrUnsupportedFileType
	}
	return nil
}
