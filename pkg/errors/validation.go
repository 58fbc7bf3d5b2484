package errors

import (
	"strings"
	"unicode"
)

// maxFilenameLength bounds document and output file names.
const maxFilenameLength = 200

// ValidateFilename validates a document base name such as "alle-grafieken".
// The name becomes "<name>.docx" on disk and in Content-Disposition headers,
// so it must be a plain basename.
//
// Validation rules:
//   - Name cannot be empty
//   - Maximum length of 200 characters
//   - No control characters or null bytes
//   - No path separators and no ".." sequences
//   - No quotes (they would break the download header)
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "filename cannot be empty")
	}

	if len(name) > maxFilenameLength {
		return New(ErrCodeInvalidPath, "filename too long (max %d characters)", maxFilenameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "filename contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, `/\"`) {
		return New(ErrCodeInvalidPath, "filename cannot contain path separators or quotes")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "filename cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateElementID validates a container element id on a rendering surface.
// IDs are used in URLs (/charts/{id}.svg), so they are restricted to ASCII
// letters, digits, '-' and '_'.
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "element id cannot be empty")
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return New(ErrCodeInvalidInput, "element id %q contains invalid character %q", id, r)
		}
	}
	return nil
}
