package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxNameLength = 128

// templateNameRegex matches corpus template names: a letter or digit,
// then letters, digits, dots, dashes, or underscores.
var templateNameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateTemplateName checks a corpus template name. Names double as file
// stems and document keys, so anything that could escape a directory is
// rejected.
func ValidateTemplateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "template name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "template name too long (max %d characters)", maxNameLength)
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "template name cannot contain %q", "..")
	}
	if !templateNameRegex.MatchString(name) {
		return New(ErrCodeInvalidName, "invalid template name: %q", name)
	}
	return nil
}

// ValidatePath validates a relative file path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
