package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

// NormalizeCase maps an entry name to the host's case-normalized form.
// On Windows names are case-insensitive, so the key is the lowercased
// name; elsewhere the name is its own key.
func NormalizeCase(name string) string {
	if CaseInsensitive() {
		return strings.ToLower(name)
	}
	return name
}

// CaseInsensitive reports whether the host filesystem treats names
// case-insensitively
func CaseInsensitive() bool {
	return runtime.GOOS == "windows"
}

// NormalizePath normalizes a path for the current platform
func NormalizePath(path string) string {
	normalized := filepath.Clean(path)

	// On Windows, ensure UNC paths are preserved
	if runtime.GOOS == "windows" {
		if strings.HasPrefix(path, "\\\\") && !strings.HasPrefix(normalized, "\\\\") {
			normalized = "\\\\" + normalized
		}
	}

	return normalized
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
