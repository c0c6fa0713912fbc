package platform

import (
	"path/filepath"
	"runtime"
	"strings"
)

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

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")
}

// TrimRoot strips root from path and returns the remainder without a
// leading separator. The root must end on a path component boundary:
// "/src" is a root of "/src/a.jpg" but not of "/src2/a.jpg".
func TrimRoot(root, path string) (string, bool) {
	root = strings.TrimRight(root, `/\`)
	if !strings.HasPrefix(path, root) {
		return "", false
	}

	rest := path[len(root):]
	if rest == "" {
		return "", true
	}
	if !isSeparator(rest[0]) {
		return "", false
	}
	return strings.TrimLeft(rest, `/\`), true
}

// IsNested reports whether one of the two paths contains the other
func IsNested(a, b string) bool {
	sep := string(filepath.Separator)
	return strings.HasPrefix(a, b+sep) || strings.HasPrefix(b, a+sep)
}

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) && !IsUNCPath(path) {
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
