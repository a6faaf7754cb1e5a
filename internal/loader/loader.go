// ABOUTME: Extracts plain text from supported document formats
// ABOUTME: Handles .txt/.md directly, .pdf per page, .docx per paragraph
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrUnsupportedFormat reports a file extension the loader cannot handle.
var ErrUnsupportedFormat = fmt.Errorf("unsupported file format")

// Extensions the loader knows how to read.
var supportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".pdf":  true,
	".docx": true,
}

// Supported reports whether the loader can extract text from path.
func Supported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// Load extracts the plain text content of the file at path. The extension
// selects the extraction strategy; unknown extensions fail with
// ErrUnsupportedFormat naming the path.
func Load(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		return loadText(path)
	case ".pdf":
		return loadPDF(path)
	case ".docx":
		return loadDOCX(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// loadText reads a plain text or markdown file. Malformed byte sequences
// are replaced rather than failing the load.
func loadText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), "�"), nil
}
