// ABOUTME: Splits cleaned document text into bounded, overlapping windows
// ABOUTME: Deterministic fixed-size chunking with configurable overlap
package chunker

import (
	"fmt"
	"regexp"
	"strings"
)

// Default window parameters, in characters.
const (
	DefaultChunkSize = 900
	DefaultOverlap   = 150
)

// ErrInvalidParams reports chunk parameters that would loop or regress.
var ErrInvalidParams = fmt.Errorf("invalid chunk parameters")

var multiNewline = regexp.MustCompile(`\n{3,}`)

// Clean normalizes raw document text before chunking: strips null bytes,
// collapses runs of 3+ newlines to exactly 2, and trims surrounding
// whitespace.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\x00", " ")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// Chunk splits text into windows of up to size characters, each window
// starting overlap characters before the end of the previous one. Empty
// input after cleaning yields an empty slice. Identical input and
// parameters always produce the identical sequence.
func Chunk(text string, size, overlap int) ([]string, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ErrInvalidParams, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must satisfy 0 <= overlap < size %d", ErrInvalidParams, overlap, size)
	}

	runes := []rune(Clean(text))
	if len(runes) == 0 {
		return []string{}, nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - overlap
	}
	return chunks, nil
}

// ChunkDefault splits text with the default window parameters.
func ChunkDefault(text string) ([]string, error) {
	return Chunk(text, DefaultChunkSize, DefaultOverlap)
}
