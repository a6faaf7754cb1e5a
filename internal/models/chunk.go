// ABOUTME: Chunk and retrieval result types shared across the pipeline
// ABOUTME: Chunk ids and citations encode the source file and chunk index
package models

import "fmt"

// Chunk is one fixed-size slice of a source document.
type Chunk struct {
	ID     string `json:"id"`
	Text   string `json:"text"`
	Source string `json:"source"`
	Index  int    `json:"index"`
}

// ChunkID builds the stable chunk identifier for a source file and
// chunk position.
func ChunkID(source string, index int) string {
	return fmt.Sprintf("%s::%d", source, index)
}

// Citation returns the chunk's citation label as shown to users.
func (c Chunk) Citation() string {
	return fmt.Sprintf("%s#%d", c.Source, c.Index)
}

// SearchResult is a retrieved chunk with its cosine distance from the
// query vector. Smaller distance means more similar.
type SearchResult struct {
	Chunk    Chunk
	Distance float64
}
