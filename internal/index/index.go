// ABOUTME: Vector index capability interface consumed by the pipeline
// ABOUTME: Backends answer cosine nearest-neighbor queries over chunk records
package index

import (
	"context"
	"fmt"

	"github.com/docchat/docchat/internal/models"
)

// ErrCollectionNotFound reports a query against a collection that does
// not exist. Distinct from an existing-but-empty collection, which
// returns zero results.
var ErrCollectionNotFound = fmt.Errorf("collection not found")

// Record is one indexed chunk: id, text, embedding vector, and the
// metadata needed to resolve citations. Once added, the index owns it.
type Record struct {
	ID         string
	Text       string
	Vector     []float64
	Source     string
	ChunkIndex int
}

// Index is the vector store capability the pipeline depends on.
//
// Reset idempotently drops and recreates the collection configured for
// cosine distance. Add inserts records; adding an id that already exists
// overwrites the previous record in every backend. Query returns up to
// topK records ascending by cosine distance, ties broken by insertion
// order so identical index state and query vector always produce the
// same result; it fails with ErrCollectionNotFound when the collection
// has never been created.
type Index interface {
	Reset(ctx context.Context) error
	Add(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float64, topK int) ([]models.SearchResult, error)
}
