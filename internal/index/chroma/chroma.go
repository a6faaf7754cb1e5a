// ABOUTME: Chroma REST backend for the vector index capability
// ABOUTME: Collections are cosine-configured and resolved by name per call
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docchat/docchat/internal/index"
	"github.com/docchat/docchat/internal/models"
)

// Store is a minimal REST client to a Chroma server. It manages one
// named collection configured for cosine distance. It implements
// index.Index.
type Store struct {
	url        string
	collection string
	client     *http.Client
}

// Config for the Chroma client.
type Config struct {
	URL        string
	Collection string
	Timeout    time.Duration
}

// New creates a Chroma-backed store. The collection is created lazily by
// Reset; querying before any Reset fails with ErrCollectionNotFound.
func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Reset drops the collection if it exists and recreates it empty with
// cosine distance. A failed delete aborts the reset: creating with
// get_or_create over a surviving collection would hand back the old
// records instead of an empty corpus.
func (s *Store) Reset(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/api/v1/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return fmt.Errorf("resetting collection %s: %w", s.collection, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("resetting collection %s: %w", s.collection, err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// A missing collection is not an error; anything else non-2xx is.
	if resp.StatusCode >= 300 && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("resetting collection %s: delete failed: %s", s.collection, resp.Status)
	}

	body := map[string]any{
		"name":          s.collection,
		"metadata":      map[string]any{"hnsw:space": "cosine"},
		"get_or_create": true,
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections", s.url), body, &created); err != nil {
		return fmt.Errorf("resetting collection %s: %w", s.collection, err)
	}
	return nil
}

// Add inserts records into the collection. Chroma upserts on duplicate
// ids, so re-adding an id overwrites the stored record.
func (s *Store) Add(ctx context.Context, records []index.Record) error {
	if len(records) == 0 {
		return nil
	}

	id, err := s.lookup(ctx)
	if err != nil {
		return err
	}

	ids := make([]string, len(records))
	documents := make([]string, len(records))
	embeddings := make([][]float64, len(records))
	metadatas := make([]map[string]any, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
		documents[i] = rec.Text
		embeddings[i] = rec.Vector
		metadatas[i] = map[string]any{
			"source": rec.Source,
			"chunk":  rec.ChunkIndex,
		}
	}

	body := map[string]any{
		"ids":        ids,
		"documents":  documents,
		"embeddings": embeddings,
		"metadatas":  metadatas,
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/upsert", s.url, id), body, nil); err != nil {
		return fmt.Errorf("adding %d records to %s: %w", len(records), s.collection, err)
	}
	return nil
}

// Query returns up to topK nearest records by cosine distance, ascending.
func (s *Store) Query(ctx context.Context, vector []float64, topK int) ([]models.SearchResult, error) {
	id, err := s.lookup(ctx)
	if err != nil {
		return nil, err
	}

	body := map[string]any{
		"query_embeddings": [][]float64{vector},
		"n_results":        topK,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	var resp struct {
		IDs       [][]string         `json:"ids"`
		Documents [][]string         `json:"documents"`
		Metadatas [][]map[string]any `json:"metadatas"`
		Distances [][]float64        `json:"distances"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/query", s.url, id), body, &resp); err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.collection, err)
	}

	if len(resp.IDs) == 0 {
		return nil, nil
	}

	results := make([]models.SearchResult, 0, len(resp.IDs[0]))
	for i := range resp.IDs[0] {
		chunk := models.Chunk{ID: resp.IDs[0][i]}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			chunk.Text = resp.Documents[0][i]
		}
		var distance float64
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			distance = resp.Distances[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			meta := resp.Metadatas[0][i]
			if v, ok := meta["source"].(string); ok {
				chunk.Source = v
			}
			if v, ok := meta["chunk"].(float64); ok {
				chunk.Index = int(v)
			}
		}
		results = append(results, models.SearchResult{Chunk: chunk, Distance: distance})
	}
	return results, nil
}

// lookup resolves the collection name to its Chroma id. A 404 maps to
// index.ErrCollectionNotFound so callers can tell "no corpus yet" apart
// from an empty result.
func (s *Store) lookup(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return "", fmt.Errorf("looking up collection %s: %w", s.collection, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("looking up collection %s: %w", s.collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: %s", index.ErrCollectionNotFound, s.collection)
	}
	if resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("looking up collection %s: %s", s.collection, resp.Status)
	}

	var col struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&col); err != nil {
		return "", fmt.Errorf("looking up collection %s: %w", s.collection, err)
	}
	if col.ID == "" {
		return "", fmt.Errorf("%w: %s", index.ErrCollectionNotFound, s.collection)
	}
	return col.ID, nil
}

func (s *Store) postJSON(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
