// ABOUTME: Local durable vector index backed by SQLite
// ABOUTME: Brute-force cosine search with stable insertion-order tie-break
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"

	"github.com/docchat/docchat/internal/index"
	"github.com/docchat/docchat/internal/models"
)

// Store keeps one named collection of chunk vectors in a SQLite database
// under dataDir. It implements index.Index.
type Store struct {
	db         *sql.DB
	collection string
}

const schema = `
CREATE TABLE IF NOT EXISTS collections (
	name TEXT PRIMARY KEY,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS records (
	pos INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	collection TEXT NOT NULL,
	source TEXT NOT NULL,
	chunk_index INTEGER NOT NULL,
	content TEXT NOT NULL,
	vector TEXT NOT NULL,
	UNIQUE(collection, id)
);

CREATE INDEX IF NOT EXISTS idx_records_collection ON records(collection);
`

// Open creates or opens the index database at dataDir/index.db for the
// named collection.
func Open(dataDir, collection string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}

	dbPath := filepath.Join(dataDir, "index.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing index schema: %w", err)
	}

	return &Store{db: db, collection: collection}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Reset drops the collection and all its records, then recreates it
// empty. Safe to call when the collection does not exist yet.
func (s *Store) Reset(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("resetting collection %s: %w", s.collection, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE collection = ?`, s.collection); err != nil {
		return fmt.Errorf("resetting collection %s: %w", s.collection, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO collections (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, s.collection); err != nil {
		return fmt.Errorf("resetting collection %s: %w", s.collection, err)
	}

	return tx.Commit()
}

// Add inserts records into the collection. A record whose id already
// exists overwrites the stored one (and takes a new insertion position).
func (s *Store) Add(ctx context.Context, records []index.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("adding records: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO records (id, collection, source, chunk_index, content, vector)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("adding records: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		vector, err := json.Marshal(rec.Vector)
		if err != nil {
			return fmt.Errorf("encoding vector for %s: %w", rec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.ID, s.collection, rec.Source, rec.ChunkIndex, rec.Text, string(vector)); err != nil {
			return fmt.Errorf("adding record %s: %w", rec.ID, err)
		}
	}

	return tx.Commit()
}

// Query returns up to topK records ascending by cosine distance to the
// query vector. Ties keep insertion order. Querying before the collection
// was ever created fails with index.ErrCollectionNotFound.
func (s *Store) Query(ctx context.Context, vector []float64, topK int) ([]models.SearchResult, error) {
	var name string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM collections WHERE name = ?`, s.collection).Scan(&name)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", index.ErrCollectionNotFound, s.collection)
	}
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.collection, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, chunk_index, content, vector
		FROM records WHERE collection = ? ORDER BY pos`, s.collection)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.collection, err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var (
			chunk      models.Chunk
			vectorJSON string
		)
		if err := rows.Scan(&chunk.ID, &chunk.Source, &chunk.Index, &chunk.Text, &vectorJSON); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}

		var stored []float64
		if err := json.Unmarshal([]byte(vectorJSON), &stored); err != nil {
			return nil, fmt.Errorf("decoding vector for %s: %w", chunk.ID, err)
		}

		results = append(results, models.SearchResult{
			Chunk:    chunk,
			Distance: cosineDistance(vector, stored),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.collection, err)
	}

	// Stable sort keeps insertion order among equal distances.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// cosineDistance is 1 - cosine similarity, ranging 0 (same direction)
// to 2 (opposite). Vectors with mismatched dimensions or zero magnitude
// have no defined angle and sort last with the maximum distance of 2.
func cosineDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
