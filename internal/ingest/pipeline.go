// ABOUTME: Ingestion pipeline: discover, load, chunk, embed, and index
// ABOUTME: Rebuilds the corpus collection from a folder of documents
package ingest

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/docchat/docchat/internal/chunker"
	"github.com/docchat/docchat/internal/index"
	"github.com/docchat/docchat/internal/llm"
	"github.com/docchat/docchat/internal/loader"
	"github.com/docchat/docchat/internal/models"
)

// DefaultBatchSize is how many chunk texts go into one embedding batch.
const DefaultBatchSize = 64

// Pipeline rebuilds the vector index from a document folder.
type Pipeline struct {
	embedder     llm.Embedder
	store        index.Index
	chunkSize    int
	chunkOverlap int
	batchSize    int
}

// Options tune the pipeline; zero values fall back to defaults.
type Options struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
}

// New creates an ingestion pipeline over the given embedder and index.
func New(embedder llm.Embedder, store index.Index, opts Options) *Pipeline {
	p := &Pipeline{
		embedder:     embedder,
		store:        store,
		chunkSize:    opts.ChunkSize,
		chunkOverlap: opts.ChunkOverlap,
		batchSize:    opts.BatchSize,
	}
	if p.chunkSize == 0 && p.chunkOverlap == 0 {
		p.chunkSize = chunker.DefaultChunkSize
		p.chunkOverlap = chunker.DefaultOverlap
	}
	if p.batchSize <= 0 {
		p.batchSize = DefaultBatchSize
	}
	return p
}

// Ingest fully replaces the collection with the chunked contents of
// folder and returns the number of chunks indexed. Re-running on the same
// folder yields an identical index. An embedding failure aborts the run;
// batches added before the failure remain in the index, and the next
// successful run repairs the state because ingestion always starts from
// an empty collection.
func (p *Pipeline) Ingest(ctx context.Context, folder string) (int, error) {
	if err := p.store.Reset(ctx); err != nil {
		return 0, fmt.Errorf("resetting index: %w", err)
	}

	files, err := discoverFiles(folder)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		log.Printf("No supported files found in %s. Add .txt/.md/.pdf/.docx and re-run.", folder)
		return 0, nil
	}

	records, err := p.collectChunks(files)
	if err != nil {
		return 0, err
	}

	for start := 0; start < len(records); start += p.batchSize {
		end := start + p.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, rec := range batch {
			texts[i] = rec.Text
		}

		vectors, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embedding batch starting at chunk %d: %w", start, err)
		}
		for i := range batch {
			batch[i].Vector = vectors[i]
		}

		if err := p.store.Add(ctx, batch); err != nil {
			return 0, fmt.Errorf("indexing batch starting at chunk %d: %w", start, err)
		}
	}

	log.Printf("Indexed %d chunks from %d files", len(records), len(files))
	return len(records), nil
}

// collectChunks loads and chunks every file, assigning ids and metadata
// in discovery order then chunk order.
func (p *Pipeline) collectChunks(files []string) ([]index.Record, error) {
	var records []index.Record
	for _, path := range files {
		text, err := loader.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}

		chunks, err := chunker.Chunk(text, p.chunkSize, p.chunkOverlap)
		if err != nil {
			return nil, fmt.Errorf("chunking %s: %w", path, err)
		}

		source := filepath.Base(path)
		for i, chunkText := range chunks {
			records = append(records, index.Record{
				ID:         models.ChunkID(source, i),
				Text:       chunkText,
				Source:     source,
				ChunkIndex: i,
			})
		}
	}
	return records, nil
}

// discoverFiles lists the supported files directly under folder in
// lexicographic order, so repeated runs see the same sequence.
func discoverFiles(folder string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("reading folder %s: %w", folder, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		if loader.Supported(path) {
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}
