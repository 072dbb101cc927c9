// Package vectorindex builds, persists and searches the chunk-level vector
// indexes behind the question-answering path.
package vectorindex

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"legal-doc-assistant/internal/chunker"
	"legal-doc-assistant/internal/embedding"
	"legal-doc-assistant/internal/models"
	"legal-doc-assistant/internal/textstore"
)

// Index is a similarity-searchable set of chunk vectors built from one
// document-id set. It is created or fully replaced, never mutated in place.
type Index struct {
	Key        string
	DocIDs     []string
	ChunkCount int

	db         *chromem.DB
	collection *chromem.Collection
}

// Count returns the number of indexed chunks.
func (i *Index) Count() int {
	return i.collection.Count()
}

// Builder creates indexes on demand and reuses persisted ones.
type Builder struct {
	cache        *Cache
	texts        *textstore.Store
	embedder     embedding.Embedder
	chunkSize    int
	chunkOverlap int
}

func NewBuilder(cache *Cache, texts *textstore.Store, embedder embedding.Embedder, chunkSize, chunkOverlap int) *Builder {
	if chunkSize <= 0 {
		chunkSize = chunker.DefaultChunkSize
	}
	if chunkOverlap <= 0 {
		chunkOverlap = chunker.DefaultChunkOverlap
	}
	return &Builder{
		cache:        cache,
		texts:        texts,
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// GetOrCreate returns the index for the given document-id set, loading a
// persisted one when present and building otherwise. It reports false when
// no index can be produced: no document has extractable text, splitting
// yields nothing, or the embedding capability fails. Those conditions are
// logged and degrade, they never surface as errors.
func (b *Builder) GetOrCreate(ctx context.Context, docIDs []string) (*Index, bool) {
	if len(docIDs) == 0 {
		return nil, false
	}
	key := KeyFor(docIDs)

	if idx, ok := b.cache.Load(key); ok {
		return idx, true
	}

	ids := sortedUnique(docIDs)
	var texts []string
	for _, id := range ids {
		text, err := b.texts.Load(id)
		if err != nil {
			log.Warn().Err(err).Str("doc_id", id).Msg("Skipping document with no extracted text")
			continue
		}
		texts = append(texts, text)
	}
	if len(texts) == 0 {
		log.Warn().Str("key", key).Msg("No document text available, cannot build index")
		return nil, false
	}

	combined := strings.Join(texts, models.DocumentSeparator)
	chunks := chunker.Split(combined, b.chunkSize, b.chunkOverlap)
	if len(chunks) == 0 {
		log.Warn().Str("key", key).Msg("Splitting produced no chunks, cannot build index")
		return nil, false
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(key, nil, nil)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Error creating index collection")
		return nil, false
	}

	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		vec, err := b.embedder.EmbedQuery(ctx, chunk)
		if err != nil {
			log.Error().Err(err).Str("key", key).Int("chunk", i).Msg("Embedding failed, cannot build index")
			return nil, false
		}
		docs = append(docs, chromem.Document{
			ID:        chunkID(i),
			Content:   chunk,
			Embedding: vec,
		})
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Error adding chunks to index")
		return nil, false
	}

	idx := &Index{
		Key:        key,
		DocIDs:     ids,
		ChunkCount: len(chunks),
		db:         db,
		collection: collection,
	}
	if err := b.cache.Save(idx); err != nil {
		// The in-memory index is still usable; the next request rebuilds.
		log.Warn().Err(err).Str("key", key).Msg("Could not persist vector index")
	}
	return idx, true
}

// chunkID preserves insertion order lexicographically.
func chunkID(i int) string {
	return fmt.Sprintf("chunk-%06d", i)
}
