package vectorindex

import (
	"context"
	"fmt"
	"sort"

	"legal-doc-assistant/internal/embedding"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 3

// Retriever finds the chunks most similar to a query in a built index.
type Retriever struct {
	embedder embedding.Embedder
}

func NewRetriever(embedder embedding.Embedder) *Retriever {
	return &Retriever{embedder: embedder}
}

// Search returns up to k chunk texts ranked most-similar-first, ties broken
// by chunk insertion order. A k beyond the chunk count returns everything;
// an empty index returns nothing.
func (r *Retriever) Search(ctx context.Context, idx *Index, query string, k int) ([]string, error) {
	if k <= 0 {
		k = DefaultTopK
	}
	count := idx.Count()
	if count == 0 {
		return nil, nil
	}

	vec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	// Fetch every chunk and re-rank locally: the store orders equal
	// similarities arbitrarily, insertion order must win ties.
	results, err := idx.collection.QueryEmbedding(ctx, vec, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("querying index %s: %w", idx.Key, err)
	}
	sort.Slice(results, func(a, b int) bool {
		if results[a].Similarity != results[b].Similarity {
			return results[a].Similarity > results[b].Similarity
		}
		return results[a].ID < results[b].ID
	})

	if k > len(results) {
		k = len(results)
	}
	chunks := make([]string, 0, k)
	for _, res := range results[:k] {
		chunks = append(chunks, res.Content)
	}
	return chunks, nil
}
