package vectorindex

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/philippgille/chromem-go"
	"github.com/stretchr/testify/require"

	"legal-doc-assistant/internal/textstore"
)

// countingEmbedder produces a deterministic byte-histogram vector and
// records how often it was invoked.
type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	e.calls++
	vec := make([]float32, 8)
	for i := 0; i < len(text); i++ {
		vec[int(text[i])%8]++
	}
	return vec, nil
}

// keywordEmbedder maps texts onto fixed axes so similarity ordering is
// known in advance.
type keywordEmbedder struct{}

func (keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	switch {
	case strings.Contains(text, "payment"):
		return []float32{1, 0, 0}, nil
	case strings.Contains(text, "termination"):
		return []float32{0, 1, 0}, nil
	default:
		return []float32{0, 0, 1}, nil
	}
}

func TestKeyForIgnoresOrderAndDuplicates(t *testing.T) {
	key := KeyFor([]string{"b", "a", "c"})
	require.Equal(t, key, KeyFor([]string{"c", "b", "a"}))
	require.Equal(t, key, KeyFor([]string{"a", "a", "b", "c", "c"}))
}

func TestKeyForDistinguishesSets(t *testing.T) {
	require.NotEqual(t, KeyFor([]string{"a", "b"}), KeyFor([]string{"a", "c"}))
	require.NotEqual(t, KeyFor([]string{"a"}), KeyFor([]string{"a", "b"}))
}

func contractText(subject string) string {
	var b strings.Builder
	for b.Len() < 1500 {
		b.WriteString("The parties agree that " + subject + " obligations apply as set out in this section. ")
	}
	return b.String()
}

func TestGetOrCreateBuildsAndPersists(t *testing.T) {
	ctx := context.Background()

	texts, err := textstore.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, texts.Save("doc-a", contractText("payment")))
	require.NoError(t, texts.Save("doc-b", contractText("termination")))

	vectorDir := t.TempDir()
	cache, err := NewCache(vectorDir)
	require.NoError(t, err)

	embedder := &countingEmbedder{}
	builder := NewBuilder(cache, texts, embedder, 1000, 200)

	idx, ok := builder.GetOrCreate(ctx, []string{"doc-b", "doc-a", "doc-b"})
	require.True(t, ok)
	require.Greater(t, idx.ChunkCount, 1)
	require.Equal(t, []string{"doc-a", "doc-b"}, idx.DocIDs)

	retriever := NewRetriever(embedder)
	fresh, err := retriever.Search(ctx, idx, "what are the payment obligations?", 3)
	require.NoError(t, err)
	require.Len(t, fresh, 3)

	// A rebuilt cache over the same directory must serve the persisted
	// index without embedding a single chunk.
	reloadEmbedder := &countingEmbedder{}
	reloaded, ok := NewBuilder(cache, texts, reloadEmbedder, 1000, 200).
		GetOrCreate(ctx, []string{"doc-a", "doc-b"})
	require.True(t, ok)
	require.Zero(t, reloadEmbedder.calls)
	require.Equal(t, idx.ChunkCount, reloaded.ChunkCount)

	loaded, err := NewRetriever(reloadEmbedder).
		Search(ctx, reloaded, "what are the payment obligations?", 3)
	require.NoError(t, err)
	require.Equal(t, fresh, loaded)
}

func TestGetOrCreateSkipsMissingDocuments(t *testing.T) {
	ctx := context.Background()

	texts, err := textstore.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, texts.Save("doc-a", contractText("payment")))

	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	builder := NewBuilder(cache, texts, &countingEmbedder{}, 1000, 200)

	idx, ok := builder.GetOrCreate(ctx, []string{"doc-a", "missing"})
	require.True(t, ok)
	// The key still reflects the whole requested set, present or not.
	require.Equal(t, []string{"doc-a", "missing"}, idx.DocIDs)
	require.Greater(t, idx.ChunkCount, 0)
}

func TestGetOrCreateAbsentWhenNoText(t *testing.T) {
	texts, err := textstore.NewStore(t.TempDir())
	require.NoError(t, err)
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	builder := NewBuilder(cache, texts, &countingEmbedder{}, 1000, 200)

	idx, ok := builder.GetOrCreate(context.Background(), []string{"ghost"})
	require.False(t, ok)
	require.Nil(t, idx)
}

func TestLoadMissingArtifactIsCacheMiss(t *testing.T) {
	ctx := context.Background()

	texts, err := textstore.NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, texts.Save("doc-a", contractText("payment")))

	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	builder := NewBuilder(cache, texts, &countingEmbedder{}, 1000, 200)

	idx, ok := builder.GetOrCreate(ctx, []string{"doc-a"})
	require.True(t, ok)

	require.NoError(t, os.Remove(cache.indexPath(idx.Key)))
	_, ok = cache.Load(idx.Key)
	require.False(t, ok)

	// Rebuild, then corrupt the manifest instead.
	_, ok = builder.GetOrCreate(ctx, []string{"doc-a"})
	require.True(t, ok)
	require.NoError(t, os.WriteFile(cache.manifestPath(idx.Key), []byte("{not json"), 0o644))
	_, ok = cache.Load(idx.Key)
	require.False(t, ok)
}

func TestSearchRanksMostSimilarFirst(t *testing.T) {
	ctx := context.Background()
	embedder := keywordEmbedder{}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection("ranking", nil, nil)
	require.NoError(t, err)

	chunks := []string{
		"Either party may exercise the termination rights described here.",
		"All payment amounts are due within thirty days of invoice.",
	}
	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		vec, err := embedder.EmbedQuery(ctx, chunk)
		require.NoError(t, err)
		docs[i] = chromem.Document{ID: chunkID(i), Content: chunk, Embedding: vec}
	}
	require.NoError(t, collection.AddDocuments(ctx, docs, 1))

	idx := &Index{Key: "ranking", ChunkCount: len(chunks), db: db, collection: collection}

	// k exceeds the chunk count: everything comes back, best match first.
	got, err := NewRetriever(embedder).Search(ctx, idx, "when is payment due?", 3)
	require.NoError(t, err)
	require.Equal(t, []string{chunks[1], chunks[0]}, got)
}
