package vectorindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
)

// manifest is the sidecar artifact persisted next to the exported
// collection. A load succeeds only when both artifacts are present and
// readable.
type manifest struct {
	Key        string    `json:"key"`
	DocIDs     []string  `json:"doc_ids"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// Cache persists vector indexes under a single directory, addressed by a
// key derived from the document-id set. Nothing is ever evicted.
type Cache struct {
	dir string
}

func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating vector dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// KeyFor derives the index key from a document-id set. The ids are
// deduplicated and sorted first, so any ordering or repetition of the same
// set resolves to the same key.
func KeyFor(docIDs []string) string {
	return strings.Join(sortedUnique(docIDs), "_")
}

func sortedUnique(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (c *Cache) indexPath(key string) string {
	return filepath.Join(c.dir, key+".chromem")
}

func (c *Cache) manifestPath(key string) string {
	return filepath.Join(c.dir, key+".json")
}

// Load restores a previously saved index. Any missing or unreadable
// artifact is treated as a cache miss, never an error: the caller rebuilds.
func (c *Cache) Load(key string) (*Index, bool) {
	data, err := os.ReadFile(c.manifestPath(key))
	if err != nil {
		return nil, false
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Corrupt index manifest, treating as cache miss")
		return nil, false
	}

	db := chromem.NewDB()
	if err := db.ImportFromFile(c.indexPath(key), ""); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Could not import vector index, treating as cache miss")
		return nil, false
	}
	collection := db.GetCollection(key, nil)
	if collection == nil {
		log.Warn().Str("key", key).Msg("Imported index is missing its collection, treating as cache miss")
		return nil, false
	}

	return &Index{
		Key:        key,
		DocIDs:     m.DocIDs,
		ChunkCount: m.ChunkCount,
		db:         db,
		collection: collection,
	}, true
}

// Save persists both index artifacts. Each is written to a temp file and
// renamed into place, so a concurrent reader sees either the old or the new
// complete index, never a partial write.
func (c *Cache) Save(idx *Index) error {
	indexTmp := c.indexPath(idx.Key) + ".tmp"
	if err := idx.db.ExportToFile(indexTmp, false, "", idx.Key); err != nil {
		return fmt.Errorf("exporting index %s: %w", idx.Key, err)
	}
	if err := os.Rename(indexTmp, c.indexPath(idx.Key)); err != nil {
		os.Remove(indexTmp)
		return fmt.Errorf("replacing index %s: %w", idx.Key, err)
	}

	m := manifest{
		Key:        idx.Key,
		DocIDs:     idx.DocIDs,
		ChunkCount: idx.ChunkCount,
		CreatedAt:  time.Now().UTC(),
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encoding manifest %s: %w", idx.Key, err)
	}
	manifestTmp := c.manifestPath(idx.Key) + ".tmp"
	if err := os.WriteFile(manifestTmp, data, 0o644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", idx.Key, err)
	}
	if err := os.Rename(manifestTmp, c.manifestPath(idx.Key)); err != nil {
		os.Remove(manifestTmp)
		return fmt.Errorf("replacing manifest %s: %w", idx.Key, err)
	}
	return nil
}
