package cache

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/meghashyamc/askthat/logger"
)

// Key identifies a cached answer. Two queries that normalize identically over
// the same corpus version share an entry.
type Key struct {
	Query         string
	CorpusVersion string
}

type Source struct {
	Filename string `json:"filename"`
	Filetype string `json:"filetype"`
}

type Entry struct {
	Answer            string
	Sources           []Source
	DocumentsSelected int
}

type Stats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Size     int    `json:"size"`
	Capacity int    `json:"capacity"`
}

// Cache is a bounded LRU of prior answers. Get promotes the hit; Set evicts
// the least-recently-used entry at capacity. The mutex keeps the hit/miss
// counters consistent with the underlying LRU bookkeeping.
type Cache struct {
	logger   logger.Logger
	capacity int

	mu     sync.Mutex
	lru    *lru.Cache[Key, Entry]
	hits   uint64
	misses uint64
}

func New(logger logger.Logger, capacity int) (*Cache, error) {
	backing, err := lru.New[Key, Entry](capacity)
	if err != nil {
		logger.Error("failed to create response cache", "err", err.Error())
		return nil, err
	}

	return &Cache{
		logger:   logger,
		capacity: capacity,
		lru:      backing,
	}, nil
}

// NormalizeQuery lowercases, trims and collapses internal whitespace so that
// queries differing only by casing or spacing are cache-equivalent.
func NormalizeQuery(query string) string {
	return strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func (c *Cache) Get(query string, corpusVersion string) (Entry, bool) {
	key := Key{Query: NormalizeQuery(query), CorpusVersion: corpusVersion}

	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.lru.Get(key)
	if ok {
		c.hits++
	} else {
		c.misses++
	}

	return entry, ok
}

func (c *Cache) Set(query string, corpusVersion string, entry Entry) {
	key := Key{Query: NormalizeQuery(query), CorpusVersion: corpusVersion}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Add(key, entry)
}

// Clear empties the cache. Called whenever the corpus changes, since a stale
// answer is strictly worse than a miss.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lru.Purge()
	c.logger.Info("response cache cleared")
}

func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:     c.hits,
		Misses:   c.misses,
		Size:     c.lru.Len(),
		Capacity: c.capacity,
	}
}
