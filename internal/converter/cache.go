package converter

import (
	"fmt"
	"os"
	"time"

	"github.com/maypok86/otter"
	"github.com/mvp-joe/project-fieldsheet/internal/parsers"
)

// DefaultCacheCapacity bounds the number of files a ParseCache remembers.
const DefaultCacheCapacity = 10_000

type cacheEntry struct {
	size    int64
	modTime time.Time
	records []parsers.FieldRecord
}

// ParseCache remembers extracted fields per file so reruns skip files whose
// size and modification time are unchanged. Safe for concurrent use.
type ParseCache struct {
	cache otter.Cache[string, cacheEntry]
}

// NewParseCache creates a cache holding up to capacity files.
func NewParseCache(capacity int) (*ParseCache, error) {
	c, err := otter.MustBuilder[string, cacheEntry](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build parse cache: %w", err)
	}
	return &ParseCache{cache: c}, nil
}

// Get returns cached records for path if info still matches the cached file.
func (p *ParseCache) Get(path string, info os.FileInfo) ([]parsers.FieldRecord, bool) {
	entry, ok := p.cache.Get(path)
	if !ok {
		return nil, false
	}
	if entry.size != info.Size() || !entry.modTime.Equal(info.ModTime()) {
		p.cache.Delete(path)
		return nil, false
	}
	return entry.records, true
}

// Put stores records for path as of info.
func (p *ParseCache) Put(path string, info os.FileInfo, records []parsers.FieldRecord) {
	p.cache.Set(path, cacheEntry{
		size:    info.Size(),
		modTime: info.ModTime(),
		records: records,
	})
}

// Len returns the number of cached files.
func (p *ParseCache) Len() int {
	return p.cache.Size()
}

// Close releases the cache's background resources.
func (p *ParseCache) Close() {
	p.cache.Close()
}
