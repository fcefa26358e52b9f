// Package dedup filters previously seen articles out of scraped batches.
//
// Fingerprints are content hashes of normalized titles, kept in memory
// and flushed to a flat JSON cache file on shutdown. A crash between
// flushes loses only the fingerprints added since the last save; the
// next run simply re-filters, and the downstream ingest endpoint is
// idempotent.
package dedup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/logger"
)

// maxFingerprints caps the cache size; the oldest entries are silently
// dropped once it is exceeded.
const maxFingerprints = 50000

// cacheFileMode is the permission used for the cache file.
const cacheFileMode = 0o644

// Deduplicator is an in-memory, file-backed fingerprint set.
// It is safe for concurrent use: manual triggers can overlap scheduled
// runs, and both must not claim the same title as new.
type Deduplicator struct {
	mu        sync.Mutex
	seen      map[string]struct{}
	order     []string
	cachePath string
	logger    logger.Logger
}

// New creates a Deduplicator and loads the fingerprint cache from
// cachePath. A missing or corrupt cache degrades to an empty set; it
// never fails construction.
func New(cachePath string, log logger.Logger) *Deduplicator {
	d := &Deduplicator{
		seen:      make(map[string]struct{}),
		order:     make([]string, 0, maxFingerprints),
		cachePath: cachePath,
		logger:    log,
	}
	d.loadCache()
	return d
}

// IsDuplicate reports whether the title's fingerprint has been seen.
func (d *Deduplicator) IsDuplicate(title string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, ok := d.seen[domain.ContentHash(title)]
	return ok
}

// MarkSeen records the title's fingerprint.
func (d *Deduplicator) MarkSeen(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.markSeenLocked(domain.ContentHash(title))
}

// Filter returns only the items whose titles have not been seen before,
// in input order, marking each returned item as seen. Two items with
// the same normalized title within one batch therefore deduplicate
// against each other: the second is dropped.
func (d *Deduplicator) Filter(items []domain.RawItem) []domain.RawItem {
	d.mu.Lock()
	defer d.mu.Unlock()

	unique := make([]domain.RawItem, 0, len(items))
	for _, item := range items {
		fp := domain.ContentHash(item.Title)
		if _, ok := d.seen[fp]; ok {
			continue
		}
		d.markSeenLocked(fp)
		unique = append(unique, item)
	}

	if removed := len(items) - len(unique); removed > 0 {
		d.logger.Info("Deduplication removed items",
			logger.Int("removed", removed),
			logger.Int("total", len(items)),
		)
	}

	return unique
}

// Size returns the number of fingerprints currently held.
func (d *Deduplicator) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.seen)
}

// SaveCache writes the fingerprint set to the cache file, overwriting
// any previous contents. Write failures are logged and swallowed.
func (d *Deduplicator) SaveCache() {
	d.mu.Lock()
	fingerprints := make([]string, len(d.order))
	copy(fingerprints, d.order)
	path := d.cachePath
	d.mu.Unlock()

	if mkdirErr := os.MkdirAll(filepath.Dir(path), 0o755); mkdirErr != nil {
		d.logger.Warn("Could not create dedup cache directory", logger.Error(mkdirErr))
		return
	}

	data, marshalErr := json.Marshal(fingerprints)
	if marshalErr != nil {
		d.logger.Warn("Could not encode dedup cache", logger.Error(marshalErr))
		return
	}

	if writeErr := os.WriteFile(path, data, cacheFileMode); writeErr != nil {
		d.logger.Warn("Could not save dedup cache", logger.Error(writeErr))
		return
	}

	d.logger.Debug("Saved dedup cache", logger.Int("fingerprints", len(fingerprints)))
}

// markSeenLocked inserts a fingerprint and evicts the oldest entries
// past the cap. Caller must hold d.mu.
func (d *Deduplicator) markSeenLocked(fp string) {
	if _, ok := d.seen[fp]; ok {
		return
	}
	d.seen[fp] = struct{}{}
	d.order = append(d.order, fp)

	for len(d.order) > maxFingerprints {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.seen, oldest)
	}
}

// loadCache populates the set from the cache file. Read or parse
// failures are logged and leave the set empty.
func (d *Deduplicator) loadCache() {
	data, readErr := os.ReadFile(d.cachePath)
	if readErr != nil {
		if !os.IsNotExist(readErr) {
			d.logger.Warn("Could not read dedup cache", logger.Error(readErr))
		}
		return
	}

	var fingerprints []string
	if unmarshalErr := json.Unmarshal(data, &fingerprints); unmarshalErr != nil {
		d.logger.Warn("Could not parse dedup cache", logger.Error(unmarshalErr))
		return
	}

	for _, fp := range fingerprints {
		d.markSeenLocked(fp)
	}

	d.logger.Info("Loaded dedup cache", logger.Int("fingerprints", len(d.seen)))
}
