package dedup_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/content-engine/internal/dedup"
	"github.com/jonesrussell/content-engine/internal/domain"
	"github.com/jonesrussell/content-engine/internal/logger"
)

func newTestDedup(t *testing.T) (*dedup.Deduplicator, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "seen_hashes.json")
	return dedup.New(path, logger.NewNop()), path
}

func items(titles ...string) []domain.RawItem {
	out := make([]domain.RawItem, 0, len(titles))
	for _, title := range titles {
		out = append(out, domain.RawItem{Title: title, Content: "body of " + title})
	}
	return out
}

func titles(in []domain.RawItem) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		out = append(out, item.Title)
	}
	return out
}

func TestFilter_IdempotentAgainstExactRepeats(t *testing.T) {
	t.Parallel()

	d, _ := newTestDedup(t)

	batch := items("alpha", "beta", "gamma")
	doubled := append(items("alpha", "beta", "gamma"), batch...)

	got := d.Filter(doubled)

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, titles(got))
}

func TestFilter_SameTitleDifferentBodyKeepsFirst(t *testing.T) {
	t.Parallel()

	d, _ := newTestDedup(t)

	batch := []domain.RawItem{
		{Title: "Same Headline", Content: "first story"},
		{Title: "Same Headline", Content: "second, different story"},
		{Title: "Other Headline", Content: "unrelated"},
	}

	got := d.Filter(batch)

	require.Len(t, got, 2)
	assert.Equal(t, "first story", got[0].Content)
	assert.Equal(t, "Other Headline", got[1].Title)
}

func TestFilter_NormalizationCollapsesCaseAndWhitespaceVariants(t *testing.T) {
	t.Parallel()

	d, _ := newTestDedup(t)

	got := d.Filter(items("A", "a "))

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].Title)
}

func TestFilter_SecondRunDropsEverything(t *testing.T) {
	t.Parallel()

	d, _ := newTestDedup(t)

	first := d.Filter(items("one", "two"))
	require.Len(t, first, 2)

	second := d.Filter(items("one", "two"))
	assert.Empty(t, second)
}

func TestIsDuplicateAndMarkSeen(t *testing.T) {
	t.Parallel()

	d, _ := newTestDedup(t)

	assert.False(t, d.IsDuplicate("headline"))
	d.MarkSeen("headline")
	assert.True(t, d.IsDuplicate("headline"))
	assert.True(t, d.IsDuplicate("  HEADLINE  "))
}

func TestSaveCache_RoundTrip(t *testing.T) {
	t.Parallel()

	d, path := newTestDedup(t)
	d.MarkSeen("persisted title")
	d.SaveCache()

	data, readErr := os.ReadFile(path)
	require.NoError(t, readErr)

	var fingerprints []string
	require.NoError(t, json.Unmarshal(data, &fingerprints))
	assert.Equal(t, []string{domain.ContentHash("persisted title")}, fingerprints)

	// A fresh instance must see the persisted fingerprint.
	reloaded := dedup.New(path, logger.NewNop())
	assert.True(t, reloaded.IsDuplicate("persisted title"))
}

func TestNew_CorruptCacheDegradesToEmptySet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seen_hashes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	d := dedup.New(path, logger.NewNop())

	assert.Equal(t, 0, d.Size())
	assert.False(t, d.IsDuplicate("anything"))
}

func TestFilter_ConcurrentCallersNeverShareATitle(t *testing.T) {
	t.Parallel()

	d, _ := newTestDedup(t)

	const workers = 8
	results := make([][]domain.RawItem, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = d.Filter(items("contested title"))
		}(i)
	}
	wg.Wait()

	survived := 0
	for _, res := range results {
		survived += len(res)
	}
	assert.Equal(t, 1, survived, "exactly one concurrent batch may claim the title")
}
