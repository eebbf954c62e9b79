package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/speakeasy-api/csdl/csdl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocuments_GetOrLoad_Success(t *testing.T) {
	t.Parallel()

	d := NewDocuments()
	calls := 0
	load := func() (*Entry, error) {
		calls++
		return &Entry{ID: "sales.xml", Schemas: []*csdl.Schema{csdl.NewSchema("Sales")}}, nil
	}

	entry, hit, err := d.GetOrLoad("sales.xml", load)
	require.NoError(t, err)
	assert.False(t, hit, "should miss on first load")
	assert.Equal(t, []string{"Sales"}, entry.Namespaces())

	again, hit, err := d.GetOrLoad("sales.xml", load)
	require.NoError(t, err)
	assert.True(t, hit, "should hit on second load")
	assert.Same(t, entry, again)
	assert.Equal(t, 1, calls)

	assert.Equal(t, DocumentCacheStats{Hits: 1, Misses: 1, Size: 1}, d.GetStats())
}

func TestDocuments_GetOrLoad_ErrorNotCached(t *testing.T) {
	t.Parallel()

	d := NewDocuments()
	boom := errors.New("boom")

	_, _, err := d.GetOrLoad("bad.xml", func() (*Entry, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	_, ok := d.Get("bad.xml")
	assert.False(t, ok, "should not cache failures")

	entry, hit, err := d.GetOrLoad("bad.xml", func() (*Entry, error) { return &Entry{ID: "bad.xml"}, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, entry)
}

func TestDocuments_GetOrLoad_ConcurrentLoadsOnce(t *testing.T) {
	t.Parallel()

	d := NewDocuments()
	var calls atomic.Int64
	release := make(chan struct{})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := d.GetOrLoad("shared.xml", func() (*Entry, error) {
				calls.Add(1)
				<-release
				return &Entry{ID: "shared.xml"}, nil
			})
			assert.NoError(t, err)
		}()
	}

	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), calls.Load(), "should load the document once")
	stats := d.GetStats()
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(15), stats.Hits)
}

func TestDocuments_Clear_Success(t *testing.T) {
	t.Parallel()

	d := NewDocuments()
	_, _, err := d.GetOrLoad("a.xml", func() (*Entry, error) { return &Entry{ID: "a.xml"}, nil })
	require.NoError(t, err)

	d.Clear()

	assert.Equal(t, DocumentCacheStats{}, d.GetStats())
}
