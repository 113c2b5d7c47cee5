package openquake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swiss-seismological-service/hazard-threshold-etl/internal/domain"
)

// --- mock for cache tests ---

type countingFetcher struct {
	calls int
	cs    domain.CurveSet
	err   error
}

func (m *countingFetcher) FetchCurveSet(_ context.Context, calcID string) (domain.CurveSet, error) {
	m.calls++
	if m.err != nil {
		return domain.CurveSet{}, m.err
	}
	cs := m.cs
	cs.CalcID = calcID
	return cs, nil
}

func fullCurveSet() domain.CurveSet {
	return domain.CurveSet{
		Probs: []float64{0.9, 0.1},
		IVLs:  [][][]float64{{{1}}, {{2}}},
	}
}

// --- CachedFetcher tests ---

func TestCachedFetcher_CacheHit(t *testing.T) {
	inner := &countingFetcher{cs: fullCurveSet()}
	cached := NewCachedFetcher(inner, 10, testMetrics())

	r1, err := cached.FetchCurveSet(context.Background(), "calc-1")
	require.NoError(t, err)
	assert.Equal(t, "calc-1", r1.CalcID)

	r2, err := cached.FetchCurveSet(context.Background(), "calc-1")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedFetcher_DistinctIDsMiss(t *testing.T) {
	inner := &countingFetcher{cs: fullCurveSet()}
	cached := NewCachedFetcher(inner, 10, testMetrics())

	_, err := cached.FetchCurveSet(context.Background(), "calc-1")
	require.NoError(t, err)
	_, err = cached.FetchCurveSet(context.Background(), "calc-2")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedFetcher_ErrorNotCached(t *testing.T) {
	inner := &countingFetcher{err: errors.New("engine down")}
	cached := NewCachedFetcher(inner, 10, testMetrics())

	_, err := cached.FetchCurveSet(context.Background(), "calc-1")
	require.Error(t, err)
	_, err = cached.FetchCurveSet(context.Background(), "calc-1")
	require.Error(t, err)

	assert.Equal(t, 2, inner.calls, "errors must not be cached")
}

func TestCachedFetcher_EmptyResultNotCached(t *testing.T) {
	inner := &countingFetcher{cs: domain.CurveSet{}}
	cached := NewCachedFetcher(inner, 10, testMetrics())

	_, err := cached.FetchCurveSet(context.Background(), "calc-1")
	require.NoError(t, err)
	_, err = cached.FetchCurveSet(context.Background(), "calc-1")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls, "reference results must not be cached")
}

func TestCachedFetcher_EvictsLRU(t *testing.T) {
	inner := &countingFetcher{cs: fullCurveSet()}
	cached := NewCachedFetcher(inner, 2, testMetrics())

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_, err := cached.FetchCurveSet(ctx, id)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls)

	// "a" was evicted; "b" and "c" are still cached.
	_, err := cached.FetchCurveSet(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls)

	_, err = cached.FetchCurveSet(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 4, inner.calls)
}

func TestLRUCache_MoveToFrontOnGet(t *testing.T) {
	c := newLRUCache(2)
	c.put("a", fullCurveSet())
	c.put("b", fullCurveSet())

	_, ok := c.get("a")
	require.True(t, ok)

	// "b" is now least recently used and should be evicted next.
	c.put("c", fullCurveSet())

	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("b")
	assert.False(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)
	cs := fullCurveSet()
	c.put("a", cs)

	cs.CalcID = "updated"
	c.put("a", cs)

	got, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, "updated", got.CalcID)
	assert.Len(t, c.entries, 1)
}
