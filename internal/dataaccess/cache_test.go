// internal/dataaccess/cache_test.go
package dataaccess

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campaign-query/internal/common/logger"
)

// ==========================
// Test Helpers
// ==========================

// countingService counts pass-throughs to the backing service.
type countingService struct {
	Service
	calls int
}

func (c *countingService) ReferenceList(ctx context.Context, boundaryType BoundaryType) ([]string, error) {
	c.calls++
	return c.Service.ReferenceList(ctx, boundaryType)
}

func createTestCache(t *testing.T, ttl time.Duration) (*Cached, *countingService, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	inner := &countingService{Service: NewStatic()}
	return NewCached(inner, rdb, ttl, logger.NewTestLogger(t)), inner, mr
}

// ==========================
// Cache Behavior
// ==========================

func TestReferenceList_ColdThenWarm(t *testing.T) {
	cached, inner, _ := createTestCache(t, 0)
	ctx := context.Background()

	first, err := cached.ReferenceList(ctx, BoundaryDistrict)
	require.NoError(t, err)
	assert.NotEmpty(t, first)
	assert.Equal(t, 1, inner.calls)

	// Warm: served from Redis, backing service untouched.
	second, err := cached.ReferenceList(ctx, BoundaryDistrict)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
}

func TestReferenceList_KeysAreIndependentPerBoundaryType(t *testing.T) {
	cached, inner, _ := createTestCache(t, 0)
	ctx := context.Background()

	_, err := cached.ReferenceList(ctx, BoundaryDistrict)
	require.NoError(t, err)
	_, err = cached.ReferenceList(ctx, BoundaryMunicipality)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestReferenceList_TTLExpiryRefetches(t *testing.T) {
	cached, inner, mr := createTestCache(t, 30*time.Second)
	ctx := context.Background()

	_, err := cached.ReferenceList(ctx, BoundaryPrecinct)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	mr.FastForward(31 * time.Second)

	_, err = cached.ReferenceList(ctx, BoundaryPrecinct)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestReferenceList_CorruptEntryRefetches(t *testing.T) {
	cached, inner, mr := createTestCache(t, 0)
	ctx := context.Background()

	require.NoError(t, mr.Set("reference:district", "{not json"))

	out, err := cached.ReferenceList(ctx, BoundaryDistrict)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, 1, inner.calls)
}

// Cache faults degrade to the backing service rather than failing the query.
func TestReferenceList_RedisDownFallsThrough(t *testing.T) {
	cached, inner, mr := createTestCache(t, 0)
	ctx := context.Background()

	mr.Close()

	out, err := cached.ReferenceList(ctx, BoundaryMunicipality)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Equal(t, 1, inner.calls)
}

// Non-cached operations pass straight through to the backing service.
func TestCached_DelegatesOtherOperations(t *testing.T) {
	cached, _, _ := createTestCache(t, 0)

	d, err := cached.Demographics(context.Background(), "Lansing")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Lansing", d.Name)
}
