package authz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingChecker struct {
	mu       sync.Mutex
	calls    int
	decision Decision
	err      error
}

func (c *countingChecker) CheckPermission(_ context.Context, _ CheckRequest) (Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++

	return c.decision, c.err
}

func (c *countingChecker) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls
}

func TestCachingChecker_SecondCallHitsCache(t *testing.T) {
	inner := &countingChecker{decision: Decision{Allowed: true, Reason: `granted via group "ops"`}}
	cached := NewCachingChecker(inner, 16, time.Minute)

	req := CheckRequest{UserID: 7, PermissionCode: testPerm}

	first, err := cached.CheckPermission(context.Background(), req)
	require.NoError(t, err)

	second, err := cached.CheckPermission(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.callCount())
}

func TestCachingChecker_DistinctRequestsMissSeparately(t *testing.T) {
	inner := &countingChecker{decision: Decision{Allowed: true}}
	cached := NewCachingChecker(inner, 16, time.Minute)

	requests := []CheckRequest{
		{UserID: 7, PermissionCode: testPerm},
		{UserID: 8, PermissionCode: testPerm},
		{UserID: 7, PermissionCode: "other.permission.read"},
		{UserID: 7, PermissionCode: testPerm, Resource: "order:42"},
		{UserID: 7, PermissionCode: testPerm, Context: map[string]string{"region": "west"}},
	}

	for _, req := range requests {
		_, err := cached.CheckPermission(context.Background(), req)
		require.NoError(t, err)
	}

	assert.Equal(t, len(requests), inner.callCount())
}

func TestCachingChecker_ContextKeyOrderIrrelevant(t *testing.T) {
	// The cache key sorts context keys, so two maps with the same pairs share
	// one entry regardless of construction order.
	a := CheckRequest{UserID: 7, PermissionCode: testPerm,
		Context: map[string]string{"region": "west", "department": "hr"}}
	b := CheckRequest{UserID: 7, PermissionCode: testPerm,
		Context: map[string]string{"department": "hr", "region": "west"}}

	assert.Equal(t, cacheKey(a), cacheKey(b))
}

func TestCachingChecker_AuditFieldsNotPartOfKey(t *testing.T) {
	a := CheckRequest{UserID: 7, PermissionCode: testPerm, IP: "10.0.0.1", Endpoint: "/a"}
	b := CheckRequest{UserID: 7, PermissionCode: testPerm, IP: "10.0.0.2", Endpoint: "/b"}

	assert.Equal(t, cacheKey(a), cacheKey(b))
}

func TestCachingChecker_ErrorsNotCached(t *testing.T) {
	inner := &countingChecker{err: errors.New("backend down")}
	cached := NewCachingChecker(inner, 16, time.Minute)

	req := CheckRequest{UserID: 7, PermissionCode: testPerm}

	_, err := cached.CheckPermission(context.Background(), req)
	require.Error(t, err)

	_, err = cached.CheckPermission(context.Background(), req)
	require.Error(t, err)

	// Both calls reached the inner checker; the failure was never cached.
	assert.Equal(t, 2, inner.callCount())
}

func TestCachingChecker_PurgeForcesRefresh(t *testing.T) {
	inner := &countingChecker{decision: Decision{Allowed: true}}
	cached := NewCachingChecker(inner, 16, time.Minute)

	req := CheckRequest{UserID: 7, PermissionCode: testPerm}

	_, err := cached.CheckPermission(context.Background(), req)
	require.NoError(t, err)

	cached.Purge()

	_, err = cached.CheckPermission(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.callCount())
}
