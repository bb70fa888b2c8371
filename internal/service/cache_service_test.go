package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/staff-attendance/pkg/errors"
)

type stubCacheRepo struct {
	store   map[string][]byte
	deleted []string
	getErr  error
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	if s.getErr != nil {
		return s.getErr
	}
	if s.store == nil {
		return appErrors.ErrCacheMiss
	}
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	s.store = nil
	return nil
}

func TestCachedLoadsOnceThenHits(t *testing.T) {
	cache := NewCacheService(&stubCacheRepo{}, NewMetricsService(), time.Minute, zap.NewNop(), true)
	calls := 0
	load := func(context.Context) ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	first, hit, err := cached(context.Background(), cache, "k", 0, load)
	require.NoError(t, err)
	assert.False(t, hit)
	second, hit, err := cached(context.Background(), cache, "k", 0, load)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCachedDegradesOnCacheFailure(t *testing.T) {
	cache := NewCacheService(&stubCacheRepo{getErr: assert.AnError}, nil, time.Minute, zap.NewNop(), true)
	value, hit, err := cached(context.Background(), cache, "k", 0, func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 7, value)
}

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	repo := &stubCacheRepo{}
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), false)
	require.NoError(t, cache.Set(context.Background(), "k", 1, 0))
	assert.Nil(t, repo.store)

	var nilCache *CacheService
	hit, err := nilCache.Get(context.Background(), "k", new(int))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, nilCache.Invalidate(context.Background(), "x:*"))
}

func TestMakeCacheKey(t *testing.T) {
	assert.Equal(t, "attendance:list:-:a|b", makeCacheKey("attendance", "list", "", "a:b"))
}
