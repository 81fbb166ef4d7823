package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Delete(ctx context.Context, keys ...string) error {
	return errors.New("redis down")
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(newMemoryCacheRepo(), metrics, 0, nil, true)

	var dest map[string]int
	hit, err := svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(context.Background(), "k", map[string]int{"a": 1}, 0))
	hit, err = svc.Get(context.Background(), "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, dest["a"])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheMisses))
	assert.Equal(t, 0.5, testutil.ToFloat64(metrics.cacheHitRatio))
}

func TestCacheServiceDisabled(t *testing.T) {
	svc := NewCacheService(failingCacheRepo{}, nil, 0, nil, false)
	assert.False(t, svc.Enabled())

	hit, err := svc.Get(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.NoError(t, svc.Invalidate(context.Background(), "k"))

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
}

func TestCacheServiceSurfacesRepositoryErrors(t *testing.T) {
	svc := NewCacheService(failingCacheRepo{}, nil, 0, nil, true)

	hit, err := svc.Get(context.Background(), "k", &struct{}{})
	assert.Error(t, err)
	assert.False(t, hit)
	assert.Error(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Error(t, svc.Invalidate(context.Background(), "k"))
}

func TestMetricsServiceDistributionCounters(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveDistribution(DistributionModeApply, time.Millisecond, nil)
	metrics.ObserveDistribution(DistributionModeApply, time.Millisecond, errors.New("x"))
	metrics.RecordGeneratedMissions(3, 2)
	metrics.RecordPersistedMissions(2, 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.distributionRuns.WithLabelValues(DistributionModeApply, "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.missionsGenerated))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.distributionWarnings))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.missionsPersisted.WithLabelValues("skipped")))

	var nilMetrics *MetricsService
	nilMetrics.ObserveDistribution(DistributionModePreview, time.Second, nil)
	nilMetrics.RecordPersistedMissions(1, 1)
}
