package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitpull/fitpull/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func week(dateRange, start, end string, steps int, miles float64) model.WeeklyMetrics {
	return model.WeeklyMetrics{
		DateRange:              dateRange,
		DateStart:              start,
		DateEnd:                end,
		TotalSteps:             steps,
		TotalMiles:             miles,
		AvgDailyCalorieBurn:    2000,
		TotalActiveZoneMinutes: 100,
		RestfulSleepMinutes:    400,
		AvgHoursWith250Steps:   7,
		AvgRestingHeartRate:    60,
	}
}

func TestSaveMetricsVariance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveMetrics(ctx, week("Mar. 3 - Mar. 9", "2025-03-03", "2025-03-09", 50000, 20))
	require.NoError(t, err)

	second := week("Mar. 10 - Mar. 16", "2025-03-10", "2025-03-16", 58230, 23.5)
	second.AvgRestingHeartRate = 62
	id, err := s.SaveMetrics(ctx, second)
	require.NoError(t, err)

	got, err := s.GetMetric(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 8230.0, got.StepsVariance)
	assert.Equal(t, 3.5, got.MilesVariance)
	assert.Equal(t, 2.0, got.RestingHeartRateVariance)
}

func TestSaveMetricsFirstRecordZeroVariance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	m := week("Mar. 3 - Mar. 9", "2025-03-03", "2025-03-09", 50000, 20)
	m.StepsVariance = 999 // stale value from a caller must not survive
	id, err := s.SaveMetrics(ctx, m)
	require.NoError(t, err)

	got, err := s.GetMetric(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Zero(t, got.StepsVariance)
	assert.Zero(t, got.MilesVariance)
}

func TestSaveMetricsOutOfOrderRecomputesSuccessor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	laterID, err := s.SaveMetrics(ctx, week("Mar. 10 - Mar. 16", "2025-03-10", "2025-03-16", 58230, 23.5))
	require.NoError(t, err)

	// Backfilling an earlier week turns the existing record into its successor.
	_, err = s.SaveMetrics(ctx, week("Mar. 3 - Mar. 9", "2025-03-03", "2025-03-09", 50000, 20))
	require.NoError(t, err)

	later, err := s.GetMetric(ctx, laterID)
	require.NoError(t, err)
	require.NotNil(t, later)
	assert.Equal(t, 8230.0, later.StepsVariance)
	assert.Equal(t, 3.5, later.MilesVariance)
}

func TestSaveMetricsUpsertReplacesByDateRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SaveMetrics(ctx, week("Mar. 3 - Mar. 9", "2025-03-03", "2025-03-09", 50000, 20))
	require.NoError(t, err)

	second, err := s.SaveMetrics(ctx, week("Mar. 3 - Mar. 9", "2025-03-03", "2025-03-09", 51111, 21))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	all, err := s.ListMetrics(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 51111, all[0].TotalSteps)
}

func TestDeleteMetricRecomputesNeighbor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveMetrics(ctx, week("Mar. 3 - Mar. 9", "2025-03-03", "2025-03-09", 50000, 20))
	require.NoError(t, err)
	midID, err := s.SaveMetrics(ctx, week("Mar. 10 - Mar. 16", "2025-03-10", "2025-03-16", 55000, 22))
	require.NoError(t, err)
	lastID, err := s.SaveMetrics(ctx, week("Mar. 17 - Mar. 23", "2025-03-17", "2025-03-23", 58000, 24))
	require.NoError(t, err)

	require.NoError(t, s.DeleteMetric(ctx, midID))

	all, err := s.ListMetrics(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// The last week now follows the first directly.
	last, err := s.GetMetric(ctx, lastID)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, 8000.0, last.StepsVariance)
	assert.Equal(t, 4.0, last.MilesVariance)
}

func TestDeleteMetricMissing(t *testing.T) {
	s := newTestStore(t)
	err := s.DeleteMetric(context.Background(), 404)
	assert.Error(t, err)
}

func TestGetMetricMissing(t *testing.T) {
	s := newTestStore(t)
	got, err := s.GetMetric(context.Background(), 404)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListMetricsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveMetrics(ctx, week("Mar. 3 - Mar. 9", "2025-03-03", "2025-03-09", 50000, 20))
	require.NoError(t, err)
	_, err = s.SaveMetrics(ctx, week("Mar. 17 - Mar. 23", "2025-03-17", "2025-03-23", 58000, 24))
	require.NoError(t, err)
	_, err = s.SaveMetrics(ctx, week("Mar. 10 - Mar. 16", "2025-03-10", "2025-03-16", 55000, 22))
	require.NoError(t, err)

	all, err := s.ListMetrics(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Mar. 17 - Mar. 23", all[0].DateRange)
	assert.Equal(t, "Mar. 10 - Mar. 16", all[1].DateRange)
	assert.Equal(t, "Mar. 3 - Mar. 9", all[2].DateRange)
}

func TestSaveMetricsMissingDateRange(t *testing.T) {
	s := newTestStore(t)
	_, err := s.SaveMetrics(context.Background(), model.WeeklyMetrics{})
	assert.Error(t, err)
}
