package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/fitpull/fitpull/internal/config"
	"github.com/fitpull/fitpull/internal/model"
)

// Store defines the persistence interface for weekly metric records.
//
// SaveMetrics computes the variance fields against the chronologically
// preceding record before insert, and recomputes the chronological
// successor's variances so derived fields stay consistent regardless of
// insertion order. A record whose date range already exists replaces the
// prior row under the same rules.
type Store interface {
	SaveMetrics(ctx context.Context, m model.WeeklyMetrics) (int64, error)
	ListMetrics(ctx context.Context) ([]model.WeeklyMetrics, error)
	GetMetric(ctx context.Context, id int64) (*model.WeeklyMetrics, error)
	DeleteMetric(ctx context.Context, id int64) error

	Migrate(ctx context.Context) error
	Close() error
}

// Open creates a Store from configuration, selecting the backend by driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(cfg.Path)
	case "postgres":
		return NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

// metricColumns is the canonical column order shared by both backends and
// the export writers.
var metricColumns = []string{
	"id",
	"date_range",
	"date_start",
	"date_end",
	"step_target_days_met",
	"best_day_steps",
	"total_steps",
	"avg_steps_per_day",
	"steps_variance",
	"total_miles",
	"miles_variance",
	"avg_daily_calorie_burn",
	"calorie_burn_variance",
	"total_active_zone_minutes",
	"active_zone_minutes_variance",
	"avg_restful_sleep",
	"restful_sleep_minutes",
	"restful_sleep_variance",
	"avg_hours_with_250_steps",
	"hours_with_250_steps_variance",
	"avg_resting_heart_rate",
	"resting_heart_rate_variance",
	"created_at",
}
