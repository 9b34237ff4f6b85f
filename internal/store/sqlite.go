package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/fitpull/fitpull/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS weekly_metrics (
	id                            INTEGER PRIMARY KEY AUTOINCREMENT,
	date_range                    TEXT NOT NULL UNIQUE,
	date_start                    TEXT NOT NULL DEFAULT '',
	date_end                      TEXT NOT NULL DEFAULT '',
	step_target_days_met          INTEGER NOT NULL DEFAULT 0,
	best_day_steps                INTEGER NOT NULL DEFAULT 0,
	total_steps                   INTEGER NOT NULL DEFAULT 0,
	avg_steps_per_day             REAL NOT NULL DEFAULT 0,
	steps_variance                REAL NOT NULL DEFAULT 0,
	total_miles                   REAL NOT NULL DEFAULT 0,
	miles_variance                REAL NOT NULL DEFAULT 0,
	avg_daily_calorie_burn        REAL NOT NULL DEFAULT 0,
	calorie_burn_variance         REAL NOT NULL DEFAULT 0,
	total_active_zone_minutes     INTEGER NOT NULL DEFAULT 0,
	active_zone_minutes_variance  INTEGER NOT NULL DEFAULT 0,
	avg_restful_sleep             TEXT NOT NULL DEFAULT '',
	restful_sleep_minutes         INTEGER NOT NULL DEFAULT 0,
	restful_sleep_variance        INTEGER NOT NULL DEFAULT 0,
	avg_hours_with_250_steps      REAL NOT NULL DEFAULT 0,
	hours_with_250_steps_variance REAL NOT NULL DEFAULT 0,
	avg_resting_heart_rate        INTEGER NOT NULL DEFAULT 0,
	resting_heart_rate_variance   REAL NOT NULL DEFAULT 0,
	created_at                    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_weekly_metrics_date_start ON weekly_metrics(date_start);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveMetrics(ctx context.Context, m model.WeeklyMetrics) (int64, error) {
	if m.DateRange == "" {
		return 0, eris.New("sqlite: metrics missing date range")
	}

	prev, err := s.neighbor(ctx, m.DateStart, before)
	if err != nil {
		return 0, err
	}
	m.ComputeVariance(prev)

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO weekly_metrics (
			date_range, date_start, date_end,
			step_target_days_met, best_day_steps, total_steps, avg_steps_per_day, steps_variance,
			total_miles, miles_variance, avg_daily_calorie_burn, calorie_burn_variance,
			total_active_zone_minutes, active_zone_minutes_variance,
			avg_restful_sleep, restful_sleep_minutes, restful_sleep_variance,
			avg_hours_with_250_steps, hours_with_250_steps_variance,
			avg_resting_heart_rate, resting_heart_rate_variance, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date_range) DO UPDATE SET
			date_start = excluded.date_start,
			date_end = excluded.date_end,
			step_target_days_met = excluded.step_target_days_met,
			best_day_steps = excluded.best_day_steps,
			total_steps = excluded.total_steps,
			avg_steps_per_day = excluded.avg_steps_per_day,
			steps_variance = excluded.steps_variance,
			total_miles = excluded.total_miles,
			miles_variance = excluded.miles_variance,
			avg_daily_calorie_burn = excluded.avg_daily_calorie_burn,
			calorie_burn_variance = excluded.calorie_burn_variance,
			total_active_zone_minutes = excluded.total_active_zone_minutes,
			active_zone_minutes_variance = excluded.active_zone_minutes_variance,
			avg_restful_sleep = excluded.avg_restful_sleep,
			restful_sleep_minutes = excluded.restful_sleep_minutes,
			restful_sleep_variance = excluded.restful_sleep_variance,
			avg_hours_with_250_steps = excluded.avg_hours_with_250_steps,
			hours_with_250_steps_variance = excluded.hours_with_250_steps_variance,
			avg_resting_heart_rate = excluded.avg_resting_heart_rate,
			resting_heart_rate_variance = excluded.resting_heart_rate_variance
		RETURNING id`,
		m.DateRange, m.DateStart, m.DateEnd,
		m.StepTargetDaysMet, m.BestDaySteps, m.TotalSteps, m.AvgStepsPerDay, m.StepsVariance,
		m.TotalMiles, m.MilesVariance, m.AvgDailyCalorieBurn, m.CalorieBurnVariance,
		m.TotalActiveZoneMinutes, m.ActiveZoneMinutesVariance,
		m.AvgRestfulSleep, m.RestfulSleepMinutes, m.RestfulSleepVariance,
		m.AvgHoursWith250Steps, m.HoursWith250StepsVariance,
		m.AvgRestingHeartRate, m.RestingHeartRateVariance, m.CreatedAt,
	)

	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, eris.Wrap(err, "sqlite: insert metrics")
	}
	m.ID = id

	if err := s.recomputeSuccessor(ctx, &m); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *SQLiteStore) ListMetrics(ctx context.Context) ([]model.WeeklyMetrics, error) {
	rows, err := s.db.QueryContext(ctx,
		selectMetrics+` ORDER BY date_start DESC, date_end DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list metrics")
	}
	defer rows.Close()

	var out []model.WeeklyMetrics
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan metrics")
		}
		out = append(out, *m)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list metrics iterate")
}

func (s *SQLiteStore) GetMetric(ctx context.Context, id int64) (*model.WeeklyMetrics, error) {
	row := s.db.QueryRowContext(ctx, selectMetrics+` WHERE id = ?`, id)
	m, err := scanMetric(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get metric %d", id)
	}
	return m, nil
}

func (s *SQLiteStore) DeleteMetric(ctx context.Context, id int64) error {
	victim, err := s.GetMetric(ctx, id)
	if err != nil {
		return err
	}
	if victim == nil {
		return eris.Errorf("sqlite: metric not found: %d", id)
	}

	prev, err := s.neighbor(ctx, victim.DateStart, before)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM weekly_metrics WHERE id = ?`, id); err != nil {
		return eris.Wrapf(err, "sqlite: delete metric %d", id)
	}

	// The deleted row's successor now follows prev.
	next, err := s.neighbor(ctx, victim.DateStart, after)
	if err != nil {
		return err
	}
	if next != nil {
		next.ComputeVariance(prev)
		if err := s.updateVariance(ctx, next); err != nil {
			return err
		}
	}
	return nil
}

type direction int

const (
	before direction = iota
	after
)

// neighbor returns the chronologically adjacent record relative to the
// given start date, or nil when none exists. Records without a parsed
// start date never participate in adjacency.
func (s *SQLiteStore) neighbor(ctx context.Context, dateStart string, dir direction) (*model.WeeklyMetrics, error) {
	if dateStart == "" {
		return nil, nil
	}

	query := selectMetrics + ` WHERE date_start != '' AND date_start < ? ORDER BY date_start DESC LIMIT 1`
	if dir == after {
		query = selectMetrics + ` WHERE date_start != '' AND date_start > ? ORDER BY date_start ASC LIMIT 1`
	}

	row := s.db.QueryRowContext(ctx, query, dateStart)
	m, err := scanMetric(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: neighbor lookup")
	}
	return m, nil
}

// recomputeSuccessor refreshes the variance fields of the record that
// chronologically follows m.
func (s *SQLiteStore) recomputeSuccessor(ctx context.Context, m *model.WeeklyMetrics) error {
	next, err := s.neighbor(ctx, m.DateStart, after)
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	next.ComputeVariance(m)
	return s.updateVariance(ctx, next)
}

func (s *SQLiteStore) updateVariance(ctx context.Context, m *model.WeeklyMetrics) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE weekly_metrics SET
			steps_variance = ?,
			miles_variance = ?,
			calorie_burn_variance = ?,
			active_zone_minutes_variance = ?,
			restful_sleep_variance = ?,
			hours_with_250_steps_variance = ?,
			resting_heart_rate_variance = ?
		WHERE id = ?`,
		m.StepsVariance, m.MilesVariance, m.CalorieBurnVariance,
		m.ActiveZoneMinutesVariance, m.RestfulSleepVariance,
		m.HoursWith250StepsVariance, m.RestingHeartRateVariance, m.ID,
	)
	return eris.Wrapf(err, "sqlite: update variance %d", m.ID)
}

const selectMetrics = `
	SELECT id, date_range, date_start, date_end,
		step_target_days_met, best_day_steps, total_steps, avg_steps_per_day, steps_variance,
		total_miles, miles_variance, avg_daily_calorie_burn, calorie_burn_variance,
		total_active_zone_minutes, active_zone_minutes_variance,
		avg_restful_sleep, restful_sleep_minutes, restful_sleep_variance,
		avg_hours_with_250_steps, hours_with_250_steps_variance,
		avg_resting_heart_rate, resting_heart_rate_variance, created_at
	FROM weekly_metrics`

type scannable interface {
	Scan(dest ...any) error
}

func scanMetric(row scannable) (*model.WeeklyMetrics, error) {
	var m model.WeeklyMetrics
	err := row.Scan(
		&m.ID, &m.DateRange, &m.DateStart, &m.DateEnd,
		&m.StepTargetDaysMet, &m.BestDaySteps, &m.TotalSteps, &m.AvgStepsPerDay, &m.StepsVariance,
		&m.TotalMiles, &m.MilesVariance, &m.AvgDailyCalorieBurn, &m.CalorieBurnVariance,
		&m.TotalActiveZoneMinutes, &m.ActiveZoneMinutesVariance,
		&m.AvgRestfulSleep, &m.RestfulSleepMinutes, &m.RestfulSleepVariance,
		&m.AvgHoursWith250Steps, &m.HoursWith250StepsVariance,
		&m.AvgRestingHeartRate, &m.RestingHeartRateVariance, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
