package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/fitpull/fitpull/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies
// it, which keeps the query tests free of a live database.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS weekly_metrics (
	id                            BIGSERIAL PRIMARY KEY,
	date_range                    TEXT NOT NULL UNIQUE,
	date_start                    TEXT NOT NULL DEFAULT '',
	date_end                      TEXT NOT NULL DEFAULT '',
	step_target_days_met          INTEGER NOT NULL DEFAULT 0,
	best_day_steps                INTEGER NOT NULL DEFAULT 0,
	total_steps                   INTEGER NOT NULL DEFAULT 0,
	avg_steps_per_day             DOUBLE PRECISION NOT NULL DEFAULT 0,
	steps_variance                DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_miles                   DOUBLE PRECISION NOT NULL DEFAULT 0,
	miles_variance                DOUBLE PRECISION NOT NULL DEFAULT 0,
	avg_daily_calorie_burn        DOUBLE PRECISION NOT NULL DEFAULT 0,
	calorie_burn_variance         DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_active_zone_minutes     INTEGER NOT NULL DEFAULT 0,
	active_zone_minutes_variance  INTEGER NOT NULL DEFAULT 0,
	avg_restful_sleep             TEXT NOT NULL DEFAULT '',
	restful_sleep_minutes         INTEGER NOT NULL DEFAULT 0,
	restful_sleep_variance        INTEGER NOT NULL DEFAULT 0,
	avg_hours_with_250_steps      DOUBLE PRECISION NOT NULL DEFAULT 0,
	hours_with_250_steps_variance DOUBLE PRECISION NOT NULL DEFAULT 0,
	avg_resting_heart_rate        INTEGER NOT NULL DEFAULT 0,
	resting_heart_rate_variance   DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at                    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_weekly_metrics_date_start ON weekly_metrics(date_start);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) SaveMetrics(ctx context.Context, m model.WeeklyMetrics) (int64, error) {
	if m.DateRange == "" {
		return 0, eris.New("postgres: metrics missing date range")
	}

	prev, err := s.neighbor(ctx, m.DateStart, before)
	if err != nil {
		return 0, err
	}
	m.ComputeVariance(prev)

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO weekly_metrics (
			date_range, date_start, date_end,
			step_target_days_met, best_day_steps, total_steps, avg_steps_per_day, steps_variance,
			total_miles, miles_variance, avg_daily_calorie_burn, calorie_burn_variance,
			total_active_zone_minutes, active_zone_minutes_variance,
			avg_restful_sleep, restful_sleep_minutes, restful_sleep_variance,
			avg_hours_with_250_steps, hours_with_250_steps_variance,
			avg_resting_heart_rate, resting_heart_rate_variance, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (date_range) DO UPDATE SET
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
		return 0, eris.Wrap(err, "postgres: insert metrics")
	}
	m.ID = id

	if err := s.recomputeSuccessor(ctx, &m); err != nil {
		return 0, err
	}
	return id, nil
}

func (s *PostgresStore) ListMetrics(ctx context.Context) ([]model.WeeklyMetrics, error) {
	rows, err := s.pool.Query(ctx,
		selectMetrics+` ORDER BY date_start DESC, date_end DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list metrics")
	}
	defer rows.Close()

	var out []model.WeeklyMetrics
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan metrics")
		}
		out = append(out, *m)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list metrics iterate")
}

func (s *PostgresStore) GetMetric(ctx context.Context, id int64) (*model.WeeklyMetrics, error) {
	row := s.pool.QueryRow(ctx, selectMetrics+` WHERE id = $1`, id)
	m, err := scanMetric(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get metric %d", id)
	}
	return m, nil
}

func (s *PostgresStore) DeleteMetric(ctx context.Context, id int64) error {
	victim, err := s.GetMetric(ctx, id)
	if err != nil {
		return err
	}
	if victim == nil {
		return eris.Errorf("postgres: metric not found: %d", id)
	}

	prev, err := s.neighbor(ctx, victim.DateStart, before)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `DELETE FROM weekly_metrics WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete metric %d", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: metric not found: %d", id)
	}

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

func (s *PostgresStore) neighbor(ctx context.Context, dateStart string, dir direction) (*model.WeeklyMetrics, error) {
	if dateStart == "" {
		return nil, nil
	}

	query := selectMetrics + ` WHERE date_start != '' AND date_start < $1 ORDER BY date_start DESC LIMIT 1`
	if dir == after {
		query = selectMetrics + ` WHERE date_start != '' AND date_start > $1 ORDER BY date_start ASC LIMIT 1`
	}

	row := s.pool.QueryRow(ctx, query, dateStart)
	m, err := scanMetric(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: neighbor lookup")
	}
	return m, nil
}

func (s *PostgresStore) recomputeSuccessor(ctx context.Context, m *model.WeeklyMetrics) error {
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

func (s *PostgresStore) updateVariance(ctx context.Context, m *model.WeeklyMetrics) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE weekly_metrics SET
			steps_variance = $1,
			miles_variance = $2,
			calorie_burn_variance = $3,
			active_zone_minutes_variance = $4,
			restful_sleep_variance = $5,
			hours_with_250_steps_variance = $6,
			resting_heart_rate_variance = $7
		WHERE id = $8`,
		m.StepsVariance, m.MilesVariance, m.CalorieBurnVariance,
		m.ActiveZoneMinutesVariance, m.RestfulSleepVariance,
		m.HoursWith250StepsVariance, m.RestingHeartRateVariance, m.ID,
	)
	return eris.Wrapf(err, "postgres: update variance %d", m.ID)
}
