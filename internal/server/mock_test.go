package server

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/fitpull/fitpull/internal/model"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveMetrics(ctx context.Context, rec model.WeeklyMetrics) (int64, error) {
	args := m.Called(ctx, rec)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) ListMetrics(ctx context.Context) ([]model.WeeklyMetrics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WeeklyMetrics), args.Error(1)
}

func (m *mockStore) GetMetric(ctx context.Context, id int64) (*model.WeeklyMetrics, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WeeklyMetrics), args.Error(1)
}

func (m *mockStore) DeleteMetric(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

// stubStarter records the requested start date and hands back a fixed id.
type stubStarter struct {
	startDate string
	runID     string
}

func (s *stubStarter) Start(startDate string) string {
	s.startDate = startDate
	return s.runID
}
