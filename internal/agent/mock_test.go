package agent

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fitpull/fitpull/internal/browser"
	"github.com/fitpull/fitpull/internal/model"
	"github.com/fitpull/fitpull/pkg/anthropic"
)

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

type mockLauncher struct {
	mock.Mock
}

func (m *mockLauncher) Launch(ctx context.Context) (browser.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(browser.Session), args.Error(1)
}

// mockBrowserSession only needs Close for pipeline tests; the mailbox
// fake sits in front of everything else.
type mockBrowserSession struct {
	mock.Mock
}

func (m *mockBrowserSession) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *mockBrowserSession) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	return m.Called(ctx, sel, timeout).Error(0)
}

func (m *mockBrowserSession) Exists(ctx context.Context, sel string) (bool, error) {
	args := m.Called(ctx, sel)
	return args.Bool(0), args.Error(1)
}

func (m *mockBrowserSession) Count(ctx context.Context, sel string) (int, error) {
	args := m.Called(ctx, sel)
	return args.Int(0), args.Error(1)
}

func (m *mockBrowserSession) Click(ctx context.Context, sel string) error {
	return m.Called(ctx, sel).Error(0)
}

func (m *mockBrowserSession) ClickNth(ctx context.Context, sel string, n int) error {
	return m.Called(ctx, sel, n).Error(0)
}

func (m *mockBrowserSession) Fill(ctx context.Context, sel, value string) error {
	return m.Called(ctx, sel, value).Error(0)
}

func (m *mockBrowserSession) Press(ctx context.Context, sel, key string) error {
	return m.Called(ctx, sel, key).Error(0)
}

func (m *mockBrowserSession) Text(ctx context.Context, sel string) (string, error) {
	args := m.Called(ctx, sel)
	return args.String(0), args.Error(1)
}

func (m *mockBrowserSession) Back(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockBrowserSession) Close() error {
	return m.Called().Error(0)
}

type mockMailbox struct {
	mock.Mock
}

func (m *mockMailbox) WaitForLogin(ctx context.Context, timeout time.Duration) error {
	return m.Called(ctx, timeout).Error(0)
}

func (m *mockMailbox) Search(ctx context.Context, query string) (int, error) {
	args := m.Called(ctx, query)
	return args.Int(0), args.Error(1)
}

func (m *mockMailbox) OpenMessage(ctx context.Context, n int) (string, error) {
	args := m.Called(ctx, n)
	return args.String(0), args.Error(1)
}

func (m *mockMailbox) Back(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

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
