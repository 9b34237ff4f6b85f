package webmail

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type mockSession struct {
	mock.Mock
}

func (m *mockSession) Navigate(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}

func (m *mockSession) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	return m.Called(ctx, sel, timeout).Error(0)
}

func (m *mockSession) Exists(ctx context.Context, sel string) (bool, error) {
	args := m.Called(ctx, sel)
	return args.Bool(0), args.Error(1)
}

func (m *mockSession) Count(ctx context.Context, sel string) (int, error) {
	args := m.Called(ctx, sel)
	return args.Int(0), args.Error(1)
}

func (m *mockSession) Click(ctx context.Context, sel string) error {
	return m.Called(ctx, sel).Error(0)
}

func (m *mockSession) ClickNth(ctx context.Context, sel string, n int) error {
	return m.Called(ctx, sel, n).Error(0)
}

func (m *mockSession) Fill(ctx context.Context, sel, value string) error {
	return m.Called(ctx, sel, value).Error(0)
}

func (m *mockSession) Press(ctx context.Context, sel, key string) error {
	return m.Called(ctx, sel, key).Error(0)
}

func (m *mockSession) Text(ctx context.Context, sel string) (string, error) {
	args := m.Called(ctx, sel)
	return args.String(0), args.Error(1)
}

func (m *mockSession) Back(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockSession) Close() error {
	return m.Called().Error(0)
}
