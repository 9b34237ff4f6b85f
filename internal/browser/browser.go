// Package browser wraps Chrome automation behind a small interface so the
// extraction pipeline can be tested without a running browser.
package browser

import (
	"context"
	"time"
)

// KeyEnter is the carriage return sent to commit an input field.
const KeyEnter = "\r"

// Launcher starts browser sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// Session is one open browser window. All selectors are CSS. Close is
// safe to call more than once.
type Session interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, sel string, timeout time.Duration) error
	Exists(ctx context.Context, sel string) (bool, error)
	Count(ctx context.Context, sel string) (int, error)
	Click(ctx context.Context, sel string) error
	ClickNth(ctx context.Context, sel string, n int) error
	Fill(ctx context.Context, sel, value string) error
	Press(ctx context.Context, sel, key string) error
	Text(ctx context.Context, sel string) (string, error)
	Back(ctx context.Context) error
	Close() error
}
