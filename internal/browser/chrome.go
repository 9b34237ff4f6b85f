package browser

import (
	"context"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ChromeLauncher launches a local Chrome via chromedp. The window stays
// visible unless Headless is set, since signing in to webmail is a manual
// step.
type ChromeLauncher struct {
	Headless bool
}

var _ Launcher = (*ChromeLauncher)(nil)

func (l *ChromeLauncher) Launch(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", l.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1280, 900),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	// An empty run forces the browser process to start now, so launch
	// failures surface here instead of on the first navigation.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, eris.Wrap(err, "browser: launch chrome")
	}

	zap.L().Info("browser launched", zap.Bool("headless", l.Headless))
	return &chromeSession{ctx: tabCtx, cancels: []context.CancelFunc{tabCancel, allocCancel}}, nil
}

type chromeSession struct {
	ctx     context.Context
	cancels []context.CancelFunc
	close   sync.Once
}

// run executes actions on the session tab, honoring any deadline on the
// caller's context.
func (s *chromeSession) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx := s.ctx
	if deadline, ok := ctx.Deadline(); ok {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithDeadline(s.ctx, deadline)
		defer cancel()
	}
	return chromedp.Run(runCtx, actions...)
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	return eris.Wrapf(s.run(ctx, chromedp.Navigate(url)), "browser: navigate %s", url)
}

func (s *chromeSession) WaitVisible(ctx context.Context, sel string, timeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return eris.Wrapf(s.run(waitCtx, chromedp.WaitVisible(sel, chromedp.ByQuery)),
		"browser: wait for %s", sel)
}

func (s *chromeSession) Exists(ctx context.Context, sel string) (bool, error) {
	n, err := s.Count(ctx, sel)
	return n > 0, err
}

func (s *chromeSession) Count(ctx context.Context, sel string) (int, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return 0, eris.Wrapf(err, "browser: count %s", sel)
	}
	return len(nodes), nil
}

func (s *chromeSession) Click(ctx context.Context, sel string) error {
	return eris.Wrapf(s.run(ctx, chromedp.Click(sel, chromedp.ByQuery)), "browser: click %s", sel)
}

func (s *chromeSession) ClickNth(ctx context.Context, sel string, n int) error {
	var nodes []*cdp.Node
	if err := s.run(ctx, chromedp.Nodes(sel, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return eris.Wrapf(err, "browser: find %s", sel)
	}
	if n < 0 || n >= len(nodes) {
		return eris.Errorf("browser: no element %d of %s (found %d)", n, sel, len(nodes))
	}
	return eris.Wrapf(s.run(ctx, chromedp.MouseClickNode(nodes[n])), "browser: click %s[%d]", sel, n)
}

func (s *chromeSession) Fill(ctx context.Context, sel, value string) error {
	return eris.Wrapf(s.run(ctx,
		chromedp.Clear(sel, chromedp.ByQuery),
		chromedp.SendKeys(sel, value, chromedp.ByQuery),
	), "browser: fill %s", sel)
}

func (s *chromeSession) Press(ctx context.Context, sel, key string) error {
	return eris.Wrapf(s.run(ctx, chromedp.SendKeys(sel, key, chromedp.ByQuery)),
		"browser: press key on %s", sel)
}

func (s *chromeSession) Text(ctx context.Context, sel string) (string, error) {
	var out string
	err := s.run(ctx, chromedp.Text(sel, &out, chromedp.ByQuery))
	if err != nil {
		return "", eris.Wrapf(err, "browser: read text of %s", sel)
	}
	return out, nil
}

func (s *chromeSession) Back(ctx context.Context) error {
	return eris.Wrap(s.run(ctx, chromedp.NavigateBack()), "browser: navigate back")
}

func (s *chromeSession) Close() error {
	s.close.Do(func() {
		// Cancel in reverse of creation order so the tab closes before
		// the allocator tears down the process.
		for _, cancel := range s.cancels {
			cancel()
		}
		zap.L().Info("browser closed")
	})
	return nil
}
