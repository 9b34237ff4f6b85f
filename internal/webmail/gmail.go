// Package webmail drives the Gmail web UI through a browser session.
package webmail

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fitpull/fitpull/internal/browser"
)

// Gmail UI selectors. These track the live Gmail DOM and are the part
// most likely to need updating when Google ships a redesign.
const (
	selLoginEmail = "input[type='email']"
	selMain       = "div[role='main']"
	selSearchBox  = "input[aria-label='Search mail']"
	selEmailRow   = "tr.zA"
	selNoResults  = "div.TD"
	selBack       = "button[aria-label='Back to Inbox']"
)

const resultTimeout = 10 * time.Second

// Client reads a Gmail mailbox through a live browser session.
type Client struct {
	sess browser.Session
}

func New(sess browser.Session) *Client {
	return &Client{sess: sess}
}

// WaitForLogin blocks until the authenticated inbox is visible. When the
// sign-in form is on screen the full timeout applies so the operator can
// type credentials; an already-signed-in session resolves quickly.
func (c *Client) WaitForLogin(ctx context.Context, timeout time.Duration) error {
	onLoginPage, err := c.sess.Exists(ctx, selLoginEmail)
	if err != nil {
		return eris.Wrap(err, "webmail: detect login page")
	}

	wait := resultTimeout
	if onLoginPage {
		zap.L().Info("sign-in form detected, waiting for operator login",
			zap.Duration("timeout", timeout))
		wait = timeout
	}

	if err := c.sess.WaitVisible(ctx, selMain, wait); err != nil {
		return eris.Wrap(err, "webmail: wait for inbox")
	}
	return nil
}

// Search runs a mailbox search and returns the number of matching
// message rows on the results page. Zero matches is not an error.
func (c *Client) Search(ctx context.Context, query string) (int, error) {
	if err := c.sess.Click(ctx, selSearchBox); err != nil {
		return 0, eris.Wrap(err, "webmail: focus search box")
	}
	if err := c.sess.Fill(ctx, selSearchBox, query); err != nil {
		return 0, eris.Wrap(err, "webmail: type query")
	}
	if err := c.sess.Press(ctx, selSearchBox, browser.KeyEnter); err != nil {
		return 0, eris.Wrap(err, "webmail: submit query")
	}
	if err := c.sess.WaitVisible(ctx, selMain, resultTimeout); err != nil {
		return 0, eris.Wrap(err, "webmail: wait for results")
	}

	if empty, err := c.sess.Exists(ctx, selNoResults); err != nil {
		return 0, eris.Wrap(err, "webmail: check empty results")
	} else if empty {
		text, err := c.sess.Text(ctx, selNoResults)
		if err != nil {
			return 0, eris.Wrap(err, "webmail: read empty results banner")
		}
		if strings.Contains(text, "No results found") {
			return 0, nil
		}
	}

	n, err := c.sess.Count(ctx, selEmailRow)
	if err != nil {
		return 0, eris.Wrap(err, "webmail: count results")
	}
	zap.L().Info("mailbox search complete", zap.String("query", query), zap.Int("matches", n))
	return n, nil
}

// OpenMessage opens the nth result row and returns the rendered body text.
func (c *Client) OpenMessage(ctx context.Context, n int) (string, error) {
	if err := c.sess.ClickNth(ctx, selEmailRow, n); err != nil {
		return "", eris.Wrapf(err, "webmail: open message %d", n)
	}
	if err := c.sess.WaitVisible(ctx, selMain, resultTimeout); err != nil {
		return "", eris.Wrapf(err, "webmail: wait for message %d", n)
	}
	body, err := c.sess.Text(ctx, selMain)
	if err != nil {
		return "", eris.Wrapf(err, "webmail: read message %d", n)
	}
	return body, nil
}

// Back returns from an open message to the result list.
func (c *Client) Back(ctx context.Context) error {
	if err := c.sess.Click(ctx, selBack); err != nil {
		return eris.Wrap(err, "webmail: back to results")
	}
	if err := c.sess.WaitVisible(ctx, selMain, resultTimeout); err != nil {
		return eris.Wrap(err, "webmail: wait for result list")
	}
	return nil
}
