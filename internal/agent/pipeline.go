// Package agent runs the end-to-end extraction pipeline: plan, open a
// browser, wait for webmail login, search for weekly report emails,
// extract metrics from each with the model, persist them, summarize.
package agent

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fitpull/fitpull/internal/browser"
	"github.com/fitpull/fitpull/internal/config"
	"github.com/fitpull/fitpull/internal/model"
	"github.com/fitpull/fitpull/internal/store"
	"github.com/fitpull/fitpull/internal/webmail"
	"github.com/fitpull/fitpull/pkg/anthropic"
)

// DefaultStartDate is used when a start request carries no date.
const DefaultStartDate = "2024/06/01"

// Mailbox is the webmail surface the pipeline drives. webmail.Client
// implements it; tests substitute a fake.
type Mailbox interface {
	WaitForLogin(ctx context.Context, timeout time.Duration) error
	Search(ctx context.Context, query string) (int, error)
	OpenMessage(ctx context.Context, n int) (string, error)
	Back(ctx context.Context) error
}

// RunState is the mutable state of one extraction run. It is owned by
// the run goroutine and never shared.
type RunState struct {
	RunID     string
	StartDate string
	Status    model.Status
	Plan      string
	Query     string
	LoggedIn  bool
	Found     int
	Extracted []model.WeeklyMetrics
	SavedIDs  []int64
	Summary   string
	Err       string
	Usage     anthropic.TokenUsage
}

// Pipeline wires the stages together. One Pipeline serves all runs.
type Pipeline struct {
	llm      anthropic.Client
	model    string
	launcher browser.Launcher
	store    store.Store
	webmail  config.WebmailConfig
	extract  config.ExtractConfig
	limiter  *rate.Limiter
	tracker  *Tracker

	// newMailbox is a seam for tests.
	newMailbox func(browser.Session) Mailbox
}

func New(llm anthropic.Client, launcher browser.Launcher, st store.Store, cfg *config.Config, tracker *Tracker) *Pipeline {
	return &Pipeline{
		llm:      llm,
		model:    cfg.Anthropic.Model,
		launcher: launcher,
		store:    st,
		webmail:  cfg.Webmail,
		extract:  cfg.Extract,
		limiter:  rate.NewLimiter(rate.Limit(cfg.Extract.RatePerSec), 1),
		tracker:  tracker,
		newMailbox: func(sess browser.Session) Mailbox {
			return webmail.New(sess)
		},
	}
}

// Start launches a run in the background and returns its id. A started
// run is not cancellable; it proceeds to a terminal status on its own.
func (p *Pipeline) Start(startDate string) string {
	runID := uuid.New().String()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				zap.L().Error("extraction run panicked",
					zap.String("run_id", runID), zap.Any("panic", r))
				p.tracker.Update(model.StatusRecord{
					RunID:    runID,
					Status:   model.StatusError,
					Message:  fmt.Sprintf("Error: %v", r),
					Progress: 0,
					LastRun:  time.Now().UTC().Format(time.RFC3339),
				})
			}
		}()
		p.Run(context.Background(), runID, startDate)
	}()
	return runID
}

// Run executes the pipeline synchronously and returns the final state.
func (p *Pipeline) Run(ctx context.Context, runID, startDate string) *RunState {
	if startDate == "" {
		startDate = DefaultStartDate
	}
	st := &RunState{RunID: runID, StartDate: startDate}
	zap.L().Info("extraction run starting",
		zap.String("run_id", runID), zap.String("start_date", startDate))

	p.report(st, model.StatusPlanning, "Creating extraction plan...", 5)
	st.Query = SearchQuery(p.webmail.ReportSubject, startDate)
	if plan, err := p.plan(ctx, st); err != nil {
		// Advisory only. Downstream stages need the derived query, not
		// the plan text, so the run continues.
		zap.L().Warn("plan generation failed", zap.String("run_id", runID), zap.Error(err))
		st.Status = model.StatusPlanFailed
	} else {
		st.Plan = plan
	}

	p.report(st, model.StatusBrowserOpen, "Opening browser...", 10)
	sess, err := p.launcher.Launch(ctx)
	if err != nil {
		return p.fail(st, model.StatusBrowserFailed, err)
	}
	defer sess.Close()

	p.report(st, model.StatusNavigating, fmt.Sprintf("Navigating to %s...", p.webmail.URL), 20)
	if err := sess.Navigate(ctx, p.webmail.URL); err != nil {
		return p.fail(st, model.StatusNavigationFailed, err)
	}
	mb := p.newMailbox(sess)

	p.report(st, model.StatusWaitingLogin, "Please log in to your webmail account...", 30)
	loginTimeout := time.Duration(p.webmail.LoginTimeoutSecs) * time.Second
	if err := mb.WaitForLogin(ctx, loginTimeout); err != nil {
		return p.fail(st, model.StatusLoginFailed, err)
	}
	st.LoggedIn = true

	p.report(st, model.StatusSearching, fmt.Sprintf("Searching for report emails with query: %s", st.Query), 40)
	n, err := mb.Search(ctx, st.Query)
	if err != nil {
		return p.fail(st, model.StatusError, err)
	}
	if n == 0 {
		return p.fail(st, model.StatusNoEmailsFound,
			fmt.Errorf("no report emails found matching the search criteria"))
	}
	st.Found = n
	p.report(st, model.StatusSearching, fmt.Sprintf("Found %d report emails", n), 50)

	p.report(st, model.StatusExtracting, "Extracting data from report emails...", 60)
	p.extractAll(ctx, st, mb)
	if len(st.Extracted) == 0 {
		return p.fail(st, model.StatusExtractionFailed,
			fmt.Errorf("no data could be extracted from emails"))
	}
	p.report(st, model.StatusExtracting,
		fmt.Sprintf("Successfully extracted data from %d emails", len(st.Extracted)), 70)

	p.report(st, model.StatusSaving, "Saving extracted data...", 80)
	for _, m := range st.Extracted {
		id, err := p.store.SaveMetrics(ctx, m)
		if err != nil {
			zap.L().Warn("failed to save record",
				zap.String("run_id", st.RunID),
				zap.String("date_range", m.DateRange), zap.Error(err))
			continue
		}
		st.SavedIDs = append(st.SavedIDs, id)
	}
	if len(st.SavedIDs) == 0 {
		return p.fail(st, model.StatusDatabaseFailed,
			fmt.Errorf("failed to save extracted data"))
	}
	p.report(st, model.StatusSaving, fmt.Sprintf("Saved %d records", len(st.SavedIDs)), 90)

	p.report(st, model.StatusSummarizing, "Creating summary of extracted data...", 95)
	st.Summary = p.summarize(ctx, st)

	st.Usage.Log(p.model, "extraction run")
	p.report(st, model.StatusComplete, "Data extraction complete!", 100)
	return st
}

// SearchQuery builds the mailbox query for report emails after a date.
func SearchQuery(subject, startDate string) string {
	return fmt.Sprintf("subject:%q after:%s", subject, startDate)
}

// extractAll walks the result rows up to the configured cap, reading and
// parsing each email. Individual failures are skipped; the caller treats
// a wholly empty result as fatal.
func (p *Pipeline) extractAll(ctx context.Context, st *RunState, mb Mailbox) {
	total := st.Found
	if total > p.extract.MaxEmails {
		total = p.extract.MaxEmails
	}
	year := startYear(st.StartDate)

	for i := 0; i < total; i++ {
		p.report(st, model.StatusExtracting,
			fmt.Sprintf("Processing email %d of %d", i+1, total),
			60+(i+1)*10/total)

		body, err := mb.OpenMessage(ctx, i)
		if err != nil {
			zap.L().Warn("failed to open email",
				zap.String("run_id", st.RunID), zap.Int("index", i), zap.Error(err))
			continue
		}

		raw, err := p.parseEmailLimited(ctx, st, body)
		if err != nil {
			zap.L().Warn("failed to parse email",
				zap.String("run_id", st.RunID), zap.Int("index", i), zap.Error(err))
		} else {
			st.Extracted = append(st.Extracted, model.FromExtraction(raw, year))
		}

		if err := mb.Back(ctx); err != nil {
			zap.L().Warn("failed to return to result list",
				zap.String("run_id", st.RunID), zap.Error(err))
			return
		}
	}
}

// parseEmailLimited applies the call pacing and per-call timeout around
// parseEmail.
func (p *Pipeline) parseEmailLimited(ctx context.Context, st *RunState, body string) (map[string]any, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(p.extract.CallTimeoutSecs)*time.Second)
	defer cancel()
	return p.parseEmail(callCtx, st, body)
}

func (p *Pipeline) plan(ctx context.Context, st *RunState) (string, error) {
	prompt := fmt.Sprintf(`Create a detailed plan to extract Fitbit data from webmail.

The goal is to:
1. Navigate to the webmail inbox
2. Wait for user login
3. Search for Fitbit weekly reports (from %s to present)
4. Extract fitness metrics from each email
5. Store the data in a database

Format the plan as a step-by-step process.`, st.StartDate)

	resp, err := p.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: 1024,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	st.Usage.Add(resp.Usage)
	return resp.Text(), nil
}

// summarize produces the run summary, falling back to a canned sentence
// when the model call fails. The run still completes either way.
func (p *Pipeline) summarize(ctx context.Context, st *RunState) string {
	prompt := fmt.Sprintf(`Create a summary of the Fitbit data extraction process:

- %d emails were processed
- %d records were saved to the database

Highlight any trends or patterns in the data.`, len(st.Extracted), len(st.SavedIDs))

	resp, err := p.llm.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: 1024,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		zap.L().Warn("summary generation failed",
			zap.String("run_id", st.RunID), zap.Error(err))
		return fmt.Sprintf("Successfully extracted data from %d emails and saved %d records to the database.",
			len(st.Extracted), len(st.SavedIDs))
	}
	st.Usage.Add(resp.Usage)
	return resp.Text()
}

func (p *Pipeline) report(st *RunState, status model.Status, msg string, progress int) {
	st.Status = status
	rec := model.StatusRecord{
		RunID:    st.RunID,
		Status:   status,
		Message:  msg,
		Progress: progress,
	}
	if status.Terminal() {
		rec.LastRun = time.Now().UTC().Format(time.RFC3339)
	}
	if status == model.StatusComplete {
		n := len(st.SavedIDs)
		rec.DataCount = &n
	}
	p.tracker.Update(rec)
	zap.L().Info("run status",
		zap.String("run_id", st.RunID),
		zap.String("status", string(status)),
		zap.String("message", msg),
		zap.Int("progress", progress),
	)
}

func (p *Pipeline) fail(st *RunState, status model.Status, err error) *RunState {
	st.Err = err.Error()
	p.report(st, status, fmt.Sprintf("Error: %s", err.Error()), 0)
	return st
}

// startYear pulls the year out of a YYYY/MM/DD start date; report date
// ranges carry no year of their own.
func startYear(startDate string) int {
	if len(startDate) >= 4 {
		if y, err := strconv.Atoi(startDate[:4]); err == nil && y > 1970 {
			return y
		}
	}
	return time.Now().Year()
}
