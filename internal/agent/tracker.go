package agent

import (
	"sync"

	"github.com/fitpull/fitpull/internal/model"
)

// Tracker holds the latest status snapshot per run plus a process-wide
// "latest" slot polled by the dashboard. The latest slot is overwritten
// wholesale; with overlapping runs the most recent writer wins, which is
// why callers that care about a specific run should poll by run id.
type Tracker struct {
	mu     sync.Mutex
	latest model.StatusRecord
	runs   map[string]model.StatusRecord
}

func NewTracker() *Tracker {
	return &Tracker{
		latest: model.StatusRecord{
			Status:  model.StatusIdle,
			Message: "No extraction has been run yet",
		},
		runs: make(map[string]model.StatusRecord),
	}
}

// Update records a new snapshot.
func (t *Tracker) Update(rec model.StatusRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.latest = rec
	if rec.RunID != "" {
		t.runs[rec.RunID] = rec
	}
}

// Latest returns the most recently written snapshot across all runs.
func (t *Tracker) Latest() model.StatusRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest
}

// Run returns the latest snapshot for one run.
func (t *Tracker) Run(id string) (model.StatusRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.runs[id]
	return rec, ok
}
