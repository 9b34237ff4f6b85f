package model

// Status represents the current state of an extraction run.
type Status string

const (
	StatusIdle         Status = "idle"
	StatusStarting     Status = "starting"
	StatusPlanning     Status = "planning"
	StatusBrowserOpen  Status = "browser_open"
	StatusNavigating   Status = "navigating"
	StatusWaitingLogin Status = "waiting_for_login"
	StatusSearching    Status = "searching"
	StatusExtracting   Status = "extracting"
	StatusSaving       Status = "saving"
	StatusSummarizing  Status = "summarizing"
	StatusComplete     Status = "complete"

	StatusPlanFailed       Status = "plan_failed"
	StatusBrowserFailed    Status = "browser_failed"
	StatusNavigationFailed Status = "navigation_failed"
	StatusLoginFailed      Status = "login_failed"
	StatusNoEmailsFound    Status = "no_emails_found"
	StatusExtractionFailed Status = "extraction_failed"
	StatusDatabaseFailed   Status = "database_failed"
	StatusError            Status = "error"
)

// Failed reports whether the status is a failure tag.
func (s Status) Failed() bool {
	switch s {
	case StatusBrowserFailed, StatusNavigationFailed, StatusLoginFailed,
		StatusNoEmailsFound, StatusExtractionFailed, StatusDatabaseFailed,
		StatusError:
		return true
	}
	return false
}

// Terminal reports whether the run is finished, successfully or not.
func (s Status) Terminal() bool {
	return s == StatusComplete || s.Failed()
}

// StatusRecord is a point-in-time progress snapshot for one run. The
// tracker overwrites it wholesale; no history is retained.
type StatusRecord struct {
	RunID     string `json:"run_id,omitempty"`
	Status    Status `json:"status"`
	Message   string `json:"message"`
	Progress  int    `json:"progress"`
	LastRun   string `json:"last_run,omitempty"`
	DataCount *int   `json:"data_count,omitempty"`
}
