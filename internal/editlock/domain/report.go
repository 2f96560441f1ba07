package domain

import "time"

// SweepReport summarises one pass over all groups and whiteboards
type SweepReport struct {
	RunID       string      `json:"run_id"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  *time.Time  `json:"finished_at,omitempty"`
	DryRun      bool        `json:"dry_run"`
	Groups      int         `json:"groups"`
	Whiteboards int         `json:"whiteboards"`
	Locked      int         `json:"locked"`
	Live        int         `json:"live"`
	Expired     int         `json:"expired"`
	Released    int         `json:"released"`
	Malformed   int         `json:"malformed"`
	Error       string      `json:"error,omitempty"`
	Entries     []LockEntry `json:"entries,omitempty"`
}

// LockEntry is one inspected lock
type LockEntry struct {
	GroupID      string    `json:"group_id"`
	WhiteboardID string    `json:"whiteboard_id"`
	UserName     string    `json:"user_name,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	State        LockState `json:"state"`
	Released     bool      `json:"released"`
}

// Succeeded reports whether the run finished without error
func (r *SweepReport) Succeeded() bool {
	return r.FinishedAt != nil && r.Error == ""
}

// ReportSummary is the listing view of a stored report
type ReportSummary struct {
	RunID      string     `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	DryRun     bool       `json:"dry_run"`
	Released   int        `json:"released"`
	Expired    int        `json:"expired"`
	Error      string     `json:"error,omitempty"`
}

// Summary returns the listing view of the report
func (r *SweepReport) Summary() ReportSummary {
	return ReportSummary{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		DryRun:     r.DryRun,
		Released:   r.Released,
		Expired:    r.Expired,
		Error:      r.Error,
	}
}
