package types

import "time"

// Sync run kinds. A run is either a full corpus load or an incremental
// sync from a watermark date.
const (
	RunKindFull        = "full"
	RunKindIncremental = "incremental"
)

// Sync run terminal states.
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// SyncRun is one recorded execution of the orchestrator, kept for
// operability: the status command and the runs endpoint read these back.
type SyncRun struct {
	RunID      string    `json:"run_id"` // UUID v7, generated at run start.
	Kind       string    `json:"kind"`
	Since      string    `json:"since,omitempty"` // watermark date, empty for full loads
	Processed  int       `json:"processed"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
