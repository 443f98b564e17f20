package model

import "time"

// Ingestion job states.  PENDING is the initial state; RUNNING is entered
// when the dispatch to the external worker begins; COMPLETED, FAILED and
// CANCELLED are terminal.
const (
	IngestionPending   = "PENDING"
	IngestionRunning   = "RUNNING"
	IngestionCompleted = "COMPLETED"
	IngestionFailed    = "FAILED"
	IngestionCancelled = "CANCELLED"
)

// ValidIngestionStatus reports whether s names a known job state.
func ValidIngestionStatus(s string) bool {
	switch s {
	case IngestionPending, IngestionRunning, IngestionCompleted, IngestionFailed, IngestionCancelled:
		return true
	}
	return false
}

// TerminalIngestionStatus reports whether s is one of the terminal states.
func TerminalIngestionStatus(s string) bool {
	return s == IngestionCompleted || s == IngestionFailed || s == IngestionCancelled
}

// IngestionJob tracks one asynchronous ingestion call to the external
// worker.  StartedAt is stamped on first entry into RUNNING and FinishedAt
// on first entry into a terminal state; both survive later updates.
type IngestionJob struct {
	ID            string         `json:"id"`
	CorrelationID string         `json:"correlationId,omitempty"`
	SourceType    string         `json:"sourceType"`
	SourceRef     string         `json:"sourceRef"`
	Params        map[string]any `json:"params,omitempty"`
	Status        string         `json:"status"`
	Message       string         `json:"message,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	StartedAt     *time.Time     `json:"startedAt,omitempty"`
	FinishedAt    *time.Time     `json:"finishedAt,omitempty"`
}
