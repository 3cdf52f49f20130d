package model

import (
	"time"

	"github.com/refsyncd/refsyncd/pkg/domain/types"
)

// SyncStatus is the outcome of one mirror run.
type SyncStatus string

const (
	// StatusMirrored means the ref was fetched from the source and
	// force-pushed to the mirror (or the mirror was already up to date).
	StatusMirrored SyncStatus = "mirrored"

	// StatusSkipped means the ref did not match the ruleset or was a
	// deletion, and the mirror was left untouched.
	StatusSkipped SyncStatus = "skipped"

	// StatusFailed means the mirror attempt errored after all retries.
	StatusFailed SyncStatus = "failed"
)

// SyncRecord is the journal entry for one mirror run.
type SyncRecord struct {
	ID         string        `json:"id"`
	Ref        string        `json:"ref"`  // short ref name
	Kind       RefKind       `json:"kind"` // branch or tag
	Trigger    types.Trigger `json:"trigger"`
	Status     SyncStatus    `json:"status"`
	Rule       string        `json:"rule,omitempty"`   // pattern that matched
	Reason     string        `json:"reason,omitempty"` // why the ref was skipped
	Hash       string        `json:"hash,omitempty"`   // source hash at mirror time
	Error      string        `json:"error,omitempty"`
	Attempts   int           `json:"attempts"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Duration returns the wall-clock time of the run.
func (r *SyncRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
