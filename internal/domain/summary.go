package domain

import (
	"time"
)

// RunSummary enumerates what a pipeline run skipped or failed to
// resolve, so the user can judge completeness of the output.
type RunSummary struct {
	RunID             string        `json:"run_id"`
	StartedAt         time.Time     `json:"started_at"`
	Duration          time.Duration `json:"duration"`
	TweetsLoaded      int           `json:"tweets_loaded"`
	ConversationsLoad int           `json:"conversations_loaded"`
	MessagesLoaded    int           `json:"messages_loaded"`
	SkippedRecords    int           `json:"skipped_records"`
	MissingMedia      int           `json:"missing_media"`
	UpgradedMedia     int           `json:"upgraded_media"`
	UnresolvedHandles int           `json:"unresolved_handles"`
	LookupFailures    int           `json:"lookup_failures"`
	Warnings          []string      `json:"warnings,omitempty"`
}

// Warn records a warning message on the summary.
func (s *RunSummary) Warn(msg string) {
	s.Warnings = append(s.Warnings, msg)
}
