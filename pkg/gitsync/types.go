package gitsync

import (
	"time"
)

// CommitInfo contains metadata about a git commit.
type CommitInfo struct {
	SHA        string    `json:"sha"`
	Author     string    `json:"author"`
	Email      string    `json:"email"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	Branch     string    `json:"branch"`
	Repository string    `json:"repository"`
}

// PullResult describes the outcome of a pull.
type PullResult struct {
	FromSHA      string
	ToSHA        string
	ChangedFiles []string
	HadChanges   bool
}

// SyncMetrics tracks git operation counters and timings.
type SyncMetrics struct {
	CloneDuration   time.Duration
	PullDuration    time.Duration
	LastCommitSHA   string
	LastPullTime    time.Time
	FailedPulls     int64
	SuccessfulPulls int64
}
