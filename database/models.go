package database

import (
	"time"
)

// Run is one execution of the retention pipeline against a target.
type Run struct {
	ID           uint   `gorm:"primaryKey"`
	Target       string `gorm:"index"`
	RootDir      string
	TypeTag      string
	DryRun       bool
	StartedAt    time.Time `gorm:"index"`
	FinishedAt   time.Time
	KeptCount    int
	DeletedCount int
	FailedCount  int
	FreedBytes   int64
	CreatedAt    time.Time
}

// RunDecision records what happened to one artifact during a run.
type RunDecision struct {
	ID                uint `gorm:"primaryKey"`
	RunID             uint `gorm:"index"`
	Identifier        string
	Action            string
	Tier              string
	Outcome           string
	Reason            string
	SizeBytes         int64
	ArtifactCreatedAt time.Time
}

const (
	OutcomeKept        = "kept"
	OutcomeDeleted     = "deleted"
	OutcomeWouldDelete = "would_delete"
	OutcomeFailed      = "failed"
	OutcomeSkipped     = "skipped"
)
