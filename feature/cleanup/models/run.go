package models

import "time"

// CleanupRun records one apply of a cleanup plan, including dry runs and failures.
type CleanupRun struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Destination  string    `gorm:"size:512;index;not null" json:"destination"`
	Source       string    `gorm:"size:64" json:"source"`
	Origin       string    `gorm:"size:128" json:"origin"` // cli, or http:<ray id>
	DryRun       bool      `json:"dry_run"`
	Outcome      string    `gorm:"size:16;index" json:"outcome"`
	Obsolete     int       `json:"obsolete"`
	Removed      int       `json:"removed"`
	ReclaimBytes int64     `json:"reclaim_bytes"` // bytes actually removed
	Error        string    `gorm:"size:1024" json:"error,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
}

// TableName overrides the default table name.
func (CleanupRun) TableName() string {
	return "cleanup_runs"
}

// Duration returns the wall time of the run.
func (r CleanupRun) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
