// Package lifecycle maintains the append-only status history of an issue and
// derives the stage timeline from it.
package lifecycle

import (
	"errors"
	"time"

	"muniboard-be/models"
)

var (
	ErrUnknownStatus = errors.New("unknown status")
	ErrSameStatus    = errors.New("status unchanged")
)

// Initialize forces the invariants of a freshly reported issue: status
// Pending, fixed color, defaulted priority, no contractor, and a history
// seeded with the creation entry.
func Initialize(issue *models.Issue, now time.Time) {
	issue.Status = models.Pending
	issue.StatusColor = models.Pending.Color()
	if !issue.Priority.Valid() {
		issue.Priority = models.Medium
	}
	issue.AssignedTo = nil
	issue.CreatedAt = now
	issue.UpdatedAt = now
	issue.StatusHistory = []models.StatusEntry{{Status: models.Pending, Timestamp: now}}
}

// AppendStatus returns a copy of the issue moved to newStatus. It rejects
// statuses outside the enum and equal consecutive statuses; earlier history
// entries are never touched.
func AppendStatus(issue models.Issue, newStatus models.IssueStatus, now time.Time) (models.Issue, error) {
	if !newStatus.Valid() {
		return issue, ErrUnknownStatus
	}
	if newStatus == issue.Status {
		return issue, ErrSameStatus
	}

	history := make([]models.StatusEntry, len(issue.StatusHistory), len(issue.StatusHistory)+1)
	copy(history, issue.StatusHistory)
	history = append(history, models.StatusEntry{Status: newStatus, Timestamp: now})

	issue.Status = newStatus
	issue.StatusColor = newStatus.Color()
	issue.UpdatedAt = now
	issue.StatusHistory = history
	return issue, nil
}

// Stage is one row of the timeline: a canonical status, whether the issue
// ever reached it, and how long it stayed there.
type Stage struct {
	Status          models.IssueStatus `json:"status"`
	Reached         bool               `json:"reached"`
	Timestamp       *time.Time         `json:"timestamp,omitempty"`
	DurationSeconds float64            `json:"duration_seconds"`
	Ongoing         bool               `json:"ongoing"`
}

// Timeline reconstructs the five canonical stages in fixed order. Each stage
// reflects its most recent history occurrence, so after a revert the
// re-entered stage shows the current visit, not the first. Duration is the
// time to the next history entry, or the ongoing time since the entry if it
// is the last one and the issue is not Closed.
func Timeline(issue models.Issue, now time.Time) []Stage {
	stages := make([]Stage, 0, len(models.StageOrder))
	for _, status := range models.StageOrder {
		stage := Stage{Status: status}
		for i := len(issue.StatusHistory) - 1; i >= 0; i-- {
			entry := issue.StatusHistory[i]
			if entry.Status != status {
				continue
			}
			ts := entry.Timestamp
			stage.Reached = true
			stage.Timestamp = &ts
			if i+1 < len(issue.StatusHistory) {
				stage.DurationSeconds = issue.StatusHistory[i+1].Timestamp.Sub(ts).Seconds()
			} else if issue.Status != models.Closed {
				stage.DurationSeconds = now.Sub(ts).Seconds()
				stage.Ongoing = true
			}
			break
		}
		stages = append(stages, stage)
	}
	return stages
}
