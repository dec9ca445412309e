package models

import "time"

// Student status values. A student is in exactly one of these at any time.
const (
	StatusOnTrack           = "on_track"
	StatusNeedsIntervention = "needs_intervention"
	StatusRemedial          = "remedial"
)

// Student is the authoritative per-learner state row. One row per student_id;
// CurrentTask is set only while the student is remedial.
type Student struct {
	ID            uint   `gorm:"primaryKey"`
	StudentID     string `gorm:"uniqueIndex"`
	Name          string
	Email         string
	Status        string `gorm:"index;default:on_track"`
	CurrentTask   *string
	LastCheckinAt *time.Time
	LockedAt      *time.Time
	UnlockedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
