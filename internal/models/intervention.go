package models

import "time"

// Intervention status values.
const (
	InterventionAssigned  = "assigned"
	InterventionCompleted = "completed"
)

// Intervention is a mentor-assigned remedial task. The latest row by
// AssignedAt is the student's active intervention while status is remedial.
type Intervention struct {
	ID          uint   `gorm:"primaryKey"`
	StudentID   string `gorm:"index"`
	Task        string
	MentorNotes *string
	Status      string `gorm:"index;default:assigned"`
	AssignedAt  time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
