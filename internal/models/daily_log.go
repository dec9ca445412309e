package models

import "time"

// DailyLog is an append-only check-in record. Rows are immutable once written,
// with one exception: the cheat side-channel increments PageVisibilityEvents
// and sets CheaterDetected on the student's most recent row.
type DailyLog struct {
	ID                   uint   `gorm:"primaryKey"`
	StudentID            string `gorm:"index"`
	FocusMinutes         int
	QuizScore            int
	PageVisibilityEvents int
	CheaterDetected      bool
	IsSuccess            bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}
