package database

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sparkworks/sparkworks-backend/internal/models"
)

// SeedDemoStudent upserts the demo learner so a fresh environment has a
// usable student id immediately. Existing state (status, task, timestamps) is
// left alone on re-seed.
func SeedDemoStudent(db *gorm.DB, log *zap.Logger) error {
	var student models.Student
	err := db.Where("student_id = ?", "alice-2024").First(&student).Error
	if err == nil {
		student.Name = "Alice Johnson"
		student.Email = "alice@example.com"
		if err := db.Save(&student).Error; err != nil {
			return err
		}
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	student = models.Student{
		StudentID: "alice-2024",
		Name:      "Alice Johnson",
		Email:     "alice@example.com",
		Status:    models.StatusOnTrack,
	}
	if err := db.Create(&student).Error; err != nil {
		return err
	}
	log.Info("seeded demo student", zap.String("student_id", student.StudentID))
	return nil
}
