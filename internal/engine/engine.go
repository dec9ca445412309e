package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sparkworks/sparkworks-backend/internal/evaluation"
	"github.com/sparkworks/sparkworks-backend/internal/models"
	"github.com/sparkworks/sparkworks-backend/internal/webhook"
	"github.com/sparkworks/sparkworks-backend/internal/ws"
)

// Notifier fans a committed transition out to live subscribers. Implemented
// by ws.Hub; injected so the realtime layer can be swapped or faked.
type Notifier interface {
	NotifyStudent(studentID string, msg ws.StatusMessage)
	BroadcastCheat(evt ws.CheatEvent)
}

// FailureNotifier dispatches the best-effort failure webhook.
type FailureNotifier interface {
	Enabled() bool
	SendAsync(payload webhook.FailurePayload)
}

// Engine is the single write path for student state. Every event runs inside
// one transaction, serialized per student, and notifications are dispatched
// only after the transaction commits; a lost notification never leaves the
// store half-applied, and a failed store write never notifies.
type Engine struct {
	db       *gorm.DB
	notifier Notifier
	webhooks FailureNotifier
	log      *zap.Logger

	locks sync.Map // student id -> *sync.Mutex
}

func New(db *gorm.DB, notifier Notifier, webhooks FailureNotifier, log *zap.Logger) *Engine {
	return &Engine{
		db:       db,
		notifier: notifier,
		webhooks: webhooks,
		log:      log,
	}
}

// lockStudent serializes writes for one student. Events for different
// students proceed in parallel.
func (e *Engine) lockStudent(studentID string) func() {
	v, _ := e.locks.LoadOrStore(studentID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

type CheckinInput struct {
	StudentID            string
	FocusMinutes         int
	QuizScore            int
	PageVisibilityEvents int
	CheaterDetected      bool
}

type CheckinResult struct {
	Status  string
	Message string
	LogID   uint
}

// SubmitCheckin scores a daily check-in and applies the resulting transition.
// A check-in is authoritative regardless of the student's current status: a
// success always lands on on_track (even out of remedial, without requiring
// task completion) and a failure always lands on needs_intervention. The
// student row is created on first check-in.
func (e *Engine) SubmitCheckin(ctx context.Context, in CheckinInput) (*CheckinResult, error) {
	studentID := strings.TrimSpace(in.StudentID)
	if studentID == "" {
		return nil, validationErr("studentId is required")
	}
	if in.FocusMinutes < 0 {
		return nil, validationErr("focusMinutes must be >= 0")
	}
	if in.QuizScore < 0 || in.QuizScore > 10 {
		return nil, validationErr("quizScore must be between 0 and 10")
	}
	if in.PageVisibilityEvents < 0 {
		return nil, validationErr("pageVisibilityEvents must be >= 0")
	}

	verdict := evaluation.Evaluate(in.FocusMinutes, in.QuizScore, in.CheaterDetected)

	unlock := e.lockStudent(studentID)
	defer unlock()

	var entry models.DailyLog
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.Where("student_id = ?", studentID).First(&student).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return dependencyErr("failed to read student", err)
			}
			student = models.Student{StudentID: studentID, Status: models.StatusOnTrack}
			if err := tx.Create(&student).Error; err != nil {
				return dependencyErr("failed to create student", err)
			}
		}

		entry = models.DailyLog{
			StudentID:            studentID,
			FocusMinutes:         in.FocusMinutes,
			QuizScore:            in.QuizScore,
			PageVisibilityEvents: in.PageVisibilityEvents,
			CheaterDetected:      in.CheaterDetected,
			IsSuccess:            verdict.IsSuccess,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return dependencyErr("failed to append daily log", err)
		}

		now := time.Now().UTC()
		if verdict.IsSuccess {
			student.Status = models.StatusOnTrack
			student.CurrentTask = nil
			student.LastCheckinAt = &now
		} else {
			student.Status = models.StatusNeedsIntervention
			student.CurrentTask = nil
			student.LockedAt = &now
		}
		if err := tx.Save(&student).Error; err != nil {
			return dependencyErr("failed to update student", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logID := entry.ID
	if verdict.IsSuccess {
		e.notifier.NotifyStudent(studentID, ws.StatusMessage{
			Status:  models.StatusOnTrack,
			Message: "Great job! You're on track.",
			LogID:   &logID,
		})
		return &CheckinResult{
			Status:  models.StatusOnTrack,
			Message: "Check-in successful",
			LogID:   logID,
		}, nil
	}

	e.log.Info("check-in failed evaluation",
		zap.String("student_id", studentID),
		zap.Uint("log_id", logID),
		zap.Strings("reasons", verdict.Reasons))

	if e.webhooks != nil && e.webhooks.Enabled() {
		e.webhooks.SendAsync(webhook.FailurePayload{
			StudentID:       studentID,
			FocusMinutes:    in.FocusMinutes,
			QuizScore:       in.QuizScore,
			CheaterDetected: in.CheaterDetected,
			Reason:          strings.Join(verdict.Reasons, "; "),
			LogID:           logID,
		})
	}

	e.notifier.NotifyStudent(studentID, ws.StatusMessage{
		Status:  models.StatusNeedsIntervention,
		Message: "Analysis in progress. Waiting for mentor...",
		LogID:   &logID,
	})
	return &CheckinResult{
		Status:  models.StatusNeedsIntervention,
		Message: "Analysis in progress. Waiting for mentor...",
		LogID:   logID,
	}, nil
}

type AssignResult struct {
	InterventionID uint
	StudentID      string
	Task           string
	Status         string
	AssignedAt     time.Time
}

// AssignIntervention records a mentor-assigned remedial task and moves the
// student to remedial.
func (e *Engine) AssignIntervention(ctx context.Context, studentID, task, mentorNotes string) (*AssignResult, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, validationErr("studentId is required")
	}
	task = strings.TrimSpace(task)
	if task == "" {
		return nil, validationErr("task must be a non-empty string")
	}
	var notes *string
	if trimmed := strings.TrimSpace(mentorNotes); trimmed != "" {
		notes = &trimmed
	}

	unlock := e.lockStudent(studentID)
	defer unlock()

	var intervention models.Intervention
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.Where("student_id = ?", studentID).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("no student found with student_id %s", studentID)
			}
			return dependencyErr("failed to read student", err)
		}

		intervention = models.Intervention{
			StudentID:   studentID,
			Task:        task,
			MentorNotes: notes,
			Status:      models.InterventionAssigned,
			AssignedAt:  time.Now().UTC(),
		}
		if err := tx.Create(&intervention).Error; err != nil {
			return dependencyErr("failed to create intervention", err)
		}

		student.Status = models.StatusRemedial
		student.CurrentTask = &task
		if err := tx.Save(&student).Error; err != nil {
			return dependencyErr("failed to update student", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ivID := intervention.ID
	assignedAt := intervention.AssignedAt
	e.notifier.NotifyStudent(studentID, ws.StatusMessage{
		Type:           "intervention_assigned",
		Status:         models.StatusRemedial,
		CurrentTask:    &task,
		InterventionID: &ivID,
		AssignedAt:     &assignedAt,
		MentorNotes:    notes,
	})
	return &AssignResult{
		InterventionID: ivID,
		StudentID:      studentID,
		Task:           task,
		Status:         models.StatusRemedial,
		AssignedAt:     assignedAt,
	}, nil
}

type CompleteResult struct {
	StudentID      string
	InterventionID uint
	Status         string
	CompletedAt    time.Time
	UnlockedAt     time.Time
}

// CompleteIntervention marks an assigned intervention completed and unlocks
// the student. Completing an unknown or foreign intervention is a not-found
// error; completing one twice is a conflict and leaves UnlockedAt untouched.
func (e *Engine) CompleteIntervention(ctx context.Context, studentID string, interventionID uint) (*CompleteResult, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, validationErr("studentId is required")
	}
	if interventionID == 0 {
		return nil, validationErr("interventionId is required")
	}

	unlock := e.lockStudent(studentID)
	defer unlock()

	var completedAt, unlockedAt time.Time
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var student models.Student
		if err := tx.Where("student_id = ?", studentID).First(&student).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("no student found with student_id %s", studentID)
			}
			return dependencyErr("failed to read student", err)
		}

		var intervention models.Intervention
		if err := tx.Where("id = ? AND student_id = ?", interventionID, studentID).First(&intervention).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("no intervention found with id %d for student %s", interventionID, studentID)
			}
			return dependencyErr("failed to read intervention", err)
		}
		if intervention.Status == models.InterventionCompleted {
			return conflictErr("intervention %d has already been completed", interventionID)
		}

		now := time.Now().UTC()
		completedAt = now
		unlockedAt = now

		intervention.Status = models.InterventionCompleted
		intervention.CompletedAt = &completedAt
		if err := tx.Save(&intervention).Error; err != nil {
			return dependencyErr("failed to update intervention", err)
		}

		student.Status = models.StatusOnTrack
		student.CurrentTask = nil
		student.UnlockedAt = &unlockedAt
		if err := tx.Save(&student).Error; err != nil {
			return dependencyErr("failed to update student", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ivID := interventionID
	e.notifier.NotifyStudent(studentID, ws.StatusMessage{
		Type:           "task_completed",
		Status:         models.StatusOnTrack,
		InterventionID: &ivID,
		CompletedAt:    &completedAt,
		UnlockedAt:     &unlockedAt,
	})
	return &CompleteResult{
		StudentID:      studentID,
		InterventionID: interventionID,
		Status:         models.StatusOnTrack,
		CompletedAt:    completedAt,
		UnlockedAt:     unlockedAt,
	}, nil
}

// ReportCheatSignal patches the student's most recent check-in row so the
// next evaluation sees the cheat flag, and broadcasts the event to all
// connected clients. It never fabricates a check-in row and never transitions
// state by itself: accepted is false when no row exists yet. The broadcast
// goes out regardless, so monitoring surfaces react immediately.
func (e *Engine) ReportCheatSignal(ctx context.Context, studentID, reason string) (bool, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return false, validationErr("studentId is required")
	}
	if strings.TrimSpace(reason) == "" {
		reason = "unknown"
	}

	defer e.notifier.BroadcastCheat(ws.CheatEvent{
		StudentID: studentID,
		Reason:    reason,
	})

	unlock := e.lockStudent(studentID)
	defer unlock()

	var latest models.DailyLog
	err := e.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC, id DESC").
		First(&latest).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			e.log.Warn("cheat signal with no check-in to patch",
				zap.String("student_id", studentID),
				zap.String("reason", reason))
			return false, nil
		}
		return false, dependencyErr("failed to read latest daily log", err)
	}

	err = e.db.WithContext(ctx).Model(&models.DailyLog{}).
		Where("id = ?", latest.ID).
		Updates(map[string]any{
			"page_visibility_events": gorm.Expr("page_visibility_events + 1"),
			"cheater_detected":       true,
		}).Error
	if err != nil {
		return false, dependencyErr("failed to patch latest daily log", err)
	}

	e.log.Info("cheat signal recorded",
		zap.String("student_id", studentID),
		zap.String("reason", reason),
		zap.Uint("log_id", latest.ID))
	return true, nil
}

type InterventionView struct {
	ID          uint       `json:"id"`
	Task        string     `json:"task"`
	MentorNotes *string    `json:"mentorNotes"`
	Status      string     `json:"status"`
	AssignedAt  time.Time  `json:"assignedAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

type StudentSnapshot struct {
	StudentID          string            `json:"studentId"`
	Name               string            `json:"name,omitempty"`
	Status             string            `json:"status"`
	CurrentTask        *string           `json:"currentTask"`
	LastCheckinAt      *time.Time        `json:"lastCheckinAt"`
	LockedAt           *time.Time        `json:"lockedAt"`
	UnlockedAt         *time.Time        `json:"unlockedAt"`
	LatestIntervention *InterventionView `json:"latestIntervention"`
}

// GetStudent returns the student's current state and latest intervention.
// Reconnecting clients call this to resync, since missed room events are not
// replayed.
func (e *Engine) GetStudent(ctx context.Context, studentID string) (*StudentSnapshot, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, validationErr("studentId is required")
	}

	var student models.Student
	if err := e.db.WithContext(ctx).Where("student_id = ?", studentID).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("no student found with student_id %s", studentID)
		}
		return nil, dependencyErr("failed to read student", err)
	}

	snapshot := &StudentSnapshot{
		StudentID:     student.StudentID,
		Name:          student.Name,
		Status:        student.Status,
		CurrentTask:   student.CurrentTask,
		LastCheckinAt: student.LastCheckinAt,
		LockedAt:      student.LockedAt,
		UnlockedAt:    student.UnlockedAt,
	}

	var intervention models.Intervention
	err := e.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("assigned_at DESC, id DESC").
		First(&intervention).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return snapshot, nil
		}
		return nil, dependencyErr("failed to read latest intervention", err)
	}
	snapshot.LatestIntervention = &InterventionView{
		ID:          intervention.ID,
		Task:        intervention.Task,
		MentorNotes: intervention.MentorNotes,
		Status:      intervention.Status,
		AssignedAt:  intervention.AssignedAt,
		CompletedAt: intervention.CompletedAt,
	}
	return snapshot, nil
}
