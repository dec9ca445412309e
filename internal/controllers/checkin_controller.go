package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sparkworks/sparkworks-backend/internal/engine"
)

type CheckinController struct {
	Engine *engine.Engine
}

type checkinRequest struct {
	StudentID            string `json:"studentId"`
	FocusMinutes         int    `json:"focusMinutes"`
	QuizScore            int    `json:"quizScore"`
	PageVisibilityEvents int    `json:"pageVisibilityEvents"`
	CheaterDetected      bool   `json:"cheaterDetected"`
}

// Submit handles POST /api/v1/daily/checkin.
func (cc *CheckinController) Submit(c *gin.Context) {
	var req checkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := cc.Engine.SubmitCheckin(c.Request.Context(), engine.CheckinInput{
		StudentID:            req.StudentID,
		FocusMinutes:         req.FocusMinutes,
		QuizScore:            req.QuizScore,
		PageVisibilityEvents: req.PageVisibilityEvents,
		CheaterDetected:      req.CheaterDetected,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  result.Status,
		"message": result.Message,
		"logId":   result.LogID,
	})
}
