package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sparkworks/sparkworks-backend/internal/engine"
)

type InterventionController struct {
	Engine *engine.Engine
}

type assignRequest struct {
	StudentID   string `json:"studentId"`
	Task        string `json:"task"`
	MentorNotes string `json:"mentorNotes"`
}

// Assign handles POST /api/v1/interventions/assign.
func (ic *InterventionController) Assign(c *gin.Context) {
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ic.Engine.AssignIntervention(c.Request.Context(), req.StudentID, req.Task, req.MentorNotes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"interventionId": result.InterventionID,
			"studentId":      result.StudentID,
			"task":           result.Task,
			"status":         result.Status,
			"assignedAt":     result.AssignedAt,
		},
	})
}

type completeRequest struct {
	StudentID      string `json:"studentId"`
	InterventionID uint   `json:"interventionId"`
}

// Complete handles POST /api/v1/interventions/complete.
func (ic *InterventionController) Complete(c *gin.Context) {
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := ic.Engine.CompleteIntervention(c.Request.Context(), req.StudentID, req.InterventionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"studentId":      result.StudentID,
			"interventionId": result.InterventionID,
			"status":         result.Status,
			"completedAt":    result.CompletedAt,
			"unlockedAt":     result.UnlockedAt,
		},
	})
}
