package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sparkworks/sparkworks-backend/internal/engine"
)

type StudentController struct {
	Engine *engine.Engine
}

// Get handles GET /api/v1/students/:student_id. Clients call this after
// reconnecting to resync, since missed room events are not replayed.
func (sc *StudentController) Get(c *gin.Context) {
	snapshot, err := sc.Engine.GetStudent(c.Request.Context(), c.Param("student_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    snapshot,
	})
}
