package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sparkworks/sparkworks-backend/internal/engine"
)

// respondError maps a domain error kind onto an HTTP status. Anything that is
// not a domain error is a 500 with no internals leaked.
func respondError(c *gin.Context, err error) {
	switch engine.KindOf(err) {
	case engine.KindValidation:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case engine.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case engine.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case engine.KindDependency:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "dependency unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
