package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sparkworks/sparkworks-backend/internal/config"
	"github.com/sparkworks/sparkworks-backend/internal/engine"
	"github.com/sparkworks/sparkworks-backend/internal/models"
	"github.com/sparkworks/sparkworks-backend/internal/routes"
	"github.com/sparkworks/sparkworks-backend/internal/ws"
)

func setupServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.Student{}, &models.DailyLog{}, &models.Intervention{}))

	log := zap.NewNop()
	hub := ws.NewHub(log)
	go hub.Run()

	eng := engine.New(db, hub, nil, log)

	r := gin.New()
	routes.Register(r, eng, hub, &config.Config{ClientURL: "*"}, log)
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckinEndpointSuccess(t *testing.T) {
	r, _ := setupServer(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/daily/checkin", gin.H{
		"studentId":    "alice-2024",
		"focusMinutes": 90,
		"quizScore":    9,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "on_track", resp["status"])
	assert.NotZero(t, resp["logId"])
}

func TestCheckinEndpointValidation(t *testing.T) {
	r, _ := setupServer(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/daily/checkin", gin.H{
		"focusMinutes": 90,
		"quizScore":    9,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInterventionEndpointsFullFlow(t *testing.T) {
	r, db := setupServer(t)
	require.NoError(t, db.Create(&models.Student{StudentID: "alice-2024", Status: models.StatusOnTrack}).Error)

	// Failing check-in locks the student.
	w := doJSON(t, r, http.MethodPost, "/api/v1/daily/checkin", gin.H{
		"studentId":    "alice-2024",
		"focusMinutes": 30,
		"quizScore":    5,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var checkin map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checkin))
	assert.Equal(t, "needs_intervention", checkin["status"])

	// Mentor assigns a task.
	w = doJSON(t, r, http.MethodPost, "/api/v1/interventions/assign", gin.H{
		"studentId": "alice-2024",
		"task":      "Review chapter 3",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var assign struct {
		Data struct {
			InterventionID uint   `json:"interventionId"`
			Status         string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &assign))
	assert.Equal(t, "remedial", assign.Data.Status)

	// Completion unlocks.
	w = doJSON(t, r, http.MethodPost, "/api/v1/interventions/complete", gin.H{
		"studentId":      "alice-2024",
		"interventionId": assign.Data.InterventionID,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Completing again conflicts.
	w = doJSON(t, r, http.MethodPost, "/api/v1/interventions/complete", gin.H{
		"studentId":      "alice-2024",
		"interventionId": assign.Data.InterventionID,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Snapshot reflects the final state.
	w = doJSON(t, r, http.MethodGet, "/api/v1/students/alice-2024", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var snapshot struct {
		Data struct {
			Status             string  `json:"status"`
			CurrentTask        *string `json:"currentTask"`
			LatestIntervention *struct {
				Status string `json:"status"`
			} `json:"latestIntervention"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Equal(t, "on_track", snapshot.Data.Status)
	assert.Nil(t, snapshot.Data.CurrentTask)
	require.NotNil(t, snapshot.Data.LatestIntervention)
	assert.Equal(t, "completed", snapshot.Data.LatestIntervention.Status)
}

func TestAssignEndpointUnknownStudent(t *testing.T) {
	r, _ := setupServer(t)
	w := doJSON(t, r, http.MethodPost, "/api/v1/interventions/assign", gin.H{
		"studentId": "nobody",
		"task":      "Review chapter 3",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStudentEndpointUnknown(t *testing.T) {
	r, _ := setupServer(t)
	w := doJSON(t, r, http.MethodGet, "/api/v1/students/nobody", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndPing(t *testing.T) {
	r, _ := setupServer(t)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/api/ping", nil).Code)
}
