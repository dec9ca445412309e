package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sparkworks/sparkworks-backend/internal/config"
	"github.com/sparkworks/sparkworks-backend/internal/controllers"
	"github.com/sparkworks/sparkworks-backend/internal/engine"
	"github.com/sparkworks/sparkworks-backend/internal/middleware"
	"github.com/sparkworks/sparkworks-backend/internal/ws"
)

func Register(r *gin.Engine, eng *engine.Engine, hub *ws.Hub, cfg *config.Config, log *zap.Logger) {
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.ClientURL))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"timestamp":   time.Now().UTC(),
			"environment": cfg.AppEnv,
		})
	})
	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message":   "pong",
			"timestamp": time.Now().UTC(),
		})
	})

	checkinCtrl := &controllers.CheckinController{Engine: eng}
	interventionCtrl := &controllers.InterventionController{Engine: eng}
	studentCtrl := &controllers.StudentController{Engine: eng}

	api := r.Group("/api/v1")
	{
		api.POST("/daily/checkin", checkinCtrl.Submit)
		api.POST("/interventions/assign", interventionCtrl.Assign)
		api.POST("/interventions/complete", interventionCtrl.Complete)
		api.GET("/students/:student_id", studentCtrl.Get)
	}

	r.GET("/ws", ws.Handler(hub, eng, log))
}
