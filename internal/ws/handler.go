package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins; the REST surface handles CORS.
		return true
	},
}

// Handler upgrades the connection and runs the client pumps until disconnect.
func Handler(hub *Hub, reporter CheatReporter, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hub == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "realtime not available"})
			return
		}
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := newClient(hub, conn, reporter, log)
		client.log.Info("websocket client connected")
		hub.register <- client

		go client.writePump()
		client.readPump()
		client.log.Info("websocket client disconnected")
	}
}
