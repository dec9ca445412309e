package ws

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// CheatReporter records an out-of-band cheat signal. Implemented by the
// transition engine; the signal biases the next evaluation without driving a
// transition itself.
type CheatReporter interface {
	ReportCheatSignal(ctx context.Context, studentID, reason string) (bool, error)
}

// inboundMessage is what clients send over the socket: a room subscription or
// a cheat signal.
type inboundMessage struct {
	Type      string `json:"type"`
	StudentID string `json:"student_id"`
	Reason    string `json:"reason"`
}

type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	id       string
	reporter CheatReporter
	log      *zap.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, reporter CheatReporter, log *zap.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		id:       id,
		reporter: reporter,
		log:      log.With(zap.String("conn_id", id)),
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}
		c.handleMessage(data)
	}
}

// handleMessage dispatches one inbound frame. Malformed frames are dropped
// with a warning; they never close the connection.
func (c *Client) handleMessage(data []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.log.Warn("dropping malformed socket message", zap.Error(err))
		return
	}
	studentID := strings.TrimSpace(msg.StudentID)
	switch msg.Type {
	case "subscribe":
		if studentID == "" {
			c.log.Warn("subscribe received without student_id")
			return
		}
		c.hub.subscribe <- subscription{client: c, studentID: studentID}
	case "cheater":
		if studentID == "" {
			c.log.Warn("cheater event received without student_id")
			return
		}
		reason := strings.TrimSpace(msg.Reason)
		if reason == "" {
			reason = "unknown"
		}
		accepted, err := c.reporter.ReportCheatSignal(context.Background(), studentID, reason)
		if err != nil {
			c.log.Warn("failed to record cheat signal",
				zap.String("student_id", studentID),
				zap.String("reason", reason),
				zap.Error(err))
			return
		}
		c.log.Info("cheat signal received",
			zap.String("student_id", studentID),
			zap.String("reason", reason),
			zap.Bool("accepted", accepted))
	default:
		c.log.Warn("dropping socket message with unknown type", zap.String("type", msg.Type))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			if _, err := w.Write(msg); err != nil {
				return
			}
			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
