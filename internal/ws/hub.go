package ws

import (
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

// StatusMessage is pushed to the student's room after a committed transition.
type StatusMessage struct {
	Type           string     `json:"type,omitempty"`
	Status         string     `json:"status"`
	Message        string     `json:"message,omitempty"`
	CurrentTask    *string    `json:"currentTask,omitempty"`
	LogID          *uint      `json:"logId,omitempty"`
	InterventionID *uint      `json:"interventionId,omitempty"`
	AssignedAt     *time.Time `json:"assignedAt,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	UnlockedAt     *time.Time `json:"unlockedAt,omitempty"`
	MentorNotes    *string    `json:"mentorNotes,omitempty"`
	Timestamp      time.Time  `json:"timestamp"`
}

// CheatEvent is broadcast to every connected client so monitoring surfaces
// see cheat signals immediately, without waiting for the next evaluation.
type CheatEvent struct {
	Type      string    `json:"type"`
	StudentID string    `json:"student_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

type subscribedAck struct {
	Type      string    `json:"type"`
	Room      string    `json:"room"`
	StudentID string    `json:"studentId"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type subscription struct {
	client    *Client
	studentID string
}

type roomMessage struct {
	room    string
	payload []byte
}

// RoomName returns the room a student's live updates are published to.
func RoomName(studentID string) string {
	return "student_" + studentID
}

// Hub owns room membership for live student-status subscribers. Membership is
// process-local and rebuilt from zero on restart; clients re-subscribe after
// reconnecting and missed events are never replayed.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	publish    chan roomMessage
	broadcast  chan []byte

	rooms   map[string]map[*Client]struct{}
	members map[*Client]map[string]struct{}

	log *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		publish:    make(chan roomMessage, 256),
		broadcast:  make(chan []byte, 256),
		rooms:      make(map[string]map[*Client]struct{}),
		members:    make(map[*Client]map[string]struct{}),
		log:        log,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			if _, ok := h.members[client]; !ok {
				h.members[client] = make(map[string]struct{})
			}
		case client := <-h.unregister:
			h.drop(client)
		case sub := <-h.subscribe:
			h.join(sub.client, sub.studentID)
		case msg := <-h.publish:
			// A room with no members is a no-op, not an error.
			for client := range h.rooms[msg.room] {
				h.deliver(client, msg.payload)
			}
		case payload := <-h.broadcast:
			for client := range h.members {
				h.deliver(client, payload)
			}
		}
	}
}

// join is idempotent: subscribing twice to the same student leaves the
// membership unchanged.
func (h *Hub) join(client *Client, studentID string) {
	room := RoomName(studentID)
	if _, ok := h.members[client]; !ok {
		h.members[client] = make(map[string]struct{})
	}
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][client] = struct{}{}
	h.members[client][room] = struct{}{}

	h.log.Info("client joined room",
		zap.String("conn_id", client.id),
		zap.String("room", room))

	ack, err := json.Marshal(subscribedAck{
		Type:      "subscribed",
		Room:      room,
		StudentID: studentID,
		Message:   "Subscribed to real-time updates",
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	h.deliver(client, ack)
}

func (h *Hub) drop(client *Client) {
	joined, ok := h.members[client]
	if !ok {
		return
	}
	for room := range joined {
		delete(h.rooms[room], client)
		if len(h.rooms[room]) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.members, client)
	close(client.send)
	if client.conn != nil {
		client.conn.Close()
	}
}

func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		h.drop(client)
	}
}

// NotifyStudent publishes msg to the student's room, stamping the server
// timestamp. Delivery is best-effort and at-most-once per connected member.
func (h *Hub) NotifyStudent(studentID string, msg StatusMessage) {
	if h == nil {
		return
	}
	id := strings.TrimSpace(studentID)
	if id == "" {
		h.log.Warn("notify called without student id")
		return
	}
	msg.Timestamp = time.Now().UTC()
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal status message", zap.Error(err))
		return
	}
	h.publish <- roomMessage{room: RoomName(id), payload: data}
}

// BroadcastCheat sends evt to every connected client, regardless of room.
func (h *Hub) BroadcastCheat(evt CheatEvent) {
	if h == nil {
		return
	}
	evt.Type = "cheater_event"
	evt.Timestamp = time.Now().UTC()
	data, err := json.Marshal(evt)
	if err != nil {
		h.log.Error("failed to marshal cheat event", zap.Error(err))
		return
	}
	h.broadcast <- data
}
