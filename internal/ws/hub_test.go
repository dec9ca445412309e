package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub() *Hub {
	h := NewHub(zap.NewNop())
	go h.Run()
	return h
}

func newTestClient(h *Hub) *Client {
	c := &Client{
		hub:  h,
		send: make(chan []byte, sendBufferSize),
		id:   "test",
		log:  zap.NewNop(),
	}
	h.register <- c
	return c
}

func joinRoom(t *testing.T, h *Hub, c *Client, studentID string) {
	t.Helper()
	h.subscribe <- subscription{client: c, studentID: studentID}
	ack := recv(t, c)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(ack, &parsed))
	require.Equal(t, "subscribed", parsed["type"])
	require.Equal(t, RoomName(studentID), parsed["room"])
}

func recv(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func assertNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message: %s", msg)
	default:
	}
}

func TestNotifyStudentReachesRoom(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)
	joinRoom(t, h, c, "alice-2024")

	h.NotifyStudent("alice-2024", StatusMessage{Status: "on_track", Message: "Great job! You're on track."})

	var got StatusMessage
	require.NoError(t, json.Unmarshal(recv(t, c), &got))
	assert.Equal(t, "on_track", got.Status)
	assert.False(t, got.Timestamp.IsZero(), "payload must carry a server timestamp")
}

func TestRoomIsolation(t *testing.T) {
	h := newTestHub()
	cA := newTestClient(h)
	cB := newTestClient(h)
	joinRoom(t, h, cA, "alice-2024")
	joinRoom(t, h, cB, "bob-2024")

	h.NotifyStudent("alice-2024", StatusMessage{Status: "needs_intervention"})

	recv(t, cA)
	// The publish was fully processed once cA saw it; a delivery to cB
	// would have happened in the same loop iteration.
	assertNoMessage(t, cB)
}

func TestSubscribeIsIdempotent(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)
	joinRoom(t, h, c, "alice-2024")
	joinRoom(t, h, c, "alice-2024")

	h.NotifyStudent("alice-2024", StatusMessage{Status: "on_track"})

	recv(t, c)
	assertNoMessage(t, c)
}

func TestDisconnectRemovesMembership(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)
	joinRoom(t, h, c, "alice-2024")

	h.unregister <- c

	// Channel is closed once the hub drops the client.
	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}

	// Publishing to the now-empty room is a no-op.
	h.NotifyStudent("alice-2024", StatusMessage{Status: "on_track"})
}

func TestReconnectReceivesOnlyFutureEvents(t *testing.T) {
	h := newTestHub()
	c1 := newTestClient(h)
	joinRoom(t, h, c1, "alice-2024")

	h.NotifyStudent("alice-2024", StatusMessage{Status: "needs_intervention", Message: "first"})
	recv(t, c1)

	h.unregister <- c1

	// Published while disconnected; must not be replayed.
	h.NotifyStudent("alice-2024", StatusMessage{Status: "remedial", Message: "missed"})

	c2 := newTestClient(h)
	joinRoom(t, h, c2, "alice-2024")
	h.NotifyStudent("alice-2024", StatusMessage{Status: "on_track", Message: "third"})

	var got StatusMessage
	require.NoError(t, json.Unmarshal(recv(t, c2), &got))
	assert.Equal(t, "third", got.Message)
	assertNoMessage(t, c2)
}

func TestBroadcastCheatReachesAllClients(t *testing.T) {
	h := newTestHub()
	cA := newTestClient(h)
	cB := newTestClient(h)
	joinRoom(t, h, cA, "alice-2024")
	// cB has no room at all; broadcasts are not room-scoped.

	h.BroadcastCheat(CheatEvent{StudentID: "alice-2024", Reason: "tab_switch"})

	var got CheatEvent
	require.NoError(t, json.Unmarshal(recv(t, cA), &got))
	assert.Equal(t, "cheater_event", got.Type)
	assert.Equal(t, "tab_switch", got.Reason)

	require.NoError(t, json.Unmarshal(recv(t, cB), &got))
	assert.Equal(t, "alice-2024", got.StudentID)
}

func TestNotifyWithEmptyStudentIDIsDropped(t *testing.T) {
	h := newTestHub()
	c := newTestClient(h)
	joinRoom(t, h, c, "alice-2024")

	h.NotifyStudent("   ", StatusMessage{Status: "on_track"})
	assertNoMessage(t, c)
}
