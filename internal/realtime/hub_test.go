package realtime

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

func mustTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func recvMessage(t *testing.T, ch <-chan SSEMessage, timeout time.Duration) SSEMessage {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(timeout):
		t.Fatalf("timed out waiting for SSE message")
	}
	return SSEMessage{}
}

func TestSSEHubReconnectAndOrdering(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	channel := uuid.New().String()

	clientA := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientA, channel)

	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventProgressUpdated, Data: map[string]any{"seq": 1}})
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventStreakUpdated, Data: map[string]any{"seq": 2}})

	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventProgressUpdated {
		t.Fatalf("first event: want=%s got=%s", SSEEventProgressUpdated, got.Event)
	}
	if got := recvMessage(t, clientA.Outbound, time.Second); got.Event != SSEEventStreakUpdated {
		t.Fatalf("second event: want=%s got=%s", SSEEventStreakUpdated, got.Event)
	}

	hub.CloseClient(clientA)
	hub.CloseClient(clientA)
	select {
	case _, ok := <-clientA.Outbound:
		if ok {
			t.Fatalf("clientA outbound should be closed after disconnect")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for clientA channel close")
	}
	if n := hub.Subscribers(channel); n != 0 {
		t.Fatalf("subscribers after close: want=0 got=%d", n)
	}

	clientB := hub.NewSSEClient(uuid.New())
	hub.AddChannel(clientB, channel)
	hub.Broadcast(SSEMessage{Channel: channel, Event: SSEEventAchievementEarned})
	if got := recvMessage(t, clientB.Outbound, time.Second); got.Event != SSEEventAchievementEarned {
		t.Fatalf("reconnect event: want=%s got=%s", SSEEventAchievementEarned, got.Event)
	}
}

func TestSSEHubChannelIsolation(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	mine := hub.NewSSEClient(uuid.New())
	other := hub.NewSSEClient(uuid.New())
	hub.AddChannel(mine, mine.UserID.String())
	hub.AddChannel(other, other.UserID.String())

	hub.Broadcast(SSEMessage{Channel: mine.UserID.String(), Event: SSEEventProgressUpdated})
	recvMessage(t, mine.Outbound, time.Second)

	select {
	case msg := <-other.Outbound:
		t.Fatalf("other user received %s", msg.Event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSSEHubDropsWhenBufferFull(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	client := hub.NewSSEClient(uuid.New())
	ch := client.UserID.String()
	hub.AddChannel(client, ch)

	for i := 0; i < outboundBuffer+5; i++ {
		hub.Broadcast(SSEMessage{Channel: ch, Event: SSEEventProgressUpdated, Data: i})
	}
	if got := len(client.Outbound); got != outboundBuffer {
		t.Fatalf("buffered: want=%d got=%d", outboundBuffer, got)
	}
}

func TestSSEHubCloseAll(t *testing.T) {
	hub := NewSSEHub(mustTestLogger(t))
	a := hub.NewSSEClient(uuid.New())
	b := hub.NewSSEClient(uuid.New())
	hub.AddChannel(a, a.UserID.String())
	hub.AddChannel(b, b.UserID.String())

	hub.CloseAll()

	if n := hub.Subscribers(a.UserID.String()); n != 0 {
		t.Fatalf("subscribers after CloseAll: want=0 got=%d", n)
	}
	select {
	case <-a.done:
	default:
		t.Fatal("client a not closed")
	}
	hub.CloseAll()
}
