package stream

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsFixture upgrades incoming connections and parks them on the hub as the
// given user.
func wsFixture(t *testing.T, hub *Hub, userID string) (*httptest.Server, *websocket.Conn) {
	t.Helper()

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		hub.Subscribe(userID, conn)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	return server, conn
}

func waitForConnections(t *testing.T, hub *Hub, userID string, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.Connections(userID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d connections for %s, got %d", want, userID, hub.Connections(userID))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	hub := NewHub(nil)
	_, conn := wsFixture(t, hub, "usr_1")
	defer conn.Close()
	waitForConnections(t, hub, "usr_1", 1)

	hub.Publish("usr_1", Event{Kind: EventJobUpdate, JobID: "job_1"})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if event.Kind != EventJobUpdate || event.JobID != "job_1" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Timestamp.IsZero() {
		t.Fatalf("expected a timestamp to be stamped on publish")
	}

	conn.Close()
	waitForConnections(t, hub, "usr_1", 0)
}

func TestPublishIsScopedToUser(t *testing.T) {
	hub := NewHub(nil)
	_, conn1 := wsFixture(t, hub, "usr_1")
	defer conn1.Close()
	_, conn2 := wsFixture(t, hub, "usr_2")
	defer conn2.Close()
	waitForConnections(t, hub, "usr_1", 1)
	waitForConnections(t, hub, "usr_2", 1)

	hub.Publish("usr_1", Event{Kind: EventNotification})

	conn1.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn1.ReadMessage(); err != nil {
		t.Fatalf("usr_1 should receive the event: %v", err)
	}

	conn2.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := conn2.ReadMessage(); err == nil {
		t.Fatalf("usr_2 must not receive usr_1's event")
	}
}

func TestPublishWithNoSubscribersIsSafe(t *testing.T) {
	hub := NewHub(nil)
	// Must not panic or block
	hub.Publish("usr_ghost", Event{Kind: EventMessage})
	if hub.Connections("usr_ghost") != 0 {
		t.Fatalf("expected no connections")
	}
}
