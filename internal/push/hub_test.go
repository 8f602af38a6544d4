package push

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
)

func newHubServer(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(8, zap.NewNop())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, r.URL.Query().Get("user_id"))
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)
	return hub, srv
}

func dialHub(t *testing.T, srv *httptest.Server, userID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	if userID != "" {
		url += "?user_id=" + userID
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != want {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.Clients(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return ev
}

func TestBroadcastReachesEveryClient(t *testing.T) {
	hub, srv := newHubServer(t)

	a := dialHub(t, srv, "alice")
	defer a.Close(websocket.StatusNormalClosure, "")
	b := dialHub(t, srv, "")
	defer b.Close(websocket.StatusNormalClosure, "")
	waitClients(t, hub, 2)

	hub.Broadcast(EventMatchesUpdate, map[string]int{"matches": 3})

	for _, conn := range []*websocket.Conn{a, b} {
		ev := readEvent(t, conn)
		if ev.Event != EventMatchesUpdate {
			t.Fatalf("event = %q, want %q", ev.Event, EventMatchesUpdate)
		}
		if ev.TS == 0 {
			t.Fatalf("timestamp missing")
		}
	}
}

func TestToUserTargetsOnlyThatUser(t *testing.T) {
	hub, srv := newHubServer(t)

	alice := dialHub(t, srv, "alice")
	defer alice.Close(websocket.StatusNormalClosure, "")
	bob := dialHub(t, srv, "bob")
	defer bob.Close(websocket.StatusNormalClosure, "")
	waitClients(t, hub, 2)

	hub.ToUser("alice", EventPortfolioUpdate, map[string]string{"userId": "alice"})
	hub.Broadcast(EventMarketsUpdate, nil)

	// Alice sees her private event first, then the broadcast. Bob's first
	// frame is the broadcast: the private event never reached him.
	if ev := readEvent(t, alice); ev.Event != EventPortfolioUpdate {
		t.Fatalf("alice first event = %q, want %q", ev.Event, EventPortfolioUpdate)
	}
	if ev := readEvent(t, alice); ev.Event != EventMarketsUpdate {
		t.Fatalf("alice second event = %q, want %q", ev.Event, EventMarketsUpdate)
	}
	if ev := readEvent(t, bob); ev.Event != EventMarketsUpdate {
		t.Fatalf("bob first event = %q, want %q", ev.Event, EventMarketsUpdate)
	}
}

func TestCloseDisconnectsAndRefusesNewClients(t *testing.T) {
	hub, srv := newHubServer(t)

	conn := dialHub(t, srv, "alice")
	waitClients(t, hub, 1)

	hub.Close()
	if hub.Clients() != 0 {
		t.Fatalf("clients = %d after close, want 0", hub.Clients())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, _, err := conn.Read(ctx); websocket.CloseStatus(err) != websocket.StatusGoingAway {
		t.Fatalf("read after close: %v, want going-away", err)
	}

	// A new connection handshakes but is immediately dismissed.
	late := dialHub(t, srv, "bob")
	if _, _, err := late.Read(ctx); websocket.CloseStatus(err) != websocket.StatusGoingAway {
		t.Fatalf("late read: %v, want going-away", err)
	}
	if hub.Clients() != 0 {
		t.Fatalf("clients = %d, want 0", hub.Clients())
	}
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub(1, zap.NewNop())
	c := &client{userID: "slow", send: make(chan []byte, 1)}
	if !hub.register(c) {
		t.Fatalf("register failed")
	}

	hub.Broadcast(EventMatchesUpdate, nil) // fills the buffer
	hub.Broadcast(EventMatchesUpdate, nil) // overflows, client dropped

	if hub.Clients() != 0 {
		t.Fatalf("clients = %d, want 0 after overflow", hub.Clients())
	}
	<-c.send // queued payload still drains
	if _, ok := <-c.send; ok {
		t.Fatalf("send channel still open after drop")
	}
}

func TestNilHubDropsEverything(t *testing.T) {
	var hub *Hub
	hub.Broadcast(EventMatchesUpdate, nil)
	hub.ToUser("alice", EventPortfolioUpdate, nil)
	hub.Close()
	if hub.Clients() != 0 {
		t.Fatalf("clients = %d, want 0", hub.Clients())
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	if err := hub.Serve(w, req, ""); err != nil {
		t.Fatalf("serve: %v", err)
	}
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
