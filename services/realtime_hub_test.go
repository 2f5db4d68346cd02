package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// hubServer upgrades every request and registers the connection under the
// user id given in the query string.
func hubServer(t *testing.T, hub *RealtimeHub) (*httptest.Server, chan *WSClient) {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	registered := make(chan *WSClient, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		uid, _ := strconv.Atoi(r.URL.Query().Get("user"))
		c := &WSClient{UserID: uint(uid), Conn: conn}
		hub.Register(c)
		registered <- c
	}))
	t.Cleanup(srv.Close)
	return srv, registered
}

func dialHub(t *testing.T, srv *httptest.Server, userID uint) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + strconv.Itoa(int(userID))
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHubBroadcastIsScopedToUser(t *testing.T) {
	hub := NewRealtimeHub()
	srv, registered := hubServer(t, hub)

	conn1 := dialHub(t, srv, 1)
	conn2 := dialHub(t, srv, 2)
	<-registered
	<-registered

	hub.Broadcast(1, map[string]any{"kind": "alert.created", "n": 1})

	conn1.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn1.ReadMessage()
	if err != nil {
		t.Fatalf("user 1 read: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(msg, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["kind"] != "alert.created" {
		t.Fatalf("payload = %v", got)
	}

	// user 2 must see nothing; the read times out
	conn2.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	if _, _, err := conn2.ReadMessage(); err == nil {
		t.Fatal("user 2 received user 1's event")
	}
}

func TestHubFansOutToEveryConnection(t *testing.T) {
	hub := NewRealtimeHub()
	srv, registered := hubServer(t, hub)

	connA := dialHub(t, srv, 7)
	connB := dialHub(t, srv, 7)
	<-registered
	<-registered

	hub.Broadcast(7, map[string]any{"kind": "progress.updated"})

	for i, conn := range []*websocket.Conn{connA, connB} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Fatalf("connection %d missed the broadcast: %v", i, err)
		}
	}
}

func TestHubUnregisterClosesConnection(t *testing.T) {
	hub := NewRealtimeHub()
	srv, registered := hubServer(t, hub)

	conn := dialHub(t, srv, 3)
	client := <-registered

	hub.Unregister(client)
	hub.Unregister(client) // idempotent

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("read succeeded on a closed connection")
	}

	// must not panic with the client gone
	hub.Broadcast(3, map[string]any{"kind": "alert.created"})

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if len(hub.clients[3]) != 0 {
		t.Fatalf("client still registered: %v", hub.clients)
	}
}
