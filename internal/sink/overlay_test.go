package sink

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/rikuzen/chatferry/internal/dialog"
)

func (h *OverlayHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func waitForClients(t *testing.T, hub *OverlayHub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.clientCount() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("got %d connected clients, want %d", hub.clientCount(), want)
}

func TestOverlayHubBroadcastsFinalizedRecords(t *testing.T) {
	hub := NewOverlayHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	recs := []dialog.LogRecord{
		{ID: "id1", Code: "000A", Text: "hello"},
		{ID: "id2", Code: "003D", Text: "welcome"},
	}
	hub.OnRecordFinalized(recs[0], true)
	hub.OnRecordFinalized(recs[1], false)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i, want := range []struct {
		id        string
		firstSeen bool
	}{{"id1", true}, {"id2", false}} {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read frame %d: %v", i, err)
		}
		var frame overlayFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			t.Fatalf("parse frame %d: %v", i, err)
		}
		if frame.Record.ID != want.id || frame.FirstSeen != want.firstSeen {
			t.Fatalf("frame %d: got id=%q first_seen=%v, want id=%q first_seen=%v",
				i, frame.Record.ID, frame.FirstSeen, want.id, want.firstSeen)
		}
	}
}

func TestOverlayHubDropsDeadClients(t *testing.T) {
	hub := NewOverlayHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	waitForClients(t, hub, 1)
	conn.Close()

	// either the read loop or a failed broadcast write must evict the client
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && hub.clientCount() > 0 {
		hub.OnRecordFinalized(dialog.LogRecord{ID: "id1", Text: "ping"}, true)
		time.Sleep(5 * time.Millisecond)
	}
	if got := hub.clientCount(); got != 0 {
		t.Fatalf("got %d connected clients after close, want 0", got)
	}

	// broadcasting to an empty hub is a no-op
	hub.OnRecordFinalized(dialog.LogRecord{ID: "id2", Text: "pong"}, false)
}
