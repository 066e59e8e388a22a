package sink

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/rikuzen/chatferry/internal/dialog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// overlayFrame is the wire shape pushed to connected overlay clients.
type overlayFrame struct {
	Record    dialog.LogRecord `json:"record"`
	FirstSeen bool             `json:"first_seen"`
}

// OverlayHub broadcasts finalized records to websocket overlay clients.
// Clients that fail a write are dropped on the spot.
type OverlayHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func NewOverlayHub() *OverlayHub {
	return &OverlayHub{conns: make(map[*websocket.Conn]struct{})}
}

// HandleWS upgrades the request and parks the connection until the client
// goes away. Inbound frames are discarded.
func (h *OverlayHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("sink: overlay upgrade: %v", err)
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()

	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *OverlayHub) OnRecordFinalized(rec dialog.LogRecord, firstSeen bool) {
	data, err := json.Marshal(overlayFrame{Record: rec, FirstSeen: firstSeen})
	if err != nil {
		log.Printf("sink: overlay marshal: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

func (h *OverlayHub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.conns, conn)
	h.mu.Unlock()
	conn.Close()
}
