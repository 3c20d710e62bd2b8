package chat

import (
	"context"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler accepts websocket connections and wires each one into the relay.
type Handler struct {
	reg     *Registry
	bc      *Broadcaster
	gate    AuthGate
	history HistoryStore
}

func NewHandler(reg *Registry, gate AuthGate, history HistoryStore) *Handler {
	return &Handler{
		reg:     reg,
		bc:      NewBroadcaster(reg),
		gate:    gate,
		history: history,
	}
}

func (h *Handler) Broadcaster() *Broadcaster {
	return h.bc
}

// ServeWS upgrades the request and starts the connection's pumps. The fixed
// room list is pushed immediately so clients can render the picker before
// joining.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("chat: upgrade failed: %v", err)
		return
	}

	client := NewClient(uuid.NewString(), conn)
	session := NewSession(client, h.reg, h.bc, h.gate, h.history)
	incConnections()

	go client.writePump()
	go client.keepAlive()

	client.Send(newRoomOptions(h.reg.RoomIDs()))

	// The request context dies when this handler returns; the hijacked
	// connection outlives it.
	go client.readPump(context.Background(), session)
}
