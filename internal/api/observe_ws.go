package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/ricochet1k/storymesh/pkg/wire"
)

var observeUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// observeWebSocket attaches a websocket observer. Messages queued since
// engine start are replayed on attach, then the client receives live
// broadcasts; inbound envelopes carry user input.
func (h *Handler) observeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := observeUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	client := NewClient(generateID(), conn)
	defer client.Close()

	go client.WriteLoop()

	_ = client.Send(wire.ServerEnvelope{
		Type:    wire.ServerMessageTypeConnected,
		Message: "connected to storymesh",
	})

	// Attach after the greeting so replayed messages arrive in order
	// behind it.
	h.hub.Attach(client)
	defer h.hub.Detach(client.ID())

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg wire.ClientEnvelope
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.sendObserveError(client, "invalid message")
			continue
		}

		switch msg.Type {
		case wire.ClientMessageTypeInput:
			if err := h.acceptInput(r, msg.Content); err != nil {
				h.sendObserveError(client, "input rejected: "+err.Error())
			}
		case wire.ClientMessageTypePing:
			if client.Send(wire.ServerEnvelope{Type: wire.ServerMessageTypePong}) != nil {
				return
			}
		default:
			h.sendObserveError(client, "unsupported message type")
		}
	}
}

func (h *Handler) sendObserveError(client *Client, message string) {
	if client.Send(wire.ServerEnvelope{
		Type:    wire.ServerMessageTypeError,
		Message: message,
	}) != nil {
		h.hub.Detach(client.ID())
	}
}
