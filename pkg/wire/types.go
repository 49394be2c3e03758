// Package wire defines the observer websocket protocol.
package wire

type MessageType string

const (
	MessageTypeNarration MessageType = "narration"
	MessageTypeDebug     MessageType = "debug"
	MessageTypeSystem    MessageType = "system"
	MessageTypeError     MessageType = "error"
	MessageTypeInfo      MessageType = "info"
	MessageTypeUserInput MessageType = "user-input"
)

// Message is a single classified output unit as delivered to observers.
// Timestamp is RFC 3339.
type Message struct {
	Type      MessageType `json:"type"`
	Content   string      `json:"content"`
	Timestamp string      `json:"timestamp"`
	IsError   bool        `json:"is_error,omitempty"`
}

type ClientMessageType string

const (
	ClientMessageTypeInput ClientMessageType = "input"
	ClientMessageTypePing  ClientMessageType = "ping"
)

type ClientEnvelope struct {
	Type    ClientMessageType `json:"type"`
	Content string            `json:"content,omitempty"`
}

type ServerMessageType string

const (
	ServerMessageTypeGameOutput  ServerMessageType = "game_output"
	ServerMessageTypeDebugOutput ServerMessageType = "debug_output"
	ServerMessageTypeStatus      ServerMessageType = "status_update"
	ServerMessageTypeConnected   ServerMessageType = "connected"
	ServerMessageTypePong        ServerMessageType = "pong"
	ServerMessageTypeError       ServerMessageType = "error"
)

type ServerEnvelope struct {
	Type    ServerMessageType `json:"type"`
	Payload any               `json:"payload,omitempty"`
	Message string            `json:"message,omitempty"`
}

// StatusUpdate reports whether the engine is busy or idle on input.
type StatusUpdate struct {
	Message      string `json:"message"`
	IsProcessing bool   `json:"is_processing"`
}
