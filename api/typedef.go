package api

import (
	"sync/atomic"
	"time"

	"pathkit/typedef"
)

// WebSocket message types
type MessageType string

const (
	// Outgoing message types (bridge to game client)
	MessageTypeAck       MessageType = "ack"
	MessageTypeError     MessageType = "error"
	MessageTypeChat      MessageType = "chat"
	MessageTypeExecute   MessageType = "execute"
	MessageTypeUnhandled MessageType = "unhandled"
	MessageTypePing      MessageType = "ping"

	// Incoming message types (game client to bridge)
	MessageTypeCommand  MessageType = "command"
	MessageTypePosition MessageType = "position"
)

// Base WebSocket message structure
type WSMessage struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"request_id,omitempty"` // For correlating responses
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// CommandData carries a chat command typed in the game, leading slash
// optional.
type CommandData struct {
	Line string `json:"line"`
}

// PositionData is the player's position as reported by the game client.
type PositionData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p PositionData) toPosition() typedef.Position {
	return typedef.Position{X: p.X, Y: p.Y, Z: p.Z}
}

// ChatData is a line the game client should print locally.
type ChatData struct {
	Message string `json:"message"`
}

// ExecuteData is a command the game client should send to the server as if
// the player typed it.
type ExecuteData struct {
	Command string `json:"command"`
}

// Executor runs a command line. It returns command.ErrUnknownCommand for lines
// it does not own.
type Executor interface {
	Execute(line string) error
}

// PositionSink receives position updates.
type PositionSink interface {
	Set(p typedef.Position)
}

// Message handler function type
type MessageHandler func(*WSClient, WSMessage) error

// API is the WebSocket hub shared by every connected game client.
type API struct {
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
	done       chan struct{}
	handlers   map[MessageType]MessageHandler
	executor   Executor
	position   PositionSink
	connected  atomic.Int32
}

// WebSocket client representation
type WSClient struct {
	conn WSConnection
	send chan WSMessage
	done chan struct{} // closed by the hub when the client is dropped
	api  *API
	id   string
}

// Interface for WebSocket connection (for easier testing)
type WSConnection interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}
