// Package api is the WebSocket bridge between pathkit and the game client. The
// client forwards chat commands and player positions; pathkit answers with
// chat lines to print and commands to run.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"pathkit/command"
	"pathkit/logging"
)

// ErrNoClient is returned by SendCommand when no game client is connected.
var ErrNoClient = errors.New("no game client connected")

const pingInterval = 54 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// the bridge only listens on loopback by default
		return true
	},
}

// NewAPI creates a hub that runs client commands through exec and feeds
// position updates to pos.
func NewAPI(exec Executor, pos PositionSink) *API {
	api := &API{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		done:       make(chan struct{}),
		handlers:   make(map[MessageType]MessageHandler),
		executor:   exec,
		position:   pos,
	}

	api.registerHandlers()

	return api
}

// Handler serves the WebSocket endpoint at /ws.
func (api *API) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", api.handleWebSocket)
	return mux
}

// ListenAndServe runs the hub and an HTTP server on addr until ctx is done.
func (api *API) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: api.Handler()}
	go api.Run(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[BRIDGE] WebSocket server starting on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("bridge server: %w", err)
	}
	return nil
}

// Run handles the hub's register, unregister and broadcast traffic until ctx
// is done. It must only be called once.
func (api *API) Run(ctx context.Context) {
	defer close(api.done)
	for {
		select {
		case <-ctx.Done():
			for client := range api.clients {
				api.drop(client)
			}
			return

		case client := <-api.register:
			api.clients[client] = true
			api.connected.Store(int32(len(api.clients)))

			ackMsg := WSMessage{
				Type:      MessageTypeAck,
				Data:      "Connected to pathkit",
				Timestamp: time.Now(),
			}
			select {
			case client.send <- ackMsg:
			default:
				api.drop(client)
			}

			log.Printf("[BRIDGE] client %s connected", client.id)

		case client := <-api.unregister:
			if _, ok := api.clients[client]; ok {
				api.drop(client)
				log.Printf("[BRIDGE] client %s disconnected", client.id)
			}

		case message := <-api.broadcast:
			for client := range api.clients {
				select {
				case client.send <- message:
				default:
					api.drop(client)
				}
			}
		}
	}
}

func (api *API) drop(client *WSClient) {
	delete(api.clients, client)
	close(client.done)
	api.connected.Store(int32(len(api.clients)))
}

// Connected returns the number of connected game clients.
func (api *API) Connected() int {
	return int(api.connected.Load())
}

// Chat asks every connected client to print msg. Messages are dropped when
// the hub is backed up.
func (api *API) Chat(msg string) {
	api.publish(WSMessage{Type: MessageTypeChat, Data: ChatData{Message: msg}, Timestamp: time.Now()})
}

// SendCommand asks the game client to run line as if the player typed it.
func (api *API) SendCommand(line string) error {
	if api.Connected() == 0 {
		return ErrNoClient
	}
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		line = "/" + line
	}
	if !api.publish(WSMessage{Type: MessageTypeExecute, Data: ExecuteData{Command: line}, Timestamp: time.Now()}) {
		return errors.New("bridge is busy")
	}
	return nil
}

func (api *API) publish(msg WSMessage) bool {
	select {
	case api.broadcast <- msg:
		return true
	default:
		logging.Debugf("bridge broadcast full, dropped %s", msg.Type)
		return false
	}
}

func (api *API) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[BRIDGE] WebSocket upgrade failed: %v", err)
		return
	}

	client := &WSClient{
		conn: conn,
		send: make(chan WSMessage, 256),
		done: make(chan struct{}),
		api:  api,
		id:   fmt.Sprintf("%d", time.Now().UnixNano()),
	}

	select {
	case api.register <- client:
	case <-api.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// writePump pumps messages from the hub to the websocket connection
func (c *WSClient) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.WriteJSON(WSMessage{Type: MessageTypeError, Error: "bridge closed", Timestamp: time.Now()})
			return

		case message := <-c.send:
			if err := c.conn.WriteJSON(message); err != nil {
				log.Printf("[BRIDGE] error writing to client %s: %v", c.id, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteJSON(WSMessage{
				Type:      MessageTypePing,
				Timestamp: time.Now(),
			}); err != nil {
				return
			}
		}
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *WSClient) readPump() {
	defer func() {
		select {
		case c.api.unregister <- c:
		case <-c.api.done:
		}
		c.conn.Close()
	}()

	for {
		var message WSMessage
		if err := c.conn.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error(fmt.Errorf("bridge read: %w", err))
			}
			break
		}

		if message.Timestamp.IsZero() {
			message.Timestamp = time.Now()
		}

		if err := c.handleMessage(message); err != nil {
			c.reply(WSMessage{
				Type:      MessageTypeError,
				RequestID: message.RequestID,
				Error:     err.Error(),
				Timestamp: time.Now(),
			})
		}
	}
}

// reply sends a message to this client only. Replies are dropped once the hub
// has let go of the client or its queue is full.
func (c *WSClient) reply(msg WSMessage) {
	select {
	case <-c.done:
	case c.send <- msg:
	default:
	}
}

// handleMessage processes incoming messages from clients
func (c *WSClient) handleMessage(message WSMessage) error {
	handler, exists := c.api.handlers[message.Type]
	if !exists {
		return fmt.Errorf("unknown message type: %s", message.Type)
	}

	return handler(c, message)
}

func (api *API) registerHandlers() {
	api.handlers[MessageTypeCommand] = api.handleCommand
	api.handlers[MessageTypePosition] = api.handlePosition
}

func (api *API) handleCommand(client *WSClient, message WSMessage) error {
	var data CommandData
	if err := parseMessageData(message.Data, &data); err != nil {
		return err
	}
	logging.Trace("bridge.command", data)

	err := api.executor.Execute(data.Line)
	if errors.Is(err, command.ErrUnknownCommand) {
		client.reply(WSMessage{
			Type:      MessageTypeUnhandled,
			RequestID: message.RequestID,
			Data:      data,
			Timestamp: time.Now(),
		})
		return nil
	}
	if err != nil {
		return err
	}
	client.reply(WSMessage{Type: MessageTypeAck, RequestID: message.RequestID, Timestamp: time.Now()})
	return nil
}

func (api *API) handlePosition(client *WSClient, message WSMessage) error {
	var data PositionData
	if err := parseMessageData(message.Data, &data); err != nil {
		return err
	}
	api.position.Set(data.toPosition())
	return nil
}

// parseMessageData parses message data into the specified struct
func parseMessageData(data interface{}, target interface{}) error {
	if data == nil {
		return errors.New("message has no data")
	}
	// Convert to JSON and back to ensure proper type conversion
	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	if err := json.Unmarshal(jsonData, target); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}

	return nil
}
