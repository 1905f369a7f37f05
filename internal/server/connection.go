package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjackbot/internal/game"
)

// Connection is one player's WebSocket, bound to a single chat key for its
// whole life.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	chatKey   string
	playerID  string
	server    *Server
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, chatKey, playerID string, server *Server) *Connection {
	ctx, cancel := context.WithCancel(server.ctx)

	return &Connection{
		conn:     conn,
		send:     make(chan *Message, 256),
		chatKey:  chatKey,
		playerID: playerID,
		server:   server,
		logger:   server.logger.With("chat", chatKey, "player", playerID),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// Done is closed once the connection is shutting down
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			// Send raced with Close.
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
			err = ErrConnectionClosed
		}
	}()

	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// Player returns the player ID the connection acts for
func (c *Connection) Player() string {
	return c.playerID
}

// Chat returns the chat key the connection is bound to
func (c *Connection) Chat() string {
	return c.chatKey
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxMessageSize = 4096
)

// ErrConnectionClosed is returned when sending on a closed connection.
var ErrConnectionClosed = websocket.ErrCloseSent

func (c *Connection) extendReadDeadline() error {
	return c.conn.SetReadDeadline(time.Now().Add(pongWait))
}

func (c *Connection) write(messageType int, payload []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, payload)
}

// readPump decodes client frames until the peer goes away. Malformed JSON
// is answered with an error and the connection stays open.
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.extendReadDeadline()
	c.conn.SetPongHandler(func(string) error { return c.extendReadDeadline() })

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("Connection dropped", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.sendError(CodeInvalidMessage, "Message is not valid JSON")
			continue
		}
		c.handleMessage(&msg)
	}
}

// writePump owns all writes to the socket: queued messages and keepalive
// pings.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return

		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}

		case msg, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			payload, err := json.Marshal(msg)
			if err != nil {
				c.logger.Error("Failed to encode message", "type", msg.Type, "error", err)
				continue
			}
			if err := c.write(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("Write failed", "error", err)
				return
			}
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	if kind, ok := commandKinds[msg.Type]; ok {
		c.handleCommand(c.command(kind), msg.RequestID)
		return
	}

	switch msg.Type {
	case MessageTypeLang:
		var data LangData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(CodeInvalidMessage, "Failed to parse lang data")
			return
		}
		cmd := c.command(game.ActionLang)
		cmd.Lang = data.Lang
		c.handleCommand(cmd, msg.RequestID)

	case MessageTypeStats:
		var data StatsRequestData
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &data); err != nil {
				c.sendError(CodeInvalidMessage, "Failed to parse stats data")
				return
			}
		}
		c.handleStats(data, msg.RequestID)

	default:
		c.sendError(CodeUnknownMessageType, "Unknown message type: "+msg.Type.String())
	}
}

// command builds a game command from this player in this chat.
func (c *Connection) command(kind game.Action) game.Command {
	return game.Command{
		Kind:        kind,
		Key:         c.chatKey,
		Participant: c.playerID,
	}
}

// handleCommand runs a game command for this player. Results go to the whole
// chat; errors only to this connection.
func (c *Connection) handleCommand(cmd game.Command, requestID string) {
	res, err := c.server.dispatcher.Dispatch(c.ctx, cmd)
	if err != nil {
		c.sendError(errorCode(err), err.Error())
		return
	}

	msg, err := NewMessage(MessageTypeResult, res)
	if err != nil {
		c.logger.Error("Failed to encode result", "error", err)
		c.sendError(CodeInternal, "Failed to encode result")
		return
	}
	msg.RequestID = requestID
	c.server.BroadcastToChat(c.chatKey, msg)
}

func (c *Connection) handleStats(data StatsRequestData, requestID string) {
	if c.server.stats == nil {
		c.sendError(CodeStatsUnavailable, "Statistics are disabled")
		return
	}

	player := data.Player
	if player == "" {
		player = c.playerID
	}
	st, err := c.server.stats.PlayerStats(c.ctx, player)
	if err != nil {
		c.logger.Error("Failed to load stats", "for", player, "error", err)
		c.sendError(CodeInternal, "Failed to load statistics")
		return
	}

	response, err := NewMessage(MessageTypeStats, st)
	if err != nil {
		c.sendError(CodeInternal, "Failed to encode statistics")
		return
	}
	response.RequestID = requestID
	_ = c.SendMessage(response)
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}
