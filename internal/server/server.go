// Package server exposes blackjack sessions over WebSockets. Every
// connection is bound to one chat key and player; results are broadcast to
// all connections in the same chat.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/blackjackbot/internal/game"
	"github.com/lox/blackjackbot/internal/stats"
)

const shutdownTimeout = 5 * time.Second

// StatsReader answers stats requests.
type StatsReader interface {
	PlayerStats(ctx context.Context, participant string) (stats.PlayerStats, error)
}

// Server represents the WebSocket server
type Server struct {
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	registry    *game.Registry
	dispatcher  *game.Dispatcher
	stats       StatsReader
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewServer creates a new WebSocket server. statsReader may be nil when
// statistics are disabled.
func NewServer(registry *game.Registry, dispatcher *game.Dispatcher, statsReader StatsReader, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		registry:    registry,
		dispatcher:  dispatcher,
		stats:       statsReader,
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/games", s.handleGames)
	return mux
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting WebSocket server", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = s.Stop()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	_ = s.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes every connection
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	return nil
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	chatKey := r.URL.Query().Get("chat")
	playerID := r.URL.Query().Get("player")
	if chatKey == "" || playerID == "" {
		http.Error(w, "chat and player are required", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, chatKey, playerID, s)
	s.register(client)
	client.Start()

	go func() {
		<-client.Done()
		s.unregister(client)
	}()
}

func (s *Server) register(conn *Connection) {
	s.mu.Lock()
	s.connections[conn] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "chat", conn.Chat(), "player", conn.Player(), "total", total)
}

func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()
	_ = conn.Close()
	s.logger.Info("Client disconnected", "chat", conn.Chat(), "player", conn.Player(), "total", total)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// handleGames lists the sessions the registry currently holds
func (s *Server) handleGames(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.registry.List()); err != nil {
		s.logger.Error("Failed to encode games", "error", err)
	}
}

// BroadcastToChat sends a message to all connections bound to chatKey
func (s *Server) BroadcastToChat(chatKey string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if conn.Chat() != chatKey {
			continue
		}
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send message to client", "error", err, "player", conn.Player())
		} else {
			count++
		}
	}

	s.logger.Debug("Broadcasted message to chat", "chat", chatKey, "type", msg.Type, "recipients", count)
}

// ChatPlayers returns the players connected to chatKey
func (s *Server) ChatPlayers(chatKey string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []string
	for conn := range s.connections {
		if conn.Chat() == chatKey {
			players = append(players, conn.Player())
		}
	}
	return players
}
