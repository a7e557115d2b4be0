package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/kmatth/judgement/internal/game"
)

// Server is the WebSocket front door. It upgrades connections, tracks
// which seat in which match each one holds, and implements Broadcaster
// for the match runners.
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      zerolog.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	manager     *MatchManager
	httpServer  *http.Server
}

// NewServer creates a server and its match manager.
func NewServer(cfg *Config, seed int64, logger zerolog.Logger, clock quartz.Clock) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		addr: cfg.ListenAddress(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins.
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.With().Str("component", "server").Logger(),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.manager = NewMatchManager(cfg.Game, seed, logger, clock, s)
	return s
}

// Manager returns the match manager.
func (s *Server) Manager() *MatchManager { return s.manager }

// Start runs the server. It blocks until the listener fails or Shutdown
// is called.
func (s *Server) Start() error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}
	s.logger.Info().Str("addr", s.addr).Msg("Starting WebSocket server")
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the listener and closes every connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// run handles connection lifecycle.
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info().Int("total", total).Msg("Client connected")

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			if ok {
				delete(s.connections, conn)
			}
			total := len(s.connections)
			s.mu.Unlock()

			if ok {
				s.dropFromMatch(conn)
				_ = conn.Close()
			}
			s.logger.Info().Int("total", total).Msg("Client disconnected")

		case <-s.ctx.Done():
			return
		}
	}
}

// dropFromMatch unseats a disconnected client and destroys the match
// once no seats remain connected.
func (s *Server) dropFromMatch(conn *Connection) {
	code, seat := conn.Membership()
	if code == "" || !seat.Valid() {
		return
	}
	runner, err := s.manager.Get(code)
	if err != nil {
		return
	}
	s.logger.Info().Str("game_code", code).Stringer("seat", seat).Msg("Unseating disconnected player")
	if runner.HandleDisconnect(seat) {
		s.manager.Remove(code)
	}
}

// handleWebSocket handles WebSocket upgrade requests.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	client := NewConnection(conn, s, s.logger)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// BroadcastToMatch sends a message to every connection seated in the
// match. Implements Broadcaster.
func (s *Server) BroadcastToMatch(code string, msg *Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for conn := range s.connections {
		if c, _ := conn.Membership(); c == code {
			if err := conn.SendMessage(msg); err != nil {
				s.logger.Error().Err(err).Str("player", conn.PlayerName()).Msg("Failed to send message")
			} else {
				count++
			}
		}
	}

	s.logger.Debug().Str("game_code", code).Str("type", msg.Type.String()).Int("recipients", count).Msg("Broadcast to match")
}

// SendToSeat sends a message to the one connection holding the seat.
// Implements Broadcaster.
func (s *Server) SendToSeat(code string, seat game.Seat, msg *Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if c, st := conn.Membership(); c == code && st == seat {
			return conn.SendMessage(msg)
		}
	}
	return fmt.Errorf("seat not connected: %s %s", code, seat)
}
