package server

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/kmatth/judgement/internal/deck"
	"github.com/kmatth/judgement/internal/game"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection wraps one WebSocket client. A connection holds at most one
// seat in at most one match.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	server    *Server
	logger    zerolog.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	mu         sync.RWMutex
	playerID   string
	playerName string
	gameCode   string
	seat       game.Seat
}

// NewConnection creates a connection wrapper. Every connection gets a
// fresh player ID; the display name arrives with host_game or join_game.
func NewConnection(conn *websocket.Conn, server *Server, logger zerolog.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		server: server,
		logger: logger.With().Str("component", "conn").Logger(),
		ctx:    ctx,
		cancel: cancel,
		seat:   -1,
	}
}

// Start begins handling the connection.
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client.
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown.
			c.logger.Debug().Interface("panic", r).Msg("Send on closed connection")
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn().Msg("Send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// setSeat records the connection's match membership.
func (c *Connection) setSeat(gameCode string, seat game.Seat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameCode = gameCode
	c.seat = seat
}

// Membership returns the match code and seat, with seat -1 when unseated.
func (c *Connection) Membership() (string, game.Seat) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameCode, c.seat
}

// PlayerName returns the display name given at host/join time.
func (c *Connection) PlayerName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

// readPump handles incoming messages from the client.
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error().Err(err).Msg("WebSocket error")
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client.
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error().Err(err).Msg("Failed to write message")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes one incoming message.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug().Str("type", msg.Type.String()).Str("player", c.PlayerName()).Msg("Received message")

	switch msg.Type {
	case MessageTypeHostGame:
		var data HostGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse host game data")
			return
		}
		c.handleHostGame(data)

	case MessageTypeJoinGame:
		var data JoinGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join game data")
			return
		}
		c.handleJoinGame(data)

	case MessageTypePlaceBid:
		var data PlaceBidData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse bid data")
			return
		}
		c.handlePlaceBid(data)

	case MessageTypeSelectTrump:
		var data SelectTrumpData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse trump data")
			return
		}
		c.handleSelectTrump(data)

	case MessageTypePlayCard:
		var data PlayCardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse play data")
			return
		}
		c.handlePlayCard(data)

	case MessageTypePauseGame:
		var data PauseGameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse pause data")
			return
		}
		c.handlePauseGame(data)

	case MessageTypeStopGame:
		c.handleStopGame()

	case MessageTypeChat:
		var data ChatData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse chat data")
			return
		}
		c.handleChat(data)

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client.
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to create error message")
		return
	}
	_ = c.SendMessage(errorMsg)
}

// sendActionError maps a rejected action to a wire error code. Rejected
// actions change nothing server side; the error is the whole response.
func (c *Connection) sendActionError(err error) {
	c.sendError(actionErrorCode(err), err.Error())
}

func actionErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrWrongActor):
		return "wrong_turn"
	case errors.Is(err, game.ErrWrongPhase):
		return "wrong_phase"
	case errors.Is(err, game.ErrInvalidBid):
		return "invalid_bid"
	case errors.Is(err, game.ErrNotHeld):
		return "card_not_held"
	case errors.Is(err, game.ErrInvalidPlay):
		return "invalid_play"
	case errors.Is(err, game.ErrGamePaused):
		return "game_paused"
	case errors.Is(err, game.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, game.ErrMatchFull):
		return "match_full"
	case errors.Is(err, game.ErrMatchNotFound):
		return "match_not_found"
	default:
		return "action_failed"
	}
}

// runner resolves the connection's match, or sends an error.
func (c *Connection) runner() (*MatchRunner, game.Seat, bool) {
	code, seat := c.Membership()
	if code == "" || !seat.Valid() {
		c.sendError("not_in_game", "Join a game first")
		return nil, 0, false
	}
	r, err := c.server.Manager().Get(code)
	if err != nil {
		c.sendError("match_not_found", "Game not found: "+code)
		return nil, 0, false
	}
	return r, seat, true
}

func (c *Connection) handleHostGame(data HostGameData) {
	if data.PlayerName == "" {
		c.sendError("invalid_name", "Player name required")
		return
	}
	if code, _ := c.Membership(); code != "" {
		c.sendError("already_in_game", "Already seated in game "+code)
		return
	}

	runner, err := c.server.Manager().Create(data.RoundCap)
	if err != nil {
		c.sendActionError(err)
		return
	}

	c.mu.Lock()
	c.playerID = uuid.NewString()
	c.playerName = data.PlayerName
	c.mu.Unlock()

	seat, err := runner.Join(c.playerID, data.PlayerName)
	if err != nil {
		c.server.Manager().Remove(runner.Code())
		c.sendActionError(err)
		return
	}
	c.setSeat(runner.Code(), seat)
	c.logger.Info().Str("game_code", runner.Code()).Str("player", data.PlayerName).Msg("Game hosted")

	response, _ := NewMessage(MessageTypeGameHosted, GameHostedData{
		GameCode: runner.Code(),
		Seat:     int(seat),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinGame(data JoinGameData) {
	if data.PlayerName == "" {
		c.sendError("invalid_name", "Player name required")
		return
	}
	if code, _ := c.Membership(); code != "" {
		c.sendError("already_in_game", "Already seated in game "+code)
		return
	}

	code := strings.ToUpper(data.GameCode)
	runner, err := c.server.Manager().Get(code)
	if err != nil {
		c.sendActionError(err)
		return
	}

	c.mu.Lock()
	c.playerID = uuid.NewString()
	c.playerName = data.PlayerName
	c.mu.Unlock()

	seat, err := runner.Join(c.playerID, data.PlayerName)
	if err != nil {
		c.sendActionError(err)
		return
	}
	c.setSeat(code, seat)
	c.logger.Info().Str("game_code", code).Str("player", data.PlayerName).Stringer("seat", seat).Msg("Game joined")

	response, _ := NewMessage(MessageTypeGameJoined, GameJoinedData{
		GameCode: code,
		Seat:     int(seat),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handlePlaceBid(data PlaceBidData) {
	runner, seat, ok := c.runner()
	if !ok {
		return
	}
	if err := runner.PlaceBid(seat, data.Amount); err != nil {
		c.sendActionError(err)
	}
}

func (c *Connection) handleSelectTrump(data SelectTrumpData) {
	runner, seat, ok := c.runner()
	if !ok {
		return
	}
	suit, err := deck.ParseSuit(data.Suit)
	if err != nil {
		c.sendError("invalid_suit", "Unknown suit: "+data.Suit)
		return
	}
	if err := runner.SelectTrump(seat, suit); err != nil {
		c.sendActionError(err)
	}
}

func (c *Connection) handlePlayCard(data PlayCardData) {
	runner, seat, ok := c.runner()
	if !ok {
		return
	}
	if err := runner.PlayCard(seat, data.Card); err != nil {
		c.sendActionError(err)
	}
}

func (c *Connection) handlePauseGame(data PauseGameData) {
	runner, seat, ok := c.runner()
	if !ok {
		return
	}
	if err := runner.SetPaused(seat, data.Paused); err != nil {
		c.sendActionError(err)
	}
}

func (c *Connection) handleStopGame() {
	runner, seat, ok := c.runner()
	if !ok {
		return
	}
	if err := runner.Stop(seat); err != nil {
		c.sendActionError(err)
	}
}

func (c *Connection) handleChat(data ChatData) {
	runner, seat, ok := c.runner()
	if !ok {
		return
	}
	if data.Message == "" {
		return
	}
	runner.Chat(seat, data.Message)
}
