package server

import (
	"encoding/json"
	"time"

	"github.com/kmatth/judgement/internal/deck"
	"github.com/kmatth/judgement/internal/game"
)

// MessageType identifies a wire message.
type MessageType string

// String returns the string representation of the message type.
func (mt MessageType) String() string { return string(mt) }

// Client → server message types.
const (
	MessageTypeHostGame    MessageType = "host_game"
	MessageTypeJoinGame    MessageType = "join_game"
	MessageTypePlaceBid    MessageType = "place_bid"
	MessageTypeSelectTrump MessageType = "select_trump"
	MessageTypePlayCard    MessageType = "play_card"
	MessageTypePauseGame   MessageType = "pause_game"
	MessageTypeStopGame    MessageType = "stop_game"
	MessageTypeChat        MessageType = "chat_message"
)

// Server → client message types.
const (
	MessageTypeGameHosted         MessageType = "game_hosted"
	MessageTypeGameJoined         MessageType = "game_joined"
	MessageTypeMatchStarted       MessageType = "match_started"
	MessageTypeGameState          MessageType = "game_state"
	MessageTypeHandUpdate         MessageType = "hand_update"
	MessageTypeValidCards         MessageType = "valid_cards"
	MessageTypeBidPlaced          MessageType = "bid_placed"
	MessageTypeBidsResolved       MessageType = "bids_resolved"
	MessageTypeTrumpSelected      MessageType = "trump_selected"
	MessageTypeCardPlayed         MessageType = "card_played"
	MessageTypeTrickCompleted     MessageType = "trick_completed"
	MessageTypeRoundEnded         MessageType = "round_ended"
	MessageTypeMatchEnded         MessageType = "match_ended"
	MessageTypeGamePaused         MessageType = "game_paused"
	MessageTypeTimerStart         MessageType = "timer_start"
	MessageTypePlayerDisconnected MessageType = "player_disconnected"
	MessageTypeError              MessageType = "error"
)

// Message is the base WebSocket message envelope.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a message with the current timestamp.
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → server payloads.

type HostGameData struct {
	PlayerName string `json:"playerName"`
	RoundCap   int    `json:"roundCap,omitempty"`
}

type JoinGameData struct {
	GameCode   string `json:"gameCode"`
	PlayerName string `json:"playerName"`
}

type PlaceBidData struct {
	Amount int `json:"amount"`
}

type SelectTrumpData struct {
	Suit string `json:"suit"`
}

type PlayCardData struct {
	Card deck.Card `json:"card"`
}

type PauseGameData struct {
	Paused bool `json:"paused"`
}

type ChatData struct {
	PlayerName string `json:"playerName,omitempty"`
	Message    string `json:"message"`
}

// Server → client payloads.

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GameHostedData struct {
	GameCode string `json:"gameCode"`
	Seat     int    `json:"seat"`
}

type GameJoinedData struct {
	GameCode string `json:"gameCode"`
	Seat     int    `json:"seat"`
}

type SeatInfo struct {
	Seat      int    `json:"seat"`
	Name      string `json:"name"`
	Bid       *int   `json:"bid"`
	Connected bool   `json:"connected"`
}

// GameStateData is the shared, non-private snapshot broadcast to every
// seat. Hands and valid plays travel separately, per seat.
type GameStateData struct {
	GameCode  string      `json:"gameCode"`
	State     string      `json:"state"`
	Phase     string      `json:"phase,omitempty"`
	Round     int         `json:"round"`
	RoundCap  int         `json:"roundCap"`
	Acting    int         `json:"acting"`
	Trump     *string     `json:"trump"`
	Chooser   *int        `json:"chooser"`
	Target    int         `json:"target"`
	Tricks    [2]int      `json:"tricks"`
	RoundsWon [2]int      `json:"roundsWon"`
	Trick     []TrickPlay `json:"trick"`
	Seats     []SeatInfo  `json:"seats"`
	Paused    bool        `json:"paused"`
	AdminSeat int         `json:"adminSeat"`
}

type TrickPlay struct {
	Seat int       `json:"seat"`
	Card deck.Card `json:"card"`
}

type HandUpdateData struct {
	Cards []deck.Card `json:"cards"`
}

type ValidCardsData struct {
	Cards []deck.Card `json:"cards"`
}

type BidPlacedData struct {
	Seat   int `json:"seat"`
	Amount int `json:"amount"`
	Next   int `json:"next"`
}

type BidsResolvedData struct {
	Chooser int    `json:"chooser"`
	Side    string `json:"side"`
	Target  int    `json:"target"`
}

type TrumpSelectedData struct {
	Seat int    `json:"seat"`
	Suit string `json:"suit"`
}

type CardPlayedData struct {
	Seat int       `json:"seat"`
	Card deck.Card `json:"card"`
	Next int       `json:"next"`
}

type TrickCompletedData struct {
	Winner     int         `json:"winner"`
	WinnerName string      `json:"winnerName"`
	Plays      []TrickPlay `json:"plays"`
	Tricks     [2]int      `json:"tricks"`
	DisplayMs  int         `json:"displayMs"`
}

type RoundEndedData struct {
	Round       int    `json:"round"`
	WinningSide string `json:"winningSide"`
	BidSide     string `json:"bidSide"`
	Target      int    `json:"target"`
	Tricks      [2]int `json:"tricks"`
	SeatTricks  [4]int `json:"seatTricks"`
	RoundsWon   [2]int `json:"roundsWon"`
}

type MatchEndedData struct {
	Winner    *string `json:"winner"` // "A", "B", or null for tie/stop
	RoundsWon [2]int  `json:"roundsWon"`
	Stopped   bool    `json:"stopped"`
	Rounds    int     `json:"rounds"`
}

type GamePausedData struct {
	Paused   bool   `json:"paused"`
	PausedBy string `json:"pausedBy"`
}

type TimerStartData struct {
	Seat       int    `json:"seat"`
	DurationMs int    `json:"durationMs"`
	Kind       string `json:"kind"` // "bid", "trump" or "play"
}

type PlayerDisconnectedData struct {
	Seat int    `json:"seat"`
	Name string `json:"name"`
}

// snapshotMatch builds the shared game state from a match.
func snapshotMatch(code string, m *game.Match) GameStateData {
	state := GameStateData{
		GameCode:  code,
		State:     m.State().String(),
		Round:     m.RoundNumber(),
		RoundCap:  m.Config().RoundCap,
		Acting:    -1,
		RoundsWon: m.RoundsWon(),
		Paused:    m.Paused(),
		AdminSeat: int(m.Admin()),
		Trick:     []TrickPlay{},
	}

	players := m.Players()
	var bids [game.NumSeats]int
	var placed [game.NumSeats]bool
	if r := m.Round(); r != nil {
		bids, placed = r.Bids()
		state.Phase = r.Phase().String()
		state.Acting = int(r.Acting())
		state.Tricks = r.Tricks()
		if trump, ok := r.Trump(); ok {
			name := trump.Name()
			state.Trump = &name
		}
		if r.Phase() >= game.PhaseTrumpSelection {
			chooser := int(r.Chooser())
			state.Chooser = &chooser
			state.Target = r.Target()
		}
		for _, play := range r.CurrentTrick() {
			state.Trick = append(state.Trick, TrickPlay{Seat: int(play.Seat), Card: play.Card})
		}
	}

	for i := 0; i < m.Seated(); i++ {
		info := SeatInfo{Seat: i, Name: players[i].Name, Connected: true}
		if placed[i] {
			bid := bids[i]
			info.Bid = &bid
		}
		state.Seats = append(state.Seats, info)
	}
	return state
}
