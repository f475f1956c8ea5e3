package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/benbeisheim/chesscourse-backend/internal/model"
	"github.com/benbeisheim/chesscourse-backend/internal/ws"
)

var (
	ErrBoardNotFound = errors.New("board not found")
	ErrIllegalMove   = errors.New("illegal move")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrNoPiece       = errors.New("no piece on square")
)

// Conn is the part of a websocket connection a session writes to.
type Conn interface {
	WriteJSON(v interface{}) error
}

type BoardState struct {
	ID           string             `json:"id"`
	FEN          string             `json:"fen"`
	Turn         model.Color        `json:"turn"`
	Orientation  model.Color        `json:"orientation"`
	LastPosition string             `json:"lastPosition"`
	LegalMoves   []model.SimpleMove `json:"legalMoves"`
	InCheck      bool               `json:"inCheck"`
	History      []model.Ply        `json:"history"`
	PGN          string             `json:"pgn"`
}

// BoardSession is one interactive board and the connections watching it.
type BoardSession struct {
	ID          string
	mu          sync.Mutex
	board       *model.Board
	startFEN    string
	history     []model.Ply
	connections map[string]Conn
	connMu      sync.RWMutex
}

type BoardManager struct {
	sessions map[string]*BoardSession
	mu       sync.RWMutex
}

func NewBoardManager() *BoardManager {
	return &BoardManager{
		sessions: make(map[string]*BoardSession),
	}
}

// CreateSession starts a board from fen, or from the standard position
// when fen is empty.
func (bm *BoardManager) CreateSession(fen string) (BoardState, error) {
	board := model.NewBoard()
	if fen != "" {
		b, err := model.FenReader(fen)
		if err != nil {
			return BoardState{}, err
		}
		board = b
	}

	session := &BoardSession{
		ID:          uuid.New().String(),
		board:       board,
		startFEN:    board.GetFen(),
		history:     []model.Ply{},
		connections: make(map[string]Conn),
	}

	bm.mu.Lock()
	bm.sessions[session.ID] = session
	bm.mu.Unlock()

	log.Infof("created board %s at %s", session.ID, session.startFEN)
	return session.State(), nil
}

func (bm *BoardManager) GetSession(boardID string) (*BoardSession, error) {
	bm.mu.RLock()
	defer bm.mu.RUnlock()

	session, exists := bm.sessions[boardID]
	if !exists {
		return nil, ErrBoardNotFound
	}
	return session, nil
}

func (bm *BoardManager) DeleteSession(boardID string) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if _, exists := bm.sessions[boardID]; !exists {
		return ErrBoardNotFound
	}
	delete(bm.sessions, boardID)
	log.Infof("deleted board %s", boardID)
	return nil
}

func (bm *BoardManager) State(boardID string) (BoardState, error) {
	session, err := bm.GetSession(boardID)
	if err != nil {
		return BoardState{}, err
	}
	return session.State(), nil
}

func (bm *BoardManager) Move(boardID string, move model.WSMove) (BoardState, error) {
	session, err := bm.GetSession(boardID)
	if err != nil {
		return BoardState{}, err
	}
	return session.Move(move)
}

func (bm *BoardManager) Undo(boardID string) (BoardState, error) {
	session, err := bm.GetSession(boardID)
	if err != nil {
		return BoardState{}, err
	}
	return session.Undo()
}

func (bm *BoardManager) Reverse(boardID string) (BoardState, error) {
	session, err := bm.GetSession(boardID)
	if err != nil {
		return BoardState{}, err
	}
	return session.Reverse(), nil
}

func (bm *BoardManager) RegisterConnection(boardID, connID string, conn Conn) error {
	session, err := bm.GetSession(boardID)
	if err != nil {
		return err
	}
	session.RegisterConnection(connID, conn)
	return nil
}

func (bm *BoardManager) UnregisterConnection(boardID, connID string) {
	session, err := bm.GetSession(boardID)
	if err != nil {
		return
	}
	session.UnregisterConnection(connID)
}

func (s *BoardSession) State() BoardState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

// Move plays move for the side to move. A pawn reaching the last rank
// without a promotion choice becomes a queen.
func (s *BoardSession) Move(move model.WSMove) (BoardState, error) {
	s.mu.Lock()

	piece, ok := s.board.PieceAt(move.From)
	if !ok {
		s.mu.Unlock()
		return BoardState{}, fmt.Errorf("%w: %s", ErrNoPiece, move.From)
	}
	if piece.Color != s.board.Turn() {
		s.mu.Unlock()
		return BoardState{}, ErrNotYourTurn
	}
	if piece.IsPawn() && move.Promotion == "" && (move.To.Y == 0 || move.To.Y == 7) {
		move.Promotion = model.Queen
	}

	notation, legal := s.board.SAN(move)
	if !legal || !s.board.PlayMove(move.To, piece, move.Promotion) {
		s.mu.Unlock()
		return BoardState{}, fmt.Errorf("%w: %s%s", ErrIllegalMove, move.From, move.To)
	}

	s.history = append(s.history, model.Ply{
		Piece:    piece,
		From:     move.From,
		To:       move.To,
		Notation: notation,
		FEN:      s.board.GetFen(),
	})
	state := s.state()
	s.mu.Unlock()

	s.broadcastState(state)
	return state, nil
}

// Undo takes back the last move.
func (s *BoardSession) Undo() (BoardState, error) {
	s.mu.Lock()

	if len(s.history) == 0 {
		s.mu.Unlock()
		return BoardState{}, model.ErrNoHistory
	}
	s.history = s.history[:len(s.history)-1]

	// the board only remembers one position back
	err := s.board.UndoMove()
	if errors.Is(err, model.ErrNoHistory) {
		err = s.restore(s.currentFEN())
	}
	if err != nil {
		s.mu.Unlock()
		return BoardState{}, err
	}

	state := s.state()
	s.mu.Unlock()

	s.broadcastState(state)
	return state, nil
}

func (s *BoardSession) Reverse() BoardState {
	s.mu.Lock()
	s.board.Reverse()
	state := s.state()
	s.mu.Unlock()

	s.broadcastState(state)
	return state
}

func (s *BoardSession) restore(fen string) error {
	board, err := model.FenReader(fen)
	if err != nil {
		return err
	}
	if board.Orientation() != s.board.Orientation() {
		board.Reverse()
	}
	s.board = board
	return nil
}

func (s *BoardSession) currentFEN() string {
	if n := len(s.history); n > 0 {
		return s.history[n-1].FEN
	}
	return s.startFEN
}

func (s *BoardSession) state() BoardState {
	turn := s.board.Turn()
	return BoardState{
		ID:           s.ID,
		FEN:          s.board.GetFen(),
		Turn:         turn,
		Orientation:  s.board.Orientation(),
		LastPosition: s.board.LastPosition(),
		LegalMoves:   s.board.LegalMoves(turn),
		InCheck:      s.board.IsCheck(turn),
		History:      append([]model.Ply{}, s.history...),
		PGN:          s.pgn(),
	}
}

// pgn renders the session's moves as a single PGN game.
func (s *BoardSession) pgn() string {
	var sb strings.Builder
	if s.startFEN != model.StartPosFEN {
		fmt.Fprintf(&sb, "[SetUp \"1\"]\n[FEN \"%s\"]\n\n", s.startFEN)
	}

	start, err := model.FenReader(s.startFEN)
	if err != nil {
		return ""
	}
	moveNumber, color := start.MoveCount(), start.Turn()

	var tokens []string
	for i, ply := range s.history {
		switch {
		case color == model.White:
			tokens = append(tokens, fmt.Sprintf("%d.", moveNumber))
		case i == 0:
			tokens = append(tokens, fmt.Sprintf("%d...", moveNumber))
		}
		tokens = append(tokens, ply.Notation)
		if color == model.Black {
			moveNumber++
		}
		color = color.Opposite()
	}
	tokens = append(tokens, "*")

	sb.WriteString(strings.Join(tokens, " "))
	return sb.String()
}

func (s *BoardSession) RegisterConnection(connID string, conn Conn) {
	s.connMu.Lock()
	s.connections[connID] = conn
	s.connMu.Unlock()
	log.Debugf("board %s: registered connection %s", s.ID, connID)
}

func (s *BoardSession) UnregisterConnection(connID string) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	delete(s.connections, connID)
	log.Debugf("board %s: unregistered connection %s", s.ID, connID)
}

func (s *BoardSession) broadcastState(state BoardState) {
	s.connMu.RLock()
	activeConnections := make(map[string]Conn, len(s.connections))
	for connID, conn := range s.connections {
		activeConnections[connID] = conn
	}
	s.connMu.RUnlock()

	message, err := ws.NewMessage(ws.MessageTypeBoardState, state)
	if err != nil {
		log.Errorf("board %s: failed to marshal state: %v", s.ID, err)
		return
	}

	for connID, conn := range activeConnections {
		if err := conn.WriteJSON(message); err != nil {
			log.Warnf("board %s: failed to send state to %s: %v", s.ID, connID, err)
			s.UnregisterConnection(connID)
		}
	}
}
