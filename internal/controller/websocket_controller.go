package controller

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chesscourse-backend/internal/middleware"
	"github.com/benbeisheim/chesscourse-backend/internal/model"
	"github.com/benbeisheim/chesscourse-backend/internal/service"
	"github.com/benbeisheim/chesscourse-backend/internal/ws"
)

type WebSocketController struct {
	boardManager *service.BoardManager
}

func NewWebSocketController(boardManager *service.BoardManager) *WebSocketController {
	return &WebSocketController{
		boardManager: boardManager,
	}
}

// lockedConn serialises writes. Moves made by other clients of the same
// board broadcast to this connection from their own goroutines.
type lockedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (lc *lockedConn) WriteJSON(v interface{}) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.conn.WriteJSON(v)
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	boardID, _ := c.Locals(middleware.BoardIDKey).(string)
	if boardID == "" {
		boardID = c.Params("boardId")
	}
	connID := fmt.Sprintf("%p", c)
	conn := &lockedConn{conn: c}

	if err := wsc.boardManager.RegisterConnection(boardID, connID, conn); err != nil {
		log.Warnf("board %s: failed to register connection: %v", boardID, err)
		sendError(conn, boardID, err.Error())
		c.Close()
		return
	}
	defer wsc.boardManager.UnregisterConnection(boardID, connID)

	if state, err := wsc.boardManager.State(boardID); err == nil {
		sendState(conn, state)
	}

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("board %s: read error: %v", boardID, err)
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Debugf("board %s: parse error: %v", boardID, err)
			sendError(conn, boardID, "malformed message")
			continue
		}

		if err := wsc.handleMessage(boardID, msg); err != nil {
			log.Debugf("board %s: handle error: %v", boardID, err)
			sendError(conn, boardID, err.Error())
		}
	}
}

// handleMessage applies one client message. The resulting state reaches
// every connection of the board through the session broadcast.
func (wsc *WebSocketController) handleMessage(boardID string, msg ws.Message) error {
	var err error
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return fmt.Errorf("invalid move payload: %w", err)
		}
		_, err = wsc.boardManager.Move(boardID, move)
	case ws.MessageTypeUndo:
		_, err = wsc.boardManager.Undo(boardID)
	case ws.MessageTypeReverse:
		_, err = wsc.boardManager.Reverse(boardID)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	return err
}

func sendState(conn service.Conn, state service.BoardState) {
	message, err := ws.NewMessage(ws.MessageTypeBoardState, state)
	if err != nil {
		log.Errorf("board %s: failed to marshal state: %v", state.ID, err)
		return
	}
	if err := conn.WriteJSON(message); err != nil {
		log.Debugf("board %s: failed to send state: %v", state.ID, err)
	}
}

func sendError(conn service.Conn, boardID, message string) {
	if err := conn.WriteJSON(ws.NewErrorMessage(message)); err != nil {
		log.Debugf("board %s: failed to send error: %v", boardID, err)
	}
}
