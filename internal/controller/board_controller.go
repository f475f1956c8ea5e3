package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/benbeisheim/chesscourse-backend/internal/model"
	"github.com/benbeisheim/chesscourse-backend/internal/service"
)

type BoardController struct {
	boardManager *service.BoardManager
}

func NewBoardController(boardManager *service.BoardManager) *BoardController {
	return &BoardController{boardManager: boardManager}
}

type createBoardRequest struct {
	FEN string `json:"fen"`
}

func (bc *BoardController) CreateBoard(c *fiber.Ctx) error {
	var req createBoardRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}

	state, err := bc.boardManager.CreateSession(req.FEN)
	if err != nil {
		if errors.Is(err, model.ErrInvalidFEN) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return notFoundOr500(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Board created",
		"board_id": state.ID,
		"state":    state,
	})
}

func (bc *BoardController) GetBoardState(c *fiber.Ctx) error {
	state, err := bc.boardManager.State(c.Params("boardId"))
	if err != nil {
		return notFoundOr500(c, err)
	}
	return c.JSON(state)
}

// DeleteBoard frees a session. Clients still connected to it get
// ErrBoardNotFound on their next message.
func (bc *BoardController) DeleteBoard(c *fiber.Ctx) error {
	if err := bc.boardManager.DeleteSession(c.Params("boardId")); err != nil {
		return notFoundOr500(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
