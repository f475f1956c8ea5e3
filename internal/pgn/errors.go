package pgn

import (
	"errors"
	"fmt"

	"github.com/benbeisheim/chesscourse-backend/internal/model"
)

var (
	ErrUnresolvedMove      = errors.New("no valid piece found for move")
	ErrUnbalancedVariation = errors.New("unbalanced variation parentheses")
)

// MoveError reports a movetext token that could not be played.
type MoveError struct {
	Token      string
	TeamColor  model.Color
	MoveNumber int
	FEN        string
	Err        error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %d (%s) %q: %v, FEN: '%s'", e.MoveNumber, e.TeamColor, e.Token, e.Err, e.FEN)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// ChapterError wraps the failure that stopped one chapter from parsing.
type ChapterError struct {
	Number int
	Title  string
	Err    error
}

func (e *ChapterError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("chapter %d: %v", e.Number, e.Err)
	}
	return fmt.Sprintf("chapter %d %q: %v", e.Number, e.Title, e.Err)
}

func (e *ChapterError) Unwrap() error {
	return e.Err
}
