package model

import (
	"errors"
	"fmt"
)

const files = "abcdefgh"

var ErrInvalidSquare = errors.New("invalid square")

// Position is a board coordinate. X is the file (0 = a), Y is the rank (0 = 1).
// Move generation builds positions outside 0..7 while probing, so anything
// read from one must be bounds checked first.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) SamePosition(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}

func (p Position) Clone() Position {
	return Position{X: p.X, Y: p.Y}
}

func (p Position) InBounds() bool {
	return boundaryCheck(p)
}

// String returns the square in algebraic notation, e.g. "e4".
func (p Position) String() string {
	if !p.InBounds() {
		return fmt.Sprintf("(%d,%d)", p.X, p.Y)
	}
	return fmt.Sprintf("%c%d", files[p.X], p.Y+1)
}

func (p Position) getFileNotation() string {
	return string(files[p.X])
}

func (p Position) getRankNotation() string {
	return fmt.Sprintf("%d", p.Y+1)
}

func (p Position) add(dir Position) Position {
	return Position{X: p.X + dir.X, Y: p.Y + dir.Y}
}

// ParsePosition converts a square such as "e4" into a Position.
func ParsePosition(square string) (Position, error) {
	if len(square) != 2 {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidSquare, square)
	}
	file, rank := square[0], square[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidSquare, square)
	}
	return Position{X: int(file - 'a'), Y: int(rank - '1')}, nil
}

func boundaryCheck(position Position) bool {
	return position.X >= 0 && position.X < 8 && position.Y >= 0 && position.Y < 8
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
