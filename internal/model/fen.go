package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const StartPosFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var ErrInvalidFEN = errors.New("invalid FEN")

// GetFen serializes the board. Castling rights and the en passant square
// are derived from the pieces' flags; the halfmove clock is always 0.
func (b *Board) GetFen() string {
	var fen strings.Builder
	for y := 7; y >= 0; y-- {
		emptySquare := 0
		for x := 0; x < 8; x++ {
			p := b.squares[y][x]
			if p == nil {
				emptySquare++
				continue
			}
			if emptySquare > 0 {
				fen.WriteString(strconv.Itoa(emptySquare))
				emptySquare = 0
			}
			fen.WriteByte(p.FENChar())
		}
		if emptySquare > 0 {
			fen.WriteString(strconv.Itoa(emptySquare))
		}
		if y > 0 {
			fen.WriteByte('/')
		}
	}

	fmt.Fprintf(&fen, " %s %s %s 0 %d", b.turn.FEN(), b.castleRights(), b.enPassantTarget(), b.moveCount)
	return fen.String()
}

func (b *Board) castleRights() string {
	var rights strings.Builder
	for _, color := range []Color{White, Black} {
		k := b.king(color)
		if k == nil || k.HasMoved {
			continue
		}
		for _, side := range []struct {
			x      int
			letter byte
		}{{7, 'K'}, {0, 'Q'}} {
			r := b.pieceAt(Position{X: side.x, Y: color.backRank()})
			if r == nil || !r.IsRook() || r.Color != color || r.HasMoved {
				continue
			}
			letter := side.letter
			if color == Black {
				letter += 'a' - 'A'
			}
			rights.WriteByte(letter)
		}
	}
	if rights.Len() == 0 {
		return "-"
	}
	return rights.String()
}

func (b *Board) enPassantTarget() string {
	for _, p := range b.pieces {
		if p.IsPawn() && p.EnPassant {
			return Position{X: p.Position.X, Y: p.Position.Y - p.Color.forward()}.String()
		}
	}
	return "-"
}

// FenReader builds a board from a FEN string. Structural problems (field
// count, placement characters, rank widths) are reported as ErrInvalidFEN;
// a position that is merely unreachable, such as one without a king, is
// accepted as is. The halfmove clock and fullmove number may be omitted; a
// fullmove number of 0, as written by boards counting from zero, is kept.
func FenReader(fen string) (*Board, error) {
	fenParts := strings.Fields(fen)
	if len(fenParts) < 4 {
		return nil, fmt.Errorf("%w: want at least 4 fields, got %d in %q", ErrInvalidFEN, len(fenParts), fen)
	}

	ranks := strings.Split(fenParts[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: want 8 ranks, got %d in %q", ErrInvalidFEN, len(ranks), fen)
	}

	var teamTurn Color
	switch fenParts[1] {
	case "w":
		teamTurn = White
	case "b":
		teamTurn = Black
	default:
		return nil, fmt.Errorf("%w: active color %q", ErrInvalidFEN, fenParts[1])
	}

	castle := fenParts[2]

	moveCount := 1
	if len(fenParts) >= 6 {
		n, err := strconv.Atoi(fenParts[5])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: fullmove number %q", ErrInvalidFEN, fenParts[5])
		}
		moveCount = n
	}

	var enPassantPawn *Position
	if fenParts[3] != "-" {
		square, err := ParsePosition(fenParts[3])
		if err != nil {
			return nil, fmt.Errorf("%w: en passant square: %v", ErrInvalidFEN, err)
		}
		p := enPassantPawnSquare(square, teamTurn)
		enPassantPawn = &p
	}

	pieces := make([]*Piece, 0, 32)
	for i, rank := range ranks {
		y := 7 - i
		x := 0
		for _, c := range []byte(rank) {
			if c >= '1' && c <= '8' {
				x += int(c - '0')
				continue
			}
			pieceType, ok := PieceTypeFromChar(c)
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q in rank %d", ErrInvalidFEN, c, y+1)
			}
			if x > 7 {
				return nil, fmt.Errorf("%w: rank %d overflows", ErrInvalidFEN, y+1)
			}

			color := White
			if c >= 'a' && c <= 'z' {
				color = Black
			}
			position := Position{X: x, Y: y}
			piece := NewPiece(pieceType, color, position)

			switch pieceType {
			case Pawn:
				piece.EnPassant = enPassantPawn != nil && enPassantPawn.SamePosition(position) && color != teamTurn
			case Rook:
				piece.HasMoved = !hasCastleRight(castle, color, position)
			case King:
				piece.HasMoved = !hasAnyCastleRight(castle, color)
			}

			pieces = append(pieces, piece)
			x++
		}
		if x != 8 {
			return nil, fmt.Errorf("%w: rank %d has %d squares", ErrInvalidFEN, y+1, x)
		}
	}

	return NewBoardFromPieces(pieces, teamTurn, moveCount), nil
}

// enPassantPawnSquare returns where the pawn that just double-stepped past
// square stands. The side to move is the one that may capture it.
func enPassantPawnSquare(square Position, teamTurn Color) Position {
	if teamTurn == White {
		return Position{X: square.X, Y: square.Y - 1}
	}
	return Position{X: square.X, Y: square.Y + 1}
}

func hasCastleRight(castle string, color Color, position Position) bool {
	if position.Y != color.backRank() {
		return false
	}
	var right byte
	switch position.X {
	case 7:
		right = 'K'
	case 0:
		right = 'Q'
	default:
		return false
	}
	if color == Black {
		right += 'a' - 'A'
	}
	return strings.IndexByte(castle, right) >= 0
}

func hasAnyCastleRight(castle string, color Color) bool {
	if color == White {
		return strings.ContainsAny(castle, "KQ")
	}
	return strings.ContainsAny(castle, "kq")
}
