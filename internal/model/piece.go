package model

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

// Notation returns the SAN letter of the piece, empty for pawns.
func (p PieceType) Notation() string {
	switch p {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	case Pawn:
		return ""
	}
	return ""
}

func (p PieceType) fenChar() byte {
	switch p {
	case King:
		return 'k'
	case Queen:
		return 'q'
	case Rook:
		return 'r'
	case Bishop:
		return 'b'
	case Knight:
		return 'n'
	case Pawn:
		return 'p'
	}
	return '?'
}

// PieceTypeFromChar maps a FEN or SAN letter to a piece type, ignoring case.
func PieceTypeFromChar(c byte) (PieceType, bool) {
	switch c {
	case 'k', 'K':
		return King, true
	case 'q', 'Q':
		return Queen, true
	case 'r', 'R':
		return Rook, true
	case 'b', 'B':
		return Bishop, true
	case 'n', 'N':
		return Knight, true
	case 'p', 'P':
		return Pawn, true
	}
	return "", false
}

type Color string

const (
	White Color = "white"
	Black Color = "black"
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// FEN returns the active color field for c.
func (c Color) FEN() string {
	if c == Black {
		return "b"
	}
	return "w"
}

func (c Color) forward() int {
	if c == Black {
		return -1
	}
	return 1
}

func (c Color) pawnRank() int {
	if c == Black {
		return 6
	}
	return 1
}

func (c Color) backRank() int {
	if c == Black {
		return 7
	}
	return 0
}

// Piece is a single unit on the board. EnPassant only means something for
// pawns and HasMoved only for kings and rooks; the other kinds carry no
// extra state.
//
// PossibleMoves is filled in by Board.ValidMoves and reflects the board as it
// was the last time the owning Board recomputed it.
type Piece struct {
	Type          PieceType  `json:"type"`
	Color         Color      `json:"color"`
	Position      Position   `json:"position"`
	PossibleMoves []Position `json:"possibleMoves"`
	EnPassant     bool       `json:"enPassant,omitempty"`
	HasMoved      bool       `json:"hasMoved,omitempty"`
}

func NewPiece(pieceType PieceType, color Color, position Position) *Piece {
	return &Piece{
		Type:          pieceType,
		Color:         color,
		Position:      position,
		PossibleMoves: []Position{},
	}
}

func (p *Piece) Clone() *Piece {
	moves := make([]Position, len(p.PossibleMoves))
	copy(moves, p.PossibleMoves)
	return &Piece{
		Type:          p.Type,
		Color:         p.Color,
		Position:      p.Position.Clone(),
		PossibleMoves: moves,
		EnPassant:     p.EnPassant,
		HasMoved:      p.HasMoved,
	}
}

func (p *Piece) SamePosition(position Position) bool {
	return p.Position.SamePosition(position)
}

// CanMoveTo reports whether position is in the cached PossibleMoves.
func (p *Piece) CanMoveTo(position Position) bool {
	for _, move := range p.PossibleMoves {
		if move.SamePosition(position) {
			return true
		}
	}
	return false
}

// FENChar returns the placement letter, upper case for white.
func (p *Piece) FENChar() byte {
	c := p.Type.fenChar()
	if p.Color == White {
		return c - 'a' + 'A'
	}
	return c
}

func (p *Piece) IsPawn() bool   { return p.Type == Pawn }
func (p *Piece) IsKnight() bool { return p.Type == Knight }
func (p *Piece) IsBishop() bool { return p.Type == Bishop }
func (p *Piece) IsRook() bool   { return p.Type == Rook }
func (p *Piece) IsQueen() bool  { return p.Type == Queen }
func (p *Piece) IsKing() bool   { return p.Type == King }
