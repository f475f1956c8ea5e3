package model

var (
	rookDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}
	bishopDirs = []Position{{X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
	knightDirs = []Position{{X: 2, Y: 1}, {X: 2, Y: -1}, {X: -2, Y: 1}, {X: -2, Y: -1}, {X: 1, Y: 2}, {X: 1, Y: -2}, {X: -1, Y: 2}, {X: -1, Y: -2}}
	kingDirs   = []Position{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: -1, Y: 1}, {X: -1, Y: -1}}
)

// Board owns every piece in play. Pieces are stored in a flat arena and
// indexed by square; the index and every piece's PossibleMoves are rebuilt
// by ValidMoves after each mutation. Callers only ever see copies.
type Board struct {
	pieces       []*Piece
	squares      [8][8]*Piece
	turn         Color
	moveCount    int
	lastPosition string
	orientation  Color
}

var backRow = []PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

func initialBoardState() []*Piece {
	pieces := make([]*Piece, 0, 32)
	for x, pieceType := range backRow {
		pieces = append(pieces, NewPiece(pieceType, White, Position{X: x, Y: 0}))
		pieces = append(pieces, NewPiece(pieceType, Black, Position{X: x, Y: 7}))
	}
	for x := 0; x < 8; x++ {
		pieces = append(pieces, NewPiece(Pawn, White, Position{X: x, Y: 1}))
		pieces = append(pieces, NewPiece(Pawn, Black, Position{X: x, Y: 6}))
	}
	return pieces
}

// NewBoard returns the standard starting position.
func NewBoard() *Board {
	return NewBoardFromPieces(initialBoardState(), White, 1)
}

// NewBoardFromPieces builds a board that takes ownership of pieces.
func NewBoardFromPieces(pieces []*Piece, turn Color, moveCount int) *Board {
	b := &Board{
		pieces:      pieces,
		turn:        turn,
		moveCount:   moveCount,
		orientation: White,
	}
	b.ValidMoves()
	return b
}

func (b *Board) Turn() Color {
	return b.turn
}

func (b *Board) MoveCount() int {
	return b.moveCount
}

// LastPosition is the FEN captured just before the most recent move.
func (b *Board) LastPosition() string {
	return b.lastPosition
}

func (b *Board) Orientation() Color {
	return b.orientation
}

// Reverse flips the viewing side and refreshes the move cache.
func (b *Board) Reverse() {
	b.orientation = b.orientation.Opposite()
	b.ValidMoves()
}

// Pieces returns copies of every piece on the board.
func (b *Board) Pieces() []Piece {
	pieces := make([]Piece, 0, len(b.pieces))
	for _, p := range b.pieces {
		pieces = append(pieces, *p.Clone())
	}
	return pieces
}

func (b *Board) PieceAt(position Position) (Piece, bool) {
	p := b.pieceAt(position)
	if p == nil {
		return Piece{}, false
	}
	return *p.Clone(), true
}

// King returns the first king of color, if any. A board read from a broken
// FEN may have none.
func (b *Board) King(color Color) (Piece, bool) {
	k := b.king(color)
	if k == nil {
		return Piece{}, false
	}
	return *k.Clone(), true
}

// Clone deep copies the board; the copy shares no mutable state.
func (b *Board) Clone() *Board {
	pieces := make([]*Piece, 0, len(b.pieces))
	for _, p := range b.pieces {
		pieces = append(pieces, p.Clone())
	}
	clone := &Board{
		pieces:       pieces,
		turn:         b.turn,
		moveCount:    b.moveCount,
		lastPosition: b.lastPosition,
		orientation:  b.orientation,
	}
	clone.index()
	return clone
}

// ValidMoves recomputes PossibleMoves for every piece. It must run after any
// change to piece placement.
func (b *Board) ValidMoves() {
	b.index()
	for _, p := range b.pieces {
		p.PossibleMoves = b.validMovesFor(p)
	}
}

// GetValidMoves returns the pseudo-legal destinations of piece on this
// board. Moves that leave the own king in check are not filtered out.
func (b *Board) GetValidMoves(piece Piece) []Position {
	return b.validMovesFor(&piece)
}

// IsValidMove reports whether the piece on from has to in its cached moves.
func (b *Board) IsValidMove(from, to Position) bool {
	p := b.pieceAt(from)
	return p != nil && p.CanMoveTo(to)
}

func (b *Board) validMovesFor(piece *Piece) []Position {
	switch piece.Type {
	case Pawn:
		return b.getPsuedoPawnMoves(piece)
	case Knight:
		return b.getStepMoves(piece, knightDirs)
	case Bishop:
		return b.getMovesAlongDirections(piece, bishopDirs)
	case Rook:
		return b.getMovesAlongDirections(piece, rookDirs)
	case Queen:
		return b.getMovesAlongDirections(piece, kingDirs)
	case King:
		return b.getStepMoves(piece, kingDirs)
	default:
		return []Position{}
	}
}

func (b *Board) getPsuedoPawnMoves(piece *Piece) []Position {
	pawnMoves := []Position{}
	dir := piece.Color.forward()

	normalMove := Position{X: piece.Position.X, Y: piece.Position.Y + dir}
	if boundaryCheck(normalMove) && !b.squareIsOccupied(normalMove) {
		pawnMoves = append(pawnMoves, normalMove)
		specialMove := Position{X: piece.Position.X, Y: piece.Position.Y + dir*2}
		if piece.Position.Y == piece.Color.pawnRank() && !b.squareIsOccupied(specialMove) {
			pawnMoves = append(pawnMoves, specialMove)
		}
	}

	for _, dx := range []int{-1, 1} {
		attack := Position{X: piece.Position.X + dx, Y: piece.Position.Y + dir}
		if !boundaryCheck(attack) {
			continue
		}
		if b.squareIsOccupiedByOpp(attack, piece.Color) {
			pawnMoves = append(pawnMoves, attack)
			continue
		}
		if b.squareIsOccupied(attack) {
			continue
		}
		// en passant: the pawn beside us just made a double step
		side := b.pieceAt(Position{X: piece.Position.X + dx, Y: piece.Position.Y})
		if side != nil && side.IsPawn() && side.EnPassant && side.Color != piece.Color {
			pawnMoves = append(pawnMoves, attack)
		}
	}
	return pawnMoves
}

func (b *Board) getStepMoves(piece *Piece, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		targetPos := piece.Position.add(dir)
		if boundaryCheck(targetPos) && !b.squareIsOccupiedByTeam(targetPos, piece.Color) {
			moves = append(moves, targetPos)
		}
	}
	return moves
}

func (b *Board) getMovesAlongDirections(piece *Piece, dirs []Position) []Position {
	moves := []Position{}
	for _, dir := range dirs {
		targetPos := piece.Position.add(dir)
		for boundaryCheck(targetPos) {
			if !b.squareIsOccupied(targetPos) {
				moves = append(moves, targetPos)
			} else if b.squareIsOccupiedByOpp(targetPos, piece.Color) {
				moves = append(moves, targetPos)
				break
			} else {
				break
			}
			targetPos = targetPos.add(dir)
		}
	}
	return moves
}

func (b *Board) index() {
	b.squares = [8][8]*Piece{}
	for _, p := range b.pieces {
		if boundaryCheck(p.Position) {
			b.squares[p.Position.Y][p.Position.X] = p
		}
	}
}

func (b *Board) pieceAt(position Position) *Piece {
	if !boundaryCheck(position) {
		return nil
	}
	return b.squares[position.Y][position.X]
}

func (b *Board) king(color Color) *Piece {
	for _, p := range b.pieces {
		if p.IsKing() && p.Color == color {
			return p
		}
	}
	return nil
}

// removeAt drops whatever piece stands on position and reindexes.
func (b *Board) removeAt(position Position) {
	kept := b.pieces[:0]
	for _, p := range b.pieces {
		if !p.SamePosition(position) {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(b.pieces); i++ {
		b.pieces[i] = nil
	}
	b.pieces = kept
	b.index()
}

func (b *Board) squareIsOccupied(position Position) bool {
	return b.pieceAt(position) != nil
}

func (b *Board) squareIsOccupiedByOpp(position Position, color Color) bool {
	p := b.pieceAt(position)
	return p != nil && p.Color != color
}

func (b *Board) squareIsOccupiedByTeam(position Position, color Color) bool {
	p := b.pieceAt(position)
	return p != nil && p.Color == color
}

// isPathNotOccupied checks the squares strictly between initial and desired.
func (b *Board) isPathNotOccupied(desired, initial Position, dx, dy int) bool {
	numSteps := max(abs(desired.X-initial.X), abs(desired.Y-initial.Y))
	for i := 1; i < numSteps; i++ {
		if b.squareIsOccupied(Position{X: initial.X + i*dx, Y: initial.Y + i*dy}) {
			return false
		}
	}
	return true
}
