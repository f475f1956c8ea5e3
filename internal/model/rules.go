package model

import (
	"errors"
	"strings"
)

var ErrNoHistory = errors.New("no previous position to undo to")

type CheckResult struct {
	InCheck       bool
	CheckingPiece *Piece
}

type CastleResult struct {
	Castle bool
	Rook   *Piece
}

// IsKingInCheck plays piece to destination on a scratch copy of the board
// and reports whether the mover's king is attacked afterwards. The board
// itself is never touched.
func (b *Board) IsKingInCheck(played Piece, destination Position) CheckResult {
	tempBoard := b.Clone()
	king := tempBoard.king(played.Color)
	if king == nil {
		return CheckResult{}
	}

	enPassant := tempBoard.IsEnPassant(played.Position, destination, played.Type, played.Color)
	if tempBoard.squareIsOccupiedByOpp(destination, played.Color) {
		tempBoard.removeAt(destination)
	}
	if enPassant {
		tempBoard.removeAt(Position{X: destination.X, Y: destination.Y - played.Color.forward()})
	}

	if tempPiece := tempBoard.pieceAt(played.Position); tempPiece != nil {
		tempPiece.Position = destination
		tempBoard.ValidMoves()
	}

	for _, p := range tempBoard.pieces {
		if p.Color != king.Color && p.CanMoveTo(king.Position) {
			return CheckResult{InCheck: true, CheckingPiece: p.Clone()}
		}
	}
	return CheckResult{}
}

// IsCheck reports whether the king of color is attacked right now.
func (b *Board) IsCheck(color Color) bool {
	k := b.king(color)
	if k == nil {
		return false
	}
	return b.isSquareAttacked(color.Opposite(), k.Position)
}

// InCheck reports whether a king of color standing on square would be
// attacked. Unlike the move cache this also counts pawn attacks on empty
// squares, which is what castling needs for the transit square.
func (b *Board) InCheck(color Color, square Position) bool {
	return b.isSquareAttacked(color.Opposite(), square)
}

func (b *Board) isSquareAttacked(attackingColor Color, position Position) bool {
	isAttacker := func(p *Piece, types ...PieceType) bool {
		if p == nil || p.Color != attackingColor {
			return false
		}
		for _, t := range types {
			if p.Type == t {
				return true
			}
		}
		return false
	}

	for _, dir := range rookDirs {
		targetPos := position.add(dir)
		for boundaryCheck(targetPos) {
			if p := b.pieceAt(targetPos); p != nil {
				if isAttacker(p, Queen, Rook) {
					return true
				}
				break
			}
			targetPos = targetPos.add(dir)
		}
	}
	for _, dir := range bishopDirs {
		targetPos := position.add(dir)
		for boundaryCheck(targetPos) {
			if p := b.pieceAt(targetPos); p != nil {
				if isAttacker(p, Queen, Bishop) {
					return true
				}
				break
			}
			targetPos = targetPos.add(dir)
		}
	}
	for _, dir := range knightDirs {
		if isAttacker(b.pieceAt(position.add(dir)), Knight) {
			return true
		}
	}
	for _, dir := range kingDirs {
		if isAttacker(b.pieceAt(position.add(dir)), King) {
			return true
		}
	}
	// an attacking pawn sits one rank behind the square, from its own point of view
	for _, dx := range []int{-1, 1} {
		pawnPos := Position{X: position.X + dx, Y: position.Y - attackingColor.forward()}
		if isAttacker(b.pieceAt(pawnPos), Pawn) {
			return true
		}
	}
	return false
}

// IsEnPassant reports whether a pawn of color going from initial to desired
// captures en passant.
func (b *Board) IsEnPassant(initial, desired Position, pieceType PieceType, color Color) bool {
	if pieceType != Pawn {
		return false
	}
	dir := color.forward()
	if abs(desired.X-initial.X) != 1 || desired.Y-initial.Y != dir {
		return false
	}
	p := b.pieceAt(Position{X: desired.X, Y: desired.Y - dir})
	return p != nil && p.IsPawn() && p.EnPassant && p.Color != color
}

// IsCastle reports whether moving played to destination is a castle: an
// unmoved king going two files along its back rank towards an unmoved rook,
// nothing in between, and neither the start nor the transit square attacked.
func (b *Board) IsCastle(played Piece, destination Position) CastleResult {
	king := b.pieceAt(played.Position)
	if king == nil || !king.IsKing() || king.HasMoved {
		return CastleResult{}
	}
	from := king.Position
	if abs(destination.X-from.X) != 2 || destination.Y != from.Y || from.Y != king.Color.backRank() {
		return CastleResult{}
	}

	deltaX, rookX := -1, 0
	if destination.X > from.X {
		deltaX, rookX = 1, 7
	}
	rookPosition := Position{X: rookX, Y: from.Y}
	rook := b.pieceAt(rookPosition)
	if rook == nil || !rook.IsRook() || rook.HasMoved || rook.Color != king.Color {
		return CastleResult{}
	}

	pathClear := b.isPathNotOccupied(rookPosition, from, deltaX, 0)
	squaresSafe := !b.InCheck(king.Color, from) &&
		!b.InCheck(king.Color, Position{X: from.X + deltaX, Y: from.Y})

	return CastleResult{Castle: pathClear && squaresSafe, Rook: rook.Clone()}
}

// PlayMove moves played to destination if that is legal, returning false
// and leaving the board untouched otherwise. promotion may be empty.
func (b *Board) PlayMove(destination Position, played Piece, promotion PieceType) bool {
	piece := b.pieceAt(played.Position)
	if piece == nil || !boundaryCheck(destination) {
		return false
	}

	if check := b.IsKingInCheck(*piece, destination); check.InCheck {
		return false
	}

	from := piece.Position
	castle := b.IsCastle(*piece, destination)
	enPassant := b.IsEnPassant(from, destination, piece.Type, piece.Color)

	switch {
	case castle.Castle:
		b.lastPosition = b.GetFen()
		rook := b.pieceAt(castle.Rook.Position)
		rookX := destination.X + 1
		if destination.X > from.X {
			rookX = destination.X - 1
		}
		rook.HasMoved = true
		rook.Position = Position{X: rookX, Y: from.Y}
		piece.HasMoved = true
		piece.Position = destination
		b.clearEnPassant(nil)
	case enPassant:
		b.lastPosition = b.GetFen()
		b.removeAt(Position{X: destination.X, Y: destination.Y - piece.Color.forward()})
		piece.Position = destination
		b.clearEnPassant(nil)
	case b.IsValidMove(from, destination):
		b.lastPosition = b.GetFen()
		b.removeAt(destination)
		piece.Position = destination
		if piece.IsKing() || piece.IsRook() {
			piece.HasMoved = true
		}
		b.clearEnPassant(piece)
		if piece.IsPawn() {
			piece.EnPassant = abs(destination.Y-from.Y) == 2
			if promotion != "" {
				b.promote(piece, promotion)
			}
		}
	default:
		return false
	}

	b.turn = b.turn.Opposite()
	if piece.Color == Black {
		b.moveCount++
	}
	b.ValidMoves()
	return true
}

func (b *Board) clearEnPassant(except *Piece) {
	for _, p := range b.pieces {
		if p != except && p.IsPawn() {
			p.EnPassant = false
		}
	}
}

func (b *Board) promote(pawn *Piece, promotionChoice PieceType) {
	promoted := createPromotedPiece(promotionChoice, pawn.Position, pawn.Color)
	for i, p := range b.pieces {
		if p == pawn {
			b.pieces[i] = promoted
			return
		}
	}
}

func createPromotedPiece(promotionChoice PieceType, destination Position, color Color) *Piece {
	switch promotionChoice {
	case Rook:
		piece := NewPiece(Rook, color, destination)
		piece.HasMoved = true
		return piece
	case King, Bishop, Knight:
		return NewPiece(promotionChoice, color, destination)
	default:
		return NewPiece(Queen, color, destination)
	}
}

// UndoMove restores the position saved before the last move. Only one ply
// is kept, so a second call fails with ErrNoHistory.
func (b *Board) UndoMove() error {
	if b.lastPosition == "" {
		return ErrNoHistory
	}
	restored, err := FenReader(b.lastPosition)
	if err != nil {
		return err
	}
	orientation := b.orientation
	*b = *restored
	b.orientation = orientation
	b.ValidMoves()
	return nil
}

// LegalMoves lists every move of color that PlayMove would accept,
// castling included.
func (b *Board) LegalMoves(color Color) []SimpleMove {
	legalMoves := []SimpleMove{}
	for _, p := range b.pieces {
		if p.Color != color {
			continue
		}
		candidates := append([]Position{}, p.PossibleMoves...)
		if p.IsKing() {
			for _, dx := range []int{-2, 2} {
				to := Position{X: p.Position.X + dx, Y: p.Position.Y}
				if b.IsCastle(*p, to).Castle {
					candidates = append(candidates, to)
				}
			}
		}
		for _, to := range candidates {
			if !b.IsKingInCheck(*p, to).InCheck {
				legalMoves = append(legalMoves, SimpleMove{From: p.Position, To: to})
			}
		}
	}
	return legalMoves
}

// SAN renders move in standard algebraic notation for the current position.
// It returns false when the move is not legal here.
func (b *Board) SAN(move WSMove) (string, bool) {
	piece := b.pieceAt(move.From)
	if piece == nil {
		return "", false
	}

	legal := false
	var rivals []Position
	for _, m := range b.LegalMoves(piece.Color) {
		if m.From.SamePosition(move.From) && m.To.SamePosition(move.To) {
			legal = true
			continue
		}
		if other := b.pieceAt(m.From); m.To.SamePosition(move.To) && other.Type == piece.Type {
			rivals = append(rivals, m.From)
		}
	}
	if !legal {
		return "", false
	}

	var san strings.Builder
	if b.IsCastle(*piece, move.To).Castle {
		if move.To.X > move.From.X {
			san.WriteString("O-O")
		} else {
			san.WriteString("O-O-O")
		}
	} else {
		isCapture := b.squareIsOccupied(move.To) ||
			b.IsEnPassant(move.From, move.To, piece.Type, piece.Color)
		san.WriteString(piece.Type.Notation())
		if piece.IsPawn() {
			if isCapture {
				san.WriteString(move.From.getFileNotation())
			}
		} else if len(rivals) > 0 {
			sameFile, sameRank := false, false
			for _, r := range rivals {
				sameFile = sameFile || r.X == move.From.X
				sameRank = sameRank || r.Y == move.From.Y
			}
			switch {
			case !sameFile:
				san.WriteString(move.From.getFileNotation())
			case !sameRank:
				san.WriteString(move.From.getRankNotation())
			default:
				san.WriteString(move.From.String())
			}
		}
		if isCapture {
			san.WriteString("x")
		}
		san.WriteString(move.To.String())
		if move.Promotion != "" {
			san.WriteString("=" + move.Promotion.Notation())
		}
	}

	after := b.Clone()
	if after.PlayMove(move.To, *after.pieceAt(move.From), move.Promotion) && after.IsCheck(piece.Color.Opposite()) {
		if len(after.LegalMoves(after.turn)) == 0 {
			san.WriteString("#")
		} else {
			san.WriteString("+")
		}
	}
	return san.String(), true
}
