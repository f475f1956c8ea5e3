package pgn

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/benbeisheim/chesscourse-backend/internal/model"
)

var (
	disambiguationRe = regexp.MustCompile(`([a-h]?)([1-8]?)[x-]?[a-h][1-8]`)
	promotionRe      = regexp.MustCompile(`=[QRBN]`)
)

// RemoveAnnotations drops check, mate, quality and separator marks, so
// "O-O+" becomes "OO" and "Nf3!?" becomes "Nf3".
func RemoveAnnotations(move string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '!', '?', '+', '-', '/', '#', ')':
			return -1
		}
		return r
	}, move)
}

func isCastle(move string) bool {
	switch move {
	case "OO", "OOO", "00", "000":
		return true
	}
	return false
}

// PushPGNMove resolves a SAN token for teamColor and plays it on board.
func PushPGNMove(board *model.Board, newMove string, teamColor model.Color) error {
	move := RemoveAnnotations(newMove)
	fail := func(err error) error {
		return &MoveError{Token: newMove, TeamColor: teamColor, FEN: board.GetFen(), Err: err}
	}
	if move == "" {
		return fail(ErrUnresolvedMove)
	}

	var (
		movingPieceType model.PieceType
		targetSquare    model.Position
		promotionType   model.PieceType
	)

	if isCastle(move) {
		movingPieceType = model.King
		rowKing := 0
		if teamColor == model.Black {
			rowKing = 7
		}
		columnKing := 2
		if len(move) == 2 {
			columnKing = 6
		}
		targetSquare = model.Position{X: columnKing, Y: rowKing}
	} else {
		movingPieceType = model.Pawn
		if c := move[0]; c >= 'A' && c <= 'Z' {
			if pieceType, ok := model.PieceTypeFromChar(c); ok {
				movingPieceType = pieceType
			}
		}

		moveWithoutPromotion := move
		if promotion := promotionRe.FindString(move); promotion != "" {
			moveWithoutPromotion = strings.Replace(move, promotion, "", 1)
			promotionType, _ = model.PieceTypeFromChar(promotion[1])
		}
		if len(moveWithoutPromotion) < 2 {
			return fail(ErrUnresolvedMove)
		}

		target, err := model.ParsePosition(moveWithoutPromotion[len(moveWithoutPromotion)-2:])
		if err != nil {
			return fail(fmt.Errorf("%w: %v", ErrUnresolvedMove, err))
		}
		targetSquare = target
	}

	movingPiece, ok := FindMovingPiece(board, move, movingPieceType, targetSquare, teamColor)
	if !ok {
		return fail(ErrUnresolvedMove)
	}
	if !board.PlayMove(targetSquare, movingPiece, promotionType) {
		return fail(ErrUnresolvedMove)
	}
	return nil
}

// FindMovingPiece returns the piece of movingPieceType and teamColor that
// can reach targetSquare, narrowed by any file or rank given in move. When
// several match, one whose move does not expose the king wins.
func FindMovingPiece(board *model.Board, move string, movingPieceType model.PieceType, targetSquare model.Position, teamColor model.Color) (model.Piece, bool) {
	if movingPieceType == model.King && isCastle(move) {
		return board.King(teamColor)
	}

	disambiguationFile, disambiguationRank := -1, -1
	if m := disambiguationRe.FindStringSubmatch(move); m != nil {
		if m[1] != "" {
			disambiguationFile = int(m[1][0] - 'a')
		}
		if m[2] != "" {
			disambiguationRank = int(m[2][0] - '1')
		}
	}

	var fallback *model.Piece
	for _, piece := range board.Pieces() {
		if piece.Type != movingPieceType || piece.Color != teamColor {
			continue
		}
		if disambiguationFile >= 0 && piece.Position.X != disambiguationFile {
			continue
		}
		if disambiguationRank >= 0 && piece.Position.Y != disambiguationRank {
			continue
		}
		if !reaches(board.GetValidMoves(piece), targetSquare) {
			continue
		}
		if !board.IsKingInCheck(piece, targetSquare).InCheck {
			return piece, true
		}
		if fallback == nil {
			p := piece
			fallback = &p
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return model.Piece{}, false
}

func reaches(moves []model.Position, target model.Position) bool {
	for _, m := range moves {
		if m.SamePosition(target) {
			return true
		}
	}
	return false
}
