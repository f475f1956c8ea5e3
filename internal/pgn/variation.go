package pgn

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/benbeisheim/chesscourse-backend/internal/model"
)

// Move is one ply as written in the movetext, with the FEN after it.
type Move struct {
	Move       string      `json:"move"`
	MoveNumber int         `json:"moveNumber"`
	TeamColor  model.Color `json:"teamColor"`
	Position   string      `json:"position"`
}

// Comment is a {...} annotation. TeamColor is the side that made the
// preceding move.
type Comment struct {
	Text       string      `json:"text"`
	MoveNumber int         `json:"moveNumber"`
	TeamColor  model.Color `json:"teamColor"`
}

// Variation is a line of moves with its comments and sub-variations.
// ParentMove is the move the line replaces, nil for a mainline.
type Variation struct {
	Moves      []Move      `json:"moves"`
	Comments   []Comment   `json:"comments"`
	Variations []Variation `json:"variations"`
	ParentMove *Move       `json:"parentMove,omitempty"`
}

var tokenRe = regexp.MustCompile(`\d+\.{1,3}\s?|\s*\{[^}]*\}\s*|\s*\(\s*|\s*\)\s*|\s+`)

// Tokenize splits movetext into move numbers, comments, parentheses and
// SAN tokens. Surrounding whitespace is trimmed and empty tokens dropped.
func Tokenize(moveText string) []string {
	var raw []string
	last := 0
	for _, loc := range tokenRe.FindAllStringIndex(moveText, -1) {
		if loc[0] > last {
			raw = append(raw, moveText[last:loc[0]])
		}
		raw = append(raw, moveText[loc[0]:loc[1]])
		last = loc[1]
	}
	if last < len(moveText) {
		raw = append(raw, moveText[last:])
	}

	tokens := make([]string, 0, len(raw))
	for _, token := range raw {
		if token = strings.TrimSpace(token); token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func isResult(token string) bool {
	switch token {
	case "*", "1-0", "0-1", "1/2-1/2":
		return true
	}
	return false
}

// ParseVariation plays moveText on board and returns the resulting tree.
// board is advanced to the end of the line. Each parenthesised
// sub-variation is replayed on its own board built from the position
// before the move it replaces.
func ParseVariation(board *model.Board, moveText string, moveNumber int, teamColor model.Color, parentMove *Move) (Variation, error) {
	variation := Variation{
		Moves:      []Move{},
		Comments:   []Comment{},
		Variations: []Variation{},
		ParentMove: parentMove,
	}
	startFEN := board.GetFen()

	var nested []string
	depth := 0

	for _, token := range Tokenize(moveText) {
		switch {
		case token == "(":
			if depth > 0 {
				nested = append(nested, token)
			} else {
				nested = nested[:0]
			}
			depth++

		case token == ")":
			if depth == 0 {
				return variation, ErrUnbalancedVariation
			}
			depth--
			if depth > 0 {
				nested = append(nested, token)
				continue
			}

			sub, err := parseSubVariation(variation.Moves, startFEN, strings.Join(nested, " "), moveNumber, teamColor)
			if err != nil {
				return variation, err
			}
			variation.Variations = append(variation.Variations, sub)

		case depth > 0:
			nested = append(nested, token)

		case strings.HasSuffix(token, "."):
			n, err := strconv.Atoi(strings.TrimRight(token, "."))
			if err != nil {
				return variation, fmt.Errorf("move number %q: %w", token, err)
			}
			moveNumber = n
			teamColor = model.White
			if strings.HasSuffix(token, "...") {
				teamColor = model.Black
			}

		case strings.HasPrefix(token, "{"):
			text := strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")
			variation.Comments = append(variation.Comments, Comment{
				Text:       strings.TrimSpace(text),
				MoveNumber: moveNumber,
				TeamColor:  teamColor.Opposite(),
			})

		case isResult(token), strings.HasPrefix(token, "$"):

		default:
			if err := PushPGNMove(board, token, teamColor); err != nil {
				var moveErr *MoveError
				if errors.As(err, &moveErr) {
					moveErr.MoveNumber = moveNumber
				}
				return variation, err
			}
			variation.Moves = append(variation.Moves, Move{
				Move:       token,
				MoveNumber: moveNumber,
				TeamColor:  teamColor,
				Position:   board.GetFen(),
			})
			teamColor = teamColor.Opposite()
		}
	}

	if depth != 0 {
		return variation, ErrUnbalancedVariation
	}
	return variation, nil
}

// parseSubVariation replays a parenthesised line as an alternative to the
// last move in moves.
func parseSubVariation(moves []Move, startFEN, moveText string, moveNumber int, teamColor model.Color) (Variation, error) {
	fen := startFEN
	var parent *Move
	if n := len(moves); n > 0 {
		last := moves[n-1]
		parent = &last
		moveNumber = last.MoveNumber
		teamColor = last.TeamColor
		if n > 1 {
			fen = moves[n-2].Position
		}
	}

	board, err := model.FenReader(fen)
	if err != nil {
		return Variation{}, err
	}
	return ParseVariation(board, moveText, moveNumber, teamColor, parent)
}
