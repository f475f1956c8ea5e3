package pgn

import (
	"strings"
	"testing"

	"github.com/notnil/chess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbeisheim/chesscourse-backend/internal/model"
)

const operaGame = `1. e4 e5 2. Nf3 d6 3. d4 Bg4 4. dxe5 Bxf3 5. Qxf3 dxe5 6. Bc4 Nf6 7. Qb3 Qe7
8. Nc3 c6 9. Bg5 b5 10. Nxb5 cxb5 11. Bxb5+ Nbd7 12. O-O-O Rd8 13. Rxd7 Rxd7
14. Rd1 Qe6 15. Bxd7+ Nxd7 16. Qb8+ Nxb8 17. Rd8# 1-0`

func parse(t *testing.T, moveText string) Variation {
	t.Helper()
	v, err := ParseVariation(model.NewBoard(), moveText, 1, model.White, nil)
	require.NoError(t, err)
	return v
}

func TestTokenize(t *testing.T) {
	got := Tokenize("1.e4 e5 2. Nf3 {a (quoted) comment} (2. f4 exf4) 2... Nc6 *")
	assert.Equal(t, []string{
		"1.", "e4", "e5", "2.", "Nf3", "{a (quoted) comment}",
		"(", "2.", "f4", "exf4", ")", "2...", "Nc6", "*",
	}, got)
}

func TestRemoveAnnotations(t *testing.T) {
	cases := map[string]string{
		"Nf3!?":   "Nf3",
		"O-O+":    "OO",
		"O-O-O#":  "OOO",
		"exd8=Q+": "exd8=Q",
		"e4)":     "e4",
	}
	for in, want := range cases {
		assert.Equal(t, want, RemoveAnnotations(in), in)
	}
}

func TestParseVariation_Mainline(t *testing.T) {
	v := parse(t, "1. e4 e5 2. Nf3 {a comment} Nc6")

	require.Len(t, v.Moves, 4)
	assert.Equal(t, Move{
		Move:       "e4",
		MoveNumber: 1,
		TeamColor:  model.White,
		Position:   "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
	}, v.Moves[0])
	assert.Equal(t, "Nc6", v.Moves[3].Move)
	assert.Equal(t, 2, v.Moves[3].MoveNumber)
	assert.Equal(t, model.Black, v.Moves[3].TeamColor)
	assert.Equal(t, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 0 3", v.Moves[3].Position)

	require.Len(t, v.Comments, 1)
	assert.Equal(t, Comment{Text: "a comment", MoveNumber: 2, TeamColor: model.White}, v.Comments[0])
	assert.Empty(t, v.Variations)
	assert.Nil(t, v.ParentMove)
}

func TestParseVariation_Nested(t *testing.T) {
	v := parse(t, "1. e4 e5 (1... c5 2. Nf3 (2. Nc3 Nc6) d6) 2. Nf3")

	require.Len(t, v.Moves, 3)
	assert.Equal(t, "Nf3", v.Moves[2].Move)
	assert.Equal(t, model.White, v.Moves[2].TeamColor)

	require.Len(t, v.Variations, 1)
	sicilian := v.Variations[0]
	require.NotNil(t, sicilian.ParentMove)
	assert.Equal(t, "e5", sicilian.ParentMove.Move)
	require.Len(t, sicilian.Moves, 3)
	assert.Equal(t, "c5", sicilian.Moves[0].Move)
	assert.Equal(t, model.Black, sicilian.Moves[0].TeamColor)
	assert.Equal(t, "rnbqkbnr/pp1ppppp/8/2p5/4P3/8/PPPP1PPP/RNBQKBNR w KQkq c6 0 2", sicilian.Moves[0].Position)

	require.Len(t, sicilian.Variations, 1)
	closed := sicilian.Variations[0]
	assert.Equal(t, "Nf3", closed.ParentMove.Move)
	require.Len(t, closed.Moves, 2)
	assert.Equal(t, "rnbqkbnr/pp1ppppp/8/2p5/4P3/2N5/PPPP1PPP/R1BQKBNR b KQkq - 0 2", closed.Moves[0].Position)
}

func TestParseVariation_VariationWithoutNumber(t *testing.T) {
	v := parse(t, "1. e4 e5 2. Nf3 (Bc4 Nf6) Nc6")

	require.Len(t, v.Variations, 1)
	alt := v.Variations[0]
	require.Len(t, alt.Moves, 2)
	assert.Equal(t, model.White, alt.Moves[0].TeamColor)
	assert.Equal(t, 2, alt.Moves[0].MoveNumber)
	assert.Equal(t, model.Black, alt.Moves[1].TeamColor)
}

func TestParseVariation_BeforeFirstMove(t *testing.T) {
	v := parse(t, "(1. d4 d5) 1. e4")

	require.Len(t, v.Variations, 1)
	assert.Nil(t, v.Variations[0].ParentMove)
	assert.Len(t, v.Variations[0].Moves, 2)
	require.Len(t, v.Moves, 1)
	assert.Equal(t, "e4", v.Moves[0].Move)
}

func TestParseVariation_FirstMoveAlternative(t *testing.T) {
	v := parse(t, "1. e4 (1. d4) e5")

	require.Len(t, v.Variations, 1)
	alt := v.Variations[0]
	assert.Equal(t, "e4", alt.ParentMove.Move)
	require.Len(t, alt.Moves, 1)
	assert.Equal(t, "rnbqkbnr/pppppppp/8/8/3P4/8/PPP1PPPP/RNBQKBNR b KQkq d3 0 1", alt.Moves[0].Position)
}

func TestParseVariation_Errors(t *testing.T) {
	cases := []struct {
		name     string
		moveText string
		target   error
	}{
		{"illegal move", "1. e4 e5 2. Ke3", ErrUnresolvedMove},
		{"garbage", "1. e4 zz", ErrUnresolvedMove},
		{"unclosed", "1. e4 (1. d4", ErrUnbalancedVariation},
		{"unopened", "1. e4 ) e5", ErrUnbalancedVariation},
		{"bad nested move", "1. e4 (1. e5) e5", ErrUnresolvedMove},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseVariation(model.NewBoard(), c.moveText, 1, model.White, nil)
			assert.ErrorIs(t, err, c.target)
		})
	}

	_, err := ParseVariation(model.NewBoard(), "1. e4 e5 2. Ke3", 1, model.White, nil)
	var moveErr *MoveError
	require.ErrorAs(t, err, &moveErr)
	assert.Equal(t, "Ke3", moveErr.Token)
	assert.Equal(t, 2, moveErr.MoveNumber)
	assert.Equal(t, model.White, moveErr.TeamColor)
}

func TestPushPGNMove_Special(t *testing.T) {
	t.Run("castle both sides", func(t *testing.T) {
		b, err := model.FenReader("r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
		require.NoError(t, err)
		require.NoError(t, PushPGNMove(b, "O-O", model.White))
		require.NoError(t, PushPGNMove(b, "0-0-0", model.Black))
		assert.Equal(t, "2kr3r/8/8/8/8/8/8/R4RK1 w - - 0 2", b.GetFen())
	})

	t.Run("promotion", func(t *testing.T) {
		b, err := model.FenReader("1r2k3/P7/8/8/8/8/8/4K3 w - - 0 1")
		require.NoError(t, err)
		require.NoError(t, PushPGNMove(b, "axb8=N", model.White))
		assert.Equal(t, "1N2k3/8/8/8/8/8/8/4K3 b - - 0 1", b.GetFen())
	})

	t.Run("en passant", func(t *testing.T) {
		b, err := model.FenReader("4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 2")
		require.NoError(t, err)
		require.NoError(t, PushPGNMove(b, "exd6", model.White))
		assert.Equal(t, "4k3/8/3P4/8/8/8/8/4K3 b - - 0 2", b.GetFen())
	})

	t.Run("pinned knight is skipped", func(t *testing.T) {
		// both knights reach b3 but the one on d2 is pinned by the bishop
		b, err := model.FenReader("4k3/8/8/b7/8/8/3N4/N3K3 w - - 0 1")
		require.NoError(t, err)
		require.NoError(t, PushPGNMove(b, "Nb3", model.White))
		p, ok := b.PieceAt(model.Position{X: 1, Y: 2})
		require.True(t, ok)
		assert.True(t, p.IsKnight())
		_, ok = b.PieceAt(model.Position{X: 0, Y: 0})
		assert.False(t, ok, "the knight on a1 should have moved")
		_, ok = b.PieceAt(model.Position{X: 3, Y: 1})
		assert.True(t, ok)
	})
}

func TestFindMovingPiece_Disambiguation(t *testing.T) {
	b, err := model.FenReader("4k3/8/8/8/R7/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)

	p, ok := FindMovingPiece(b, "R1a2", model.Rook, model.Position{X: 0, Y: 1}, model.White)
	require.True(t, ok)
	assert.Equal(t, "a1", p.Position.String())

	p, ok = FindMovingPiece(b, "R4a2", model.Rook, model.Position{X: 0, Y: 1}, model.White)
	require.True(t, ok)
	assert.Equal(t, "a4", p.Position.String())

	_, ok = FindMovingPiece(b, "Qa2", model.Queen, model.Position{X: 0, Y: 1}, model.White)
	assert.False(t, ok)
}

// The position after every mainline move must agree with an independent
// move generator.
func TestParseVariation_MatchesReferenceEngine(t *testing.T) {
	games := map[string]string{
		"opera": operaGame,
		"ruy lopez": `1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 5. O-O Be7 6. Re1 b5
7. Bb3 d6 8. c3 O-O 9. h3 Nb8 10. d4 Nbd7 11. Nbd2 Bb7 12. Bc2 Re8`,
		"en passant": "1. e4 Nf6 2. e5 d5 3. exd6 cxd6 4. d4 g5 5. h4 g4 6. f4 gxf3 7. Nxf3",
	}

	for name, moveText := range games {
		t.Run(name, func(t *testing.T) {
			v := parse(t, moveText)
			game := chess.NewGame()

			for _, m := range v.Moves {
				require.NoError(t, game.MoveStr(m.Move), m.Move)
				assert.Equal(t, comparableFEN(game.Position().String()), comparableFEN(m.Position), "after %d. %s", m.MoveNumber, m.Move)
			}
		})
	}
}

// comparableFEN keeps placement, side to move, castling and fullmove number.
func comparableFEN(fen string) string {
	f := strings.Fields(fen)
	return strings.Join([]string{f[0], f[1], f[2], f[5]}, " ")
}

func TestParseChapters(t *testing.T) {
	doc := `[CourseTitle "Openings"]
[Author "ben"]


[Event "Italian"]
[Site "?"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 {the Italian} *


[Event "Endgame"]
[FEN "8/8/8/4k3/8/8/4P3/4K3 w - - 7 50"]
[Author "someone else"]

50. Kd2 Kd5 51. Kd3 *


[Event "Broken"]

1. e4 e5 2. Qxf7


`
	p := New(strings.ReplaceAll(doc, "\n", "\r\n"))
	chapters, raw, err := p.ParseChapters()

	require.Error(t, err)
	var chapterErr *ChapterError
	require.ErrorAs(t, err, &chapterErr)
	assert.Equal(t, 3, chapterErr.Number)
	assert.Equal(t, "Broken", chapterErr.Title)
	assert.ErrorIs(t, err, ErrUnresolvedMove)

	assert.Len(t, raw, 4)
	require.Len(t, chapters, 2)

	italian := chapters[0]
	assert.Equal(t, 1, italian.Number)
	assert.Equal(t, 2, italian.Index)
	assert.Equal(t, "Italian", italian.Title)
	assert.Equal(t, "", italian.FEN)
	assert.Len(t, italian.Moves, 5)
	assert.Equal(t, "ben", italian.Tags["Author"])
	assert.Equal(t, "Openings", italian.Tags["CourseTitle"])
	require.Len(t, italian.Comments, 1)
	assert.Equal(t, "the Italian", italian.Comments[0].Text)

	endgame := chapters[1]
	assert.Equal(t, 2, endgame.Number)
	assert.Equal(t, 3, endgame.Index)
	assert.Equal(t, "8/8/8/4k3/8/8/4P3/4K3 w - - 7 50", endgame.FEN)
	assert.Equal(t, endgame.FEN, endgame.Legacy().PGNData[0].FEN)
	assert.Equal(t, "someone else", endgame.Tags["Author"])
	require.Len(t, endgame.Moves, 3)
	assert.Equal(t, 50, endgame.Moves[0].MoveNumber)
	assert.Equal(t, "8/8/8/3k4/8/3K4/4P3/8 b - - 0 51", endgame.Moves[2].Position)
}

func TestParseData(t *testing.T) {
	doc := `[CourseTitle "Traps"]


[Event "Scholar"]

1. e4 e5 2. Bc4 Nc6 3. Qh5 Nf6 {oops} 4. Qxf7# 1-0
`
	course, raw, err := New(doc).ParseData()
	require.NoError(t, err)
	assert.Len(t, raw, 2)

	assert.Equal(t, "Traps", course.Title)
	require.Len(t, course.Chapters, 1)
	ch := course.Chapters[0]
	assert.Equal(t, "Scholar", ch.Title)
	require.Len(t, ch.PGNData, 1)
	assert.Equal(t, []string{"e4", "e5", "Bc4", "Nc6", "Qh5", "Nf6", "Qxf7#"}, ch.PGNData[0].ParsedMoves)
	assert.Equal(t, []string{"oops"}, ch.PGNData[0].ParsedComments)
	assert.Equal(t, "", ch.PGNData[0].FEN)
	assert.Equal(t, 2, ch.PGNData[0].Index)
}

func TestMetaDataAndTags(t *testing.T) {
	lines := []string{`[Event "Sample"]`, `[FEN "8/8/8/8/8/8/8/8 w - - 0 1"]`, "1. e4"}

	assert.Equal(t, "Sample", MetaData(lines, "[Event"))
	assert.Equal(t, "", MetaData(lines, "[Site"))
	assert.Equal(t, map[string]string{"Event": "Sample", "FEN": "8/8/8/8/8/8/8/8 w - - 0 1"}, Tags(lines))
}

func TestDecode(t *testing.T) {
	got, err := Decode([]byte("\xEF\xBB\xBF[Event \"x\"]\r\n1. e4\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "[Event \"x\"]\n1. e4\n", got)

	// 0xE9 is é in Windows-1252 and invalid on its own in UTF-8
	got, err = Decode([]byte("{Ren\xE9}"))
	require.NoError(t, err)
	assert.Equal(t, "{René}", got)
}

func TestParseChapters_ZeroFullmove(t *testing.T) {
	doc := "[Event \"Zero\"]\n[FEN \"4k3/8/8/8/8/8/4P3/4K3 w - - 0 0\"]\n\n1. e4 Kd7 2. Kd2 *\n"

	chapters, _, err := New(doc).ParseChapters()
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 0", chapters[0].FEN)
	require.Len(t, chapters[0].Moves, 3)
	assert.Equal(t, 1, chapters[0].Moves[2].MoveNumber)
	assert.Equal(t, "8/3k4/8/8/4P3/8/3K4/8 b - - 0 1", chapters[0].Moves[2].Position)
}
