package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbeisheim/chesscourse-backend/internal/pgn"
)

const doc = `[Event "Sicilian"]

1. e4 c5 (1... e5 2. Nf3 (2. f4)) 2. Nf3 *


[Event "Endgame"]
[FEN "4k3/8/8/8/8/8/4P3/4K3 b - - 0 30"]

30... Kd7 31. e4 *
`

func parsed(t *testing.T) []pgn.Chapter {
	t.Helper()
	chapters, _, err := pgn.New(doc).ParseChapters()
	require.NoError(t, err)
	require.Len(t, chapters, 2)
	return chapters
}

func TestRows(t *testing.T) {
	rows := Rows(parsed(t))
	require.Len(t, rows, 8)

	var got []string
	for _, r := range rows {
		got = append(got, r.Variation+":"+r.Move)
	}
	assert.Equal(t, []string{":e4", ":c5", ":Nf3", "0:e5", "0:Nf3", "0.0:f4", ":Kd7", ":e4"}, got)

	assert.Equal(t, PositionRow{
		Chapter:    1,
		Title:      "Sicilian",
		Variation:  "0.0",
		Ply:        3,
		MoveNumber: 2,
		Color:      "white",
		Move:       "f4",
		FEN:        "rnbqkbnr/pppp1ppp/8/4p3/4PP2/8/PPPP2PP/RNBQKBNR b KQkq f3 0 2",
	}, rows[5])

	assert.Equal(t, int32(2), rows[6].Chapter)
	assert.Equal(t, int32(60), rows[6].Ply)
	assert.Equal(t, int32(61), rows[7].Ply)
}

func TestWriteParquet_RoundTrip(t *testing.T) {
	rows := Rows(parsed(t))
	path := filepath.Join(t.TempDir(), "positions.parquet")

	require.NoError(t, WriteParquet(path, Feed(rows, nil), 1))

	back, err := ReadParquet(path, 1)
	require.NoError(t, err)
	assert.Equal(t, rows, back)
}

func TestFeed_Stops(t *testing.T) {
	stop := make(chan struct{})
	records := Feed(make([]PositionRow, 10), stop)
	<-records
	close(stop)

	n := 0
	for range records {
		n++
	}
	assert.LessOrEqual(t, n, 9)
}
