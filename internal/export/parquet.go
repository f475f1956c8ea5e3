package export

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/gofiber/fiber/v2/log"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/benbeisheim/chesscourse-backend/internal/model"
	"github.com/benbeisheim/chesscourse-backend/internal/pgn"
)

// PositionRow is one move of a chapter with the position it leads to.
// Variation is empty for the mainline and a dotted index path such as
// "0.1" for nested lines. Ply counts half-moves from the start of the game.
type PositionRow struct {
	Chapter    int32  `parquet:"name=chapter, type=INT32"`
	Title      string `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Variation  string `parquet:"name=variation, type=BYTE_ARRAY, convertedtype=UTF8"`
	Ply        int32  `parquet:"name=ply, type=INT32"`
	MoveNumber int32  `parquet:"name=move_number, type=INT32"`
	Color      string `parquet:"name=color, type=BYTE_ARRAY, convertedtype=UTF8"`
	Move       string `parquet:"name=move, type=BYTE_ARRAY, convertedtype=UTF8"`
	FEN        string `parquet:"name=fen, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// Rows flattens every chapter into position rows, each line followed by
// its sub-variations depth first.
func Rows(chapters []pgn.Chapter) []PositionRow {
	var rows []PositionRow
	for _, chapter := range chapters {
		rows = appendLine(rows, chapter, "", chapter.Moves)
		rows = appendVariations(rows, chapter, "", chapter.Variations)
	}
	return rows
}

func appendVariations(rows []PositionRow, chapter pgn.Chapter, prefix string, variations []pgn.Variation) []PositionRow {
	for i, variation := range variations {
		path := strconv.Itoa(i)
		if prefix != "" {
			path = prefix + "." + path
		}
		rows = appendLine(rows, chapter, path, variation.Moves)
		rows = appendVariations(rows, chapter, path, variation.Variations)
	}
	return rows
}

func appendLine(rows []PositionRow, chapter pgn.Chapter, path string, moves []pgn.Move) []PositionRow {
	for _, m := range moves {
		rows = append(rows, PositionRow{
			Chapter:    int32(chapter.Number),
			Title:      chapter.Title,
			Variation:  path,
			Ply:        ply(m.MoveNumber, m.TeamColor),
			MoveNumber: int32(m.MoveNumber),
			Color:      string(m.TeamColor),
			Move:       m.Move,
			FEN:        m.Position,
		})
	}
	return rows
}

func ply(moveNumber int, color model.Color) int32 {
	p := 2*(moveNumber-1) + 1
	if color == model.Black {
		p++
	}
	return int32(p)
}

// WriteParquet drains records into a SNAPPY compressed parquet file.
func WriteParquet(path string, records <-chan PositionRow, parallel int64) error {
	log.Infof("writing parquet to %s", path)

	fileWriter, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer fileWriter.Close()

	parquetWriter, err := writer.NewParquetWriter(fileWriter, new(PositionRow), parallel)
	if err != nil {
		return err
	}
	parquetWriter.CompressionType = parquet.CompressionCodec_SNAPPY

	count := 0
	for record := range records {
		if err := parquetWriter.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", count, err)
		}
		count++
	}
	if err := parquetWriter.WriteStop(); err != nil {
		return err
	}
	log.Infof("wrote %d positions to %s", count, path)
	return fileWriter.Close()
}

// ReadParquet loads every row of a file written by WriteParquet.
func ReadParquet(path string, parallel int64) ([]PositionRow, error) {
	absPath := path
	if !filepath.IsAbs(path) {
		if resolved, err := filepath.Abs(path); err == nil {
			absPath = resolved
		}
	}
	fileReader, err := local.NewLocalFileReader(absPath)
	if err != nil {
		return nil, err
	}
	defer fileReader.Close()

	parquetReader, err := reader.NewParquetReader(fileReader, new(PositionRow), parallel)
	if err != nil {
		return nil, err
	}
	defer parquetReader.ReadStop()

	num := int(parquetReader.GetNumRows())
	rows := make([]PositionRow, num)
	if num == 0 {
		return rows, nil
	}
	if err := parquetReader.Read(&rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Feed sends rows on a new channel and closes it when done or when stop is
// closed.
func Feed(rows []PositionRow, stop <-chan struct{}) <-chan PositionRow {
	records := make(chan PositionRow)
	go func() {
		defer close(records)
		for _, row := range rows {
			select {
			case records <- row:
			case <-stop:
				return
			}
		}
	}()
	return records
}
