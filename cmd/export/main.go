package main

import (
	"flag"
	"os"

	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chesscourse-backend/internal/export"
	"github.com/benbeisheim/chesscourse-backend/internal/pgn"
	"github.com/benbeisheim/chesscourse-backend/internal/service"
)

func main() {
	input := flag.String("input", "", "PGN course file to read")
	output := flag.String("output", "positions.parquet", "parquet file to write")
	parallel := flag.Int64("parallel", 4, "parquet writer goroutines")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("read %s: %v", *input, err)
	}
	raw, err := pgn.Decode(data)
	if err != nil {
		log.Fatalf("decode %s: %v", *input, err)
	}

	chapters, _, err := pgn.New(raw).ParseChapters()
	for _, msg := range service.ErrorList(err) {
		log.Warnf("skipped: %s", msg)
	}
	if len(chapters) == 0 {
		log.Fatalf("no chapter in %s could be parsed", *input)
	}

	stop := make(chan struct{})
	defer close(stop)
	if err := export.WriteParquet(*output, export.Feed(export.Rows(chapters), stop), *parallel); err != nil {
		log.Fatalf("write %s: %v", *output, err)
	}
}
