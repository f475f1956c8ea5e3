package pgn

// Course is the flattened document shape stored by the course editor.
type Course struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Image       string          `json:"image,omitempty"`
	Author      string          `json:"author,omitempty"`
	ColorSide   string          `json:"colorside,omitempty"`
	Chapters    []CourseChapter `json:"chapters"`
}

type CourseChapter struct {
	Title   string    `json:"title"`
	RawPGN  string    `json:"rawpgn"`
	PGNData []PGNData `json:"pgndata"`
}

// PGNData holds the mainline tokens of a chapter. FEN is the chapter's FEN
// tag as written, empty for the standard start.
type PGNData struct {
	ParsedMoves    []string `json:"parsedMoves"`
	ParsedComments []string `json:"parsedComments"`
	FEN            string   `json:"fen"`
	Index          int      `json:"index"`
}

func NewCourse(title string) *Course {
	return &Course{
		Title:    title,
		Chapters: []CourseChapter{},
	}
}

func (c *Course) AddChapter(chapter CourseChapter) {
	c.Chapters = append(c.Chapters, chapter)
}

// Legacy flattens the chapter into the course editor shape.
func (c Chapter) Legacy() CourseChapter {
	moves := make([]string, 0, len(c.Moves))
	for _, m := range c.Moves {
		moves = append(moves, m.Move)
	}
	comments := make([]string, 0, len(c.Comments))
	for _, cm := range c.Comments {
		comments = append(comments, cm.Text)
	}

	return CourseChapter{
		Title:  c.Title,
		RawPGN: c.RawPGN,
		PGNData: []PGNData{{
			ParsedMoves:    moves,
			ParsedComments: comments,
			FEN:            c.FEN,
			Index:          c.Index,
		}},
	}
}
