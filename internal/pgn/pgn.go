package pgn

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/benbeisheim/chesscourse-backend/internal/model"
)

const chapterSeparator = "\n\n\n"

// Chapter is one game block of a course file. Number counts game chapters
// only; Index is the 1-based position of the block in the document,
// header-only blocks included, and is what the course editor persists.
// FEN is the raw [FEN] tag value, empty for the standard start.
type Chapter struct {
	Number     int               `json:"number"`
	Index      int               `json:"index"`
	Title      string            `json:"title"`
	FEN        string            `json:"fen"`
	RawPGN     string            `json:"rawpgn"`
	Tags       map[string]string `json:"tags"`
	Moves      []Move            `json:"moves"`
	Comments   []Comment         `json:"comments"`
	Variations []Variation       `json:"variations"`
}

// Parser turns a multi-chapter PGN document into chapters.
type Parser struct {
	pgnFile string
}

func New(pgnFile string) *Parser {
	return &Parser{pgnFile: strings.ReplaceAll(pgnFile, "\r\n", "\n")}
}

// SplitChapters splits a document on blank-line pairs and drops empty blocks.
func SplitChapters(pgnFile string) []string {
	var chapters []string
	for _, chapter := range strings.Split(strings.ReplaceAll(pgnFile, "\r\n", "\n"), chapterSeparator) {
		if strings.TrimSpace(chapter) != "" {
			chapters = append(chapters, chapter)
		}
	}
	return chapters
}

// MetaData returns the quoted value of the first line starting with prefix.
func MetaData(lines []string, prefix string) string {
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		parts := strings.Split(line, `"`)
		if len(parts) < 2 {
			return ""
		}
		return parts[1]
	}
	return ""
}

var tagRe = regexp.MustCompile(`^\[(\w+)\s+"(.*)"\]$`)

// Tags collects every [Key "Value"] line.
func Tags(lines []string) map[string]string {
	tags := make(map[string]string)
	for _, line := range lines {
		if m := tagRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			tags[m[1]] = m[2]
		}
	}
	return tags
}

func moveText(lines []string) string {
	var parts []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "[") {
			continue
		}
		parts = append(parts, line)
	}
	return strings.Join(parts, " ")
}

// headerOnly reports a block that carries document tags but no game.
func headerOnly(lines []string) bool {
	return moveText(lines) == "" && MetaData(lines, "[Event") == "" && MetaData(lines, "[FEN") == ""
}

// ParseChapter parses a single chapter block.
func ParseChapter(number int, text string) (Chapter, error) {
	lines := strings.Split(text, "\n")
	chapter := Chapter{
		Number:     number,
		Index:      number,
		Title:      MetaData(lines, "[Event"),
		RawPGN:     text,
		Tags:       Tags(lines),
		Moves:      []Move{},
		Comments:   []Comment{},
		Variations: []Variation{},
	}

	board := model.NewBoard()
	chapter.FEN = MetaData(lines, "[FEN")
	if chapter.FEN != "" {
		b, err := model.FenReader(chapter.FEN)
		if err != nil {
			return chapter, &ChapterError{Number: number, Title: chapter.Title, Err: err}
		}
		board = b
	}

	variation, err := ParseVariation(board, moveText(lines), board.MoveCount(), board.Turn(), nil)
	if err != nil {
		return chapter, &ChapterError{Number: number, Title: chapter.Title, Err: err}
	}
	chapter.Moves = variation.Moves
	chapter.Comments = variation.Comments
	chapter.Variations = variation.Variations
	return chapter, nil
}

// ParseChapters parses every chapter in the document. Chapters that fail
// are left out and their errors joined; the raw chapter texts are returned
// in document order. Tags from header-only blocks are inherited by every
// chapter unless the chapter sets them itself.
func (p *Parser) ParseChapters() ([]Chapter, []string, error) {
	rawChapterTexts := SplitChapters(p.pgnFile)
	headerTags := make(map[string]string)
	chapters := []Chapter{}
	var errs []error

	number := 0
	for i, text := range rawChapterTexts {
		lines := strings.Split(text, "\n")
		if headerOnly(lines) {
			maps.Copy(headerTags, Tags(lines))
			continue
		}

		number++
		chapter, err := ParseChapter(number, text)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		chapter.Index = i + 1
		own := chapter.Tags
		chapter.Tags = maps.Clone(headerTags)
		maps.Copy(chapter.Tags, own)
		chapters = append(chapters, chapter)
	}

	return chapters, rawChapterTexts, errors.Join(errs...)
}

// ParseData parses the document into the flattened course shape used by
// the course editor.
func (p *Parser) ParseData() (*Course, []string, error) {
	chapters, rawChapterTexts, err := p.ParseChapters()
	return BuildCourse(chapters, rawChapterTexts), rawChapterTexts, err
}

// BuildCourse assembles the course editor shape from parsed chapters. The
// title comes from the first [CourseTitle] tag in the document.
func BuildCourse(chapters []Chapter, rawChapterTexts []string) *Course {
	var title string
	for _, text := range rawChapterTexts {
		if title = MetaData(strings.Split(text, "\n"), "[CourseTitle"); title != "" {
			break
		}
	}

	course := NewCourse(title)
	for _, chapter := range chapters {
		course.AddChapter(chapter.Legacy())
	}
	return course
}
