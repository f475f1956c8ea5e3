package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/benbeisheim/chesscourse-backend/internal/pgn"
)

var ErrNoChapters = errors.New("no chapter could be parsed")

// ParseResult is the outcome of parsing a PGN document without storing it.
type ParseResult struct {
	Chapters        []pgn.Chapter `json:"chapters"`
	RawChapterTexts []string      `json:"rawChapterTexts"`
	Errors          []string      `json:"errors"`
}

type CourseService struct {
	courseManager *CourseManager
}

func NewCourseService(courseManager *CourseManager) *CourseService {
	return &CourseService{
		courseManager: courseManager,
	}
}

func (cs *CourseService) ParsePGN(raw string) ParseResult {
	chapters, rawChapterTexts, err := pgn.New(raw).ParseChapters()
	return ParseResult{
		Chapters:        chapters,
		RawChapterTexts: rawChapterTexts,
		Errors:          ErrorList(err),
	}
}

// ImportCourse parses raw and stores it as a new course. Chapters that fail
// to parse are reported in the returned error while the rest are kept; if
// none parse, nothing is stored and the error wraps ErrNoChapters.
func (cs *CourseService) ImportCourse(raw, author string) (*StoredCourse, error) {
	chapters, rawChapterTexts, parseErr := pgn.New(raw).ParseChapters()

	if len(chapters) == 0 {
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoChapters, parseErr)
		}
		return nil, ErrNoChapters
	}

	course := pgn.BuildCourse(chapters, rawChapterTexts)
	course.Author = author
	stored := &StoredCourse{
		ID:        uuid.New().String(),
		Title:     course.Title,
		Author:    author,
		CreatedAt: time.Now(),
		Course:    course,
		Chapters:  chapters,
	}
	course.ID = stored.ID
	result := stored.snapshot()

	if err := cs.courseManager.CreateCourse(stored); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	log.Infof("imported course %s %q by %s with %d chapters", stored.ID, stored.Title, author, len(chapters))
	if parseErr != nil {
		log.Warnf("course %s: skipped chapters: %v", stored.ID, parseErr)
	}
	return result, parseErr
}

// AddChapters parses raw and appends its chapters to an existing course.
func (cs *CourseService) AddChapters(courseID, raw string) (*StoredCourse, error) {
	if _, err := cs.courseManager.GetCourse(courseID); err != nil {
		return nil, err
	}

	chapters, _, parseErr := pgn.New(raw).ParseChapters()
	if len(chapters) == 0 {
		if parseErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoChapters, parseErr)
		}
		return nil, ErrNoChapters
	}

	course, err := cs.courseManager.AppendChapters(courseID, chapters)
	if err != nil {
		return nil, err
	}
	log.Infof("course %s: added %d chapters", courseID, len(chapters))
	return course, parseErr
}

func (cs *CourseService) GetCourse(courseID string) (*StoredCourse, error) {
	return cs.courseManager.GetCourse(courseID)
}

func (cs *CourseService) ListCourses() []*StoredCourse {
	return cs.courseManager.ListCourses()
}

func (cs *CourseService) DeleteCourse(courseID string) error {
	if err := cs.courseManager.DeleteCourse(courseID); err != nil {
		return err
	}
	log.Infof("deleted course %s", courseID)
	return nil
}

func (cs *CourseService) GetChapter(courseID string, number int) (pgn.Chapter, error) {
	return cs.courseManager.GetChapter(courseID, number)
}

// ErrorList flattens a joined error into one message per failure.
func ErrorList(err error) []string {
	if err == nil {
		return []string{}
	}
	var errs []string
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			errs = append(errs, ErrorList(e)...)
		}
		return errs
	}
	return []string{err.Error()}
}
