package service

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/benbeisheim/chesscourse-backend/internal/pgn"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrChapterNotFound = errors.New("chapter not found")
	ErrCourseExists    = errors.New("course already exists")
)

// StoredCourse keeps both parsed shapes of an imported course.
type StoredCourse struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Author    string        `json:"author"`
	CreatedAt time.Time     `json:"createdAt"`
	Course    *pgn.Course   `json:"course"`
	Chapters  []pgn.Chapter `json:"chapters"`

	seq uint64
}

// ChapterSummary is a chapter without its move tree.
type ChapterSummary struct {
	Number    int    `json:"number"`
	Title     string `json:"title"`
	FEN       string `json:"fen"`
	MoveCount int    `json:"moveCount"`
}

type CourseManager struct {
	courses map[string]*StoredCourse
	nextSeq uint64
	mu      sync.RWMutex
}

func NewCourseManager() *CourseManager {
	return &CourseManager{
		courses: make(map[string]*StoredCourse),
	}
}

func (cm *CourseManager) CreateCourse(course *StoredCourse) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.courses[course.ID]; exists {
		return ErrCourseExists
	}

	cm.nextSeq++
	course.seq = cm.nextSeq
	cm.courses[course.ID] = course
	return nil
}

func (cm *CourseManager) GetCourse(courseID string) (*StoredCourse, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	course, exists := cm.courses[courseID]
	if !exists {
		return nil, ErrCourseNotFound
	}
	return course.snapshot(), nil
}

// ListCourses returns every course in creation order.
func (cm *CourseManager) ListCourses() []*StoredCourse {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	courses := make([]*StoredCourse, 0, len(cm.courses))
	for _, course := range cm.courses {
		courses = append(courses, course.snapshot())
	}
	slices.SortFunc(courses, func(a, b *StoredCourse) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return courses
}

func (cm *CourseManager) DeleteCourse(courseID string) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if _, exists := cm.courses[courseID]; !exists {
		return ErrCourseNotFound
	}
	delete(cm.courses, courseID)
	return nil
}

func (cm *CourseManager) GetChapter(courseID string, number int) (pgn.Chapter, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	course, exists := cm.courses[courseID]
	if !exists {
		return pgn.Chapter{}, ErrCourseNotFound
	}
	for _, chapter := range course.Chapters {
		if chapter.Number == number {
			return chapter, nil
		}
	}
	return pgn.Chapter{}, ErrChapterNotFound
}

// AppendChapters renumbers chapters to follow the course's existing ones
// and stores them in both shapes.
func (cm *CourseManager) AppendChapters(courseID string, chapters []pgn.Chapter) (*StoredCourse, error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	course, exists := cm.courses[courseID]
	if !exists {
		return nil, ErrCourseNotFound
	}

	if course.Course == nil {
		course.Course = pgn.NewCourse(course.Title)
	}
	offset, indexOffset := 0, 0
	if n := len(course.Chapters); n > 0 {
		offset = course.Chapters[n-1].Number
		indexOffset = course.Chapters[n-1].Index
	}
	for _, chapter := range chapters {
		chapter.Number += offset
		chapter.Index += indexOffset
		course.Chapters = append(course.Chapters, chapter)
		course.Course.AddChapter(chapter.Legacy())
	}
	return course.snapshot(), nil
}

func (c *StoredCourse) snapshot() *StoredCourse {
	cp := *c
	cp.Chapters = slices.Clone(c.Chapters)
	if c.Course != nil {
		legacy := *c.Course
		legacy.Chapters = slices.Clone(c.Course.Chapters)
		cp.Course = &legacy
	}
	return &cp
}

func (c *StoredCourse) Summaries() []ChapterSummary {
	summaries := make([]ChapterSummary, 0, len(c.Chapters))
	for _, chapter := range c.Chapters {
		summaries = append(summaries, ChapterSummary{
			Number:    chapter.Number,
			Title:     chapter.Title,
			FEN:       chapter.FEN,
			MoveCount: len(chapter.Moves),
		})
	}
	return summaries
}
