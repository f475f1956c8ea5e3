package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benbeisheim/chesscourse-backend/internal/pgn"
)

const courseDoc = `[CourseTitle "Open Games"]


[Event "Italian"]

1. e4 e5 2. Nf3 Nc6 3. Bc4 {aiming at f7} *


[Event "Scotch"]

1. e4 e5 2. Nf3 Nc6 3. d4 exd4 (3... Nxd4) *


[Event "Typo"]

1. e4 e5 2. Nf3 Nc6 3. Bb6 *
`

func TestCourseService_Import(t *testing.T) {
	cs := NewCourseService(NewCourseManager())

	course, err := cs.ImportCourse(courseDoc, "ben")
	require.Error(t, err)
	assert.ErrorIs(t, err, pgn.ErrUnresolvedMove)
	require.NotNil(t, course)

	assert.Equal(t, "Open Games", course.Title)
	assert.Equal(t, "ben", course.Author)
	require.Len(t, course.Chapters, 2)
	assert.Equal(t, "Scotch", course.Chapters[1].Title)
	require.Len(t, course.Course.Chapters, 2)
	assert.Equal(t, course.ID, course.Course.ID)
	assert.Equal(t, []string{"aiming at f7"}, course.Course.Chapters[0].PGNData[0].ParsedComments)

	stored, err := cs.GetCourse(course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.Title, stored.Title)

	chapter, err := cs.GetChapter(course.ID, 2)
	require.NoError(t, err)
	assert.Len(t, chapter.Variations, 1)

	_, err = cs.GetChapter(course.ID, 3)
	assert.ErrorIs(t, err, ErrChapterNotFound)
	_, err = cs.GetChapter("missing", 1)
	assert.ErrorIs(t, err, ErrCourseNotFound)

	summaries := stored.Summaries()
	require.Len(t, summaries, 2)
	assert.Equal(t, ChapterSummary{Number: 1, Title: "Italian", FEN: "", MoveCount: 5}, summaries[0])
}

func TestCourseService_ImportNothing(t *testing.T) {
	cs := NewCourseService(NewCourseManager())

	_, err := cs.ImportCourse("1. e4 e5 2. Ke3", "ben")
	assert.ErrorIs(t, err, ErrNoChapters)
	assert.ErrorIs(t, err, pgn.ErrUnresolvedMove)

	_, err = cs.ImportCourse("  \n\n", "ben")
	assert.ErrorIs(t, err, ErrNoChapters)
	assert.Empty(t, cs.ListCourses())
}

func TestCourseService_AddChapters(t *testing.T) {
	cs := NewCourseService(NewCourseManager())
	course, _ := cs.ImportCourse(courseDoc, "ben")
	require.NotNil(t, course)

	updated, err := cs.AddChapters(course.ID, "[Event \"Ruy Lopez\"]\n\n1. e4 e5 2. Nf3 Nc6 3. Bb5 *\n")
	require.NoError(t, err)
	require.Len(t, updated.Chapters, 3)
	assert.Equal(t, 3, updated.Chapters[2].Number)
	require.Len(t, updated.Course.Chapters, 3)
	assert.Equal(t, 2, updated.Course.Chapters[0].PGNData[0].Index)
	assert.Equal(t, 4, updated.Course.Chapters[2].PGNData[0].Index)

	chapter, err := cs.GetChapter(course.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "Ruy Lopez", chapter.Title)

	_, err = cs.AddChapters(course.ID, "1. Ke2 Ke7 2. Kd4")
	assert.ErrorIs(t, err, ErrNoChapters)
	_, err = cs.AddChapters("missing", courseDoc)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestCourseService_ListAndDelete(t *testing.T) {
	cs := NewCourseService(NewCourseManager())
	first, _ := cs.ImportCourse("[Event \"a\"]\n\n1. e4 *", "ben")
	second, _ := cs.ImportCourse("[Event \"b\"]\n\n1. d4 *", "ben")

	courses := cs.ListCourses()
	require.Len(t, courses, 2)
	assert.Equal(t, first.ID, courses[0].ID)
	assert.Equal(t, second.ID, courses[1].ID)

	require.NoError(t, cs.DeleteCourse(first.ID))
	assert.ErrorIs(t, cs.DeleteCourse(first.ID), ErrCourseNotFound)
	_, err := cs.GetCourse(first.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)
	assert.Len(t, cs.ListCourses(), 1)
}

func TestParsePGN(t *testing.T) {
	cs := NewCourseService(NewCourseManager())

	result := cs.ParsePGN(courseDoc)
	assert.Len(t, result.Chapters, 2)
	assert.Len(t, result.RawChapterTexts, 4)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Typo")
	assert.Empty(t, cs.ListCourses())
}

func TestErrorList(t *testing.T) {
	assert.Equal(t, []string{}, ErrorList(nil))
	assert.Equal(t, []string{"a"}, ErrorList(errors.New("a")))
	assert.Equal(t, []string{"a", "b", "c"}, ErrorList(errors.Join(errors.New("a"), errors.Join(errors.New("b"), errors.New("c")))))
}
