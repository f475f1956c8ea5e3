package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chesscourse-backend/internal/middleware"
	"github.com/benbeisheim/chesscourse-backend/internal/pgn"
	"github.com/benbeisheim/chesscourse-backend/internal/service"
)

type CourseController struct {
	courseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{courseService: courseService}
}

type courseListItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	CreatedAt    time.Time `json:"createdAt"`
	ChapterCount int       `json:"chapterCount"`
}

func (cc *CourseController) ParsePGN(c *fiber.Ctx) error {
	raw, err := pgn.Decode(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(cc.courseService.ParsePGN(raw))
}

func (cc *CourseController) ImportCourse(c *fiber.Ctx) error {
	author := c.Locals(middleware.AuthorKey).(string)

	raw, err := pgn.Decode(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	course, err := cc.courseService.ImportCourse(raw, author)
	if err != nil && course == nil {
		return chapterError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"course": course,
		"errors": service.ErrorList(err),
	})
}

func (cc *CourseController) ListCourses(c *fiber.Ctx) error {
	courses := cc.courseService.ListCourses()
	items := make([]courseListItem, 0, len(courses))
	for _, course := range courses {
		items = append(items, courseListItem{
			ID:           course.ID,
			Title:        course.Title,
			Author:       course.Author,
			CreatedAt:    course.CreatedAt,
			ChapterCount: len(course.Chapters),
		})
	}
	return c.JSON(items)
}

func (cc *CourseController) GetCourse(c *fiber.Ctx) error {
	course, err := cc.courseService.GetCourse(c.Params("courseId"))
	if err != nil {
		return notFoundOr500(c, err)
	}
	return c.JSON(course)
}

func (cc *CourseController) DeleteCourse(c *fiber.Ctx) error {
	if err := cc.courseService.DeleteCourse(c.Params("courseId")); err != nil {
		return notFoundOr500(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (cc *CourseController) ListChapters(c *fiber.Ctx) error {
	course, err := cc.courseService.GetCourse(c.Params("courseId"))
	if err != nil {
		return notFoundOr500(c, err)
	}
	return c.JSON(course.Summaries())
}

func (cc *CourseController) GetChapter(c *fiber.Ctx) error {
	number, err := c.ParamsInt("number")
	if err != nil || number < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "chapter number must be a positive integer",
		})
	}

	chapter, err := cc.courseService.GetChapter(c.Params("courseId"), number)
	if err != nil {
		return notFoundOr500(c, err)
	}
	return c.JSON(chapter)
}

func (cc *CourseController) AddChapters(c *fiber.Ctx) error {
	raw, err := pgn.Decode(c.Body())
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	course, err := cc.courseService.AddChapters(c.Params("courseId"), raw)
	if err != nil && course == nil {
		return chapterError(c, err)
	}

	return c.JSON(fiber.Map{
		"course": course,
		"errors": service.ErrorList(err),
	})
}

func chapterError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNoChapters):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  service.ErrNoChapters.Error(),
			"errors": service.ErrorList(err),
		})
	case errors.Is(err, service.ErrCourseNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	log.Errorf("course import failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to import course",
	})
}

func notFoundOr500(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrCourseNotFound) ||
		errors.Is(err, service.ErrChapterNotFound) ||
		errors.Is(err, service.ErrBoardNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	log.Errorf("request failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
	})
}
