package controller

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chesscourse-backend/internal/middleware"
	"github.com/benbeisheim/chesscourse-backend/internal/service"
)

// RegisterRoutes mounts the REST and websocket API on app.
func RegisterRoutes(app *fiber.App, courseService *service.CourseService, boardManager *service.BoardManager, wsConfig websocket.Config) {
	courseController := NewCourseController(courseService)
	boardController := NewBoardController(boardManager)
	wsController := NewWebSocketController(boardManager)

	app.Get("/ws/board/:boardId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, wsConfig))

	api := app.Group("/api")
	api.Post("/pgn/parse", courseController.ParsePGN)

	courses := api.Group("/courses")
	courses.Get("/", courseController.ListCourses)
	courses.Post("/", middleware.EnsureAuthor(), courseController.ImportCourse)
	courses.Get("/:courseId", courseController.GetCourse)
	courses.Delete("/:courseId", courseController.DeleteCourse)
	courses.Get("/:courseId/chapters", courseController.ListChapters)
	courses.Post("/:courseId/chapters", middleware.EnsureAuthor(), courseController.AddChapters)
	courses.Get("/:courseId/chapters/:number", courseController.GetChapter)

	boards := api.Group("/boards")
	boards.Post("/", boardController.CreateBoard)
	boards.Get("/:boardId", boardController.GetBoardState)
	boards.Delete("/:boardId", boardController.DeleteBoard)
}
