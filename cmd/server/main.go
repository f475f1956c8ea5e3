package main

import (
	"flag"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/chesscourse-backend/internal/config"
	"github.com/benbeisheim/chesscourse-backend/internal/controller"
	"github.com/benbeisheim/chesscourse-backend/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: nearest config.yaml upwards)")
	flag.Parse()

	cfg, err := config.Resolve(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	level, _ := cfg.Level()
	log.SetLevel(level)

	app := fiber.New(fiber.Config{
		AppName:   "chesscourse-backend",
		BodyLimit: cfg.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Origins(),
		AllowHeaders:     "Origin, Content-Type, Accept, X-Author",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize services
	courseService := service.NewCourseService(service.NewCourseManager())
	boardManager := service.NewBoardManager()

	controller.RegisterRoutes(app, courseService, boardManager, websocket.Config{
		ReadBufferSize:  cfg.WSReadBuffer,
		WriteBufferSize: cfg.WSWriteBuffer,
		Origins:         cfg.AllowOrigins,
	})

	log.Infof("listening on %s", cfg.Addr)
	log.Fatal(app.Listen(cfg.Addr))
}
