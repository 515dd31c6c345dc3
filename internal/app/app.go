package app

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jmoiron/sqlx"

	"lens-backend/internal/config"
	"lens-backend/internal/db"
	"lens-backend/internal/handlers"
	"lens-backend/internal/relay"
	"lens-backend/internal/services"
	"lens-backend/internal/store"
	"lens-backend/internal/utils"
)

// App owns every long-lived dependency. Everything is constructed here
// and injected; there are no package-level singletons.
type App struct {
	cfg  *config.Config
	conn *sqlx.DB

	HTTP *fiber.App
	Hub  *relay.Hub
}

// New wires config -> database -> services -> routes.
func New(cfg *config.Config) (*App, error) {
	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	st := store.New(conn)
	hub := relay.NewHub()

	userService := services.NewUserService(st)
	photoService := services.NewPhotoService(st, cfg.UploadDir, cfg.MaxImageWidth, cfg.JPEGQuality)
	chatService := services.NewChatService(st, hub)

	a := &App{cfg: cfg, conn: conn, Hub: hub}
	a.HTTP = newRouter(cfg, hub, userService, photoService, chatService)
	return a, nil
}

func newRouter(cfg *config.Config, hub *relay.Hub,
	userService *services.UserService,
	photoService *services.PhotoService,
	chatService *services.ChatService,
) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())

	app.Static("/uploads", cfg.UploadDir)

	authed := handlers.AuthRequired(cfg.JWTSecret)
	optional := handlers.OptionalAuth(cfg.JWTSecret)

	// Public landing page.
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"app": "lens", "status": "ok"})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth
	app.Get("/login", optional, handlers.LoginPageHandler())
	app.Post("/login", handlers.LoginHandler(userService, cfg.JWTSecret))
	app.Get("/logout", authed, handlers.LogoutHandler())

	// Dashboard, search, settings
	app.Get("/dashboard", authed, handlers.DashboardHandler(photoService))
	app.Get("/search", authed, handlers.SearchHandler(userService))
	app.Get("/settings", authed, handlers.SettingsPageHandler(userService))
	app.Post("/settings", authed, handlers.UpdateSettingsHandler(userService, cfg.UploadDir))

	// Photos
	app.Get("/portfolio/:user_id", optional, handlers.PortfolioHandler(photoService))
	app.Get("/upload", authed, handlers.UploadPageHandler())
	app.Post("/upload", authed, handlers.UploadHandler(photoService, cfg.UploadDir))
	app.Get("/photo/:photo_id", optional, handlers.PhotoHandler(photoService))
	app.Post("/like/:photo_id", authed, handlers.LikeHandler(photoService))
	app.Post("/comment/:photo_id", authed, handlers.CommentHandler(photoService))
	app.Post("/save/:photo_id", authed, handlers.SaveHandler(photoService))
	app.Post("/delete_photo/:photo_id", authed, handlers.DeletePhotoHandler(photoService))
	app.Get("/feed", authed, handlers.FeedHandler(photoService))
	app.Get("/explore", handlers.ExploreHandler(photoService))

	// Social graph
	app.Get("/connect/:user_id", authed, handlers.ConnectHandler(userService))
	app.Get("/disconnect/:user_id", authed, handlers.DisconnectHandler(userService))

	// Messaging
	app.Get("/messages", authed, handlers.InboxHandler(chatService))
	app.Get("/messages/:user_id", authed, handlers.ChatHandler(chatService))
	app.Post("/messages/:user_id", authed, handlers.SendMessageHandler(chatService))
	app.Get("/api/messages/:user_id/recent", authed, handlers.RecentMessagesHandler(chatService))

	// Live relay. Middleware order matters: upgrade check first, then auth.
	app.Use("/ws", handlers.WSUpgradeMiddleware)
	app.Use("/ws", handlers.AuthRequired(cfg.JWTSecret))
	app.Get("/ws", handlers.WebSocketHandler(hub))

	// Anything else is the not-found page.
	app.Use(func(c *fiber.Ctx) error {
		return fiber.ErrNotFound
	})

	return app
}

// errorHandler renders every error as the JSON equivalent of the 404/500
// error pages. Internal details stay in the log.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
		message = fiberErr.Message
	}
	if code == fiber.StatusInternalServerError {
		utils.LogError(err, "http")
		message = "Internal Server Error"
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	go func() {
		if err := a.HTTP.Listen(":" + a.cfg.Port); err != nil {
			log.Panic(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Gracefully shutting down...")
	if err := a.HTTP.Shutdown(); err != nil {
		return err
	}
	a.conn.Close()
	log.Println("Server shutdown complete")
	return nil
}

// Close releases resources without serving; tests use it.
func (a *App) Close() {
	a.conn.Close()
}
