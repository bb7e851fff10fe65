package bootstrap

import (
	"context"
	"strings"

	"learning_server/adapter/in/http"
	"learning_server/config"
	"learning_server/infra/database"
	"learning_server/infra/middleware"
	"learning_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// multipart overhead allowed on top of the upload limit
const formOverhead = 1024 * 1024

func NewAPI(cfg *config.Config) (*fiber.App, func(), error) {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		ReadBufferSize:        16384,
		WriteBufferSize:       16384,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		BodyLimit:             cfg.MaxUploadBytes + formOverhead,
		ServerHeader:          "",
		DisableDefaultDate:    true,
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	allowCredentials := true
	if allowOrigins == "" || allowOrigins == "*" {
		if cfg.IsProduction() {
			allowOrigins = ""
			allowCredentials = false
		} else {
			allowOrigins = "http://localhost:3000,http://localhost:5173"
		}
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Request-ID",
		ExposeHeaders:    "X-Request-ID,X-RateLimit-Limit,Retry-After",
		AllowCredentials: allowCredentials,
		MaxAge:           86400,
	}))

	// Health and metrics (no auth)
	health := http.NewHealthHandler(deps.Pipeline)
	if deps.DB != nil {
		db := deps.DB
		health.WithCheck("postgres", http.PingFunc(db.PingContext)).
			WithPoolStats(func() any { return database.GetPoolStats(db) })
	} else {
		health.WithCheck("postgres", nil)
	}
	if deps.Redis != nil {
		client := deps.Redis
		health.WithCheck("redis", http.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	} else {
		health.WithCheck("redis", nil)
	}
	health.Register(app)

	// API routes: optional auth so results can be stored for signed-in users
	api := app.Group("/api/v1")
	api.Use(middleware.OptionalJWTAuth(cfg.JWTSecret))
	api.Use(middleware.RateLimit(deps.Limiter, cfg.RateLimitRPM))

	http.NewContentHandler(deps.ContentService, deps.Extractor, cfg.MaxUploadBytes).Register(api)
	http.NewAssessmentHandler(deps.AssessmentService).Register(api, middleware.JWTAuth(cfg.JWTSecret))

	logger.Info("API server initialized successfully")
	return app, cleanup, nil
}
