package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learning_server/config"
	"learning_server/core/domain"
	"learning_server/internal/bootstrap"
	"learning_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

func main() {
	envErr := godotenv.Load()

	mode := flag.String("mode", "api", "Run mode: api, once")
	op := flag.String("op", bootstrap.OpRecommend, "Operation for -mode once: recommend, summarize, analyze")
	topic := flag.String("topic", "", "Topic for recommend")
	style := flag.String("style", "", "Learning style: visual, auditory, kinesthetic, reading")
	file := flag.String("file", "", "Document to use (pdf, docx, pptx, xlsx, md, txt)")
	scores := flag.String("assessment", `{"cognitiveScore":50,"emotionalScore":50,"physicalScore":50}`, "Assessment scores JSON for analyze")
	flag.Parse()

	cfg, err := config.Load()

	// One-shot output goes to stdout, so logs move to stderr.
	var out io.Writer = os.Stdout
	if *mode == "once" {
		out = os.Stderr
	}
	level := logger.LevelInfo
	if cfg != nil {
		level = logger.ParseLevel(cfg.LogLevel)
	}
	logger.Init(logger.Config{
		Level:   level,
		Output:  out,
		Service: "learning-server",
		Pretty:  cfg != nil && cfg.IsDevelopment(),
	})

	if envErr != nil {
		logger.Debug("No .env file found, using environment variables")
	}
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	switch *mode {
	case "api":
		runAPI(cfg)
	case "once":
		var assessment domain.AssessmentScores
		if err := json.Unmarshal([]byte(*scores), &assessment); err != nil {
			logger.Fatal("Invalid -assessment: %v", err)
		}
		runOnce(cfg, bootstrap.OnceRequest{
			Op:         *op,
			Topic:      *topic,
			Style:      *style,
			File:       *file,
			Assessment: assessment,
		})
	default:
		logger.Fatal("Unknown mode: %s", *mode)
	}
}

func runAPI(cfg *config.Config) {
	app, cleanup, err := bootstrap.NewAPI(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize API: %v", err)
	}
	defer cleanup()

	// Graceful shutdown with timeout
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API server (timeout: %v)...", shutdownTimeout)
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			logger.Error("Error shutting down: %v", err)
			return
		}
		logger.Info("API server shut down gracefully")
	}()

	addr := ":" + cfg.Port
	logger.Info("Starting API server on %s", addr)
	if err := app.Listen(addr); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

func runOnce(cfg *config.Config, req bootstrap.OnceRequest) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrap.RunOnce(ctx, cfg, req, os.Stdout); err != nil {
		logger.Fatal("Run failed: %v", err)
	}
}
