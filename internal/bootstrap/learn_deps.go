package bootstrap

import (
	"context"
	"fmt"
	"time"

	"learning_server/adapter/out/extract"
	"learning_server/adapter/out/persistence"
	"learning_server/config"
	"learning_server/core/agent/llm"
	"learning_server/core/agent/rag"
	"learning_server/core/agent/validate"
	"learning_server/core/domain"
	"learning_server/core/port/out"
	"learning_server/core/service/assessment"
	"learning_server/core/service/content"
	"learning_server/infra/database"
	"learning_server/pkg/httputil"
	"learning_server/pkg/logger"
	"learning_server/pkg/metrics"
	"learning_server/pkg/ratelimit"
	"learning_server/pkg/resilience"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const metricsWindow = 1000

// Dependencies holds every component the API and the one-shot mode need.
type Dependencies struct {
	Config *config.Config

	DB    *sqlx.DB
	Redis *redis.Client

	Pipeline  *metrics.Pipeline
	Limiter   ratelimit.Limiter
	Extractor *extract.Extractor

	ContentService    *content.Service
	AssessmentService *assessment.Service
}

func NewDependencies(cfg *config.Config) (*Dependencies, func(), error) {
	zlog := logger.Zerolog()
	deps := &Dependencies{
		Config:   cfg,
		Pipeline: metrics.NewPipeline(metricsWindow),
	}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	// PostgreSQL (optional: assessment storage only)
	var repo out.AssessmentRepository
	if cfg.DatabaseURL != "" {
		db, err := database.NewPostgres(cfg.DatabaseURL, database.DefaultPostgresConfig())
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, func() { db.Close() })

		adapter := persistence.NewAssessmentAdapter(db)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = adapter.EnsureSchema(ctx)
		cancel()
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		deps.DB = db
		repo = adapter
		logger.Info("PostgreSQL connected, assessment storage enabled")
	} else {
		logger.Warn("DATABASE_URL not set, assessment storage disabled")
	}

	// Redis (optional: shared rate limiting)
	if cfg.RedisURL != "" {
		client, err := database.NewRedis(cfg.RedisURL, database.DefaultRedisConfig())
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, using in-memory rate limiting")
		} else {
			cleanups = append(cleanups, func() { client.Close() })
			deps.Redis = client
		}
	}
	deps.Limiter = ratelimit.New(deps.Redis, cfg.RateLimitRPM, time.Minute)

	kb := domain.DefaultKnowledgeBase()
	validator, err := validate.New()
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to compile response schemas: %w", err)
	}

	generation, embedding, err := newBackends(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	// Nil interfaces make the content service answer from the fallback provider.
	var (
		retriever content.Retriever
		generator content.Generator
	)
	if generation != nil {
		genBreaker := resilience.NewBreaker(resilience.DefaultBreakerConfig("generation"), zlog)
		generator = llm.NewGenerator(generation, genBreaker, cfg.LLMTimeout, zlog)
	}
	if embedding != nil {
		embBreaker := resilience.NewBreaker(resilience.DefaultBreakerConfig("embedding"), zlog)
		embedderCfg := rag.DefaultEmbedderConfig()
		embedderCfg.Timeout = cfg.EmbeddingTimeout
		embedderCfg.MaxRetries = cfg.EmbeddingMaxRetries
		embedder := rag.NewEmbedder(embedding, embBreaker, embedderCfg, zlog)
		retriever = rag.NewRetriever(embedder, cfg.EmbeddingConcurrency, zlog)
	}

	deps.ContentService = content.NewService(kb, retriever, generator, validator, deps.Pipeline, content.Config{
		MaxChunkSize: cfg.ChunkMaxSize,
		TopK:         cfg.RetrievalTopK,
	}, zlog)
	deps.AssessmentService = assessment.NewService(repo, zlog)
	deps.Extractor = extract.NewExtractor(zlog)

	logger.Info("Dependencies ready (provider=%s, knowledge base %s)", cfg.LLMProvider, kb.Version())
	return deps, cleanup, nil
}

// newBackends builds the generation and embedding backends for the
// configured provider. Both are nil when no credentials are configured.
func newBackends(cfg *config.Config) (out.GenerationBackend, out.EmbeddingBackend, error) {
	switch cfg.LLMProvider {
	case config.ProviderOllama:
		backend, err := llm.NewOllamaBackend(llm.OllamaConfig{
			ServerURL:      cfg.OllamaURL,
			Model:          cfg.OllamaModel,
			EmbeddingModel: cfg.OllamaEmbeddingModel,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create ollama backend: %w", err)
		}
		return backend, backend, nil

	default:
		if cfg.OpenAIAPIKey == "" && cfg.OpenAIBaseURL == "" {
			logger.Warn("OPENAI_API_KEY not set, every request will be answered by the fallback provider")
			return nil, nil, nil
		}
		clientCfg := llm.ClientConfig{
			APIKey:         cfg.OpenAIAPIKey,
			BaseURL:        cfg.OpenAIBaseURL,
			Model:          cfg.LLMModel,
			EmbeddingModel: cfg.EmbeddingModel,
			MaxTokens:      cfg.LLMMaxTokens,
			Temperature:    cfg.LLMTemperature,
		}

		genCfg := clientCfg
		genCfg.HTTPClient = httputil.NewClient(httputil.GenerationClientConfig())
		embCfg := clientCfg
		embCfg.HTTPClient = httputil.NewClient(httputil.EmbeddingClientConfig())
		return llm.NewClientWithConfig(genCfg), llm.NewClientWithConfig(embCfg), nil
	}
}

// componentLogger is used by entrypoints that run without the HTTP stack.
func componentLogger(name string) zerolog.Logger {
	return logger.Zerolog().With().Str("component", name).Logger()
}
