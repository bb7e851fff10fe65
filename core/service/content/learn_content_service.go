// Package content runs the personalization pipeline: chunk the document,
// retrieve the most relevant chunks, assemble the prompt context, generate,
// validate and fall back to deterministic content on failure.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"learning_server/core/agent/chunk"
	"learning_server/core/agent/llm"
	"learning_server/core/agent/rag"
	"learning_server/core/agent/validate"
	"learning_server/core/domain"
	"learning_server/core/port/in"
	"learning_server/core/service/fallback"
	"learning_server/pkg/metrics"

	"github.com/rs/zerolog"
)

const (
	opRecommend = "recommend"
	opSummarize = "summarize"
	opAnalyze   = "analyze"

	analysisQuery = "key concepts and difficulty"
	summaryQuery  = "main concepts and key points"

	logExcerptLen = 200
)

var errNoGenerator = errors.New("no generation backend configured")

// Retriever selects document context for a query.
type Retriever interface {
	Retrieve(ctx context.Context, req rag.RetrievalRequest) rag.RetrievalResult
}

// Generator returns raw completion text or a *domain.GenerationError.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type Config struct {
	MaxChunkSize int
	TopK         int
}

type Service struct {
	kb        *domain.KnowledgeBase
	retriever Retriever
	generator Generator
	validator *validate.Validator
	metrics   *metrics.Pipeline
	cfg       Config
	log       zerolog.Logger
}

var _ in.ContentService = (*Service)(nil)

func NewService(
	kb *domain.KnowledgeBase,
	retriever Retriever,
	generator Generator,
	validator *validate.Validator,
	m *metrics.Pipeline,
	cfg Config,
	log zerolog.Logger,
) *Service {
	if kb == nil {
		kb = domain.DefaultKnowledgeBase()
	}
	if cfg.MaxChunkSize <= 0 {
		cfg.MaxChunkSize = chunk.DefaultMaxChunkSize
	}
	if cfg.TopK <= 0 {
		cfg.TopK = rag.DefaultTopK
	}
	return &Service{
		kb:        kb,
		retriever: retriever,
		generator: generator,
		validator: validator,
		metrics:   m,
		cfg:       cfg,
		log:       log.With().Str("component", "content_service").Logger(),
	}
}

// GetPersonalizedContent recommends learning resources for topic. An empty
// documentText skips retrieval.
func (s *Service) GetPersonalizedContent(ctx context.Context, topic string, style domain.LearningStyle, documentText string) ([]domain.RecommendationItem, *domain.Outcome) {
	r := s.begin(opRecommend)

	query := fmt.Sprintf("%s for a %s learner", topic, style)
	ranked := s.retrieve(ctx, r, query, documentText)

	s.advance(r, domain.StageAssembling)
	promptContext := rag.BuildContext(style, s.kb.Notes(style), ranked, nil)

	parsed, err := s.generate(ctx, r, validate.RecommendationList,
		llm.RecommendationSystemPrompt, llm.RecommendationPrompt(topic, style, promptContext))
	if err != nil {
		s.fallBack(r, err)
		items := fallback.Recommendations(topic, style)
		s.finish(r)
		return items, r.outcome
	}

	s.finish(r)
	return parsed.Recommendations, r.outcome
}

// GenerateDocumentSummary produces a structured summary of documentText.
func (s *Service) GenerateDocumentSummary(ctx context.Context, documentText string, style domain.LearningStyle) (*domain.SummaryDocument, *domain.Outcome) {
	r := s.begin(opSummarize)

	query := summaryQuery
	if style != "" {
		query += " for a " + strings.ToLower(style.Label())
	}
	ranked := s.retrieve(ctx, r, query, documentText)

	s.advance(r, domain.StageAssembling)
	promptContext := rag.BuildContext(style, s.kb.Notes(style), ranked, nil)

	parsed, err := s.generate(ctx, r, validate.SummaryDocument,
		llm.SummarySystemPrompt, llm.SummaryPrompt(style, promptContext))
	if err != nil {
		s.fallBack(r, err)
		summary := fallback.Summary(documentText, style)
		s.finish(r)
		return summary, r.outcome
	}

	s.finish(r)
	return parsed.Summary, r.outcome
}

// AnalyzeContent explains documentText in light of the wellness assessment.
func (s *Service) AnalyzeContent(ctx context.Context, documentText string, assessment domain.AssessmentScores) (*domain.ContentAnalysis, *domain.Outcome) {
	r := s.begin(opAnalyze)

	ranked := s.retrieve(ctx, r, analysisQuery, documentText)

	s.advance(r, domain.StageAssembling)
	promptContext := rag.BuildContext("", nil, ranked, &assessment)

	parsed, err := s.generate(ctx, r, validate.ContentAnalysis,
		llm.AnalysisSystemPrompt, llm.AnalysisPrompt(promptContext))
	if err != nil {
		s.fallBack(r, err)
		analysis := fallback.Analysis(documentText, assessment)
		s.finish(r)
		return analysis, r.outcome
	}

	s.finish(r)
	return parsed.Analysis, r.outcome
}

// run carries the state of one pipeline invocation.
type run struct {
	op         string
	outcome    *domain.Outcome
	start      time.Time
	stageStart time.Time
}

func (s *Service) begin(op string) *run {
	now := time.Now()
	s.metrics.Inc(op + ".runs")
	return &run{op: op, outcome: domain.NewOutcome(), start: now, stageStart: now}
}

// advance records the time spent in the current stage and moves on.
func (s *Service) advance(r *run, stage domain.Stage) {
	now := time.Now()
	s.metrics.ObserveStage(r.op+"."+string(r.outcome.Stage), now.Sub(r.stageStart))
	r.stageStart = now
	r.outcome.Advance(stage)
}

func (s *Service) retrieve(ctx context.Context, r *run, query, documentText string) []domain.RankedChunk {
	chunks := chunk.Split(documentText, s.cfg.MaxChunkSize)
	r.outcome.Chunks = len(chunks)
	s.advance(r, domain.StageRetrieving)

	if len(chunks) == 0 || s.retriever == nil {
		r.outcome.Retrieval = domain.RetrievalNone
		return nil
	}

	res := s.retriever.Retrieve(ctx, rag.RetrievalRequest{Query: query, Chunks: chunks, TopK: s.cfg.TopK})
	r.outcome.Retrieval = res.Mode
	r.outcome.EmbeddedChunks = res.Embedded
	r.outcome.ContextChunks = len(res.Ranked)
	if res.Err != nil {
		r.outcome.RetrievalError = res.Err.Error()
		s.metrics.Inc(r.op + ".retrieval.degraded")
	}
	s.metrics.Inc(r.op + ".retrieval." + string(res.Mode))
	return res.Ranked
}

func (s *Service) generate(ctx context.Context, r *run, tag validate.SchemaTag, systemPrompt, userPrompt string) (validate.Parsed, error) {
	s.advance(r, domain.StageGenerating)
	if s.generator == nil {
		return validate.Parsed{}, &domain.GenerationError{Err: errNoGenerator}
	}

	raw, err := s.generator.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return validate.Parsed{}, err
	}

	s.advance(r, domain.StageValidating)
	parsed, err := s.validator.Validate(raw, tag)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("op", r.op).
			Str("schema", string(tag)).
			Str("payload", validate.Excerpt(raw, logExcerptLen)).
			Msg("generated response failed validation")
		return validate.Parsed{}, err
	}
	return parsed, nil
}

func (s *Service) fallBack(r *run, err error) {
	s.advance(r, r.outcome.Stage)
	r.outcome.FallBack(err)
	s.metrics.Inc(r.op + ".fallback." + r.outcome.FallbackReason)
	s.log.Warn().
		Err(err).
		Str("op", r.op).
		Str("reason", r.outcome.FallbackReason).
		Str("failed_stage", string(r.outcome.FailedStage)).
		Msg("using fallback content")
}

func (s *Service) finish(r *run) {
	s.metrics.ObserveStage(r.op+"."+string(r.outcome.Stage), time.Since(r.stageStart))
	r.outcome.Finish()
	s.metrics.ObserveStage(r.op+".total", time.Since(r.start))
	s.log.Debug().
		Str("op", r.op).
		Bool("fallback", r.outcome.Fallback).
		Str("retrieval", string(r.outcome.Retrieval)).
		Int("chunks", r.outcome.Chunks).
		Dur("elapsed", time.Since(r.start)).
		Msg("pipeline finished")
}
