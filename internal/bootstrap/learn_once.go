package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"learning_server/config"
	"learning_server/core/domain"

	"github.com/goccy/go-json"
)

// Operations accepted by RunOnce.
const (
	OpRecommend = "recommend"
	OpSummarize = "summarize"
	OpAnalyze   = "analyze"
)

// OnceRequest describes a single pipeline run from the command line.
type OnceRequest struct {
	Op         string
	Topic      string
	Style      string
	File       string
	Assessment domain.AssessmentScores
}

type onceResult struct {
	Data    any             `json:"data"`
	Outcome *domain.Outcome `json:"outcome"`
}

// RunOnce runs one operation without the HTTP stack and writes the result
// as JSON to w.
func RunOnce(ctx context.Context, cfg *config.Config, req OnceRequest, w io.Writer) error {
	deps, cleanup, err := NewDependencies(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	log := componentLogger("once")

	text := ""
	if req.File != "" {
		data, err := os.ReadFile(req.File)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", req.File, err)
		}
		text, err = deps.Extractor.Extract(ctx, filepath.Base(req.File), "", data)
		if err != nil {
			return err
		}
		log.Info().Str("file", req.File).Int("chars", len(text)).Msg("document loaded")
	}

	style := domain.ParseLearningStyle(req.Style)
	var result onceResult
	switch req.Op {
	case OpRecommend:
		if req.Topic == "" {
			return fmt.Errorf("-topic is required for %s", OpRecommend)
		}
		result.Data, result.Outcome = deps.ContentService.GetPersonalizedContent(ctx, req.Topic, style, text)
	case OpSummarize:
		if text == "" {
			return fmt.Errorf("-file is required for %s", OpSummarize)
		}
		result.Data, result.Outcome = deps.ContentService.GenerateDocumentSummary(ctx, text, style)
	case OpAnalyze:
		if text == "" {
			return fmt.Errorf("-file is required for %s", OpAnalyze)
		}
		result.Data, result.Outcome = deps.ContentService.AnalyzeContent(ctx, text, req.Assessment)
	default:
		return fmt.Errorf("unknown operation %q", req.Op)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
