package in

import (
	"context"

	"learning_server/core/domain"

	"github.com/google/uuid"
)

// ContentService exposes the personalization pipeline. None of its operations
// fail: degraded runs return fallback content and report it in the Outcome.
type ContentService interface {
	// documentText may be empty when no document was supplied.
	GetPersonalizedContent(ctx context.Context, topic string, style domain.LearningStyle, documentText string) ([]domain.RecommendationItem, *domain.Outcome)
	GenerateDocumentSummary(ctx context.Context, documentText string, style domain.LearningStyle) (*domain.SummaryDocument, *domain.Outcome)
	AnalyzeContent(ctx context.Context, documentText string, assessment domain.AssessmentScores) (*domain.ContentAnalysis, *domain.Outcome)
}

// AssessmentService scores quizzes and stores learning-style results.
type AssessmentService interface {
	StyleQuestions(count int) []domain.StyleQuestion
	WellnessQuestions() []domain.WellnessQuestion
	ScoreLearningStyle(answers []domain.StyleAnswer) (*domain.LearningStyleResult, error)
	ScoreWellness(answers map[int]int) (domain.AssessmentScores, error)
	SaveLearningStyle(ctx context.Context, userID uuid.UUID, result *domain.LearningStyleResult) (*domain.AssessmentRecord, error)
	LatestLearningStyle(ctx context.Context, userID uuid.UUID) (*domain.AssessmentRecord, error)
}
