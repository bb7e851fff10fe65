// Package assessment scores the learning-style quiz and the wellness
// questionnaire, and stores learning-style results when a repository is
// configured.
package assessment

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"learning_server/core/domain"
	"learning_server/core/port/in"
	"learning_server/core/port/out"
	"learning_server/core/service/common"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultQuestionCount is the size of the quiz handed to a user.
const DefaultQuestionCount = 5

var (
	ErrNoAnswers           = fmt.Errorf("%w: no answers", common.ErrInvalidInput)
	ErrPersistenceDisabled = fmt.Errorf("%w: assessment storage is not configured", common.ErrUnavailable)
)

type Service struct {
	repo    out.AssessmentRepository
	shuffle func(n int, swap func(i, j int))
	log     zerolog.Logger
}

var _ in.AssessmentService = (*Service)(nil)

// NewService builds the service. repo may be nil, in which case results are
// scored but not stored.
func NewService(repo out.AssessmentRepository, log zerolog.Logger) *Service {
	return &Service{
		repo:    repo,
		shuffle: rand.Shuffle,
		log:     log.With().Str("component", "assessment_service").Logger(),
	}
}

// StyleQuestions returns count questions drawn at random from the bank.
func (s *Service) StyleQuestions(count int) []domain.StyleQuestion {
	if count <= 0 {
		count = DefaultQuestionCount
	}
	if count > len(styleQuestions) {
		count = len(styleQuestions)
	}

	picked := make([]domain.StyleQuestion, len(styleQuestions))
	copy(picked, styleQuestions)
	s.shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return picked[:count]
}

func (s *Service) WellnessQuestions() []domain.WellnessQuestion {
	return append([]domain.WellnessQuestion(nil), wellnessQuestions...)
}

// ScoreLearningStyle tallies the chosen option types in answer order. The
// dominant type starts as visual and only changes on a strictly higher count,
// so ties go to the type that was chosen first.
func (s *Service) ScoreLearningStyle(answers []domain.StyleAnswer) (*domain.LearningStyleResult, error) {
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}

	counts := make(map[domain.LearningStyle]int, len(domain.AllStyles))
	var order []domain.LearningStyle
	seen := make(map[string]bool, len(answers))

	for _, a := range answers {
		if seen[a.QuestionID] {
			return nil, fmt.Errorf("%w: question %q answered twice", common.ErrInvalidInput, a.QuestionID)
		}
		seen[a.QuestionID] = true

		style, err := optionType(a)
		if err != nil {
			return nil, err
		}
		if _, ok := counts[style]; !ok {
			order = append(order, style)
		}
		counts[style]++
	}

	dominant, highest := domain.StyleVisual, 0
	for _, style := range order {
		if counts[style] > highest {
			dominant, highest = style, counts[style]
		}
	}

	total := len(answers)
	percentages := make(map[domain.LearningStyle]int, len(domain.AllStyles))
	for _, style := range domain.AllStyles {
		percentages[style] = int(math.Round(float64(counts[style]) / float64(total) * 100))
	}

	return &domain.LearningStyleResult{
		DominantType:            dominant,
		Label:                   dominant.Label(),
		Percentages:             percentages,
		RecommendedContentTypes: dominant.RecommendedContentTypes(),
	}, nil
}

func optionType(a domain.StyleAnswer) (domain.LearningStyle, error) {
	for _, q := range styleQuestions {
		if q.ID != a.QuestionID {
			continue
		}
		for _, opt := range q.Options {
			if opt.ID == a.OptionID {
				return opt.Type, nil
			}
		}
		return "", fmt.Errorf("%w: unknown option %q for question %q", common.ErrInvalidInput, a.OptionID, a.QuestionID)
	}
	return "", fmt.Errorf("%w: unknown question %q", common.ErrInvalidInput, a.QuestionID)
}

// ScoreWellness turns 1-5 ratings keyed by question id into 0-100 scores per
// category. Unanswered questions count as 0.
func (s *Service) ScoreWellness(answers map[int]int) (domain.AssessmentScores, error) {
	if len(answers) == 0 {
		return domain.AssessmentScores{}, ErrNoAnswers
	}

	known := make(map[int]bool, len(wellnessQuestions))
	for _, q := range wellnessQuestions {
		known[q.ID] = true
	}
	for id, rating := range answers {
		if !known[id] {
			return domain.AssessmentScores{}, fmt.Errorf("%w: unknown question %d", common.ErrInvalidInput, id)
		}
		if rating < 1 || rating > 5 {
			return domain.AssessmentScores{}, fmt.Errorf("%w: rating %d for question %d is outside 1-5", common.ErrInvalidInput, rating, id)
		}
	}

	return domain.AssessmentScores{
		CognitiveScore: categoryScore(domain.CategoryCognitive, answers),
		EmotionalScore: categoryScore(domain.CategoryEmotional, answers),
		PhysicalScore:  categoryScore(domain.CategoryPhysical, answers),
	}, nil
}

func categoryScore(category domain.WellnessCategory, answers map[int]int) int {
	sum, n := 0, 0
	for _, q := range wellnessQuestions {
		if q.Category != category {
			continue
		}
		n++
		sum += answers[q.ID]
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n*5) * 100))
}

// SaveLearningStyle stores result for userID.
func (s *Service) SaveLearningStyle(ctx context.Context, userID uuid.UUID, result *domain.LearningStyleResult) (*domain.AssessmentRecord, error) {
	if s.repo == nil {
		return nil, ErrPersistenceDisabled
	}
	if result == nil {
		return nil, fmt.Errorf("%w: missing result", common.ErrInvalidInput)
	}

	record := domain.NewAssessmentRecord(userID, result)
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save assessment: %w", err)
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Str("dominant_type", record.DominantType).
		Int64("id", record.ID).
		Msg("learning style saved")
	return record, nil
}

// LatestLearningStyle returns the most recent stored result for userID.
func (s *Service) LatestLearningStyle(ctx context.Context, userID uuid.UUID) (*domain.AssessmentRecord, error) {
	if s.repo == nil {
		return nil, ErrPersistenceDisabled
	}
	record, err := s.repo.Latest(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}
	return record, nil
}
