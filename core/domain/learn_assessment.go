package domain

import (
	"time"

	"github.com/google/uuid"
)

// StyleOption is one answer choice of a learning-style question.
type StyleOption struct {
	ID   string        `json:"id"`
	Text string        `json:"text"`
	Type LearningStyle `json:"type"`
}

// StyleQuestion is a learning-style quiz question with one option per style.
type StyleQuestion struct {
	ID      string        `json:"id"`
	Text    string        `json:"text"`
	Options []StyleOption `json:"options"`
}

// StyleAnswer is the option a user picked for a question.
type StyleAnswer struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

// LearningStyleResult is the scored outcome of a learning-style quiz.
type LearningStyleResult struct {
	DominantType            LearningStyle         `json:"dominantType"`
	Label                   string                `json:"label"`
	Percentages             map[LearningStyle]int `json:"percentages"`
	RecommendedContentTypes []string              `json:"recommendedContentTypes"`
}

type WellnessCategory string

const (
	CategoryCognitive WellnessCategory = "cognitive"
	CategoryEmotional WellnessCategory = "emotional"
	CategoryPhysical  WellnessCategory = "physical"
)

// WellnessQuestion is rated on a 1-5 scale.
type WellnessQuestion struct {
	ID       int              `json:"id"`
	Text     string           `json:"text"`
	Category WellnessCategory `json:"category"`
}

// AssessmentRecord is a persisted learning-style result.
type AssessmentRecord struct {
	ID                      int64     `json:"id"`
	UserID                  uuid.UUID `json:"userId"`
	DominantType            string    `json:"dominantType"`
	VisualPercentage        int       `json:"visualPercentage"`
	AuditoryPercentage      int       `json:"auditoryPercentage"`
	KinestheticPercentage   int       `json:"kinestheticPercentage"`
	ReadingPercentage       int       `json:"readingPercentage"`
	RecommendedContentTypes []string  `json:"recommendedContentTypes"`
	CreatedAt               time.Time `json:"createdAt"`
}

// NewAssessmentRecord flattens a quiz result for storage.
func NewAssessmentRecord(userID uuid.UUID, result *LearningStyleResult) *AssessmentRecord {
	return &AssessmentRecord{
		UserID:                  userID,
		DominantType:            string(result.DominantType),
		VisualPercentage:        result.Percentages[StyleVisual],
		AuditoryPercentage:      result.Percentages[StyleAuditory],
		KinestheticPercentage:   result.Percentages[StyleKinesthetic],
		ReadingPercentage:       result.Percentages[StyleReading],
		RecommendedContentTypes: result.RecommendedContentTypes,
	}
}
