package domain

// Chunk is a contiguous, sentence-aligned slice of a document.
type Chunk struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Length int    `json:"length"`
}

// EmbeddingVector is a fixed-dimension embedding produced by one backend model.
type EmbeddingVector []float32

// RankedChunk pairs a chunk with its similarity to the query.
type RankedChunk struct {
	Chunk      Chunk   `json:"chunk"`
	Similarity float64 `json:"similarity"`
}

// RecommendationItem is a single learning resource suggestion.
type RecommendationItem struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Type        LearningStyle `json:"type"`
	URL         string        `json:"url"`
	Source      string        `json:"source"`
}

type ImageType string

const (
	ImageChart   ImageType = "chart"
	ImageDiagram ImageType = "diagram"
	ImageImage   ImageType = "image"
)

type VisualSummaryItem struct {
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	ImageType        ImageType `json:"imageType"`
	ImageDescription string    `json:"imageDescription"`
}

type Subsection struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type StructureSection struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Subsections []Subsection `json:"subsections"`
}

type KeyDataItem struct {
	Concept         string   `json:"concept"`
	Explanation     string   `json:"explanation"`
	RelatedConcepts []string `json:"relatedConcepts"`
}

// SummaryDocument is the structured summary of an uploaded document.
type SummaryDocument struct {
	KeyPoints     []string            `json:"keyPoints"`
	VisualSummary []VisualSummaryItem `json:"visualSummary"`
	TextSummary   []string            `json:"textSummary"`
	Structure     []StructureSection  `json:"structure"`
	KeyData       []KeyDataItem       `json:"keyData"`
}

type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// ContentAnalysis is a personalized analysis of educational content.
type ContentAnalysis struct {
	Summary                 string          `json:"summary"`
	KeyPoints               []string        `json:"keyPoints"`
	PersonalizedExplanation string          `json:"personalizedExplanation"`
	LearningRecommendations []string        `json:"learningRecommendations"`
	DifficultyLevel         DifficultyLevel `json:"difficultyLevel"`
}

// AssessmentScores are wellness scores in the 0-100 range.
type AssessmentScores struct {
	CognitiveScore int `json:"cognitiveScore"`
	EmotionalScore int `json:"emotionalScore"`
	PhysicalScore  int `json:"physicalScore"`
}

// Mean returns the average of the three scores.
func (a AssessmentScores) Mean() float64 {
	return float64(a.CognitiveScore+a.EmotionalScore+a.PhysicalScore) / 3
}
