package rag

import (
	"fmt"
	"strings"

	"learning_server/core/domain"
)

// BuildContext assembles the prompt context from style notes, the user's
// style, optional assessment scores and the selected document excerpts.
// Missing inputs are omitted. The result depends only on its arguments.
func BuildContext(style domain.LearningStyle, notes []string, ranked []domain.RankedChunk, assessment *domain.AssessmentScores) string {
	sections := make([]string, 0, 4)

	if len(notes) > 0 {
		sections = append(sections, "Learning Style Information:\n"+strings.Join(notes, "\n"))
	}

	if style != "" {
		sections = append(sections, fmt.Sprintf("The user is primarily a %s learner.", style))
	}

	if assessment != nil {
		sections = append(sections, fmt.Sprintf(
			"Assessment Results:\n- Cognitive Score: %d\n- Emotional Score: %d\n- Physical Score: %d",
			assessment.CognitiveScore, assessment.EmotionalScore, assessment.PhysicalScore,
		))
	}

	if len(ranked) > 0 {
		excerpts := make([]string, 0, len(ranked))
		for _, rc := range ranked {
			excerpts = append(excerpts, rc.Chunk.Text)
		}
		sections = append(sections, "Relevant Document Excerpts:\n"+strings.Join(excerpts, "\n\n"))
	}

	return strings.Join(sections, "\n\n")
}
