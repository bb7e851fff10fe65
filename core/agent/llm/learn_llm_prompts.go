package llm

import (
	"fmt"
	"strings"

	"learning_server/core/domain"
)

// RecommendationSystemPrompt fixes the output schema and cardinality of a
// recommendation request.
const RecommendationSystemPrompt = `You are an expert educational content recommender. Your task is to recommend learning resources
that match a user's learning style and topic of interest. Provide a diverse set of high-quality resources
that align with their learning preferences.

Return your response as a JSON object with a single "recommendations" array of objects with the following structure:
{
  "recommendations": [
    {
      "title": "Resource title",
      "description": "Brief description of the resource",
      "type": "visual|auditory|kinesthetic|reading",
      "url": "https://example.com/resource",
      "source": "Source name (e.g., Coursera, YouTube, etc.)"
    }
  ]
}

Include 2-3 resources for each learning style (visual, auditory, kinesthetic, reading),
for a total of 8-12 resources. Ensure the resources are real, high-quality, and relevant to the topic.
Prioritize resources that match the user's primary learning style.`

const SummarySystemPrompt = `You are an expert educator who turns documents into structured study material.
Summarize the document excerpts you are given for the learner described in the context.

Return your response as a JSON object with the following structure:
{
  "keyPoints": ["string"],
  "visualSummary": [
    {
      "title": "string",
      "description": "string",
      "imageType": "chart|diagram|image",
      "imageDescription": "string"
    }
  ],
  "textSummary": ["string"],
  "structure": [
    {
      "title": "string",
      "description": "string",
      "subsections": [{"title": "string", "description": "string"}]
    }
  ],
  "keyData": [
    {
      "concept": "string",
      "explanation": "string",
      "relatedConcepts": ["string"]
    }
  ]
}

Every field is required. Use only the three imageType values shown.`

const AnalysisSystemPrompt = `You are an expert educator. Analyze educational content and explain it in a way
that fits the learner's assessment results.

Format the response as JSON with the following structure:
{
  "summary": "string",
  "keyPoints": ["string"],
  "personalizedExplanation": "string",
  "learningRecommendations": ["string"],
  "difficultyLevel": "beginner" | "intermediate" | "advanced"
}`

// RecommendationPrompt builds the user prompt for a recommendation request.
func RecommendationPrompt(topic string, style domain.LearningStyle, context string) string {
	return fmt.Sprintf(`Based on the following context about learning styles and the user's preferences,
recommend specific learning resources for the topic %q that would be most effective
for a %s learner. Include resources for all learning styles, but emphasize
%s resources.

Context:
%s`, topic, style, style, context)
}

// SummaryPrompt builds the user prompt for a document summary request.
func SummaryPrompt(style domain.LearningStyle, context string) string {
	var sb strings.Builder
	sb.WriteString("Create a structured summary of the document below")
	if style != "" {
		fmt.Fprintf(&sb, " for a %s", strings.ToLower(style.Label()))
	}
	sb.WriteString(".\n\nContext:\n")
	sb.WriteString(context)
	return sb.String()
}

// AnalysisPrompt builds the user prompt for a content analysis request.
func AnalysisPrompt(context string) string {
	return `Analyze this educational content and provide a personalized explanation based on the user's assessment results.

` + context + `

Please provide:
1. A concise summary of the content
2. Key points to focus on
3. A personalized explanation that takes into account the user's assessment scores
4. Specific learning recommendations based on the user's profile
5. The appropriate difficulty level (beginner, intermediate, or advanced)`
}
