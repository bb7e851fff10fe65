// Package fallback builds deterministic responses without calling any
// backend. Every function is total: any input, including empty strings and
// unknown styles, yields a non-empty, schema-valid result.
package fallback

import (
	"fmt"
	"net/url"
	"strings"

	"learning_server/core/agent/chunk"
	"learning_server/core/domain"
)

const defaultTopic = "General Learning"

type catalogEntry struct {
	style       domain.LearningStyle
	title       string
	description string
	source      string
	url         func(topic string) string
}

// componentEscaper turns url.QueryEscape output into what browsers produce
// for encodeURIComponent: spaces as %20 and !*'() left literal.
var componentEscaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%2A", "*",
	"%27", "'",
	"%28", "(",
	"%29", ")",
)

func escapeComponent(s string) string {
	return componentEscaper.Replace(url.QueryEscape(s))
}

func query(base string) func(string) string {
	return func(topic string) string { return base + escapeComponent(topic) }
}

func querySuffix(base, suffix string) func(string) string {
	return func(topic string) string { return base + escapeComponent(topic+suffix) }
}

// catalog lists two entries per style in display order. %s is the topic.
var catalog = []catalogEntry{
	{
		style:       domain.StyleVisual,
		title:       "%s Video Course",
		description: "A comprehensive video course covering all aspects of %s with visual demonstrations.",
		source:      "YouTube",
		url:         query("https://www.youtube.com/results?search_query="),
	},
	{
		style:       domain.StyleVisual,
		title:       "%s Infographics",
		description: "Visual summaries and infographics explaining key concepts in %s.",
		source:      "Pinterest",
		url:         querySuffix("https://www.pinterest.com/search/pins/?q=", " infographic"),
	},
	{
		style:       domain.StyleAuditory,
		title:       "%s Podcast Series",
		description: "Expert discussions and explanations about %s in an audio format.",
		source:      "Apple Podcasts",
		url:         query("https://podcasts.apple.com/us/search?term="),
	},
	{
		style:       domain.StyleAuditory,
		title:       "%s Audiobook",
		description: "Comprehensive audiobook covering the fundamentals of %s.",
		source:      "Audible",
		url:         query("https://www.audible.com/search?keywords="),
	},
	{
		style:       domain.StyleKinesthetic,
		title:       "Interactive %s Workshop",
		description: "Hands-on workshop where you can practice and apply %s concepts.",
		source:      "Eventbrite",
		url: func(topic string) string {
			return "https://www.eventbrite.com/d/online/" + escapeComponent(topic) + "-workshop/"
		},
	},
	{
		style:       domain.StyleKinesthetic,
		title:       "%s DIY Project",
		description: "Step-by-step guide to creating a project related to %s.",
		source:      "Instructables",
		url:         query("https://www.instructables.com/search/?q="),
	},
	{
		style:       domain.StyleReading,
		title:       "%s Textbook",
		description: "Comprehensive textbook covering all aspects of %s with detailed explanations.",
		source:      "Amazon Books",
		url:         querySuffix("https://www.amazon.com/s?k=", " textbook"),
	},
	{
		style:       domain.StyleReading,
		title:       "%s Research Papers",
		description: "Collection of academic papers and articles about %s.",
		source:      "Google Scholar",
		url:         query("https://scholar.google.com/scholar?q="),
	},
}

// Recommendations returns the template catalog for topic with the items of
// the requested style moved to the front. Order within each group follows the
// catalog.
func Recommendations(topic string, style domain.LearningStyle) []domain.RecommendationItem {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = defaultTopic
	}

	preferred := make([]domain.RecommendationItem, 0, len(catalog))
	rest := make([]domain.RecommendationItem, 0, len(catalog))
	for _, e := range catalog {
		item := domain.RecommendationItem{
			Title:       fmt.Sprintf(e.title, topic),
			Description: fmt.Sprintf(e.description, topic),
			Type:        e.style,
			URL:         e.url(topic),
			Source:      e.source,
		}
		if e.style == style {
			preferred = append(preferred, item)
		} else {
			rest = append(rest, item)
		}
	}
	return append(preferred, rest...)
}

// Summary returns a fixed study template. The document text is not read and
// the style only changes the wording of one key point.
func Summary(_ string, style domain.LearningStyle) *domain.SummaryDocument {
	label := "learner"
	if style.IsKnown() {
		label = strings.ToLower(style.Label())
	}

	return &domain.SummaryDocument{
		KeyPoints: []string{
			"A detailed summary could not be generated for this document.",
			"Review the document's headings first to see how it is organized.",
			fmt.Sprintf("Study the material in short sessions suited to a %s.", label),
		},
		VisualSummary: []domain.VisualSummaryItem{
			{
				Title:            "Document Overview",
				Description:      "A map of the document's main sections and how they connect.",
				ImageType:        domain.ImageDiagram,
				ImageDescription: "A mind map with the document title in the center and one branch per section.",
			},
			{
				Title:            "Reading Progress",
				Description:      "Track which sections you have covered.",
				ImageType:        domain.ImageChart,
				ImageDescription: "A bar chart with one bar per section showing completion.",
			},
		},
		TextSummary: []string{
			"The automated summary is temporarily unavailable.",
			"Skim the introduction and conclusion, then read each section in order and note its main idea.",
		},
		Structure: []domain.StructureSection{
			{
				Title:       "Introduction",
				Description: "Context and goals of the document.",
				Subsections: []domain.Subsection{
					{Title: "Purpose", Description: "What the document sets out to explain."},
				},
			},
			{
				Title:       "Main Content",
				Description: "The core concepts and supporting material.",
				Subsections: []domain.Subsection{
					{Title: "Key Concepts", Description: "Definitions and central ideas."},
					{Title: "Examples", Description: "Worked examples and applications."},
				},
			},
			{
				Title:       "Conclusion",
				Description: "Summary of findings and next steps.",
				Subsections: []domain.Subsection{},
			},
		},
		KeyData: []domain.KeyDataItem{
			{
				Concept:         "Main Idea",
				Explanation:     "The central claim or topic the document develops.",
				RelatedConcepts: []string{"Introduction", "Conclusion"},
			},
		},
	}
}

const analysisSummarySentences = 2

// Analysis derives a generic analysis from the assessment scores. Only the
// first sentences of the document are quoted back as its summary.
func Analysis(documentText string, assessment domain.AssessmentScores) *domain.ContentAnalysis {
	summary := "The content could not be analyzed automatically. Review it section by section."
	if sentences := chunk.Sentences(documentText); len(sentences) > 0 {
		if len(sentences) > analysisSummarySentences {
			sentences = sentences[:analysisSummarySentences]
		}
		summary = strings.Join(sentences, " ")
	}

	return &domain.ContentAnalysis{
		Summary: summary,
		KeyPoints: []string{
			"Identify the main concepts introduced in the material.",
			"Connect each concept to an example you already know.",
			"Review any terms you cannot explain in your own words.",
		},
		PersonalizedExplanation: explanationFor(assessment),
		LearningRecommendations: recommendationsFor(assessment),
		DifficultyLevel:         DifficultyFor(assessment),
	}
}

// DifficultyFor maps the mean assessment score to a difficulty level.
func DifficultyFor(assessment domain.AssessmentScores) domain.DifficultyLevel {
	switch mean := assessment.Mean(); {
	case mean < 40:
		return domain.DifficultyBeginner
	case mean < 70:
		return domain.DifficultyIntermediate
	default:
		return domain.DifficultyAdvanced
	}
}

func explanationFor(a domain.AssessmentScores) string {
	return fmt.Sprintf(
		"Your assessment scores (cognitive %d, emotional %d, physical %d) suggest working through this material at a %s pace.",
		a.CognitiveScore, a.EmotionalScore, a.PhysicalScore, paceFor(DifficultyFor(a)),
	)
}

func paceFor(level domain.DifficultyLevel) string {
	switch level {
	case domain.DifficultyBeginner:
		return "gentle"
	case domain.DifficultyIntermediate:
		return "steady"
	default:
		return "brisk"
	}
}

func recommendationsFor(a domain.AssessmentScores) []string {
	recs := []string{"Summarize each section in a few sentences after reading it."}
	if a.CognitiveScore < 50 {
		recs = append(recs, "Break the material into smaller parts and take short breaks between them.")
	}
	if a.EmotionalScore < 50 {
		recs = append(recs, "Study in a calm environment and set small, achievable goals.")
	}
	if a.PhysicalScore < 50 {
		recs = append(recs, "Get enough rest and move around between study sessions.")
	}
	return recs
}
