package domain

import "strings"

// LearningStyle is the user's declared or assessed learning preference.
type LearningStyle string

const (
	StyleVisual      LearningStyle = "visual"
	StyleAuditory    LearningStyle = "auditory"
	StyleKinesthetic LearningStyle = "kinesthetic"
	StyleReading     LearningStyle = "reading"
)

// AllStyles lists the supported styles in catalog order.
var AllStyles = []LearningStyle{StyleVisual, StyleAuditory, StyleKinesthetic, StyleReading}

// ParseLearningStyle normalizes user input. Unknown values are kept as-is so
// downstream lookups degrade to empty results instead of failing.
func ParseLearningStyle(s string) LearningStyle {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "reading/writing", "reading-writing", "read/write", "readwrite":
		return StyleReading
	}
	return LearningStyle(s)
}

func (s LearningStyle) String() string {
	return string(s)
}

// IsKnown reports whether s is one of the four supported styles.
func (s LearningStyle) IsKnown() bool {
	switch s {
	case StyleVisual, StyleAuditory, StyleKinesthetic, StyleReading:
		return true
	}
	return false
}

// Label returns the display name of the style.
func (s LearningStyle) Label() string {
	switch s {
	case StyleVisual:
		return "Visual Learner"
	case StyleAuditory:
		return "Auditory Learner"
	case StyleKinesthetic:
		return "Kinesthetic Learner"
	case StyleReading:
		return "Reading/Writing Learner"
	default:
		return "Mixed Learner"
	}
}

// RecommendedContentTypes returns the content formats suited to the style.
func (s LearningStyle) RecommendedContentTypes() []string {
	switch s {
	case StyleVisual:
		return []string{"Diagrams", "Charts", "Videos", "Infographics", "Mind maps"}
	case StyleAuditory:
		return []string{"Lectures", "Podcasts", "Discussions", "Audio explanations", "Verbal quizzes"}
	case StyleKinesthetic:
		return []string{"Hands-on exercises", "Interactive simulations", "Physical models", "Role-playing activities", "Experiments"}
	case StyleReading:
		return []string{"Detailed texts", "Written guides", "Note-taking exercises", "Case studies", "Research papers"}
	default:
		return []string{"Mixed content types"}
	}
}
