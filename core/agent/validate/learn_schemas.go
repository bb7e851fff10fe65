package validate

// SchemaTag names the structure a generation response must match.
type SchemaTag string

const (
	RecommendationList SchemaTag = "RecommendationList"
	ContentAnalysis    SchemaTag = "ContentAnalysis"
	SummaryDocument    SchemaTag = "SummaryDocument"
)

const recommendationListSchema = `{
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["title", "description", "type", "url", "source"],
    "properties": {
      "title":       {"type": "string", "minLength": 1, "pattern": "\\S"},
      "description": {"type": "string", "minLength": 1, "pattern": "\\S"},
      "type":        {"type": "string", "enum": ["visual", "auditory", "kinesthetic", "reading"]},
      "url":         {"type": "string", "minLength": 1, "pattern": "\\S"},
      "source":      {"type": "string", "minLength": 1, "pattern": "\\S"}
    }
  }
}`

const contentAnalysisSchema = `{
  "type": "object",
  "required": ["summary", "keyPoints", "personalizedExplanation", "learningRecommendations", "difficultyLevel"],
  "properties": {
    "summary":                 {"type": "string", "minLength": 1, "pattern": "\\S"},
    "keyPoints":               {"type": "array", "items": {"type": "string"}},
    "personalizedExplanation": {"type": "string", "minLength": 1, "pattern": "\\S"},
    "learningRecommendations": {"type": "array", "items": {"type": "string"}},
    "difficultyLevel":         {"type": "string", "enum": ["beginner", "intermediate", "advanced"]}
  }
}`

const summaryDocumentSchema = `{
  "type": "object",
  "required": ["keyPoints", "visualSummary", "textSummary", "structure", "keyData"],
  "properties": {
    "keyPoints":   {"type": "array", "items": {"type": "string"}},
    "textSummary": {"type": "array", "items": {"type": "string"}},
    "visualSummary": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "description", "imageType", "imageDescription"],
        "properties": {
          "title":            {"type": "string"},
          "description":      {"type": "string"},
          "imageType":        {"type": "string", "enum": ["chart", "diagram", "image"]},
          "imageDescription": {"type": "string"}
        }
      }
    },
    "structure": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["title", "description", "subsections"],
        "properties": {
          "title":       {"type": "string"},
          "description": {"type": "string"},
          "subsections": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["title", "description"],
              "properties": {
                "title":       {"type": "string"},
                "description": {"type": "string"}
              }
            }
          }
        }
      }
    },
    "keyData": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["concept", "explanation", "relatedConcepts"],
        "properties": {
          "concept":         {"type": "string"},
          "explanation":     {"type": "string"},
          "relatedConcepts": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

var schemaSources = map[SchemaTag]string{
	RecommendationList: recommendationListSchema,
	ContentAnalysis:    contentAnalysisSchema,
	SummaryDocument:    summaryDocumentSchema,
}
