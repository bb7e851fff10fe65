// Package validate checks generation output against the expected response
// structure before any of it is used.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"learning_server/core/domain"

	"github.com/goccy/go-json"
	"github.com/kaptinlin/jsonschema"
)

var errUnknownSchema = errors.New("unknown schema tag")

// Parsed holds the typed result for the tag it was validated against. Only
// the field matching Tag is set.
type Parsed struct {
	Tag             SchemaTag
	Recommendations []domain.RecommendationItem
	Analysis        *domain.ContentAnalysis
	Summary         *domain.SummaryDocument
}

// Validator is safe for concurrent use once built.
type Validator struct {
	schemas map[SchemaTag]*jsonschema.Schema
}

func New() (*Validator, error) {
	schemas := make(map[SchemaTag]*jsonschema.Schema, len(schemaSources))
	for tag, src := range schemaSources {
		compiler := jsonschema.NewCompiler()
		schema, err := compiler.Compile([]byte(src))
		if err != nil {
			return nil, fmt.Errorf("failed to compile %s schema: %w", tag, err)
		}
		schemas[tag] = schema
	}
	return &Validator{schemas: schemas}, nil
}

// Validate parses raw as JSON and checks it against the schema for tag.
// Every failure is a *domain.ValidationError.
func (v *Validator) Validate(raw string, tag SchemaTag) (Parsed, error) {
	schema, ok := v.schemas[tag]
	if !ok {
		return Parsed{}, invalid(tag, "no schema", errUnknownSchema)
	}

	payload := StripFences(raw)
	if payload == "" {
		return Parsed{}, invalid(tag, "empty response", nil)
	}

	var value any
	if err := json.Unmarshal([]byte(payload), &value); err != nil {
		return Parsed{}, invalid(tag, "not valid JSON", err)
	}

	if tag == RecommendationList {
		value = unwrapRecommendations(value)
	}

	result := schema.Validate(value)
	if !result.Valid {
		return Parsed{}, invalid(tag, "schema mismatch", fmt.Errorf("%v", result.Errors))
	}

	// Re-encode the checked value so wrapped recommendations decode the same
	// way as a bare array.
	normalized, err := json.Marshal(value)
	if err != nil {
		return Parsed{}, invalid(tag, "re-encode", err)
	}

	parsed := Parsed{Tag: tag}
	switch tag {
	case RecommendationList:
		err = json.Unmarshal(normalized, &parsed.Recommendations)
	case ContentAnalysis:
		parsed.Analysis = &domain.ContentAnalysis{}
		err = json.Unmarshal(normalized, parsed.Analysis)
	case SummaryDocument:
		parsed.Summary = &domain.SummaryDocument{}
		err = json.Unmarshal(normalized, parsed.Summary)
	}
	if err != nil {
		return Parsed{}, invalid(tag, "decode", err)
	}
	return parsed, nil
}

// unwrapRecommendations accepts {"recommendations": [...]} as well as a bare array.
func unwrapRecommendations(value any) any {
	obj, ok := value.(map[string]any)
	if !ok {
		return value
	}
	if inner, ok := obj["recommendations"]; ok {
		return inner
	}
	return value
}

// StripFences removes a surrounding markdown code fence.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Excerpt shortens raw to at most maxLen bytes for log output, cutting on a
// rune boundary.
func Excerpt(raw string, maxLen int) string {
	if len(raw) <= maxLen {
		return raw
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(raw[cut]) {
		cut--
	}
	return raw[:cut] + "..."
}

func invalid(tag SchemaTag, reason string, err error) *domain.ValidationError {
	return &domain.ValidationError{Schema: string(tag), Reason: reason, Err: err}
}
