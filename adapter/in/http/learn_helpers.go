package http

import (
	"io"
	"mime/multipart"
	"strings"

	"learning_server/core/domain"
	"learning_server/pkg/apperr"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

const (
	maxTopicLength    = 200
	defaultUploadSize = 10 * 1024 * 1024
)

// isMultipart reports whether the request carries a form upload.
func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEMultipartForm)
}

// parseStyle validates a learning style coming from a request. An empty
// value is allowed when optional is set.
func parseStyle(raw string, optional bool) (domain.LearningStyle, error) {
	if strings.TrimSpace(raw) == "" {
		if optional {
			return "", nil
		}
		return "", apperr.MissingField("style")
	}
	style := domain.ParseLearningStyle(raw)
	if !style.IsKnown() {
		return "", apperr.InvalidInput("style", "must be one of visual, auditory, kinesthetic, reading")
	}
	return style, nil
}

func validateScores(s domain.AssessmentScores) error {
	for field, v := range map[string]int{
		"cognitiveScore": s.CognitiveScore,
		"emotionalScore": s.EmotionalScore,
		"physicalScore":  s.PhysicalScore,
	} {
		if v < 0 || v > 100 {
			return apperr.InvalidInput(field, "must be between 0 and 100")
		}
	}
	return nil
}

// readUpload reads the "file" form field into memory.
func readUpload(fh *multipart.FileHeader, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = defaultUploadSize
	}
	if fh.Size > int64(limit) {
		return nil, apperr.TooLarge(limit)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperr.BadRequest("could not read uploaded file").WithError(err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, int64(limit)+1))
	if err != nil {
		return nil, apperr.BadRequest("could not read uploaded file").WithError(err)
	}
	if len(data) > limit {
		return nil, apperr.TooLarge(limit)
	}
	return data, nil
}

func decodeJSONField(raw string, v any, field string) error {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return apperr.InvalidInput(field, "must be valid JSON").WithError(err)
	}
	return nil
}
