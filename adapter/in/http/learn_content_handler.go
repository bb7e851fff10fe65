package http

import (
	"strings"

	"learning_server/core/domain"
	"learning_server/core/port/in"
	"learning_server/core/port/out"
	"learning_server/pkg/apperr"
	"learning_server/pkg/logger"
	"learning_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ContentHandler serves the personalization pipeline.
type ContentHandler struct {
	content   in.ContentService
	extractor out.TextExtractor
	maxUpload int
}

func NewContentHandler(content in.ContentService, extractor out.TextExtractor, maxUpload int) *ContentHandler {
	return &ContentHandler{
		content:   content,
		extractor: extractor,
		maxUpload: maxUpload,
	}
}

func (h *ContentHandler) Register(router fiber.Router) {
	router.Post("/recommendations", h.Recommendations)
	router.Post("/summaries", h.Summarize)
	router.Post("/analyses", h.Analyze)
}

type recommendationRequest struct {
	Topic        string `json:"topic"`
	Style        string `json:"style"`
	DocumentText string `json:"documentText"`
}

type summaryRequest struct {
	DocumentText string `json:"documentText"`
	Style        string `json:"style"`
}

type analysisRequest struct {
	DocumentText string                  `json:"documentText"`
	Assessment   domain.AssessmentScores `json:"assessment"`
}

// Recommendations accepts JSON or a multipart form with topic, style and an
// optional file.
func (h *ContentHandler) Recommendations(c *fiber.Ctx) error {
	var req recommendationRequest
	if isMultipart(c) {
		req.Topic = c.FormValue("topic")
		req.Style = c.FormValue("style")
		text, err := h.uploadedText(c, false)
		if err != nil {
			return err
		}
		req.DocumentText = text
	} else if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return apperr.MissingField("topic")
	}
	if len(topic) > maxTopicLength {
		return apperr.InvalidInput("topic", "too long")
	}
	style, err := parseStyle(req.Style, false)
	if err != nil {
		return err
	}

	items, outcome := h.content.GetPersonalizedContent(c.UserContext(), topic, style, req.DocumentText)
	return response.OKWithMeta(c, items, outcome)
}

// Summarize accepts JSON {documentText, style} or a multipart file upload.
func (h *ContentHandler) Summarize(c *fiber.Ctx) error {
	var req summaryRequest
	if isMultipart(c) {
		req.Style = c.FormValue("style")
		text, err := h.uploadedText(c, true)
		if err != nil {
			return err
		}
		req.DocumentText = text
	} else if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}

	if strings.TrimSpace(req.DocumentText) == "" {
		return apperr.MissingField("documentText")
	}
	style, err := parseStyle(req.Style, true)
	if err != nil {
		return err
	}

	summary, outcome := h.content.GenerateDocumentSummary(c.UserContext(), req.DocumentText, style)
	return response.OKWithMeta(c, summary, outcome)
}

// Analyze accepts JSON {documentText, assessment} or a multipart file with
// the scores in an "assessmentResults" JSON field.
func (h *ContentHandler) Analyze(c *fiber.Ctx) error {
	var req analysisRequest
	if isMultipart(c) {
		raw := c.FormValue("assessmentResults")
		if raw == "" {
			return apperr.MissingField("assessmentResults")
		}
		if err := decodeJSONField(raw, &req.Assessment, "assessmentResults"); err != nil {
			return err
		}
		text, err := h.uploadedText(c, true)
		if err != nil {
			return err
		}
		req.DocumentText = text
	} else if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}

	if strings.TrimSpace(req.DocumentText) == "" {
		return apperr.MissingField("documentText")
	}
	if err := validateScores(req.Assessment); err != nil {
		return err
	}

	analysis, outcome := h.content.AnalyzeContent(c.UserContext(), req.DocumentText, req.Assessment)
	return response.OKWithMeta(c, analysis, outcome)
}

// uploadedText extracts the text of the "file" form field. Extraction
// failures are returned untouched so the error handler answers 422.
func (h *ContentHandler) uploadedText(c *fiber.Ctx, required bool) (string, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		if required {
			return "", apperr.MissingField("file")
		}
		return "", nil
	}

	data, err := readUpload(fh, h.maxUpload)
	if err != nil {
		return "", err
	}

	text, err := h.extractor.Extract(c.UserContext(), fh.Filename, fh.Header.Get(fiber.HeaderContentType), data)
	if err != nil {
		logger.WithError(err).WithField("filename", fh.Filename).Warn("Upload rejected")
		return "", err
	}
	return text, nil
}
