package http

import (
	"strconv"

	"learning_server/core/domain"
	"learning_server/core/port/in"
	"learning_server/infra/middleware"
	"learning_server/pkg/apperr"
	"learning_server/pkg/logger"
	"learning_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AssessmentHandler serves the learning-style and wellness quizzes.
type AssessmentHandler struct {
	assessments in.AssessmentService
}

func NewAssessmentHandler(assessments in.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{assessments: assessments}
}

// Register mounts the quiz routes. requireAuth guards the routes that read
// stored results.
func (h *AssessmentHandler) Register(router fiber.Router, requireAuth fiber.Handler) {
	group := router.Group("/assessments")
	group.Get("/questions", h.StyleQuestions)
	group.Get("/wellness/questions", h.WellnessQuestions)
	group.Post("/learning-style", h.ScoreLearningStyle)
	group.Post("/wellness", h.ScoreWellness)
	group.Get("/latest", requireAuth, h.Latest)
}

func (h *AssessmentHandler) StyleQuestions(c *fiber.Ctx) error {
	count := c.QueryInt("count", 0)
	return response.OK(c, h.assessments.StyleQuestions(count))
}

func (h *AssessmentHandler) WellnessQuestions(c *fiber.Ctx) error {
	return response.OK(c, h.assessments.WellnessQuestions())
}

type learningStyleRequest struct {
	Answers []domain.StyleAnswer `json:"answers"`
}

type learningStyleResponse struct {
	*domain.LearningStyleResult
	Saved *domain.AssessmentRecord `json:"saved,omitempty"`
}

// ScoreLearningStyle scores the answers and, for signed-in users, stores the
// result. A storage failure does not fail the request.
func (h *AssessmentHandler) ScoreLearningStyle(c *fiber.Ctx) error {
	var req learningStyleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}

	result, err := h.assessments.ScoreLearningStyle(req.Answers)
	if err != nil {
		return err
	}

	resp := learningStyleResponse{LearningStyleResult: result}
	if userID, ok := middleware.GetUserID(c); ok {
		record, err := h.assessments.SaveLearningStyle(c.UserContext(), userID, result)
		if err != nil {
			logger.WithError(err).WithField("user_id", userID.String()).Warn("Learning style not saved")
		} else {
			resp.Saved = record
		}
	}
	return response.OK(c, resp)
}

type wellnessRequest struct {
	// Keyed by question id.
	Answers map[string]int `json:"answers"`
}

func (h *AssessmentHandler) ScoreWellness(c *fiber.Ctx) error {
	var req wellnessRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body").WithError(err)
	}

	answers := make(map[int]int, len(req.Answers))
	for key, rating := range req.Answers {
		id, err := strconv.Atoi(key)
		if err != nil {
			return apperr.InvalidInput("answers", "question ids must be numbers")
		}
		answers[id] = rating
	}

	scores, err := h.assessments.ScoreWellness(answers)
	if err != nil {
		return err
	}
	return response.OK(c, scores)
}

func (h *AssessmentHandler) Latest(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return apperr.ErrUnauthorized
	}

	record, err := h.assessments.LatestLearningStyle(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return response.OK(c, record)
}
