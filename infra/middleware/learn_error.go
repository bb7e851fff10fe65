package middleware

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"learning_server/core/domain"
	"learning_server/core/service/common"
	"learning_server/pkg/apperr"
	"learning_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ErrorResponse is the standard error response format
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Error     ErrorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler is a centralized error handler for Fiber
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		requestID, _ := c.Locals("request_id").(string)

		response := ErrorResponse{
			Success:   false,
			RequestID: requestID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) && !apperr.IsAppError(err) {
			response.Error = ErrorDetail{
				Code:    mapHTTPStatusToCode(fiberErr.Code),
				Message: fiberErr.Message,
			}
			return c.Status(fiberErr.Code).JSON(response)
		}

		appErr := toAppError(err)
		response.Error = ErrorDetail{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: appErr.Details,
		}

		log := logger.WithContext(c.UserContext()).
			WithField("error_code", appErr.Code).
			WithError(appErr.Err)
		if appErr.Status >= 500 {
			if appErr.Code == apperr.CodeInternalError && appErr.Err != nil {
				log = log.WithField("stack", string(debug.Stack()))
			}
			log.Error("Internal error: %s", appErr.Message)
		} else {
			log.Warn("Client error: %s", appErr.Message)
		}

		return c.Status(appErr.Status).JSON(response)
	}
}

// toAppError classifies service and domain errors for the HTTP layer.
func toAppError(err error) *apperr.AppError {
	if apperr.IsAppError(err) {
		return apperr.AsAppError(err)
	}

	var extErr *domain.ExtractionError
	switch {
	case errors.As(err, &extErr):
		return apperr.ExtractionFailed(err)
	case errors.Is(err, common.ErrInvalidInput):
		return apperr.BadRequest(err.Error()).WithError(err)
	case errors.Is(err, common.ErrNotFound):
		return apperr.NotFound("resource").WithError(err)
	case errors.Is(err, common.ErrUnavailable):
		return apperr.Unavailable(err.Error(), err)
	case errors.Is(err, common.ErrStorage):
		return apperr.DatabaseError("assessment storage", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperr.Timeout("request").WithError(err)
	}
	return apperr.AsAppError(err)
}

// RequestID middleware adds a unique request ID to each request
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Locals("request_id", requestID)
		c.SetUserContext(logger.ContextWithRequestID(c.UserContext(), requestID))
		c.Set("X-Request-ID", requestID)
		return c.Next()
	}
}

// RequestLogger logs incoming requests and their responses
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// Run the error handler first so the logged status is the real one.
			if handlerErr := c.App().ErrorHandler(c, err); handlerErr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		log := logger.WithContext(c.UserContext()).WithFields(map[string]any{
			"method": c.Method(),
			"path":   c.Path(),
			"status": status,
			"ip":     c.IP(),
		}).WithDuration(time.Since(start))

		switch {
		case status >= 500:
			log.Error("Request failed: %s %s -> %d", c.Method(), c.Path(), status)
		case status >= 400:
			log.Warn("Request error: %s %s -> %d", c.Method(), c.Path(), status)
		default:
			log.Info("Request completed: %s %s -> %d", c.Method(), c.Path(), status)
		}

		return nil
	}
}

// Recover middleware recovers from panics
func Recover() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				requestID, _ := c.Locals("request_id").(string)
				logger.WithFields(map[string]any{
					"request_id": requestID,
					"panic":      fmt.Sprintf("%v", r),
					"path":       c.Path(),
					"method":     c.Method(),
					"stack":      string(debug.Stack()),
				}).Error("Panic recovered")

				err = apperr.Internal("")
			}
		}()
		return c.Next()
	}
}

func mapHTTPStatusToCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return apperr.CodeBadRequest
	case fiber.StatusUnauthorized:
		return apperr.CodeUnauthorized
	case fiber.StatusNotFound:
		return apperr.CodeNotFound
	case fiber.StatusRequestEntityTooLarge:
		return apperr.CodeTooLarge
	case fiber.StatusTooManyRequests:
		return apperr.CodeRateLimited
	case fiber.StatusInternalServerError:
		return apperr.CodeInternalError
	case fiber.StatusBadGateway, fiber.StatusServiceUnavailable, fiber.StatusGatewayTimeout:
		return apperr.CodeUnavailable
	default:
		return "UNKNOWN_ERROR"
	}
}
