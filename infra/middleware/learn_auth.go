package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"learning_server/pkg/apperr"
	"learning_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTAuth requires a valid HS256 bearer token whose "sub" claim is a user UUID.
func JWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodOptions {
			return c.Next()
		}

		tokenString := bearerToken(c)
		if tokenString == "" {
			return apperr.Unauthorized("missing authorization")
		}

		userID, email, err := parseToken(tokenString, secret)
		if err != nil {
			logger.WithError(err).Warn("JWT validation failed")
			return err
		}

		setUser(c, userID, email)
		return c.Next()
	}
}

// OptionalJWTAuth sets user_id when a valid token is present and ignores
// missing or invalid ones.
func OptionalJWTAuth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := bearerToken(c)
		if tokenString == "" || secret == "" {
			return c.Next()
		}

		userID, email, err := parseToken(tokenString, secret)
		if err != nil {
			logger.WithError(err).Debug("Ignoring invalid optional token")
			return c.Next()
		}

		setUser(c, userID, email)
		return c.Next()
	}
}

// setUser exposes the user to handlers through Locals and to request logs
// through the user context.
func setUser(c *fiber.Ctx, userID uuid.UUID, email string) {
	c.Locals("user_id", userID)
	c.Locals("user_email", email)
	c.SetUserContext(logger.ContextWithUserID(c.UserContext(), userID.String()))
}

func bearerToken(c *fiber.Ctx) string {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func parseToken(tokenString, secret string) (uuid.UUID, string, error) {
	if secret == "" {
		return uuid.Nil, "", apperr.Unauthorized("authentication is not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unsupported signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithLeeway(time.Minute))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, "", apperr.TokenExpired().WithError(err)
		}
		return uuid.Nil, "", apperr.InvalidToken("invalid token").WithError(err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, "", apperr.InvalidToken("invalid claims")
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, "", apperr.InvalidToken("missing user id in token")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", apperr.InvalidToken("invalid user id format")
	}

	email, _ := claims["email"].(string)
	return userID, email, nil
}

// GetUserID returns the authenticated user, if any.
func GetUserID(c *fiber.Ctx) (uuid.UUID, bool) {
	userID, ok := c.Locals("user_id").(uuid.UUID)
	return userID, ok && userID != uuid.Nil
}
