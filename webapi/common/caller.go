package common

import (
	"github.com/amirasaad/bank/pkg/domain/user"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenReader extracts the caller's user id from a verified token.
type TokenReader interface {
	GetCurrentUserID(token *jwt.Token) (uuid.UUID, error)
}

// CurrentUserID returns the user id of the token stored by the JWT middleware.
func CurrentUserID(c *fiber.Ctx, tokens TokenReader) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, user.ErrUserUnauthorized
	}
	return tokens.GetCurrentUserID(token)
}

// CallerScope scopes idempotency keys to the authenticated caller.
func CallerScope(tokens TokenReader) ScopeFunc {
	return func(c *fiber.Ctx) (string, error) {
		id, err := CurrentUserID(c, tokens)
		if err != nil {
			return "", err
		}
		return id.String(), nil
	}
}
