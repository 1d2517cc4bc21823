// Package auth reads the caller identity from tokens issued by the external
// auth service. Registration and login live there; this service only needs
// the subject of an already verified token.
package auth

import (
	"log/slog"
	"time"

	"github.com/amirasaad/bank/pkg/config"
	"github.com/amirasaad/bank/pkg/domain/user"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// UserIDClaim is the claim carrying the caller's user id.
const UserIDClaim = "user_id"

type Service struct {
	cfg    *config.Jwt
	logger *slog.Logger
}

func NewWithJWT(cfg *config.Jwt, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// GetCurrentUserID returns the user id of a token verified by the JWT middleware.
func (s *Service) GetCurrentUserID(token *jwt.Token) (userID uuid.UUID, err error) {
	log := s.logger.With("context", "GetCurrentUserID")
	if token == nil {
		log.Error("GetCurrentUserID failed", "error", user.ErrUserUnauthorized)
		return uuid.Nil, user.ErrUserUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		log.Error("GetCurrentUserID failed", "error", user.ErrUserUnauthorized)
		return uuid.Nil, user.ErrUserUnauthorized
	}
	raw, ok := claims[UserIDClaim].(string)
	if !ok {
		log.Error("GetCurrentUserID failed: claim missing", "claim", UserIDClaim)
		return uuid.Nil, user.ErrUserUnauthorized
	}
	userID, err = uuid.Parse(raw)
	if err != nil {
		log.Error("GetCurrentUserID failed", "error", err)
		return uuid.Nil, user.ErrUserUnauthorized
	}
	log.Debug("GetCurrentUserID successful", "user_id", userID)
	return userID, nil
}

// GenerateToken signs an HS256 token for userID. The bank never logs users
// in; operators use it to mint tokens for local testing.
func (s *Service) GenerateToken(userID uuid.UUID, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		UserIDClaim: userID.String(),
		"iat":       now.Unix(),
		"exp":       now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("GenerateToken failed", "user_id", userID, "error", err)
		return "", err
	}
	return signed, nil
}
