package jwt

import (
	"errors"
	"time"

	"presto/internal/domain/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidTokenClaims = errors.New("invalid token claims")
)

// NewToken mints an HS256 token carrying the user id and email.
func NewToken(user models.User, secret string, duration time.Duration) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["uid"] = user.ID.String()
	claims["email"] = user.Email
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(duration).Unix()

	return token.SignedString([]byte(secret))
}

// ParseMeta extracts the claims without verifying the signature. Used on the
// refresh path, where the token's validity is decided by the allowlist in
// storage rather than by the signature alone.
func ParseMeta(tokenString string) (models.TokenMeta, error) {
	token, _, err := new(jwt.Parser).ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return models.TokenMeta{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.TokenMeta{}, ErrInvalidToken
	}

	meta := models.TokenMeta{}

	meta.UserID, ok = claims["uid"].(string)
	if !ok {
		return models.TokenMeta{}, ErrInvalidTokenClaims
	}

	if email, ok := claims["email"].(string); ok {
		meta.Email = email
	}
	if iat, ok := claims["iat"].(float64); ok {
		meta.IssuedAt = int64(iat)
	}
	if exp, ok := claims["exp"].(float64); ok {
		meta.ExpiresAt = int64(exp)
	}

	return meta, nil
}
