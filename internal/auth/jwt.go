package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/geoforest/billing/internal/config"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/types"
	"github.com/golang-jwt/jwt/v4"
)

// jwtAuth verifies HS256 tokens signed with auth.secret. It stands in for
// Firebase in local runs and against the DynamoDB store.
type jwtAuth struct {
	secret string
}

func NewJWTAuth(cfg *config.Configuration) *jwtAuth {
	return &jwtAuth{secret: cfg.Auth.Secret}
}

func (j *jwtAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderJWT
}

func (j *jwtAuth) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	parsedToken, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ierr.NewError("unexpected signing method").
				WithHint(fmt.Sprintf("unexpected signing method: %v", token.Header["alg"])).
				Mark(ierr.ErrUnauthenticated)
		}
		return []byte(j.secret), nil
	})
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Token parse error").
			Mark(ierr.ErrUnauthenticated)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid token claims").
			Mark(ierr.ErrUnauthenticated)
	}

	userID, _ := claims["user_id"].(string)
	if userID == "" {
		userID, _ = claims["sub"].(string)
	}
	if userID == "" {
		return nil, ierr.NewError("token missing user ID").
			WithHint("Token missing user ID").
			Mark(ierr.ErrUnauthenticated)
	}

	email, _ := claims["email"].(string)
	return &Claims{UserID: userID, Email: email}, nil
}

// GenerateToken signs a token for userID valid for ttl. Used by local tooling and tests.
func GenerateToken(secret, userID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
