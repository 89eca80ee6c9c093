package auth

import (
	"context"

	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/firebase"
	"github.com/geoforest/billing/internal/types"
)

// Claims is the verified caller identity. UserID is the account id.
type Claims struct {
	UserID string
	Email  string
}

type Provider interface {
	GetProvider() types.AuthProvider
	// ValidateToken verifies a bearer token and returns its identity.
	// Failures are ErrUnauthenticated.
	ValidateToken(ctx context.Context, token string) (*Claims, error)
}

func NewProvider(cfg *config.Configuration, fb *firebase.Client) Provider {
	switch cfg.Auth.Provider {
	case types.AuthProviderJWT:
		return NewJWTAuth(cfg)
	default:
		if client := fb.Auth(); client != nil {
			return NewFirebaseAuth(client)
		}
		return NewFirebaseAuth(nil)
	}
}
