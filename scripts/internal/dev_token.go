package internal

import (
	"fmt"
	"os"
	"time"

	"github.com/geoforest/billing/internal/auth"
	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/types"
)

// GenerateDevToken signs a one-day token for USER_ID with the configured
// auth.secret, for calling the callables locally with auth.provider=jwt
func GenerateDevToken() error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	if cfg.Auth.Provider != types.AuthProviderJWT {
		return fmt.Errorf("auth.provider is %s, dev tokens need jwt", cfg.Auth.Provider)
	}

	userID := os.Getenv("USER_ID")
	if userID == "" {
		return fmt.Errorf("-user-id is required")
	}

	token, err := auth.GenerateToken(cfg.Auth.Secret, userID, os.Getenv("USER_EMAIL"), 24*time.Hour)
	if err != nil {
		return err
	}

	fmt.Printf("Authorization: Bearer %s\n", token)
	return nil
}
