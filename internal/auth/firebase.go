package auth

import (
	"context"

	fbauth "firebase.google.com/go/v4/auth"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/types"
)

// TokenVerifier is the part of the Firebase Auth client used here
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

type firebaseAuth struct {
	verifier TokenVerifier
}

func NewFirebaseAuth(verifier TokenVerifier) *firebaseAuth {
	return &firebaseAuth{verifier: verifier}
}

func (f *firebaseAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderFirebase
}

func (f *firebaseAuth) ValidateToken(ctx context.Context, token string) (*Claims, error) {
	if f.verifier == nil {
		return nil, ierr.NewError("firebase auth not initialized").
			WithHint("Authentication is unavailable").
			Mark(ierr.ErrSystem)
	}

	verified, err := f.verifier.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid or expired ID token").
			Mark(ierr.ErrUnauthenticated)
	}
	if verified.UID == "" {
		return nil, ierr.NewError("token missing uid").
			WithHint("Invalid or expired ID token").
			Mark(ierr.ErrUnauthenticated)
	}

	email, _ := verified.Claims["email"].(string)
	return &Claims{UserID: verified.UID, Email: email}, nil
}
