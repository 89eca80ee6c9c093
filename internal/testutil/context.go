package testutil

import (
	"context"

	"github.com/geoforest/billing/internal/types"
	"github.com/google/uuid"
)

func SetupContext() context.Context {
	return types.SetRequestID(context.Background(), uuid.NewString())
}

// WithCaller returns ctx carrying a verified caller identity
func WithCaller(ctx context.Context, uid, email string) context.Context {
	ctx = types.SetUserID(ctx, uid)
	return types.SetEmail(ctx, email)
}
