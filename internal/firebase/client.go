package firebase

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/geoforest/billing/internal/config"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
)

// Client holds the Firebase app and the service clients this process uses.
// Firestore is nil unless it is the configured store and Auth is nil unless
// Firebase verifies caller tokens.
type Client struct {
	app       *firebase.App
	firestore *firestore.Client
	auth      *auth.Client
}

// NewClient returns nil when neither Firestore nor Firebase Auth is configured
func NewClient(cfg *config.Configuration, log *logger.Logger) (*Client, error) {
	useStore := cfg.Store.Provider == types.StoreProviderFirestore
	useAuth := cfg.Auth.Provider == types.AuthProviderFirebase
	if !useStore && !useAuth {
		return nil, nil
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}

	var conf *firebase.Config
	if cfg.Firebase.ProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.Firebase.ProjectID}
	}

	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase init error: %w", err)
	}

	c := &Client{app: app}

	if useStore {
		c.firestore, err = app.Firestore(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firestore client: %w", err)
		}
	}

	if useAuth {
		c.auth, err = app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize firebase auth client: %w", err)
		}
	}

	log.Infow("firebase initialized",
		"project_id", cfg.Firebase.ProjectID,
		"firestore", useStore,
		"auth", useAuth,
	)
	return c, nil
}

func (c *Client) Firestore() *firestore.Client {
	if c == nil {
		return nil
	}
	return c.firestore
}

func (c *Client) Auth() *auth.Client {
	if c == nil {
		return nil
	}
	return c.auth
}

// Close releases the Firestore connection
func (c *Client) Close() error {
	if c == nil || c.firestore == nil {
		return nil
	}
	return c.firestore.Close()
}
