package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geoforest/billing/internal/auth"
	"github.com/geoforest/billing/internal/config"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serveError(t *testing.T, err error) (int, ierr.ErrorResponse) {
	t.Helper()
	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/", func(c *gin.Context) {
		_ = c.Error(err)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", nil))

	var resp ierr.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantStatus  string
		wantMessage string
		wantDetails map[string]any
	}{
		{
			name: "validation",
			err: ierr.NewError("price id is required").
				WithHint("priceId is required").
				WithReportableDetails(map[string]any{"priceId": "required"}).
				Mark(ierr.ErrValidation),
			wantCode:    http.StatusBadRequest,
			wantStatus:  "INVALID_ARGUMENT",
			wantMessage: "priceId is required",
			wantDetails: map[string]any{"priceId": "required"},
		},
		{
			name:        "not found",
			err:         ierr.NewError("account uid-1 not found").WithHint("Account not found").Mark(ierr.ErrNotFound),
			wantCode:    http.StatusNotFound,
			wantStatus:  "NOT_FOUND",
			wantMessage: "Account not found",
		},
		{
			name:        "unauthenticated",
			err:         ierr.NewError("no token").WithHint("Authentication required").Mark(ierr.ErrUnauthenticated),
			wantCode:    http.StatusUnauthorized,
			wantStatus:  "UNAUTHENTICATED",
			wantMessage: "Authentication required",
		},
		{
			name: "database error text is hidden",
			err: ierr.NewError("rpc error: code = Unavailable desc = connection refused").
				WithHint("firestore projects/geoforest unavailable").
				WithReportableDetails(map[string]any{"collection": "clientes"}).
				Mark(ierr.ErrDatabase),
			wantCode:    http.StatusInternalServerError,
			wantStatus:  "INTERNAL",
			wantMessage: genericErrorMessage,
		},
		{
			name:        "plain error",
			err:         assert.AnError,
			wantCode:    http.StatusInternalServerError,
			wantStatus:  "INTERNAL",
			wantMessage: genericErrorMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := serveError(t, tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantStatus, resp.Error.Status)
			assert.Equal(t, tt.wantMessage, resp.Error.Display)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)
		})
	}
}

type stubProvider struct {
	claims *auth.Claims
	err    error
}

func (p *stubProvider) GetProvider() types.AuthProvider { return types.AuthProviderFirebase }

func (p *stubProvider) ValidateToken(_ context.Context, _ string) (*auth.Claims, error) {
	return p.claims, p.err
}

func TestAuthenticateMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		provider   *stubProvider
		wantCode   int
		wantUserID string
	}{
		{
			name:       "valid token",
			header:     "Bearer good",
			provider:   &stubProvider{claims: &auth.Claims{UserID: "uid-1", Email: "ana@example.com"}},
			wantCode:   http.StatusOK,
			wantUserID: "uid-1",
		},
		{
			name:     "no header continues anonymously",
			provider: &stubProvider{},
			wantCode: http.StatusOK,
		},
		{
			name:     "wrong scheme",
			header:   "Basic abc",
			provider: &stubProvider{},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "rejected token",
			header:   "Bearer bad",
			provider: &stubProvider{err: ierr.NewError("expired").Mark(ierr.ErrUnauthenticated)},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "token without uid",
			header:   "Bearer good",
			provider: &stubProvider{claims: &auth.Claims{}},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			r := gin.New()
			r.Use(ErrorHandler())
			r.POST("/", AuthenticateMiddleware(tt.provider, logger.NewNopLogger()), func(c *gin.Context) {
				gotUserID = types.GetUserID(c.Request.Context())
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set(types.HeaderAuthorization, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, tt.wantUserID, gotUserID)
		})
	}
}

func TestTriggerKeyMiddleware(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.Auth.TriggerKeys = map[string]config.TriggerKeyDetails{
		auth.HashAPIKey("trigger-secret"): {Name: "identity-trigger", IsActive: true},
	}

	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/", TriggerKeyMiddleware(cfg, logger.NewNopLogger()), func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	for key, want := range map[string]int{
		"trigger-secret": http.StatusAccepted,
		"wrong":          http.StatusUnauthorized,
		"":               http.StatusUnauthorized,
	} {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set(types.HeaderTriggerKey, key)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, "key %q", key)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := config.GetDefaultConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, PerMinute: 1, Burst: 2}

	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/", func(c *gin.Context) {
		uid := c.GetHeader("X-Test-User")
		c.Request = c.Request.WithContext(types.SetUserID(c.Request.Context(), uid))
		c.Next()
	}, RateLimitMiddleware(cfg), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	call := func(uid string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("X-Test-User", uid)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, call("uid-1"))
	assert.Equal(t, http.StatusOK, call("uid-1"))
	assert.Equal(t, http.StatusTooManyRequests, call("uid-1"))
	assert.Equal(t, http.StatusOK, call("uid-2"))
}
