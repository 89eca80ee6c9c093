package v1

import (
	"io"
	"net/http"

	"github.com/geoforest/billing/internal/api/dto"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/interfaces"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
	"github.com/gin-gonic/gin"
)

// maxWebhookBodyBytes bounds the Stripe payload read into memory
const maxWebhookBodyBytes = 1 << 20

// WebhookHandler handles Stripe webhook deliveries
type WebhookHandler struct {
	reconciler interfaces.EntitlementReconcilerService
	logger     *logger.Logger
}

func NewWebhookHandler(reconciler interfaces.EntitlementReconcilerService, logger *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// HandleStripeWebhook verifies a Stripe delivery and applies paid plans.
// Non-2xx responses make Stripe redeliver.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Errorw("failed to read request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	signature := c.GetHeader(types.HeaderStripeSignature)
	if signature == "" {
		h.logger.Warnw("missing Stripe-Signature header")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Missing Stripe-Signature header",
		})
		return
	}

	h.logger.Debugw("processing webhook", "payload_length", len(body))

	result, err := h.reconciler.HandleStripeWebhook(c.Request.Context(), body, signature)
	if err != nil {
		if ierr.IsSignatureInvalid(err) {
			h.logger.Warnw("failed to verify Stripe webhook signature", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Failed to verify webhook signature or parse event",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to process webhook",
		})
		return
	}

	h.logger.Debugw("webhook processed",
		"event_id", result.EventID,
		"event_type", result.EventType,
		"outcome", result.Outcome,
	)
	c.JSON(http.StatusOK, dto.WebhookResponse{Received: true})
}
