package v1

import (
	"net/http"

	"github.com/geoforest/billing/internal/api/dto"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/geoforest/billing/internal/interfaces"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
	"github.com/gin-gonic/gin"
)

// CallableHandler serves the checkout callables. Requests and responses use
// the callable envelope, errors are rendered by the error middleware.
type CallableHandler struct {
	checkout interfaces.CheckoutService
	logger   *logger.Logger
}

func NewCallableHandler(checkout interfaces.CheckoutService, logger *logger.Logger) *CallableHandler {
	return &CallableHandler{
		checkout: checkout,
		logger:   logger,
	}
}

// CreatePaymentSheet prepares a mobile payment sheet for the caller and the
// given price
func (h *CallableHandler) CreatePaymentSheet(c *gin.Context) {
	var req dto.CallableRequest[dto.CreatePaymentSheetRequest]
	if !bindCallable(c, &req) {
		return
	}

	resp, err := h.checkout.CreatePaymentSheet(c.Request.Context(), req.Data)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCallableResponse(resp))
}

// CreateCheckoutSession creates a hosted subscription checkout for the caller
func (h *CallableHandler) CreateCheckoutSession(c *gin.Context) {
	var req dto.CallableRequest[dto.CreateCheckoutSessionRequest]
	if !bindCallable(c, &req) {
		return
	}

	resp, err := h.checkout.CreateCheckoutSession(c.Request.Context(), req.Data)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.NewCallableResponse(resp))
}

// bindCallable decodes the envelope. An anonymous caller is rejected before
// the body is looked at, so a malformed anonymous request reads as
// unauthenticated.
func bindCallable(c *gin.Context, req any) bool {
	if types.GetUserID(c.Request.Context()) == "" {
		c.Error(ierr.NewError("no verified identity on request").
			WithHint("Authentication required").
			Mark(ierr.ErrUnauthenticated))
		return false
	}
	if err := c.ShouldBindJSON(req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return false
	}
	return true
}
