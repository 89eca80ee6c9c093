package v1

import (
	"net/http"

	"github.com/geoforest/billing/internal/api/dto"
	"github.com/geoforest/billing/internal/interfaces"
	"github.com/geoforest/billing/internal/logger"
	"github.com/geoforest/billing/internal/types"
	"github.com/geoforest/billing/internal/validator"
	"github.com/gin-gonic/gin"
)

// TriggerHandler receives identity provider events
type TriggerHandler struct {
	provisioner interfaces.AccountProvisionerService
	logger      *logger.Logger
}

func NewTriggerHandler(provisioner interfaces.AccountProvisionerService, logger *logger.Logger) *TriggerHandler {
	return &TriggerHandler{
		provisioner: provisioner,
		logger:      logger,
	}
}

// IdentityCreated provisions a trial account for a new identity. The event is
// always acknowledged.
func (h *TriggerHandler) IdentityCreated(c *gin.Context) {
	var evt dto.IdentityCreatedEvent
	if err := c.ShouldBindJSON(&evt); err != nil {
		h.logger.Warnw("failed to bind identity event", "error", err)
		c.JSON(http.StatusAccepted, dto.IdentityCreatedResponse{Accepted: true, Outcome: types.ProvisionOutcomeSkipped})
		return
	}
	if err := validator.ValidateRequest(&evt); err != nil {
		h.logger.Warnw("invalid identity event", "error", err)
		c.JSON(http.StatusAccepted, dto.IdentityCreatedResponse{Accepted: true, Outcome: types.ProvisionOutcomeSkipped})
		return
	}

	outcome := h.provisioner.HandleIdentityCreated(c.Request.Context(), evt)
	c.JSON(http.StatusAccepted, dto.IdentityCreatedResponse{Accepted: true, Outcome: outcome})
}
