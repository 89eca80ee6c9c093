package middleware

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	ierr "github.com/geoforest/billing/internal/errors"
	"github.com/gin-gonic/gin"
)

const genericErrorMessage = "An unexpected error occurred"

// ErrorHandler renders the last handler error as a callable error envelope.
// Only caller-visible kinds expose their hint and details.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		c.JSON(ierr.HTTPStatusFromErr(err), NewErrorResponse(err))
	}
}

// NewErrorResponse builds the envelope for err
func NewErrorResponse(err error) ierr.ErrorResponse {
	detail := ierr.ErrorDetail{
		Status:  ierr.CallableStatusFromErr(err),
		Display: genericErrorMessage,
	}
	if ierr.IsCallerVisible(err) {
		detail.Display = getDisplayMessage(err)
		if details := getSafeDetails(err); len(details) > 0 {
			detail.Details = details
		}
	}
	return ierr.ErrorResponse{Error: detail}
}

func getDisplayMessage(err error) string {
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		// Get the first non-empty hint - GetAllHints is post-order traversal
		for _, hint := range hints {
			if hint = strings.TrimSpace(hint); hint != "" {
				return hint
			}
		}
	}

	return genericErrorMessage
}

func getSafeDetails(err error) map[string]any {
	details := make(map[string]any)

	allSafeDetails := errors.GetAllSafeDetails(err)
	for _, sdp := range allSafeDetails {
		if len(sdp.SafeDetails) == 0 {
			continue
		}

		for _, payload := range sdp.SafeDetails {
			if len(payload) > 9 && strings.HasPrefix(payload, "__json__:") {
				var jsonDetails map[string]any
				if err := json.Unmarshal([]byte(payload[9:]), &jsonDetails); err == nil {
					for k, v := range jsonDetails {
						details[k] = v
					}
				}
			}
		}
	}

	return details
}
