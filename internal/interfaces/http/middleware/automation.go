package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// AutomationSecretHeader carries the shared secret of the automation system
const AutomationSecretHeader = "X-Automation-Secret"

// automationSecretQuery is the query parameter the automation system falls back to
const automationSecretQuery = "secret"

// AutomationAuth authenticates calls from the fulfillment automation system.
// The secret is read from the X-Automation-Secret header, then the secret query
// parameter. An empty configured secret rejects every request.
func AutomationAuth(secret string) gin.HandlerFunc {
	expected := []byte(secret)

	return func(c *gin.Context) {
		provided := c.GetHeader(AutomationSecretHeader)
		if provided == "" {
			provided = c.Query(automationSecretQuery)
		}

		if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized,
				"Invalid automation secret",
				GetRequestID(c),
			))
			return
		}

		c.Next()
	}
}
