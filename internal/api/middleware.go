package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Beachman4/properview/internal/agents"
)

const agentContextKey = "agent"

// AuthRequired rejects requests without a valid Bearer token and injects
// the resolved agent into the request context.
func AuthRequired(agentSvc *agents.Service, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		agent, err := agentSvc.Verify(c.Request.Context(), token)
		if err != nil {
			logger.WithError(err).Debug("Rejected agent token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(agentContextKey, agent)
		c.Next()
	}
}
