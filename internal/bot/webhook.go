package bot

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgwatch/tgwatch/internal/log"
)

// WebhookHandler validates the shared secret path segment and dispatches
// the decoded update to router, per the webhook control surface's "wrong
// secret => Forbidden" contract.
func WebhookHandler(secret string, router *Router) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Param("secret") != secret {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"msg": "invalid webhook secret"})
			return
		}
		var upd Update
		if err := c.ShouldBindJSON(&upd); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"msg": "malformed update"})
			return
		}
		if err := router.Handle(c.Request.Context(), upd); err != nil {
			log.GetLogger(log.BotModule).WithError(err).Error("error handling webhook update")
		}
		c.Status(http.StatusOK)
	}
}
