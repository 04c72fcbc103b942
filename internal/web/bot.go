package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgwatch/tgwatch/internal/bot"
)

func registerBotControlRoutes(api *gin.RouterGroup, d Deps) {
	api.POST("/test/bot", viewer(), testBot(d))
}

func registerWebhookRoutes(r *gin.Engine, d Deps) {
	r.POST("/telegram/webhook/:secret", bot.WebhookHandler(d.WebhookSecret, d.BotRouter))
}

func testBot(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := d.Bot.GetMe(c.Request.Context()); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "bot reachable"})
	}
}
