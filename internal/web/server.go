// Package web is the gin-based tenant-scoped HTTP control surface: every
// resource in internal/repo plus auth, stats and the bot control/webhook
// endpoints.
package web

import (
	"context"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/analytics"
	"github.com/tgwatch/tgwatch/internal/artifact"
	"github.com/tgwatch/tgwatch/internal/auth"
	"github.com/tgwatch/tgwatch/internal/bot"
	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/repo"
	"github.com/tgwatch/tgwatch/internal/runtime"
)

// BotProbe is the bot control surface's `/test/bot` and destination
// `/test` dependency: a thin Bot API client.
type BotProbe interface {
	GetMe(ctx context.Context) error
	SendMessage(ctx context.Context, chatID, text string) error
}

type Deps struct {
	Repos         *repo.Container
	Tokens        *auth.TokenIssuer
	Artifacts     *artifact.Store
	Analytics     *analytics.Aggregator
	Bot           BotProbe
	BotRouter     *bot.Router
	Runtime       *runtime.Manager
	BotToken      string
	WebhookSecret string
	CorsOrigins   []string
	Swagger       bool
}

func NewServer(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), gin.Logger(), corsMiddleware(d.CorsOrigins), errorMiddleware())

	if d.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerAuthRoutes(r, d)
	registerWebhookRoutes(r, d)

	api := r.Group("/api")
	api.Use(auth.Middleware(d.Tokens))
	registerOrganizationRoutes(api, d)
	registerUserRoutes(api, d)
	registerGroupRoutes(api, d)
	registerWatchlistRoutes(api, d)
	registerDestinationRoutes(api, d)
	registerMessageRoutes(api, d)
	registerAccountRoutes(api, d)
	registerForwardedRoutes(api, d)
	registerStatsRoutes(api, d)
	registerBotControlRoutes(api, d)
	return r
}

func mustTenant(c *gin.Context) (auth.RequestContext, bool) {
	rc, ok := auth.FromGin(c)
	if !ok {
		fail(c, errs.NewUnauthenticated("missing auth context"))
		return auth.RequestContext{}, false
	}
	return rc, true
}

func parseObjectID(c *gin.Context, param string) (bson.ObjectID, bool) {
	id, err := bson.ObjectIDFromHex(c.Param(param))
	if err != nil {
		fail(c, errs.NewValidation("malformed id"))
		return bson.ObjectID{}, false
	}
	return id, true
}
