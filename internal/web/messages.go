package web

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/repo"
	"github.com/tgwatch/tgwatch/internal/types"
)

func registerMessageRoutes(api *gin.RouterGroup, d Deps) {
	g := api.Group("/messages")
	g.GET("", viewer(), listMessages(d))
	g.GET("/search", viewer(), searchMessages(d))
}

func listMessages(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		f := repo.ListFilter{Limit: 50}
		if v := c.Query("group_id"); v != "" {
			id, err := bson.ObjectIDFromHex(v)
			if err != nil {
				fail(c, errs.NewValidation("malformed group_id"))
				return
			}
			f.GroupID = &id
		}
		if v := c.Query("message_type"); v != "" {
			mt := types.MessageType(v)
			f.MessageType = &mt
		}
		if v := c.Query("limit"); v != "" {
			limit, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				fail(c, errs.NewValidation("malformed limit"))
				return
			}
			f.Limit = limit
		}
		if v := c.Query("skip"); v != "" {
			skip, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				fail(c, errs.NewValidation("malformed skip"))
				return
			}
			f.Skip = skip
		}
		messages, err := d.Repos.MessageLogs.List(c.Request.Context(), rc.TenantID, f)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}

func searchMessages(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		q := c.Query("q")
		if q == "" {
			fail(c, errs.NewValidation("q is required"))
			return
		}
		messages, err := d.Repos.MessageLogs.Search(c.Request.Context(), rc.TenantID, q)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}
