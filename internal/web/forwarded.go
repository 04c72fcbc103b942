package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/repo"
)

func registerForwardedRoutes(api *gin.RouterGroup, d Deps) {
	api.GET("/forwarded-messages", viewer(), listForwardedMessages(d))
}

func listForwardedMessages(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		var f repo.ForwardedListFilter
		if v := c.Query("username"); v != "" {
			f.Username = &v
		}
		if v := c.Query("destination_id"); v != "" {
			id, err := bson.ObjectIDFromHex(v)
			if err != nil {
				fail(c, errs.NewValidation("malformed destination_id"))
				return
			}
			f.DestinationID = &id
		}
		rows, err := d.Repos.ForwardedMessages.List(c.Request.Context(), rc.TenantID, f)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, rows)
	}
}
