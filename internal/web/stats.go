package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func registerStatsRoutes(api *gin.RouterGroup, d Deps) {
	api.GET("/stats", viewer(), getStats(d))
}

// @Summary	Tenant usage and delivery stats
// @Router		/api/stats [get]
func getStats(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		stats, err := d.Analytics.Compute(c.Request.Context(), rc.TenantID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
