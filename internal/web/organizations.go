package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
)

type updateOrganizationRequest struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Plan        *types.Plan `json:"plan,omitempty"`
}

func registerOrganizationRoutes(api *gin.RouterGroup, d Deps) {
	g := api.Group("/organizations/current")
	g.GET("", viewer(), getCurrentOrganization(d))
	g.PUT("", admin(), putCurrentOrganization(d))
}

func getCurrentOrganization(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		org, err := d.Repos.Organizations.Get(c.Request.Context(), rc.TenantID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, org)
	}
}

func putCurrentOrganization(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		var req updateOrganizationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, errs.NewValidation(err.Error()))
			return
		}
		if req.Plan != nil && !req.Plan.Valid() {
			fail(c, errs.NewValidation("plan must be one of free, pro, enterprise"))
			return
		}
		ctx := c.Request.Context()
		org, err := d.Repos.Organizations.Get(ctx, rc.TenantID)
		if err != nil {
			fail(c, err)
			return
		}
		if req.Name != nil {
			org.Name = *req.Name
		}
		if req.Description != nil {
			org.Description = *req.Description
		}
		if req.Plan != nil {
			org.Plan = *req.Plan
		}
		updated, err := d.Repos.Organizations.Update(ctx, org.ID, org)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
