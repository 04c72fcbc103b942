package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
)

type createDestinationRequest struct {
	DestinationID   string                `json:"destination_id" binding:"required"`
	DestinationName string                `json:"destination_name" binding:"required"`
	DestinationType types.DestinationType `json:"destination_type" binding:"required"`
	Description     string                `json:"description"`
}

type updateDestinationRequest struct {
	DestinationName *string `json:"destination_name,omitempty"`
	Description     *string `json:"description,omitempty"`
	IsActive        *bool   `json:"is_active,omitempty"`
}

func registerDestinationRoutes(api *gin.RouterGroup, d Deps) {
	g := api.Group("/forwarding-destinations")
	g.GET("", viewer(), listDestinations(d))
	g.POST("", admin(), createDestination(d))
	g.GET("/:id", viewer(), getDestination(d))
	g.PUT("/:id", admin(), updateDestination(d))
	g.DELETE("/:id", admin(), deleteDestination(d))
	g.POST("/:id/test", admin(), testDestination(d))
}

func listDestinations(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		includeInactive := c.Query("include_inactive") == "true"
		dests, err := d.Repos.Destinations.List(c.Request.Context(), rc.TenantID, includeInactive)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dests)
	}
}

func createDestination(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		var req createDestinationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, errs.NewValidation(err.Error()))
			return
		}
		dest, err := d.Repos.Destinations.Create(c.Request.Context(), &types.DestinationDoc{
			TenantID:        rc.TenantID,
			DestinationID:   req.DestinationID,
			DestinationName: req.DestinationName,
			DestinationType: req.DestinationType,
			Description:     req.Description,
			IsActive:        true,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dest)
	}
}

func getDestination(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		dest, err := d.Repos.Destinations.Get(c.Request.Context(), rc.TenantID, id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, dest)
	}
}

func updateDestination(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		var req updateDestinationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, errs.NewValidation(err.Error()))
			return
		}
		ctx := c.Request.Context()
		dest, err := d.Repos.Destinations.Get(ctx, rc.TenantID, id)
		if err != nil {
			fail(c, err)
			return
		}
		if req.DestinationName != nil {
			dest.DestinationName = *req.DestinationName
		}
		if req.Description != nil {
			dest.Description = *req.Description
		}
		if req.IsActive != nil {
			dest.IsActive = *req.IsActive
		}
		updated, err := d.Repos.Destinations.Update(ctx, dest.ID, dest)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deleteDestination(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		if err := d.Repos.Destinations.SoftDelete(c.Request.Context(), rc.TenantID, id); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "deactivated"})
	}
}

// testDestination sends a probe message through the Bot API to confirm the
// destination is actually reachable before the forwarding engine relies on
// it.
func testDestination(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		dest, err := d.Repos.Destinations.Get(ctx, rc.TenantID, id)
		if err != nil {
			fail(c, err)
			return
		}
		msg := fmt.Sprintf("tgwatch test probe for destination %s", dest.DestinationName)
		if err := d.Bot.SendMessage(ctx, dest.DestinationID, msg); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "probe sent"})
	}
}
