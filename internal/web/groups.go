package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
)

type createGroupRequest struct {
	GroupID     string           `json:"group_id" binding:"required"`
	GroupName   string           `json:"group_name" binding:"required"`
	GroupType   types.GroupType  `json:"group_type" binding:"required"`
	InviteLink  string           `json:"invite_link"`
	Description string           `json:"description"`
}

type updateGroupRequest struct {
	GroupName   *string `json:"group_name,omitempty"`
	InviteLink  *string `json:"invite_link,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func registerGroupRoutes(api *gin.RouterGroup, d Deps) {
	g := api.Group("/groups")
	g.GET("", viewer(), listGroups(d))
	g.POST("", admin(), createGroup(d))
	g.GET("/:id", viewer(), getGroup(d))
	g.PUT("/:id", admin(), updateGroup(d))
	g.DELETE("/:id", admin(), deleteGroup(d))
}

func listGroups(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		includeInactive := c.Query("include_inactive") == "true"
		groups, err := d.Repos.Groups.List(c.Request.Context(), rc.TenantID, includeInactive)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, groups)
	}
}

func createGroup(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		var req createGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, errs.NewValidation(err.Error()))
			return
		}
		group, err := d.Repos.Groups.Create(c.Request.Context(), &types.GroupDoc{
			TenantID:    rc.TenantID,
			GroupID:     req.GroupID,
			GroupName:   req.GroupName,
			GroupType:   req.GroupType,
			InviteLink:  req.InviteLink,
			Description: req.Description,
			IsActive:    true,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, group)
	}
}

func getGroup(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		group, err := d.Repos.Groups.Get(c.Request.Context(), rc.TenantID, id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, group)
	}
}

func updateGroup(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		var req updateGroupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, errs.NewValidation(err.Error()))
			return
		}
		ctx := c.Request.Context()
		group, err := d.Repos.Groups.Get(ctx, rc.TenantID, id)
		if err != nil {
			fail(c, err)
			return
		}
		if req.GroupName != nil {
			group.GroupName = *req.GroupName
		}
		if req.InviteLink != nil {
			group.InviteLink = *req.InviteLink
		}
		if req.Description != nil {
			group.Description = *req.Description
		}
		if req.IsActive != nil {
			group.IsActive = *req.IsActive
		}
		updated, err := d.Repos.Groups.Update(ctx, group.ID, group)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deleteGroup(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		if err := d.Repos.Groups.SoftDelete(c.Request.Context(), rc.TenantID, id); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "deactivated"})
	}
}
