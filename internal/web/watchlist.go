package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
)

type createWatchUserRequest struct {
	Username                 string          `json:"username" binding:"required"`
	UserID                   int64           `json:"user_id"`
	FullName                 string          `json:"full_name"`
	GroupIDs                 []bson.ObjectID `json:"group_ids"`
	Keywords                 []string        `json:"keywords"`
	ForwardingDestinationIDs []bson.ObjectID `json:"forwarding_destination_ids"`
}

type updateWatchUserRequest struct {
	FullName                 *string          `json:"full_name,omitempty"`
	GroupIDs                 *[]bson.ObjectID `json:"group_ids,omitempty"`
	Keywords                 *[]string        `json:"keywords,omitempty"`
	ForwardingDestinationIDs *[]bson.ObjectID `json:"forwarding_destination_ids,omitempty"`
	IsActive                 *bool            `json:"is_active,omitempty"`
}

func registerWatchlistRoutes(api *gin.RouterGroup, d Deps) {
	g := api.Group("/watchlist")
	g.GET("", viewer(), listWatchUsers(d))
	g.POST("", admin(), createWatchUser(d))
	g.GET("/:id", viewer(), getWatchUser(d))
	g.PUT("/:id", admin(), updateWatchUser(d))
	g.DELETE("/:id", admin(), deleteWatchUser(d))
}

func listWatchUsers(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		includeInactive := c.Query("include_inactive") == "true"
		users, err := d.Repos.WatchUsers.List(c.Request.Context(), rc.TenantID, includeInactive)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func createWatchUser(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		var req createWatchUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, errs.NewValidation(err.Error()))
			return
		}
		user, err := d.Repos.WatchUsers.Create(c.Request.Context(), &types.WatchUserDoc{
			TenantID:                 rc.TenantID,
			Username:                 req.Username,
			UserID:                   req.UserID,
			FullName:                 req.FullName,
			GroupIDs:                 req.GroupIDs,
			Keywords:                 req.Keywords,
			ForwardingDestinationIDs: req.ForwardingDestinationIDs,
			IsActive:                 true,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func getWatchUser(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		user, err := d.Repos.WatchUsers.Get(c.Request.Context(), rc.TenantID, id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func updateWatchUser(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		var req updateWatchUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, errs.NewValidation(err.Error()))
			return
		}
		ctx := c.Request.Context()
		user, err := d.Repos.WatchUsers.Get(ctx, rc.TenantID, id)
		if err != nil {
			fail(c, err)
			return
		}
		if req.FullName != nil {
			user.FullName = *req.FullName
		}
		if req.GroupIDs != nil {
			user.GroupIDs = *req.GroupIDs
		}
		if req.Keywords != nil {
			user.Keywords = *req.Keywords
		}
		if req.ForwardingDestinationIDs != nil {
			user.ForwardingDestinationIDs = *req.ForwardingDestinationIDs
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		updated, err := d.Repos.WatchUsers.Update(ctx, user.ID, user)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deleteWatchUser(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		if err := d.Repos.WatchUsers.SoftDelete(c.Request.Context(), rc.TenantID, id); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"msg": "deactivated"})
	}
}
