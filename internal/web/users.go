package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
)

type inviteUserRequest struct {
	TelegramID int64      `json:"telegram_id" binding:"required"`
	Username   string     `json:"username"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	Role       types.Role `json:"role" binding:"required"`
}

type updateRoleRequest struct {
	Role types.Role `json:"role" binding:"required"`
}

func registerUserRoutes(api *gin.RouterGroup, d Deps) {
	g := api.Group("/users")
	g.GET("", admin(), listUsers(d))
	g.POST("/invite", admin(), inviteUser(d))
	g.PUT("/:id/role", owner(), updateUserRole(d))
	g.DELETE("/:id", admin(), deactivateUser(d))
}

func listUsers(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		users, err := d.Repos.Users.ListByTenant(c.Request.Context(), rc.TenantID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func inviteUser(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		var req inviteUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, errs.NewValidation(err.Error()))
			return
		}
		if !req.Role.Valid() || req.Role == types.RoleOwner {
			fail(c, errs.NewValidation("role must be admin or viewer"))
			return
		}
		user, err := d.Repos.Users.Create(c.Request.Context(), &types.UserDoc{
			TenantID:   rc.TenantID,
			TelegramID: req.TelegramID,
			Username:   req.Username,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			Role:       req.Role,
			IsActive:   true,
		})
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func updateUserRole(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		var req updateRoleRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, errs.NewValidation(err.Error()))
			return
		}
		if !req.Role.Valid() {
			fail(c, errs.NewValidation("unknown role"))
			return
		}
		ctx := c.Request.Context()
		user, err := d.Repos.Users.Get(ctx, rc.TenantID, id)
		if err != nil {
			fail(c, err)
			return
		}
		if user.Role == types.RoleOwner && req.Role != types.RoleOwner {
			owners, err := d.Repos.Users.CountOwners(ctx, rc.TenantID)
			if err != nil {
				fail(c, err)
				return
			}
			if owners <= 1 {
				fail(c, errs.NewConflict("tenant must retain at least one owner"))
				return
			}
		}
		user.Role = req.Role
		updated, err := d.Repos.Users.Update(ctx, user.ID, user)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}

func deactivateUser(d Deps) gin.HandlerFunc {
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
		user, err := d.Repos.Users.Get(ctx, rc.TenantID, id)
		if err != nil {
			fail(c, err)
			return
		}
		if user.Role == types.RoleOwner {
			owners, err := d.Repos.Users.CountOwners(ctx, rc.TenantID)
			if err != nil {
				fail(c, err)
				return
			}
			if owners <= 1 {
				fail(c, errs.NewConflict("tenant must retain at least one owner"))
				return
			}
		}
		user.IsActive = false
		updated, err := d.Repos.Users.Update(ctx, user.ID, user)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, updated)
	}
}
