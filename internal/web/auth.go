package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	authpkg "github.com/tgwatch/tgwatch/internal/auth"
	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
)

type registerRequest struct {
	authpkg.LoginPayload
	OrganizationName string `json:"organization_name" binding:"required"`
}

func registerAuthRoutes(r *gin.Engine, d Deps) {
	g := r.Group("/api/auth")
	g.POST("/register", registerHandler(d))
	g.POST("/telegram", telegramLoginHandler(d))
	g.GET("/me", authpkg.Middleware(d.Tokens), meHandler(d))
	g.POST("/login", deprecatedLoginHandler())
}

func deprecatedLoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		fail(c, errs.NewDeprecated("password login is no longer supported, use /auth/telegram"))
	}
}

func registerHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, errs.NewValidation(err.Error()))
			return
		}
		if err := authpkg.VerifyLogin(req.LoginPayload, d.BotToken); err != nil {
			fail(c, err)
			return
		}
		ctx := c.Request.Context()
		if existing, _ := d.Repos.Users.GetByTelegramID(ctx, req.ID); existing != nil {
			fail(c, errs.NewConflict("telegram account already registered"))
			return
		}
		org, err := d.Repos.Organizations.Create(ctx, &types.OrganizationDoc{
			Name: req.OrganizationName,
			Plan: types.PlanFree,
		})
		if err != nil {
			fail(c, err)
			return
		}
		now := time.Now().UTC()
		user, err := d.Repos.Users.Create(ctx, &types.UserDoc{
			TenantID:   org.ID,
			TelegramID: req.ID,
			Username:   req.Username,
			FirstName:  req.FirstName,
			LastName:   req.LastName,
			PhotoURL:   req.PhotoURL,
			Role:       types.RoleOwner,
			IsActive:   true,
			LastLogin:  &now,
		})
		if err != nil {
			fail(c, err)
			return
		}
		token, err := d.Tokens.Issue(user.ID, org.ID, user.Role)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": user, "organization": org})
	}
}

func telegramLoginHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload authpkg.LoginPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			fail(c, errs.NewValidation(err.Error()))
			return
		}
		if err := authpkg.VerifyLogin(payload, d.BotToken); err != nil {
			fail(c, err)
			return
		}
		ctx := c.Request.Context()
		user, err := d.Repos.Users.GetByTelegramID(ctx, payload.ID)
		if err != nil {
			fail(c, err)
			return
		}
		if !user.IsActive {
			fail(c, errs.NewForbidden("user deactivated"))
			return
		}
		now := time.Now().UTC()
		user.LastLogin = &now
		if _, err := d.Repos.Users.Update(ctx, user.ID, user); err != nil {
			fail(c, err)
			return
		}
		token, err := d.Tokens.Issue(user.ID, user.TenantID, user.Role)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
	}
}

func meHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		user, err := d.Repos.Users.Get(c.Request.Context(), rc.TenantID, rc.UserID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}
