package web

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tgwatch/tgwatch/internal/auth"
	"github.com/tgwatch/tgwatch/internal/types"
)

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowOrigins = allowedOrigins
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "DELETE"}
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

// viewer and admin are the role gates the routing table reuses across
// every tenant-scoped resource; owner gates the owner-only transitions.
func viewer() gin.HandlerFunc { return auth.RequireRole(types.RoleViewer) }
func admin() gin.HandlerFunc  { return auth.RequireRole(types.RoleAdmin) }
func owner() gin.HandlerFunc  { return auth.RequireRole(types.RoleOwner) }
