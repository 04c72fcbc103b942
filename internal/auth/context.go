package auth

import (
	"net/http"
	"strings"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// RequestContext is the resolved identity every tenant-scoped handler
// operates under.
type RequestContext struct {
	UserID   bson.ObjectID
	TenantID bson.ObjectID
	Role     types.Role
}

const ginContextKey = "tgwatch.auth"

// Middleware resolves the bearer token into a RequestContext and aborts
// with Unauthenticated if missing or invalid, mirroring the teacher's
// tokenAuthMiddleware gate shape generalized to a full auth context.
func Middleware(issuer *TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, errs.NewUnauthenticated("missing bearer token"))
			return
		}
		claims, err := issuer.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abort(c, err)
			return
		}
		userID, err := bson.ObjectIDFromHex(claims.UserID)
		if err != nil {
			abort(c, errs.NewUnauthenticated("malformed token subject"))
			return
		}
		tenantID, err := bson.ObjectIDFromHex(claims.TenantID)
		if err != nil {
			abort(c, errs.NewUnauthenticated("malformed token tenant"))
			return
		}
		c.Set(ginContextKey, RequestContext{UserID: userID, TenantID: tenantID, Role: claims.Role})
		c.Next()
	}
}

// RequireRole aborts with Forbidden if the resolved context's role does
// not meet min on the owner > admin > viewer ladder.
func RequireRole(min types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := FromGin(c)
		if !ok {
			abort(c, errs.NewUnauthenticated("missing auth context"))
			return
		}
		if !rc.Role.RoleAtLeast(min) {
			abort(c, errs.NewForbidden("insufficient role"))
			return
		}
		c.Next()
	}
}

// FromGin retrieves the RequestContext set by Middleware.
func FromGin(c *gin.Context) (RequestContext, bool) {
	v, ok := c.Get(ginContextKey)
	if !ok {
		return RequestContext{}, false
	}
	rc, ok := v.(RequestContext)
	return rc, ok
}

func abort(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errs.KindOf(err) {
	case errs.Unauthenticated:
		status = http.StatusUnauthorized
	case errs.Forbidden:
		status = http.StatusForbidden
	}
	c.AbortWithStatusJSON(status, gin.H{"msg": err.Error()})
}
