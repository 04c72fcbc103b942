package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/auth"
	"github.com/tgwatch/tgwatch/internal/types"
)

func newGinContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestMiddlewareRejectsMissingBearerHeader(t *testing.T) {
	g := NewWithT(t)
	c, rec := newGinContext(t)
	issuer := auth.NewTokenIssuer("secret", time.Hour)

	auth.Middleware(issuer)(c)

	g.Expect(c.IsAborted()).To(BeTrue())
	g.Expect(rec.Code).To(Equal(http.StatusUnauthorized))
}

func TestMiddlewareSetsRequestContextOnValidToken(t *testing.T) {
	g := NewWithT(t)
	issuer := auth.NewTokenIssuer("secret", time.Hour)
	userID, tenantID := bson.NewObjectID(), bson.NewObjectID()
	token, err := issuer.Issue(userID, tenantID, types.RoleAdmin)
	g.Expect(err).NotTo(HaveOccurred())

	c, _ := newGinContext(t)
	c.Request.Header.Set("Authorization", "Bearer "+token)

	auth.Middleware(issuer)(c)

	g.Expect(c.IsAborted()).To(BeFalse())
	rc, ok := auth.FromGin(c)
	g.Expect(ok).To(BeTrue())
	g.Expect(rc.UserID).To(Equal(userID))
	g.Expect(rc.TenantID).To(Equal(tenantID))
	g.Expect(rc.Role).To(Equal(types.RoleAdmin))
}

func TestRequireRoleAllowsSufficientRole(t *testing.T) {
	g := NewWithT(t)
	c, _ := newGinContext(t)
	c.Set("tgwatch.auth", auth.RequestContext{Role: types.RoleOwner})

	auth.RequireRole(types.RoleAdmin)(c)

	g.Expect(c.IsAborted()).To(BeFalse())
}

func TestRequireRoleForbidsInsufficientRole(t *testing.T) {
	g := NewWithT(t)
	c, rec := newGinContext(t)
	c.Set("tgwatch.auth", auth.RequestContext{Role: types.RoleViewer})

	auth.RequireRole(types.RoleOwner)(c)

	g.Expect(c.IsAborted()).To(BeTrue())
	g.Expect(rec.Code).To(Equal(http.StatusForbidden))
}

func TestRequireRoleRejectsMissingContext(t *testing.T) {
	g := NewWithT(t)
	c, rec := newGinContext(t)

	auth.RequireRole(types.RoleViewer)(c)

	g.Expect(c.IsAborted()).To(BeTrue())
	g.Expect(rec.Code).To(Equal(http.StatusUnauthorized))
}
