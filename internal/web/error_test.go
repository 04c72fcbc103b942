package web

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"github.com/tgwatch/tgwatch/internal/errs"
)

func newTestEngine(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(errorMiddleware())
	r.GET("/t", handler)
	return r
}

func TestFailMapsKnownKindToItsStatusCode(t *testing.T) {
	g := NewWithT(t)
	r := newTestEngine(func(c *gin.Context) {
		fail(c, errs.NewNotFound("missing group"))
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/t", nil))

	g.Expect(rec.Code).To(Equal(http.StatusNotFound))
	g.Expect(rec.Body.String()).To(ContainSubstring("missing group"))
}

func TestFailMapsUnknownErrorToInternalServerError(t *testing.T) {
	g := NewWithT(t)
	r := newTestEngine(func(c *gin.Context) {
		fail(c, errors.New("boom"))
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/t", nil))

	g.Expect(rec.Code).To(Equal(http.StatusInternalServerError))
}

func TestErrorMiddlewarePassesThroughWhenHandlerSucceeds(t *testing.T) {
	g := NewWithT(t)
	r := newTestEngine(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/t", nil))

	g.Expect(rec.Code).To(Equal(http.StatusOK))
}
