package web

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/artifact"
	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
)

func registerAccountRoutes(api *gin.RouterGroup, d Deps) {
	g := api.Group("/accounts")
	g.GET("", viewer(), listAccounts(d))
	g.POST("/upload", admin(), uploadAccount(d))
	g.POST("/:id/activate", admin(), activateAccount(d))
	g.POST("/:id/deactivate", admin(), deactivateAccount(d))
	g.DELETE("/:id", admin(), deleteAccount(d))
}

func listAccounts(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		accounts, err := d.Repos.Accounts.List(c.Request.Context(), rc.TenantID)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, accounts)
	}
}

// uploadAccount accepts a multipart form with exactly one `.session` and
// one `.json` part, validates both, persists them through the artifact
// store, and registers the account pending connection.
func uploadAccount(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		sessionBytes, sessionName, err := readMultipartFile(c, "session")
		if err != nil {
			fail(c, err)
			return
		}
		if err := artifact.ValidateExtension(sessionName, ".session"); err != nil {
			fail(c, err)
			return
		}
		jsonBytes, jsonName, err := readMultipartFile(c, "json")
		if err != nil {
			fail(c, err)
			return
		}
		if err := artifact.ValidateExtension(jsonName, ".json"); err != nil {
			fail(c, err)
			return
		}
		meta, err := artifact.ParseMetadata(jsonBytes)
		if err != nil {
			fail(c, err)
			return
		}
		ctx := c.Request.Context()
		paths, err := d.Artifacts.Save(ctx, rc.TenantID, sessionBytes, jsonBytes)
		if err != nil {
			fail(c, err)
			return
		}
		name := c.PostForm("name")
		if name == "" {
			name = meta.Username
		}
		account, err := d.Repos.Accounts.Create(ctx, &types.AccountDoc{
			TenantID:             rc.TenantID,
			Name:                 name,
			SessionArtifactPath:  paths.SessionPath,
			MetadataArtifactPath: paths.MetadataPath,
			PhoneNumber:          meta.PhoneNumber,
			Username:             meta.Username,
			FirstName:            meta.FirstName,
			LastName:             meta.LastName,
			Status:               types.AccountPending,
		})
		if err != nil {
			_ = d.Artifacts.Delete(ctx, paths)
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

func readMultipartFile(c *gin.Context, field string) ([]byte, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, "", errs.NewValidation(field + " part is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", errs.WrapInternal(err, "opening uploaded file")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, "", errs.WrapInternal(err, "reading uploaded file")
	}
	return data, fh.Filename, nil
}

// activateAccount starts the account's session receiver through the
// runtime manager; the receiver's own supervisor persists AccountActive
// once it connects, or AccountError with last_error if it never does. A
// start failure raised synchronously here is persisted the same way before
// it is reported to the caller.
func activateAccount(d Deps) gin.HandlerFunc {
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
		if err := d.Runtime.StartAccount(ctx, rc.TenantID, id); err != nil {
			fail(c, err)
			return
		}
		account, err := d.Repos.Accounts.Get(ctx, rc.TenantID, id)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

// deactivateAccount stops the account's session receiver and records the
// operator's intent immediately; unlike activation there is no asynchronous
// outcome to race against.
func deactivateAccount(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := mustTenant(c)
		if !ok {
			return
		}
		id, ok := parseObjectID(c, "id")
		if !ok {
			return
		}
		d.Runtime.StopAccount(rc.TenantID, id)
		account, err := d.Repos.Accounts.SetStatus(c.Request.Context(), rc.TenantID, id, types.AccountInactive, "")
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, account)
	}
}

func deleteAccount(d Deps) gin.HandlerFunc {
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
		account, err := d.Repos.Accounts.Get(ctx, rc.TenantID, id)
		if err != nil {
			fail(c, err)
			return
		}
		filter := bson.D{
			{Key: "_id", Value: id},
			{Key: types.AccountDoc__TenantIDField, Value: rc.TenantID},
		}
		if _, err := d.Repos.Accounts.DeleteOne(ctx, filter); err != nil {
			fail(c, err)
			return
		}
		_ = d.Artifacts.Delete(ctx, artifact.Paths{
			SessionPath:  account.SessionArtifactPath,
			MetadataPath: account.MetadataArtifactPath,
		})
		c.JSON(http.StatusOK, gin.H{"msg": "deleted"})
	}
}
