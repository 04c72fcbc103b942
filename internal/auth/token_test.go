package auth_test

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/auth"
	"github.com/tgwatch/tgwatch/internal/types"
)

func TestIssueThenVerifyRoundTripsClaims(t *testing.T) {
	g := NewWithT(t)
	issuer := auth.NewTokenIssuer("super-secret", time.Hour)
	userID, tenantID := bson.NewObjectID(), bson.NewObjectID()

	token, err := issuer.Issue(userID, tenantID, types.RoleAdmin)
	g.Expect(err).NotTo(HaveOccurred())

	claims, err := issuer.Verify(token)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(claims.UserID).To(Equal(userID.Hex()))
	g.Expect(claims.TenantID).To(Equal(tenantID.Hex()))
	g.Expect(claims.Role).To(Equal(types.RoleAdmin))
}

func TestVerifyRejectsTokenSignedWithADifferentKey(t *testing.T) {
	g := NewWithT(t)
	token, err := auth.NewTokenIssuer("key-one", time.Hour).Issue(bson.NewObjectID(), bson.NewObjectID(), types.RoleViewer)
	g.Expect(err).NotTo(HaveOccurred())

	_, err = auth.NewTokenIssuer("key-two", time.Hour).Verify(token)
	g.Expect(err).To(HaveOccurred())
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	g := NewWithT(t)
	issuer := auth.NewTokenIssuer("super-secret", -time.Minute)
	token, err := issuer.Issue(bson.NewObjectID(), bson.NewObjectID(), types.RoleViewer)
	g.Expect(err).NotTo(HaveOccurred())

	_, err = issuer.Verify(token)
	g.Expect(err).To(HaveOccurred())
}
