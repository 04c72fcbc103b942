package auth

import (
	"fmt"
	"time"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/types"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Claims mirrors the {user_id, tenant_id, role, exp} bearer token shape,
// grounded on the jwtutil.UserClaims pattern from the retrieved pack.
type Claims struct {
	UserID   string     `json:"user_id"`
	TenantID string     `json:"tenant_id"`
	Role     types.Role `json:"role"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	signingKey []byte
	lifetime   time.Duration
}

func NewTokenIssuer(signingKey string, lifetime time.Duration) *TokenIssuer {
	return &TokenIssuer{signingKey: []byte(signingKey), lifetime: lifetime}
}

func (i *TokenIssuer) Issue(userID, tenantID bson.ObjectID, role types.Role) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID.Hex(),
		TenantID: tenantID.Hex(),
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.lifetime)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", errs.WrapInternal(err, "could not sign token")
	}
	return signed, nil
}

func (i *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.signingKey, nil
	})
	if err != nil {
		return nil, errs.NewUnauthenticated("invalid or expired token")
	}
	return claims, nil
}
