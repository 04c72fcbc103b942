package types

import (
	"time"

	"github.com/chenmingyong0423/go-mongox/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleViewer:
		return true
	}
	return false
}

// RoleAtLeast reports whether r carries at least the privileges of min,
// on the owner > admin > viewer ladder.
func (r Role) RoleAtLeast(min Role) bool {
	rank := map[Role]int{RoleViewer: 0, RoleAdmin: 1, RoleOwner: 2}
	return rank[r] >= rank[min]
}

const (
	UserDoc__TenantIDField   = "TenantID"
	UserDoc__TelegramIDField = "TelegramID"
)

// UserDoc has no password field: Telegram login is the sole identity path.
type UserDoc struct {
	mongox.Model `bson:",inline"`
	TenantID     bson.ObjectID `bson:"TenantID" json:"tenant_id"`
	TelegramID   int64         `bson:"TelegramID" json:"telegram_id"`
	Username     string        `bson:"Username" json:"username"`
	FirstName    string        `bson:"FirstName" json:"first_name"`
	LastName     string        `bson:"LastName" json:"last_name"`
	PhotoURL     string        `bson:"PhotoURL" json:"photo_url"`
	Role         Role          `bson:"Role" json:"role"`
	IsActive     bool          `bson:"IsActive" json:"is_active"`
	LastLogin    *time.Time    `bson:"LastLogin,omitempty" json:"last_login,omitempty"`
}

func (u UserDoc) String() string { return u.ID.String() }
