package types

import (
	"github.com/chenmingyong0423/go-mongox/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	WatchUserDoc__TenantIDField = "TenantID"
	WatchUserDoc__UsernameField = "Username"
	WatchUserDoc__IsActiveField = "IsActive"
)

// WatchUserDoc.Username is normalized lowercase and unique within a
// tenant. Empty GroupIDs means all tenant groups; empty Keywords means
// match all.
type WatchUserDoc struct {
	mongox.Model            `bson:",inline"`
	TenantID                bson.ObjectID   `bson:"TenantID" json:"tenant_id"`
	Username                string          `bson:"Username" json:"username"`
	UserID                  int64           `bson:"UserID,omitempty" json:"user_id,omitempty"`
	FullName                string          `bson:"FullName,omitempty" json:"full_name,omitempty"`
	GroupIDs                []bson.ObjectID `bson:"GroupIDs" json:"group_ids"`
	Keywords                []string        `bson:"Keywords" json:"keywords"`
	ForwardingDestinationIDs []bson.ObjectID `bson:"ForwardingDestinationIDs" json:"forwarding_destination_ids"`
	IsActive                bool            `bson:"IsActive" json:"is_active"`
}

func (w WatchUserDoc) String() string { return w.ID.String() }
