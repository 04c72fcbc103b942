package types

import (
	"github.com/chenmingyong0423/go-mongox/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type GroupType string

const (
	GroupTypeGroup      GroupType = "group"
	GroupTypeSupergroup GroupType = "supergroup"
	GroupTypeChannel    GroupType = "channel"
)

const (
	GroupDoc__TenantIDField = "TenantID"
	GroupDoc__GroupIDField  = "GroupID"
	GroupDoc__IsActiveField = "IsActive"
)

// GroupDoc is soft-deleted via IsActive=false; never hard-purged.
type GroupDoc struct {
	mongox.Model `bson:",inline"`
	TenantID     bson.ObjectID `bson:"TenantID" json:"tenant_id"`
	GroupID      string        `bson:"GroupID" json:"group_id"`
	GroupName    string        `bson:"GroupName" json:"group_name"`
	GroupType    GroupType     `bson:"GroupType" json:"group_type"`
	InviteLink   string        `bson:"InviteLink,omitempty" json:"invite_link,omitempty"`
	Description  string        `bson:"Description,omitempty" json:"description,omitempty"`
	IsActive     bool          `bson:"IsActive" json:"is_active"`
}

func (g GroupDoc) String() string { return g.ID.String() }
