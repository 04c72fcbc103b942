package types

import (
	"time"

	"github.com/chenmingyong0423/go-mongox/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type AccountStatus string

const (
	AccountPending  AccountStatus = "pending"
	AccountActive   AccountStatus = "active"
	AccountInactive AccountStatus = "inactive"
	AccountError    AccountStatus = "error"
)

const (
	AccountDoc__TenantIDField = "TenantID"
	AccountDoc__StatusField   = "Status"
)

type AccountDoc struct {
	mongox.Model          `bson:",inline"`
	TenantID              bson.ObjectID   `bson:"TenantID" json:"tenant_id"`
	Name                  string          `bson:"Name" json:"name"`
	SessionArtifactPath   string          `bson:"SessionArtifactPath" json:"session_artifact_path"`
	MetadataArtifactPath  string          `bson:"MetadataArtifactPath" json:"metadata_artifact_path"`
	PhoneNumber           string          `bson:"PhoneNumber,omitempty" json:"phone_number,omitempty"`
	Username              string          `bson:"Username,omitempty" json:"username,omitempty"`
	FirstName             string          `bson:"FirstName,omitempty" json:"first_name,omitempty"`
	LastName              string          `bson:"LastName,omitempty" json:"last_name,omitempty"`
	Status                AccountStatus   `bson:"Status" json:"status"`
	LastError             string          `bson:"LastError,omitempty" json:"last_error,omitempty"`
	AssignedGroupIDs      []bson.ObjectID `bson:"AssignedGroupIDs" json:"assigned_group_ids"`
	LastActivity          *time.Time      `bson:"LastActivity,omitempty" json:"last_activity,omitempty"`
}

func (a AccountDoc) String() string { return a.ID.String() }
