package types

import (
	"time"

	"github.com/chenmingyong0423/go-mongox/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type DestinationType string

const (
	DestinationTypeChannel DestinationType = "channel"
	DestinationTypeGroup   DestinationType = "group"
	DestinationTypeUser    DestinationType = "user"
)

const (
	DestinationDoc__TenantIDField      = "TenantID"
	DestinationDoc__DestinationIDField = "DestinationID"
	DestinationDoc__IsActiveField      = "IsActive"
)

type DestinationDoc struct {
	mongox.Model    `bson:",inline"`
	TenantID        bson.ObjectID    `bson:"TenantID" json:"tenant_id"`
	DestinationID   string           `bson:"DestinationID" json:"destination_id"`
	DestinationName string           `bson:"DestinationName" json:"destination_name"`
	DestinationType DestinationType  `bson:"DestinationType" json:"destination_type"`
	Description     string           `bson:"Description,omitempty" json:"description,omitempty"`
	MessageCount    int64            `bson:"MessageCount" json:"message_count"`
	LastForwarded   *time.Time       `bson:"LastForwarded,omitempty" json:"last_forwarded,omitempty"`
	IsActive        bool             `bson:"IsActive" json:"is_active"`
}

func (d DestinationDoc) String() string { return d.ID.String() }
