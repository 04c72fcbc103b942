package types

import (
	"time"

	"github.com/chenmingyong0423/go-mongox/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type ForwardOutcome string

const (
	ForwardDelivered ForwardOutcome = "delivered"
	ForwardFailed    ForwardOutcome = "failed"
)

const (
	ForwardedMessageDoc__TenantIDField      = "TenantID"
	ForwardedMessageDoc__DestinationIDField = "DestinationID"
)

// ForwardedMessageDoc is the append-only delivery ledger: one row per
// delivery attempt's terminal outcome.
type ForwardedMessageDoc struct {
	mongox.Model     `bson:",inline"`
	TenantID         bson.ObjectID  `bson:"TenantID" json:"tenant_id"`
	SourceMessageRef bson.ObjectID  `bson:"SourceMessageRef" json:"source_message_ref"`
	Username         string         `bson:"Username" json:"username"`
	GroupName        string         `bson:"GroupName" json:"group_name"`
	DestinationID    bson.ObjectID  `bson:"DestinationID" json:"destination_id"`
	ForwardedAt      time.Time      `bson:"ForwardedAt" json:"forwarded_at"`
	Outcome          ForwardOutcome `bson:"Outcome" json:"outcome"`
	FailureReason    string         `bson:"FailureReason,omitempty" json:"failure_reason,omitempty"`
}

func (f ForwardedMessageDoc) String() string { return f.ID.String() }
