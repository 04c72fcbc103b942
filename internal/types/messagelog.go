package types

import (
	"time"

	"github.com/chenmingyong0423/go-mongox/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypePhoto    MessageType = "photo"
	MessageTypeVideo    MessageType = "video"
	MessageTypeDocument MessageType = "document"
	MessageTypeAudio    MessageType = "audio"
	MessageTypeVoice    MessageType = "voice"
	MessageTypeSticker  MessageType = "sticker"
	MessageTypeOther    MessageType = "other"
)

type IngestedVia string

const (
	IngestedViaSession IngestedVia = "session"
	IngestedViaWebhook IngestedVia = "webhook"
)

const (
	MessageLogDoc__TenantIDField  = "TenantID"
	MessageLogDoc__GroupIDField   = "GroupID"
	MessageLogDoc__MessageIDField = "MessageID"
)

// MessageLogDoc is the append-only archive record. Unique on
// (TenantID, GroupID, MessageID).
type MessageLogDoc struct {
	mongox.Model    `bson:",inline"`
	TenantID        bson.ObjectID  `bson:"TenantID" json:"tenant_id"`
	GroupID         bson.ObjectID  `bson:"GroupID" json:"group_id"`
	GroupName       string         `bson:"GroupName" json:"group_name"`
	UserID          int64          `bson:"UserID,omitempty" json:"user_id,omitempty"`
	Username        string         `bson:"Username" json:"username"`
	MessageID       int64          `bson:"MessageID" json:"message_id"`
	MessageText     string         `bson:"MessageText,omitempty" json:"message_text,omitempty"`
	MessageType     MessageType    `bson:"MessageType" json:"message_type"`
	MediaInfo       map[string]any `bson:"MediaInfo,omitempty" json:"media_info,omitempty"`
	MatchedKeywords []string       `bson:"MatchedKeywords" json:"matched_keywords"`
	Timestamp       time.Time      `bson:"Timestamp" json:"timestamp"`
	IngestedVia     IngestedVia    `bson:"IngestedVia" json:"ingested_via"`
}

func (m MessageLogDoc) String() string { return m.ID.String() }
