package types

import (
	"time"

	"github.com/chenmingyong0423/go-mongox/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	BotCommandDoc__TenantIDField = "TenantID"
)

// BotCommandDoc is an audit row, recorded only for commands and callbacks
// from Telegram users linked to a tenant; unrecognized users get no row.
type BotCommandDoc struct {
	mongox.Model `bson:",inline"`
	TenantID     bson.ObjectID `bson:"TenantID,omitempty" json:"tenant_id,omitempty"`
	TelegramUserID int64       `bson:"TelegramUserID" json:"telegram_user_id"`
	Command      string        `bson:"Command" json:"command"`
	Args         string        `bson:"Args,omitempty" json:"args,omitempty"`
	Timestamp    time.Time     `bson:"Timestamp" json:"timestamp"`
}

func (b BotCommandDoc) String() string { return b.ID.String() }
