package repo

import (
	mngo "github.com/tgwatch/tgwatch/internal/db/mongo"
	"github.com/tgwatch/tgwatch/internal/types"
)

type BotCommandRepo struct{ *Repo[types.BotCommandDoc] }

func NewBotCommandRepo(c mngo.ICollection[types.BotCommandDoc]) *BotCommandRepo {
	return &BotCommandRepo{New(c, NopHooks[types.BotCommandDoc]{}, "bot_command")}
}
