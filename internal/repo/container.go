package repo

import (
	mngo "github.com/tgwatch/tgwatch/internal/db/mongo"
)

// Container bundles every tenant-entity repository, handed to the web,
// bot, pipeline, and forwarding layers as a single dependency.
type Container struct {
	Organizations      *OrganizationRepo
	Users              *UserRepo
	Groups             *GroupRepo
	WatchUsers         *WatchUserRepo
	Destinations       *DestinationRepo
	Accounts           *AccountRepo
	MessageLogs        *MessageLogRepo
	ForwardedMessages  *ForwardedMessageRepo
	BotCommands        *BotCommandRepo
}

func NewContainer(m mngo.IMongoContainer) *Container {
	groups := NewGroupRepo(m.GetGroupCollection())
	destinations := NewDestinationRepo(m.GetDestinationCollection())
	return &Container{
		Organizations:     NewOrganizationRepo(m.GetOrganizationCollection()),
		Users:             NewUserRepo(m.GetUserCollection()),
		Groups:            groups,
		WatchUsers:        NewWatchUserRepo(m.GetWatchUserCollection(), groups, destinations),
		Destinations:      destinations,
		Accounts:          NewAccountRepo(m.GetAccountCollection(), groups),
		MessageLogs:       NewMessageLogRepo(m.GetMessageLogCollection()),
		ForwardedMessages: NewForwardedMessageRepo(m.GetForwardedMessageCollection()),
		BotCommands:       NewBotCommandRepo(m.GetBotCommandCollection()),
	}
}
