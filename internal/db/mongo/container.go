package mongo

import (
	"context"
	"fmt"

	"github.com/chenmingyong0423/go-mongox/v2"
	"github.com/sirupsen/logrus"
	"github.com/tgwatch/tgwatch/internal/types"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// IMongoContainer exposes the MongoDB client, database, and every tenant
// collection used by the repository layer.
type IMongoContainer interface {
	GetMongoClient() IMongoClient
	GetMongoDb() IDatabase
	GetOrganizationCollection() ICollection[types.OrganizationDoc]
	GetUserCollection() ICollection[types.UserDoc]
	GetGroupCollection() ICollection[types.GroupDoc]
	GetWatchUserCollection() ICollection[types.WatchUserDoc]
	GetDestinationCollection() ICollection[types.DestinationDoc]
	GetAccountCollection() ICollection[types.AccountDoc]
	GetMessageLogCollection() ICollection[types.MessageLogDoc]
	GetForwardedMessageCollection() ICollection[types.ForwardedMessageDoc]
	GetBotCommandCollection() ICollection[types.BotCommandDoc]
}

// MongoContainer implements IMongoContainer.
type MongoContainer struct {
	cl          *mongo.Client
	mongoClient *MongoClient
	db          *Database
}

func (c *MongoContainer) GetMongoClient() IMongoClient { return c.mongoClient }
func (c *MongoContainer) GetMongoDb() IDatabase         { return c.db }

func (c *MongoContainer) GetOrganizationCollection() ICollection[types.OrganizationDoc] {
	return &Collection[types.OrganizationDoc]{xColl: mongox.NewCollection[types.OrganizationDoc](c.db.Database, string(ORGANIZATION_COLLECTION_NAME))}
}
func (c *MongoContainer) GetUserCollection() ICollection[types.UserDoc] {
	return &Collection[types.UserDoc]{xColl: mongox.NewCollection[types.UserDoc](c.db.Database, string(USER_COLLECTION_NAME))}
}
func (c *MongoContainer) GetGroupCollection() ICollection[types.GroupDoc] {
	return &Collection[types.GroupDoc]{xColl: mongox.NewCollection[types.GroupDoc](c.db.Database, string(GROUP_COLLECTION_NAME))}
}
func (c *MongoContainer) GetWatchUserCollection() ICollection[types.WatchUserDoc] {
	return &Collection[types.WatchUserDoc]{xColl: mongox.NewCollection[types.WatchUserDoc](c.db.Database, string(WATCHUSER_COLLECTION_NAME))}
}
func (c *MongoContainer) GetDestinationCollection() ICollection[types.DestinationDoc] {
	return &Collection[types.DestinationDoc]{xColl: mongox.NewCollection[types.DestinationDoc](c.db.Database, string(DESTINATION_COLLECTION_NAME))}
}
func (c *MongoContainer) GetAccountCollection() ICollection[types.AccountDoc] {
	return &Collection[types.AccountDoc]{xColl: mongox.NewCollection[types.AccountDoc](c.db.Database, string(ACCOUNT_COLLECTION_NAME))}
}
func (c *MongoContainer) GetMessageLogCollection() ICollection[types.MessageLogDoc] {
	return &Collection[types.MessageLogDoc]{xColl: mongox.NewCollection[types.MessageLogDoc](c.db.Database, string(MESSAGELOG_COLLECTION_NAME))}
}
func (c *MongoContainer) GetForwardedMessageCollection() ICollection[types.ForwardedMessageDoc] {
	return &Collection[types.ForwardedMessageDoc]{xColl: mongox.NewCollection[types.ForwardedMessageDoc](c.db.Database, string(FORWARDEDMESSAGE_COLLECTION_NAME))}
}
func (c *MongoContainer) GetBotCommandCollection() ICollection[types.BotCommandDoc] {
	return &Collection[types.BotCommandDoc]{xColl: mongox.NewCollection[types.BotCommandDoc](c.db.Database, string(BOTCOMMAND_COLLECTION_NAME))}
}

var _ IMongoContainer = (*MongoContainer)(nil)

// MongoContainerConfig holds configuration for connecting to a MongoDB instance.
type MongoContainerConfig struct {
	Endpoint string
	DbName   string
}

func (c *MongoContainerConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("mongo endpoint is required")
	}
	if c.DbName == "" {
		return fmt.Errorf("mongo database name is required")
	}
	return nil
}

// NewMongoContainer connects to MongoDB, optionally pings it, and returns a
// ready-to-use container.
func NewMongoContainer(ctx context.Context, config MongoContainerConfig, ping bool) (IMongoContainer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	cl, err := mongo.Connect(options.Client().ApplyURI(config.Endpoint))
	if err != nil {
		return nil, fmt.Errorf("error creating mongo client: %w", err)
	}
	if ping {
		if err := cl.Ping(ctx, readpref.Primary()); err != nil {
			if disconnectErr := cl.Disconnect(ctx); disconnectErr != nil {
				logrus.Warnf("failed to disconnect client after ping failure: %v", disconnectErr)
			}
			return nil, fmt.Errorf("error pinging mongo: %w", err)
		}
	}
	mCl := MongoClient{xCl: mongox.NewClient(cl, &mongox.Config{})}
	return &MongoContainer{
		cl:          cl,
		mongoClient: &mCl,
		db:          mCl.NewDatabase(config.DbName).(*Database),
	}, nil
}
