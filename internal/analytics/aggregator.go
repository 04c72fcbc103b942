// Package analytics rolls up per-tenant usage and delivery statistics for
// the /api/stats endpoint, grounded in the original prototype's /stats
// $group/$sort/$limit pipelines.
package analytics

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/errs"
	"github.com/tgwatch/tgwatch/internal/repo"
	"github.com/tgwatch/tgwatch/internal/types"
)

const (
	topUsersLimit       = 10
	topDestinationsLimit = 10
	recentForwardsLimit = 10
)

type CountBucket struct {
	Key   string `bson:"_id" json:"key"`
	Count int64  `bson:"count" json:"count"`
}

// Stats is the shape returned by GET /api/stats.
type Stats struct {
	TotalGroups           int64                        `json:"total_groups"`
	TotalWatchlistUsers    int64                        `json:"total_watchlist_users"`
	TotalDestinations      int64                        `json:"total_destinations"`
	TotalMessages          int64                        `json:"total_messages"`
	MessagesToday          int64                        `json:"messages_today"`
	TotalForwarded         int64                        `json:"total_forwarded"`
	ForwardingSuccessRate  float64                      `json:"forwarding_success_rate"`
	ForwardedToday         int64                        `json:"forwarded_today"`
	TopUsers               []CountBucket                `json:"top_users"`
	MessageTypes           []CountBucket                `json:"message_types"`
	TopDestinations        []CountBucket                `json:"top_destinations"`
	RecentForwards         []*types.ForwardedMessageDoc `json:"recent_forwards"`
	LastUpdated            time.Time                    `json:"last_updated"`
}

type Aggregator struct {
	repos *repo.Container
}

func NewAggregator(repos *repo.Container) *Aggregator {
	return &Aggregator{repos: repos}
}

func (a *Aggregator) Compute(ctx context.Context, tenantID bson.ObjectID) (*Stats, error) {
	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)

	totalGroups, err := a.repos.Groups.Collection().Finder().Filter(bson.D{
		{Key: types.GroupDoc__TenantIDField, Value: tenantID},
		{Key: types.GroupDoc__IsActiveField, Value: true},
	}).Count(ctx)
	if err != nil {
		return nil, errs.WrapStoreUnavailable(err, "counting groups")
	}

	totalWatchUsers, err := a.repos.WatchUsers.Collection().Finder().Filter(bson.D{
		{Key: types.WatchUserDoc__TenantIDField, Value: tenantID},
		{Key: types.WatchUserDoc__IsActiveField, Value: true},
	}).Count(ctx)
	if err != nil {
		return nil, errs.WrapStoreUnavailable(err, "counting watchlist users")
	}

	totalDestinations, err := a.repos.Destinations.Collection().Finder().Filter(bson.D{
		{Key: types.DestinationDoc__TenantIDField, Value: tenantID},
		{Key: types.DestinationDoc__IsActiveField, Value: true},
	}).Count(ctx)
	if err != nil {
		return nil, errs.WrapStoreUnavailable(err, "counting destinations")
	}

	totalMessages, err := a.repos.MessageLogs.Collection().Finder().Filter(bson.D{
		{Key: types.MessageLogDoc__TenantIDField, Value: tenantID},
	}).Count(ctx)
	if err != nil {
		return nil, errs.WrapStoreUnavailable(err, "counting messages")
	}

	messagesToday, err := a.repos.MessageLogs.Collection().Finder().Filter(bson.D{
		{Key: types.MessageLogDoc__TenantIDField, Value: tenantID},
		{Key: "Timestamp", Value: bson.D{{Key: "$gte", Value: startOfDay}}},
	}).Count(ctx)
	if err != nil {
		return nil, errs.WrapStoreUnavailable(err, "counting today's messages")
	}

	totalForwarded, err := a.repos.ForwardedMessages.CountByOutcome(ctx, tenantID, types.ForwardDelivered)
	if err != nil {
		return nil, err
	}
	totalFailed, err := a.repos.ForwardedMessages.CountByOutcome(ctx, tenantID, types.ForwardFailed)
	if err != nil {
		return nil, err
	}
	var successRate float64
	if attempted := totalForwarded + totalFailed; attempted > 0 {
		successRate = float64(totalForwarded) / float64(attempted)
	}

	forwardedToday, err := a.repos.ForwardedMessages.Collection().Finder().Filter(bson.D{
		{Key: types.ForwardedMessageDoc__TenantIDField, Value: tenantID},
		{Key: "Outcome", Value: types.ForwardDelivered},
		{Key: "ForwardedAt", Value: bson.D{{Key: "$gte", Value: startOfDay}}},
	}).Count(ctx)
	if err != nil {
		return nil, errs.WrapStoreUnavailable(err, "counting today's forwards")
	}

	var topUsers []CountBucket
	if err := a.repos.MessageLogs.Collection().Aggregator().
		Pipeline(groupCountPipeline(tenantID, "Username", topUsersLimit)).
		AggregateWithParse(ctx, &topUsers); err != nil {
		return nil, errs.WrapStoreUnavailable(err, "aggregating top users")
	}

	var messageTypes []CountBucket
	if err := a.repos.MessageLogs.Collection().Aggregator().
		Pipeline(groupCountPipeline(tenantID, "MessageType", 0)).
		AggregateWithParse(ctx, &messageTypes); err != nil {
		return nil, errs.WrapStoreUnavailable(err, "aggregating message types")
	}

	var topDestinations []CountBucket
	if err := a.repos.ForwardedMessages.Collection().Aggregator().
		Pipeline(groupCountPipeline(tenantID, "DestinationID", topDestinationsLimit)).
		AggregateWithParse(ctx, &topDestinations); err != nil {
		return nil, errs.WrapStoreUnavailable(err, "aggregating top destinations")
	}

	recent, err := a.repos.ForwardedMessages.Collection().Finder().
		Filter(bson.D{{Key: types.ForwardedMessageDoc__TenantIDField, Value: tenantID}}).
		Sort(bson.D{{Key: "ForwardedAt", Value: -1}}).
		Limit(recentForwardsLimit).
		Find(ctx)
	if err != nil {
		return nil, errs.WrapStoreUnavailable(err, "listing recent forwards")
	}

	return &Stats{
		TotalGroups:           totalGroups,
		TotalWatchlistUsers:   totalWatchUsers,
		TotalDestinations:     totalDestinations,
		TotalMessages:         totalMessages,
		MessagesToday:         messagesToday,
		TotalForwarded:        totalForwarded,
		ForwardingSuccessRate: successRate,
		ForwardedToday:        forwardedToday,
		TopUsers:              topUsers,
		MessageTypes:          messageTypes,
		TopDestinations:       topDestinations,
		RecentForwards:        recent,
		LastUpdated:           time.Now().UTC(),
	}, nil
}

// groupCountPipeline builds the original prototype's $group/$sort[, $limit]
// shape over a single field, grouping by descending count.
func groupCountPipeline(tenantID bson.ObjectID, field string, limit int64) bson.A {
	pipeline := bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "TenantID", Value: tenantID}}}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + field},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: limit}})
	}
	return pipeline
}
