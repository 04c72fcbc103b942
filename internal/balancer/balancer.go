// Package balancer computes a deterministic assignment of a tenant's active
// groups to its active healthy accounts, balanced within ±1 and recomputed
// from scratch whenever the tenant's group or account set changes.
package balancer

import (
	"bytes"
	"sort"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Assignment maps each group to the single account responsible for it.
type Assignment map[bson.ObjectID]bson.ObjectID

// ByAccount groups Assignment the other way, for instructing each
// receiver's subscribe/unsubscribe set.
func (a Assignment) ByAccount() map[bson.ObjectID][]bson.ObjectID {
	out := map[bson.ObjectID][]bson.ObjectID{}
	for group, account := range a {
		out[account] = append(out[account], group)
	}
	for account := range out {
		sortIDs(out[account])
	}
	return out
}

// Assign distributes groups across accounts round-robin over both inputs
// sorted by id, so re-running with an unchanged input set reproduces the
// same assignment. Returns nil if there are no accounts to assign to.
func Assign(groups, accounts []bson.ObjectID) Assignment {
	if len(accounts) == 0 {
		return nil
	}
	sortedGroups := append([]bson.ObjectID(nil), groups...)
	sortedAccounts := append([]bson.ObjectID(nil), accounts...)
	sortIDs(sortedGroups)
	sortIDs(sortedAccounts)

	assignment := make(Assignment, len(sortedGroups))
	for i, group := range sortedGroups {
		assignment[group] = sortedAccounts[i%len(sortedAccounts)]
	}
	return assignment
}

// Diff compares prev to next and returns, per account, the groups it should
// subscribe to and unsubscribe from to reach next.
func Diff(prev, next Assignment) (subscribe, unsubscribe map[bson.ObjectID][]bson.ObjectID) {
	subscribe = map[bson.ObjectID][]bson.ObjectID{}
	unsubscribe = map[bson.ObjectID][]bson.ObjectID{}
	for group, account := range next {
		if prevAccount, ok := prev[group]; !ok || prevAccount != account {
			subscribe[account] = append(subscribe[account], group)
		}
	}
	for group, account := range prev {
		if nextAccount, ok := next[group]; !ok || nextAccount != account {
			unsubscribe[account] = append(unsubscribe[account], group)
		}
	}
	return subscribe, unsubscribe
}

func sortIDs(ids []bson.ObjectID) {
	sort.Slice(ids, func(i, j int) bool { return idLess(ids[i], ids[j]) })
}

func idLess(a, b bson.ObjectID) bool {
	return bytes.Compare(a[:], b[:]) < 0
}
