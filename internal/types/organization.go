package types

import (
	"github.com/chenmingyong0423/go-mongox/v2"
)

type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPro, PlanEnterprise:
		return true
	}
	return false
}

const (
	OrganizationDoc__NameField = "Name"
)

// UsageStats is a free-form rollup cache, never authoritative on its own.
// No code in this module writes it.
type UsageStats struct {
	TotalGroups      int64 `bson:"TotalGroups" json:"total_groups"`
	TotalWatchUsers  int64 `bson:"TotalWatchUsers" json:"total_watch_users"`
	TotalDestination int64 `bson:"TotalDestinations" json:"total_destinations"`
}

// OrganizationDoc is the tenant root. Created on first registration, never
// deleted.
type OrganizationDoc struct {
	mongox.Model `bson:",inline"`
	Name         string     `bson:"Name" json:"name"`
	Description  string     `bson:"Description" json:"description"`
	Plan         Plan       `bson:"Plan" json:"plan"`
	UsageStats   UsageStats `bson:"UsageStats" json:"usage_stats"`
}

func (o OrganizationDoc) String() string { return o.ID.String() }
