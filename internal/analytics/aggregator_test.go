package analytics

import (
	"testing"

	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestGroupCountPipelineMatchesOnTenantAndGroupsByField(t *testing.T) {
	g := NewWithT(t)
	tenantID := bson.NewObjectID()

	pipeline := groupCountPipeline(tenantID, "Username", 0)

	g.Expect(pipeline).To(HaveLen(3))
	match := pipeline[0].(bson.D)
	g.Expect(match[0].Key).To(Equal("$match"))
	g.Expect(match[0].Value).To(Equal(bson.D{{Key: "TenantID", Value: tenantID}}))
	group := pipeline[1].(bson.D)
	g.Expect(group[0].Key).To(Equal("$group"))
}

func TestGroupCountPipelineAppendsLimitWhenPositive(t *testing.T) {
	g := NewWithT(t)
	pipeline := groupCountPipeline(bson.NewObjectID(), "DestinationID", 10)

	g.Expect(pipeline).To(HaveLen(4))
	limit := pipeline[3].(bson.D)
	g.Expect(limit[0].Key).To(Equal("$limit"))
	g.Expect(limit[0].Value).To(Equal(int64(10)))
}

func TestGroupCountPipelineOmitsLimitWhenZero(t *testing.T) {
	g := NewWithT(t)
	pipeline := groupCountPipeline(bson.NewObjectID(), "MessageType", 0)

	g.Expect(pipeline).To(HaveLen(3))
}
