package balancer_test

import (
	"testing"

	. "github.com/onsi/gomega"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/tgwatch/tgwatch/internal/balancer"
)

func newIDs(n int) []bson.ObjectID {
	ids := make([]bson.ObjectID, n)
	for i := range ids {
		ids[i] = bson.NewObjectID()
	}
	return ids
}

func TestAssignCoversEveryGroupExactlyOnce(t *testing.T) {
	g := NewWithT(t)
	groups := newIDs(7)
	accounts := newIDs(3)

	assignment := balancer.Assign(groups, accounts)

	g.Expect(assignment).To(HaveLen(len(groups)))
	for _, group := range groups {
		g.Expect(assignment).To(HaveKey(group))
	}
}

func TestAssignIsBalancedWithinOne(t *testing.T) {
	g := NewWithT(t)
	groups := newIDs(10)
	accounts := newIDs(3)

	counts := map[bson.ObjectID]int{}
	for _, account := range balancer.Assign(groups, accounts) {
		counts[account]++
	}

	min, max := -1, -1
	for _, c := range counts {
		if min == -1 || c < min {
			min = c
		}
		if max == -1 || c > max {
			max = c
		}
	}
	g.Expect(max - min).To(BeNumerically("<=", 1))
}

func TestAssignIsDeterministic(t *testing.T) {
	g := NewWithT(t)
	groups := newIDs(5)
	accounts := newIDs(2)

	first := balancer.Assign(groups, accounts)
	second := balancer.Assign(groups, accounts)

	g.Expect(second).To(Equal(first))
}

func TestAssignWithNoAccountsIsNil(t *testing.T) {
	g := NewWithT(t)
	g.Expect(balancer.Assign(newIDs(3), nil)).To(BeNil())
}

func TestDiffOnlyMovesChangedGroups(t *testing.T) {
	g := NewWithT(t)
	groups := newIDs(4)
	accountA, accountB := bson.NewObjectID(), bson.NewObjectID()

	prev := balancer.Assignment{
		groups[0]: accountA,
		groups[1]: accountA,
		groups[2]: accountB,
		groups[3]: accountB,
	}
	next := balancer.Assignment{
		groups[0]: accountA,
		groups[1]: accountB,
		groups[2]: accountB,
		groups[3]: accountB,
	}

	subscribe, unsubscribe := balancer.Diff(prev, next)

	g.Expect(subscribe[accountB]).To(ConsistOf(groups[1]))
	g.Expect(unsubscribe[accountA]).To(ConsistOf(groups[1]))
	g.Expect(subscribe).NotTo(HaveKey(accountA))
}
