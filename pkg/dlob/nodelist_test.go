package dlob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drainKeys(gen Generator) []uint64 {
	var ids []uint64
	for n, ok := gen(); ok; n, ok = gen() {
		ids = append(ids, n.Order.OrderID)
	}
	return ids
}

func TestNodeList_AscendingOrderWithFIFOTiebreak(t *testing.T) {
	nl := newNodeList(ClassRestingLimit, Ask, true)
	nl.Insert(baseLimitOrder(1, testUser(1), Short, 100, 10, 0), d(100))
	nl.Insert(baseLimitOrder(2, testUser(1), Short, 90, 10, 1), d(90))
	nl.Insert(baseLimitOrder(3, testUser(1), Short, 90, 10, 2), d(90)) // same price, later

	ids := drainKeys(nl.Generator())
	assert.Equal(t, []uint64{2, 3, 1}, ids)
}

func TestNodeList_DescendingOrder(t *testing.T) {
	nl := newNodeList(ClassRestingLimit, Bid, false)
	nl.Insert(baseLimitOrder(1, testUser(1), Long, 100, 10, 0), d(100))
	nl.Insert(baseLimitOrder(2, testUser(1), Long, 110, 10, 1), d(110))

	ids := drainKeys(nl.Generator())
	assert.Equal(t, []uint64{2, 1}, ids)
}

func TestNodeList_InsertDuplicateKeyReplaces(t *testing.T) {
	nl := newNodeList(ClassRestingLimit, Ask, true)
	nl.Insert(baseLimitOrder(1, testUser(1), Short, 100, 10, 0), d(100))
	nl.Insert(baseLimitOrder(1, testUser(1), Short, 100, 6, 0), d(100))

	assert.Equal(t, 1, nl.Len())
	node, ok := nl.Get(OrderKey{OrderID: 1, UserAccount: testUser(1)})
	require.True(t, ok)
	assert.True(t, node.Order.BaseAssetAmount.Equal(d(6)))
}

func TestNodeList_UpdateDoesNotMoveNode(t *testing.T) {
	nl := newNodeList(ClassRestingLimit, Ask, true)
	nl.Insert(baseLimitOrder(1, testUser(1), Short, 90, 10, 0), d(90))
	nl.Insert(baseLimitOrder(2, testUser(1), Short, 90, 10, 1), d(90))

	updated := baseLimitOrder(1, testUser(1), Short, 90, 10, 0)
	updated.BaseAssetAmountFilled = d(5)
	nl.Update(updated)

	ids := drainKeys(nl.Generator())
	assert.Equal(t, []uint64{1, 2}, ids, "FIFO position must survive an Update")
}

func TestNodeList_RemoveMissingKeyIsNoop(t *testing.T) {
	nl := newNodeList(ClassRestingLimit, Ask, true)
	assert.NotPanics(t, func() {
		nl.Remove(OrderKey{OrderID: 99, UserAccount: testUser(1)})
	})
}

func TestMergeBest_InterleavesBySortKey(t *testing.T) {
	a := newNodeList(ClassRestingLimit, Ask, true)
	a.Insert(baseLimitOrder(1, testUser(1), Short, 100, 10, 0), d(100))
	a.Insert(baseLimitOrder(3, testUser(1), Short, 120, 10, 0), d(120))

	b := newNodeList(ClassFloatingLimit, Ask, true)
	b.Insert(baseLimitOrder(2, testUser(1), Short, 110, 10, 0), d(110))

	better := func(x, y *OrderNode) bool { return x.sortKey.LessThan(y.sortKey) }
	merged := mergeBest([]Generator{a.Generator(), b.Generator()}, better)

	assert.Equal(t, []uint64{1, 2, 3}, drainKeys(merged))
}
