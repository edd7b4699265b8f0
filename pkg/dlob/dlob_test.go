package dlob

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Helpers -----------------------------------------------------------

func testUser(b byte) UserAccount {
	var u UserAccount
	u[0] = b
	return u
}

func baseLimitOrder(id uint64, user UserAccount, dir Direction, price, size int64, slot uint64) Order {
	return Order{
		OrderID:         id,
		UserAccount:     user,
		MarketType:      MarketTypePerp,
		MarketIndex:     0,
		Direction:       dir,
		OrderType:       OrderTypeLimit,
		Status:          StatusOpen,
		BaseAssetAmount: decimal.NewFromInt(size),
		Price:           decimal.NewFromInt(price),
		Slot:            slot,
	}
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

// --- Classification ------------------------------------------------------

func TestClassify_IgnoresInitStatus(t *testing.T) {
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	order.Status = StatusInit
	_, ok := classify(&order, 0)
	assert.False(t, ok)
}

func TestClassify_IgnoresUnsupportedOrderType(t *testing.T) {
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	order.OrderType = orderTypeUnsupported
	_, ok := classify(&order, 0)
	assert.False(t, ok)
}

func TestClassify_FloatingLimitOnNonzeroOffset(t *testing.T) {
	order := baseLimitOrder(1, testUser(1), Long, 0, 10, 0)
	order.OraclePriceOffset = d(5)
	class, ok := classify(&order, 100)
	require.True(t, ok)
	assert.Equal(t, ClassFloatingLimit, class)
}

func TestClassify_TakingThenRestingAfterAuction(t *testing.T) {
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 5)
	order.AuctionDuration = 10

	class, ok := classify(&order, 8)
	require.True(t, ok)
	assert.Equal(t, ClassTakingLimit, class)

	class, ok = classify(&order, 16)
	require.True(t, ok)
	assert.Equal(t, ClassRestingLimit, class)
}

func TestClassify_PostOnlyRestsImmediately(t *testing.T) {
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 5)
	order.PostOnly = true
	class, ok := classify(&order, 5)
	require.True(t, ok)
	assert.Equal(t, ClassRestingLimit, class)
}

func TestClassify_TriggerOrderIsInactiveUntilFired(t *testing.T) {
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	order.OrderType = OrderTypeTriggerLimit
	order.TriggerCondition = TriggerAbove
	order.TriggerPrice = d(200)

	class, ok := classify(&order, 0)
	require.True(t, ok)
	assert.Equal(t, ClassTriggerAbove, class)
}

// --- Insertion / removal / idempotence ------------------------------------

func TestInsertOrder_ResultsInOpenOrderAtExpectedLocation(t *testing.T) {
	book := New()
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	order.PostOnly = true

	book.InsertOrder(order, 0)

	assert.True(t, book.IsOpen(MarketTypePerp, order.Key()))
	loc, ok := book.locations[order.Key()]
	require.True(t, ok)
	assert.Equal(t, ClassRestingLimit, loc.Classification)
	assert.Equal(t, Bid, loc.Side)
}

func TestInsertOrder_DuplicateKeyReplacesInPlace(t *testing.T) {
	book := New()
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	order.PostOnly = true
	book.InsertOrder(order, 0)

	order.BaseAssetAmountFilled = d(4)
	book.InsertOrder(order, 0)

	mb, _ := book.marketBook(MarketTypePerp, 0)
	assert.Equal(t, 1, mb.RestingLimitBid.Len())
	node, ok := mb.RestingLimitBid.Get(order.Key())
	require.True(t, ok)
	assert.True(t, node.Order.BaseAssetAmountFilled.Equal(d(4)))
}

func TestDeleteOrder_RemovesFromLocationAndOpenSet(t *testing.T) {
	book := New()
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	order.PostOnly = true
	book.InsertOrder(order, 0)

	book.DeleteOrder(order.Key(), 0)

	assert.False(t, book.IsOpen(MarketTypePerp, order.Key()))
	_, ok := book.locations[order.Key()]
	assert.False(t, ok)
}

func TestUpdateOrder_FullFillDeletesNode(t *testing.T) {
	book := New()
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	order.PostOnly = true
	book.InsertOrder(order, 0)

	book.UpdateOrder(order.Key(), 0, d(10))

	_, ok := book.locations[order.Key()]
	assert.False(t, ok)
}

func TestUpdateOrder_SameFilledAmountIsNoop(t *testing.T) {
	book := New()
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	order.PostOnly = true
	book.InsertOrder(order, 0)

	book.UpdateOrder(order.Key(), 0, d(0))

	mb, _ := book.marketBook(MarketTypePerp, 0)
	node, ok := mb.RestingLimitBid.Get(order.Key())
	require.True(t, ok)
	assert.True(t, node.Order.BaseAssetAmountFilled.IsZero())
}

func TestUpdateOrder_PartialFillUpdatesInPlaceWithoutMoving(t *testing.T) {
	book := New()
	a := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	a.PostOnly = true
	b := baseLimitOrder(2, testUser(2), Long, 100, 10, 1)
	b.PostOnly = true
	book.InsertOrder(a, 0)
	book.InsertOrder(b, 1)

	book.UpdateOrder(a.Key(), 1, d(3))

	mb, _ := book.marketBook(MarketTypePerp, 0)
	gen := mb.RestingLimitBid.Generator()
	first, ok := gen()
	require.True(t, ok)
	assert.Equal(t, a.OrderID, first.Order.OrderID, "FIFO order must be unaffected by an in-place fill update")
	assert.True(t, first.Order.BaseAssetAmountFilled.Equal(d(3)))
}

// --- Promotion -------------------------------------------------------------

func TestUpdateRestingLimitOrders_PromotesAfterAuctionWindow(t *testing.T) {
	book := New()
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	order.AuctionDuration = 5
	book.InsertOrder(order, 0)

	mb, _ := book.marketBook(MarketTypePerp, 0)
	assert.Equal(t, 1, mb.TakingLimitBid.Len())

	book.UpdateRestingLimitOrders(6)

	assert.Equal(t, 0, mb.TakingLimitBid.Len())
	assert.Equal(t, 1, mb.RestingLimitBid.Len())
}

func TestUpdateRestingLimitOrders_IsMonotoneAndIdempotent(t *testing.T) {
	book := New()
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	order.AuctionDuration = 5
	book.InsertOrder(order, 0)

	book.UpdateRestingLimitOrders(10)
	book.UpdateRestingLimitOrders(3) // stale slot: must not roll back promotion

	mb, _ := book.marketBook(MarketTypePerp, 0)
	assert.Equal(t, 1, mb.RestingLimitBid.Len())
	assert.Equal(t, uint64(10), book.MaxSlotForRestingLimitOrders())
}

// --- Trigger firing ----------------------------------------------------

func TestTrigger_ReclassifiesArmedOrderToMarket(t *testing.T) {
	book := New()
	order := baseLimitOrder(1, testUser(1), Long, 0, 10, 0)
	order.OrderType = OrderTypeTriggerMarket
	order.TriggerCondition = TriggerAbove
	order.TriggerPrice = d(200)
	book.InsertOrder(order, 0)

	book.Trigger(order.Key(), 0)

	mb, _ := book.marketBook(MarketTypePerp, 0)
	assert.Equal(t, 0, mb.TriggerAbove.Len())
	node, ok := mb.MarketBid.Get(order.Key())
	require.True(t, ok)
	assert.Equal(t, TriggerTriggeredAbove, node.Order.TriggerCondition)
}

// --- Init ------------------------------------------------------------------

func TestInitFromSnapshot_OnlyAppliesOnce(t *testing.T) {
	book := New()
	users := []UserOrders{{UserAccount: testUser(1), Orders: []Order{baseLimitOrder(1, testUser(1), Long, 100, 10, 0)}}}

	assert.True(t, book.InitFromSnapshot(users, 0))
	assert.False(t, book.InitFromSnapshot(users, 0))
}
