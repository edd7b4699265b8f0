package dlob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func triggerOrder(id uint64, cond TriggerCondition, triggerPrice int64) Order {
	o := baseLimitOrder(id, testUser(byte(id)), Long, 0, 10, 0)
	o.OrderType = OrderTypeTriggerMarket
	o.TriggerCondition = cond
	o.TriggerPrice = d(triggerPrice)
	return o
}

func TestFindNodesToTrigger_AboveFiresWhenOraclePassesThreshold(t *testing.T) {
	book := New()
	book.InsertOrder(triggerOrder(1, TriggerAbove, 100), 0)
	book.InsertOrder(triggerOrder(2, TriggerAbove, 200), 0)

	toTrigger := book.FindNodesToTrigger(MarketTypePerp, 0, 0, d(150), fakeState{})

	assert.Len(t, toTrigger, 1)
	assert.Equal(t, uint64(1), toTrigger[0].Node.Order.OrderID)
}

func TestFindNodesToTrigger_BelowFiresWhenOracleDropsUnderThreshold(t *testing.T) {
	book := New()
	book.InsertOrder(triggerOrder(1, TriggerBelow, 100), 0)
	book.InsertOrder(triggerOrder(2, TriggerBelow, 50), 0)

	toTrigger := book.FindNodesToTrigger(MarketTypePerp, 0, 0, d(75), fakeState{})

	assert.Len(t, toTrigger, 1)
	assert.Equal(t, uint64(1), toTrigger[0].Node.Order.OrderID)
}

func TestFindNodesToTrigger_ExchangePausedReturnsNil(t *testing.T) {
	book := New()
	book.InsertOrder(triggerOrder(1, TriggerAbove, 100), 0)

	toTrigger := book.FindNodesToTrigger(MarketTypePerp, 0, 0, d(150), fakeState{paused: true})
	assert.Nil(t, toTrigger)
}
