package dlob

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindExpiredNodesToFill_OnlyExpiredOrdersMatch(t *testing.T) {
	book := New()
	expired := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	expired.PostOnly = true
	expired.MaxTS = 500
	fresh := baseLimitOrder(2, testUser(2), Long, 100, 10, 0)
	fresh.PostOnly = true
	fresh.MaxTS = 0 // never expires
	book.InsertOrder(expired, 0)
	book.InsertOrder(fresh, 0)

	mb, _ := book.marketBook(MarketTypePerp, 0)
	toFill := book.findExpiredNodesToFill(mb, 1000)

	assert.Len(t, toFill, 1)
	assert.Equal(t, expired.OrderID, toFill[0].Node.Order.OrderID)
}

func TestFindExpiredNodesToFill_NotYetExpiredIsExcluded(t *testing.T) {
	book := New()
	order := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	order.PostOnly = true
	order.MaxTS = 2000
	book.InsertOrder(order, 0)

	mb, _ := book.marketBook(MarketTypePerp, 0)
	toFill := book.findExpiredNodesToFill(mb, 1000)

	assert.Empty(t, toFill)
}
