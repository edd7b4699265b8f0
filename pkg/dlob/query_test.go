package dlob

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAsks_TakingNodesPrecedeRestingRegardlessOfPrice(t *testing.T) {
	book := New()

	restingAsk := baseLimitOrder(1, testUser(1), Short, 90, 10, 0)
	restingAsk.PostOnly = true
	book.InsertOrder(restingAsk, 0)

	takingAsk := baseLimitOrder(2, testUser(2), Short, 200, 5, 5)
	takingAsk.AuctionDuration = 100
	book.InsertOrder(takingAsk, 5)

	gen, err := book.GetAsks(MarketTypePerp, 0, d(0), 5, nil)
	require.NoError(t, err)

	first, ok := gen()
	require.True(t, ok)
	assert.Equal(t, takingAsk.OrderID, first.Order.OrderID, "taking nodes sort before any resting node, even a cheaper one")

	second, ok := gen()
	require.True(t, ok)
	assert.Equal(t, restingAsk.OrderID, second.Order.OrderID)

	_, ok = gen()
	assert.False(t, ok)
}

func TestGetBids_RestingTierIsBestPriceFirst(t *testing.T) {
	book := New()

	worse := baseLimitOrder(1, testUser(1), Long, 90, 10, 0)
	worse.PostOnly = true
	better := baseLimitOrder(2, testUser(2), Long, 95, 10, 1)
	better.PostOnly = true
	book.InsertOrder(worse, 0)
	book.InsertOrder(better, 1)

	gen, err := book.GetBids(MarketTypePerp, 0, d(0), 1, nil)
	require.NoError(t, err)

	first, ok := gen()
	require.True(t, ok)
	assert.Equal(t, better.OrderID, first.Order.OrderID)
}

func TestBestAsk_FoldsInSyntheticVammWhenCheaperThanBook(t *testing.T) {
	book := New()

	bookAsk := baseLimitOrder(1, testUser(1), Short, 110, 10, 0)
	bookAsk.PostOnly = true
	book.InsertOrder(bookAsk, 0)

	fallbackAsk := d(100)
	best, ok := book.BestAsk(MarketTypePerp, 0, d(0), 0, &fallbackAsk)
	require.True(t, ok)
	assert.True(t, best.Order.Price.Equal(fallbackAsk), "vAMM quote at fallbackAsk is cheaper than the book's ask and must win")
}

func TestBestBid_IgnoresVammWhenBookIsBetter(t *testing.T) {
	book := New()

	bookBid := baseLimitOrder(1, testUser(1), Long, 100, 10, 0)
	bookBid.PostOnly = true
	book.InsertOrder(bookBid, 0)

	fallbackBid := d(95)
	best, ok := book.BestBid(MarketTypePerp, 0, d(0), 0, &fallbackBid)
	require.True(t, ok)
	assert.Equal(t, bookBid.OrderID, best.Order.OrderID, "book bid outprices the vAMM quote and must win")
}

func TestBestAsk_NoBookLiquidityFallsBackToVamm(t *testing.T) {
	book := New()
	fallbackAsk := d(105)
	best, ok := book.BestAsk(MarketTypePerp, 0, d(0), 0, &fallbackAsk)
	require.True(t, ok)
	assert.True(t, best.Order.Price.Equal(fallbackAsk))
}

func TestGetAsks_SpotMarketIgnoresVammEvenWithFallback(t *testing.T) {
	book := New()
	fallbackAsk := d(105)
	gen, err := book.GetAsks(MarketTypeSpot, 0, d(100), 0, &fallbackAsk)
	require.NoError(t, err)
	_, ok := gen()
	assert.False(t, ok, "vAMM is a perp-only fallback; spot markets have no synthetic quote")
}
