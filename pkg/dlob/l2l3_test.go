package dlob

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFallback struct {
	bids []FallbackL2Level
	asks []FallbackL2Level
}

func (f fakeFallback) L2Bids() []FallbackL2Level { return f.bids }
func (f fakeFallback) L2Asks() []FallbackL2Level { return f.asks }

func TestGetL2_CollapsesSamePriceLevels(t *testing.T) {
	book := New()
	a := baseLimitOrder(1, testUser(1), Short, 100, 5, 0)
	a.PostOnly = true
	b := baseLimitOrder(2, testUser(2), Short, 100, 7, 0)
	b.PostOnly = true
	book.InsertOrder(a, 0)
	book.InsertOrder(b, 0)

	_, asks, err := book.GetL2(MarketTypePerp, 0, decimal.Zero, 0, 0, nil, nil, nil)
	require.NoError(t, err)
	require.Len(t, asks, 1)
	assert.True(t, asks[0].Price.Equal(d(100)))
	assert.True(t, asks[0].Size.Equal(d(12)))
}

func TestGetL2_MergesFallbackBestFirst(t *testing.T) {
	book := New()
	ask := baseLimitOrder(1, testUser(1), Short, 105, 5, 0)
	ask.PostOnly = true
	book.InsertOrder(ask, 0)

	fallback := fakeFallback{asks: []FallbackL2Level{{Price: d(100), Size: d(20), Sources: []string{"amm"}}}}

	_, asks, err := book.GetL2(MarketTypePerp, 0, decimal.Zero, 0, 0, nil, nil, []FallbackL2Source{fallback})
	require.NoError(t, err)
	require.Len(t, asks, 2)
	assert.True(t, asks[0].Price.Equal(d(100)), "fallback quote is better-priced and must come first")
	assert.True(t, asks[1].Price.Equal(d(105)))
}

func TestGetL2_DepthCapLimitsLevelCount(t *testing.T) {
	book := New()
	for i := 0; i < 5; i++ {
		o := baseLimitOrder(uint64(i+1), testUser(byte(i+1)), Short, int64(100+i), 1, 0)
		o.PostOnly = true
		book.InsertOrder(o, 0)
	}

	_, asks, err := book.GetL2(MarketTypePerp, 0, decimal.Zero, 0, 2, nil, nil, nil)
	require.NoError(t, err)
	assert.Len(t, asks, 2)
}

func TestGetL2_ExcludesMakerAlreadyCrossingFallback(t *testing.T) {
	book := New()
	ask := baseLimitOrder(1, testUser(1), Short, 100, 5, 0)
	ask.PostOnly = true
	book.InsertOrder(ask, 0)

	fallbackBid := d(105)
	_, asks, err := book.GetL2(MarketTypePerp, 0, decimal.Zero, 0, 0, &fallbackBid, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, asks, "ask priced below fallbackBid is already matched directly against the fallback")
}

func TestGetL2_MergesMultipleFallbackSources(t *testing.T) {
	book := New()
	a := fakeFallback{asks: []FallbackL2Level{{Price: d(100), Size: d(5), Sources: []string{"amm"}}}}
	b := fakeFallback{asks: []FallbackL2Level{{Price: d(100), Size: d(3), Sources: []string{"ext"}}}}

	_, asks, err := book.GetL2(MarketTypePerp, 0, decimal.Zero, 0, 0, nil, nil, []FallbackL2Source{a, b})
	require.NoError(t, err)
	require.Len(t, asks, 1)
	assert.True(t, asks[0].Size.Equal(d(8)))
}

func TestGetL3_ReturnsPerOrderLevels(t *testing.T) {
	book := New()
	a := baseLimitOrder(1, testUser(1), Short, 100, 5, 0)
	a.PostOnly = true
	b := baseLimitOrder(2, testUser(2), Short, 100, 7, 0)
	b.PostOnly = true
	book.InsertOrder(a, 0)
	book.InsertOrder(b, 0)

	_, asks, err := book.GetL3(MarketTypePerp, 0, 0)
	require.NoError(t, err)
	require.Len(t, asks, 2)
	assert.Equal(t, uint64(1), asks[0].OrderID)
	assert.Equal(t, uint64(2), asks[1].OrderID)
}
