package dlob

import "github.com/shopspring/decimal"

// L3Level is one order's raw contribution to the book, used by GetL3.
type L3Level struct {
	Price   decimal.Decimal
	Size    decimal.Decimal
	Maker   UserAccount
	OrderID uint64
}

func nodeGenToL2Levels(gen Generator, oracle decimal.Decimal, slot uint64) []FallbackL2Level {
	var out []FallbackL2Level
	for node, ok := gen(); ok; node, ok = gen() {
		price, hasPrice := node.EffectivePrice(oracle, slot)
		if !hasPrice {
			continue
		}
		out = append(out, FallbackL2Level{Price: price, Size: node.Order.Remaining()})
	}
	return out
}

func drainL2(gen func() (FallbackL2Level, bool)) []FallbackL2Level {
	var out []FallbackL2Level
	for {
		lvl, ok := gen()
		if !ok {
			return out
		}
		out = append(out, lvl)
	}
}

// mergeManyL2 folds a slice of best-first FallbackL2Level sequences into a
// single best-first sequence, pairwise.
func mergeManyL2(gens []func() (FallbackL2Level, bool), better func(x, y FallbackL2Level) bool) func() (FallbackL2Level, bool) {
	merged := func() (FallbackL2Level, bool) { return FallbackL2Level{}, false }
	for _, g := range gens {
		merged = mergeL2Gens(merged, g, better)
	}
	return merged
}

// mergeL2Gens k-way merges two best-first FallbackL2Level sequences.
func mergeL2Gens(a, b func() (FallbackL2Level, bool), better func(x, y FallbackL2Level) bool) func() (FallbackL2Level, bool) {
	aHead, aOk := a()
	bHead, bOk := b()
	return func() (FallbackL2Level, bool) {
		switch {
		case !aOk && !bOk:
			return FallbackL2Level{}, false
		case !bOk:
			v := aHead
			aHead, aOk = a()
			return v, true
		case !aOk:
			v := bHead
			bHead, bOk = b()
			return v, true
		case better(aHead, bHead):
			v := aHead
			aHead, aOk = a()
			return v, true
		default:
			v := bHead
			bHead, bOk = b()
			return v, true
		}
	}
}

// collapseL2Levels merges adjacent levels sharing the same price into one
// aggregated level, for GetL2.
func collapseL2Levels(levels []FallbackL2Level) []FallbackL2Level {
	var out []FallbackL2Level
	for _, lvl := range levels {
		if n := len(out); n > 0 && out[n-1].Price.Equal(lvl.Price) {
			out[n-1].Size = out[n-1].Size.Add(lvl.Size)
			out[n-1].Sources = append(out[n-1].Sources, lvl.Sources...)
			continue
		}
		out = append(out, lvl)
	}
	return out
}

// GetL2 returns an aggregated price-level view merging maker-limit orders
// (resting/floating-limit makers not already claimed by the fallback cross,
// per getMakerLimitAsks/Bids) with every supplied external fallback source,
// collapsed to one entry per price and capped at depth levels per side
// (depth <= 0 means uncapped). oracle is required on spot markets.
// fallbackBid/fallbackAsk drive the same maker/fallback exclusion
// FindNodesToFill uses; fallbacks is the set of external L2 generators to
// merge in (nil or empty means book-only). A market the DLOB holds no
// orders for is treated as an empty book.
func (d *DLOB) GetL2(marketType MarketType, marketIndex uint16, oracle decimal.Decimal, slot uint64, depth int, fallbackBid, fallbackAsk *decimal.Decimal, fallbacks []FallbackL2Source) (bids, asks []FallbackL2Level, err error) {
	d.UpdateRestingLimitOrders(slot)
	if marketType == MarketTypeSpot && oracle.IsZero() {
		return nil, nil, ErrMissingOracle
	}
	mb, ok := d.marketBook(marketType, marketIndex)
	if !ok {
		mb = newMarketBook(marketType, marketIndex)
	}

	askLevels := nodeGenToL2Levels(getMakerLimitAsks(mb, oracle, slot, marketType, fallbackBid), oracle, slot)
	bidLevels := nodeGenToL2Levels(getMakerLimitBids(mb, oracle, slot, marketType, fallbackAsk), oracle, slot)

	var fallbackAskGens, fallbackBidGens []func() (FallbackL2Level, bool)
	for _, fb := range fallbacks {
		if fb == nil {
			continue
		}
		fallbackAskGens = append(fallbackAskGens, sliceGenerator(fb.L2Asks()))
		fallbackBidGens = append(fallbackBidGens, sliceGenerator(fb.L2Bids()))
	}

	askBetter := func(x, y FallbackL2Level) bool { return x.Price.LessThan(y.Price) }
	askMerged := mergeL2Gens(sliceGenerator(askLevels), mergeManyL2(fallbackAskGens, askBetter), askBetter)
	asks = collapseL2Levels(drainL2(askMerged))
	if depth > 0 && len(asks) > depth {
		asks = asks[:depth]
	}

	bidBetter := func(x, y FallbackL2Level) bool { return x.Price.GreaterThan(y.Price) }
	bidMerged := mergeL2Gens(sliceGenerator(bidLevels), mergeManyL2(fallbackBidGens, bidBetter), bidBetter)
	bids = collapseL2Levels(drainL2(bidMerged))
	if depth > 0 && len(bids) > depth {
		bids = bids[:depth]
	}

	return bids, asks, nil
}

// GetL3 returns an uncapped, per-order book view: resting-limit orders
// only (floating-limit orders have no static price to report), one
// L3Level per order, best-first. A market the DLOB holds no orders for
// yields empty slices.
func (d *DLOB) GetL3(marketType MarketType, marketIndex uint16, slot uint64) (bids, asks []L3Level, err error) {
	d.UpdateRestingLimitOrders(slot)
	mb, ok := d.marketBook(marketType, marketIndex)
	if !ok {
		return nil, nil, nil
	}

	askGen := mb.RestingLimitAsk.Generator()
	for node, ok := askGen(); ok; node, ok = askGen() {
		if node.IsFullyFilled() {
			continue
		}
		asks = append(asks, L3Level{Price: node.Order.Price, Size: node.Order.Remaining(), Maker: node.UserAccount, OrderID: node.Order.OrderID})
	}

	bidGen := mb.RestingLimitBid.Generator()
	for node, ok := bidGen(); ok; node, ok = bidGen() {
		if node.IsFullyFilled() {
			continue
		}
		bids = append(bids, L3Level{Price: node.Order.Price, Size: node.Order.Remaining(), Maker: node.UserAccount, OrderID: node.Order.OrderID})
	}

	return bids, asks, nil
}
