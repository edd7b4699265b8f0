package dlob

import "github.com/shopspring/decimal"

// filterGenerator wraps gen, skipping any node keep rejects.
func filterGenerator(gen Generator, keep func(*OrderNode) bool) Generator {
	return func() (*OrderNode, bool) {
		for {
			n, ok := gen()
			if !ok {
				return nil, false
			}
			if keep(n) {
				return n, true
			}
		}
	}
}

func bySlotAsc(a, b *OrderNode) bool {
	if a.Order.Slot == b.Order.Slot {
		return a.insertionIndex < b.insertionIndex
	}
	return a.Order.Slot < b.Order.Slot
}

// restingAsksGen merges resting-limit and floating-limit asks of mb into a
// single price-ascending sequence: makers are drawn from resting ∪
// floating, merged by effective price.
func restingAsksGen(mb *MarketBook, oracle decimal.Decimal, slot uint64) Generator {
	better := func(a, b *OrderNode) bool {
		pa, _ := a.EffectivePrice(oracle, slot)
		pb, _ := b.EffectivePrice(oracle, slot)
		if pa.Equal(pb) {
			return a.insertionIndex < b.insertionIndex
		}
		return pa.LessThan(pb)
	}
	return mergeBest([]Generator{mb.RestingLimitAsk.Generator(), mb.FloatingLimitAsk.Generator()}, better)
}

// restingBidsGen is restingAsksGen's bid-side mirror: best-first means
// highest effective price.
func restingBidsGen(mb *MarketBook, oracle decimal.Decimal, slot uint64) Generator {
	better := func(a, b *OrderNode) bool {
		pa, _ := a.EffectivePrice(oracle, slot)
		pb, _ := b.EffectivePrice(oracle, slot)
		if pa.Equal(pb) {
			return a.insertionIndex < b.insertionIndex
		}
		return pa.GreaterThan(pb)
	}
	return mergeBest([]Generator{mb.RestingLimitBid.Generator(), mb.FloatingLimitBid.Generator()}, better)
}

// takingAsksGen merges taking-limit and market asks of mb into a single
// age-ascending sequence (oldest submission first).
func takingAsksGen(mb *MarketBook) Generator {
	return mergeBest([]Generator{mb.TakingLimitAsk.Generator(), mb.MarketAsk.Generator()}, bySlotAsc)
}

func takingBidsGen(mb *MarketBook) Generator {
	return mergeBest([]Generator{mb.TakingLimitBid.Generator(), mb.MarketBid.Generator()}, bySlotAsc)
}

func notFullyFilled(n *OrderNode) bool { return !n.IsFullyFilled() }

// GetRestingLimitAsks returns every resting or floating-limit ask of
// (marketType, marketIndex), merged in best-first (lowest price) order,
// skipping fully-filled nodes. oracle is required for spot markets
// (ErrMissingOracle) since floating-limit effective prices depend on it.
func (d *DLOB) GetRestingLimitAsks(marketType MarketType, marketIndex uint16, oracle decimal.Decimal, slot uint64) (Generator, error) {
	return d.restingGetter(marketType, marketIndex, oracle, slot, restingAsksGen)
}

// GetRestingLimitBids is GetRestingLimitAsks's bid-side mirror.
func (d *DLOB) GetRestingLimitBids(marketType MarketType, marketIndex uint16, oracle decimal.Decimal, slot uint64) (Generator, error) {
	return d.restingGetter(marketType, marketIndex, oracle, slot, restingBidsGen)
}

func (d *DLOB) restingGetter(marketType MarketType, marketIndex uint16, oracle decimal.Decimal, slot uint64, raw func(*MarketBook, decimal.Decimal, uint64) Generator) (Generator, error) {
	d.UpdateRestingLimitOrders(slot)
	if marketType == MarketTypeSpot && oracle.IsZero() {
		return nil, ErrMissingOracle
	}
	mb, ok := d.marketBook(marketType, marketIndex)
	if !ok {
		return nil, ErrUnknownMarket
	}
	return filterGenerator(raw(mb, oracle, slot), notFullyFilled), nil
}

// GetTakingAsks returns every taking-limit or market ask of (marketType,
// marketIndex), oldest submission first, skipping fully-filled nodes.
func (d *DLOB) GetTakingAsks(marketType MarketType, marketIndex uint16, slot uint64) (Generator, error) {
	return d.takingGetter(marketType, marketIndex, slot, takingAsksGen)
}

// GetTakingBids is GetTakingAsks's bid-side mirror.
func (d *DLOB) GetTakingBids(marketType MarketType, marketIndex uint16, slot uint64) (Generator, error) {
	return d.takingGetter(marketType, marketIndex, slot, takingBidsGen)
}

func (d *DLOB) takingGetter(marketType MarketType, marketIndex uint16, slot uint64, raw func(*MarketBook) Generator) (Generator, error) {
	d.UpdateRestingLimitOrders(slot)
	mb, ok := d.marketBook(marketType, marketIndex)
	if !ok {
		return nil, ErrUnknownMarket
	}
	return filterGenerator(raw(mb), notFullyFilled), nil
}

// getMakerLimitAsks is getRestingLimitAsks restricted to maker candidates
// eligible to be crossed by a taker: on perp markets, if fallbackBid is
// supplied, asks priced below it are excluded — those are already matched
// directly against the fallback by findFallbackCrossingRestingAsks, and
// must not be double-counted as a maker for a taking order too.
func getMakerLimitAsks(mb *MarketBook, oracle decimal.Decimal, slot uint64, marketType MarketType, fallbackBid *decimal.Decimal) Generator {
	gen := restingAsksGen(mb, oracle, slot)
	gen = filterGenerator(gen, notFullyFilled)
	if marketType != MarketTypePerp || fallbackBid == nil {
		return gen
	}
	return filterGenerator(gen, func(n *OrderNode) bool {
		price, ok := n.EffectivePrice(oracle, slot)
		if !ok {
			return true
		}
		return price.GreaterThanOrEqual(*fallbackBid)
	})
}

// getMakerLimitBids mirrors getMakerLimitAsks: bids priced above
// fallbackAsk are excluded.
func getMakerLimitBids(mb *MarketBook, oracle decimal.Decimal, slot uint64, marketType MarketType, fallbackAsk *decimal.Decimal) Generator {
	gen := restingBidsGen(mb, oracle, slot)
	gen = filterGenerator(gen, notFullyFilled)
	if marketType != MarketTypePerp || fallbackAsk == nil {
		return gen
	}
	return filterGenerator(gen, func(n *OrderNode) bool {
		price, ok := n.EffectivePrice(oracle, slot)
		if !ok {
			return true
		}
		return price.LessThanOrEqual(*fallbackAsk)
	})
}

// concatGenerators drains first to exhaustion, then second: used by
// GetAsks/GetBids, where every taking node must sort ahead of every resting
// node regardless of price.
func concatGenerators(first, second Generator) Generator {
	drained := false
	return func() (*OrderNode, bool) {
		if !drained {
			if n, ok := first(); ok {
				return n, true
			}
			drained = true
		}
		return second()
	}
}

// oneShotGenerator yields n exactly once, then exhausts. A nil n exhausts
// immediately.
func oneShotGenerator(n *OrderNode) Generator {
	done := n == nil
	return func() (*OrderNode, bool) {
		if done {
			return nil, false
		}
		done = true
		return n, true
	}
}

// vammNode constructs the synthetic single-element vAMM quote GetAsks/
// GetBids fold into the resting tier on perp markets when a fallback price
// is supplied: a resting-limit-classified node at a fixed price, so
// EffectivePrice resolves it via limitPrice's fixed-price branch regardless
// of oracle or slot. Its size is a sentinel — the fallback is assumed to
// have whatever depth the caller's own fallback-fill instruction enforces,
// not a quantity this node tracks.
func vammNode(marketType MarketType, marketIndex uint16, side Side, price decimal.Decimal) *OrderNode {
	direction := Short
	if side == Bid {
		direction = Long
	}
	order := Order{
		MarketType:      marketType,
		MarketIndex:     marketIndex,
		Direction:       direction,
		OrderType:       OrderTypeLimit,
		Status:          StatusOpen,
		Price:           price,
		BaseAssetAmount: decimal.NewFromInt(1),
	}
	return &OrderNode{Order: order, Classification: ClassRestingLimit}
}

func bestPriceAsc(oracle decimal.Decimal, slot uint64) func(a, b *OrderNode) bool {
	return func(a, b *OrderNode) bool {
		pa, _ := a.EffectivePrice(oracle, slot)
		pb, _ := b.EffectivePrice(oracle, slot)
		if pa.Equal(pb) {
			return a.insertionIndex < b.insertionIndex
		}
		return pa.LessThan(pb)
	}
}

func bestPriceDesc(oracle decimal.Decimal, slot uint64) func(a, b *OrderNode) bool {
	return func(a, b *OrderNode) bool {
		pa, _ := a.EffectivePrice(oracle, slot)
		pb, _ := b.EffectivePrice(oracle, slot)
		if pa.Equal(pb) {
			return a.insertionIndex < b.insertionIndex
		}
		return pa.GreaterThan(pb)
	}
}

// GetAsks returns every ask node of a market in the book's canonical query
// order: every taking-limit/market ask first (oldest submission first),
// then every resting/floating-limit ask merged best-price-first — with a
// synthetic vAMM quote at fallbackAsk folded into that resting tier on perp
// markets when fallbackAsk is supplied. A market the DLOB holds no orders
// for is treated as an empty book.
func (d *DLOB) GetAsks(marketType MarketType, marketIndex uint16, oracle decimal.Decimal, slot uint64, fallbackAsk *decimal.Decimal) (Generator, error) {
	d.UpdateRestingLimitOrders(slot)
	if marketType == MarketTypeSpot && oracle.IsZero() {
		return nil, ErrMissingOracle
	}
	mb, ok := d.marketBook(marketType, marketIndex)
	if !ok {
		mb = newMarketBook(marketType, marketIndex)
	}

	taking := filterGenerator(takingAsksGen(mb), notFullyFilled)
	resting := filterGenerator(restingAsksGen(mb, oracle, slot), notFullyFilled)
	if marketType == MarketTypePerp && fallbackAsk != nil {
		vamm := oneShotGenerator(vammNode(marketType, marketIndex, Ask, *fallbackAsk))
		resting = mergeBest([]Generator{resting, vamm}, bestPriceAsc(oracle, slot))
	}
	return concatGenerators(taking, resting), nil
}

// GetBids is GetAsks's bid-side mirror.
func (d *DLOB) GetBids(marketType MarketType, marketIndex uint16, oracle decimal.Decimal, slot uint64, fallbackBid *decimal.Decimal) (Generator, error) {
	d.UpdateRestingLimitOrders(slot)
	if marketType == MarketTypeSpot && oracle.IsZero() {
		return nil, ErrMissingOracle
	}
	mb, ok := d.marketBook(marketType, marketIndex)
	if !ok {
		mb = newMarketBook(marketType, marketIndex)
	}

	taking := filterGenerator(takingBidsGen(mb), notFullyFilled)
	resting := filterGenerator(restingBidsGen(mb, oracle, slot), notFullyFilled)
	if marketType == MarketTypePerp && fallbackBid != nil {
		vamm := oneShotGenerator(vammNode(marketType, marketIndex, Bid, *fallbackBid))
		resting = mergeBest([]Generator{resting, vamm}, bestPriceDesc(oracle, slot))
	}
	return concatGenerators(taking, resting), nil
}

// BestBid returns the best bid node of a market per GetBids's merge order
// (next() of it), if any.
func (d *DLOB) BestBid(marketType MarketType, marketIndex uint16, oracle decimal.Decimal, slot uint64, fallbackBid *decimal.Decimal) (*OrderNode, bool) {
	gen, err := d.GetBids(marketType, marketIndex, oracle, slot, fallbackBid)
	if err != nil {
		return nil, false
	}
	return gen()
}

// BestAsk is BestBid's mirror.
func (d *DLOB) BestAsk(marketType MarketType, marketIndex uint16, oracle decimal.Decimal, slot uint64, fallbackAsk *decimal.Decimal) (*OrderNode, bool) {
	gen, err := d.GetAsks(marketType, marketIndex, oracle, slot, fallbackAsk)
	if err != nil {
		return nil, false
	}
	return gen()
}
