package dlob

import "github.com/shopspring/decimal"

// NodeToFill is a proposed fill: one taker node crossed against zero or
// more maker nodes (zero makers means the taker crosses a fallback
// liquidity source directly). Producing a NodeToFill never mutates the
// DLOB's stored orders — callers apply the fill by replaying the
// exchange's own fill instruction, then calling DLOB.UpdateOrder.
type NodeToFill struct {
	Node   *OrderNode
	Makers []*OrderNode
}

// determineMakerAndTaker resolves maker/taker between two crossing
// resting-limit orders:
//   - if both are post-only, neither can be a taker: no match.
//   - if exactly one is post-only, the other is the taker.
//   - otherwise, whichever order's auction completes first (slot +
//     auction_duration) is the taker; ties favor the ask as maker.
func determineMakerAndTaker(ask, bid *OrderNode) (taker, maker *OrderNode, ok bool) {
	if ask.Order.PostOnly && bid.Order.PostOnly {
		return nil, nil, false
	}
	if ask.Order.PostOnly {
		return bid, ask, true
	}
	if bid.Order.PostOnly {
		return ask, bid, true
	}
	askDone := ask.Order.Slot + uint64(ask.Order.AuctionDuration)
	bidDone := bid.Order.Slot + uint64(bid.Order.AuctionDuration)
	if askDone < bidDone {
		return ask, bid, true
	}
	if bidDone < askDone {
		return bid, ask, true
	}
	return bid, ask, true // tie: ask is maker
}

// findCrossingRestingLimitOrders scans every resting/floating ask (outer,
// best-first) against resting/floating bids (inner, restarted per ask)
// while the bid price is at or above the ask price, skipping same-user
// pairs and resolving maker/taker via determineMakerAndTaker. Quantities
// are simulated against tracker, never written back to the NodeLists
// directly.
func (d *DLOB) findCrossingRestingLimitOrders(mb *MarketBook, oracle decimal.Decimal, slot uint64, tracker *fillTracker) []NodeToFill {
	var out []NodeToFill
	asks := filterGenerator(restingAsksGen(mb, oracle, slot), notFullyFilled)
	for ask, ok := asks(); ok; ask, ok = asks() {
		if tracker.isFilled(ask) {
			continue
		}
		askPrice, hasAskPrice := ask.EffectivePrice(oracle, slot)
		if !hasAskPrice {
			continue
		}

		bids := filterGenerator(restingBidsGen(mb, oracle, slot), notFullyFilled)
		for bid, ok := bids(); ok; bid, ok = bids() {
			if tracker.isFilled(bid) {
				continue
			}
			bidPrice, hasBidPrice := bid.EffectivePrice(oracle, slot)
			if !hasBidPrice || bidPrice.LessThan(askPrice) {
				break
			}
			if ask.UserAccount == bid.UserAccount {
				continue
			}
			taker, maker, matched := determineMakerAndTaker(ask, bid)
			if !matched {
				continue
			}
			qty := decimal.Min(tracker.remaining(ask), tracker.remaining(bid))
			if qty.LessThanOrEqual(decimal.Zero) {
				continue
			}
			tracker.fill(ask, qty)
			tracker.fill(bid, qty)
			out = append(out, NodeToFill{Node: taker, Makers: []*OrderNode{maker}})
			if tracker.isFilled(ask) {
				break
			}
		}
	}
	return out
}

// findFallbackCrossingRestingAsks matches every resting/floating ask
// priced at or below fallbackBid directly against the fallback liquidity
// source, fully consuming the ask (the fallback is assumed to have
// unlimited depth at its quoted price for this purpose — the exchange's
// own fallback-fill instruction is responsible for partial fills against
// real AMM depth).
func (d *DLOB) findFallbackCrossingRestingAsks(mb *MarketBook, fallbackBid, oracle decimal.Decimal, slot uint64, tracker *fillTracker) []NodeToFill {
	var out []NodeToFill
	asks := filterGenerator(restingAsksGen(mb, oracle, slot), notFullyFilled)
	for ask, ok := asks(); ok; ask, ok = asks() {
		if tracker.isFilled(ask) {
			continue
		}
		price, hasPrice := ask.EffectivePrice(oracle, slot)
		if !hasPrice || price.GreaterThan(fallbackBid) {
			break
		}
		out = append(out, NodeToFill{Node: ask})
		tracker.fill(ask, tracker.remaining(ask))
	}
	return out
}

// findFallbackCrossingRestingBids mirrors findFallbackCrossingRestingAsks
// for bids priced at or above fallbackAsk.
func (d *DLOB) findFallbackCrossingRestingBids(mb *MarketBook, fallbackAsk, oracle decimal.Decimal, slot uint64, tracker *fillTracker) []NodeToFill {
	var out []NodeToFill
	bids := filterGenerator(restingBidsGen(mb, oracle, slot), notFullyFilled)
	for bid, ok := bids(); ok; bid, ok = bids() {
		if tracker.isFilled(bid) {
			continue
		}
		price, hasPrice := bid.EffectivePrice(oracle, slot)
		if !hasPrice || price.LessThan(fallbackAsk) {
			break
		}
		out = append(out, NodeToFill{Node: bid})
		tracker.fill(bid, tracker.remaining(bid))
	}
	return out
}

// doesCross is the crossing predicate for a taker on takerSide against a
// resting maker price maker.
//   - spot markets require the taker to carry a limit price: a market
//     order cannot cross on spot.
//   - on spot, a maker priced beyond the relevant fallback quote is
//     skipped — it would rather cross the fallback directly.
//   - otherwise a market taker (no price) always crosses; a limit taker
//     crosses only at-or-through the maker's price.
func doesCross(takerPrice decimal.Decimal, takerHasPrice bool, makerPrice decimal.Decimal, takerSide Side, marketType MarketType, fallback *decimal.Decimal) bool {
	if marketType == MarketTypeSpot && !takerHasPrice {
		return false
	}
	if marketType == MarketTypeSpot && fallback != nil {
		if takerSide == Ask && makerPrice.LessThan(*fallback) {
			return false
		}
		if takerSide == Bid && makerPrice.GreaterThan(*fallback) {
			return false
		}
	}
	if !takerHasPrice {
		return true
	}
	if takerSide == Ask {
		return takerPrice.LessThanOrEqual(makerPrice)
	}
	return takerPrice.GreaterThanOrEqual(makerPrice)
}

// findTakingNodesToFill scans every taking-limit or market node (outer,
// oldest-first) against eligible maker candidates on the opposite side
// (inner, restarted per taker) while they cross, accumulating every
// matched maker under a single NodeToFill per taker.
//
// The inner loop breaks on the first non-crossing maker rather than
// skipping past it. The maker generator merges the resting and
// floating-limit lists best-price-first by effective price, but each list
// is sorted on its static key: a post-only resting order still inside its
// auction window is sorted by its limit price yet priced by auction
// interpolation, so a later maker can still cross after such an order
// doesn't. Preserved as-is
// rather than fixed, since downstream callers may already depend on its
// exact fill ordering.
func (d *DLOB) findTakingNodesToFill(mb *MarketBook, oracle decimal.Decimal, slot uint64, marketType MarketType, fallbackBid, fallbackAsk *decimal.Decimal, tracker *fillTracker) []NodeToFill {
	var out []NodeToFill

	matchSide := func(takers Generator, makerGenFn func() Generator, takerSide Side, fallback *decimal.Decimal) {
		for taker, ok := takers(); ok; taker, ok = takers() {
			if tracker.isFilled(taker) {
				continue
			}
			takerPrice, takerHasPrice := taker.EffectivePrice(oracle, slot)

			var makers []*OrderNode
			makerGen := makerGenFn()
			for maker, ok := makerGen(); ok; maker, ok = makerGen() {
				if tracker.isFilled(maker) {
					continue
				}
				if taker.UserAccount == maker.UserAccount {
					continue
				}
				makerPrice, _ := maker.EffectivePrice(oracle, slot)
				if !doesCross(takerPrice, takerHasPrice, makerPrice, takerSide, marketType, fallback) {
					break
				}
				qty := decimal.Min(tracker.remaining(taker), tracker.remaining(maker))
				if qty.LessThanOrEqual(decimal.Zero) {
					continue
				}
				tracker.fill(taker, qty)
				tracker.fill(maker, qty)
				makers = append(makers, maker)
				if tracker.isFilled(taker) {
					break
				}
			}
			if len(makers) > 0 {
				out = append(out, NodeToFill{Node: taker, Makers: makers})
			}
		}
	}

	takingAsks := filterGenerator(takingAsksGen(mb), func(n *OrderNode) bool { return notFullyFilled(n) && !tracker.isFilled(n) })
	matchSide(takingAsks, func() Generator { return getMakerLimitBids(mb, oracle, slot, marketType, fallbackAsk) }, Ask, fallbackBid)

	takingBids := filterGenerator(takingBidsGen(mb), func(n *OrderNode) bool { return notFullyFilled(n) && !tracker.isFilled(n) })
	matchSide(takingBids, func() Generator { return getMakerLimitAsks(mb, oracle, slot, marketType, fallbackBid) }, Bid, fallbackAsk)

	return out
}

// isFallbackAvailableLiquiditySource reports whether a taking order's own
// minimum auction duration has elapsed, meaning fallback liquidity may now
// satisfy it directly rather than reserving priority for JIT makers during
// its auction window.
func isFallbackAvailableLiquiditySource(order *Order, minAuctionDuration uint32, slot uint64) bool {
	if minAuctionDuration == 0 {
		return true
	}
	return slot >= order.Slot+uint64(minAuctionDuration)
}

// findFallbackCrossingTakingNodes matches taking-limit/market nodes
// directly against fallback liquidity, independent of maker matching: on
// spot markets fallback is always eligible once the taker crosses it; on
// perp markets it is gated by isFallbackAvailableLiquiditySource so JIT
// makers get first refusal during a taker's own auction window.
func (d *DLOB) findFallbackCrossingTakingNodes(mb *MarketBook, oracle decimal.Decimal, slot uint64, marketType MarketType, fallbackBid, fallbackAsk *decimal.Decimal, minAuctionDuration uint32, tracker *fillTracker) []NodeToFill {
	var out []NodeToFill

	matchFallback := func(takers Generator, takerSide Side, fallback *decimal.Decimal) {
		if fallback == nil {
			return
		}
		for taker, ok := takers(); ok; taker, ok = takers() {
			if tracker.isFilled(taker) {
				continue
			}
			takerPrice, takerHasPrice := taker.EffectivePrice(oracle, slot)
			if !doesCross(takerPrice, takerHasPrice, *fallback, takerSide, marketType, nil) {
				continue
			}
			if marketType != MarketTypeSpot && !isFallbackAvailableLiquiditySource(&taker.Order, minAuctionDuration, slot) {
				continue
			}
			out = append(out, NodeToFill{Node: taker})
			tracker.fill(taker, tracker.remaining(taker))
		}
	}

	takingAsks := filterGenerator(takingAsksGen(mb), func(n *OrderNode) bool { return notFullyFilled(n) && !tracker.isFilled(n) })
	matchFallback(takingAsks, Ask, fallbackBid)

	takingBids := filterGenerator(takingBidsGen(mb), func(n *OrderNode) bool { return notFullyFilled(n) && !tracker.isFilled(n) })
	matchFallback(takingBids, Bid, fallbackAsk)

	return out
}

// mergeByTakerKey unions a and b, deduplicating by taker key (first
// occurrence wins position) and concatenating maker lists for repeated
// taker keys. Used by FindNodesToFill for perp markets, where the same
// taker can appear in both the resting-cross and taking-cross passes.
func mergeByTakerKey(a, b []NodeToFill) []NodeToFill {
	order := make([]OrderKey, 0, len(a)+len(b))
	byKey := make(map[OrderKey]*NodeToFill, len(a)+len(b))
	for _, group := range [][]NodeToFill{a, b} {
		for _, ntf := range group {
			k := ntf.Node.Key()
			if existing, ok := byKey[k]; ok {
				existing.Makers = append(existing.Makers, ntf.Makers...)
				continue
			}
			copied := ntf
			byKey[k] = &copied
			order = append(order, k)
		}
	}
	out := make([]NodeToFill, 0, len(order))
	for _, k := range order {
		out = append(out, *byKey[k])
	}
	return out
}

// FindNodesToFill is the top-level matching query. It always re-runs the
// resting-limit promotion pass first, then returns nil immediately if the
// market is fill-paused. Perp markets merge the
// resting-cross and taking-cross passes by taker key; spot markets keep
// them as separate entries. Expired nodes are always appended last,
// unmerged. The returned NodeToFills never mutate the DLOB — they
// describe a proposed fill for the caller to apply via UpdateOrder.
func (d *DLOB) FindNodesToFill(marketType MarketType, marketIndex uint16, slot uint64, ts int64, oracle decimal.Decimal, fallbackBid, fallbackAsk *decimal.Decimal, market MarketAccount) []NodeToFill {
	d.UpdateRestingLimitOrders(slot)

	if market.FillPaused() {
		return nil
	}
	mb, ok := d.marketBook(marketType, marketIndex)
	if !ok {
		return nil
	}

	ammPaused := market.AmmPaused()
	var minAuctionDuration uint32
	if marketType == MarketTypePerp {
		minAuctionDuration = market.MinAuctionDuration()
	}

	tracker := newFillTracker()

	resting := d.findCrossingRestingLimitOrders(mb, oracle, slot, tracker)
	if !ammPaused {
		if fallbackBid != nil {
			resting = append(resting, d.findFallbackCrossingRestingAsks(mb, *fallbackBid, oracle, slot, tracker)...)
		}
		if fallbackAsk != nil {
			resting = append(resting, d.findFallbackCrossingRestingBids(mb, *fallbackAsk, oracle, slot, tracker)...)
		}
	}

	taking := d.findTakingNodesToFill(mb, oracle, slot, marketType, fallbackBid, fallbackAsk, tracker)
	if !ammPaused {
		taking = append(taking, d.findFallbackCrossingTakingNodes(mb, oracle, slot, marketType, fallbackBid, fallbackAsk, minAuctionDuration, tracker)...)
	}

	expired := d.findExpiredNodesToFill(mb, ts)

	if marketType == MarketTypeSpot {
		merged := make([]NodeToFill, 0, len(resting)+len(taking)+len(expired))
		merged = append(merged, resting...)
		merged = append(merged, taking...)
		merged = append(merged, expired...)
		return merged
	}

	merged := mergeByTakerKey(resting, taking)
	return append(merged, expired...)
}

// FindJitAuctionNodesToFill is a focused variant of findTakingNodesToFill
// restricted to orders still inside their own auction window (taking-limit
// only — market orders have no auction to speak of) and without fallback
// involvement, for collaborators implementing just-in-time auction
// matching.
func (d *DLOB) FindJitAuctionNodesToFill(marketType MarketType, marketIndex uint16, slot uint64, oracle decimal.Decimal) []NodeToFill {
	d.UpdateRestingLimitOrders(slot)
	mb, ok := d.marketBook(marketType, marketIndex)
	if !ok {
		return nil
	}
	tracker := newFillTracker()

	var out []NodeToFill
	matchSide := func(takers Generator, makerGenFn func() Generator, takerSide Side) {
		for taker, ok := takers(); ok; taker, ok = takers() {
			if tracker.isFilled(taker) {
				continue
			}
			takerPrice, takerHasPrice := taker.EffectivePrice(oracle, slot)
			var makers []*OrderNode
			makerGen := makerGenFn()
			for maker, ok := makerGen(); ok; maker, ok = makerGen() {
				if tracker.isFilled(maker) || taker.UserAccount == maker.UserAccount {
					continue
				}
				makerPrice, _ := maker.EffectivePrice(oracle, slot)
				if !doesCross(takerPrice, takerHasPrice, makerPrice, takerSide, marketType, nil) {
					break
				}
				qty := decimal.Min(tracker.remaining(taker), tracker.remaining(maker))
				if qty.LessThanOrEqual(decimal.Zero) {
					continue
				}
				tracker.fill(taker, qty)
				tracker.fill(maker, qty)
				makers = append(makers, maker)
				if tracker.isFilled(taker) {
					break
				}
			}
			if len(makers) > 0 {
				out = append(out, NodeToFill{Node: taker, Makers: makers})
			}
		}
	}

	asks := filterGenerator(mb.TakingLimitAsk.Generator(), notFullyFilled)
	matchSide(asks, func() Generator { return getMakerLimitBids(mb, oracle, slot, marketType, nil) }, Ask)
	bids := filterGenerator(mb.TakingLimitBid.Generator(), notFullyFilled)
	matchSide(bids, func() Generator { return getMakerLimitAsks(mb, oracle, slot, marketType, nil) }, Bid)

	return out
}
