package dlob

// MarketBook bundles the ten NodeLists tracked for each (market_type,
// market_index): {resting_limit, floating_limit, taking_limit, market} x
// {bid, ask}, plus {trigger_above, trigger_below}.
type MarketBook struct {
	MarketType  MarketType
	MarketIndex uint16

	RestingLimitBid  *NodeList
	RestingLimitAsk  *NodeList
	FloatingLimitBid *NodeList
	FloatingLimitAsk *NodeList
	TakingLimitBid   *NodeList
	TakingLimitAsk   *NodeList
	MarketBid        *NodeList
	MarketAsk        *NodeList
	TriggerAbove     *NodeList
	TriggerBelow     *NodeList
}

func newMarketBook(marketType MarketType, marketIndex uint16) *MarketBook {
	return &MarketBook{
		MarketType:  marketType,
		MarketIndex: marketIndex,

		// resting/floating-limit asks ascend by price (best = lowest ask);
		// bids descend by price (best = highest bid).
		RestingLimitBid:  newNodeList(ClassRestingLimit, Bid, false),
		RestingLimitAsk:  newNodeList(ClassRestingLimit, Ask, true),
		FloatingLimitBid: newNodeList(ClassFloatingLimit, Bid, false),
		FloatingLimitAsk: newNodeList(ClassFloatingLimit, Ask, true),

		// taking-limit/market lists are sorted by submission slot (age),
		// ascending: oldest first regardless of side.
		TakingLimitBid: newNodeList(ClassTakingLimit, Bid, true),
		TakingLimitAsk: newNodeList(ClassTakingLimit, Ask, true),
		MarketBid:      newNodeList(ClassMarket, Bid, true),
		MarketAsk:      newNodeList(ClassMarket, Ask, true),

		// trigger.above ascends by trigger price, trigger.below descends.
		TriggerAbove: newNodeList(ClassTriggerAbove, Ask, true),
		TriggerBelow: newNodeList(ClassTriggerBelow, Bid, false),
	}
}

// list returns the NodeList hosting a given classification/side
// combination. Trigger lists ignore side (callers pass either value).
func (mb *MarketBook) list(class Classification, side Side) *NodeList {
	switch class {
	case ClassRestingLimit:
		if side == Bid {
			return mb.RestingLimitBid
		}
		return mb.RestingLimitAsk
	case ClassFloatingLimit:
		if side == Bid {
			return mb.FloatingLimitBid
		}
		return mb.FloatingLimitAsk
	case ClassTakingLimit:
		if side == Bid {
			return mb.TakingLimitBid
		}
		return mb.TakingLimitAsk
	case ClassMarket:
		if side == Bid {
			return mb.MarketBid
		}
		return mb.MarketAsk
	case ClassTriggerAbove:
		return mb.TriggerAbove
	case ClassTriggerBelow:
		return mb.TriggerBelow
	default:
		return nil
	}
}

// allNonTriggerLists returns the eight non-trigger lists, used by the
// expired-order scan, which inspects every resting/floating/taking/market
// list of a market regardless of side.
func (mb *MarketBook) allNonTriggerLists() []*NodeList {
	return []*NodeList{
		mb.RestingLimitBid, mb.RestingLimitAsk,
		mb.FloatingLimitBid, mb.FloatingLimitAsk,
		mb.TakingLimitBid, mb.TakingLimitAsk,
		mb.MarketBid, mb.MarketAsk,
	}
}
