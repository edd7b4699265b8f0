package dlob

import (
	"github.com/shopspring/decimal"
)

// Classification tags the five states of the order classification state
// machine.
// An OrderNode's classification determines which NodeList hosts it and how
// its effective price is computed.
type Classification uint8

const (
	ClassRestingLimit Classification = iota
	ClassFloatingLimit
	ClassTakingLimit
	ClassMarket
	ClassTriggerAbove
	ClassTriggerBelow
)

func (c Classification) String() string {
	switch c {
	case ClassRestingLimit:
		return "resting_limit"
	case ClassFloatingLimit:
		return "floating_limit"
	case ClassTakingLimit:
		return "taking_limit"
	case ClassMarket:
		return "market"
	case ClassTriggerAbove:
		return "trigger_above"
	case ClassTriggerBelow:
		return "trigger_below"
	default:
		return "unknown"
	}
}

func (c Classification) isTrigger() bool {
	return c == ClassTriggerAbove || c == ClassTriggerBelow
}

// OrderNode binds an Order to its classification. sortKey and
// insertionIndex are computed once at insertion time and never change
// across Update calls — NodeList.Update replaces the stored order without
// moving the node: the node's sort position does not change across
// Update calls.
type OrderNode struct {
	Order          Order
	Classification Classification
	UserAccount    UserAccount

	sortKey        decimal.Decimal
	insertionIndex uint64
}

// Key returns the node's DLOB identity.
func (n *OrderNode) Key() OrderKey {
	return n.Order.Key()
}

// IsFullyFilled reports whether the node has no remaining quantity.
func (n *OrderNode) IsFullyFilled() bool {
	return n.Order.Remaining().LessThanOrEqual(decimal.Zero)
}

// EffectivePrice returns the price this node should be matched at, per
// its classification. Market-classified nodes have no price (ok=false):
// they are sorted and matched by submission slot instead. Trigger nodes
// are matched against the oracle price directly by the caller, not
// through this method.
func (n *OrderNode) EffectivePrice(oracle decimal.Decimal, slot uint64) (decimal.Decimal, bool) {
	switch n.Classification {
	case ClassMarket, ClassTriggerAbove, ClassTriggerBelow:
		return decimal.Zero, false
	default:
		return limitPrice(&n.Order, oracle, slot)
	}
}

// limitPrice is the effective-price rule for resting/floating/taking
// limit orders:
//  1. a nonzero oracle_price_offset makes the order float: oracle + offset.
//  2. otherwise, while the order's auction window is open, the price is the
//     linear interpolation between auction_start_price and auction_end_price.
//  3. otherwise, the order's fixed limit price (0 meaning "no price").
func limitPrice(order *Order, oracle decimal.Decimal, slot uint64) (decimal.Decimal, bool) {
	if !order.OraclePriceOffset.IsZero() {
		return oracle.Add(order.OraclePriceOffset), true
	}
	if auctionActive(order, slot) {
		return auctionPrice(order, slot), true
	}
	if order.Price.IsZero() {
		return decimal.Zero, false
	}
	return order.Price, true
}

// auctionActive reports whether slot still falls inside the order's
// auction window (the order has not yet crossed into resting-limit
// territory).
func auctionActive(order *Order, slot uint64) bool {
	if order.AuctionDuration == 0 {
		return false
	}
	return slot < order.Slot+uint64(order.AuctionDuration)
}

// auctionPrice linearly interpolates between the auction's start and end
// price over its duration in slots.
func auctionPrice(order *Order, slot uint64) decimal.Decimal {
	if order.AuctionDuration == 0 {
		return order.AuctionStartPrice
	}
	elapsed := int64(0)
	if slot > order.Slot {
		elapsed = int64(slot - order.Slot)
	}
	duration := int64(order.AuctionDuration)
	if elapsed >= duration {
		return order.AuctionEndPrice
	}
	delta := order.AuctionEndPrice.Sub(order.AuctionStartPrice)
	frac := decimal.NewFromInt(elapsed).Div(decimal.NewFromInt(duration))
	return order.AuctionStartPrice.Add(delta.Mul(frac))
}

// isResting reports whether a limit order is resting: post-only orders
// rest from inception; otherwise a limit order rests once its auction
// window has elapsed.
func isResting(order *Order, slot uint64) bool {
	if order.PostOnly {
		return true
	}
	return slot > order.Slot+uint64(order.AuctionDuration)
}

// isTaking reports the converse of isResting for orders that are
// otherwise limit-classified.
func isTaking(order *Order, slot uint64) bool {
	return !isResting(order, slot)
}
