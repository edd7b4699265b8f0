package dlob

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Order is the immutable-per-update value describing a single open order.
// It is mutated only through DLOB.UpdateOrder (fill amount) and never
// otherwise: every other change to an order's state is a delete-then-insert
// at the DLOB boundary.
type Order struct {
	OrderID     uint64
	UserAccount UserAccount

	MarketType  MarketType
	MarketIndex uint16
	Direction   Direction
	OrderType   OrderType
	Status      OrderStatus

	BaseAssetAmount       decimal.Decimal
	BaseAssetAmountFilled decimal.Decimal

	Price             decimal.Decimal // 0 means "no limit price"
	OraclePriceOffset decimal.Decimal // nonzero => floating-limit

	AuctionStartPrice decimal.Decimal
	AuctionEndPrice   decimal.Decimal
	AuctionDuration   uint32 // slots
	Slot              uint64 // submission slot

	TriggerPrice     decimal.Decimal
	TriggerCondition TriggerCondition

	PostOnly bool
	MaxTS    int64 // unix seconds; 0 means never expires

	ReduceOnly        bool
	ImmediateOrCancel bool
}

// Key returns the order's DLOB identity.
func (o Order) Key() OrderKey {
	return OrderKey{OrderID: o.OrderID, UserAccount: o.UserAccount}
}

// Side is the resting side this order occupies: long orders are bids,
// short orders are asks.
func (o Order) Side() Side {
	if o.Direction == Long {
		return Bid
	}
	return Ask
}

// Remaining is the unfilled quantity: base_asset_amount - base_asset_amount_filled.
func (o Order) Remaining() decimal.Decimal {
	return o.BaseAssetAmount.Sub(o.BaseAssetAmountFilled)
}

// mustBeTriggered reports whether this order is a conditional order that
// has not yet fired — the inactive-trigger state.
func (o Order) mustBeTriggered() bool {
	isTriggerType := o.OrderType == OrderTypeTriggerMarket || o.OrderType == OrderTypeTriggerLimit
	return isTriggerType && o.TriggerCondition.armed()
}

// isTriggered reports whether a conditional order's trigger has fired.
func (o Order) isTriggered() bool {
	return o.TriggerCondition.fired()
}

// isOrderExpired reports whether the order's max_ts has elapsed by ts.
func (o Order) isOrderExpired(ts int64) bool {
	return o.MaxTS != 0 && o.MaxTS < ts
}

func (o Order) String() string {
	return fmt.Sprintf(
		"Order{id=%d user=%s market=%s/%d dir=%s type=%d status=%d amt=%s filled=%s price=%s slot=%d}",
		o.OrderID, o.UserAccount, o.MarketType, o.MarketIndex, o.Direction,
		o.OrderType, o.Status, o.BaseAssetAmount, o.BaseAssetAmountFilled,
		o.Price, o.Slot,
	)
}
