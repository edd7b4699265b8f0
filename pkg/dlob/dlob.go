package dlob

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// nodeLocation records which (market, classification, side) list currently
// hosts a key, so DeleteOrder/UpdateOrder/Trigger can find the hosting
// NodeList in O(1) instead of scanning every list of every market.
type nodeLocation struct {
	MarketType     MarketType
	MarketIndex    uint16
	Classification Classification
	Side           Side
}

// DLOB is the top-level container: it owns every MarketBook, an index of
// open-order keys per market type, and the monotonic slot watermark for
// resting-limit promotion. A *DLOB is not safe for concurrent use — see
// internal/service.Supervisor for the synchronizing shell consumers
// needing concurrency should wrap it in.
type DLOB struct {
	books       map[marketBookKey]*MarketBook
	openOrders  map[MarketType]map[OrderKey]struct{}
	locations   map[OrderKey]nodeLocation
	maxSlot     uint64
	initialized bool

	logger zerolog.Logger
}

// New constructs an empty DLOB.
func New() *DLOB {
	return &DLOB{
		books:      make(map[marketBookKey]*MarketBook),
		openOrders: make(map[MarketType]map[OrderKey]struct{}),
		locations:  make(map[OrderKey]nodeLocation),
		logger:     log.With().Str("component", "dlob").Logger(),
	}
}

// Clear removes every order and resets the DLOB to its just-constructed
// state, including the initialized flag and the slot watermark.
func (d *DLOB) Clear() {
	d.books = make(map[marketBookKey]*MarketBook)
	d.openOrders = make(map[MarketType]map[OrderKey]struct{})
	d.locations = make(map[OrderKey]nodeLocation)
	d.maxSlot = 0
	d.initialized = false
}

// MaxSlotForRestingLimitOrders returns the current promotion watermark.
func (d *DLOB) MaxSlotForRestingLimitOrders() uint64 {
	return d.maxSlot
}

func (d *DLOB) ensureMarketBook(marketType MarketType, marketIndex uint16) *MarketBook {
	key := marketBookKey{MarketType: marketType, MarketIndex: marketIndex}
	mb, ok := d.books[key]
	if !ok {
		mb = newMarketBook(marketType, marketIndex)
		d.books[key] = mb
	}
	return mb
}

func (d *DLOB) marketBook(marketType MarketType, marketIndex uint16) (*MarketBook, bool) {
	mb, ok := d.books[marketBookKey{MarketType: marketType, MarketIndex: marketIndex}]
	return mb, ok
}

func (d *DLOB) markOpen(marketType MarketType, key OrderKey) {
	set, ok := d.openOrders[marketType]
	if !ok {
		set = make(map[OrderKey]struct{})
		d.openOrders[marketType] = set
	}
	set[key] = struct{}{}
}

func (d *DLOB) unmarkOpen(marketType MarketType, key OrderKey) {
	if set, ok := d.openOrders[marketType]; ok {
		delete(set, key)
	}
}

// IsOpen reports whether key is currently tracked as an open order of
// marketType (invariant I4).
func (d *DLOB) IsOpen(marketType MarketType, key OrderKey) bool {
	set, ok := d.openOrders[marketType]
	if !ok {
		return false
	}
	_, ok = set[key]
	return ok
}

// classify runs the order classification state machine. ok is false when
// the order should be silently ignored: status=init or an unsupported
// order type.
func classify(order *Order, slot uint64) (Classification, bool) {
	if order.Status == StatusInit {
		return 0, false
	}
	if !order.OrderType.supported() {
		return 0, false
	}
	if order.mustBeTriggered() {
		if order.TriggerCondition == TriggerAbove {
			return ClassTriggerAbove, true
		}
		return ClassTriggerBelow, true
	}
	switch order.OrderType {
	case OrderTypeMarket, OrderTypeTriggerMarket, OrderTypeOracle:
		return ClassMarket, true
	case OrderTypeLimit, OrderTypeTriggerLimit:
		if !order.OraclePriceOffset.IsZero() {
			return ClassFloatingLimit, true
		}
		if isResting(order, slot) {
			return ClassRestingLimit, true
		}
		return ClassTakingLimit, true
	default:
		return 0, false
	}
}

// sortKey computes the static NodeList sort key for a classified order:
// resting/floating-limit lists key on the static price component (fixed
// price, or oracle offset for floating orders — never the live
// oracle-adjusted price), taking/market lists key on submission slot,
// trigger lists key on trigger price.
func sortKey(order *Order, class Classification) decimal.Decimal {
	switch class {
	case ClassRestingLimit:
		return order.Price
	case ClassFloatingLimit:
		return order.OraclePriceOffset
	case ClassTakingLimit, ClassMarket:
		return decimal.NewFromInt(int64(order.Slot))
	case ClassTriggerAbove, ClassTriggerBelow:
		return order.TriggerPrice
	default:
		return decimal.Zero
	}
}

// insertNode is the common tail of InsertOrder and Trigger's
// re-classification: ensure the market book exists, classify the order,
// insert it into the chosen NodeList, and record its location and
// openness. A key already present is first removed from whichever list
// hosts it. Ignored inputs are a silent no-op.
func (d *DLOB) insertNode(order Order, slot uint64) {
	class, ok := classify(&order, slot)
	if !ok {
		d.logger.Debug().
			Uint64("orderID", order.OrderID).
			Int("orderType", int(order.OrderType)).
			Int("status", int(order.Status)).
			Msg("ignoring unsupported or uninitialized order")
		return
	}

	mb := d.ensureMarketBook(order.MarketType, order.MarketIndex)
	list := mb.list(class, order.Side())
	if list == nil {
		d.logger.Error().
			Stringer("classification", class).
			Msg("internal invariant violation: no host list for classification")
		return
	}

	key := order.Key()
	if _, exists := d.locations[key]; exists {
		d.removeNode(key)
	}
	list.Insert(order, sortKey(&order, class))
	d.locations[key] = nodeLocation{
		MarketType:     order.MarketType,
		MarketIndex:    order.MarketIndex,
		Classification: class,
		Side:           order.Side(),
	}

	if order.Status == StatusOpen {
		d.markOpen(order.MarketType, key)
	}
}

// removeNode removes key from whichever list currently hosts it, and
// clears its location/openness tracking. Missing keys are a no-op.
func (d *DLOB) removeNode(key OrderKey) {
	loc, ok := d.locations[key]
	if !ok {
		return
	}
	mb, ok := d.marketBook(loc.MarketType, loc.MarketIndex)
	if ok {
		if list := mb.list(loc.Classification, loc.Side); list != nil {
			list.Remove(key)
		}
	}
	delete(d.locations, key)
	d.unmarkOpen(loc.MarketType, key)
}

// UpdateRestingLimitOrders promotes Taking-Limit orders whose auction
// window has elapsed to Resting-Limit. It is idempotent and monotone: a
// no-op unless slot strictly advances the watermark, guaranteeing
// at-most-one promotion pass per slot increment. Promotion runs in two
// phases — collect, then move — to avoid invalidating the taking-limit
// list's iteration order mid-scan.
func (d *DLOB) UpdateRestingLimitOrders(slot uint64) {
	if slot <= d.maxSlot {
		return
	}

	for _, mb := range d.books {
		promoteIfResting := func(takingList, restingList *NodeList) {
			var toPromote []*OrderNode
			gen := takingList.Generator()
			for node, ok := gen(); ok; node, ok = gen() {
				if isResting(&node.Order, slot) {
					toPromote = append(toPromote, node)
				}
			}
			for _, node := range toPromote {
				order := node.Order
				takingList.Remove(order.Key())
				restingList.Insert(order, sortKey(&order, ClassRestingLimit))
				d.locations[order.Key()] = nodeLocation{
					MarketType:     order.MarketType,
					MarketIndex:    order.MarketIndex,
					Classification: ClassRestingLimit,
					Side:           order.Side(),
				}
			}
		}
		promoteIfResting(mb.TakingLimitBid, mb.RestingLimitBid)
		promoteIfResting(mb.TakingLimitAsk, mb.RestingLimitAsk)
	}

	d.maxSlot = slot
}
