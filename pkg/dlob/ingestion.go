package dlob

import "github.com/shopspring/decimal"

// UserOrders is one user's snapshot order set, as InitFromSnapshot expects
// to receive it from the exchange's account-snapshot collaborator.
type UserOrders struct {
	UserAccount UserAccount
	Orders      []Order
}

// OrderRecord links an order to the user account that owns it — the shape
// HandleOrderRecord and InitFromOrders consume.
type OrderRecord struct {
	UserAccount UserAccount
	Order       Order
}

// OrderAction is the action tag of an OrderActionRecord.
type OrderAction uint8

const (
	ActionPlace OrderAction = iota
	ActionExpire
	ActionTrigger
	ActionFill
	ActionCancel
)

// OrderActionSide names one side (taker or maker) of an OrderActionRecord.
// Present is false when that side does not apply to this record (e.g. a
// maker-less fallback fill); NewCumulativeFilled is only meaningful for
// ActionFill.
type OrderActionSide struct {
	Present             bool
	UserAccount         UserAccount
	OrderID             uint64
	NewCumulativeFilled decimal.Decimal
}

func (s OrderActionSide) key() OrderKey {
	return OrderKey{OrderID: s.OrderID, UserAccount: s.UserAccount}
}

// OrderActionRecord mirrors the exchange's order-action event log entry:
// place/expire are ignored by the DLOB, trigger/fill/cancel are dispatched
// per-side.
type OrderActionRecord struct {
	Action OrderAction
	Taker  OrderActionSide
	Maker  OrderActionSide
}

// InitFromSnapshot performs the once-per-DLOB bulk ingest of every user's
// open orders. Subsequent calls are no-ops that report false — already
// having initialized is a signal to the caller, not an error.
func (d *DLOB) InitFromSnapshot(users []UserOrders, slot uint64) bool {
	if d.initialized {
		return false
	}
	for _, user := range users {
		for _, order := range user.Orders {
			order.UserAccount = user.UserAccount
			d.InsertOrder(order, slot)
		}
	}
	d.initialized = true
	return true
}

// InitFromOrders is InitFromSnapshot's flat-record equivalent, for
// collaborators that already hand over a flattened (user, order) stream.
func (d *DLOB) InitFromOrders(records []OrderRecord, slot uint64) bool {
	if d.initialized {
		return false
	}
	for _, rec := range records {
		order := rec.Order
		order.UserAccount = rec.UserAccount
		d.InsertOrder(order, slot)
	}
	d.initialized = true
	return true
}

// HandleOrderRecord ingests a single new-order event; equivalent to
// InsertOrder.
func (d *DLOB) HandleOrderRecord(rec OrderRecord, slot uint64) {
	order := rec.Order
	order.UserAccount = rec.UserAccount
	d.InsertOrder(order, slot)
}

// HandleOrderActionRecord dispatches one exchange action-log entry.
// place/expire are ignored: the DLOB has already placed the order, and
// expiry is discovered lazily on query.
func (d *DLOB) HandleOrderActionRecord(rec OrderActionRecord, slot uint64) {
	switch rec.Action {
	case ActionPlace, ActionExpire:
		return
	case ActionTrigger:
		if rec.Taker.Present {
			d.Trigger(rec.Taker.key(), slot)
		}
		if rec.Maker.Present {
			d.Trigger(rec.Maker.key(), slot)
		}
	case ActionFill:
		if rec.Taker.Present {
			d.UpdateOrder(rec.Taker.key(), slot, rec.Taker.NewCumulativeFilled)
		}
		if rec.Maker.Present {
			d.UpdateOrder(rec.Maker.key(), slot, rec.Maker.NewCumulativeFilled)
		}
	case ActionCancel:
		if rec.Taker.Present {
			d.DeleteOrder(rec.Taker.key(), slot)
		}
		if rec.Maker.Present {
			d.DeleteOrder(rec.Maker.key(), slot)
		}
	}
}

// InsertOrder ingests a single order: ignored if its status is init or
// its order type is unsupported; otherwise it is classified and placed in
// the corresponding NodeList. Idempotent: inserting the same key twice
// leaves the DLOB equivalent to a single insert (the second call removes
// the first from whichever list hosts it and inserts afresh, at the back
// of its equal-sort-key FIFO group).
func (d *DLOB) InsertOrder(order Order, slot uint64) {
	d.UpdateRestingLimitOrders(slot)
	d.insertNode(order, slot)
}

// UpdateOrder applies a new cumulative filled amount to the order at key.
// A missing key is ignored. Matching the newly-stored filled amount to the
// already-stored one is a no-op (idempotence); matching the order's full
// size deletes it; otherwise the fill field is updated in place without
// moving the node.
func (d *DLOB) UpdateOrder(key OrderKey, slot uint64, newCumulativeFilled decimal.Decimal) {
	d.UpdateRestingLimitOrders(slot)

	loc, ok := d.locations[key]
	if !ok {
		return
	}
	mb, ok := d.marketBook(loc.MarketType, loc.MarketIndex)
	if !ok {
		return
	}
	list := mb.list(loc.Classification, loc.Side)
	if list == nil {
		return
	}
	node, ok := list.Get(key)
	if !ok {
		return
	}

	if newCumulativeFilled.Equal(node.Order.BaseAssetAmount) {
		d.removeNode(key)
		return
	}
	if newCumulativeFilled.Equal(node.Order.BaseAssetAmountFilled) {
		return
	}

	updated := node.Order
	updated.BaseAssetAmountFilled = newCumulativeFilled
	list.Update(updated)
}

// DeleteOrder removes the order at key from the DLOB. Missing keys are a
// no-op.
func (d *DLOB) DeleteOrder(key OrderKey, slot uint64) {
	d.UpdateRestingLimitOrders(slot)
	d.removeNode(key)
}

// Trigger fires a conditional order: it is removed from its
// trigger.{above|below} list and re-inserted via the general
// classification path, which now resolves it to Market, Taking-Limit, or
// Floating-Limit per its own fields.
func (d *DLOB) Trigger(key OrderKey, slot uint64) {
	d.UpdateRestingLimitOrders(slot)

	loc, ok := d.locations[key]
	if !ok || !loc.Classification.isTrigger() {
		return
	}
	mb, ok := d.marketBook(loc.MarketType, loc.MarketIndex)
	if !ok {
		return
	}
	list := mb.list(loc.Classification, loc.Side)
	if list == nil {
		return
	}
	node, ok := list.Get(key)
	if !ok {
		return
	}

	order := node.Order
	switch order.TriggerCondition {
	case TriggerAbove:
		order.TriggerCondition = TriggerTriggeredAbove
	case TriggerBelow:
		order.TriggerCondition = TriggerTriggeredBelow
	}

	list.Remove(key)
	delete(d.locations, key)
	d.insertNode(order, slot)
}

// GetDLOBOrders returns every order currently tracked by the DLOB, across
// every market and classification.
func (d *DLOB) GetDLOBOrders() []OrderRecord {
	var out []OrderRecord
	for _, mb := range d.books {
		lists := append(append([]*NodeList{}, mb.allNonTriggerLists()...), mb.TriggerAbove, mb.TriggerBelow)
		for _, list := range lists {
			gen := list.Generator()
			for node, ok := gen(); ok; node, ok = gen() {
				out = append(out, OrderRecord{UserAccount: node.UserAccount, Order: node.Order})
			}
		}
	}
	return out
}
