package dlob

import "github.com/shopspring/decimal"

// NodeToTrigger is a conditional order whose trigger condition the current
// oracle price satisfies; the caller is expected to fire it via the
// exchange's trigger instruction and then call DLOB.Trigger.
type NodeToTrigger struct {
	Node *OrderNode
}

// FindNodesToTrigger scans trigger-above ascending while the oracle price
// is above the trigger price, and trigger-below descending while it is
// below, stopping at the first node that does not satisfy its condition
// (both lists are sorted on trigger price, so nothing further down either
// list can qualify either). Like every other query, it first runs the
// resting-limit promotion pass for slot. Returns nil immediately if the
// exchange is paused.
func (d *DLOB) FindNodesToTrigger(marketType MarketType, marketIndex uint16, slot uint64, oraclePrice decimal.Decimal, state StateAccount) []NodeToTrigger {
	d.UpdateRestingLimitOrders(slot)
	if state.ExchangePaused() {
		return nil
	}
	mb, ok := d.marketBook(marketType, marketIndex)
	if !ok {
		return nil
	}

	var out []NodeToTrigger

	above := mb.TriggerAbove.Generator()
	for node, ok := above(); ok; node, ok = above() {
		if oraclePrice.LessThanOrEqual(node.Order.TriggerPrice) {
			break
		}
		out = append(out, NodeToTrigger{Node: node})
	}

	below := mb.TriggerBelow.Generator()
	for node, ok := below(); ok; node, ok = below() {
		if oraclePrice.GreaterThanOrEqual(node.Order.TriggerPrice) {
			break
		}
		out = append(out, NodeToTrigger{Node: node})
	}

	return out
}
