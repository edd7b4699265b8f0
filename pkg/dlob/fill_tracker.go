package dlob

import "github.com/shopspring/decimal"

// fillTracker shadows base asset amount filled for the duration of a
// single FindNodesToFill call. Matching is a pure query: a simulated fill
// must be visible to later pairings within the same call, but never leak
// to callers or to the next call. Rather than mutating the NodeList's
// stored orders, this tracks simulated remaining quantities in a local map
// and discards it when the call returns.
type fillTracker struct {
	remainingOverride map[OrderKey]decimal.Decimal
}

func newFillTracker() *fillTracker {
	return &fillTracker{remainingOverride: make(map[OrderKey]decimal.Decimal)}
}

// remaining returns node's simulated remaining quantity: the tracked
// override if this call has already partially consumed it, otherwise the
// node's actual stored remaining quantity.
func (t *fillTracker) remaining(node *OrderNode) decimal.Decimal {
	if r, ok := t.remainingOverride[node.Key()]; ok {
		return r
	}
	return node.Order.Remaining()
}

// isFilled reports whether node's simulated remaining quantity is
// exhausted.
func (t *fillTracker) isFilled(node *OrderNode) bool {
	return t.remaining(node).LessThanOrEqual(decimal.Zero)
}

// fill simulates consuming qty of node's remaining quantity, visible to
// later lookups against this tracker within the same call only.
func (t *fillTracker) fill(node *OrderNode, qty decimal.Decimal) {
	t.remainingOverride[node.Key()] = t.remaining(node).Sub(qty)
}
