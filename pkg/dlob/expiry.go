package dlob

// findExpiredNodesToFill scans every non-trigger list of a market for
// nodes whose max timestamp has elapsed by ts. Trigger-state orders are
// excluded — an inactive conditional order has no size at risk of
// expiring until it fires and is reclassified.
func (d *DLOB) findExpiredNodesToFill(mb *MarketBook, ts int64) []NodeToFill {
	var out []NodeToFill
	for _, list := range mb.allNonTriggerLists() {
		gen := list.Generator()
		for node, ok := gen(); ok; node, ok = gen() {
			if node.Order.isOrderExpired(ts) {
				out = append(out, NodeToFill{Node: node})
			}
		}
	}
	return out
}
