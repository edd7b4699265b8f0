package dlob

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/btree"
)

// Generator is a lazy, forward, finite sequence. Calling a NodeList's
// Generator() method again produces a fresh, restartable sequence backed
// by a snapshot taken at call time: the DLOB is single-threaded, so
// concurrent mutation during iteration is not a supported usage, and a
// snapshot keeps the iterator well-defined even if a later insert/remove
// on other nodes happens before the caller is done.
type Generator func() (*OrderNode, bool)

// NodeList is the ordered multiset of OrderNodes of one (classification,
// side) pair. It is backed by a tidwall/btree.BTreeG keyed on a
// precomputed static sort key plus a FIFO insertion index — one tree per
// classification×side, since the DLOB carries ten such lists per market.
type NodeList struct {
	Classification Classification
	Side           Side

	tree  *btree.BTreeG[*OrderNode]
	index map[OrderKey]*OrderNode
	next  uint64
}

// newNodeList builds a NodeList whose tree order is ascending when
// ascending is true, descending otherwise — ties broken by FIFO insertion
// order.
func newNodeList(classification Classification, side Side, ascending bool) *NodeList {
	less := func(a, b *OrderNode) bool {
		cmp := a.sortKey.Cmp(b.sortKey)
		if cmp == 0 {
			return a.insertionIndex < b.insertionIndex
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	}
	return &NodeList{
		Classification: classification,
		Side:           side,
		tree:           btree.NewBTreeG(less),
		index:          make(map[OrderKey]*OrderNode),
	}
}

// Insert constructs a node for order/userAccount at this list's
// classification, assigns it the given static sort key, and places it at
// the comparator-defined position, tie-broken by insertion order (FIFO).
// A duplicate key replaces the prior node: the old node is removed and the
// new one is placed as a fresh insert (its new sort key and a new FIFO
// index), so the post-state is equivalent to a single insert.
func (nl *NodeList) Insert(order Order, sortKey decimal.Decimal) *OrderNode {
	key := order.Key()
	if existing, ok := nl.index[key]; ok {
		nl.tree.Delete(existing)
		delete(nl.index, key)
	}
	node := &OrderNode{
		Order:          order,
		Classification: nl.Classification,
		UserAccount:    order.UserAccount,
		sortKey:        sortKey,
		insertionIndex: nl.next,
	}
	nl.next++
	nl.tree.Set(node)
	nl.index[key] = node
	return node
}

// Remove deletes the node for key, if present. Missing keys are a no-op.
func (nl *NodeList) Remove(key OrderKey) {
	node, ok := nl.index[key]
	if !ok {
		return
	}
	nl.tree.Delete(node)
	delete(nl.index, key)
}

// Update replaces the stored order in place. The node's sort position
// never changes on Update: callers guarantee price is unchanged, so only
// mutable fields (fill amount, status) are expected to differ. Missing
// keys are a no-op.
func (nl *NodeList) Update(order Order) {
	node, ok := nl.index[order.Key()]
	if !ok {
		return
	}
	node.Order = order
}

// Get performs an O(1) lookup by (order_id, user_account).
func (nl *NodeList) Get(key OrderKey) (*OrderNode, bool) {
	node, ok := nl.index[key]
	return node, ok
}

// Len reports the number of nodes currently in the list.
func (nl *NodeList) Len() int {
	return len(nl.index)
}

// Generator returns a fresh, restartable forward iterator in sort order.
func (nl *NodeList) Generator() Generator {
	snapshot := make([]*OrderNode, 0, nl.tree.Len())
	nl.tree.Scan(func(n *OrderNode) bool {
		snapshot = append(snapshot, n)
		return true
	})
	i := 0
	return func() (*OrderNode, bool) {
		if i >= len(snapshot) {
			return nil, false
		}
		n := snapshot[i]
		i++
		return n, true
	}
}

// mergeBest returns a Generator over the best head across gens, advancing
// whichever generator produced the winning item each step. better(a, b)
// reports whether a should be preferred over b. Used to combine e.g.
// resting-limit and floating-limit lists of the same side into a single
// price-ordered sequence without materializing the union.
func mergeBest(gens []Generator, better func(a, b *OrderNode) bool) Generator {
	heads := make([]*OrderNode, len(gens))
	valid := make([]bool, len(gens))
	for i, g := range gens {
		heads[i], valid[i] = g()
	}
	return func() (*OrderNode, bool) {
		best := -1
		for i := range heads {
			if !valid[i] {
				continue
			}
			if best == -1 || better(heads[i], heads[best]) {
				best = i
			}
		}
		if best == -1 {
			return nil, false
		}
		winner := heads[best]
		heads[best], valid[best] = gens[best]()
		return winner, true
	}
}
