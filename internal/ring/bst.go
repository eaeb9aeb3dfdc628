package ring

// bstNode is one node of the ordered tree keyed by server hash.
//
// This tree is the single authoritative server set: slot occupancy and
// the sorted-order view used for range tiling are both derived from it
// (get and inOrder), rather than kept as separate structures that could
// drift out of sync with each other.
type bstNode struct {
	hash        uint32
	info        *ServerInfo
	left, right *bstNode
}

// bstTree is a plain (unbalanced) binary search tree. Virtual node counts
// stay small enough in practice (tens to low hundreds of servers) that
// skew is not a practical concern; a red-black or AVL balance scheme would
// be the next step if that stopped being true.
type bstTree struct {
	root *bstNode
	size int
}

func (t *bstTree) get(hash uint32) (*ServerInfo, bool) {
	n := t.root
	for n != nil {
		switch {
		case hash == n.hash:
			return n.info, true
		case hash < n.hash:
			n = n.left
		default:
			n = n.right
		}
	}
	return nil, false
}

// insert adds hash→info. Returns false without modifying the tree if hash
// is already present — the caller is expected to have already checked for
// a slot collision before calling this.
func (t *bstTree) insert(hash uint32, info *ServerInfo) bool {
	var inserted bool
	t.root, inserted = bstInsert(t.root, hash, info)
	if inserted {
		t.size++
	}
	return inserted
}

func bstInsert(n *bstNode, hash uint32, info *ServerInfo) (*bstNode, bool) {
	if n == nil {
		return &bstNode{hash: hash, info: info}, true
	}
	switch {
	case hash == n.hash:
		return n, false
	case hash < n.hash:
		var ok bool
		n.left, ok = bstInsert(n.left, hash, info)
		return n, ok
	default:
		var ok bool
		n.right, ok = bstInsert(n.right, hash, info)
		return n, ok
	}
}

// delete removes hash from the tree, returning false if it was absent.
func (t *bstTree) delete(hash uint32) bool {
	var removed bool
	t.root, removed = bstDelete(t.root, hash)
	if removed {
		t.size--
	}
	return removed
}

func bstDelete(n *bstNode, hash uint32) (*bstNode, bool) {
	if n == nil {
		return nil, false
	}
	switch {
	case hash < n.hash:
		var ok bool
		n.left, ok = bstDelete(n.left, hash)
		return n, ok
	case hash > n.hash:
		var ok bool
		n.right, ok = bstDelete(n.right, hash)
		return n, ok
	default:
		if n.left == nil {
			return n.right, true
		}
		if n.right == nil {
			return n.left, true
		}
		// Two children: splice in the in-order successor (leftmost of
		// the right subtree) and delete it from where it sat.
		successor := n.right
		for successor.left != nil {
			successor = successor.left
		}
		n.hash, n.info = successor.hash, successor.info
		n.right, _ = bstDelete(n.right, successor.hash)
		return n, true
	}
}

// inOrder returns every server hash in ascending order.
func (t *bstTree) inOrder() []uint32 {
	out := make([]uint32, 0, t.size)
	var walk func(*bstNode)
	walk = func(n *bstNode) {
		if n == nil {
			return
		}
		walk(n.left)
		out = append(out, n.hash)
		walk(n.right)
	}
	walk(t.root)
	return out
}
