package bintrie

import (
	"github.com/aglyzov/go-lpm/bitseq"
)

// node is either a data node (data == true, key and val are meaningful and
// key.Len() == bits) or a glue node (data == false, key is the empty Seq).
// The parent link is a non-owning back reference used by the insertion
// walk-back and by splicing.
type node struct {
	left, right, parent *node
	key                 bitseq.Seq
	val                 interface{}
	bits                int // number of key bits fixed at this point of the tree
	data                bool
}

// Trie is a path-compressed binary trie. The zero value is not ready for
// use, call New. All keys inserted into one trie must share the same
// byte capacity.
type Trie struct {
	root     *node
	numNodes int // data plus glue nodes
	numKeys  int // data nodes only
}

func New() *Trie {
	return &Trie{}
}

// Len returns the number of stored keys.
func (t *Trie) Len() int {
	return t.numKeys
}

// Size returns the number of tree nodes, glue nodes included.
func (t *Trie) Size() int {
	return t.numNodes
}

func (t *Trie) Empty() bool {
	return t.root == nil
}

// Get returns the value stored under exactly this key (bits and length).
func (t *Trie) Get(key bitseq.Seq) (val interface{}, ok bool) {
	if n := t.searchExact(key); n != nil {
		return n.val, true
	}
	return nil, false
}

// Best returns the value of the longest stored key that is a prefix of the
// given key.
func (t *Trie) Best(key bitseq.Seq) (val interface{}, ok bool) {
	if n := t.searchBest(key); n != nil {
		return n.val, true
	}
	return nil, false
}

// Set associates a value with a key. It returns the previous value and
// whether the key already existed; a glue node promoted to a data node
// counts as a fresh insert.
func (t *Trie) Set(key bitseq.Seq, val interface{}) (prev interface{}, existed bool) {
	return t.Replace(key, func(interface{}) interface{} { return val })
}

// Replace applies a func to the previous value of a key (nil when the key
// is fresh) and stores the result. Returns the previous value and whether
// the key already existed.
func (t *Trie) Replace(key bitseq.Seq, replace func(prev interface{}) interface{}) (prev interface{}, existed bool) {
	n, fresh := t.lookupNode(key)
	if !fresh {
		prev = n.val
	}
	n.val = replace(prev)
	return prev, !fresh
}

// Del removes a key and returns its value. Missing keys report ok == false
// and leave the trie untouched.
func (t *Trie) Del(key bitseq.Seq) (prev interface{}, ok bool) {
	n := t.searchExact(key)
	if n == nil {
		return nil, false
	}
	prev = n.val
	t.removeNode(n)
	return prev, true
}

// Clear drops all entries. The tree is dismantled iteratively with an
// explicit work list, structural depth can approach the key bit length and
// is not worth a recursion.
func (t *Trie) Clear() {
	stack := make([]*node, 0, 64)
	n := t.root

	for n != nil {
		left, right := n.left, n.right
		n.left, n.right, n.parent = nil, nil, nil
		n.key, n.val = bitseq.Seq{}, nil

		switch {
		case left != nil:
			if right != nil {
				stack = append(stack, right)
			}
			n = left
		case right != nil:
			n = right
		case len(stack) > 0:
			n = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		default:
			n = nil
		}
	}

	t.root = nil
	t.numNodes = 0
	t.numKeys = 0
}

// Iter calls a handler for every stored key in ascending bit order, shorter
// prefixes before their descendants. It returns whether all keys were
// visited. The handler can abort the walk by returning false.
func (t *Trie) Iter(handler func(key bitseq.Seq, val interface{}) bool) bool {
	if t.root == nil {
		return true
	}

	stack := make([]*node, 0, 64)
	stack = append(stack, t.root)

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n.data && !handler(n.key, n.val) {
			return false
		}
		if n.right != nil {
			stack = append(stack, n.right)
		}
		if n.left != nil {
			stack = append(stack, n.left)
		}
	}
	return true
}

// Keys returns all stored keys in ascending bit order.
func (t *Trie) Keys() []bitseq.Seq {
	keys := make([]bitseq.Seq, 0, t.numKeys)
	t.Iter(func(key bitseq.Seq, _ interface{}) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// lookupNode finds or creates the data node for a key and reports whether
// it was created (or promoted from glue) by this call.
func (t *Trie) lookupNode(key bitseq.Seq) (*node, bool) {
	if t.root == nil {
		n := &node{key: key.Clone(), bits: key.Len(), data: true}
		t.root = n
		t.numNodes++
		t.numKeys++
		return n, true
	}

	// Walk down to the nearest data node, skipping through glue. Leafs are
	// always data nodes so the walk stops either at a missing child or at a
	// data node at least as deep as the key. The probe key.Bit(n.bits) may
	// read past the key's logical length, which bitseq allows up to the
	// capacity; the walk-back below corrects any overshoot.
	bitLen := key.Len()
	n := t.root
	for n.bits < bitLen || !n.data {
		if key.Bit(n.bits) {
			if n.right == nil {
				break
			}
			n = n.right
		} else {
			if n.left == nil {
				break
			}
			n = n.left
		}
	}

	// n is a data node here: the landed key is valid for comparison.
	landedKey := n.key

	diffBit := key.FirstDiff(landedKey, min(n.bits, bitLen))

	// the heuristic descent may have gone too deep relative to the true
	// divergence point, back up above it
	p := n.parent
	for p != nil && p.bits >= diffBit {
		n = p
		p = n.parent
	}

	if diffBit == bitLen && n.bits == bitLen {
		// exact spot: either the key itself or a glue node to promote
		if !n.data {
			n.key = key.Clone()
			n.data = true
			t.numKeys++
			return n, true
		}
		return n, false
	}

	nn := &node{key: key.Clone(), bits: bitLen, data: true}
	t.numNodes++
	t.numKeys++

	switch {
	case n.bits == diffBit:
		// the new node goes below n
		nn.parent = n
		if key.Bit(n.bits) {
			n.right = nn
		} else {
			n.left = nn
		}

	case bitLen == diffBit:
		// the new key is a prefix of everything below n: splice nn in above.
		// landedKey decides the direction since it agrees with the path
		// through n beyond bitLen.
		if landedKey.Bit(bitLen) {
			nn.right = n
		} else {
			nn.left = n
		}
		nn.parent = n.parent
		t.relink(n.parent, n, nn)
		n.parent = nn

	default:
		// keys diverge above n: a glue node at diffBit takes both
		glue := &node{bits: diffBit, parent: n.parent}
		t.numNodes++

		if key.Bit(diffBit) {
			glue.left, glue.right = n, nn
		} else {
			glue.left, glue.right = nn, n
		}
		nn.parent = glue
		t.relink(glue.parent, n, glue)
		n.parent = glue
	}

	return nn, true
}

func (t *Trie) searchExact(key bitseq.Seq) *node {
	if t.root == nil {
		return nil
	}

	n := t.root
	for n.bits < key.Len() {
		if key.Bit(n.bits) {
			n = n.right
		} else {
			n = n.left
		}
		if n == nil {
			return nil
		}
	}

	// the node must sit at the key's exact depth and carry data
	if n.bits > key.Len() || !n.data {
		return nil
	}
	if key.HasPrefix(n.key, key.Len()) {
		return n
	}
	return nil
}

func (t *Trie) searchBest(key bitseq.Seq) *node {
	if t.root == nil {
		return nil
	}

	// collect candidate prefixes on the way down; a deeper node is not
	// guaranteed to match, so verification happens afterwards
	stack := make([]*node, 0, key.Len()+1)

	n := t.root
	for n.bits < key.Len() {
		if n.data {
			stack = append(stack, n)
		}
		if key.Bit(n.bits) {
			n = n.right
		} else {
			n = n.left
		}
		if n == nil {
			break
		}
	}
	if n != nil && n.data {
		stack = append(stack, n)
	}

	// deepest candidate first, the first verified one is the longest match
	for i := len(stack) - 1; i >= 0; i-- {
		c := stack[i]
		if c.key.Len() <= key.Len() && key.HasPrefix(c.key, c.key.Len()) {
			return c
		}
	}
	return nil
}

func (t *Trie) removeNode(n *node) {
	t.numKeys--

	if n.left != nil && n.right != nil {
		// both subtrees hold live data: the node stays as glue
		n.key = bitseq.Seq{}
		n.val = nil
		n.data = false
		return
	}

	if n.left == nil && n.right == nil {
		parent := n.parent
		t.numNodes--

		if parent == nil {
			t.root = nil
			return
		}

		var sibling *node
		if parent.right == n {
			parent.right = nil
			sibling = parent.left
		} else {
			parent.left = nil
			sibling = parent.right
		}
		n.parent = nil

		if parent.data {
			return
		}

		// the parent was glue and is down to one child: splice it out
		t.relink(parent.parent, parent, sibling)
		sibling.parent = parent.parent
		parent.left, parent.right, parent.parent = nil, nil, nil
		t.numNodes--
		return
	}

	// single child: splice the node out
	child := n.right
	if child == nil {
		child = n.left
	}
	parent := n.parent
	child.parent = parent
	t.relink(parent, n, child)
	n.left, n.right, n.parent = nil, nil, nil
	t.numNodes--
}

// relink replaces parent's child old with nn; a nil parent means old was
// the root.
func (t *Trie) relink(parent, old, nn *node) {
	switch {
	case parent == nil:
		t.root = nn
	case parent.right == old:
		parent.right = nn
	default:
		parent.left = nn
	}
}
