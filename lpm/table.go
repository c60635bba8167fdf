// Package lpm maps IP subnets to values and answers longest-prefix-match
// queries for individual addresses. It keeps one compressed binary trie
// per address family, 4-byte keys for IPv4 and 16-byte keys for IPv6.
package lpm

import (
	"net/netip"

	"github.com/aglyzov/go-lpm/bintrie"
	"github.com/aglyzov/go-lpm/bitseq"
)

// Table is a dual-family longest-prefix-match table. It is not safe for
// concurrent mutation.
type Table struct {
	v4 *bintrie.Trie
	v6 *bintrie.Trie
}

func New() *Table {
	return &Table{
		v4: bintrie.New(),
		v6: bintrie.New(),
	}
}

// Len returns the number of stored subnets over both families.
func (t *Table) Len() int {
	return t.v4.Len() + t.v6.Len()
}

// Insert associates a value with a subnet, overwriting a previous value of
// the same subnet. 4-in-6 mapped prefixes go into the IPv4 trie.
func (t *Table) Insert(pfx netip.Prefix, val interface{}) (prev interface{}, existed bool) {
	key, v4 := prefixKey(pfx)
	return t.trie(v4).Set(key, val)
}

// Get returns the value stored for exactly this subnet.
func (t *Table) Get(pfx netip.Prefix) (val interface{}, ok bool) {
	key, v4 := prefixKey(pfx)
	return t.trie(v4).Get(key)
}

// Delete removes a subnet and returns its value.
func (t *Table) Delete(pfx netip.Prefix) (prev interface{}, ok bool) {
	key, v4 := prefixKey(pfx)
	return t.trie(v4).Del(key)
}

// Lookup returns the value of the most specific subnet containing addr.
func (t *Table) Lookup(addr netip.Addr) (val interface{}, ok bool) {
	key, v4 := addrKey(addr)
	return t.trie(v4).Best(key)
}

// Clear drops all entries of both families.
func (t *Table) Clear() {
	t.v4.Clear()
	t.v6.Clear()
}

func (t *Table) trie(v4 bool) *bintrie.Trie {
	if v4 {
		return t.v4
	}
	return t.v6
}

func prefixKey(pfx netip.Prefix) (bitseq.Seq, bool) {
	addr, bits := pfx.Addr(), pfx.Bits()
	if addr.Is4In6() && bits >= 96 {
		// a 4-in-6 mapped subnet is an IPv4 subnet
		addr = addr.Unmap()
		bits -= 96
	}
	pfx = netip.PrefixFrom(addr, bits).Masked()
	if pfx.Addr().Is4() {
		b := pfx.Addr().As4()
		key, _ := bitseq.FromBytes(4, b[:], pfx.Bits())
		return key, true
	}
	b := pfx.Addr().As16()
	key, _ := bitseq.FromBytes(16, b[:], pfx.Bits())
	return key, false
}

func addrKey(addr netip.Addr) (bitseq.Seq, bool) {
	addr = addr.Unmap()
	if addr.Is4() {
		b := addr.As4()
		key, _ := bitseq.FromBytes(4, b[:], 32)
		return key, true
	}
	b := addr.As16()
	key, _ := bitseq.FromBytes(16, b[:], 128)
	return key, false
}
