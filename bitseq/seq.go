// Package bitseq implements a fixed-capacity sequence of bits with a
// variable logical length, used as the key type of a compressed binary trie.
//
// Bits are numbered from the most significant bit of the first byte, which
// matches the network byte order of IPv4/IPv6 addresses: bit 0 of the
// sequence 10.0.0.0 is the top bit of the byte 10.
package bitseq

import (
	"bytes"
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"

	"github.com/hideo55/go-popcount"
)

// ErrCapacity is returned by FromBytes when a buffer needs more bytes than
// the sequence capacity provides.
var ErrCapacity = errors.New("bitseq: buffer exceeds capacity")

// Seq is a sequence of up to BitCap() bits of which only the first Len()
// are meaningful to the comparing operations (Equal, Compare, HasPrefix,
// FirstDiff). The capacity is fixed at construction. Storage beyond the
// logical length is kept zeroed unless bits are shifted into it.
//
// Indexed access is checked against the capacity, not the logical length:
// reading a position in [Len(), BitCap()) is allowed and returns whatever
// the storage holds. The trie descent relies on this, its heuristic walk
// probes key bits past the logical length and corrects itself afterwards.
type Seq struct {
	data  []byte
	nbits int
}

// New returns an empty sequence with a capacity of byteCap bytes.
func New(byteCap int) Seq {
	return Seq{data: make([]byte, byteCap)}
}

// FromBytes builds a sequence of nbits bits with a capacity of byteCap
// bytes, copying the leading ceil(nbits/8) bytes out of buf.
func FromBytes(byteCap int, buf []byte, nbits int) (Seq, error) {
	n := byteCount(nbits)
	if n > byteCap {
		return Seq{}, fmt.Errorf("%w: %d bits need %d bytes, have %d", ErrCapacity, nbits, n, byteCap)
	}
	s := New(byteCap)
	copy(s.data[:n], buf)
	s.nbits = nbits
	return s, nil
}

// Len returns the logical length in bits.
func (s Seq) Len() int {
	return s.nbits
}

// Empty reports whether the logical length is zero.
func (s Seq) Empty() bool {
	return s.nbits == 0
}

// ByteCap returns the fixed capacity in bytes.
func (s Seq) ByteCap() int {
	return len(s.data)
}

// BitCap returns the fixed capacity in bits.
func (s Seq) BitCap() int {
	return len(s.data) * 8
}

// SetLen adjusts the logical length. It panics when nbits exceeds the
// capacity or is negative.
func (s *Seq) SetLen(nbits int) {
	if nbits < 0 || nbits > s.BitCap() {
		panic("bitseq: length out of range")
	}
	s.nbits = nbits
}

// Bytes returns the backing storage, not a copy. Together with SetLen it
// lets a caller fill a key in place, e.g. from a parsed network address.
func (s Seq) Bytes() []byte {
	return s.data
}

// Bit returns the bit at pos. It panics when pos is outside the capacity.
func (s Seq) Bit(pos int) bool {
	if pos < 0 || pos >= s.BitCap() {
		panic("bitseq: bit position out of range")
	}
	return s.data[pos>>3]&(0x80>>(pos&7)) != 0
}

// SetBit sets the bit at pos to v. It panics when pos is outside the
// capacity.
func (s *Seq) SetBit(pos int, v bool) {
	if pos < 0 || pos >= s.BitCap() {
		panic("bitseq: bit position out of range")
	}
	if v {
		s.data[pos>>3] |= 0x80 >> (pos & 7)
	} else {
		s.data[pos>>3] &^= 0x80 >> (pos & 7)
	}
}

// And combines the full storage with o in place. Both sequences must share
// the same capacity.
func (s *Seq) And(o Seq) {
	s.sameCap(o)
	for i := range s.data {
		s.data[i] &= o.data[i]
	}
}

// Or combines the full storage with o in place.
func (s *Seq) Or(o Seq) {
	s.sameCap(o)
	for i := range s.data {
		s.data[i] |= o.data[i]
	}
}

// Xor combines the full storage with o in place.
func (s *Seq) Xor(o Seq) {
	s.sameCap(o)
	for i := range s.data {
		s.data[i] ^= o.data[i]
	}
}

// Not returns a copy with every storage bit inverted.
func (s Seq) Not() Seq {
	out := s.Clone()
	for i := range out.data {
		out.data[i] = ^out.data[i]
	}
	return out
}

// ShiftLeft moves every storage bit n positions toward bit 0 and zero-fills
// the vacated tail. The logical length is unaffected.
func (s *Seq) ShiftLeft(n int) {
	if n <= 0 {
		return
	}
	size := len(s.data)
	k, off := n>>3, n&7
	if k >= size {
		clear(s.data)
		return
	}
	if off == 0 {
		copy(s.data, s.data[k:])
	} else {
		sub := 8 - off
		last := size - k - 1
		for i := 0; i < last; i++ {
			s.data[i] = s.data[i+k]<<off | s.data[i+k+1]>>sub
		}
		s.data[last] = s.data[size-1] << off
	}
	clear(s.data[size-k:])
}

// ShiftRight moves every storage bit n positions away from bit 0 and
// zero-fills the vacated head. The logical length is unaffected.
func (s *Seq) ShiftRight(n int) {
	if n <= 0 {
		return
	}
	size := len(s.data)
	k, off := n>>3, n&7
	if k >= size {
		clear(s.data)
		return
	}
	if off == 0 {
		copy(s.data[k:], s.data[:size-k])
	} else {
		sub := 8 - off
		for i := size - 1; i > k; i-- {
			s.data[i] = s.data[i-k]>>off | s.data[i-k-1]<<sub
		}
		s.data[k] = s.data[0] >> off
	}
	clear(s.data[:k])
}

// Slice returns a new sequence of length n holding the bits [pos, pos+n)
// at positions [0, n). It panics when pos+n exceeds the capacity.
func (s Seq) Slice(pos, n int) Seq {
	if pos < 0 || n < 0 || pos+n > s.BitCap() {
		panic("bitseq: slice out of range")
	}
	out := s.Clone()
	out.ShiftLeft(pos)
	out.nbits = n
	return out
}

// FirstDiff returns the position of the first bit at which s and o differ,
// looking at the first limit bits only, or limit when there is no
// difference. Both sequences must share the same capacity and limit must
// not exceed it. Cost is one XOR per byte plus a leading-zero count on the
// differing byte.
func (s Seq) FirstDiff(o Seq, limit int) int {
	result := 0
	for i := 0; i*8 < limit; i++ {
		x := s.data[i] ^ o.data[i]
		if x == 0 {
			result = (i + 1) * 8
			continue
		}
		result = i*8 + bits.LeadingZeros8(x)
		break
	}
	if result > limit {
		result = limit
	}
	return result
}

// HasPrefix reports whether both sequences are at least nbits long and
// agree on the first nbits bits.
func (s Seq) HasPrefix(o Seq, nbits int) bool {
	if nbits > s.nbits || nbits > o.nbits {
		return false
	}
	n, off := nbits>>3, nbits&7
	if !bytes.Equal(s.data[:n], o.data[:n]) {
		return false
	}
	if off != 0 {
		mask := byte(0xFF) << (8 - off)
		if s.data[n]&mask != o.data[n]&mask {
			return false
		}
	}
	return true
}

// Equal reports whether both sequences have the same logical length and
// agree on every bit within it.
func (s Seq) Equal(o Seq) bool {
	return s.nbits == o.nbits && s.HasPrefix(o, s.nbits)
}

// Compare orders sequences by logical length first, then by bit content.
// Bits beyond the logical length do not take part.
func (s Seq) Compare(o Seq) int {
	switch {
	case s.nbits < o.nbits:
		return -1
	case s.nbits > o.nbits:
		return 1
	}
	n, off := s.nbits>>3, s.nbits&7
	if c := bytes.Compare(s.data[:n], o.data[:n]); c != 0 {
		return c
	}
	if off != 0 {
		mask := byte(0xFF) << (8 - off)
		a, b := s.data[n]&mask, o.data[n]&mask
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// Count returns the number of set bits within the logical length.
func (s Seq) Count() uint64 {
	n, off := s.nbits>>3, s.nbits&7
	var cnt uint64
	for _, b := range s.data[:n] {
		cnt += popcount.Count(uint64(b))
	}
	if off != 0 {
		mask := byte(0xFF) << (8 - off)
		cnt += popcount.Count(uint64(s.data[n] & mask))
	}
	return cnt
}

// Clone returns an independent copy.
func (s Seq) Clone() Seq {
	out := Seq{data: make([]byte, len(s.data)), nbits: s.nbits}
	copy(out.data, s.data)
	return out
}

// String formats the storage bytes dot-separated with the logical length
// appended, e.g. "10.1.0.0/16".
func (s Seq) String() string {
	var buf strings.Builder
	for i, b := range s.data {
		if i > 0 {
			buf.WriteByte('.')
		}
		buf.WriteString(strconv.Itoa(int(b)))
	}
	buf.WriteByte('/')
	buf.WriteString(strconv.Itoa(s.nbits))
	return buf.String()
}

func (s Seq) sameCap(o Seq) {
	if len(s.data) != len(o.data) {
		panic("bitseq: capacity mismatch")
	}
}

func byteCount(nbits int) int {
	return (nbits + 7) >> 3
}
