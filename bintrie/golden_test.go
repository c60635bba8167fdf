package bintrie

import (
	"net/netip"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aglyzov/go-lpm/bitseq"
)

// goldTable is a slow but obviously correct reference: a flat slice scanned
// in full on every operation.
type goldTable []goldItem

type goldItem struct {
	key bitseq.Seq
	val interface{}
}

func (g *goldTable) set(key bitseq.Seq, val interface{}) {
	for i, item := range *g {
		if item.key.Equal(key) {
			(*g)[i].val = val
			return
		}
	}
	*g = append(*g, goldItem{key, val})
}

func (g *goldTable) del(key bitseq.Seq) bool {
	for i, item := range *g {
		if item.key.Equal(key) {
			*g = append((*g)[:i], (*g)[i+1:]...)
			return true
		}
	}
	return false
}

func (g goldTable) get(key bitseq.Seq) (interface{}, bool) {
	for _, item := range g {
		if item.key.Equal(key) {
			return item.val, true
		}
	}
	return nil, false
}

func (g goldTable) best(key bitseq.Seq) (interface{}, bool) {
	bestLen := -1
	var bestVal interface{}
	for _, item := range g {
		n := item.key.Len()
		if n > bestLen && n <= key.Len() && key.HasPrefix(item.key, n) {
			bestLen = n
			bestVal = item.val
		}
	}
	return bestVal, bestLen >= 0
}

func randomPrefix(faker *gofakeit.Faker, t *testing.T) bitseq.Seq {
	t.Helper()

	a, err := netip.ParseAddr(faker.IPv4Address())
	require.NoError(t, err)
	pfx, err := a.Prefix(faker.Number(0, 32))
	require.NoError(t, err)
	return prefixKey(t, pfx)
}

func randomAddr(faker *gofakeit.Faker, t *testing.T) bitseq.Seq {
	t.Helper()
	return addr(t, faker.IPv4Address())
}

// TestRandomAgainstGolden drives the trie and the flat reference with the
// same random operations and expects identical answers throughout.
func TestRandomAgainstGolden(t *testing.T) {
	t.Parallel()

	const (
		numPrefixes = 500
		numProbes   = 1000
	)

	faker := gofakeit.New(1234567890)
	tr := New()
	var gold goldTable

	inserted := make([]bitseq.Seq, 0, numPrefixes)
	for i := 0; i < numPrefixes; i++ {
		key := randomPrefix(faker, t)
		tr.Set(key, i)
		gold.set(key, i)
		inserted = append(inserted, key)
	}

	require.Equal(t, len(gold), tr.Len())
	require.LessOrEqual(t, tr.Size(), 2*tr.Len()-1)

	probe := func() {
		for i := 0; i < numProbes; i++ {
			a := randomAddr(faker, t)

			expVal, expOK := gold.best(a)
			val, ok := tr.Best(a)
			require.Equal(t, expOK, ok, "Best(%s)", a)
			require.Equal(t, expVal, val, "Best(%s)", a)
		}
		for _, key := range inserted {
			expVal, expOK := gold.get(key)
			val, ok := tr.Get(key)
			require.Equal(t, expOK, ok, "Get(%s)", key)
			require.Equal(t, expVal, val, "Get(%s)", key)
		}
	}

	probe()

	// drop every other inserted key (duplicates fail the second time, on
	// both sides) and re-verify
	for i := 0; i < len(inserted); i += 2 {
		expOK := gold.del(inserted[i])
		_, ok := tr.Del(inserted[i])
		require.Equal(t, expOK, ok, "Del(%s)", inserted[i])
	}

	assert.Equal(t, len(gold), tr.Len())
	if tr.Len() > 0 {
		assert.LessOrEqual(t, tr.Size(), 2*tr.Len()-1)
	}

	probe()
}
