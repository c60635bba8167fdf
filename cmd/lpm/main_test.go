package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aglyzov/go-lpm/lpm"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	table, err := lpm.Load(strings.NewReader(
		"10.0.0.0/8 100\n10.1.0.0/16 200\n10.1.1.0/24 300\n2001:db8::/32 500\n"))
	require.NoError(t, err)

	var out strings.Builder
	in := strings.NewReader("10.1.1.5\n10.1.2.5\n10.2.0.0\n192.168.0.1\n2001:db8::1\n")

	require.NoError(t, resolve(table, in, &out))
	assert.Equal(t, "300\n200\n100\n-\n500\n", out.String())
}

func TestResolveBadAddress(t *testing.T) {
	t.Parallel()

	table := lpm.New()

	var out strings.Builder
	err := resolve(table, strings.NewReader("not-an-address\n"), &out)

	assert.Error(t, err)
}
