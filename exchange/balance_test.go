package exchange

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSumAmounts(t *testing.T) {
	total, err := SumAmounts("0.05", "0.0009013500", "")
	require.NoError(t, err)
	assert.Equal(t, "0.0509013500", total)

	_, err = SumAmounts("1", "lots")
	assert.Error(t, err)
}

func TestFormatAmount(t *testing.T) {
	formatted, err := FormatAmount("0.1")
	require.NoError(t, err)
	assert.Equal(t, "0.1000000000", formatted)

	formatted, err = FormatAmount("")
	require.NoError(t, err)
	assert.Equal(t, "0.0000000000", formatted)
}

func TestSumAmountsIsExact(t *testing.T) {
	total, err := SumAmounts("0.1", "0.2")
	require.NoError(t, err)
	assert.Equal(t, "0.3000000000", total)
}

func TestBalances(t *testing.T) {
	balances := NewBalances()

	require.NoError(t, balances.Add("BTC", "0.05", "0.0009013500"))
	require.NoError(t, balances.Add("ETH", "0.00000000", "0.00000000"))
	require.NoError(t, balances.Add("BTC", "1"))

	btc, ok := balances.Get("btc")
	assert.True(t, ok)
	assert.Equal(t, "1.0509013500", btc)

	eth, ok := balances.Get("ETH")
	assert.True(t, ok)
	assert.Equal(t, "0.0000000000", eth)

	_, ok = balances.Get("QAB")
	assert.False(t, ok)

	assert.Equal(t, map[string]string{"BTC": "1.0509013500"}, balances.NonZero())
	assert.Error(t, balances.Add("XRP", "NaN?"))
}
