package random

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/b-harvest/node-harness/internal/keys"
)

const iterations = 2000

func onlyFrom(s, alphabet string) bool {
	for _, r := range s {
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
	}
	return true
}

func TestDelegateName_Bounds(t *testing.T) {
	g := NewGenerator(1)
	for i := 0; i < iterations; i++ {
		name := g.DelegateName()
		require.GreaterOrEqual(t, len(name), 1)
		require.LessOrEqual(t, len(name), 20)
		require.True(t, onlyFrom(name, NameAlphabet), "unexpected character in %q", name)
	}
}

func TestUsername_Bounds(t *testing.T) {
	g := NewGenerator(2)
	for i := 0; i < iterations; i++ {
		name := g.Username()
		require.GreaterOrEqual(t, len(name), 1)
		require.LessOrEqual(t, len(name), 16)
		require.True(t, onlyFrom(name, NameAlphabet))
	}
}

func TestCapitalUsername_StartsWithLetter(t *testing.T) {
	g := NewGenerator(3)
	for i := 0; i < iterations; i++ {
		name := g.CapitalUsername()
		require.GreaterOrEqual(t, len(name), 1)
		require.LessOrEqual(t, len(name), 16)
		require.Equal(t, byte('A'), name[0])
	}
}

func TestApplicationName_Bounds(t *testing.T) {
	g := NewGenerator(4)
	for i := 0; i < iterations; i++ {
		name := g.ApplicationName()
		require.GreaterOrEqual(t, len(name), 1)
		require.LessOrEqual(t, len(name), 32)
		require.True(t, unicode.IsLetter(rune(name[0])))
		require.True(t, onlyFrom(name, AppNameAlphabet), "unexpected character in %q", name)
	}
}

func TestArk_Range(t *testing.T) {
	g := NewGenerator(5)
	for i := 0; i < iterations; i++ {
		v := g.Ark()
		require.GreaterOrEqual(t, v, int64(10*100_000_000))
		require.Less(t, v, int64(110*100_000_000))
	}
}

func TestStaticArk_Range(t *testing.T) {
	g := NewGenerator(6)
	for i := 0; i < iterations; i++ {
		v := g.StaticArk()
		require.GreaterOrEqual(t, v, int64(1))
		require.LessOrEqual(t, v, MaxStaticArk)
	}
}

func TestNumberAndSelection(t *testing.T) {
	g := NewGenerator(7)
	for i := 0; i < iterations; i++ {
		n := g.Number(3, 9)
		require.GreaterOrEqual(t, n, 3)
		require.Less(t, n, 9)

		s := g.Selection(5)
		require.GreaterOrEqual(t, s, 0)
		require.Less(t, s, 5)
	}

	assert.Equal(t, 4, g.Number(4, 4))
	assert.Equal(t, 0, g.Selection(0))
}

func TestPassword(t *testing.T) {
	g := NewGenerator(8)
	for i := 0; i < iterations; i++ {
		p := g.Password()
		require.NotEmpty(t, p)
		require.LessOrEqual(t, len(p), 6)
		require.True(t, onlyFrom(p, passwordAlphabet))
	}
}

func TestSameSeedSameValues(t *testing.T) {
	a, b := NewGenerator(42), NewGenerator(42)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.DelegateName(), b.DelegateName())
		assert.Equal(t, a.Ark(), b.Ark())
	}
}

func TestKeyValuePick(t *testing.T) {
	g := NewGenerator(9)
	m := map[string]int{"a": 1, "b": 2, "c": 3}

	for i := 0; i < 50; i++ {
		k := Key(g, m)
		assert.Contains(t, m, k)
		assert.Contains(t, []int{1, 2, 3}, Value(g, m))
		assert.Contains(t, []string{"x", "y"}, Pick(g, []string{"x", "y"}))
	}

	assert.Contains(t, []int{1, 2, 3}, Property(g, m, false))
	assert.Contains(t, []string{"a", "b", "c"}, Property(g, m, true))

	assert.Equal(t, "", Key(g, map[string]int{}))
	assert.Equal(t, 0, Pick(g, []int(nil)))
}

func TestAccount(t *testing.T) {
	g := NewGenerator(10)
	deriver := keys.NewDeriver(23)

	acc, err := g.Account(deriver)
	require.NoError(t, err)

	kp, err := keys.DeriveKeys(acc.Password)
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKeyHex(), acc.PublicKey)
	assert.Equal(t, keys.Address(kp.PublicKey, 23), acc.Address)
	assert.True(t, acc.Balance.IsZero())
	assert.NotEmpty(t, acc.SecondPassword)
	assert.NotEmpty(t, acc.Username)

	data, err := json.Marshal(acc)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"balance":"0"`)
}

func TestTxAccount(t *testing.T) {
	acc, err := NewGenerator(11).TxAccount(keys.NewDeriver(23))
	require.NoError(t, err)

	assert.Empty(t, acc.SentAmount)
	assert.Empty(t, acc.PaidFee)
	assert.NotNil(t, acc.Transactions)
	assert.Empty(t, acc.Transactions)
	assert.NotEmpty(t, acc.Address)
}
