package signer

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "a1b2c3d4-secret"

func TestCanonical(t *testing.T) {
	assert.Equal(
		t,
		"1616492376594GET/api/v1/accounts?currency=BTC",
		Canonical("get", "/api/v1/accounts", "?currency=BTC", 1616492376594),
	)
}

func TestSignIsDeterministic(t *testing.T) {
	a := Sign(secret, "GET", "/api/v1/accounts", "", 1616492376594)
	b := Sign(secret, "GET", "/api/v1/accounts", "", 1616492376594)

	assert.Equal(t, a, b)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 32)
}

func TestSignIsSensitiveToEveryInput(t *testing.T) {
	base := Sign(secret, "GET", "/api/v1/accounts", "?currency=BTC", 1616492376594)

	variants := map[string]string{
		"secret":    Sign(secret+"x", "GET", "/api/v1/accounts", "?currency=BTC", 1616492376594),
		"method":    Sign(secret, "POST", "/api/v1/accounts", "?currency=BTC", 1616492376594),
		"path":      Sign(secret, "GET", "/api/v1/account", "?currency=BTC", 1616492376594),
		"payload":   Sign(secret, "GET", "/api/v1/accounts", "?currency=ETH", 1616492376594),
		"timestamp": Sign(secret, "GET", "/api/v1/accounts", "?currency=BTC", 1616492376595),
	}

	for name, signature := range variants {
		assert.NotEqual(t, base, signature, name)
	}
}

func TestContext(t *testing.T) {
	Now = func() time.Time { return time.UnixMilli(1616492376594) }
	defer func() { Now = time.Now }()

	ctx := NewContext("POST", "/api/v1/withdrawals", `{"amount":"1"}`)

	assert.EqualValues(t, 1616492376594, ctx.Timestamp)
	assert.Equal(t, `1616492376594POST/api/v1/withdrawals{"amount":"1"}`, ctx.Canonical())
	assert.Equal(t, Sign(secret, "POST", "/api/v1/withdrawals", `{"amount":"1"}`, 1616492376594), ctx.Sign(secret))
}

func TestSignPassphrase(t *testing.T) {
	assert.Equal(t, SignPassphrase(secret, "phrase"), SignPassphrase(secret, "phrase"))
	assert.NotEqual(t, SignPassphrase(secret, "phrase"), SignPassphrase(secret, "phrase2"))
}

func TestSignHex(t *testing.T) {
	signature := SignHex(secret, "GET|/api/v3/members/me|access_key=key&tonce=1616492376594")

	assert.Len(t, signature, 64)
	assert.Equal(t, signature, SignHex(secret, "GET|/api/v3/members/me|access_key=key&tonce=1616492376594"))
	assert.NotEqual(t, signature, SignHex(secret, "GET|/api/v3/members/me|access_key=key&tonce=1616492376595"))
}

func TestSignKraken(t *testing.T) {
	key := base64.StdEncoding.EncodeToString([]byte("kraken"))

	a, err := SignKraken(key, "/0/private/Balance", "1", "nonce=1")
	require.NoError(t, err)

	b, err := SignKraken(key, "/0/private/Balance", "2", "nonce=2")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	raw, err := base64.StdEncoding.DecodeString(a)
	require.NoError(t, err)
	assert.Len(t, raw, 64)

	_, err = SignKraken("not base64!", "/0/private/Balance", "1", "nonce=1")
	assert.Error(t, err)
}
