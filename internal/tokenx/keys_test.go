package tokenx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientCredentialsKey(t *testing.T) {
	b := KeyBuilder{Product: "gateward", Service: "core", ClientID: "gw-client"}

	key := b.ClientCredentialsKey("api.read")
	assert.Equal(t, "gateward:core:gw-client:no-exchange:api.read:v0", key)
}

func TestExchangeKeyNeverContainsRawToken(t *testing.T) {
	b := KeyBuilder{Product: "gateward", Service: "core", ClientID: "gw-client"}
	presented := "raw-bearer-token-value"

	key := b.ExchangeKey(presented, "api.read")
	assert.NotContains(t, key, presented)
	assert.Equal(t, "gateward:core:gw-client:exchange:"+DigestToken(presented)+"_api.read:v0", key)
}

func TestExchangeKeyIsolation(t *testing.T) {
	b := KeyBuilder{Product: "gateward", Service: "core", ClientID: "gw-client"}

	// Two distinct presented tokens for the same scope never collide
	keyA := b.ExchangeKey("token-a", "api.read")
	keyB := b.ExchangeKey("token-b", "api.read")
	assert.NotEqual(t, keyA, keyB)

	// Same token, different scope: distinct entries too
	keyC := b.ExchangeKey("token-a", "api.write")
	assert.NotEqual(t, keyA, keyC)

	// Same inputs are stable
	assert.Equal(t, keyA, b.ExchangeKey("token-a", "api.read"))
}

func TestExchangePrefixCoversAllScopes(t *testing.T) {
	b := KeyBuilder{Product: "gateward", Service: "core", ClientID: "gw-client"}
	digest := DigestToken("token-a")

	prefix := b.ExchangePrefix(digest)
	assert.True(t, strings.HasPrefix(b.ExchangeKey("token-a", "api.read"), prefix))
	assert.True(t, strings.HasPrefix(b.ExchangeKey("token-a", "api.write"), prefix))
	assert.False(t, strings.HasPrefix(b.ExchangeKey("token-b", "api.read"), prefix))
}

func TestDigestToken(t *testing.T) {
	// SHA-256 of "abc"
	assert.Equal(t,
		"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		DigestToken("abc"),
	)
}
