package tokenx

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Token kinds in the cache key namespace
const (
	KindClientCredentials = "no-exchange"
	KindExchange          = "exchange"
)

// keyVersion versions the cache key format so a value-shape change can be
// rolled out without colliding with stale entries.
const keyVersion = "v0"

// KeyBuilder composes namespaced cache keys of the form
// <product>:<service>:<clientID>:<kind>:<material>:<version>. For exchange
// tokens the material is the SHA-256 digest of the presented token joined
// with the scope; the raw bearer value never appears in a key.
type KeyBuilder struct {
	Product  string
	Service  string
	ClientID string
}

// ClientCredentialsKey is the cache key for a service-identity token
func (b KeyBuilder) ClientCredentialsKey(scope string) string {
	return b.build(KindClientCredentials, scope)
}

// ExchangeKey is the cache key for an on-behalf-of token
func (b KeyBuilder) ExchangeKey(presentedToken, scope string) string {
	return b.build(KindExchange, DigestToken(presentedToken)+"_"+scope)
}

// ExchangePrefix covers every scope cached for one presented token's
// digest; used for event-driven invalidation.
func (b KeyBuilder) ExchangePrefix(tokenDigest string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s_", b.Product, b.Service, b.ClientID, KindExchange, tokenDigest)
}

func (b KeyBuilder) build(kind, material string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s", b.Product, b.Service, b.ClientID, kind, material, keyVersion)
}

// DigestToken returns the hex SHA-256 digest of a bearer token
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
