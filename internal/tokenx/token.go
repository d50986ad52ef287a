// Package tokenx acquires and caches upstream bearer tokens for the
// gateway: client-credentials tokens for its own service identity and
// RFC 8693 exchange tokens derived from a caller's token.
package tokenx

import "time"

// TTLBufferSeconds is the safety margin subtracted from a token's reported
// lifetime before caching. A token this close to expiry is useless after
// network latency and is treated as a forced cache miss.
const TTLBufferSeconds = 30

// ClientAccessToken is the cached token envelope
type ClientAccessToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
}

// Cacheable reports whether the token lives long enough to be worth caching
func (t *ClientAccessToken) Cacheable() bool {
	return t.ExpiresIn > TTLBufferSeconds
}

// CacheTTL is the token's remaining useful lifetime
func (t *ClientAccessToken) CacheTTL() time.Duration {
	return time.Duration(t.ExpiresIn-TTLBufferSeconds) * time.Second
}
