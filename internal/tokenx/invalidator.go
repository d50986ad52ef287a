package tokenx

import (
	"context"

	"go.uber.org/zap"

	"github.com/gateward/go-core/internal/cache"
	"github.com/gateward/go-core/internal/events"
)

// Invalidator purges cached exchange tokens when identity-change events
// arrive: a touched or deleted user's on-behalf-of tokens must not outlive
// the identity state they were minted from. Client-credentials tokens are
// the gateway's own identity and are left alone.
type Invalidator struct {
	cache  cache.TokenCache
	keys   KeyBuilder
	logger *zap.Logger
}

// NewInvalidator creates an invalidator for a service's key namespace
func NewInvalidator(c cache.TokenCache, keys KeyBuilder, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{cache: c, keys: keys, logger: logger}
}

// Register subscribes the invalidator to identity events
func (i *Invalidator) Register(n *events.Notifier) {
	n.Subscribe(events.IdentityTouched, i.handle)
	n.Subscribe(events.IdentityDeleted, i.handle)
}

func (i *Invalidator) handle(event events.Event) {
	if event.TokenDigest == "" {
		// Without the token digest there is no way to locate the entries;
		// they age out by TTL instead
		i.logger.Debug("Identity event without token digest",
			zap.String("type", string(event.Type)),
			zap.String("subject", event.Subject),
		)
		return
	}

	removed := i.cache.DeleteByPrefix(context.Background(), i.keys.ExchangePrefix(event.TokenDigest))
	i.logger.Info("Purged exchange tokens for identity event",
		zap.String("type", string(event.Type)),
		zap.String("subject", event.Subject),
		zap.Int("removed", removed),
	)
}
