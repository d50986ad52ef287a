package authz

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gateward/go-core/internal/metrics"
	"github.com/gateward/go-core/internal/policy"
	"github.com/gateward/go-core/pkg/types"
)

// Decision is the aggregated outcome of a requirement evaluation
type Decision struct {
	// Allowed is true when at least one handler granted
	Allowed bool `json:"allowed"`
	// GrantedBy names the first handler that granted, for diagnosability
	GrantedBy string `json:"granted_by,omitempty"`
}

// Registry aggregates handler votes into a final decision. The aggregation
// is a logical OR: one grant allows, no grant denies. Handlers only read
// shared state, so evaluation order does not matter.
type Registry struct {
	handlers []Handler
	logger   *zap.Logger
	metrics  metrics.Metrics
}

// NewRegistry creates a registry over an explicit handler set
func NewRegistry(logger *zap.Logger, m metrics.Metrics, handlers ...Handler) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNoOpMetrics()
	}
	return &Registry{handlers: handlers, logger: logger, metrics: m}
}

// NewDefaultRegistry wires the five standard handlers against a policy
func NewDefaultRegistry(p policy.PermissionPolicy, logger *zap.Logger, m metrics.Metrics) *Registry {
	return NewRegistry(logger, m,
		NewOwnedResourceHandler(logger),
		NewAffiliatedResourceHandler(p, logger),
		NewAffiliatedDatasetHandler(p, logger),
		NewAffiliatedDeferredHandler(p, logger),
		NewPermissionClientHandler(p, logger),
	)
}

// Authorize evaluates every handler and ORs the votes. A handler that
// grants short-circuits the remaining evaluations; abstentions carry no
// weight and are never turned into a deny at this level.
func (r *Registry) Authorize(ctx context.Context, principal *types.Principal, requirement types.PermissionRequirement, resource types.Resource) Decision {
	start := time.Now()
	decision := Decision{}

	for _, h := range r.handlers {
		vote := h.Evaluate(ctx, principal, requirement, resource)
		r.metrics.RecordVote(h.Name(), string(vote))
		if vote.IsGrant() {
			decision.Allowed = true
			decision.GrantedBy = h.Name()
			break
		}
	}

	r.metrics.RecordDecision(decision.Allowed, time.Since(start))

	if !decision.Allowed {
		r.logger.Debug("No handler granted",
			zap.Strings("required_permissions", requirement.Permissions),
			zap.Bool("match_all", requirement.MatchAll),
		)
	}
	return decision
}
