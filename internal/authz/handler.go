// Package authz implements the authorization decision engine: a set of
// independent policy evaluators that each vote grant or abstain for a
// principal, a permission requirement and a resource. Handlers never deny;
// the registry turns "no grant" into the final deny.
package authz

import (
	"context"

	"go.uber.org/zap"

	"github.com/gateward/go-core/internal/policy"
	"github.com/gateward/go-core/pkg/types"
)

// Handler is a single authorization voter. Implementations are pure with
// respect to their injected dependencies and safe for concurrent use.
type Handler interface {
	// Name identifies the handler in logs and metrics
	Name() string
	// Evaluate contributes a vote for the request. Resource may be nil for
	// handlers that do not consume resource metadata.
	Evaluate(ctx context.Context, principal *types.Principal, requirement types.PermissionRequirement, resource types.Resource) types.Vote
}

// votePermissions runs the evaluation algorithm shared by the permission
// handlers: abstain on a missing principal or an empty requirement, then
// grant iff the requirement's match policy is satisfied by the resource's
// effective permission set.
func votePermissions(principal *types.Principal, requirement types.PermissionRequirement, effective policy.Set) types.Vote {
	if !principal.HasClaims() {
		return types.VoteAbstain
	}
	if requirement.IsEmpty() {
		return types.VoteAbstain
	}
	if requirement.Satisfied(effective.Hits(requirement.Permissions)) {
		return types.VoteGrant
	}
	return types.VoteAbstain
}

// logAbstain traces an abstention. Abstaining is not an error; the log line
// exists purely for diagnosability of deny decisions.
func logAbstain(logger *zap.Logger, handler string, reason string) {
	logger.Debug("Handler abstained",
		zap.String("handler", handler),
		zap.String("reason", reason),
	)
}
