package authz

import (
	"context"

	"go.uber.org/zap"

	"github.com/gateward/go-core/internal/policy"
	"github.com/gateward/go-core/pkg/types"
)

// PermissionClientHandler votes for machine callers: it checks the
// principal's client id against the policy's static client grants instead
// of resolving roles. A missing client id abstains; it is not an
// authorization failure, the caller is simply not a machine client.
type PermissionClientHandler struct {
	policy policy.PermissionPolicy
	logger *zap.Logger
}

// NewPermissionClientHandler creates the machine-client voter
func NewPermissionClientHandler(p policy.PermissionPolicy, logger *zap.Logger) *PermissionClientHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionClientHandler{policy: p, logger: logger}
}

// Name identifies the handler
func (h *PermissionClientHandler) Name() string { return "permission_client" }

// Evaluate counts, for each required permission, whether the client is
// statically granted it, and applies the requirement's match policy.
func (h *PermissionClientHandler) Evaluate(ctx context.Context, principal *types.Principal, requirement types.PermissionRequirement, resource types.Resource) types.Vote {
	if !principal.HasClaims() {
		logAbstain(h.logger, h.Name(), "no principal claims")
		return types.VoteAbstain
	}
	if principal.ClientID == "" {
		logAbstain(h.logger, h.Name(), "no client id")
		return types.VoteAbstain
	}
	if requirement.IsEmpty() {
		logAbstain(h.logger, h.Name(), "empty requirement")
		return types.VoteAbstain
	}

	hits := 0
	for _, permission := range requirement.Permissions {
		if h.policy.ClientsHaving(permission).Contains(principal.ClientID) {
			hits++
		}
	}

	if requirement.Satisfied(hits) {
		return types.VoteGrant
	}
	logAbstain(h.logger, h.Name(), "requirement not satisfied")
	return types.VoteAbstain
}
