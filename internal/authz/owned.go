package authz

import (
	"context"

	"go.uber.org/zap"

	"github.com/gateward/go-core/pkg/types"
)

// OwnedResourceHandler grants when the principal owns the resource.
// Ownership supersedes permission checks entirely: once the subject is in
// the owner list the handler grants without consulting the requirement.
type OwnedResourceHandler struct {
	logger *zap.Logger
}

// NewOwnedResourceHandler creates the ownership voter
func NewOwnedResourceHandler(logger *zap.Logger) *OwnedResourceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OwnedResourceHandler{logger: logger}
}

// Name identifies the handler
func (h *OwnedResourceHandler) Name() string { return "owned_resource" }

// Evaluate grants iff the principal's subject is among the resource owners
func (h *OwnedResourceHandler) Evaluate(ctx context.Context, principal *types.Principal, requirement types.PermissionRequirement, resource types.Resource) types.Vote {
	if !principal.HasClaims() {
		logAbstain(h.logger, h.Name(), "no principal claims")
		return types.VoteAbstain
	}

	owned, ok := resource.(types.OwnedResource)
	if !ok {
		logAbstain(h.logger, h.Name(), "resource is not owned")
		return types.VoteAbstain
	}
	if !types.HasOwners(owned) {
		logAbstain(h.logger, h.Name(), "resource has no owners")
		return types.VoteAbstain
	}
	if !types.IsOwner(owned, principal.Subject) {
		logAbstain(h.logger, h.Name(), "principal is not an owner")
		return types.VoteAbstain
	}

	return types.VoteGrant
}
