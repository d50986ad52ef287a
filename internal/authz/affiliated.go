package authz

import (
	"context"

	"go.uber.org/zap"

	"github.com/gateward/go-core/internal/policy"
	"github.com/gateward/go-core/pkg/types"
)

// AffiliatedResourceHandler votes on resources carrying per-resource role
// and permission grants. The effective permission set is the union of the
// role-derived permissions and the direct grants: direct grants augment
// role-derived ones, never restrict them.
type AffiliatedResourceHandler struct {
	policy policy.PermissionPolicy
	logger *zap.Logger
}

// NewAffiliatedResourceHandler creates the affiliated-resource voter
func NewAffiliatedResourceHandler(p policy.PermissionPolicy, logger *zap.Logger) *AffiliatedResourceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AffiliatedResourceHandler{policy: p, logger: logger}
}

// Name identifies the handler
func (h *AffiliatedResourceHandler) Name() string { return "affiliated_resource" }

// Evaluate votes using the affiliated role table
func (h *AffiliatedResourceHandler) Evaluate(ctx context.Context, principal *types.Principal, requirement types.PermissionRequirement, resource types.Resource) types.Vote {
	affiliated, ok := resource.(types.AffiliatedResource)
	if !ok {
		logAbstain(h.logger, h.Name(), "resource is not affiliated")
		return types.VoteAbstain
	}
	if !types.HasOwners(affiliated) {
		logAbstain(h.logger, h.Name(), "resource has no user ids")
		return types.VoteAbstain
	}

	effective := h.policy.PermissionsOfAffiliated(affiliated.AffiliatedRoles).
		Union(policy.NewSet(affiliated.AffiliatedPermissions...))

	vote := votePermissions(principal, requirement, effective)
	if vote == types.VoteAbstain {
		logAbstain(h.logger, h.Name(), "requirement not satisfied")
	}
	return vote
}

// AffiliatedDatasetHandler votes on dataset resources. Dataset roles are an
// independent namespace; unlike the other affiliated variants there is no
// owner precheck because dataset grants are not tied to individual users.
type AffiliatedDatasetHandler struct {
	policy policy.PermissionPolicy
	logger *zap.Logger
}

// NewAffiliatedDatasetHandler creates the dataset voter
func NewAffiliatedDatasetHandler(p policy.PermissionPolicy, logger *zap.Logger) *AffiliatedDatasetHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AffiliatedDatasetHandler{policy: p, logger: logger}
}

// Name identifies the handler
func (h *AffiliatedDatasetHandler) Name() string { return "affiliated_dataset" }

// Evaluate votes using the dataset role table
func (h *AffiliatedDatasetHandler) Evaluate(ctx context.Context, principal *types.Principal, requirement types.PermissionRequirement, resource types.Resource) types.Vote {
	dataset, ok := resource.(types.AffiliatedDatasetResource)
	if !ok {
		logAbstain(h.logger, h.Name(), "resource is not a dataset")
		return types.VoteAbstain
	}

	effective := h.policy.PermissionsOfDataset(dataset.AffiliatedRoles).
		Union(policy.NewSet(dataset.AffiliatedPermissions...))

	vote := votePermissions(principal, requirement, effective)
	if vote == types.VoteAbstain {
		logAbstain(h.logger, h.Name(), "requirement not satisfied")
	}
	return vote
}

// AffiliatedDeferredHandler votes on resources whose affiliation is
// resolved late in the request, after the endpoint has loaded the resource.
// It shares the affiliated role table with AffiliatedResourceHandler and
// requires the resource to name its users.
type AffiliatedDeferredHandler struct {
	policy policy.PermissionPolicy
	logger *zap.Logger
}

// NewAffiliatedDeferredHandler creates the deferred-affiliation voter
func NewAffiliatedDeferredHandler(p policy.PermissionPolicy, logger *zap.Logger) *AffiliatedDeferredHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AffiliatedDeferredHandler{policy: p, logger: logger}
}

// Name identifies the handler
func (h *AffiliatedDeferredHandler) Name() string { return "affiliated_deferred" }

// Evaluate votes using the affiliated role table after the owner precheck
func (h *AffiliatedDeferredHandler) Evaluate(ctx context.Context, principal *types.Principal, requirement types.PermissionRequirement, resource types.Resource) types.Vote {
	deferred, ok := resource.(types.AffiliatedDeferredResource)
	if !ok {
		logAbstain(h.logger, h.Name(), "resource is not deferred-affiliated")
		return types.VoteAbstain
	}
	if !types.HasOwners(deferred) {
		logAbstain(h.logger, h.Name(), "resource has no user ids")
		return types.VoteAbstain
	}

	effective := h.policy.PermissionsOfAffiliated(deferred.AffiliatedRoles).
		Union(policy.NewSet(deferred.AffiliatedPermissions...))

	vote := votePermissions(principal, requirement, effective)
	if vote == types.VoteAbstain {
		logAbstain(h.logger, h.Name(), "requirement not satisfied")
	}
	return vote
}
