// Package api exposes the access-control core over HTTP for the gateway's
// request handlers: a decision endpoint and the two token operations.
package api

import (
	"fmt"

	"github.com/gateward/go-core/pkg/types"
)

// AuthorizeRequest is the decision endpoint's body. The principal comes
// from the caller's bearer token, not the body.
type AuthorizeRequest struct {
	Requirement RequirementBody `json:"requirement"`
	Resource    *ResourceBody   `json:"resource"`
}

// RequirementBody mirrors types.PermissionRequirement on the wire
type RequirementBody struct {
	Permissions []string `json:"permissions"`
	MatchAll    bool     `json:"match_all"`
}

// ResourceBody is the tagged wire form of the resource variants
type ResourceBody struct {
	Kind                  types.ResourceKind `json:"kind" binding:"required"`
	UserIDs               []string           `json:"user_ids,omitempty"`
	AffiliatedRoles       []string           `json:"affiliated_roles,omitempty"`
	AffiliatedPermissions []string           `json:"affiliated_permissions,omitempty"`
}

// Resource maps the wire form onto its variant
func (b *ResourceBody) Resource() (types.Resource, error) {
	if b == nil {
		return nil, nil
	}
	switch b.Kind {
	case types.KindOwned:
		return types.OwnedResource{UserIDs: b.UserIDs}, nil
	case types.KindAffiliated:
		return types.NewAffiliatedResource(b.UserIDs, b.AffiliatedRoles, b.AffiliatedPermissions), nil
	case types.KindAffiliatedDataset:
		return types.NewAffiliatedDatasetResource(b.UserIDs, b.AffiliatedRoles, b.AffiliatedPermissions), nil
	case types.KindAffiliatedDeferred:
		return types.NewAffiliatedDeferredResource(b.UserIDs, b.AffiliatedRoles, b.AffiliatedPermissions), nil
	default:
		return nil, fmt.Errorf("unknown resource kind %q", b.Kind)
	}
}

// AuthorizeResponse is the decision endpoint's reply
type AuthorizeResponse struct {
	Allowed   bool   `json:"allowed"`
	GrantedBy string `json:"granted_by,omitempty"`
}

// TokenRequest asks for an upstream credential for one scope
type TokenRequest struct {
	Scope string `json:"scope"`
}

// TokenResponse carries the upstream bearer token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// ErrorResponse is the error reply shape
type ErrorResponse struct {
	Error         string `json:"error"`
	CorrelationID string `json:"correlation_id,omitempty"`
	UpstreamCode  int    `json:"upstream_status,omitempty"`
}
