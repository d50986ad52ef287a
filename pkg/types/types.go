// Package types provides shared types for the access-control core
package types

// Vote is a single handler's contribution to an authorization decision.
// Handlers either grant or abstain; they never deny. Turning "no grant"
// into a rejection is the aggregating framework's job.
type Vote string

const (
	VoteGrant   Vote = "grant"
	VoteAbstain Vote = "abstain"
)

// IsGrant returns true if the vote is a grant
func (v Vote) IsGrant() bool {
	return v == VoteGrant
}

// Principal represents the authenticated caller, reconstructed per request
// from the verified claims of its token. Never persisted.
type Principal struct {
	// Subject is the opaque subject identifier; empty for anonymous callers
	Subject string `json:"subject"`
	// ClientID identifies the calling application or service
	ClientID string   `json:"client_id,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Scopes   []string `json:"scopes,omitempty"`
}

// HasClaims reports whether the principal carries any claims at all.
// A nil or empty principal abstains from every authorization decision.
func (p *Principal) HasClaims() bool {
	if p == nil {
		return false
	}
	return p.Subject != "" || p.ClientID != "" || len(p.Roles) > 0 || len(p.Scopes) > 0
}

// HasRole checks if the principal has a specific account-wide role
func (p *Principal) HasRole(role string) bool {
	if p == nil {
		return false
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// HasScope checks if the principal carries a specific OAuth2 scope
func (p *Principal) HasScope(scope string) bool {
	if p == nil {
		return false
	}
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// PermissionRequirement declares the permissions a protected operation
// needs. MatchAll selects ALL semantics; otherwise ANY is sufficient.
// An empty permission list is a no-op requirement: it abstains, never grants.
type PermissionRequirement struct {
	Permissions []string `json:"permissions"`
	MatchAll    bool     `json:"match_all"`
}

// RequireAll builds a requirement satisfied only when every permission holds
func RequireAll(permissions ...string) PermissionRequirement {
	return PermissionRequirement{Permissions: permissions, MatchAll: true}
}

// RequireAny builds a requirement satisfied by any one of the permissions
func RequireAny(permissions ...string) PermissionRequirement {
	return PermissionRequirement{Permissions: permissions, MatchAll: false}
}

// IsEmpty reports whether the requirement demands nothing
func (r PermissionRequirement) IsEmpty() bool {
	return len(r.Permissions) == 0
}

// Satisfied applies the match policy against a hit count
func (r PermissionRequirement) Satisfied(hits int) bool {
	if r.IsEmpty() {
		return false
	}
	if r.MatchAll {
		return hits == len(r.Permissions)
	}
	return hits > 0
}
