// Package auth reads the verified claims of an inbound bearer token into
// the principal the authorization handlers consume. Signature validation
// happens at the gateway edge before this code runs; this package only
// maps claims, it does not verify them.
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gateward/go-core/pkg/types"
)

// Claims represents the token claims this core consumes
type Claims struct {
	jwt.RegisteredClaims

	// ClientID identifies the calling application; azp is the OIDC field,
	// client_id the RFC 9068 one
	ClientID        string `json:"client_id,omitempty"`
	AuthorizedParty string `json:"azp,omitempty"`

	Roles []string `json:"roles,omitempty"`
	// Scope is the space-separated OAuth2 form; Scopes the array form
	Scope  string   `json:"scope,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
}

// Principal maps the claims onto the authorization principal
func (c *Claims) Principal() *types.Principal {
	scopes := c.Scopes
	if len(scopes) == 0 && c.Scope != "" {
		scopes = strings.Fields(c.Scope)
	}

	clientID := c.ClientID
	if clientID == "" {
		clientID = c.AuthorizedParty
	}

	return &types.Principal{
		Subject:  c.Subject,
		ClientID: clientID,
		Roles:    c.Roles,
		Scopes:   scopes,
	}
}

// ExtractPrincipal parses an already-verified bearer token's claims into a
// principal. The token is not re-verified here.
func ExtractPrincipal(token string) (*types.Principal, error) {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token claims: %w", err)
	}
	return claims.Principal(), nil
}
