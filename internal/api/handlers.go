package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gateward/go-core/internal/auth"
	"github.com/gateward/go-core/internal/tokenx"
	"github.com/gateward/go-core/pkg/types"
)

// Authorize handles POST /v1/authorize: evaluates the caller's principal
// against the declared requirement and resource, returning the OR-aggregated
// decision. A deny is expressed as allowed=false, never as an HTTP error.
func (s *Server) Authorize(c *gin.Context) {
	var req AuthorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	resource, err := req.Resource.Resource()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	principal := auth.PrincipalFromContext(c.Request.Context())
	requirement := types.PermissionRequirement{
		Permissions: req.Requirement.Permissions,
		MatchAll:    req.Requirement.MatchAll,
	}

	decision := s.registry.Authorize(c.Request.Context(), principal, requirement, resource)
	c.JSON(http.StatusOK, AuthorizeResponse{
		Allowed:   decision.Allowed,
		GrantedBy: decision.GrantedBy,
	})
}

// ClientToken handles POST /v1/token/client: a client-credentials token
// for the gateway's own service identity
func (s *Server) ClientToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	token, err := s.tokens.GetClientAccessToken(c.Request.Context(), req.Scope)
	s.respondToken(c, token, err)
}

// ExchangeToken handles POST /v1/token/exchange: an on-behalf-of token
// derived from the caller's own bearer token
func (s *Server) ExchangeToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	presented := auth.TokenFromContext(c.Request.Context())
	token, err := s.tokens.GetExchangeAccessToken(c.Request.Context(), presented, req.Scope)
	s.respondToken(c, token, err)
}

// respondToken maps the token-service outcomes onto HTTP: upstream
// failures and absent tokens are both failed dependencies (424), with the
// correlation id surfaced for operators. Secrets never appear in replies.
func (s *Server) respondToken(c *gin.Context, token string, err error) {
	if err != nil {
		var upstream *tokenx.UpstreamError
		if errors.As(err, &upstream) {
			c.JSON(http.StatusFailedDependency, ErrorResponse{
				Error:         "identity provider request failed",
				CorrelationID: upstream.CorrelationID,
				UpstreamCode:  upstream.StatusCode,
			})
			return
		}
		s.logger.Error("Token request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}
	if token == "" {
		c.JSON(http.StatusFailedDependency, ErrorResponse{Error: "upstream credential unavailable"})
		return
	}
	c.JSON(http.StatusOK, TokenResponse{AccessToken: token})
}

// Health handles GET /healthz
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
