package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gateward/go-core/internal/auth"
	"github.com/gateward/go-core/internal/authz"
	"github.com/gateward/go-core/internal/cache"
	"github.com/gateward/go-core/internal/policy"
	"github.com/gateward/go-core/internal/tokenx"
)

const testTables = `
affiliated_roles:
  viewer: [read]
clients:
  reporting-svc: [read]
`

func bearerToken(t *testing.T, claims auth.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func newTestServer(t *testing.T, providerStatus int, providerBody string) *Server {
	t.Helper()

	p, err := policy.NewLoader(nil).Load([]byte(testTables))
	require.NoError(t, err)
	registry := authz.NewDefaultRegistry(p, nil, nil)

	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(providerStatus)
		w.Write([]byte(providerBody))
	}))
	t.Cleanup(provider.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	tokenCache := cache.NewRedisCacheFromClient(client, nil)
	t.Cleanup(func() { tokenCache.Close() })

	cfg := tokenx.DefaultConfig()
	cfg.TokenEndpoint = provider.URL
	cfg.ClientID = "gw-client"
	cfg.ClientSecret = "gw-secret"
	tokens, err := tokenx.NewService(cfg, tokenCache, nil, nil)
	require.NoError(t, err)

	return New(DefaultConfig(), registry, tokens, nil, nil)
}

func doJSON(t *testing.T, s *Server, method, path, bearer string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestAuthorizeAllowed(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{"access_token":"tok","expires_in":100}`)
	bearer := bearerToken(t, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	rec := doJSON(t, s, http.MethodPost, "/v1/authorize", bearer, AuthorizeRequest{
		Requirement: RequirementBody{Permissions: []string{"read"}},
		Resource: &ResourceBody{
			Kind:            "affiliated",
			UserIDs:         []string{"user-2"},
			AffiliatedRoles: []string{"viewer"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthorizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)
	assert.Equal(t, "affiliated_resource", resp.GrantedBy)
}

func TestAuthorizeDeniedIsNotAnHTTPError(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{"access_token":"tok","expires_in":100}`)
	bearer := bearerToken(t, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	rec := doJSON(t, s, http.MethodPost, "/v1/authorize", bearer, AuthorizeRequest{
		Requirement: RequirementBody{Permissions: []string{"delete"}},
		Resource:    &ResourceBody{Kind: "owned", UserIDs: []string{"someone-else"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthorizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Allowed)
}

func TestAuthorizeAnonymousDenied(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{"access_token":"tok","expires_in":100}`)

	rec := doJSON(t, s, http.MethodPost, "/v1/authorize", "", AuthorizeRequest{
		Requirement: RequirementBody{Permissions: []string{"read"}},
		Resource:    &ResourceBody{Kind: "owned", UserIDs: []string{"user-1"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthorizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Allowed)
}

func TestAuthorizeMachineClient(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{"access_token":"tok","expires_in":100}`)
	bearer := bearerToken(t, auth.Claims{ClientID: "reporting-svc"})

	rec := doJSON(t, s, http.MethodPost, "/v1/authorize", bearer, AuthorizeRequest{
		Requirement: RequirementBody{Permissions: []string{"read"}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp AuthorizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)
	assert.Equal(t, "permission_client", resp.GrantedBy)
}

func TestAuthorizeRejectsUnknownResourceKind(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{"access_token":"tok","expires_in":100}`)

	rec := doJSON(t, s, http.MethodPost, "/v1/authorize", "", AuthorizeRequest{
		Requirement: RequirementBody{Permissions: []string{"read"}},
		Resource:    &ResourceBody{Kind: "mystery"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClientTokenEndpoint(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{"access_token":"svc-token","expires_in":100}`)

	rec := doJSON(t, s, http.MethodPost, "/v1/token/client", "", TokenRequest{Scope: "api.read"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "svc-token", resp.AccessToken)
}

func TestExchangeTokenUsesCallerBearer(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{"access_token":"obo-token","expires_in":100}`)
	bearer := bearerToken(t, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
	})

	rec := doJSON(t, s, http.MethodPost, "/v1/token/exchange", bearer, TokenRequest{Scope: "api.read"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "obo-token", resp.AccessToken)
}

func TestExchangeTokenWithoutBearerFailsDependency(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{"access_token":"obo-token","expires_in":100}`)

	rec := doJSON(t, s, http.MethodPost, "/v1/token/exchange", "", TokenRequest{Scope: "api.read"})
	assert.Equal(t, http.StatusFailedDependency, rec.Code)
}

func TestUpstreamFailureMapsTo424(t *testing.T) {
	s := newTestServer(t, http.StatusInternalServerError, "boom")

	rec := doJSON(t, s, http.MethodPost, "/v1/token/client", "", TokenRequest{Scope: "api.read"})
	require.Equal(t, http.StatusFailedDependency, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.CorrelationID)
	assert.Equal(t, http.StatusInternalServerError, resp.UpstreamCode)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, http.StatusOK, `{}`)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
