package tokenx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gateward/go-core/internal/cache"
	"github.com/gateward/go-core/internal/metrics"
)

// Source tag attached to upstream failures
const sourceIdentityProvider = "identity-provider"

// RFC 8693 token-exchange grant parameters
const (
	grantTypeClientCredentials = "client_credentials"
	grantTypeTokenExchange     = "urn:ietf:params:oauth:grant-type:token-exchange"
	tokenTypeAccessToken       = "urn:ietf:params:oauth:token-type:access_token"
)

// maxErrorBody caps how much of an upstream error body is retained
const maxErrorBody = 64 * 1024

// Config configures the token-exchange service
type Config struct {
	// TokenEndpoint is the identity provider's token URL
	TokenEndpoint string `yaml:"token_endpoint"`
	// ClientID and ClientSecret are the gateway's own credentials
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	// Product and Service namespace the cache keys
	Product string `yaml:"product"`
	Service string `yaml:"service"`
	// RequestTimeout bounds a single provider round trip
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultConfig returns default token service configuration
func DefaultConfig() Config {
	return Config{
		Product:        "gateward",
		Service:        "core",
		RequestTimeout: 10 * time.Second,
	}
}

// Validate checks the configuration for validity
func (c *Config) Validate() error {
	if c.TokenEndpoint == "" {
		return fmt.Errorf("token_endpoint is required")
	}
	if _, err := url.Parse(c.TokenEndpoint); err != nil {
		return fmt.Errorf("token_endpoint is invalid: %w", err)
	}
	if c.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("client_secret is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be greater than 0")
	}
	return nil
}

// Service obtains and caches upstream bearer tokens. Both operations are
// safe for concurrent use; the cache is the only shared mutable resource.
// A cache stampede on simultaneous misses for the same key is an accepted
// bounded inefficiency, since duplicate tokens for one key are
// interchangeable.
type Service struct {
	config     Config
	cache      cache.TokenCache
	httpClient *http.Client
	logger     *zap.Logger
	metrics    metrics.Metrics
	keys       KeyBuilder
}

// NewService creates a token-exchange service
func NewService(cfg Config, c cache.TokenCache, logger *zap.Logger, m metrics.Metrics) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.NewNoOpMetrics()
	}

	return &Service{
		config:     cfg,
		cache:      c,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		logger:     logger,
		metrics:    m,
		keys: KeyBuilder{
			Product:  cfg.Product,
			Service:  cfg.Service,
			ClientID: cfg.ClientID,
		},
	}, nil
}

// Keys exposes the key builder for cache invalidation
func (s *Service) Keys() KeyBuilder {
	return s.keys
}

// GetClientAccessToken returns a client-credentials token for the gateway's
// own identity, from cache when possible. An empty return with nil error
// means "no token": the provider answered but without a usable token, a
// condition every caller must already handle.
func (s *Service) GetClientAccessToken(ctx context.Context, scope string) (string, error) {
	key := s.keys.ClientCredentialsKey(scope)

	var cached ClientAccessToken
	if s.cache.Get(ctx, key, &cached) && cached.AccessToken != "" {
		s.metrics.RecordCacheHit(KindClientCredentials)
		return cached.AccessToken, nil
	}
	s.metrics.RecordCacheMiss(KindClientCredentials)

	form := url.Values{}
	form.Set("grant_type", grantTypeClientCredentials)
	form.Set("client_id", s.config.ClientID)
	form.Set("client_secret", s.config.ClientSecret)
	if scope != "" {
		form.Set("scope", scope)
	}

	token, err := s.requestToken(ctx, KindClientCredentials, form, false)
	if err != nil || token == nil {
		return "", err
	}

	if token.Cacheable() {
		s.cache.Set(ctx, key, token, token.CacheTTL())
	}
	return token.AccessToken, nil
}

// GetExchangeAccessToken exchanges the caller's presented token for an
// on-behalf-of token scoped to an upstream service. An empty presented
// token short-circuits to "no token" without a network call: exchanging
// nothing is meaningless, not an error.
func (s *Service) GetExchangeAccessToken(ctx context.Context, presentedToken, scope string) (string, error) {
	if presentedToken == "" {
		s.logger.Debug("No token presented for exchange", zap.String("scope", scope))
		return "", nil
	}

	key := s.keys.ExchangeKey(presentedToken, scope)

	var cached ClientAccessToken
	if s.cache.Get(ctx, key, &cached) && cached.AccessToken != "" {
		s.metrics.RecordCacheHit(KindExchange)
		return cached.AccessToken, nil
	}
	s.metrics.RecordCacheMiss(KindExchange)

	form := url.Values{}
	form.Set("grant_type", grantTypeTokenExchange)
	form.Set("subject_token", presentedToken)
	form.Set("subject_token_type", tokenTypeAccessToken)
	form.Set("requested_token_type", tokenTypeAccessToken)
	if scope != "" {
		form.Set("scope", scope)
	}

	token, err := s.requestToken(ctx, KindExchange, form, true)
	if err != nil || token == nil {
		return "", err
	}

	if token.Cacheable() {
		s.cache.Set(ctx, key, token, token.CacheTTL())
	}
	return token.AccessToken, nil
}

// tokenEnvelope is the provider's JSON token response
type tokenEnvelope struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// requestToken performs one provider round trip. basicAuth selects HTTP
// Basic client authentication instead of credentials in the form body.
func (s *Service) requestToken(ctx context.Context, kind string, form url.Values, basicAuth bool) (*ClientAccessToken, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.TokenEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	if basicAuth {
		req.SetBasicAuth(s.config.ClientID, s.config.ClientSecret)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		correlationID := uuid.NewString()
		s.metrics.RecordTokenRequest(kind, "network_error", time.Since(start))
		s.logger.Error("Identity provider unreachable",
			zap.String("kind", kind),
			zap.String("correlation_id", correlationID),
			zap.Error(err),
		)
		return nil, &UpstreamError{
			Source:        sourceIdentityProvider,
			CorrelationID: correlationID,
			Err:           err,
		}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		correlationID := uuid.NewString()
		s.metrics.RecordTokenRequest(kind, "upstream_error", time.Since(start))
		s.logger.Warn("Identity provider rejected token request",
			zap.String("kind", kind),
			zap.Int("status", resp.StatusCode),
			zap.String("correlation_id", correlationID),
		)
		upstreamErr := &UpstreamError{
			Source:        sourceIdentityProvider,
			StatusCode:    resp.StatusCode,
			CorrelationID: correlationID,
		}
		// Only 400 bodies are diagnostic for the caller; other statuses
		// suppress the body to avoid leaking unrelated detail
		if resp.StatusCode == http.StatusBadRequest {
			upstreamErr.Body = string(body)
		}
		return nil, upstreamErr
	}

	if readErr != nil {
		s.metrics.RecordTokenRequest(kind, "malformed", time.Since(start))
		s.logger.Warn("Failed to read token response",
			zap.String("kind", kind),
			zap.Error(readErr),
		)
		return nil, nil
	}

	var envelope tokenEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		// An absent token is recoverable for callers; do not escalate
		s.metrics.RecordTokenRequest(kind, "malformed", time.Since(start))
		s.logger.Warn("Malformed token payload",
			zap.String("kind", kind),
			zap.Int("bytes", len(body)),
			zap.Error(err),
		)
		return nil, nil
	}
	if envelope.AccessToken == "" {
		s.metrics.RecordTokenRequest(kind, "malformed", time.Since(start))
		s.logger.Warn("Token payload missing access_token", zap.String("kind", kind))
		return nil, nil
	}

	s.metrics.RecordTokenRequest(kind, "success", time.Since(start))
	return &ClientAccessToken{
		AccessToken: envelope.AccessToken,
		ExpiresIn:   envelope.ExpiresIn,
		IssuedAt:    time.Now(),
	}, nil
}
