// Package docuauth implements the JWT-bearer OAuth exchange that produces
// short-lived DocuSign access tokens (spec §4.2).
package docuauth

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Abraxas-365/docusync/internal/docuconfig"
	"github.com/Abraxas-365/docusync/internal/ducontract"
	"github.com/Abraxas-365/docusync/pkg/errx"
	"github.com/Abraxas-365/docusync/pkg/fsx"
	"github.com/golang-jwt/jwt/v5"
)

const (
	assertionTTL  = 8 * time.Hour // 28800s, per spec §4.2
	cacheTTLGuard = 2 * time.Minute
	tokenTimeout  = 30 * time.Second
	scope         = "signature impersonation"
)

var registry = errx.NewRegistry("DOCUAUTH")

var (
	// ErrTokenExchange covers any non-2xx response from the OAuth endpoint.
	ErrTokenExchange = registry.Register(
		"TOKEN_EXCHANGE_FAILED", errx.TypeExternal, 502,
		"DocuSign OAuth token exchange failed",
	)
	// ErrMissingAccessToken is raised when the OAuth response has no
	// access_token field.
	ErrMissingAccessToken = registry.Register(
		"MISSING_ACCESS_TOKEN", errx.TypeAuthorization, 502,
		"DocuSign token response did not include an access_token",
	)
	// ErrInvalidPrivateKey is raised when the PEM key cannot be parsed as
	// an RSA private key.
	ErrInvalidPrivateKey = registry.Register(
		"INVALID_PRIVATE_KEY", errx.TypeValidation, 400,
		"DocuSign private key is not a valid RSA PEM key",
	)
)

// TokenCache lets callers share a single in-flight refresh across concurrent
// callers (spec §5: "token refresh must be serialized behind a single-flight
// guard"). A nil cache is valid and simply disables sharing.
type TokenCache interface {
	Get(ctx context.Context, key string) (string, bool)
	SingleFlight(ctx context.Context, key string, refresh func(ctx context.Context) (string, time.Duration, error)) (string, error)
}

// Authenticator exchanges a signed JWT assertion for a DocuSign access token.
type Authenticator struct {
	httpClient *http.Client
	keyReader  fsx.FileReader
	cache      TokenCache
	log        ducontract.Logger
}

// New builds an Authenticator. keyReader resolves private_key_path; cache
// may be nil to disable cross-call token sharing.
func New(keyReader fsx.FileReader, cache TokenCache, log ducontract.Logger) *Authenticator {
	return &Authenticator{
		httpClient: &http.Client{Timeout: tokenTimeout},
		keyReader:  keyReader,
		cache:      cache,
		log:        log,
	}
}

// EnsureToken sets config[access_token] to a live token: the cached one when
// the cache holds an unexpired token for this integration key and user,
// otherwise a freshly exchanged one (through the single-flight cache, if
// any). Without a cache every call performs a new exchange.
func (a *Authenticator) EnsureToken(ctx context.Context, config map[string]string) error {
	if err := docuconfig.EnsureAuthConfig(config); err != nil {
		return err
	}

	cacheKey := config[docuconfig.KeyIntegrationKey] + ":" + config[docuconfig.KeyUserID]

	if a.cache != nil {
		if token, ok := a.cache.Get(ctx, cacheKey); ok {
			config[docuconfig.KeyAccessToken] = token
			return nil
		}
		token, err := a.cache.SingleFlight(ctx, cacheKey, func(ctx context.Context) (string, time.Duration, error) {
			return a.refresh(ctx, config)
		})
		if err != nil {
			return err
		}
		config[docuconfig.KeyAccessToken] = token
		return nil
	}

	token, _, err := a.refresh(ctx, config)
	if err != nil {
		return err
	}
	config[docuconfig.KeyAccessToken] = token
	return nil
}

// refresh performs the actual JWT-bearer exchange and returns the token plus
// the duration it should be cached for.
func (a *Authenticator) refresh(ctx context.Context, config map[string]string) (string, time.Duration, error) {
	privateKeyPEM, err := docuconfig.LoadPrivateKey(ctx, config, a.keyReader)
	if err != nil {
		return "", 0, err
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return "", 0, registry.NewWithCause(ErrInvalidPrivateKey, err)
	}

	now := time.Now().UTC()
	claims := assertionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    config[docuconfig.KeyIntegrationKey],
			Subject:   config[docuconfig.KeyUserID],
			Audience:  jwt.ClaimStrings{config[docuconfig.KeyOAuthBaseURL]},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(assertionTTL)),
		},
		Scope: scope,
	}

	assertion, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privateKey)
	if err != nil {
		return "", 0, registry.NewWithCause(ErrTokenExchange, err).WithDetail("stage", "sign")
	}

	token, err := a.exchange(ctx, config[docuconfig.KeyOAuthBaseURL], assertion)
	if err != nil {
		return "", 0, err
	}

	a.log.Info("access token obtained", ducontract.F("token_suffix", mask(token)))
	return token, assertionTTL - cacheTTLGuard, nil
}

// assertionClaims is the JWT-bearer assertion payload (spec §4.2).
type assertionClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

func (a *Authenticator) exchange(ctx context.Context, oauthBaseURL, assertion string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "urn:ietf:params:oauth:grant-type:jwt-bearer")
	form.Set("assertion", assertion)

	tokenURL := "https://" + oauthBaseURL + "/oauth/token"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", registry.NewWithCause(ErrTokenExchange, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", registry.NewWithCause(ErrTokenExchange, err).WithDetail("url", tokenURL)
	}
	defer resp.Body.Close()

	var body tokenResponse
	if err := decodeJSON(resp.Body, &body); err != nil {
		return "", registry.NewWithCause(ErrTokenExchange, err).WithDetail("status", resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", registry.NewWithMessage(ErrTokenExchange, "DocuSign OAuth token exchange failed").
			WithDetail("status", resp.StatusCode)
	}

	if body.AccessToken == "" {
		return "", registry.New(ErrMissingAccessToken)
	}

	return body.AccessToken, nil
}

// mask keeps only the last six characters of a token, per spec §4.2's
// logging requirement.
func mask(token string) string {
	const visible = 6
	if len(token) <= visible {
		return token
	}
	return "..." + token[len(token)-visible:]
}
