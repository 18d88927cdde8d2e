package docuauth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Abraxas-365/docusync/internal/docuauth/tokencache"
	"github.com/Abraxas-365/docusync/internal/docuconfig"
	"github.com/Abraxas-365/docusync/internal/ducontract"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...ducontract.Field)    {}
func (nopLogger) Warning(string, ...ducontract.Field) {}
func (nopLogger) Severe(string, ...ducontract.Field)  {}

func testPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate test key: %v", err)
	}
	der := x509.MarshalPKCS1PrivateKey(key)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: der}
	return string(pem.EncodeToMemory(block))
}

// newTestAuthenticator wires an Authenticator whose httpClient trusts the
// given TLS test server, since the JWT-bearer exchange always dials
// https://<oauth_base_url>/oauth/token.
func newTestAuthenticator(srv *httptest.Server, cache TokenCache) *Authenticator {
	return &Authenticator{
		httpClient: srv.Client(),
		cache:      cache,
		log:        nopLogger{},
	}
}

func testConfig(t *testing.T, oauthBaseURL string) map[string]string {
	return map[string]string{
		docuconfig.KeyIntegrationKey: "ik",
		docuconfig.KeyUserID:         "u1",
		docuconfig.KeyOAuthBaseURL:   oauthBaseURL,
		docuconfig.KeyPrivateKey:     testPrivateKeyPEM(t),
	}
}

func TestEnsureToken_ExchangesAssertionAndSetsAccessToken(t *testing.T) {
	var gotGrantType string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		gotGrantType = r.Form.Get("grant_type")
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "live-token-123456"})
	}))
	defer srv.Close()

	auth := newTestAuthenticator(srv, nil)
	config := testConfig(t, hostOnly(srv.URL))

	if err := auth.EnsureToken(context.Background(), config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config[docuconfig.KeyAccessToken] != "live-token-123456" {
		t.Fatalf("expected access_token to be set, got %q", config[docuconfig.KeyAccessToken])
	}
	if gotGrantType != "urn:ietf:params:oauth:grant-type:jwt-bearer" {
		t.Fatalf("unexpected grant_type: %q", gotGrantType)
	}
}

func TestEnsureToken_MissingAccessTokenInResponse(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tokenResponse{})
	}))
	defer srv.Close()

	auth := newTestAuthenticator(srv, nil)
	config := testConfig(t, hostOnly(srv.URL))

	err := auth.EnsureToken(context.Background(), config)
	if err == nil {
		t.Fatal("expected error when access_token is missing from response")
	}
}

func TestEnsureToken_NonOKStatusFails(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})
	}))
	defer srv.Close()

	auth := newTestAuthenticator(srv, nil)
	config := testConfig(t, hostOnly(srv.URL))

	if err := auth.EnsureToken(context.Background(), config); err == nil {
		t.Fatal("expected error on non-2xx OAuth response")
	}
}

func TestEnsureToken_MissingAuthConfigFailsBeforeExchange(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("exchange should not be attempted when required config is missing")
	}))
	defer srv.Close()

	auth := newTestAuthenticator(srv, nil)
	err := auth.EnsureToken(context.Background(), map[string]string{docuconfig.KeyIntegrationKey: "ik"})
	if err == nil {
		t.Fatal("expected error for missing required config keys")
	}
}

func TestEnsureToken_UsesSingleFlightCacheAcrossCalls(t *testing.T) {
	var exchanges int
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges++
		json.NewEncoder(w).Encode(tokenResponse{AccessToken: "cached-token-abcdef"})
	}))
	defer srv.Close()

	cache := tokencache.NewInMemory()
	auth := newTestAuthenticator(srv, cache)
	oauthBaseURL := hostOnly(srv.URL)

	first := testConfig(t, oauthBaseURL)
	if err := auth.EnsureToken(context.Background(), first); err != nil {
		t.Fatalf("unexpected error on first call: %v", err)
	}

	second := map[string]string{
		docuconfig.KeyIntegrationKey: first[docuconfig.KeyIntegrationKey],
		docuconfig.KeyUserID:         first[docuconfig.KeyUserID],
		docuconfig.KeyOAuthBaseURL:   oauthBaseURL,
		docuconfig.KeyPrivateKey:     first[docuconfig.KeyPrivateKey],
	}
	if err := auth.EnsureToken(context.Background(), second); err != nil {
		t.Fatalf("unexpected error on second call: %v", err)
	}

	if exchanges != 1 {
		t.Fatalf("expected the second call to reuse the cached token, got %d exchanges", exchanges)
	}
	if second[docuconfig.KeyAccessToken] != "cached-token-abcdef" {
		t.Fatalf("expected cached access_token to be set, got %q", second[docuconfig.KeyAccessToken])
	}
}

func TestMask_KeepsOnlyLastSixCharacters(t *testing.T) {
	token := "eyJhbGciOiJSUzI1NiJ9.payload.signature"
	got := mask(token)
	want := "..." + token[len(token)-6:]
	if got != want {
		t.Fatalf("mask() = %q, want %q", got, want)
	}
}

func TestMask_ShortTokenReturnedAsIs(t *testing.T) {
	if got := mask("abc"); got != "abc" {
		t.Fatalf("mask() = %q, want %q", got, "abc")
	}
}

func hostOnly(url string) string {
	url = strings.TrimPrefix(url, "https://")
	return strings.TrimPrefix(url, "http://")
}
