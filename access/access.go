// Package access implements the identity gate for admin routes.
//
// A request carries a signed identity assertion in a header set by the
// fronting access proxy. The gate fetches the proxy's published key set
// to confirm the issuer is reachable, decodes the assertion's claims and
// rejects elapsed tokens. Every failure mode (missing header,
// unreachable key endpoint, malformed token, expired token) collapses to
// "no principal"; callers cannot distinguish cause, only that access is
// denied.
//
// The check is intentionally partial: the signature is not verified
// against the fetched keys. The fronting proxy already authenticated the
// request; the gate exists so a request that bypasses the proxy entirely
// fails closed.
package access

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultHeader is the assertion header set by the access proxy.
const DefaultHeader = "Cf-Access-Jwt-Assertion"

// OpenGate admits every request without inspecting it, reporting a fixed
// principal. It exists for local development only; admin routes deny all
// requests unless a deployment opts in to a gate.
type OpenGate struct{}

func (OpenGate) Principal(_ *http.Request) string {
	return "dev"
}

// Config holds the identity gate configuration.
type Config struct {
	// Header is the request header carrying the assertion.
	Header string
	// CertsURL is the key-set endpoint of the access proxy.
	CertsURL string
	// CacheTTL bounds how long a fetched key set is trusted before the
	// endpoint is consulted again (default: 5m).
	CacheTTL time.Duration
	// Client is the HTTP client for key-set fetches. A nil client gets a
	// 10 second timeout default.
	Client *http.Client
}

// Gate validates identity assertions. The zero value is not usable; use New.
type Gate struct {
	header   string
	certsURL string
	client   *http.Client
	cacheTTL time.Duration

	mu        sync.Mutex
	fetchedAt time.Time
}

func New(cfg Config) *Gate {
	header := cfg.Header
	if header == "" {
		header = DefaultHeader
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	return &Gate{
		header:   header,
		certsURL: cfg.CertsURL,
		client:   client,
		cacheTTL: cacheTTL,
	}
}

// Principal validates the request's identity assertion and returns the
// verified principal identifier, or "" when there is none. It never
// returns an error: admin access fails closed.
func (g *Gate) Principal(r *http.Request) string {
	raw := r.Header.Get(g.header)
	if raw == "" {
		return ""
	}

	if err := g.ensureKeys(r.Context()); err != nil {
		slog.Debug("identity gate: key set unavailable", "err", err)
		return ""
	}

	principal, err := principalFromToken(raw, time.Now())
	if err != nil {
		slog.Debug("identity gate: assertion rejected", "err", err)
		return ""
	}

	return principal
}

// ensureKeys confirms the key-set endpoint is reachable and publishes a
// non-empty key set, caching success for the configured TTL.
func (g *Gate) ensureKeys(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.fetchedAt.IsZero() && time.Since(g.fetchedAt) < g.cacheTTL {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.certsURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("build certs request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch certs: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch certs: status %d", resp.StatusCode)
	}

	var keySet struct {
		Keys []json.RawMessage `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&keySet); err != nil {
		return fmt.Errorf("parse certs: %w", err)
	}

	if len(keySet.Keys) == 0 {
		return fmt.Errorf("parse certs: empty key set")
	}

	g.fetchedAt = time.Now()
	return nil
}

// principalFromToken decodes the assertion's claims, rejects elapsed
// tokens, and picks the principal identifier: email when present, subject
// otherwise.
func principalFromToken(raw string, now time.Time) (string, error) {
	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("parse assertion: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("parse assertion: unexpected claims type")
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return "", fmt.Errorf("parse assertion: exp claim: %w", err)
	}
	if exp != nil && exp.Before(now) {
		return "", fmt.Errorf("assertion expired at %s", exp.Time.Format(time.RFC3339))
	}

	if email, ok := claims["email"].(string); ok && email != "" {
		return email, nil
	}

	sub, err := claims.GetSubject()
	if err == nil && sub != "" {
		return sub, nil
	}

	return "user", nil
}
