// Copyright (C) 2025 azure-sharepoint-mcp-server authors.
// See LICENSE for copying information.

// Package azauth resolves bearer tokens for the Microsoft Graph API by
// trying an ordered list of credential strategies.
package azauth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	mon = monkit.Package()

	// Error is a class of azauth errors.
	Error = errs.Class("azauth")

	// ErrIncompleteCredentials is returned when only part of the
	// tenant/client/secret triple is configured.
	ErrIncompleteCredentials = errs.Class("incomplete credentials")

	// ErrUnavailable is returned when no credential strategy produced a token.
	ErrUnavailable = errs.Class("credentials unavailable")
)

// GraphScope is the OAuth 2.0 scope requested for Microsoft Graph tokens.
const GraphScope = "https://graph.microsoft.com/.default"

// DefaultRefreshMargin is how long before expiry a cached token is
// considered stale and refreshed.
const DefaultRefreshMargin = 2 * time.Minute

// Token is an opaque bearer value with an expiry. It is held in memory only.
type Token struct {
	Value     string
	ExpiresOn time.Time
}

// Valid reports whether the token can still be used, leaving margin before
// its expiry for the request it authorizes to complete.
func (t Token) Valid(now time.Time, margin time.Duration) bool {
	return t.Value != "" && now.Add(margin).Before(t.ExpiresOn)
}

// Config configures credential resolution.
type Config struct {
	TenantID     string
	ClientID     string
	ClientSecret string

	// DisableCLI skips the Azure CLI strategy, for runtimes where shelling
	// out to `az` is not possible.
	DisableCLI bool

	// StaticToken bypasses Azure AD entirely and uses the given bearer
	// value for every request. Only useful for local development and tests
	// against mock Graph endpoints.
	StaticToken string

	// RefreshMargin is how long before expiry tokens are refreshed.
	// Defaults to DefaultRefreshMargin.
	RefreshMargin time.Duration
}

// Validate checks that the tenant/client/secret triple is either fully
// present or fully absent. A partial triple fails fast instead of attempting
// a partial authentication flow.
func (c Config) Validate() error {
	set := 0
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"tenant-id", c.TenantID},
		{"client-id", c.ClientID},
		{"client-secret", c.ClientSecret},
	} {
		if field.value != "" {
			set++
		} else {
			missing = append(missing, field.name)
		}
	}
	if set != 0 && set != 3 {
		return ErrIncompleteCredentials.New("missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// A Strategy attempts to produce a Graph token from one credential source.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context) (Token, error)
}

// Resolver produces Graph tokens by trying strategies in order, caching the
// result in memory until it nears expiry.
type Resolver struct {
	strategies []Strategy
	margin     time.Duration

	// mu serializes refresh: concurrent callers observing a stale token
	// wait for the single in-flight resolution instead of issuing their own.
	mu    sync.Mutex
	token Token
}

// NewResolver builds a Resolver from config. Strategies are tried in order:
// the explicit client-secret triple (when configured), the ambient managed
// identity, and finally the Azure CLI session unless disabled.
func NewResolver(config Config) (*Resolver, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.StaticToken != "" {
		return NewResolverWithStrategies([]Strategy{NewStaticStrategy(config.StaticToken)}, config.RefreshMargin), nil
	}

	var strategies []Strategy

	if config.ClientSecret != "" {
		s, err := NewClientSecretStrategy(config.TenantID, config.ClientID, config.ClientSecret)
		if err != nil {
			return nil, Error.Wrap(err)
		}
		strategies = append(strategies, s)
	}

	s, err := NewManagedIdentityStrategy()
	if err != nil {
		return nil, Error.Wrap(err)
	}
	strategies = append(strategies, s)

	if !config.DisableCLI {
		s, err := NewCLIStrategy()
		if err != nil {
			return nil, Error.Wrap(err)
		}
		strategies = append(strategies, s)
	}

	return NewResolverWithStrategies(strategies, config.RefreshMargin), nil
}

// NewResolverWithStrategies builds a Resolver over an explicit strategy
// list. Tests inject counting fakes through here.
func NewResolverWithStrategies(strategies []Strategy, margin time.Duration) *Resolver {
	if margin <= 0 {
		margin = DefaultRefreshMargin
	}
	return &Resolver{strategies: strategies, margin: margin}
}

// Token returns a valid bearer token, resolving a fresh one when the cached
// token is absent or within the refresh margin of expiry. The first strategy
// that yields a token wins; later strategies are not attempted. If every
// strategy fails, the error names each attempted strategy and its reason.
func (r *Resolver) Token(ctx context.Context) (_ Token, err error) {
	defer mon.Task()(&ctx)(&err)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token.Valid(time.Now(), r.margin) {
		return r.token, nil
	}

	var attempts []string
	for _, strategy := range r.strategies {
		token, err := strategy.Resolve(ctx)
		if err != nil {
			attempts = append(attempts, strategy.Name()+": "+err.Error())
			continue
		}
		r.token = token
		return token, nil
	}

	if len(attempts) == 0 {
		return Token{}, ErrUnavailable.New("no credential strategies configured")
	}
	return Token{}, ErrUnavailable.New("all credential strategies failed: %s", strings.Join(attempts, "; "))
}

// Invalidate drops the cached token so the next call resolves a fresh one.
func (r *Resolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.token = Token{}
}
