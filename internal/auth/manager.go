package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/wkhart/workspace-mcp/internal/logging"
	"github.com/wkhart/workspace-mcp/internal/scopes"
)

// ExpiryBuffer is subtracted from a token's expiry when deciding whether it
// is still usable, so tokens are refreshed before they can expire mid-flight
// of an outbound API call.
const ExpiryBuffer = 5 * time.Minute

// Validation reasons surfaced to callers. These are part of the outward
// contract: the dispatch layer relays them verbatim.
const (
	ReasonNoToken       = "No token found"
	ReasonTokenExpired  = "Token expired"
	ReasonRefreshFailed = "Token refresh failed"
)

// Status is the transient result of a validation call. It is computed fresh
// on every call and never cached.
type Status struct {
	Valid          bool
	Token          *Token   // set only when Valid
	Reason         string   // set only when !Valid
	AuthURL        string   // consent URL to recover, set only when !Valid
	RequiredScopes []string // the scopes the caller asked for, echoed back
}

// Observer receives lifecycle outcomes, used to feed metrics without the
// manager depending on an instrumentation backend.
type Observer interface {
	// TokenValidation records the outcome of a validation call:
	// valid, absent, expired, refresh_failed, or missing_scope.
	TokenValidation(result string)

	// TokenRefresh records the outcome of a refresh exchange:
	// success or failure.
	TokenRefresh(result string)
}

// Manager orchestrates the credential lifecycle for all accounts: it owns
// the expiry/refresh/scope decision logic and is the only component that
// writes tokens to the store. Safe for concurrent use; refresh attempts for
// the same account are coalesced so concurrent callers await one in-flight
// exchange instead of issuing duplicates.
type Manager struct {
	store     Store
	exchanger Exchanger
	registry  *scopes.Registry
	logger    *slog.Logger
	observer  Observer
	buffer    time.Duration
	now       func() time.Time

	refreshGroup singleflight.Group
}

// NewManager creates a token manager over the given store, exchanger, and
// scope registry.
func NewManager(store Store, exchanger Exchanger, registry *scopes.Registry) *Manager {
	return &Manager{
		store:     store,
		exchanger: exchanger,
		registry:  registry,
		logger:    slog.Default(),
		buffer:    ExpiryBuffer,
		now:       time.Now,
	}
}

// SetLogger sets a custom logger for the manager
func (m *Manager) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// SetObserver attaches a metrics observer. A nil observer disables
// observation.
func (m *Manager) SetObserver(obs Observer) {
	m.observer = obs
}

func (m *Manager) observeValidation(result string) {
	if m.observer != nil {
		m.observer.TokenValidation(result)
	}
}

func (m *Manager) observeRefresh(result string) {
	if m.observer != nil {
		m.observer.TokenRefresh(result)
	}
}

// AuthURL builds the consent URL for the given scopes. An empty scope list
// requests the full registry union, so one consent covers every module and
// the user is not re-prompted as they use more tools.
func (m *Manager) AuthURL(requiredScopes []string) string {
	if len(requiredScopes) == 0 {
		requiredScopes = m.registry.All()
	}
	return m.exchanger.AuthURL(requiredScopes)
}

// ValidateToken decides whether the account has a currently usable token,
// refreshing an expired one transparently when a refresh token is on file.
//
// The returned status is never valid unless the token is unexpired (with
// buffer) and its grant list covers every required scope. When requiredScopes
// is empty, only expiry is checked. Storage failures are returned as errors;
// every lifecycle outcome (absent, expired, refresh failed, missing scope)
// is reported through the status instead.
func (m *Manager) ValidateToken(ctx context.Context, email string, requiredScopes []string) (*Status, error) {
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}

	token, err := m.store.Load(ctx, email)
	if err != nil {
		if KindOf(err) == KindTokenNotFound {
			m.logger.Debug("no token on file", logging.UserHash(email))
			m.observeValidation("absent")
			return m.reauthStatus(ReasonNoToken, requiredScopes), nil
		}
		return nil, err
	}

	if token.ExpiredAt(m.now(), m.buffer) {
		if token.RefreshToken == "" {
			m.logger.Warn("token expired with no refresh token", logging.UserHash(email))
			m.observeValidation("expired")
			return m.reauthStatus(ReasonTokenExpired, requiredScopes), nil
		}

		refreshed, err := m.refresh(ctx, email)
		if err != nil {
			// a storage failure is not a lifecycle outcome: the exchange may
			// even have succeeded, so it surfaces as an error, not as a
			// re-auth status
			if KindOf(err) == KindStorageUnavailable {
				return nil, err
			}
			m.logger.Warn("token refresh failed",
				logging.UserHash(email),
				logging.Err(err))
			m.observeValidation("refresh_failed")
			return m.reauthStatus(ReasonRefreshFailed, requiredScopes), nil
		}
		token = refreshed
	}

	// Scope coverage is checked after a successful refresh: a refreshed
	// token carries the same grant list, so a stale grant still forces
	// re-consent for the superset of scopes.
	if len(requiredScopes) > 0 {
		if err := scopes.ValidateRequired(token.Scopes(), requiredScopes); err != nil {
			m.logger.Info("token missing required scope",
				logging.UserHash(email),
				logging.Err(err))
			m.observeValidation("missing_scope")
			status := m.reauthStatus(err.Error(), requiredScopes)
			return status, nil
		}
	}

	m.observeValidation("valid")
	return &Status{Valid: true, Token: token}, nil
}

func (m *Manager) reauthStatus(reason string, requiredScopes []string) *Status {
	return &Status{
		Valid:          false,
		Reason:         reason,
		AuthURL:        m.AuthURL(requiredScopes),
		RequiredScopes: requiredScopes,
	}
}

// refresh runs the EXPIRED -> REFRESHING transition. Attempts for the same
// account are coalesced; the flight re-loads the stored token so a caller
// that waited on another flight's refresh adopts its result instead of
// refreshing again.
func (m *Manager) refresh(ctx context.Context, email string) (*Token, error) {
	v, err, _ := m.refreshGroup.Do(SanitizeEmail(email), func() (interface{}, error) {
		current, err := m.store.Load(ctx, email)
		if err != nil {
			return nil, err
		}
		if !current.ExpiredAt(m.now(), m.buffer) {
			return current, nil
		}
		if current.RefreshToken == "" {
			return nil, errMissingRefreshToken
		}

		refreshed, err := m.exchanger.Refresh(ctx, current.RefreshToken)
		if err != nil {
			m.observeRefresh("failure")
			return nil, ErrTokenRefreshFailed(email, err)
		}

		if refreshed.RefreshToken == "" {
			refreshed.RefreshToken = current.RefreshToken
		}
		if refreshed.Scope == "" {
			// some providers omit the scope field on refresh; the grant
			// list is unchanged by a refresh
			refreshed.Scope = current.Scope
		}

		// the exchange succeeded; a persistence failure is a storage error,
		// not a refresh failure
		if err := m.store.Save(ctx, email, refreshed); err != nil {
			return nil, err
		}

		m.logger.Info("refreshed access token",
			logging.UserHash(email),
			"expiry", refreshed.Expiry())
		m.observeRefresh("success")
		return refreshed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Token), nil
}

// SaveToken persists the token as the account's durable credential record.
func (m *Manager) SaveToken(ctx context.Context, email string, token *Token) error {
	if err := m.store.Save(ctx, email, token); err != nil {
		return err
	}
	m.logger.Info("saved token",
		logging.UserHash(email),
		"expiry", token.Expiry())
	return nil
}

// DeleteToken removes the account's credential record. Idempotent.
func (m *Manager) DeleteToken(ctx context.Context, email string) error {
	return m.store.Delete(ctx, email)
}

// ExchangeCode trades an authorization code for a token and persists it as
// the account's credential record. The code is single-use: on failure the
// caller must obtain a fresh one from a new consent URL.
func (m *Manager) ExchangeCode(ctx context.Context, email, code string) (*Token, error) {
	token, err := m.exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := m.SaveToken(ctx, email, token); err != nil {
		return nil, err
	}
	return token, nil
}

// HasToken reports whether any credential record exists for the account,
// without checking validity.
func (m *Manager) HasToken(ctx context.Context, email string) bool {
	_, err := m.store.Load(ctx, email)
	return err == nil
}
