package server

import (
	"context"
	"sync"

	"golang.org/x/oauth2"

	"github.com/wkhart/workspace-mcp/internal/accounts"
	"github.com/wkhart/workspace-mcp/internal/auth"
	"github.com/wkhart/workspace-mcp/internal/calendar"
	"github.com/wkhart/workspace-mcp/internal/drive"
	"github.com/wkhart/workspace-mcp/internal/gmail"
	"github.com/wkhart/workspace-mcp/internal/google"
	"github.com/wkhart/workspace-mcp/internal/instrumentation"
	"github.com/wkhart/workspace-mcp/internal/scopes"
)

// ServerContext holds the shared state for the MCP server: the credential
// lifecycle components, per-account service clients, and instrumentation.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	manager     *auth.Manager
	accountsReg *accounts.Registry
	scopesReg   *scopes.Registry
	oauthConf   *oauth2.Config

	instr   *instrumentation.Provider
	metrics *instrumentation.Metrics
	audit   *instrumentation.AuditLogger

	readOnly bool

	mu sync.RWMutex
	// Service clients are cached per account and rebuilt whenever the
	// validated access token changes (a refresh invalidates the cache).
	gmailClients    map[string]*cachedClient[*gmail.Client]
	calendarClients map[string]*cachedClient[*calendar.Client]
	driveClients    map[string]*cachedClient[*drive.Client]
	shutdown        bool
}

type cachedClient[T any] struct {
	client      T
	accessToken string
}

// Options configures a ServerContext.
type Options struct {
	Manager     *auth.Manager
	Accounts    *accounts.Registry
	Scopes      *scopes.Registry
	OAuthConfig *oauth2.Config

	// ReadOnly blocks tools that modify or send data.
	ReadOnly bool

	// Instrumentation is optional; nil disables metrics and audit logging.
	Instrumentation *instrumentation.Provider
	AuditLogger     *instrumentation.AuditLogger
}

// NewServerContext creates a server context from its dependencies.
func NewServerContext(ctx context.Context, opts Options) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:             shutdownCtx,
		cancel:          cancel,
		manager:         opts.Manager,
		accountsReg:     opts.Accounts,
		scopesReg:       opts.Scopes,
		oauthConf:       opts.OAuthConfig,
		instr:           opts.Instrumentation,
		audit:           opts.AuditLogger,
		readOnly:        opts.ReadOnly,
		gmailClients:    make(map[string]*cachedClient[*gmail.Client]),
		calendarClients: make(map[string]*cachedClient[*calendar.Client]),
		driveClients:    make(map[string]*cachedClient[*drive.Client]),
	}
}

// Context returns the server's shutdown-aware context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// TokenManager returns the credential lifecycle manager.
func (sc *ServerContext) TokenManager() *auth.Manager {
	return sc.manager
}

// Accounts returns the account registry.
func (sc *ServerContext) Accounts() *accounts.Registry {
	return sc.accountsReg
}

// Scopes returns the scope registry.
func (sc *ServerContext) Scopes() *scopes.Registry {
	return sc.scopesReg
}

// ReadOnly reports whether write tools are disabled.
func (sc *ServerContext) ReadOnly() bool {
	return sc.readOnly
}

// Metrics returns the metrics recorder, or nil when instrumentation is
// disabled.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.metrics != nil {
		return sc.metrics
	}
	if sc.instr == nil {
		return nil
	}
	return sc.instr.Metrics()
}

// SetMetrics overrides the metrics recorder. Mainly useful in tests; the
// serve command wires metrics through the instrumentation provider.
func (sc *ServerContext) SetMetrics(metrics *instrumentation.Metrics) {
	sc.metrics = metrics
}

// Audit returns the audit logger, or nil when disabled.
func (sc *ServerContext) Audit() *instrumentation.AuditLogger {
	return sc.audit
}

// providerFor builds a token provider restricted to a module's scopes.
func (sc *ServerContext) providerFor(module string) google.TokenProvider {
	return google.NewManagedProvider(sc.manager, sc.scopesReg.ModuleScopes(module))
}

// GmailClientForAccount returns a Gmail client for the account, validating
// (and if needed refreshing) its token first. The client is cached until
// the access token changes.
func (sc *ServerContext) GmailClientForAccount(ctx context.Context, account string) (*gmail.Client, error) {
	status, err := sc.manager.ValidateToken(ctx, account, sc.scopesReg.ModuleScopes("gmail"))
	if err != nil {
		return nil, err
	}
	if !status.Valid {
		return nil, authRequiredError(account, status)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if cached, ok := sc.gmailClients[account]; ok && cached.accessToken == status.Token.AccessToken {
		return cached.client, nil
	}

	client, err := gmail.NewClientForAccount(sc.ctx, account, sc.oauthConf, sc.providerFor("gmail"))
	if err != nil {
		return nil, err
	}

	sc.gmailClients[account] = &cachedClient[*gmail.Client]{
		client:      client,
		accessToken: status.Token.AccessToken,
	}
	return client, nil
}

// CalendarClientForAccount returns a Calendar client for the account.
func (sc *ServerContext) CalendarClientForAccount(ctx context.Context, account string) (*calendar.Client, error) {
	status, err := sc.manager.ValidateToken(ctx, account, sc.scopesReg.ModuleScopes("calendar"))
	if err != nil {
		return nil, err
	}
	if !status.Valid {
		return nil, authRequiredError(account, status)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if cached, ok := sc.calendarClients[account]; ok && cached.accessToken == status.Token.AccessToken {
		return cached.client, nil
	}

	client, err := calendar.NewClientForAccount(sc.ctx, account, sc.oauthConf, sc.providerFor("calendar"))
	if err != nil {
		return nil, err
	}

	sc.calendarClients[account] = &cachedClient[*calendar.Client]{
		client:      client,
		accessToken: status.Token.AccessToken,
	}
	return client, nil
}

// DriveClientForAccount returns a Drive client for the account.
func (sc *ServerContext) DriveClientForAccount(ctx context.Context, account string) (*drive.Client, error) {
	status, err := sc.manager.ValidateToken(ctx, account, sc.scopesReg.ModuleScopes("drive"))
	if err != nil {
		return nil, err
	}
	if !status.Valid {
		return nil, authRequiredError(account, status)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if cached, ok := sc.driveClients[account]; ok && cached.accessToken == status.Token.AccessToken {
		return cached.client, nil
	}

	client, err := drive.NewClientForAccount(sc.ctx, account, sc.oauthConf, sc.providerFor("drive"))
	if err != nil {
		return nil, err
	}

	sc.driveClients[account] = &cachedClient[*drive.Client]{
		client:      client,
		accessToken: status.Token.AccessToken,
	}
	return client, nil
}

// InvalidateClientsForAccount drops the account's cached service clients
// so the next call re-validates the token. Used after a Google API call
// fails with an authorization error despite a locally valid token.
func (sc *ServerContext) InvalidateClientsForAccount(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.gmailClients, account)
	delete(sc.calendarClients, account)
	delete(sc.driveClients, account)
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
