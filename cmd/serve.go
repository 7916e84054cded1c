package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/wkhart/workspace-mcp/internal/accounts"
	"github.com/wkhart/workspace-mcp/internal/auth"
	"github.com/wkhart/workspace-mcp/internal/auth/oauthstore"
	"github.com/wkhart/workspace-mcp/internal/google"
	"github.com/wkhart/workspace-mcp/internal/instrumentation"
	"github.com/wkhart/workspace-mcp/internal/scopes"
	"github.com/wkhart/workspace-mcp/internal/server"
	"github.com/wkhart/workspace-mcp/internal/tools/auth_tools"
	"github.com/wkhart/workspace-mcp/internal/tools/calendar_tools"
	"github.com/wkhart/workspace-mcp/internal/tools/drive_tools"
	"github.com/wkhart/workspace-mcp/internal/tools/gmail_tools"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server (default: true)
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

type serveOptions struct {
	debugMode          bool
	transport          string
	httpAddr           string
	yolo               bool
	googleClientID     string
	googleClientSecret string
	redirectURI        string
	tokenStore         string
	credentialsDir     string
	accountsFile       string
	metrics            MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the Model Context Protocol (MCP) server to provide Gmail, Calendar,
and Drive tools for AI assistants.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport

Safety Mode:
  By default, the server operates in read-only mode, providing only safe
  operations. Use --yolo to enable write operations (sending mail, creating
  and deleting events, uploading files).

OAuth Configuration:
  --google-client-id and --google-client-secret flags
  OR GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars
  Required for the authorization code exchange and token refresh.

Token Storage:
  Tokens are stored on disk by default (one file per account under the
  credentials directory). Use --token-store memory for ephemeral storage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts)
		},
	}

	cmd.Flags().BoolVar(&opts.debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", "stdio", "Transport type: stdio or streamable-http")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	cmd.Flags().BoolVar(&opts.yolo, "yolo", false, "Enable write operations (sending mail, event changes, uploads). Default is read-only mode.")
	cmd.Flags().StringVar(&opts.googleClientID, "google-client-id", "", "Google OAuth Client ID. Can also use GOOGLE_CLIENT_ID env var.")
	cmd.Flags().StringVar(&opts.googleClientSecret, "google-client-secret", "", "Google OAuth Client Secret. Can also use GOOGLE_CLIENT_SECRET env var.")
	cmd.Flags().StringVar(&opts.redirectURI, "redirect-uri", "", "OAuth redirect URI. Can also use GOOGLE_REDIRECT_URI env var. Defaults to the out-of-band flow.")
	cmd.Flags().StringVar(&opts.tokenStore, "token-store", "file", "Token storage backend: file or memory")
	cmd.Flags().StringVar(&opts.credentialsDir, "credentials-dir", "", "Directory for stored tokens (file backend). Can also use WORKSPACE_MCP_CREDENTIALS_DIR env var.")
	cmd.Flags().StringVar(&opts.accountsFile, "accounts-file", "", "Path to the account registry file. Can also use WORKSPACE_MCP_ACCOUNTS_FILE env var.")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", true, "Enable the metrics server on a dedicated port. Can also use METRICS_ENABLED env var.")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", ":9090", "Metrics server address. Can also use METRICS_ADDR env var.")

	return cmd
}

func runServe(opts serveOptions) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(opts.debugMode)

	// Load metrics config from environment if not set via flags
	if !opts.metrics.Enabled {
		if os.Getenv("METRICS_ENABLED") == "true" {
			opts.metrics.Enabled = true
		}
	}
	if opts.metrics.Addr == "" || opts.metrics.Addr == ":9090" {
		if addr := os.Getenv("METRICS_ADDR"); addr != "" {
			opts.metrics.Addr = addr
		}
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			if opts.transport != "stdio" {
				log.Printf("Error during instrumentation shutdown: %v", err)
			}
		}
	}()

	// Start metrics server if enabled and not in stdio mode
	var metricsServer *server.MetricsServer
	if opts.transport != "stdio" && opts.metrics.Enabled && provider.Enabled() {
		var err error
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metrics.Addr,
			Enabled:                 true,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && err != http.ErrServerClosed {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			log.Printf("Metrics server started on %s", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	conf, err := oauthConfigFromOptions(opts.googleClientID, opts.googleClientSecret, opts.redirectURI)
	if err != nil {
		return err
	}

	store, closeStore, err := newTokenStore(opts.tokenStore, opts.credentialsDir, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	scopesReg := scopes.NewRegistry()
	google.RegisterDefaultScopes(scopesReg)

	manager := auth.NewManager(store, auth.NewGoogleExchanger(conf), scopesReg)
	manager.SetLogger(logger)
	if provider.Enabled() {
		manager.SetObserver(instrumentation.NewLifecycleObserver(provider.Metrics()))
	}

	accountsPath := opts.accountsFile
	if accountsPath == "" {
		accountsPath = accounts.AccountsFile()
	}
	accountsReg := accounts.NewRegistry(accountsPath, manager)
	accountsReg.SetLogger(logger)

	// readOnly is the inverse of yolo
	readOnly := !opts.yolo

	var auditLogger *instrumentation.AuditLogger
	if provider.Enabled() {
		auditLogger = instrumentation.NewAuditLoggerWithConfig(nil, instrConfig.AuditLogging)
	}

	serverContext := server.NewServerContext(shutdownCtx, server.Options{
		Manager:         manager,
		Accounts:        accountsReg,
		Scopes:          scopesReg,
		OAuthConfig:     conf,
		ReadOnly:        readOnly,
		Instrumentation: provider,
		AuditLogger:     auditLogger,
	})
	defer func() {
		// Shutdown metrics server first
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				log.Printf("Error during metrics server shutdown: %v", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			if opts.transport != "stdio" {
				log.Printf("Error during server context shutdown: %v", err)
			}
		}
	}()

	// Create MCP server
	mcpSrv := mcpserver.NewMCPServer("workspace-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	// Log the mode for visibility (only for non-stdio transports)
	if opts.transport != "stdio" {
		if readOnly {
			log.Println("Starting server in READ-ONLY mode (use --yolo to enable write operations)")
		} else {
			log.Println("Starting server with WRITE operations enabled (--yolo flag is set)")
		}
	}

	if err := registerAllTools(mcpSrv, serverContext, readOnly); err != nil {
		return err
	}

	switch opts.transport {
	case "stdio":
		return runStdioServer(mcpSrv)
	case "streamable-http":
		fmt.Printf("Starting workspace-mcp MCP server with %s transport...\n", opts.transport)
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, opts.httpAddr)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", opts.transport)
	}
}

// newLogger builds the process logger. Logs go to stderr so they never
// corrupt the stdio transport.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// oauthConfigFromOptions builds the OAuth config from flags, falling back
// to the environment for anything not set explicitly.
func oauthConfigFromOptions(clientID, clientSecret, redirectURI string) (*oauth2.Config, error) {
	if clientID == "" {
		clientID = os.Getenv(google.EnvClientID)
	}
	if clientSecret == "" {
		clientSecret = os.Getenv(google.EnvClientSecret)
	}
	if redirectURI == "" {
		redirectURI = os.Getenv(google.EnvRedirectURI)
	}
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("Google OAuth credentials missing: set --google-client-id/--google-client-secret or the %s/%s env vars", google.EnvClientID, google.EnvClientSecret)
	}
	return google.NewOAuthConfig(clientID, clientSecret, redirectURI), nil
}

// newTokenStore builds the token storage backend.
func newTokenStore(kind, credentialsDir string, logger *slog.Logger) (auth.Store, func(), error) {
	switch kind {
	case "file":
		dir := credentialsDir
		if dir == "" {
			dir = auth.CredentialsDir()
		}
		fs := auth.NewFileStore(dir)
		fs.SetLogger(logger)
		return fs, func() {}, nil
	case "memory":
		ms := oauthstore.NewMemory()
		return ms, ms.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported token store type: %s (supported: file, memory)", kind)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// registerAllTools registers all MCP tools
func registerAllTools(mcpSrv *mcpserver.MCPServer, ctx *server.ServerContext, readOnly bool) error {
	type toolRegistration struct {
		name     string
		register func() error
	}

	registrations := []toolRegistration{
		{
			name: "Auth",
			register: func() error {
				return auth_tools.RegisterAuthTools(mcpSrv, ctx)
			},
		},
		{
			name: "Gmail",
			register: func() error {
				return gmail_tools.RegisterGmailTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Calendar",
			register: func() error {
				return calendar_tools.RegisterCalendarTools(mcpSrv, ctx, readOnly)
			},
		},
		{
			name: "Drive",
			register: func() error {
				return drive_tools.RegisterDriveTools(mcpSrv, ctx, readOnly)
			},
		},
	}

	for _, reg := range registrations {
		if err := reg.register(); err != nil {
			return fmt.Errorf("failed to register %s: %w", reg.name, err)
		}
	}

	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, addr string) error {
	streamableServer := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)

	healthChecker := server.NewHealthChecker(sc)

	mux := http.NewServeMux()
	mux.Handle("/mcp", streamableServer)
	healthChecker.RegisterHealthEndpoints(mux)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		healthChecker.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error during HTTP server shutdown: %w", err)
		}
		return nil
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("server stopped with error: %w", err)
		}
		return nil
	}
}
