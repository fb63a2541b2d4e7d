// ABOUTME: Gateway orchestrator that wires the catalog, stores, and tool packs
// ABOUTME: Manages the HTTP server, MCP endpoint, and health check lifecycle

package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/alpenstack/tour-gateway/internal/auth"
	"github.com/alpenstack/tour-gateway/internal/booking"
	"github.com/alpenstack/tour-gateway/internal/catalog"
	"github.com/alpenstack/tour-gateway/internal/config"
	"github.com/alpenstack/tour-gateway/internal/dsapi"
	"github.com/alpenstack/tour-gateway/internal/mastercard"
	"github.com/alpenstack/tour-gateway/internal/mcp"
	"github.com/alpenstack/tour-gateway/internal/recommend"
	"github.com/alpenstack/tour-gateway/internal/reservation"
	"github.com/alpenstack/tour-gateway/internal/tools"
	"github.com/alpenstack/tour-gateway/internal/ttlstore"
)

// AllCapabilities lists every capability the built-in packs require.
var AllCapabilities = []string{"tourism", "booking", "finance", "experiences"}

// Gateway orchestrates the tour-gateway server components.
// It owns the TTL store, the tool registry, and the HTTP server exposing
// the MCP endpoint and health checks.
type Gateway struct {
	config     *config.Config
	store      ttlstore.Store
	catalog    *catalog.Repository
	registry   *tools.Registry
	dispatcher *tools.Dispatcher
	mcpTokens  *mcp.TokenStore
	mcpServer  *mcp.Server
	httpServer *http.Server
	logger     *slog.Logger

	// mcpEndpoint is the ready-to-use MCP URL printed at startup
	mcpEndpoint string
}

// initStore creates the TTL store selected by the config.
func initStore(ctx context.Context, cfg *config.Config) (ttlstore.Store, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return ttlstore.NewMemoryStore(), nil
	case "sqlite":
		s, err := ttlstore.NewSQLiteStore(cfg.Store.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("initializing sqlite store: %w", err)
		}
		return s, nil
	case "redis":
		s, err := ttlstore.NewRedisStore(ctx, ttlstore.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// registerCorePacks registers the packs that need no external credentials.
func registerCorePacks(registry *tools.Registry, repo *catalog.Repository, store ttlstore.Store, cfg *config.Config) error {
	profiles := recommend.NewProfileStore(store, cfg.Lifecycle.ProfileTTL)
	bookings := booking.NewManager(store, repo, cfg.Lifecycle.BookingTTL)
	tables := reservation.NewManager(store, repo, cfg.Lifecycle.ReservationTTL)

	if err := registry.RegisterPack(tools.TourismPack(repo, profiles)); err != nil {
		return fmt.Errorf("registering tourism pack: %w", err)
	}
	if err := registry.RegisterPack(tools.BookingPack(bookings)); err != nil {
		return fmt.Errorf("registering booking pack: %w", err)
	}
	if err := registry.RegisterPack(tools.ReservationPack(tables)); err != nil {
		return fmt.Errorf("registering reservation pack: %w", err)
	}
	return nil
}

// registerATMPack wires the signed ATM locations API when configured.
func registerATMPack(registry *tools.Registry, cfg config.MastercardConfig, logger *slog.Logger) error {
	if !cfg.Enabled {
		logger.Info("mastercard not configured, ATM tools disabled")
		return nil
	}

	keyPEM, err := os.ReadFile(cfg.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("reading mastercard private key: %w", err)
	}
	signer, err := mastercard.NewSigner(cfg.ConsumerKey, keyPEM)
	if err != nil {
		return fmt.Errorf("creating mastercard signer: %w", err)
	}
	client := mastercard.NewClient(cfg.APIURL, signer, nil)

	if err := registry.RegisterPack(tools.ATMPack(client)); err != nil {
		return fmt.Errorf("registering ATM pack: %w", err)
	}
	return nil
}

// registerExperiencesPack wires the experiences provider API when configured.
func registerExperiencesPack(registry *tools.Registry, cfg config.DSAPIConfig, store ttlstore.Store, logger *slog.Logger) error {
	if !cfg.Enabled {
		logger.Info("dsapi not configured, experience tools disabled")
		return nil
	}

	client := dsapi.NewClient(dsapi.Config{
		BaseURL:    cfg.BaseURL,
		Username:   cfg.Username,
		Password:   cfg.Password,
		Region:     cfg.Region,
		DBCode:     cfg.DBCode,
		ThemeLimit: cfg.ThemeLimit,
	}, store, nil)

	if err := registry.RegisterPack(tools.ExperiencesPack(client)); err != nil {
		return fmt.Errorf("registering experiences pack: %w", err)
	}
	return nil
}

// New creates a new Gateway instance with the given configuration.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Gateway, error) {
	s, err := initStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	repo, err := catalog.Load()
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("loading catalog: %w", err)
	}

	registry := tools.NewRegistry(logger.With("component", "tool-registry"))
	dispatcher := tools.NewDispatcher(tools.DispatcherConfig{
		Registry: registry,
		Logger:   logger.With("component", "tool-dispatcher"),
	})

	if err := registerCorePacks(registry, repo, s, cfg); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := registerATMPack(registry, cfg.Mastercard, logger); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := registerExperiencesPack(registry, cfg.DSAPI, s, logger); err != nil {
		_ = s.Close()
		return nil, err
	}

	var verifier auth.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))
		logger.Info("JWT bearer auth enabled for MCP")
	}

	mcpTokens := mcp.NewTokenStore()

	gw := &Gateway{
		config:     cfg,
		store:      s,
		catalog:    repo,
		registry:   registry,
		dispatcher: dispatcher,
		mcpTokens:  mcpTokens,
		logger:     logger.With("component", "gateway"),
	}

	mcpCfg := mcp.Config{
		Registry:      registry,
		Dispatcher:    dispatcher,
		Logger:        logger.With("component", "mcp"),
		TokenVerifier: verifier,
		TokenStore:    mcpTokens,
		RequireAuth:   cfg.Auth.RequireAuth,
	}
	if cfg.Auth.RequireAuth {
		// Mint a startup token so operators have a working URL immediately
		token := mcpTokens.CreateToken(AllCapabilities)
		gw.mcpEndpoint = fmt.Sprintf("http://%s/mcp/%s", cfg.Server.HTTPAddr, token)
	} else {
		// Unauthenticated sessions get access to every pack
		mcpCfg.DefaultCaps = AllCapabilities
		gw.mcpEndpoint = fmt.Sprintf("http://%s/mcp", cfg.Server.HTTPAddr)
	}

	mcpServer, err := mcp.NewServer(mcpCfg)
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating MCP server: %w", err)
	}
	gw.mcpServer = mcpServer

	mux := http.NewServeMux()

	// Health endpoints - no auth required
	mux.HandleFunc("/health", gw.handleHealth)
	mux.HandleFunc("/health/ready", gw.handleReady)

	mcpServer.RegisterRoutes(mux)

	gw.httpServer = &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return gw, nil
}

// MCPEndpoint returns the URL clients should use to reach the MCP endpoint.
// When auth is required the URL embeds a freshly minted all-capability token.
func (g *Gateway) MCPEndpoint() string {
	return g.mcpEndpoint
}

// MintToken creates a new MCP access token with the given capabilities.
func (g *Gateway) MintToken(capabilities []string) string {
	return g.mcpTokens.CreateToken(capabilities)
}

// Run starts the gateway server and blocks until the context is canceled.
// Returns nil on graceful shutdown (context canceled), or an error if the
// server fails.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.config.Server.HTTPAddr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		g.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := g.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	g.logger.Info("MCP endpoint ready",
		"endpoint", g.mcpEndpoint,
		"tools", len(g.registry.Definitions()),
	)

	var serverErr error
	select {
	case <-ctx.Done():
		g.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		g.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := g.gracefulShutdown()

	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (g *Gateway) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return g.Shutdown(ctx)
}

// Shutdown gracefully stops the HTTP server and releases resources.
func (g *Gateway) Shutdown(ctx context.Context) error {
	g.logger.Info("shutting down gateway")

	var errs []error
	if err := g.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}
	if err := g.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store close: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %v", errs)
	}
	return nil
}

// handleHealth returns 200 OK if the server is alive.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleReady returns 200 OK once at least one tool pack is registered.
func (g *Gateway) handleReady(w http.ResponseWriter, r *http.Request) {
	defs := g.registry.Definitions()
	if len(defs) == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("no tools registered"))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ready (%d tools)", len(defs))
}
