// ABOUTME: Tests for gateway construction and HTTP endpoint wiring.
// ABOUTME: Exercises store selection, pack registration, and health checks.

package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alpenstack/tour-gateway/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{HTTPAddr: "127.0.0.1:0"},
	}
}

func newTestGateway(t *testing.T, cfg *config.Config) *Gateway {
	t.Helper()
	gw, err := New(context.Background(), cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = gw.store.Close() })
	return gw
}

func TestNew_RegistersCorePacks(t *testing.T) {
	gw := newTestGateway(t, testConfig())

	defs := gw.registry.Definitions()
	if len(defs) == 0 {
		t.Fatal("expected tools to be registered")
	}

	names := make(map[string]bool, len(defs))
	for _, d := range defs {
		names[d.Name] = true
	}
	for _, want := range []string{
		"search_destinations",
		"recommend_attractions",
		"prepare_booking",
		"confirm_booking",
		"prepare_restaurant_reservation",
	} {
		if !names[want] {
			t.Errorf("expected tool %s to be registered", want)
		}
	}

	// External API packs stay off without credentials
	if names["find_nearby_atms"] {
		t.Error("ATM tools should be disabled without mastercard config")
	}
	if names["create_experience_search"] {
		t.Error("experience tools should be disabled without dsapi config")
	}
}

func TestNew_ExperiencesPackEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.DSAPI = config.DSAPIConfig{
		Enabled:    true,
		BaseURL:    "https://dsapi.example.test",
		Username:   "tester",
		Password:   "secret",
		Region:     "tirol",
		DBCode:     "TIR",
		ThemeLimit: 50,
	}

	gw := newTestGateway(t, cfg)
	names := make(map[string]bool)
	for _, d := range gw.registry.Definitions() {
		names[d.Name] = true
	}
	for _, want := range []string{
		"create_experience_search",
		"search_experiences",
		"get_filter_options",
	} {
		if !names[want] {
			t.Errorf("expected tool %s to be registered", want)
		}
	}
}

func TestNew_SQLiteBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = "sqlite"
	cfg.Store.SQLite.Path = filepath.Join(t.TempDir(), "gateway.db")

	gw := newTestGateway(t, cfg)
	if gw.store == nil {
		t.Fatal("expected store to be initialized")
	}
}

func TestNew_UnknownBackend(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = "etcd"

	_, err := New(context.Background(), cfg, slog.Default())
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "etcd") {
		t.Errorf("error %q should name the backend", err.Error())
	}
}

func TestHealthEndpoints(t *testing.T) {
	gw := newTestGateway(t, testConfig())

	rr := httptest.NewRecorder()
	gw.httpServer.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("/health status = %d, want 200", rr.Code)
	}

	rr = httptest.NewRecorder()
	gw.httpServer.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("/health/ready status = %d, want 200", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.HasPrefix(string(body), "ready") {
		t.Errorf("/health/ready body = %q, want ready prefix", string(body))
	}
}

func TestMCPEndToEnd(t *testing.T) {
	gw := newTestGateway(t, testConfig())

	// Initialize an MCP session against the wired mux
	initBody := strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	req := httptest.NewRequest(http.MethodPost, "/mcp", initBody)
	rr := httptest.NewRecorder()
	gw.httpServer.Handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("initialize status = %d, body %s", rr.Code, rr.Body.String())
	}
	sessionID := rr.Header().Get("Mcp-Session-Id")
	if sessionID == "" {
		t.Fatal("expected session ID header")
	}

	// Call a tourism tool through the full stack
	callBody := strings.NewReader(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"get_destination","arguments":{"destination_id":1}}}`)
	req = httptest.NewRequest(http.MethodPost, "/mcp", callBody)
	req.Header.Set("Mcp-Session-Id", sessionID)
	rr = httptest.NewRecorder()
	gw.httpServer.Handler.ServeHTTP(rr, req)

	var resp struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
			IsError bool `json:"isError"`
		} `json:"result"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("unexpected JSON-RPC error: %s", resp.Error.Message)
	}
	if resp.Result.IsError {
		t.Fatalf("unexpected tool error: %+v", resp.Result.Content)
	}
	if len(resp.Result.Content) != 1 || !strings.Contains(resp.Result.Content[0].Text, "Vienna") {
		t.Errorf("unexpected content: %+v", resp.Result.Content)
	}
}

func TestMintTokenAndEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.RequireAuth = true
	cfg.Auth.JWTSecret = "test-secret"

	gw := newTestGateway(t, cfg)

	if !strings.Contains(gw.MCPEndpoint(), "/mcp/") {
		t.Errorf("endpoint %q should embed a token when auth is required", gw.MCPEndpoint())
	}

	token := gw.MintToken([]string{"tourism"})
	if caps := gw.mcpTokens.GetCapabilities(token); len(caps) != 1 || caps[0] != "tourism" {
		t.Errorf("unexpected capabilities: %v", caps)
	}
}
