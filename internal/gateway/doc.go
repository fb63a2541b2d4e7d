// Package gateway wires the tour-gateway components into a running server.
//
// # Overview
//
// The Gateway owns the TTL store, the embedded destination catalog, the tool
// registry, and the HTTP server. It registers the built-in tool packs
// (tourism, booking, reservation) and, when credentials are configured, the
// ATM lookup and experiences packs.
//
// # Lifecycle
//
//	gw, err := gateway.New(ctx, cfg, logger)
//	if err != nil { ... }
//	err = gw.Run(ctx) // blocks until ctx is canceled
//
// Run listens on server.http_addr, serves /health, /health/ready, and the
// /mcp endpoint, and shuts down gracefully when the context is canceled.
//
// # Store backends
//
// The store.backend config key selects memory (default), sqlite, or redis.
// All lifecycle state (bookings, reservations, user profiles, cached API
// tokens) lives in that store and expires per the configured TTLs.
package gateway
