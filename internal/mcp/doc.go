// Package mcp implements the Model Context Protocol server for external tool access.
//
// # Overview
//
// MCP (Model Context Protocol) is a standard for AI tool integration. This package
// provides an MCP-compatible HTTP server that exposes the tour gateway's tools
// (destination search, bookings, reservations, ATM lookup, experiences) to
// external AI clients like Claude Desktop or custom applications.
//
// # Protocol
//
// The server implements the Streamable HTTP transport: JSON-RPC 2.0 over a
// single HTTP endpoint.
//
//   - POST /mcp - JSON-RPC requests (initialize, tools/list, tools/call)
//   - DELETE /mcp - session termination
//
// Server-initiated SSE streams are not supported; GET returns 405.
//
// # Authentication
//
// Three auth paths, tried in order:
//
//   - Token in the URL path: /mcp/<token>
//   - Token as a query parameter: /mcp?token=<token>
//   - JWT bearer: Authorization: Bearer <jwt>
//
// Opaque tokens are managed via the TokenStore and map to capability lists
// (tourism, booking, finance, experiences). Only tools whose required
// capabilities are covered appear in tools/list and may be called.
//
// # Sessions
//
// The initialize handshake creates a session and returns its id in the
// Mcp-Session-Id response header. Subsequent requests must echo that header;
// DELETE with the header (and matching auth) terminates the session.
//
// # Tool Discovery
//
// Clients call tools/list to discover available tools:
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/list",
//	  "id": 1
//	}
//
// Response includes tool schemas in JSON Schema format.
//
// # Tool Execution
//
// Clients call tools/call to execute a tool:
//
//	{
//	  "jsonrpc": "2.0",
//	  "method": "tools/call",
//	  "params": {
//	    "name": "prepare_booking",
//	    "arguments": {"attraction_id": 101, "number_of_tickets": 2}
//	  },
//	  "id": 2
//	}
//
// Domain errors (unknown booking, category mismatch, validation failures) come
// back as isError tool results; protocol failures become JSON-RPC errors.
//
// # Usage
//
//	tokenStore := mcp.NewTokenStore()
//	server, err := mcp.NewServer(mcp.Config{
//		Registry:   registry,
//		Dispatcher: dispatcher,
//		TokenStore: tokenStore,
//	})
//	server.RegisterRoutes(mux)
//
// Generate an access token:
//
//	token := tokenStore.CreateToken([]string{"tourism", "booking"})
//
// # Integration with Claude Desktop
//
// Add to Claude Desktop's MCP configuration:
//
//	{
//	  "mcpServers": {
//	    "tour-gateway": {
//	      "url": "http://localhost:8080/mcp/<token>"
//	    }
//	  }
//	}
package mcp
