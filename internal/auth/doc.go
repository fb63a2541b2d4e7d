// Package auth provides JWT verification for tour-gateway.
//
// # Authentication
//
// MCP clients authenticate with JWT bearer tokens signed with HS256 using
// the configured jwt_secret:
//
//	Authorization: Bearer <token>
//
// The token's subject claim names the capability it grants; the MCP server
// maps the verified subject to that capability when filtering tools.
//
// # Token Management
//
//	verifier := auth.NewJWTVerifier([]byte(secret))
//	token, err := verifier.Generate("booking", 30*24*time.Hour)
//	callerID, err := verifier.Verify(token)
//
// Tokens carry sub, iat, and exp claims. Expired tokens fail verification
// with ErrExpiredToken.
package auth
