// Package config handles configuration loading for tour-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${TOUR_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	lifecycle:
//	  booking_ttl: "2h"
//	  reservation_ttl: "90m"
//	  profile_ttl: "30m"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: ":8080"
//
// Store backend (memory is the default; sqlite and redis persist state):
//
//	store:
//	  backend: "redis"
//	  redis:
//	    addr: "localhost:6379"
//	    password: "${REDIS_PASSWORD}"
//	    db: 0
//
// Optional external APIs are disabled unless configured:
//
//	mastercard:
//	  enabled: true
//	  consumer_key: "${MASTERCARD_CONSUMER_KEY}"
//	  private_key_path: "./signing.pem"
//	  api_url: "https://sandbox.api.mastercard.com"
//
//	dsapi:
//	  enabled: true
//	  base_url: "https://api.deskline.net"
//	  username: "${DSAPI_USERNAME}"
//	  password: "${DSAPI_PASSWORD}"
//	  region: "tirol"
//	  db_code: "TIR"
package config
