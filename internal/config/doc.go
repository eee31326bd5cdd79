// Package config handles configuration loading for taskboard.
//
// Configuration is loaded from YAML files with environment variable
// expansion. Values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${TASKBOARD_JWT_SECRET}"
//
// Required keys are server.http_addr, database.path and auth.jwt_secret.
// auth.token_ttl is a Go duration string and defaults to 1h.
package config
