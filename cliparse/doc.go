// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Values are resolved in three layers:

  - defaults declared on the Config struct (envDefault tags)
  - environment variables, including a .env file in the working directory
  - CLI flags

CLI flags take precedence over environment variables.

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: sqlite path or PostgreSQL connection string (required)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - TokenSecret: HMAC secret for bearer tokens (required)
  - TokenIssuer: expected token issuer (default: ballot-core)
  - VoteTimeout: upper bound on one vote submission (default: 5s)
  - IdentityCacheSize: verified-token cache entries (default: 1024)
  - ShutdownTimeout: graceful shutdown window (default: 10s)

# CLI Flags

	-p              Server port
	-d              Database URL
	-t              Database type
	-vote-timeout   Vote submission timeout
	-token-secret   Bearer token secret
	-token-issuer   Bearer token issuer

# Environment Variables

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	VOTE_TIMEOUT        → -vote-timeout
	TOKEN_SECRET        → -token-secret
	TOKEN_ISSUER        → -token-issuer
	IDENTITY_CACHE_SIZE
	SHUTDOWN_TIMEOUT
*/
package cliparse
