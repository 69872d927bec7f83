// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth resolves bearer tokens to voter identities.

# Tokens

Tokens are HS256 JWTs signed with the configured secret:

	gate, err := auth.NewGate(secret, "ballot-core", 1024)
	token, err := gate.Issue(models.Voter{ID: "u1", Username: "ada", Role: models.RoleVoter}, time.Hour)
	voter, err := gate.Resolve(token)

The subject claim is the voter id. The username and role claims travel
alongside it. Tokens without an expiry, with a foreign issuer or with a role
other than admin or voter are rejected.

# Cache

Verified tokens are kept in a bounded LRU so repeat requests skip signature
verification. A cache hit is still checked against the token's expiry.

# Request context

The middleware stores the resolved identity in the request context:

	ctx = auth.WithVoter(ctx, voter)
	voter, ok := auth.VoterFrom(ctx)

The gate holds no session state. Issuing tokens from credentials is left to
an external identity provider; Issue exists for development and tests.
*/
package auth
