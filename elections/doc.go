// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package elections manages elections and their candidate lists on top of
// the store, gating every mutation through the lifecycle in one transaction.
package elections
