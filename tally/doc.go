// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package tally computes election results.

Results are recomputed from committed votes on every call:

	res, err := engine.Results(ctx, electionID)

Percentages are integers, 100*count/total rounded half up, and 0 for every
candidate while no votes exist. Rounding is per candidate, so the sum of
percentages can differ from 100 by a point or two.

Audit recounts the vote log row by row and re-verifies each receipt hash,
reporting votes whose stored hash no longer matches their fields.
*/
package tally
