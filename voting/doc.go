// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting casts votes.

CastVote runs in one store transaction:

 1. load the election (not_found)
 2. compute its lifecycle state (election_not_active)
 3. check candidate membership (invalid_candidate)
 4. mirror the voter reference and insert the vote (already_voted)
 5. hash the receipt and persist it with the vote row

Any failure rolls the transaction back, so a rejected vote leaves no row.
Two concurrent casts by one voter race on the (election, voter) unique
index; exactly one commits and the other reports already_voted.

When the per-call timeout fires, the outcome is unknown: the caller gets
storage_unavailable and should read GET /elections/{id}/my-vote before
retrying.
*/
package voting
