// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package lifecycle is the election state machine.

Elections progress through three states: draft → active → closed

	draft   created, candidates editable, not yet activated or before start
	active  activated by an admin and start ≤ now < end
	closed  now ≥ end, or force-closed by an admin (terminal)

State is computed at read time from the stored timestamps and the wall
clock; nothing caches it:

	state := lifecycle.StateAt(lifecycle.ScheduleOf(election), time.Now())

# Legality

	operation        draft  active  closed
	cast vote               ✓
	edit candidates  ✓
	activate         ✓
	close            ✓      ✓
	read / results   ✓      ✓       ✓
	delete           ✓      ✓       ✓

Check returns election_not_active for a refused vote and
invalid_transition for any other refused operation.
*/
package lifecycle
