// Package streak computes consecutive-calendar-day streaks from log history.
//
// A streak is the number of consecutive calendar days, ending today and
// walking backward, on which at least one qualifying log exists. The same
// routine serves two callers: the per-intervention streak recomputed on
// every intervention-log write, and the user-level day streak across all
// pain logs shown on the dashboard. Both use identical day-boundary
// semantics — local calendar day, not a rolling 24 hours.
package streak

import "time"

// dayKey collapses a timestamp to its calendar date in the reference
// location. Two logs at 00:05 and 23:55 on the same local day produce the
// same key; a log at 23:55 and one at 00:05 the next day do not.
func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

// Current returns the streak ending at now's calendar date.
//
// The walk is exact and deliberately simple:
//  1. collect the distinct calendar dates of all timestamps,
//  2. step backward from today one day at a time while the date is present,
//  3. stop at the first missing day.
//
// Consequences worth keeping in mind:
//   - no log today means the streak is 0, even if yesterday is logged —
//     a run only counts once it is extended through today;
//   - multiple logs on one day count once;
//   - a single gap resets the count to the unbroken run ending today.
//
// Callers pass the full log history (capped at a large fetch limit); the
// recomputation is not incremental.
func Current(times []time.Time, now time.Time) int {
	if len(times) == 0 {
		return 0
	}

	loc := now.Location()
	days := make(map[string]struct{}, len(times))
	for _, t := range times {
		days[dayKey(t, loc)] = struct{}{}
	}

	streak := 0
	// AddDate(0, 0, -1) steps back one calendar day, which handles month
	// boundaries and DST transitions correctly (unlike subtracting 24h).
	for day := now; ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[dayKey(day, loc)]; !ok {
			break
		}
		streak++
	}
	return streak
}
