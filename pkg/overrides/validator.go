package overrides

import (
	"sort"

	"github.com/odsplit/odsplit/pkg/gtfs"
	"github.com/odsplit/odsplit/pkg/report"
)

// ValidateAgainstFeed checks every rule key against the (trip, stop) pairs
// physically present in the feed's stop_times and records a missing-key
// warning for each one that matches nothing. Purely diagnostic - compilation
// already ignores unmatched keys, this surfaces authoring mistakes such as
// rules written against a stale feed.
func ValidateAgainstFeed(rules RuleSet, stopTimes []gtfs.StopTime, runReport *report.Report) {
	present := map[RuleKey]bool{}
	for _, stopTime := range stopTimes {
		present[RuleKey{TripID: stopTime.TripID, StopID: stopTime.StopID}] = true
	}

	var missing []string
	for key := range rules {
		if !present[key] {
			missing = append(missing, key.String())
		}
	}

	// Stable warning order regardless of map iteration
	sort.Strings(missing)

	for _, key := range missing {
		runReport.RecordMissingRuleKey(key)
	}
}
