package compiler

import (
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"

	"github.com/odsplit/odsplit/pkg/gtfs"
	"github.com/odsplit/odsplit/pkg/overrides"
	"github.com/odsplit/odsplit/pkg/report"
)

// Derived trip identity suffixes for the two halves of a split trip
const (
	SegmentUpSuffix   = "_A"
	SegmentDownSuffix = "_B"
)

type Result struct {
	Trips     []gtfs.Trip
	StopTimes []gtfs.StopTime
}

// Compile applies an override rule set to a feed snapshot's trips and
// stop_times, producing fresh output tables. Trips carrying at least one
// custom restriction are split into an up segment (identity + "_A") and a
// down segment (identity + "_B"); all other trips are rewritten in place.
//
// Compile is a pure function of its inputs: it never mutates the given
// slices or the rule set, and all bookkeeping goes through the caller-owned
// report. It never returns an error - malformed rows shrink the output, they
// don't fail the run.
func Compile(trips []gtfs.Trip, stopTimes []gtfs.StopTime, rules overrides.RuleSet, runReport *report.Report) Result {
	visitsByTrip := gtfs.StopTimesByTrip(stopTimes)

	result := Result{}

	for _, trip := range trips {
		visits := visitsByTrip[trip.ID]
		if len(visits) == 0 {
			log.Debug().Str("trip", trip.ID).Msg("Skipping trip with no stop_times")
			continue
		}

		visitRules := make([]*overrides.Restriction, len(visits))
		hasCustom := false
		for index, visit := range visits {
			if restriction, exists := rules[overrides.RuleKey{TripID: trip.ID, StopID: visit.StopID}]; exists {
				visitRules[index] = &restriction
				runReport.RecordOverride(string(restriction.Mode), trip.ID, visit.StopID)

				if restriction.Mode == overrides.ModeCustom {
					hasCustom = true
				}
			}
		}

		if !hasCustom {
			compileWhole(trip, visits, visitRules, runReport, &result)
		} else {
			// The custom index span is only well defined because hasCustom
			// was established above - keep that check first.
			compileSplit(trip, visits, visitRules, runReport, &result)
		}
	}

	resequence(result.StopTimes)

	return result
}

// compileWhole emits a single output trip with the source identity,
// rewriting pickup/drop_off flags from the per-visit rules.
func compileWhole(trip gtfs.Trip, visits []gtfs.StopTime, visitRules []*overrides.Restriction, runReport *report.Report, result *Result) {
	result.Trips = append(result.Trips, trip)

	for index, visit := range visits {
		pickup, dropOff := baseFlags(visitRules[index])

		row, retained := outputRow(visit, trip.ID, pickup, dropOff)
		if !retained {
			runReport.RecordDeleted(1)
			continue
		}

		if pickup != 0 || dropOff != 0 {
			runReport.RecordModified(1)
		}

		result.StopTimes = append(result.StopTimes, row)
	}
}

// compileSplit emits the two derived segment trips for a trip with custom
// restrictions. The up segment runs from the first visit to the last custom
// visit and disables boarding at custom stops; the down segment runs from the
// first custom visit to the end and disables alighting at them. When only
// one custom visit exists it appears in both segments, once with each flag
// pair - that overlap is intended.
func compileSplit(trip gtfs.Trip, visits []gtfs.StopTime, visitRules []*overrides.Restriction, runReport *report.Report, result *Result) {
	firstCustom := -1
	lastCustom := -1
	for index, restriction := range visitRules {
		if restriction != nil && restriction.Mode == overrides.ModeCustom {
			if firstCustom == -1 {
				firstCustom = index
			}
			lastCustom = index
		}
	}

	upTrip := cloneTrip(trip, trip.ID+SegmentUpSuffix)
	downTrip := cloneTrip(trip, trip.ID+SegmentDownSuffix)
	result.Trips = append(result.Trips, upTrip, downTrip)

	retained := 0

	// Up segment: board disabled at the custom stop, alight allowed
	for index := 0; index <= lastCustom; index++ {
		pickup, dropOff := segmentFlags(visitRules[index], 1, 0)

		row, keep := outputRow(visits[index], upTrip.ID, pickup, dropOff)
		if !keep {
			runReport.RecordDeleted(1)
			continue
		}

		if pickup != 0 || dropOff != 0 {
			runReport.RecordModified(1)
		}

		retained += 1
		result.StopTimes = append(result.StopTimes, row)
	}

	// Down segment: the complement, alight disabled at the custom stop
	for index := firstCustom; index < len(visits); index++ {
		pickup, dropOff := segmentFlags(visitRules[index], 0, 1)

		row, keep := outputRow(visits[index], downTrip.ID, pickup, dropOff)
		if !keep {
			runReport.RecordDeleted(1)
			continue
		}

		if pickup != 0 || dropOff != 0 {
			runReport.RecordModified(1)
		}

		retained += 1
		result.StopTimes = append(result.StopTimes, row)
	}

	// Rows beyond the source count come from the segment overlap
	if retained > len(visits) {
		runReport.RecordAdded(retained - len(visits))
	}
}

func cloneTrip(trip gtfs.Trip, derivedID string) gtfs.Trip {
	var derived gtfs.Trip

	err := copier.CopyWithOption(&derived, trip, copier.Option{DeepCopy: true})
	if err != nil {
		// Trip is a flat struct so this cannot realistically fail
		derived = trip
	}
	derived.ID = derivedID

	return derived
}

// baseFlags derives the output flag pair for a visit outside any split.
func baseFlags(restriction *overrides.Restriction) (int8, int8) {
	if restriction == nil {
		return 0, 0
	}

	switch restriction.Mode {
	case overrides.ModePickupOnly:
		return 0, 1
	case overrides.ModeDropOffOnly:
		return 1, 0
	default:
		return 0, 0
	}
}

// segmentFlags is baseFlags plus the segment specific flag pair for custom
// visits.
func segmentFlags(restriction *overrides.Restriction, customPickup int8, customDropOff int8) (int8, int8) {
	if restriction != nil && restriction.Mode == overrides.ModeCustom {
		return customPickup, customDropOff
	}

	return baseFlags(restriction)
}

// outputRow builds one output stop_times row with canonical times. Rows with
// both times blank are dropped.
func outputRow(visit gtfs.StopTime, tripID string, pickup int8, dropOff int8) (gtfs.StopTime, bool) {
	arrival := gtfs.CanonicalTime(visit.ArrivalTime)
	departure := gtfs.CanonicalTime(visit.DepartureTime)

	if arrival == "" && departure == "" {
		return gtfs.StopTime{}, false
	}

	row := visit
	row.TripID = tripID
	row.ArrivalTime = arrival
	row.DepartureTime = departure
	row.PickupType = pickup
	row.DropOffType = dropOff

	return row, true
}

// resequence discards the source sequence numbers and renumbers every output
// trip's rows 1..k in append order, which is already ascending by source
// sequence.
func resequence(stopTimes []gtfs.StopTime) {
	counters := map[string]int{}

	for index := range stopTimes {
		counters[stopTimes[index].TripID] += 1
		stopTimes[index].StopSequence = counters[stopTimes[index].TripID]
	}
}
