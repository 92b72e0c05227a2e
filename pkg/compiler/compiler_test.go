package compiler

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odsplit/odsplit/pkg/gtfs"
	"github.com/odsplit/odsplit/pkg/overrides"
	"github.com/odsplit/odsplit/pkg/report"
)

func testTrip(tripID string) gtfs.Trip {
	return gtfs.Trip{
		RouteID:   "R1",
		ServiceID: "S1",
		ID:        tripID,
		Headsign:  "Terminus",
		ShapeID:   "SH1",
	}
}

func testVisits(tripID string, stopIDs ...string) []gtfs.StopTime {
	var visits []gtfs.StopTime

	for index, stopID := range stopIDs {
		clock := fmt.Sprintf("08:%02d:00", index*5)
		visits = append(visits, gtfs.StopTime{
			TripID:        tripID,
			ArrivalTime:   clock,
			DepartureTime: clock,
			StopID:        stopID,
			StopSequence:  (index + 1) * 10,
		})
	}

	return visits
}

func rowsFor(result Result, tripID string) []gtfs.StopTime {
	var rows []gtfs.StopTime
	for _, row := range result.StopTimes {
		if row.TripID == tripID {
			rows = append(rows, row)
		}
	}

	return rows
}

func stopsOf(rows []gtfs.StopTime) []string {
	var stops []string
	for _, row := range rows {
		stops = append(stops, row.StopID)
	}

	return stops
}

func TestCompileNoRulesIsIdentity(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T1")}
	visits := testVisits("T1", "A", "B", "C")

	result := Compile(trips, visits, overrides.RuleSet{}, report.NewReport())

	require.Len(t, result.Trips, 1)
	assert.Equal(t, "T1", result.Trips[0].ID)

	rows := rowsFor(result, "T1")
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"A", "B", "C"}, stopsOf(rows))

	for index, row := range rows {
		assert.EqualValues(t, 0, row.PickupType)
		assert.EqualValues(t, 0, row.DropOffType)
		assert.Equal(t, index+1, row.StopSequence)
	}
}

func TestCompileDropOffOnlyRule(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T1")}
	visits := testVisits("T1", "A", "B", "C", "D")

	rules := overrides.RuleSet{
		{TripID: "T1", StopID: "C"}: {Mode: overrides.ModeDropOffOnly},
	}

	runReport := report.NewReport()
	result := Compile(trips, visits, rules, runReport)

	require.Len(t, result.Trips, 1)
	assert.Equal(t, "T1", result.Trips[0].ID)

	rows := rowsFor(result, "T1")
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"A", "B", "C", "D"}, stopsOf(rows))

	for _, row := range rows {
		if row.StopID == "C" {
			assert.EqualValues(t, 1, row.PickupType)
			assert.EqualValues(t, 0, row.DropOffType)
		} else {
			assert.EqualValues(t, 0, row.PickupType)
			assert.EqualValues(t, 0, row.DropOffType)
		}
	}

	assert.Equal(t, 1, runReport.OverridesByMode["dropoff"])
	assert.Equal(t, 1, runReport.TripsTouched)
	assert.Equal(t, 1, runReport.StopsTouched)
	assert.Equal(t, 1, runReport.RowsModified)
}

func TestCompilePickupOnlyRuleMirrors(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T1")}
	visits := testVisits("T1", "A", "B", "C")

	rules := overrides.RuleSet{
		{TripID: "T1", StopID: "B"}: {Mode: overrides.ModePickupOnly},
	}

	result := Compile(trips, visits, rules, report.NewReport())

	rows := rowsFor(result, "T1")
	require.Len(t, rows, 3)
	assert.EqualValues(t, 0, rows[1].PickupType)
	assert.EqualValues(t, 1, rows[1].DropOffType)
}

func TestCompileCustomRuleSplitsTrip(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T2")}
	visits := testVisits("T2", "A", "B", "C", "D", "E")

	rules := overrides.RuleSet{
		{TripID: "T2", StopID: "C"}: {Mode: overrides.ModeCustom, BoardTo: []string{"D", "E"}},
	}

	runReport := report.NewReport()
	result := Compile(trips, visits, rules, runReport)

	require.Len(t, result.Trips, 2)
	assert.Equal(t, "T2_A", result.Trips[0].ID)
	assert.Equal(t, "T2_B", result.Trips[1].ID)

	// Segment fields are copied from the source trip
	for _, trip := range result.Trips {
		assert.Equal(t, "R1", trip.RouteID)
		assert.Equal(t, "S1", trip.ServiceID)
		assert.Equal(t, "Terminus", trip.Headsign)
		assert.Equal(t, "SH1", trip.ShapeID)
	}

	upRows := rowsFor(result, "T2_A")
	require.Len(t, upRows, 3)
	assert.Equal(t, []string{"A", "B", "C"}, stopsOf(upRows))
	assert.EqualValues(t, 1, upRows[2].PickupType)
	assert.EqualValues(t, 0, upRows[2].DropOffType)

	downRows := rowsFor(result, "T2_B")
	require.Len(t, downRows, 3)
	assert.Equal(t, []string{"C", "D", "E"}, stopsOf(downRows))
	assert.EqualValues(t, 0, downRows[0].PickupType)
	assert.EqualValues(t, 1, downRows[0].DropOffType)

	// Each segment resequenced 1..3
	for index := range upRows {
		assert.Equal(t, index+1, upRows[index].StopSequence)
		assert.Equal(t, index+1, downRows[index].StopSequence)
	}

	// The single custom stop appears in both segments
	assert.Equal(t, 1, runReport.RowsAdded)
	assert.Equal(t, 1, runReport.OverridesByMode["custom"])
}

func TestCompileCustomSpanCoversFirstToLast(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T3")}
	visits := testVisits("T3", "A", "B", "C", "D", "E", "F")

	rules := overrides.RuleSet{
		{TripID: "T3", StopID: "B"}: {Mode: overrides.ModeCustom},
		{TripID: "T3", StopID: "E"}: {Mode: overrides.ModeCustom},
	}

	result := Compile(trips, visits, rules, report.NewReport())

	upRows := rowsFor(result, "T3_A")
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, stopsOf(upRows))

	downRows := rowsFor(result, "T3_B")
	assert.Equal(t, []string{"B", "C", "D", "E", "F"}, stopsOf(downRows))

	// Custom flags follow the segment, other rows stay 0/0
	assert.EqualValues(t, 1, upRows[1].PickupType)
	assert.EqualValues(t, 1, upRows[4].PickupType)
	assert.EqualValues(t, 1, downRows[0].DropOffType)
	assert.EqualValues(t, 1, downRows[3].DropOffType)
	assert.EqualValues(t, 0, upRows[2].PickupType)
	assert.EqualValues(t, 0, downRows[2].DropOffType)
}

func TestCompileMixedRulesInsideSplit(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T4")}
	visits := testVisits("T4", "A", "B", "C", "D")

	rules := overrides.RuleSet{
		{TripID: "T4", StopID: "B"}: {Mode: overrides.ModeDropOffOnly},
		{TripID: "T4", StopID: "C"}: {Mode: overrides.ModeCustom},
	}

	result := Compile(trips, visits, rules, report.NewReport())

	upRows := rowsFor(result, "T4_A")
	require.Len(t, upRows, 3)
	// dropoff-only keeps its own flags inside a segment
	assert.EqualValues(t, 1, upRows[1].PickupType)
	assert.EqualValues(t, 0, upRows[1].DropOffType)

	downRows := rowsFor(result, "T4_B")
	require.Len(t, downRows, 2)
	assert.Equal(t, []string{"C", "D"}, stopsOf(downRows))
}

func TestCompileDropsBlankRows(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T1")}
	visits := testVisits("T1", "A", "B", "C")
	visits[1].ArrivalTime = ""
	visits[1].DepartureTime = ""

	runReport := report.NewReport()
	result := Compile(trips, visits, overrides.RuleSet{}, runReport)

	rows := rowsFor(result, "T1")
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"A", "C"}, stopsOf(rows))

	// Resequenced with no gap where the blank row fell out
	assert.Equal(t, 1, rows[0].StopSequence)
	assert.Equal(t, 2, rows[1].StopSequence)

	assert.Equal(t, 1, runReport.RowsDeleted)
}

func TestCompileCanonicalisesTimes(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T1")}
	visits := []gtfs.StopTime{
		{TripID: "T1", ArrivalTime: "8:00", DepartureTime: "8:00:30", StopID: "A", StopSequence: 1},
		{TripID: "T1", ArrivalTime: "25:05", DepartureTime: "", StopID: "B", StopSequence: 2},
	}

	result := Compile(trips, visits, overrides.RuleSet{}, report.NewReport())

	rows := rowsFor(result, "T1")
	require.Len(t, rows, 2)
	assert.Equal(t, "08:00:00", rows[0].ArrivalTime)
	assert.Equal(t, "08:00:30", rows[0].DepartureTime)
	assert.Equal(t, "25:05:00", rows[1].ArrivalTime)
	assert.Equal(t, "", rows[1].DepartureTime)
}

func TestCompileSkipsTripWithNoVisits(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T1"), testTrip("T2")}
	visits := testVisits("T2", "A", "B")

	result := Compile(trips, visits, overrides.RuleSet{}, report.NewReport())

	require.Len(t, result.Trips, 1)
	assert.Equal(t, "T2", result.Trips[0].ID)
}

func TestCompileIgnoresUnmatchedRuleKeys(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T1")}
	visits := testVisits("T1", "A", "B")

	rules := overrides.RuleSet{
		{TripID: "T1", StopID: "Z"}: {Mode: overrides.ModeDropOffOnly},
		{TripID: "T9", StopID: "A"}: {Mode: overrides.ModeCustom},
	}

	result := Compile(trips, visits, rules, report.NewReport())

	// No split, no flag changes
	require.Len(t, result.Trips, 1)
	assert.Equal(t, "T1", result.Trips[0].ID)
	for _, row := range rowsFor(result, "T1") {
		assert.EqualValues(t, 0, row.PickupType)
		assert.EqualValues(t, 0, row.DropOffType)
	}
}

func TestCompileNormalRuleLeavesFlagsAlone(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T1")}
	visits := testVisits("T1", "A", "B")
	visits[0].PickupType = 1
	visits[0].DropOffType = 1

	rules := overrides.RuleSet{
		{TripID: "T1", StopID: "A"}: {Mode: overrides.ModeNormal},
	}

	runReport := report.NewReport()
	result := Compile(trips, visits, rules, runReport)

	// Output flags are always derived, source flags are discarded
	rows := rowsFor(result, "T1")
	assert.EqualValues(t, 0, rows[0].PickupType)
	assert.EqualValues(t, 0, rows[0].DropOffType)

	assert.Equal(t, 1, runReport.OverridesByMode["normal"])
	assert.Zero(t, runReport.RowsModified)
}

func TestCompileResequencesEveryOutputTrip(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T1"), testTrip("T2")}
	visits := append(testVisits("T1", "A", "B", "C"), testVisits("T2", "X", "Y")...)

	rules := overrides.RuleSet{
		{TripID: "T2", StopID: "Y"}: {Mode: overrides.ModeCustom},
	}

	result := Compile(trips, visits, rules, report.NewReport())

	counts := map[string]int{}
	for _, row := range result.StopTimes {
		counts[row.TripID] += 1
		assert.Equal(t, counts[row.TripID], row.StopSequence)
	}

	assert.Equal(t, 3, counts["T1"])
	assert.Equal(t, 2, counts["T2_A"])
	assert.Equal(t, 1, counts["T2_B"])
}

func TestCompileDoesNotMutateInputs(t *testing.T) {
	trips := []gtfs.Trip{testTrip("T1")}
	visits := testVisits("T1", "A", "B")
	visits[0].ArrivalTime = "8:00"

	Compile(trips, visits, overrides.RuleSet{}, report.NewReport())

	assert.Equal(t, "8:00", visits[0].ArrivalTime)
	assert.Equal(t, 10, visits[0].StopSequence)
}
