package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Report accumulates the outcome of one compile pass. Each caller owns its
// own instance; a Report is never shared between concurrent compiles.
type Report struct {
	OverridesByMode map[string]int `json:"overrides_by_mode"`

	TripsTouched int `json:"trips_touched"`
	StopsTouched int `json:"stops_touched"`

	RowsModified int `json:"rows_modified"`
	RowsAdded    int `json:"rows_added"`
	RowsDeleted  int `json:"rows_deleted"`

	MissingRuleKeys int      `json:"missing_rule_keys"`
	Warnings        []string `json:"warnings"`

	touchedTrips map[string]bool
	touchedStops map[string]bool
}

func NewReport() *Report {
	return &Report{
		OverridesByMode: map[string]int{},
		Warnings:        []string{},

		touchedTrips: map[string]bool{},
		touchedStops: map[string]bool{},
	}
}

// RecordOverride notes one rule applied at a (trip, stop) visit.
func (report *Report) RecordOverride(mode string, tripID string, stopID string) {
	report.OverridesByMode[mode] += 1

	if !report.touchedTrips[tripID] {
		report.touchedTrips[tripID] = true
		report.TripsTouched += 1
	}
	if !report.touchedStops[stopID] {
		report.touchedStops[stopID] = true
		report.StopsTouched += 1
	}
}

func (report *Report) RecordModified(rows int) {
	report.RowsModified += rows
}

func (report *Report) RecordAdded(rows int) {
	report.RowsAdded += rows
}

func (report *Report) RecordDeleted(rows int) {
	report.RowsDeleted += rows
}

func (report *Report) RecordMissingRuleKey(key string) {
	report.MissingRuleKeys += 1
	report.Warnings = append(report.Warnings, fmt.Sprintf("Rule key not found in feed: %s", key))
}

func (report *Report) Write(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	return encoder.Encode(report)
}

// LogSummary emits the human readable end-of-run summary.
func (report *Report) LogSummary() {
	modes := maps.Keys(report.OverridesByMode)
	slices.Sort(modes)

	event := log.Info().
		Int("trips", report.TripsTouched).
		Int("stops", report.StopsTouched).
		Int("modified", report.RowsModified).
		Int("added", report.RowsAdded).
		Int("deleted", report.RowsDeleted).
		Int("missing", report.MissingRuleKeys)

	for _, mode := range modes {
		event = event.Int(fmt.Sprintf("mode-%s", mode), report.OverridesByMode[mode])
	}

	event.Msg("Compile finished")

	for _, warning := range report.Warnings {
		log.Warn().Msg(warning)
	}
}
