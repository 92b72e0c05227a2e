package exporter

import (
	"io"

	"github.com/rs/zerolog/log"

	"github.com/odsplit/odsplit/pkg/compiler"
	"github.com/odsplit/odsplit/pkg/gtfs"
	"github.com/odsplit/odsplit/pkg/util"
)

type Options struct {
	// Keep only rows reachable from this route subset; empty means no pruning
	PruneRoutes []string

	// Round shape point coordinates to 5 decimal places (~1.1m)
	RoundCoordinates bool

	// Decimate any shape with more points than this; 0 disables
	MaxShapePoints int
}

// Assemble combines the compiled tables with the snapshot's passthrough
// tables into the output feed, then runs the optional post-passes. The
// source schedule is never modified.
func Assemble(source *gtfs.Schedule, compiled compiler.Result, options Options) *gtfs.Schedule {
	output := &gtfs.Schedule{
		Agencies:      append([]gtfs.Agency{}, source.Agencies...),
		Stops:         append([]gtfs.Stop{}, source.Stops...),
		Routes:        append([]gtfs.Route{}, source.Routes...),
		Trips:         append([]gtfs.Trip{}, compiled.Trips...),
		StopTimes:     append([]gtfs.StopTime{}, compiled.StopTimes...),
		Calendars:     append([]gtfs.Calendar{}, source.Calendars...),
		CalendarDates: append([]gtfs.CalendarDate{}, source.CalendarDates...),
		Shapes:        append([]gtfs.Shape{}, source.Shapes...),
	}

	// Passthrough paths can carry blank rows the compiler never saw
	stripBlankRows(output)

	if len(options.PruneRoutes) > 0 {
		pruneUnreachable(output, options.PruneRoutes)
	}

	if options.RoundCoordinates {
		roundShapeCoordinates(output)
	}

	if options.MaxShapePoints > 0 {
		decimateShapes(output, options.MaxShapePoints)
	}

	return output
}

// Write assembles the output feed and serializes it as a GTFS zip archive.
func Write(writer io.Writer, source *gtfs.Schedule, compiled compiler.Result, options Options) error {
	output := Assemble(source, compiled, options)

	log.Info().
		Int("trips", len(output.Trips)).
		Int("stop_times", len(output.StopTimes)).
		Int("shapes", len(output.Shapes)).
		Msg("Writing output feed")

	return output.WriteArchive(writer)
}

// stripBlankRows drops any stop_times row whose canonicalised arrival and
// departure are both empty, mirroring the compiler's own blank-row policy.
func stripBlankRows(schedule *gtfs.Schedule) {
	util.InPlaceFilter(&schedule.StopTimes, func(stopTime gtfs.StopTime) bool {
		return gtfs.CanonicalTime(stopTime.ArrivalTime) != "" || gtfs.CanonicalTime(stopTime.DepartureTime) != ""
	})
}
