package manager

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/odsplit/odsplit/pkg/compiler"
	"github.com/odsplit/odsplit/pkg/config"
	"github.com/odsplit/odsplit/pkg/exporter"
	"github.com/odsplit/odsplit/pkg/gtfs"
	"github.com/odsplit/odsplit/pkg/overrides"
	"github.com/odsplit/odsplit/pkg/report"
)

// RunJob executes one batch run: acquire feed + override document, compile,
// export, report. Acquisition and parse failures abort the run before any
// output is written; the compile step itself cannot fail a run.
func RunJob(jobConfig *config.JobConfig) error {
	var schedule gtfs.Schedule
	var document *overrides.Document

	// Acquisition is the only suspension point of a run - fetch the feed and
	// the override document together, then everything downstream is local.
	fetchPool := pool.New().WithErrors()

	fetchPool.Go(func() error {
		return LoadSchedule(jobConfig.Feed.Source, &schedule)
	})

	fetchPool.Go(func() error {
		var err error
		document, err = fetchOverrides(jobConfig.Overrides)

		return err
	})

	if err := fetchPool.Wait(); err != nil {
		return err
	}

	log.Info().
		Int("trips", len(schedule.Trips)).
		Int("stop_times", len(schedule.StopTimes)).
		Int("rules", len(document.Rules)).
		Msg("Loaded feed & overrides")

	rules := document.RuleSet()
	runReport := report.NewReport()

	overrides.ValidateAgainstFeed(rules, schedule.StopTimes, runReport)

	compiled := compiler.Compile(schedule.Trips, schedule.StopTimes, rules, runReport)

	outputFile, err := os.Create(jobConfig.Output.Feed)
	if err != nil {
		return err
	}
	defer outputFile.Close()

	exportOptions := exporter.Options{
		PruneRoutes:      jobConfig.Export.PruneRoutes,
		RoundCoordinates: jobConfig.Export.RoundCoordinates,
		MaxShapePoints:   jobConfig.Export.MaxShapePoints,
	}

	if err := exporter.Write(outputFile, &schedule, compiled, exportOptions); err != nil {
		return err
	}

	if jobConfig.Output.Report != "" {
		reportFile, err := os.Create(jobConfig.Output.Report)
		if err != nil {
			return err
		}
		defer reportFile.Close()

		if err := runReport.Write(reportFile); err != nil {
			return err
		}
	}

	runReport.LogSummary()

	return nil
}

// fetchOverrides loads the override document, preferring the remote copy
// when both a URL and a local path are configured. With neither configured
// the run proceeds with an empty document, which is the identity transform.
func fetchOverrides(overridesConfig config.OverridesConfig) (*overrides.Document, error) {
	source := overridesConfig.URL
	if source == "" {
		source = overridesConfig.Path
	}

	if source == "" {
		log.Info().Msg("No override document configured")
		return &overrides.Document{Rules: map[string]overrides.Restriction{}}, nil
	}

	documentFile, cleanup, err := fetchSource(source)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return overrides.ParseDocument(documentFile)
}
