package manager

import (
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/odsplit/odsplit/pkg/config"
	"github.com/odsplit/odsplit/pkg/overrides"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "compile",
		Usage: "Apply OD restriction overrides to a GTFS feed",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a full batch compile",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path of the job config file",
					},
					&cli.StringFlag{
						Name:  "feed",
						Usage: "Source GTFS archive (path or URL), overrides config",
					},
					&cli.StringFlag{
						Name:  "overrides",
						Usage: "Override document (path or URL), overrides config",
					},
					&cli.StringFlag{
						Name:  "output",
						Usage: "Output GTFS archive path, overrides config",
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Report JSON output path, overrides config",
					},
				},
				Action: func(c *cli.Context) error {
					jobConfig, err := resolveConfig(c)
					if err != nil {
						return err
					}

					startTime := time.Now()

					if err := RunJob(jobConfig); err != nil {
						return err
					}

					log.Info().Msgf("Operation took %s", time.Since(startTime).String())

					return nil
				},
			},
			{
				Name:  "inspect-overrides",
				Usage: "Parse an override document and dump its rule set",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Usage:    "Override document (path or URL)",
						Required: true,
					},
				},
				Action: func(c *cli.Context) error {
					documentFile, cleanup, err := fetchSource(c.String("source"))
					if err != nil {
						return err
					}
					defer cleanup()

					document, err := overrides.ParseDocument(documentFile)
					if err != nil {
						return err
					}

					pretty.Println(document.RuleSet())

					return nil
				},
			},
		},
	}
}

// resolveConfig loads the config file and layers any CLI flags over it. A run
// with no config file at all is still valid when the feed & output flags
// carry everything needed.
func resolveConfig(c *cli.Context) (*config.JobConfig, error) {
	jobConfig, err := config.Load(c.String("config"))
	if err != nil {
		if c.String("feed") == "" || c.String("output") == "" {
			return nil, err
		}

		jobConfig = &config.JobConfig{}
	}

	if feed := c.String("feed"); feed != "" {
		jobConfig.Feed.Source = feed
	}
	if overridesSource := c.String("overrides"); overridesSource != "" {
		jobConfig.Overrides.Path = overridesSource
		jobConfig.Overrides.URL = ""
	}
	if output := c.String("output"); output != "" {
		jobConfig.Output.Feed = output
	}
	if reportPath := c.String("report"); reportPath != "" {
		jobConfig.Output.Report = reportPath
	}

	return jobConfig, nil
}
