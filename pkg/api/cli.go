package api

import (
	"github.com/urfave/cli/v2"

	"github.com/odsplit/odsplit/pkg/config"
	"github.com/odsplit/odsplit/pkg/gtfs"
	"github.com/odsplit/odsplit/pkg/manager"
)

const Version = "1.0.0"

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the override authoring web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server over a loaded feed",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "Path of the job config file",
					},
					&cli.StringFlag{
						Name:  "feed",
						Usage: "Source GTFS archive (path or URL), overrides config",
					},
				},
				Action: func(c *cli.Context) error {
					feedSource := c.String("feed")
					if feedSource == "" {
						jobConfig, err := config.Load(c.String("config"))
						if err != nil {
							return err
						}
						feedSource = jobConfig.Feed.Source
					}

					var schedule gtfs.Schedule
					if err := manager.LoadSchedule(feedSource, &schedule); err != nil {
						return err
					}

					server := &Server{
						Schedule: &schedule,
						Version:  Version,
					}

					return server.SetupServer(c.String("listen"))
				},
			},
		},
	}
}
