// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for configuration and the cache database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize config file and resolution cache database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// recommendCommand runs the synchronous pipeline and prints an aggregate result.
func recommendCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recommend",
		Aliases: []string{"rec"},
		Usage:   "Recommend songs similar to a seed and queue the verified ones",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "seed",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of suggestions to request",
				Value:   5,
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Verify each match with the AI before queueing",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, csv, markdown",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the result to a file instead of stdout",
			},
		},
		Action: r.Recommend,
	}
}

// streamCommand runs the pipeline incrementally and prints events as they arrive.
func streamCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stream",
		Usage: "Stream recommendations live, queueing each match as it resolves",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "seed",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of suggestions to request",
				Value:   5,
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Verify each match with the AI in the background",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print raw JSON events instead of formatted lines",
			},
		},
		Action: r.Stream,
	}
}

// queueCommand handles direct playback-queue operations.
func queueCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "queue",
		Usage: "Playback queue operations",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a track URI to the active device queue",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "uri",
					},
				},
				Action: r.QueueAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a track from the queue (unsupported by Spotify)",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "uri",
					},
				},
				Action: r.QueueRemove,
			},
			{
				Name:   "devices",
				Usage:  "List available playback devices",
				Action: r.QueueDevices,
			},
		},
	}
}

// serveCommand starts the HTTP API server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the recommendation HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on",
			},
		},
		Action: r.Serve,
	}
}

// cacheCommand handles resolution cache maintenance
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect and maintain the resolution cache",
		Commands: []*cli.Command{
			{
				Name:  "stats",
				Usage: "Show cached resolution count",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.CacheStats,
			},
			{
				Name:  "purge",
				Usage: "Delete all cached resolutions",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.CachePurge,
			},
		},
	}
}
