package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

// setupCommand handles setup operations for the config file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   defaultConfigPath,
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:  "config",
				Usage: "Write an example config file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

func browseFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "Match title or artist name",
		},
		&cli.StringFlag{
			Name:  "genre",
			Usage: "Only show this genre",
		},
		&cli.IntFlag{
			Name:  "page",
			Usage: "Page to show",
			Value: 1,
		},
	}
}

// catalogCommand browses the catalog.
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Browse songs and artists",
		Commands: []*cli.Command{
			{
				Name:  "songs",
				Usage: "List songs",
				Flags: append(append([]cli.Flag{
					&cli.Int64Flag{
						Name:  "artist",
						Usage: "Only show songs by this artist id",
					},
				}, browseFlags()...), jsonFlags()...),
				Action: r.CatalogSongs,
			},
			{
				Name:   "artists",
				Usage:  "List artists",
				Flags:  append(browseFlags(), jsonFlags()...),
				Action: r.CatalogArtists,
			},
			{
				Name:   "trending",
				Usage:  "Show the most played songs",
				Flags:  jsonFlags(),
				Action: r.CatalogTrending,
			},
			{
				Name:   "stats",
				Usage:  "Show catalog counters",
				Flags:  jsonFlags(),
				Action: r.CatalogStats,
			},
		},
	}
}

// likesCommand manages liked songs.
func likesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "likes",
		Usage: "Manage liked songs",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List liked songs",
				Flags:  jsonFlags(),
				Action: r.LikesList,
			},
			{
				Name:  "toggle",
				Usage: "Like or unlike a song",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LikesToggle,
			},
			{
				Name:  "export",
				Usage: "Export liked songs to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, csv, markdown, txt)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   ".",
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Export name",
						Value: "Liked Songs",
					},
				},
				Action: r.LikesExport,
			},
		},
	}
}

// downloadCommand saves songs to disk.
func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "download",
		Usage: "Download a song, or every liked song with --liked",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "liked",
				Usage: "Download all liked songs",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output directory (default: [player] download_dir)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent downloads for --liked",
				Value: 3,
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Downloads started per second for --liked",
				Value: 2,
			},
		},
		Action: r.Download,
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in with email and password, or through the browser with --browser",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "browser",
						Usage: "Log in through the browser",
					},
					&cli.StringFlag{
						Name:    "email",
						Aliases: []string{"e"},
						Usage:   "Account email",
					},
					&cli.StringFlag{
						Name:    "password",
						Aliases: []string{"p"},
						Usage:   "Account password",
						Sources: cli.EnvVars("JUKEBOX_PASSWORD"),
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show the logged in account",
				Flags:  jsonFlags(),
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Forget the logged in account",
				Action: r.AuthLogout,
			},
		},
	}
}

// playCommand returns the top-level TUI command.
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "play",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive player",
		Action:  r.Play,
	}
}

// serveCommand runs the player headless behind the play request API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the player headless and accept play requests over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (default: [server] host:port)",
			},
			&cli.BoolFlag{
				Name:  "no-auth",
				Usage: "Play requests without a logged in session",
			},
		},
		Action: r.Serve,
	}
}
