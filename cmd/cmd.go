// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/soundshelf/internal/formatter"
	"github.com/urfave/cli/v3"
)

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "User ID or email address",
		Required: true,
	}
}

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Output JSON",
	}
}

func resolveFlags() []cli.Flag {
	return []cli.Flag{
		userFlag(),
		&cli.BoolFlag{
			Name:  "no-cache",
			Usage: "Bypass cached entries and read from the store",
		},
		jsonFlag(),
		&cli.BoolFlag{
			Name:  "metrics",
			Usage: "Print resolver metrics after the result",
		},
	}
}

func playlistTrackFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "playlist",
			Aliases:  []string{"p"},
			Usage:    "Playlist ID",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "track",
			Aliases:  []string{"t"},
			Usage:    "Track ID",
			Required: true,
		},
	}
}

// setupCommand initializes the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Revert the most recent migration",
			},
		},
		Action: r.Setup,
	}
}

// userCommand manages users, their plan tiers and roles.
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage users, plan tiers and roles",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Register a user",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Email address",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Display name",
						Required: true,
					},
					jsonFlag(),
				},
				Action: r.UserCreate,
			},
			{
				Name:  "list",
				Usage: "List users",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "email",
						Usage: "Only show the user with this email",
					},
					jsonFlag(),
				},
				Action: r.UserList,
			},
			{
				Name:  "plan",
				Usage: "Assign the active plan tier",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:     "tier",
						Usage:    planTierUsage(),
						Required: true,
					},
				},
				Action: r.UserPlan,
			},
			{
				Name:  "grant",
				Usage: "Grant a role",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:     "role",
						Usage:    roleUsage(),
						Required: true,
					},
				},
				Action: r.UserGrant,
			},
			{
				Name:  "revoke",
				Usage: "Revoke a role",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:     "role",
						Usage:    roleUsage(),
						Required: true,
					},
				},
				Action: r.UserRevoke,
			},
		},
	}
}

// resolveCommand looks up user types through the cache.
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve plan tiers and roles",
		Commands: []*cli.Command{
			{
				Name:   "plan",
				Usage:  "Resolve a user's plan tier",
				Flags:  resolveFlags(),
				Action: r.ResolvePlan,
			},
			{
				Name:   "roles",
				Usage:  "Resolve a user's roles",
				Flags:  resolveFlags(),
				Action: r.ResolveRoles,
			},
			{
				Name:   "all",
				Usage:  "Resolve plan tier and roles together",
				Flags:  resolveFlags(),
				Action: r.ResolveAll,
			},
			{
				Name:  "bulk",
				Usage: "Resolve every user concurrently",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (json, csv, markdown, txt)",
						Value:   formatter.FormatJSON,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers (max 10)",
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Resolutions started per second",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write a report and manifest to this directory",
					},
					&cli.BoolFlag{
						Name:  "no-cache",
						Usage: "Bypass cached entries and read from the store",
					},
				},
				Action: r.ResolveBulk,
			},
		},
	}
}

// trackCommand manages uploaded tracks.
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "track",
		Usage: "Manage uploaded tracks",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Add track metadata",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "title", Usage: "Track title", Required: true},
					&cli.StringFlag{Name: "artist", Usage: "Artist name", Required: true},
					&cli.StringFlag{Name: "album", Usage: "Album name"},
					&cli.IntFlag{Name: "duration", Usage: "Duration in seconds"},
					&cli.StringFlag{Name: "isrc", Usage: "International Standard Recording Code"},
					&cli.StringFlag{Name: "audio-url", Usage: "Location of the audio file"},
				},
				Action: r.TrackCreate,
			},
			{
				Name:   "list",
				Usage:  "List a user's tracks",
				Flags:  []cli.Flag{userFlag(), jsonFlag()},
				Action: r.TrackList,
			},
		},
	}
}

// playlistCommand manages playlists and track ordering.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Manage playlists",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create an empty playlist",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{Name: "name", Usage: "Playlist name", Required: true},
					&cli.StringFlag{Name: "description", Usage: "Playlist description"},
					&cli.BoolFlag{Name: "public", Usage: "Make the playlist public"},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:   "list",
				Usage:  "List a user's playlists",
				Flags:  []cli.Flag{userFlag()},
				Action: r.PlaylistList,
			},
			{
				Name:   "add",
				Usage:  "Append a track to a playlist",
				Flags:  playlistTrackFlags(),
				Action: r.PlaylistAdd,
			},
			{
				Name:   "remove",
				Usage:  "Remove a track from a playlist",
				Flags:  playlistTrackFlags(),
				Action: r.PlaylistRemove,
			},
			{
				Name:  "reorder",
				Usage: "Move a track to a new position",
				Flags: append(playlistTrackFlags(), &cli.IntFlag{
					Name:     "position",
					Usage:    "New 1-based position",
					Required: true,
				}),
				Action: r.PlaylistReorder,
			},
			{
				Name:  "show",
				Usage: "Show a playlist and its tracks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "playlist",
						Aliases:  []string{"p"},
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (json, csv, markdown, txt)",
						Value:   formatter.FormatText,
					},
				},
				Action: r.PlaylistShow,
			},
		},
	}
}

// statsCommand summarises a user's library.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show library statistics and plan tier for a user",
		Flags:  []cli.Flag{userFlag(), jsonFlag()},
		Action: r.Stats,
	}
}

// tuiCommand returns the top-level TUI command for interactive user-type inspection.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing users and their cached types",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI is running",
				Value: "./tmp/soundshelf-tui.log",
			},
		},
		Action: r.TUI,
	}
}
