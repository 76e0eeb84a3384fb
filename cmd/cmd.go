// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
			{
				Name:  "config",
				Usage: "Write the default config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the config file to create",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// authCommand handles account and session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage your account and CLI session",
		Commands: []*cli.Command{
			{
				Name:  "signup",
				Usage: "Create an account with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password (min 6 characters)", Required: true},
					&cli.StringFlag{Name: "name", Aliases: []string{"n"}, Usage: "Display name"},
				},
				Action: r.AuthSignUp,
			},
			{
				Name:  "login",
				Usage: "Sign in with email and password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Required: true},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "oauth",
				Usage: "Sign in through the configured OAuth2 provider",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "How long to wait for the browser callback",
						Value: 2 * time.Minute,
					},
				},
				Action: r.AuthOAuth,
			},
			{
				Name:   "logout",
				Usage:  "Forget the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the signed-in user",
				Action: r.AuthStatus,
			},
		},
	}
}

// listsCommand handles movie list operations for the signed-in user
func listsCommand(r *Runner) *cli.Command {
	listArg := func() []cli.Argument { return []cli.Argument{&cli.StringArg{Name: "list"}} }
	listMovieArgs := func() []cli.Argument {
		return []cli.Argument{&cli.StringArg{Name: "list"}, &cli.StringArg{Name: "movie"}}
	}

	return &cli.Command{
		Name:  "lists",
		Usage: "Manage your movie lists",
		Commands: []*cli.Command{
			{
				Name:    "ls",
				Aliases: []string{"list"},
				Usage:   "Show your lists",
				Flags:   jsonFlags(),
				Action:  r.ListsLs,
			},
			{
				Name:      "create",
				Usage:     "Create a list",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Action:    r.ListsCreate,
			},
			{
				Name:      "rename",
				Usage:     "Rename a list",
				Arguments: []cli.Argument{&cli.StringArg{Name: "list"}, &cli.StringArg{Name: "name"}},
				Action:    r.ListsRename,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a list and all of its movies",
				Arguments: listArg(),
				Action:    r.ListsDelete,
			},
			{
				Name:      "show",
				Usage:     "Show the movies in a list, newest first",
				Arguments: listArg(),
				Flags:     jsonFlags(),
				Action:    r.ListsShow,
			},
			{
				Name:      "add",
				Usage:     "Add a movie (IMDb ID) to a list",
				Arguments: listMovieArgs(),
				Action:    r.ListsAdd,
			},
			{
				Name:      "remove",
				Usage:     "Remove a movie (IMDb ID) from a list",
				Arguments: listMovieArgs(),
				Action:    r.ListsRemove,
			},
			{
				Name:      "toggle",
				Usage:     "Add a movie to a list, or remove it if already there",
				Arguments: listMovieArgs(),
				Action:    r.ListsToggle,
			},
			{
				Name:      "membership",
				Usage:     "Show which of your lists contain a movie",
				Arguments: []cli.Argument{&cli.StringArg{Name: "movie"}},
				Flags:     jsonFlags(),
				Action:    r.ListsMembership,
			},
		},
	}
}

// moviesCommand handles movie search through the configured provider
func moviesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "movies",
		Usage: "Search the movie database",
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search movies by title",
				Arguments: []cli.Argument{&cli.StringArg{Name: "query"}},
				Flags: append(jsonFlags(),
					&cli.IntFlag{Name: "page", Usage: "Result page", Value: 1},
					&cli.IntFlag{Name: "pages", Usage: "Fetch this many pages starting at --page", Value: 1},
					&cli.StringFlag{Name: "type", Usage: "movie, series or episode"},
					&cli.StringFlag{Name: "year", Usage: "Release year"},
				),
				Action: r.MoviesSearch,
			},
			{
				Name:      "show",
				Usage:     "Show movie details by IMDb ID",
				Arguments: []cli.Argument{&cli.StringArg{Name: "movie"}},
				Flags:     jsonFlags(),
				Action:    r.MoviesShow,
			},
		},
	}
}

// serveCommand runs the JSON API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API and Prometheus metrics",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (defaults to [server] host:port)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive list management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for your movie lists",
		Action:  r.TUI,
	}
}
