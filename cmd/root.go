/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "hardboiled",
		Usage: "A feed of posts, issues and articles",
		Description: `Serves one reverse-chronological feed merging posts, magazine
		issues and their articles, optionally filtered by tag or author.

		Content is read from an SQLite file or a PostgreSQL database and
		served as JSON over HTTP.

		Flags can generally be set via environment variables, e.g.:

		--database => HARDBOILED_DATABASE=hardboiled.db
		--port => HARDBOILED_PORT=3000
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"HARDBOILED_LOG_LEVEL"},
			},
		},
		Before: func(ctx *cli.Context) error {
			level, err := log.ParseLevel(ctx.String("log-level"))
			if err != nil {
				return fmt.Errorf("invalid log level: %w", err)
			}
			log.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			serveCmd(),
			feedCmd(),
			migrateCmd(),
			rollbackCmd(),
			seedCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func databaseFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "database",
		Aliases: []string{"d"},
		Value:   "hardboiled.db",
		Usage:   "SQLite database file or postgres:// URL",
		EnvVars: []string{"HARDBOILED_DATABASE"},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to the TOML configuration file",
		EnvVars: []string{"HARDBOILED_CONFIG"},
	}
}
