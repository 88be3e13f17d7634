/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"hardboiled/db"
	"hardboiled/models"

	"github.com/urfave/cli/v2"
)

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load content from a TOML fixture file",
		Description: `Loads users, tags, posts, issues and articles from a TOML
		fixture file into the configured database. References between entries
		use slugs. Useful for local development.`,
		Flags: []cli.Flag{
			databaseFlag(),
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"f"},
				Usage:    "Path to the TOML fixture file",
				Required: true,
			},
		},
		Action: func(ctx *cli.Context) error {
			content, err := models.LoadContent(ctx.String("file"))
			if err != nil {
				return err
			}

			writer, err := db.NewWriter(ctx.Context, ctx.String("database"))
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer writer.Close()

			return writer.Seed(ctx.Context, content)
		},
	}
}
