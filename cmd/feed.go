/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"hardboiled/db"
	"hardboiled/query"
	"hardboiled/readables"
	"hardboiled/schema"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func feedCmd() *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Print one page of the readables feed",
		Description: `Prints one page of the readables feed as a JSON object on
		stdout. Use a tool like jq to process the output.

		Prints all log messages to stderr.`,
		Flags: []cli.Flag{
			databaseFlag(),
			configFlag(),
			&cli.StringFlag{
				Name:  "tag",
				Usage: "Only readables tagged with this slug",
			},
			&cli.StringFlag{
				Name:  "author",
				Usage: "Only readables written by the user with this slug",
			},
			&cli.IntFlag{
				Name:  "page",
				Value: 1,
				Usage: "Page number",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Page size, defaults to feed.default_limit",
			},
		},
		Action: func(ctx *cli.Context) error {
			log.SetOutput(os.Stderr)

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			reader, err := db.NewReader(ctx.Context, ctx.String("database"))
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer reader.Close()

			engine, err := readables.New(schema.Default(), reader, cfg.Feed)
			if err != nil {
				return fmt.Errorf("invalid readables schema: %w", err)
			}

			filter := query.Filter{
				TagSlug:    ctx.String("tag"),
				AuthorSlug: ctx.String("author"),
			}
			page, err := engine.GetFeedPage(ctx.Context, filter, ctx.Int("page"), ctx.Int("limit"))
			if err != nil {
				return err
			}
			if page.FilterNotFound() {
				log.WithField("filter", filter.Kind()).Warn("Filter did not match any tag or author")
			}

			encoder := json.NewEncoder(ctx.App.Writer)
			encoder.SetIndent("", "  ")
			return encoder.Encode(page)
		},
	}
}
