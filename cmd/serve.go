/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hardboiled/config"
	"hardboiled/db"
	"hardboiled/readables"
	"hardboiled/schema"
	"hardboiled/server"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the readables feed",
		Description: `Starts the HTTP server for the readables feed.

		Serves the JSON API at /api/readables, the tag and author listings at
		/tag/:slug/ and /author/:slug/, and Prometheus metrics at /metrics.`,
		Flags: []cli.Flag{
			databaseFlag(),
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on, overrides the configuration file",
				EnvVars: []string{"HARDBOILED_PORT"},
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if ctx.IsSet("port") {
				cfg.Server.Port = ctx.Int("port")
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

			app := server.Server(&server.ServerConfig{
				Feed:   engine,
				Config: cfg,
			})

			// Graceful shutdown
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGTERM)
			go func() {
				<-c
				log.Info("Gracefully shutting down...")
				if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
					log.WithField("error", err).Error("Error shutting down server")
				}
			}()

			log.WithField("port", cfg.Server.Port).Info("Starting server")
			return app.Listen(fmt.Sprintf(":%d", cfg.Server.Port))
		},
	}
}

// loadConfig reads the configuration file when one is given, otherwise the defaults
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	path := ctx.String("config")
	if path == "" {
		return config.Default(), nil
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
