// Command aniwatch is the terminal client for the aniwatch backend.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/aniwatch/aniwatch-server/catalog"
	"github.com/aniwatch/aniwatch-server/client"
	"github.com/aniwatch/aniwatch-server/session"
)

const configFile = "aniwatch.toml"

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

	config := defaultConfig()
	if _, err := os.Stat(configFile); err == nil {
		loaded, err := loadConfig(configFile)
		if err != nil {
			logger.Fatalf("loading %s: %v", configFile, err)
		}
		config = loaded
	}

	sessionPath := config.SessionPath
	if sessionPath == "" {
		var err error
		sessionPath, err = session.DefaultPath()
		if err != nil {
			logger.Fatalf("resolving session path: %v", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:   config,
		API:      client.New(config.Server.URL, nil),
		Catalog:  catalog.New(&catalog.Options{BaseURL: config.Catalog.URL}),
		Sessions: session.NewStore(sessionPath),
		Logger:   logger,
	})

	app := &cli.Command{
		Name:     "aniwatch",
		Usage:    "Track your anime watchlist from the terminal",
		Version:  "1.0.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("%v", err)
	}
}
