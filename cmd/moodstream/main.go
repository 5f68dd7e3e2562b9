package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/moodstream/internal/buildinfo"
	"github.com/dmitrijs2005/moodstream/internal/cli"
	"github.com/dmitrijs2005/moodstream/internal/config"
	"github.com/dmitrijs2005/moodstream/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewTextLogger(os.Stderr, cli.LevelFromName(cfg.LogLevel))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
