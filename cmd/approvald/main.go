package main

import (
	"context"
	"log"

	"github.com/mfgquality/burnin/internal/config"
	"github.com/mfgquality/burnin/internal/server"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
