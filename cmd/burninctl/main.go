package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/mfgquality/burnin/internal/cli"
	"github.com/mfgquality/burnin/internal/config"
)

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}

	app := cli.NewApp(cfg)
	if err := app.Run(ctx, flagRemainder()); err != nil {
		log.Fatalf("%v", err)
	}
}

// flagRemainder returns os.Args entries after the configuration flags the
// shared config loader consumed.
func flagRemainder() []string {
	var rest []string
	skip := false
	for _, arg := range os.Args[1:] {
		if skip {
			skip = false
			continue
		}
		if strings.HasPrefix(arg, "-") {
			if !strings.Contains(arg, "=") {
				skip = true
			}
			continue
		}
		rest = append(rest, arg)
	}
	return rest
}
