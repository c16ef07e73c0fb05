package config

import (
	"flag"
	"os"
	"time"

	"github.com/mfgquality/burnin/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address of the approval service (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-p string   scan root path
//	-t int      per-device scan timeout, seconds
//
// Structured settings (devices, tier requirements, file filters) can only
// come from the JSON config file.
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-p", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port of the approval service")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.ScanRoot, "p", config.ScanRoot, "scan root path")

	scanTimeout := fs.Int("t", int(config.ScanTimeout.Seconds()), "per-device scan timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ScanTimeout = time.Duration(*scanTimeout) * time.Second
}
