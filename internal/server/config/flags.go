package config

import (
	"flag"
	"os"
	"time"

	"github.com/velotrans/tms/internal/flagx"
)

// parseFlags overlays selected Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-e string   environment name (development | production)
//	-t int      access token validity, minutes
//	-r string   refresh token lifetime ("7d", "12h", "30m", "45s")
//
// Args are filtered through flagx first so flags owned by other packages
// (like -c/-config) do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-e", "-t", "-r"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.Env, "e", config.Env, "environment name")

	accessValidity := fs.Int("t", int(config.AccessTokenValidity.Minutes()), "access token validity (minutes)")
	fs.StringVar(&config.RefreshTokenLifetime, "r", config.RefreshTokenLifetime, "refresh token lifetime (e.g. 7d)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidity = time.Duration(*accessValidity) * time.Minute
}
