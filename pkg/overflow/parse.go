package overflow

import (
	"flag"
	"fmt"
	"time"
)

// Environment variable names. The token secret is deliberately env-only:
// spelling a signing secret on a command line leaks it into process listings
// and shell history.
const (
	envTokenSecret = "OVERFLOW_TOKEN_SECRET"
	envTokenTTL    = "OVERFLOW_TOKEN_TTL"
)

// Parse parses command line arguments and returns the command to execute
// and the application configuration. Database settings and the token secret
// come from the environment; flags cover the per-invocation knobs.
func Parse(args []string) (Command, *Config, error) {
	flagSet := flag.NewFlagSet("overflowd", flag.ContinueOnError)

	var (
		port = flagSet.String("port", "8080", "Server port")
		mem  = flagSet.Bool("mem", false, "Use the in-memory store instead of SurrealDB")
	)

	if err := flagSet.Parse(args); err != nil {
		return nil, nil, err
	}

	remainingArgs := flagSet.Args()
	if len(remainingArgs) == 0 {
		return nil, nil, fmt.Errorf(`subcommand required

Usage: overflowd [flags] <command>

Commands:
  run       Start the forum server
  migrate   Prepare the backing store (define indexes)
  seed      Load demonstration users, questions and answers

Examples:
  overflowd run                     # serve against SurrealDB
  overflowd -mem run                # serve against the in-memory store
  overflowd -port=8090 run
  overflowd migrate
  overflowd seed

Environment:
  OVERFLOW_TOKEN_SECRET   JWT signing secret (required)
  OVERFLOW_TOKEN_TTL      token validity window (default 1h)
  SURREALDB_URL           SurrealDB endpoint (default ws://localhost:8000/rpc)
  SURREALDB_NS            namespace (default overflow)
  SURREALDB_DB            database (default overflow)
  SURREALDB_USER          username (default root)
  SURREALDB_PASS          password (default root)`)
	}

	var cmd Command
	switch remainingArgs[0] {
	case "run":
		cmd = &RunCommand{}
	case "migrate":
		cmd = &MigrateCommand{}
	case "seed":
		cmd = &SeedCommand{}
	default:
		return nil, nil, fmt.Errorf("unknown command: %s\n\nValid commands: run, migrate, seed", remainingArgs[0])
	}

	config := &Config{
		ServerPort:    *port,
		UseMemory:     *mem,
		SurrealDBURL:  getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNS:   getEnv("SURREALDB_NS", "overflow"),
		SurrealDBDB:   getEnv("SURREALDB_DB", "overflow"),
		SurrealDBUser: getEnv("SURREALDB_USER", "root"),
		SurrealDBPass: getEnv("SURREALDB_PASS", "root"),
		TokenSecret:   getEnv(envTokenSecret, ""),
		TokenTTL:      getEnvDuration(envTokenTTL, time.Hour),
	}

	return cmd, config, nil
}
