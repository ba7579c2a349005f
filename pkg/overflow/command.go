package overflow

// Command represents a discrete application operation. Commands are created
// by Parse from command line arguments and executed by Main through the
// corresponding App method.
type Command interface {
	// Name returns the command identifier used for routing.
	Name() string
}

// RunCommand starts the HTTP server and blocks until the context is
// cancelled or the server fails.
type RunCommand struct{}

func (c *RunCommand) Name() string { return "run" }

// MigrateCommand prepares the backing store (index definitions for
// SurrealDB). Idempotent; `run` also migrates at startup, so this command
// exists for deployment pipelines that migrate before serving traffic.
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string { return "migrate" }

// SeedCommand loads demonstration data: a pair of users, a few questions,
// and answers attached to them. Answers have no HTTP creation endpoint, so
// seeding is their way into a fresh database.
type SeedCommand struct{}

func (c *SeedCommand) Name() string { return "seed" }
