package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"byod/internal/config"
	"byod/internal/observability/logging"
	"byod/internal/store"
	"byod/pkg/db"

	"github.com/spf13/pflag"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.Load()
	logger := logging.NewLogger(logging.Config{
		ServiceName: "byodctl",
		Environment: cfg.Environment,
		Level:       cfg.LogLevel,
		Output:      os.Stderr,
	})
	slog.SetDefault(logger)

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "migrate":
		err = runMigrate(cfg, args)
	case "create-user":
		err = runCreateUser(cfg, args)
	case "seed-demo":
		err = runSeedDemo(cfg, args)
	default:
		usage()
	}

	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  migrate       Create or update the database schema")
	fmt.Fprintln(os.Stderr, "  create-user   Create a user with a password")
	fmt.Fprintln(os.Stderr, "  seed-demo     Create demo users and devices")
	os.Exit(2)
}

// dbFlags adds the connection overrides shared by every command.
func dbFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.DatabaseDriver, "driver", cfg.DatabaseDriver, "database driver (postgres|sqlite)")
	fs.StringVar(&cfg.DatabaseURL, "dsn", cfg.DatabaseURL, "database connection string")
}

func openStore(ctx context.Context, cfg config.Config, migrate bool) (*store.Store, error) {
	gdb, err := db.OpenGorm(db.Config{
		Driver: cfg.DatabaseDriver,
		DSN:    cfg.DatabaseURL,
		LogSQL: cfg.LogSQL,
		Logger: slog.Default(),
	})
	if err != nil {
		return nil, err
	}
	st := store.New(gdb)
	if migrate {
		if err := st.AutoMigrate(ctx); err != nil {
			return nil, err
		}
	}
	return st, nil
}

func runMigrate(cfg config.Config, args []string) error {
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	dbFlags(fs, &cfg)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if _, err := openStore(context.Background(), cfg, true); err != nil {
		return err
	}
	fmt.Println("schema up to date")
	return nil
}
