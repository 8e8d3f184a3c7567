package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"wacms/internal/config"
)

// ANSI color codes for terminal output
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func main() {
	// Load .env file (ignore error if not present)
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the WhatsApp console PostgreSQL schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  withDB(runUp),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the last applied migration",
			RunE:  withDB(runDown),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show applied and pending migrations",
			RunE:  withDB(showMigrationStatus),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Roll back every migration and reapply them",
			RunE:  withDB(runReset),
		},
		newSeedCmd(),
	)

	return root
}

// withDB opens the configured database, ensures the tracking table and runs fn
func withDB(fn func(db *sql.DB) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		printInfo("=== WhatsApp Console Migration Runner ===\n")

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if !cfg.DatabaseEnabled() {
			return fmt.Errorf("POSTGRES_HOST is not set")
		}

		printInfo("Connecting to database...")
		db, err := sql.Open("postgres", cfg.GetDatabaseDSN())
		if err != nil {
			return fmt.Errorf("failed to open database connection: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(cmd.Context()); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}
		printSuccess("✓ Connected to database\n")

		if err := createMigrationTable(db); err != nil {
			return err
		}

		if err := fn(db); err != nil {
			return err
		}

		printInfo("\n✨ Operation completed successfully!")
		return nil
	}
}

func printSuccess(msg string) {
	fmt.Printf("%s%s%s\n", colorGreen, msg, colorReset)
}

func printError(msg string) {
	fmt.Fprintf(os.Stderr, "%s✗ %s%s\n", colorRed, msg, colorReset)
}

func printWarning(msg string) {
	fmt.Printf("%s⚠ %s%s\n", colorYellow, msg, colorReset)
}

func printInfo(msg string) {
	fmt.Printf("%s%s%s\n", colorCyan, msg, colorReset)
}
