package main

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Migration is one versioned schema change
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_messages",
		Up: `
			CREATE TABLE IF NOT EXISTS messages (
				id TEXT PRIMARY KEY,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				phone_number VARCHAR(32) NOT NULL,
				content TEXT NOT NULL DEFAULT '',
				direction VARCHAR(10) NOT NULL CHECK (direction IN ('incoming', 'outgoing')),
				status VARCHAR(10) NOT NULL DEFAULT 'unread' CHECK (status IN ('read', 'unread'))
			);
			CREATE INDEX IF NOT EXISTS idx_messages_phone_number ON messages (phone_number);
			CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages (created_at);
		`,
		Down: `DROP TABLE IF EXISTS messages CASCADE;`,
	},
	{
		Version: 2,
		Name:    "create_message_logs",
		Up: `
			CREATE TABLE IF NOT EXISTS message_logs (
				id TEXT PRIMARY KEY,
				campaign_id TEXT NOT NULL,
				contact_id TEXT NOT NULL,
				contact_name VARCHAR(100) NOT NULL DEFAULT '',
				contact_phone VARCHAR(32) NOT NULL DEFAULT '',
				message TEXT NOT NULL DEFAULT '',
				status VARCHAR(10) NOT NULL CHECK (status IN ('sent', 'failed')),
				error TEXT NULL,
				sent_at TIMESTAMPTZ NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_message_logs_campaign_id ON message_logs (campaign_id);
			CREATE INDEX IF NOT EXISTS idx_message_logs_sent_at ON message_logs (sent_at DESC);
		`,
		Down: `DROP TABLE IF EXISTS message_logs CASCADE;`,
	},
}

// createMigrationTable creates the schema_migrations tracking table
func createMigrationTable(db *sql.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	return nil
}

// getAppliedMigrations returns applied versions and when they were applied
func getAppliedMigrations(db *sql.DB) (map[int]time.Time, error) {
	rows, err := db.Query(`SELECT version, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, fmt.Errorf("failed to query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]time.Time)
	for rows.Next() {
		var version int
		var appliedAt time.Time
		if err := rows.Scan(&version, &appliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = appliedAt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate migrations: %w", err)
	}

	return applied, nil
}

func findMigration(version int) (Migration, bool) {
	for _, m := range migrations {
		if m.Version == version {
			return m, true
		}
	}
	return Migration{}, false
}

// runUp applies all pending migrations
func runUp(db *sql.DB) error {
	printInfo("Running pending migrations...\n")

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return err
	}

	count := 0
	for _, m := range migrations {
		if _, ok := applied[m.Version]; ok {
			continue
		}
		if err := runMigration(db, m); err != nil {
			return fmt.Errorf("failed to apply migration %03d_%s: %w", m.Version, m.Name, err)
		}
		count++
	}

	if count == 0 {
		printSuccess("✓ All migrations are up to date")
		return nil
	}
	printSuccess(fmt.Sprintf("\n✓ Successfully applied %d migration(s)", count))
	return nil
}

// runMigration applies one migration and records it in a single transaction
func runMigration(db *sql.DB, m Migration) error {
	printInfo(fmt.Sprintf("Applying migration %03d_%s...", m.Version, m.Name))

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.Up); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", m.Version, m.Name); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	printSuccess(fmt.Sprintf("  ✓ Migration %03d applied successfully", m.Version))
	return nil
}

// runDown rolls back the last applied migration
func runDown(db *sql.DB) error {
	printInfo("Rolling back last migration...\n")

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		printWarning("No migrations to rollback")
		return nil
	}

	lastVersion := 0
	for version := range applied {
		if version > lastVersion {
			lastVersion = version
		}
	}

	return rollbackMigration(db, lastVersion)
}

// rollbackMigration runs the down SQL of one version and forgets it
func rollbackMigration(db *sql.DB, version int) error {
	m, ok := findMigration(version)
	if !ok {
		return fmt.Errorf("no rollback defined for migration version %d", version)
	}

	printInfo(fmt.Sprintf("Rolling back migration %03d_%s...", m.Version, m.Name))

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(m.Down); err != nil {
		return fmt.Errorf("failed to execute rollback SQL: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
		return fmt.Errorf("failed to remove migration record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	printSuccess(fmt.Sprintf("  ✓ Migration %03d rolled back", version))
	return nil
}

// runReset rolls back all migrations in reverse order and reapplies them
func runReset(db *sql.DB) error {
	printWarning("Resetting database (rollback all + reapply all)...\n")

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return err
	}

	versions := make([]int, 0, len(applied))
	for version := range applied {
		versions = append(versions, version)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(versions)))

	for _, version := range versions {
		if err := rollbackMigration(db, version); err != nil {
			return err
		}
	}
	if len(versions) > 0 {
		printSuccess("\n✓ All migrations rolled back\n")
	}

	return runUp(db)
}

// showMigrationStatus prints every known migration with its state
func showMigrationStatus(db *sql.DB) error {
	printInfo("Migration Status:\n")

	applied, err := getAppliedMigrations(db)
	if err != nil {
		return err
	}

	fmt.Printf("%s%-10s %-40s %-12s %-20s%s\n",
		colorBold, "VERSION", "NAME", "STATUS", "APPLIED AT", colorReset)
	fmt.Println(strings.Repeat("-", 85))

	appliedCount := 0
	for _, m := range migrations {
		status := "pending"
		statusColor := colorYellow
		appliedAt := "-"

		if at, ok := applied[m.Version]; ok {
			appliedCount++
			status = "applied"
			statusColor = colorGreen
			appliedAt = at.Format("2006-01-02 15:04:05")
		}

		fmt.Printf("%-10s %-40s %s%-12s%s %-20s\n",
			fmt.Sprintf("%03d", m.Version), m.Name, statusColor, status, colorReset, appliedAt)
	}

	fmt.Println(strings.Repeat("-", 85))
	printInfo(fmt.Sprintf("\nSummary: %d/%d migrations applied", appliedCount, len(migrations)))

	return nil
}
