package db

import (
	"fmt"
	"io"
)

// RunMigrateCommand handles the 'migrate' subcommand and returns the process
// exit code.
func RunMigrateCommand(args []string, dbPath string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		PrintMigrateHelp(stderr)
		return 2
	}

	action := args[0]
	if action == "help" {
		PrintMigrateHelp(stdout)
		return 0
	}
	if action != "up" && action != "down" && action != "status" {
		fmt.Fprintf(stderr, "Unknown migrate action: %s\n\n", action)
		PrintMigrateHelp(stderr)
		return 2
	}

	database, err := OpenDB(dbPath)
	if err != nil {
		fmt.Fprintf(stderr, "Failed to connect to database: %v\n", err)
		return 4
	}
	defer database.Close()

	switch action {
	case "up":
		if err := database.MigrateUp(); err != nil {
			fmt.Fprintf(stderr, "Migration up failed: %v\n", err)
			return 4
		}
		fmt.Fprintln(stdout, "All migrations applied")
	case "down":
		if err := database.MigrateDown(); err != nil {
			fmt.Fprintf(stderr, "Migration down failed: %v\n", err)
			return 4
		}
		fmt.Fprintln(stdout, "Rolled back one migration")
	}

	return printMigrateStatus(database, stdout, stderr)
}

func printMigrateStatus(database *DB, stdout, stderr io.Writer) int {
	version, dirty, err := database.MigrateVersion()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to get migration status: %v\n", err)
		return 4
	}
	latest, err := LatestMigrationVersion()
	if err != nil {
		fmt.Fprintf(stderr, "Failed to get latest migration version: %v\n", err)
		return 4
	}

	fmt.Fprintf(stdout, "Current version: %d\n", version)
	fmt.Fprintf(stdout, "Latest available: %d\n", latest)
	fmt.Fprintf(stdout, "Dirty: %v\n", dirty)
	switch {
	case dirty:
		fmt.Fprintln(stdout, "Database is in a dirty state. A migration failed mid-execution.")
	case version < latest:
		fmt.Fprintf(stdout, "Database is %d version(s) behind. Run 'ulam migrate up' to update.\n", latest-version)
	default:
		fmt.Fprintln(stdout, "Database is up to date")
	}
	return 0
}

// PrintMigrateHelp writes the usage of the migrate subcommand.
func PrintMigrateHelp(w io.Writer) {
	fmt.Fprintln(w, "Usage: ulam migrate [-db path] <command>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  up      Apply all pending migrations")
	fmt.Fprintln(w, "  down    Roll back one migration")
	fmt.Fprintln(w, "  status  Show current migration version")
	fmt.Fprintln(w, "  help    Show this help message")
}
