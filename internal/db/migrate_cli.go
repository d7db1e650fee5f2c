package db

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
)

// ErrUnknownMigrateAction is returned for an unrecognised migrate subcommand.
var ErrUnknownMigrateAction = errors.New("unknown migrate action")

// RunMigrateCommand handles the 'migrate' subcommand against the embedded
// migrations. Output goes to out.
func RunMigrateCommand(args []string, dbPath string, out io.Writer) error {
	if len(args) < 1 {
		PrintMigrateHelp(out)
		return fmt.Errorf("%w: none given", ErrUnknownMigrateAction)
	}
	action := args[0]
	if action == "help" {
		PrintMigrateHelp(out)
		return nil
	}

	// Open without migrating; the action decides what to apply.
	database, err := OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	return runMigrateAction(database, Migrations(), action, args[1:], out)
}

func runMigrateAction(database *DB, migrationsFS fs.FS, action string, args []string, out io.Writer) error {
	switch action {
	case "up":
		if err := database.MigrateUp(migrationsFS); err != nil {
			return err
		}
		fmt.Fprintln(out, "All migrations applied")
		return printVersion(database, migrationsFS, out)

	case "down":
		if err := database.MigrateDown(migrationsFS); err != nil {
			return err
		}
		fmt.Fprintln(out, "Rolled back one migration")
		return printVersion(database, migrationsFS, out)

	case "status":
		version, dirty, err := database.MigrateVersion(migrationsFS)
		if err != nil {
			return fmt.Errorf("failed to get migration status: %w", err)
		}
		latest, err := LatestMigrationVersion(migrationsFS)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Current version: %d\n", version)
		fmt.Fprintf(out, "Latest available: %d\n", latest)
		fmt.Fprintf(out, "Dirty: %v\n", dirty)
		switch {
		case dirty:
			fmt.Fprintln(out, "Database is in a dirty state; inspect it and run 'migrate force <version>'")
		case version < latest:
			fmt.Fprintf(out, "Database is %d version(s) behind; run 'migrate up'\n", latest-version)
		default:
			fmt.Fprintln(out, "Database is up to date")
		}
		return nil

	case "force":
		if len(args) < 1 {
			return fmt.Errorf("usage: migrate force <version_number>")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version number %q: %w", args[0], err)
		}
		if err := database.MigrateForce(migrationsFS, version); err != nil {
			return err
		}
		fmt.Fprintf(out, "Migration version forced to %d\n", version)
		return nil

	default:
		PrintMigrateHelp(out)
		return fmt.Errorf("%w: %s", ErrUnknownMigrateAction, action)
	}
}

func printVersion(database *DB, migrationsFS fs.FS, out io.Writer) error {
	version, dirty, err := database.MigrateVersion(migrationsFS)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Current version: %d (dirty: %v)\n", version, dirty)
	return nil
}

// PrintMigrateHelp displays the help message for the migrate command
func PrintMigrateHelp(out io.Writer) {
	fmt.Fprintln(out, "Result store migration commands")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Usage: cdcreco migrate <command> [options]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  up              Apply all pending migrations")
	fmt.Fprintln(out, "  down            Rollback one migration")
	fmt.Fprintln(out, "  status          Show current migration status and version")
	fmt.Fprintln(out, "  force <N>       Force migration version to N (recovery only)")
	fmt.Fprintln(out, "  help            Show this help message")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Options:")
	fmt.Fprintln(out, "  -db <path>      Path to database file (default: cdc_results.db)")
}
