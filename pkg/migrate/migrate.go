package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/pressly/goose/v3"
	"github.com/verifi-app/verifi-backend/pkg/config"
)

const DefaultDir = "pkg/migrate/migrations"

// Dialect maps a store driver onto the goose dialect name.
func Dialect(driver string) (goose.Dialect, error) {
	switch strings.ToLower(driver) {
	case config.DriverSQLite:
		return goose.DialectSQLite3, nil
	case config.DriverPostgres:
		return goose.DialectPostgres, nil
	default:
		return "", fmt.Errorf("no migrations for driver %q", driver)
	}
}

// DirFor returns the on-disk directory holding the driver's migrations,
// relative to base (DefaultDir when empty).
func DirFor(base string, driver string) string {
	if base == "" {
		base = DefaultDir
	}
	return path.Join(base, strings.ToLower(driver))
}

// Up applies every embedded migration for the driver that has not run yet.
// It returns the number of migrations applied.
func Up(ctx context.Context, db *sql.DB, driver string) (int, error) {
	if db == nil {
		return 0, fmt.Errorf("db is required")
	}
	dialect, err := Dialect(driver)
	if err != nil {
		return 0, err
	}

	fsys, err := fs.Sub(Migrations, path.Join("migrations", strings.ToLower(driver)))
	if err != nil {
		return 0, fmt.Errorf("embedded migrations: %w", err)
	}

	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return len(results), fmt.Errorf("goose up: %w", err)
	}
	return len(results), nil
}

// Run executes a standard goose command against an on-disk directory.
func Run(ctx context.Context, db *sql.DB, driver string, dir string, command string, args ...string) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	if dir == "" {
		return fmt.Errorf("dir is required")
	}

	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	// RunContext prints status output to stdout (goose internal)
	if err := goose.RunContext(ctx, command, db, dir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// MigrateToVersion migrates up/down to the requested version by comparing current DB version.
func MigrateToVersion(ctx context.Context, db *sql.DB, driver string, dir string, targetVersion string) error {
	if targetVersion == "" {
		return fmt.Errorf("targetVersion is required")
	}

	dialect, err := Dialect(driver)
	if err != nil {
		return err
	}
	if err := goose.SetDialect(string(dialect)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	current, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("get db version: %w", err)
	}

	switch {
	case current == target:
		return nil

	case current < target:
		if err := goose.UpToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose up-to %d: %w", target, err)
		}
		return nil

	default:
		if err := goose.DownToContext(ctx, db, dir, target); err != nil {
			return fmt.Errorf("goose down-to %d: %w", target, err)
		}
		return nil
	}
}
