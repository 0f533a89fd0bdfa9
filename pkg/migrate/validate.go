package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/verifi-app/verifi-backend/pkg/config"
)

var (
	sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)
)

// ValidateDir validates migration filenames + basic SQL headers and returns
// the versions found.
func ValidateDir(dir string) ([]string, error) {
	if dir == "" {
		return nil, fmt.Errorf("dir is required")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %q: %w", dir, err)
	}

	seen := map[string]string{} // version -> filename
	versions := make([]string, 0, len(entries))

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return nil, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}

		version := m[1]
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %s in %q and %q", version, prev, name)
		}
		seen[version] = name
		versions = append(versions, version)

		full := filepath.Join(dir, name)
		b, err := os.ReadFile(full)
		if err != nil {
			return nil, fmt.Errorf("read file %q: %w", full, err)
		}

		txt := string(b)
		if !strings.Contains(txt, "-- +goose Up") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Up\"", name)
		}
		if !strings.Contains(txt, "-- +goose Down") {
			return nil, fmt.Errorf("migration %q missing \"-- +goose Down\"", name)
		}
	}

	sort.Strings(versions)
	return versions, nil
}

// ValidateDialects validates every dialect directory under base and checks
// that they carry the same versions, so sqlite and postgres never drift.
func ValidateDialects(base string) error {
	var (
		reference     []string
		referenceName string
	)
	for _, driver := range []string{config.DriverSQLite, config.DriverPostgres} {
		dir := DirFor(base, driver)
		versions, err := ValidateDir(dir)
		if err != nil {
			return err
		}
		if referenceName == "" {
			reference, referenceName = versions, driver
			continue
		}
		if strings.Join(versions, ",") != strings.Join(reference, ",") {
			return fmt.Errorf("migration versions differ between %s %v and %s %v", referenceName, reference, driver, versions)
		}
	}
	return nil
}
