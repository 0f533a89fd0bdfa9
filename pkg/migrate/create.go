package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/verifi-app/verifi-backend/pkg/config"
)

var nameSanitizeRe = regexp.MustCompile(`[^a-z0-9_]+`)

const versionLayout = "20060102150405"

// CreateSQLMigration creates <dir>/<YYYYMMDDHHMMSS>_<name>.sql.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	safe, err := sanitizeName(name)
	if err != nil {
		return "", err
	}
	return writeTemplate(dir, time.Now().UTC().Format(versionLayout), safe, "")
}

// CreateDialectMigrations creates one migration per driver under base, all
// sharing a single version so ValidateDialects keeps passing.
func CreateDialectMigrations(base string, name string) ([]string, error) {
	safe, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}
	version := time.Now().UTC().Format(versionLayout)

	var paths []string
	for _, driver := range []string{config.DriverSQLite, config.DriverPostgres} {
		path, err := writeTemplate(DirFor(base, driver), version, safe, driver)
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func sanitizeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	safe := strings.ToLower(strings.TrimSpace(name))
	safe = strings.ReplaceAll(safe, " ", "_")
	safe = nameSanitizeRe.ReplaceAllString(safe, "_")
	safe = strings.Trim(safe, "_")
	if safe == "" {
		return "", fmt.Errorf("name %q results in empty sanitized filename", name)
	}
	return safe, nil
}

func writeTemplate(dir, version, safe, driver string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	fullpath := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, safe))
	if _, err := os.Stat(fullpath); err == nil {
		return "", fmt.Errorf("migration already exists: %s", fullpath)
	}

	header := ""
	if driver != "" {
		header = fmt.Sprintf("-- %s\n", driver)
	}
	template := fmt.Sprintf(`%s-- +goose Up
-- +goose StatementBegin
-- %s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %s
-- +goose StatementEnd
`, header, safe, safe)

	if err := os.WriteFile(fullpath, []byte(template), 0o644); err != nil {
		return "", fmt.Errorf("write migration %q: %w", fullpath, err)
	}
	return fullpath, nil
}
