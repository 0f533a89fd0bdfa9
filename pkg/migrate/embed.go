package migrate

import "embed"

// Migrations holds the SQL files for every supported dialect, so binaries can
// bring a fresh database up to date without a checkout.
//
//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var Migrations embed.FS
