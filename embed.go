package stanbot

import "embed"

// MigrationsFS holds the SQL migrations for every supported store driver,
// one subdirectory per driver.
//
//go:embed migrations
var MigrationsFS embed.FS
