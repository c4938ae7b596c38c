package postgres

import "embed"

// Migrations holds the schema migrations applied by RunMigrations.
//
//go:embed migrations/*.sql
var Migrations embed.FS
