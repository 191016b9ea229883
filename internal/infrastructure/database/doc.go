// Package database provides SQLite connectivity and schema migrations.
//
// Migrations are YYYYMMDD_HHMMSS_description.up.sql files, each with an
// optional .down.sql counterpart, read from MigrationsFS. Applied versions
// are tracked in the schema_migrations table.
//
//	db, err := database.OpenAndMigrate(ctx, cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
// All queries use parameterised statements. The database file is created
// with 0600 permissions.
package database
