// Package database provides SQLite connectivity for Switchboard.
//
// This package manages:
//   - Database connection with WAL mode and enforced foreign keys
//   - Schema migrations loaded from any fs.FS (normally the embedded
//     migrations package)
//   - Transaction scoping via WithTx
//
// Usage:
//
//	db, err := database.Open(ctx, database.Config{Path: cfg.Database.Path, WALMode: true})
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx, migrations.FS); err != nil {
//	    return err
//	}
//
// Migrations are additive: each version ships an .up.sql and a .down.sql,
// and new columns must be NULLABLE or carry a DEFAULT.
package database
