package database

import "database/sql"

// Schema version for migrations
const currentSchemaVersion = 2

var migrations = []migration{
	{
		version: 1,
		up: []string{
			`CREATE TABLE catalog_entries (
				kind TEXT NOT NULL,
				id INTEGER NOT NULL,
				name TEXT NOT NULL,
				year INTEGER NOT NULL DEFAULT 0,
				source TEXT NOT NULL DEFAULT '',
				PRIMARY KEY (kind, id)
			)`,
			`CREATE TABLE catalog_aliases (
				kind TEXT NOT NULL,
				entry_id INTEGER NOT NULL,
				position INTEGER NOT NULL,
				alias TEXT NOT NULL,
				PRIMARY KEY (kind, entry_id, position),
				FOREIGN KEY (kind, entry_id) REFERENCES catalog_entries(kind, id) ON DELETE CASCADE
			)`,

			// Files resolved by hand or by an earlier run. The entry is
			// copied so a tag survives catalog re-imports.
			`CREATE TABLE tagged_files (
				path TEXT PRIMARY KEY,
				kind TEXT NOT NULL,
				entry_id INTEGER NOT NULL,
				name TEXT NOT NULL,
				year INTEGER NOT NULL DEFAULT 0,
				source TEXT NOT NULL DEFAULT '',
				tagged_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`CREATE INDEX idx_tagged_files_entry ON tagged_files(kind, entry_id)`,

			`CREATE TABLE schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`INSERT INTO schema_version (version) VALUES (1)`,
		},
	},
	{
		version: 2,
		up: []string{
			`CREATE TABLE catalog_imports (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				snapshot_version INTEGER NOT NULL,
				movies INTEGER NOT NULL,
				series INTEGER NOT NULL,
				anime INTEGER NOT NULL,
				imported_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)`,
			`INSERT INTO schema_version (version) VALUES (2)`,
		},
	},
}

type migration struct {
	version int
	up      []string
}

// applyMigrations applies any pending schema migrations
func applyMigrations(db *sql.DB) error {
	var currentVersion int
	err := db.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&currentVersion)
	if err != nil {
		// schema_version doesn't exist yet - this is a fresh database
		currentVersion = 0
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range m.up {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return err
			}
		}
		// Each migration inserts its own schema_version row.
		if err := tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}
