package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
)

// Tag records entry as the authoritative match for path, replacing any
// previous tag.
func (d *DB) Tag(ctx context.Context, path string, entry catalog.Entry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO tagged_files (path, kind, entry_id, name, year, source)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET
			kind = excluded.kind,
			entry_id = excluded.entry_id,
			name = excluded.name,
			year = excluded.year,
			source = excluded.source,
			tagged_at = CURRENT_TIMESTAMP`,
		filepath.Clean(path), entry.Kind.String(), entry.ID, entry.Name, entry.Year, entry.Database)
	if err != nil {
		return fmt.Errorf("tag %s: %w", path, err)
	}
	return nil
}

// Untag removes the tag for path. Removing a missing tag is not an error.
func (d *DB) Untag(ctx context.Context, path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := d.db.ExecContext(ctx, `DELETE FROM tagged_files WHERE path = ?`, filepath.Clean(path))
	return err
}

// Lookup returns the tagged entry for path, or nil when the file is not
// tagged.
func (d *DB) Lookup(ctx context.Context, path string) (*catalog.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var (
		e    catalog.Entry
		kind string
	)
	err := d.db.QueryRowContext(ctx,
		`SELECT kind, entry_id, name, year, source FROM tagged_files WHERE path = ?`,
		filepath.Clean(path)).Scan(&kind, &e.ID, &e.Name, &e.Year, &e.Database)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup tag for %s: %w", path, err)
	}
	if e.Kind, err = catalog.ParseKind(kind); err != nil {
		return nil, err
	}
	return &e, nil
}
