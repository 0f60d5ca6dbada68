package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Nomadcxx/mediamatch/internal/catalog"
)

// ImportRecord describes one catalog import.
type ImportRecord struct {
	SnapshotVersion int
	Movies          int
	Series          int
	Anime           int
	ImportedAt      time.Time
}

// ImportSnapshot replaces the stored catalog with snap in one transaction.
// Tagged files are left alone.
func (d *DB) ImportSnapshot(ctx context.Context, snap *catalog.Snapshot) (*ImportRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_aliases`); err != nil {
		return nil, fmt.Errorf("clear aliases: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM catalog_entries`); err != nil {
		return nil, fmt.Errorf("clear entries: %w", err)
	}

	entryStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO catalog_entries (kind, id, name, year, source) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer entryStmt.Close()
	aliasStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO catalog_aliases (kind, entry_id, position, alias) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer aliasStmt.Close()

	rec := &ImportRecord{SnapshotVersion: snap.Version}
	counts := map[catalog.Kind]*int{
		catalog.KindMovie:  &rec.Movies,
		catalog.KindSeries: &rec.Series,
		catalog.KindAnime:  &rec.Anime,
	}
	for _, kind := range catalog.Kinds {
		for _, e := range snap.Entries(kind) {
			if _, err := entryStmt.ExecContext(ctx, kind.String(), e.ID, e.Name, e.Year, e.Database); err != nil {
				return nil, fmt.Errorf("insert %s %d: %w", kind, e.ID, err)
			}
			for pos, alias := range e.Aliases {
				if _, err := aliasStmt.ExecContext(ctx, kind.String(), e.ID, pos, alias); err != nil {
					return nil, fmt.Errorf("insert alias for %s %d: %w", kind, e.ID, err)
				}
			}
			*counts[kind]++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO catalog_imports (snapshot_version, movies, series, anime) VALUES (?, ?, ?, ?)`,
		rec.SnapshotVersion, rec.Movies, rec.Series, rec.Anime); err != nil {
		return nil, fmt.Errorf("record import: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}
	rec.ImportedAt = time.Now()
	return rec, nil
}

// Load returns the stored entries of one kind ordered by id. It makes DB a
// catalog.Provider.
func (d *DB) Load(ctx context.Context, kind catalog.Kind) ([]catalog.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	rows, err := d.db.QueryContext(ctx,
		`SELECT id, name, year, source FROM catalog_entries WHERE kind = ? ORDER BY id`, kind.String())
	if err != nil {
		return nil, fmt.Errorf("query %s entries: %w", kind, err)
	}
	var entries []catalog.Entry
	index := make(map[int]int)
	for rows.Next() {
		e := catalog.Entry{Kind: kind}
		if err := rows.Scan(&e.ID, &e.Name, &e.Year, &e.Database); err != nil {
			rows.Close()
			return nil, err
		}
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	aliases, err := d.db.QueryContext(ctx,
		`SELECT entry_id, alias FROM catalog_aliases WHERE kind = ? ORDER BY entry_id, position`, kind.String())
	if err != nil {
		return nil, fmt.Errorf("query %s aliases: %w", kind, err)
	}
	defer aliases.Close()
	for aliases.Next() {
		var id int
		var alias string
		if err := aliases.Scan(&id, &alias); err != nil {
			return nil, err
		}
		if i, ok := index[id]; ok {
			entries[i].Aliases = append(entries[i].Aliases, alias)
		}
	}
	return entries, aliases.Err()
}

// LastImport returns the most recent import, or nil when the catalog was
// never imported.
func (d *DB) LastImport(ctx context.Context) (*ImportRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var rec ImportRecord
	err := d.db.QueryRowContext(ctx,
		`SELECT snapshot_version, movies, series, anime, imported_at
		 FROM catalog_imports ORDER BY id DESC LIMIT 1`).Scan(
		&rec.SnapshotVersion, &rec.Movies, &rec.Series, &rec.Anime, &rec.ImportedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
