package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/symtab/symbol"
)

// SnapshotInfo describes one recorded snapshot.
type SnapshotInfo struct {
	ID         int64  `json:"id"`
	Label      string `json:"label"`
	RegistryID string `json:"registry_id"`
	Texts      int    `json:"texts"`
	NewTexts   int    `json:"new_texts"`
}

// Snapshot records every text in reg, plus the sites of the given tables, in
// one transaction. Texts already in the catalog keep their first snapshot.
// A table's previous sites are replaced.
//
// Only texts are written; Symbol addresses mean nothing outside the process.
func (c *Catalog) Snapshot(ctx context.Context, reg *symbol.Registry, label string, tables ...*symbol.Table) (SnapshotInfo, error) {
	texts := reg.Texts()
	info := SnapshotInfo{Label: label, RegistryID: reg.ID(), Texts: len(texts)}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (label, registry_id, text_count)
		VALUES (?, ?, ?)
	`, label, info.RegistryID, info.Texts)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("snapshot: insert snapshot: %w", err)
	}
	if info.ID, err = res.LastInsertId(); err != nil {
		return SnapshotInfo{}, fmt.Errorf("snapshot: snapshot id: %w", err)
	}

	for _, text := range texts {
		added, err := insertText(ctx, tx, info.ID, text)
		if err != nil {
			return SnapshotInfo{}, err
		}
		if added {
			info.NewTexts++
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_texts (snapshot_id, text) VALUES (?, ?)
			ON CONFLICT DO NOTHING
		`, info.ID, text); err != nil {
			return SnapshotInfo{}, fmt.Errorf("snapshot: insert membership: %w", err)
		}
	}

	for _, t := range tables {
		added, err := writeTable(ctx, tx, info.ID, t)
		if err != nil {
			return SnapshotInfo{}, err
		}
		info.NewTexts += added
	}

	if err := tx.Commit(); err != nil {
		return SnapshotInfo{}, fmt.Errorf("snapshot: commit: %w", err)
	}
	return info, nil
}

// insertText uses ON CONFLICT DO NOTHING; it reports whether the text was new.
func insertText(ctx context.Context, tx *sql.Tx, snapshotID int64, text string) (bool, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO texts (text, length, first_snapshot) VALUES (?, ?, ?)
		ON CONFLICT(text) DO NOTHING
	`, text, len(text), snapshotID)
	if err != nil {
		return false, fmt.Errorf("snapshot: insert text: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("snapshot: insert text: %w", err)
	}
	return n > 0, nil
}

// writeTable replaces the table's sites and returns how many texts were new.
func writeTable(ctx context.Context, tx *sql.Tx, snapshotID int64, t *symbol.Table) (int, error) {
	if _, err := tx.ExecContext(ctx, `DELETE FROM table_sites WHERE table_name = ?`, t.Name()); err != nil {
		return 0, fmt.Errorf("snapshot: clear table %s: %w", t.Name(), err)
	}
	var added int
	for i, site := range t.Sites() {
		text := site.Text()
		if site.Resolved() {
			text = site.Symbol().String()
		}
		isNew, err := insertText(ctx, tx, snapshotID, text)
		if err != nil {
			return 0, err
		}
		if isNew {
			added++
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO table_sites (table_name, position, text, snapshot_id)
			VALUES (?, ?, ?, ?)
		`, t.Name(), i, text, snapshotID); err != nil {
			return 0, fmt.Errorf("snapshot: insert site %s[%d]: %w", t.Name(), i, err)
		}
	}
	return added, nil
}

// Warm interns every catalog text into reg under a single write lock and
// returns how many were new to reg.
func (c *Catalog) Warm(ctx context.Context, reg *symbol.Registry) (int, error) {
	texts, err := c.Texts(ctx, 0)
	if err != nil {
		return 0, err
	}
	var inserted int
	reg.Update(func(g *symbol.WriteGuard) {
		before := g.Len()
		for _, text := range texts {
			g.Intern(text)
		}
		inserted = g.Len() - before
	})
	return inserted, nil
}
