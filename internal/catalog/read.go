package catalog

import (
	"context"
	"database/sql"
	"fmt"
)

// Stats summarizes the catalog.
type Stats struct {
	Snapshots int   `json:"snapshots"`
	Texts     int   `json:"texts"`
	Bytes     int64 `json:"bytes"`
	Tables    int   `json:"tables"`
}

// Snapshots returns all snapshots ordered by id. Counts of new texts are
// derived from first_snapshot.
//
// Returns an empty slice (not nil) if no snapshot exists.
func (c *Catalog) Snapshots(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT s.id, s.label, s.registry_id, s.text_count,
		       (SELECT COUNT(*) FROM texts t WHERE t.first_snapshot = s.id)
		FROM snapshots s
		ORDER BY s.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	out := []SnapshotInfo{}
	for rows.Next() {
		var s SnapshotInfo
		if err := rows.Scan(&s.ID, &s.Label, &s.RegistryID, &s.Texts, &s.NewTexts); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}

// Texts returns the texts of one snapshot, or of the whole catalog when
// snapshotID is 0, sorted bytewise.
func (c *Catalog) Texts(ctx context.Context, snapshotID int64) ([]string, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if snapshotID == 0 {
		rows, err = c.db.QueryContext(ctx, `
			SELECT text FROM texts ORDER BY text COLLATE BINARY ASC
		`)
	} else {
		rows, err = c.db.QueryContext(ctx, `
			SELECT text FROM snapshot_texts
			WHERE snapshot_id = ?
			ORDER BY text COLLATE BINARY ASC
		`, snapshotID)
	}
	if err != nil {
		return nil, fmt.Errorf("query texts: %w", err)
	}
	return scanStrings(rows, "texts")
}

// TableTexts returns the texts of a table's sites in declaration order.
func (c *Catalog) TableTexts(ctx context.Context, table string) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT text FROM table_sites
		WHERE table_name = ?
		ORDER BY position ASC
	`, table)
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", table, err)
	}
	return scanStrings(rows, "table sites")
}

// Tables returns the names of all recorded tables, sorted.
func (c *Catalog) Tables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT DISTINCT table_name FROM table_sites
		ORDER BY table_name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return scanStrings(rows, "tables")
}

// Stats returns catalog totals.
func (c *Catalog) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := c.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM snapshots),
			(SELECT COUNT(*) FROM texts),
			(SELECT COALESCE(SUM(length), 0) FROM texts),
			(SELECT COUNT(DISTINCT table_name) FROM table_sites)
	`).Scan(&s.Snapshots, &s.Texts, &s.Bytes, &s.Tables)
	if err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return s, nil
}

func scanStrings(rows *sql.Rows, what string) ([]string, error) {
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan %s: %w", what, err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", what, err)
	}
	return out, nil
}
