package db

import (
	"context"
	"darkdungeon/internal/leaderboard"
	"fmt"
	"time"
)

// Snapshot is one fetched leaderboard page queued for archiving.
type Snapshot struct {
	GameID    int
	Page      leaderboard.Page
	FetchedAt time.Time
}

// RecordSnapshot stores a page and its entries in one transaction and returns the
// snapshot id.
func (d *DB) RecordSnapshot(ctx context.Context, s Snapshot) (int64, error) {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	p := s.Page.Pagination
	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO leaderboard_snapshots (game_id, page, page_limit, total, total_pages, source, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, s.GameID, p.Page, p.Limit, int64(p.Total), p.TotalPages, s.Page.Source, s.FetchedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO snapshot_entries (snapshot_id, rank, user_id, username, wallet_address, score)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range s.Page.Entries {
		if _, err := stmt.ExecContext(ctx, id, e.Rank, e.UserID, e.Username, e.WalletAddress, e.Score); err != nil {
			return 0, fmt.Errorf("recording snapshot entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing snapshot: %w", err)
	}
	return id, nil
}

// BatchRecordSnapshots archives snapshots one by one, stopping at the first error.
func (d *DB) BatchRecordSnapshots(ctx context.Context, snaps []Snapshot) error {
	for _, s := range snaps {
		if _, err := d.RecordSnapshot(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
