package db

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type ProfileViewRecord struct {
	WalletAddress string
	Views         int
	FirstSeenAt   time.Time
	LastSeenAt    time.Time
}

func (d *DB) RecordProfileView(ctx context.Context, wallet string) error {
	_, err := d.conn.ExecContext(ctx, `
		INSERT INTO profile_views (wallet_address)
		VALUES ($1)
		ON CONFLICT (wallet_address) DO UPDATE SET views = profile_views.views + 1, last_seen_at = now()
	`, strings.ToLower(wallet))
	if err != nil {
		return fmt.Errorf("recording profile view: %w", err)
	}
	return nil
}

func (d *DB) GetProfileView(ctx context.Context, wallet string) (*ProfileViewRecord, error) {
	var p ProfileViewRecord
	err := d.conn.QueryRowContext(ctx, `
		SELECT wallet_address, views, first_seen_at, last_seen_at FROM profile_views WHERE wallet_address = $1
	`, strings.ToLower(wallet)).Scan(&p.WalletAddress, &p.Views, &p.FirstSeenAt, &p.LastSeenAt)
	if err != nil {
		return nil, fmt.Errorf("getting profile view: %w", err)
	}
	return &p, nil
}
