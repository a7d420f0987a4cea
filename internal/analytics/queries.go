package analytics

import (
	"context"
	"darkdungeon/internal/db"
	"fmt"
	"strings"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

// GetPlayerHistory returns nil without error when the wallet was never archived.
func (q *Queries) GetPlayerHistory(ctx context.Context, wallet string) (*PlayerHistory, error) {
	h := &PlayerHistory{WalletAddress: strings.ToLower(wallet)}

	err := q.DB.QueryRow(ctx, `
		SELECT
			COUNT(*) as appearances,
			COALESCE(MIN(se.rank), 0) as best_rank,
			COALESCE(MAX(se.score), 0) as best_score,
			MIN(ls.fetched_at) as first_seen,
			MAX(ls.fetched_at) as last_seen
		FROM snapshot_entries se
		JOIN leaderboard_snapshots ls ON ls.id = se.snapshot_id
		WHERE lower(se.wallet_address) = $1
	`, h.WalletAddress).Scan(&h.Appearances, &h.BestRank, &h.BestScore, &h.FirstSeen, &h.LastSeen)
	if err != nil {
		return nil, fmt.Errorf("getting player history: %w", err)
	}
	if h.Appearances == 0 {
		return nil, nil
	}

	// Most recent username wins
	err = q.DB.QueryRow(ctx, `
		SELECT se.username
		FROM snapshot_entries se
		JOIN leaderboard_snapshots ls ON ls.id = se.snapshot_id
		WHERE lower(se.wallet_address) = $1
		ORDER BY ls.fetched_at DESC
		LIMIT 1
	`, h.WalletAddress).Scan(&h.Username)
	if err != nil {
		return nil, fmt.Errorf("getting player username: %w", err)
	}

	h.Badges = EvaluateBadges(*h)
	return h, nil
}

func (q *Queries) GetTopPlayers(ctx context.Context, gameID, limit int) ([]TopPlayer, error) {
	rows, err := q.DB.Query(ctx, `
		SELECT lower(se.wallet_address) as wallet,
			(ARRAY_AGG(se.username ORDER BY ls.fetched_at DESC))[1] as username,
			MAX(se.score) as best_score,
			MIN(se.rank) as best_rank
		FROM snapshot_entries se
		JOIN leaderboard_snapshots ls ON ls.id = se.snapshot_id
		WHERE ls.game_id = $1
		GROUP BY lower(se.wallet_address)
		ORDER BY best_score DESC
		LIMIT $2
	`, gameID, limit)
	if err != nil {
		return nil, fmt.Errorf("getting top players: %w", err)
	}
	defer rows.Close()

	var players []TopPlayer
	rank := 1
	for rows.Next() {
		var p TopPlayer
		if err := rows.Scan(&p.WalletAddress, &p.Username, &p.BestScore, &p.BestRank); err != nil {
			return nil, err
		}
		p.Rank = rank
		rank++
		players = append(players, p)
	}
	return players, rows.Err()
}
