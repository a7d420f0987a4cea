package analytics

import "time"

// PlayerHistory summarises every archived appearance of one wallet.
type PlayerHistory struct {
	WalletAddress string     `json:"walletAddress"`
	Username      string     `json:"username"`
	Appearances   int        `json:"appearances"`
	BestRank      int        `json:"bestRank"`
	BestScore     int64      `json:"bestScore"`
	FirstSeen     *time.Time `json:"firstSeen,omitempty"`
	LastSeen      *time.Time `json:"lastSeen,omitempty"`
	Badges        []Badge    `json:"badges"`
}

// TopPlayer is one row of the all-time best scores seen in the archive.
type TopPlayer struct {
	WalletAddress string `json:"walletAddress"`
	Username      string `json:"username"`
	BestScore     int64  `json:"bestScore"`
	BestRank      int    `json:"bestRank"`
	Rank          int    `json:"rank"`
}
