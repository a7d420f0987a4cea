package leaderboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Entry is one ranked row as returned by the leaderboard host.
type Entry struct {
	UserID        int    `json:"userId"`
	Username      string `json:"username"`
	WalletAddress string `json:"walletAddress"`
	Score         int64  `json:"score"`
	GameID        int    `json:"gameId"`
	GameName      string `json:"gameName"`
	Rank          int    `json:"rank"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      Count `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// Count is an integer the server may encode either as a JSON number or a string.
type Count int64

func (c *Count) UnmarshalJSON(b []byte) error {
	r := gjson.ParseBytes(b)
	switch r.Type {
	case gjson.Null:
		*c = 0
		return nil
	case gjson.Number:
		*c = Count(r.Int())
		return nil
	case gjson.String:
		n, err := strconv.ParseInt(strings.TrimSpace(r.Str), 10, 64)
		if err != nil {
			return fmt.Errorf("parsing count %q: %w", r.Str, err)
		}
		*c = Count(n)
		return nil
	}
	return fmt.Errorf("unexpected count value %s", r.Raw)
}

// Page is one successfully fetched leaderboard page.
type Page struct {
	Entries    []Entry    `json:"data"`
	Pagination Pagination `json:"pagination"`
	SortBy     string     `json:"sortBy"`
	SortOrder  string     `json:"sortOrder"`
	GameID     int        `json:"gameId"`
	Source     string     `json:"-"`
}
