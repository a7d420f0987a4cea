package leaderboard

// Identity is the viewer's own player record, supplied by the caller.
type Identity struct {
	Score         int64  `json:"score"`
	Username      string `json:"username"`
	WalletAddress string `json:"walletAddress"`
}

// Matches reports whether e is the identity's row. Username comparison is exact
// and case-sensitive; the wallet is only compared when the identity has one.
func (id Identity) Matches(e Entry) bool {
	if id.Username != "" && e.Username == id.Username {
		return true
	}
	return id.WalletAddress != "" && e.WalletAddress == id.WalletAddress
}

// Highlight returns the first entry matching id, in received order.
func Highlight(entries []Entry, id *Identity) (Entry, bool) {
	if id == nil {
		return Entry{}, false
	}
	for _, e := range entries {
		if id.Matches(e) {
			return e, true
		}
	}
	return Entry{}, false
}

// Medal returns the podium marker for ranks 1 to 3.
func Medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	}
	return ""
}
