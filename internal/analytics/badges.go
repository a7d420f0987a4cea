package analytics

type BadgeID string

const (
	BadgeChampion   BadgeID = "champion"
	BadgePodium     BadgeID = "podium"
	BadgeTopTen     BadgeID = "top_ten"
	BadgeRegular    BadgeID = "regular"
	BadgeHighRoller BadgeID = "high_roller"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeChampion:   {ID: BadgeChampion, Name: "Champion", Description: "Held rank 1", Icon: "👑"},
	BadgePodium:     {ID: BadgePodium, Name: "Podium", Description: "Reached the top 3", Icon: "🏆"},
	BadgeTopTen:     {ID: BadgeTopTen, Name: "Top Ten", Description: "Reached the top 10", Icon: "⚔️"},
	BadgeRegular:    {ID: BadgeRegular, Name: "Regular", Description: "Seen in 10+ archived pages", Icon: "🕯️"},
	BadgeHighRoller: {ID: BadgeHighRoller, Name: "High Roller", Description: "Scored 100,000+", Icon: "💰"},
}

// EvaluateBadges checks which badges a player earned across the archive.
// Rank badges are exclusive: only the best one applies.
func EvaluateBadges(h PlayerHistory) []Badge {
	var earned []Badge

	switch {
	case h.BestRank == 1:
		earned = append(earned, AllBadges[BadgeChampion])
	case h.BestRank >= 2 && h.BestRank <= 3:
		earned = append(earned, AllBadges[BadgePodium])
	case h.BestRank >= 4 && h.BestRank <= 10:
		earned = append(earned, AllBadges[BadgeTopTen])
	}

	if h.Appearances >= 10 {
		earned = append(earned, AllBadges[BadgeRegular])
	}

	if h.BestScore >= 100000 {
		earned = append(earned, AllBadges[BadgeHighRoller])
	}

	return earned
}
