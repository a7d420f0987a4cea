package main

import (
	"context"
	"darkdungeon/internal/config"
	"darkdungeon/internal/format"
	"darkdungeon/internal/leaderboard"
	"darkdungeon/internal/profile"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "dungeonctl",
		Short:        "Inspect the Dark Dungeon leaderboard and player profiles",
		SilenceUsage: true,
	}
	cmd.AddCommand(newLeaderboardCmd())
	cmd.AddCommand(newProfileCmd())
	return cmd
}

func newLeaderboardCmd() *cobra.Command {
	var (
		page     int
		username string
		wallet   string
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print one page of the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			client := leaderboard.NewClient(leaderboard.Options{
				Sources:        cfg.LeaderboardSources(),
				GameID:         cfg.GameID,
				SortBy:         cfg.SortBy,
				Attempts:       cfg.FetchAttempts,
				Backoff:        cfg.Backoff(),
				AttemptTimeout: cfg.AttemptTimeout(),
			})
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.FetchBudget())
			defer cancel()

			var id *leaderboard.Identity
			if username != "" || wallet != "" {
				id = &leaderboard.Identity{Username: username, WalletAddress: wallet}
			}
			return runLeaderboard(ctx, cmd.OutOrStdout(), client, page, id)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	cmd.Flags().StringVar(&username, "username", "", "highlight the row with this username")
	cmd.Flags().StringVar(&wallet, "wallet", "", "highlight the row with this wallet address")
	return cmd
}

func runLeaderboard(ctx context.Context, out io.Writer, f leaderboard.Fetcher, page int, id *leaderboard.Identity) error {
	p, err := f.FetchPage(ctx, page)
	if err != nil {
		return fmt.Errorf("loading leaderboard: %w", err)
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tRANK\tPLAYER\tSCORE\tWALLET")
	for _, e := range p.Entries {
		mark := ""
		if id != nil && id.Matches(e) {
			mark = ">"
		}
		fmt.Fprintf(tw, "%s\t%s#%d\t%s\t%s\t%s\n", mark, leaderboard.Medal(e.Rank), e.Rank, e.Username, format.Number(e.Score), format.ShortWallet(e.WalletAddress))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	pg := p.Pagination
	fmt.Fprintf(out, "\nPage %d of %d (%s players)\n", pg.Page, pg.TotalPages, format.Number(int64(pg.Total)))
	if e, ok := leaderboard.Highlight(p.Entries, id); ok {
		fmt.Fprintf(out, "Your position: #%d with %s\n", e.Rank, format.Number(e.Score))
	}
	return nil
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <address>",
		Short: "Print a player's on-chain stats and recent activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			client := profile.NewClient(profile.Options{
				BaseURL:     cfg.StatsBaseURL,
				EventsLimit: cfg.EventsLimit,
				EventsRange: cfg.EventsRange,
				HTTPClient:  &http.Client{Timeout: time.Duration(cfg.FetchTimeout) * time.Second},
			})
			return runProfile(cmd.Context(), cmd.OutOrStdout(), client, args[0])
		},
	}
}

func runProfile(ctx context.Context, out io.Writer, src profile.Source, address string) error {
	v := profile.Load(ctx, src, address)
	if v.Invalid {
		return profile.ErrInvalidWallet
	}

	fmt.Fprintf(out, "Player %s\n\n", v.Address)
	switch {
	case v.StatsErr != "":
		fmt.Fprintf(out, "Stats: %s\n", v.StatsErr)
	case v.Stats != nil:
		total, game := profile.Counter{Score: "0", Transactions: "0"}, profile.Counter{Score: "0", Transactions: "0"}
		if v.Stats.Total != nil {
			total = *v.Stats.Total
		}
		if v.Stats.Game != nil {
			game = v.Stats.Game.Counter
		}
		fmt.Fprintf(out, "Total gold:   %s\nTotal quests: %s\n", format.AmountString(total.Score), format.AmountString(total.Transactions))
		fmt.Fprintf(out, "Game gold:    %s\nGame quests:  %s\n", format.AmountString(game.Score), format.AmountString(game.Transactions))
	}

	fmt.Fprintln(out)
	if v.EventsErr != "" {
		fmt.Fprintf(out, "Events: %s\n", v.EventsErr)
		return nil
	}
	if len(v.Events) == 0 {
		fmt.Fprintln(out, "No recent activity.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "BLOCK\tTX\tGOLD\tQUESTS")
	for _, ev := range v.Events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ev.BlockNumber, format.ShortHash(ev.TxHash), format.AmountString(ev.ScoreAmount), format.AmountString(ev.TransactionAmount))
	}
	return tw.Flush()
}
