package profile

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"
)

type Source interface {
	Stats(ctx context.Context, player string) (*Stats, error)
	Events(ctx context.Context, player string) (*EventsPage, error)
}

// View is the profile page of one player. The stats panel and the events panel
// succeed or fail independently of each other.
type View struct {
	Address   string
	Invalid   bool
	Stats     *Stats
	StatsErr  string
	Events    []EventRow
	FromBlock string
	ToBlock   string
	EventsErr string
}

// Load validates rawAddress and, when it is a wallet address, fetches stats and
// events concurrently. An invalid address returns an Invalid view without any
// network call.
func Load(ctx context.Context, src Source, rawAddress string) *View {
	addr, ok := NormalizeWallet(rawAddress)
	v := &View{Address: addr}
	if !ok {
		v.Invalid = true
		return v
	}

	var g errgroup.Group
	g.Go(func() error {
		st, err := src.Stats(ctx, addr)
		if err != nil {
			log.Printf("[Profile] stats for %s: %v\n", addr, err)
			v.StatsErr = err.Error()
			return nil
		}
		v.Stats = st
		return nil
	})
	g.Go(func() error {
		page, err := src.Events(ctx, addr)
		if err != nil {
			log.Printf("[Profile] events for %s: %v\n", addr, err)
			v.EventsErr = err.Error()
			return nil
		}
		v.Events = page.Rows
		v.FromBlock = page.FromBlock
		v.ToBlock = page.ToBlock
		return nil
	})
	g.Wait()
	return v
}
