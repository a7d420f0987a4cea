package leaderboard

import (
	"context"
	"sync"
)

type Fetcher interface {
	FetchPage(ctx context.Context, page int) (*Page, error)
}

// State is a point-in-time copy of a Board, safe to render.
type State struct {
	Entries     []Entry
	Pagination  Pagination
	CurrentPage int
	TotalPages  int
	Loading     bool
	Loaded      bool
	Err         string
	Identity    *Identity
	Highlight   *Entry
}

func (s State) HasPrevious() bool { return s.CurrentPage > 1 }

func (s State) HasNext() bool { return s.CurrentPage < s.TotalPages }

// IsHighlighted reports whether e is the viewer's row.
func (s State) IsHighlighted(e Entry) bool {
	return s.Identity != nil && s.Identity.Matches(e)
}

// Pages returns at most width page numbers around the current page.
func (s State) Pages(width int) []int {
	if s.TotalPages < 1 || width < 1 {
		return nil
	}
	first := s.CurrentPage - width/2
	if first+width-1 > s.TotalPages {
		first = s.TotalPages - width + 1
	}
	if first < 1 {
		first = 1
	}
	var pages []int
	for p := first; p <= s.TotalPages && len(pages) < width; p++ {
		pages = append(pages, p)
	}
	return pages
}

// Board is the leaderboard view state of one viewer. Entries and pagination are
// replaced as a unit on every successful load; on failure the previous page stays
// in place and the error is recorded next to it.
type Board struct {
	mu          sync.Mutex
	fetcher     Fetcher
	entries     []Entry
	pagination  Pagination
	currentPage int
	totalPages  int
	loading     bool
	loaded      bool
	err         error
	identity    *Identity
	seq         uint64
	onChange    func(State)
	onLoaded    func(*Page)
}

func NewBoard(f Fetcher) *Board {
	return &Board{
		fetcher:     f,
		currentPage: 1,
		totalPages:  1,
	}
}

// OnChange registers fn to receive the state after every transition. fn is called
// without the board lock held.
func (b *Board) OnChange(fn func(State)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onChange = fn
}

// OnLoaded registers fn to receive every page that was applied to the board.
func (b *Board) OnLoaded(fn func(*Page)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onLoaded = fn
}

func (b *Board) SetIdentity(id *Identity) {
	b.mu.Lock()
	if id != nil {
		cp := *id
		id = &cp
	}
	b.identity = id
	st, fn := b.stateLocked(), b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Board) stateLocked() State {
	st := State{
		Entries:     append([]Entry(nil), b.entries...),
		Pagination:  b.pagination,
		CurrentPage: b.currentPage,
		TotalPages:  b.totalPages,
		Loading:     b.loading,
		Loaded:      b.loaded,
	}
	if b.err != nil {
		st.Err = b.err.Error()
	}
	if b.identity != nil {
		id := *b.identity
		st.Identity = &id
		if e, ok := Highlight(b.entries, &id); ok {
			st.Highlight = &e
		}
	}
	return st
}

// Load fetches page and applies it. Only the most recently dispatched load may
// write the board; an older one returns ErrSuperseded without touching state.
func (b *Board) Load(ctx context.Context, page int) error {
	if page < 1 {
		return ErrPageOutOfRange
	}

	b.mu.Lock()
	b.seq++
	seq := b.seq
	b.loading = true
	b.err = nil
	st, fn := b.stateLocked(), b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn(st)
	}

	p, err := b.fetcher.FetchPage(ctx, page)

	b.mu.Lock()
	if seq != b.seq {
		b.mu.Unlock()
		return ErrSuperseded
	}
	b.loading = false
	if err != nil {
		b.err = err
	} else {
		b.entries = p.Entries
		b.pagination = p.Pagination
		b.totalPages = p.Pagination.TotalPages
		if b.totalPages < 1 {
			b.totalPages = 1
		}
		b.currentPage = page
		b.loaded = true
	}
	st, fn, loadedFn := b.stateLocked(), b.onChange, b.onLoaded
	b.mu.Unlock()

	if err == nil && loadedFn != nil {
		loadedFn(p)
	}
	if fn != nil {
		fn(st)
	}
	return err
}

func (b *Board) Previous(ctx context.Context) error {
	b.mu.Lock()
	page := b.currentPage - 1
	b.mu.Unlock()
	if page < 1 {
		return ErrPageOutOfRange
	}
	return b.Load(ctx, page)
}

func (b *Board) Next(ctx context.Context) error {
	b.mu.Lock()
	page, last := b.currentPage+1, b.totalPages
	b.mu.Unlock()
	if page > last {
		return ErrPageOutOfRange
	}
	return b.Load(ctx, page)
}

// Jump loads an arbitrary page within [1, TotalPages].
func (b *Board) Jump(ctx context.Context, page int) error {
	b.mu.Lock()
	last := b.totalPages
	b.mu.Unlock()
	if page < 1 || page > last {
		return ErrPageOutOfRange
	}
	return b.Load(ctx, page)
}

// Retry reloads the first page through the full source sequence.
func (b *Board) Retry(ctx context.Context) error {
	return b.Load(ctx, 1)
}

// DismissError clears the error panel without refetching.
func (b *Board) DismissError() {
	b.mu.Lock()
	b.err = nil
	st, fn := b.stateLocked(), b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}
