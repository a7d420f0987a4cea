package profile

import (
	"context"
	"darkdungeon/internal/metrics"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

type Counter struct {
	Score        string `json:"score"`
	Transactions string `json:"transactions"`
}

type GameCounter struct {
	Counter
	GameAddress string `json:"gameAddress"`
}

// Stats are the lifetime and per-game counters of a player. Either part may be
// absent when the indexer has no data for it.
type Stats struct {
	Total *Counter     `json:"total,omitempty"`
	Game  *GameCounter `json:"game,omitempty"`
}

type EventRow struct {
	BlockNumber       string `json:"blockNumber"`
	TxHash            string `json:"txHash"`
	Game              string `json:"game"`
	Player            string `json:"player"`
	ScoreAmount       string `json:"scoreAmount"`
	TransactionAmount string `json:"transactionAmount"`
}

type EventsPage struct {
	Rows      []EventRow `json:"rows"`
	FromBlock string     `json:"fromBlock,omitempty"`
	ToBlock   string     `json:"toBlock,omitempty"`
}

// StatusError is a non-2xx answer from the stats proxy.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// APIError is an {"ok": false} answer.
type APIError struct {
	Message string
}

func (e *APIError) Error() string { return e.Message }

type Options struct {
	BaseURL     string
	EventsLimit int
	EventsRange int
	HTTPClient  *http.Client
	Metrics     *metrics.Metrics
}

// Client reads player stats and events from the game's internal API.
type Client struct {
	baseURL     string
	eventsLimit int
	eventsRange int
	http        *http.Client
	metrics     *metrics.Metrics
}

func NewClient(opts Options) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		eventsLimit: opts.EventsLimit,
		eventsRange: opts.EventsRange,
		http:        opts.HTTPClient,
		metrics:     opts.Metrics,
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	return c
}

func (c *Client) Stats(ctx context.Context, player string) (*Stats, error) {
	body, err := c.get(ctx, "stats", "/api/get-stats", url.Values{"player": {player}}, "Failed to load stats")
	if err != nil {
		return nil, err
	}
	st := &Stats{}
	if t := gjson.GetBytes(body, "total"); t.IsObject() {
		st.Total = &Counter{
			Score:        t.Get("score").String(),
			Transactions: t.Get("transactions").String(),
		}
	}
	if g := gjson.GetBytes(body, "game"); g.IsObject() {
		st.Game = &GameCounter{
			Counter: Counter{
				Score:        g.Get("score").String(),
				Transactions: g.Get("transactions").String(),
			},
			GameAddress: g.Get("gameAddress").String(),
		}
	}
	return st, nil
}

func (c *Client) Events(ctx context.Context, player string) (*EventsPage, error) {
	q := url.Values{
		"player": {player},
		"limit":  {strconv.Itoa(c.eventsLimit)},
		"range":  {strconv.Itoa(c.eventsRange)},
	}
	body, err := c.get(ctx, "events", "/api/player/events", q, "Failed to load events")
	if err != nil {
		return nil, err
	}
	page := &EventsPage{
		FromBlock: gjson.GetBytes(body, "fromBlock").String(),
		ToBlock:   gjson.GetBytes(body, "toBlock").String(),
	}
	for _, r := range gjson.GetBytes(body, "rows").Array() {
		page.Rows = append(page.Rows, EventRow{
			BlockNumber:       r.Get("blockNumber").String(),
			TxHash:            r.Get("txHash").String(),
			Game:              r.Get("game").String(),
			Player:            r.Get("player").String(),
			ScoreAmount:       r.Get("scoreAmount").String(),
			TransactionAmount: r.Get("transactionAmount").String(),
		})
	}
	return page, nil
}

// get performs the request and returns the body of an {"ok": true} answer.
func (c *Client) get(ctx context.Context, endpoint, path string, q url.Values, fallbackMsg string) ([]byte, error) {
	body, err := c.fetch(ctx, path, q)
	if err == nil && !gjson.GetBytes(body, "ok").Bool() {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = fallbackMsg
		}
		err = &APIError{Message: msg}
	}

	outcome := "ok"
	var se *StatusError
	var ae *APIError
	switch {
	case errors.As(err, &se):
		outcome = "status"
	case errors.As(err, &ae):
		outcome = "not_ok"
	case err != nil:
		outcome = "transport"
	}
	c.metrics.ObserveProfile(endpoint, outcome)
	return body, err
}

func (c *Client) fetch(ctx context.Context, path string, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return body, nil
}
