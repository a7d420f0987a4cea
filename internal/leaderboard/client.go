package leaderboard

import (
	"context"
	"darkdungeon/internal/metrics"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const maxBodyBytes = 4 << 20

type Options struct {
	Sources        []string // tried in order, first success wins
	GameID         int
	SortBy         string
	Attempts       int           // per source, only retryable failures are repeated
	Backoff        time.Duration // multiplied by the attempt number
	AttemptTimeout time.Duration // bounds one request; zero leaves only the caller's deadline
	HTTPClient     *http.Client
	Limiter        *rate.Limiter // nil means unlimited
	Metrics        *metrics.Metrics
}

// Client fetches leaderboard pages from an ordered list of sources.
type Client struct {
	sources  []string
	gameID   int
	sortBy   string
	attempts int
	backoff  time.Duration
	timeout  time.Duration
	http     *http.Client
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewClient(opts Options) *Client {
	c := &Client{
		sources:  append([]string(nil), opts.Sources...),
		gameID:   opts.GameID,
		sortBy:   opts.SortBy,
		attempts: opts.Attempts,
		backoff:  opts.Backoff,
		timeout:  opts.AttemptTimeout,
		http:     opts.HTTPClient,
		limiter:  opts.Limiter,
		metrics:  opts.Metrics,
		now:      time.Now,
	}
	if c.attempts < 1 {
		c.attempts = 1
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	return c
}

// FetchPage tries each source in turn and returns the first page that decodes.
// When all sources fail the result is an *ExhaustedError wrapping the last failure.
func (c *Client) FetchPage(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		return nil, ErrPageOutOfRange
	}
	if len(c.sources) == 0 {
		return nil, ErrNoSources
	}

	var lastErr error
	attempts := 0
	for _, source := range c.sources {
		for try := 1; try <= c.attempts; try++ {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("fetching leaderboard page %d: %w", page, err)
			}
			attempts++
			p, err := c.attempt(ctx, source, page)
			if err == nil {
				return p, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("fetching leaderboard page %d: %w", page, ctxErr)
			}
			lastErr = err
			log.Printf("[Leaderboard] source %s attempt %d: %v\n", source, try, err)
			if try == c.attempts || !retryable(err) {
				break
			}
			if err := c.wait(ctx, time.Duration(try)*c.backoff); err != nil {
				return nil, fmt.Errorf("fetching leaderboard page %d: %w", page, err)
			}
		}
	}
	return nil, &ExhaustedError{Attempts: attempts, Last: lastErr}
}

// attempt runs one request under the per-attempt timeout. A timed out attempt
// fails like any transport error and is not retried against the same source.
func (c *Client) attempt(ctx context.Context, source string, page int) (*Page, error) {
	if c.timeout <= 0 {
		return c.fetchFrom(ctx, source, page)
	}
	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.fetchFrom(actx, source, page)
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) pageURL(source string, page int) (*url.URL, error) {
	u, err := url.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parsing source %q: %w", source, err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("gameId", strconv.Itoa(c.gameID))
	q.Set("sortBy", c.sortBy)
	q.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u, nil
}

func (c *Client) fetchFrom(ctx context.Context, source string, page int) (*Page, error) {
	u, err := c.pageURL(source, page)
	if err != nil {
		return nil, err
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	start := time.Now()
	p, outcome, err := c.do(ctx, u)
	c.metrics.ObserveFetch(u.Host, outcome, time.Since(start))
	if err != nil {
		return nil, err
	}
	p.Source = source
	return p, nil
}

func (c *Client) do(ctx context.Context, u *url.URL) (*Page, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "request", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "transport", fmt.Errorf("requesting %s: %w", u.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, "status", &StatusError{URL: u.String(), Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "transport", fmt.Errorf("reading response from %s: %w", u.Host, err)
	}
	p, err := decodePage(body)
	if err != nil {
		return nil, "decode", &DecodeError{URL: u.String(), Err: err}
	}
	return p, "ok", nil
}

func decodePage(body []byte) (*Page, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("body is not valid JSON")
	}
	if !gjson.GetBytes(body, "data").IsArray() {
		return nil, errors.New("missing data array")
	}
	if !gjson.GetBytes(body, "pagination").IsObject() {
		return nil, errors.New("missing pagination object")
	}
	var p Page
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
