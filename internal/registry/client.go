// Package registry implements the paginated HTTP client for the upstream
// clinical-trials catalog API. Fetching is lazy and forward-only: the
// Pager holds one page at a time, so a streaming caller never buffers the
// corpus.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mesh-intelligence/trialmirror/pkg/types"
)

// Client issues paged requests against the catalog API. Construct with
// NewClient; the zero value has no HTTP client.
type Client struct {
	cfg  types.FetchConfig
	http *http.Client

	// sleep is swapped out by tests to observe throttle and backoff
	// waits without real time passing.
	sleep func(time.Duration)
}

// NewClient creates a catalog client from explicit fetch configuration.
func NewClient(cfg types.FetchConfig) *Client {
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: cfg.Timeout},
		sleep: time.Sleep,
	}
}

// Page is one page of raw study records.
type Page struct {
	Studies       []json.RawMessage
	NextPageToken string
	TotalCount    int // as reported by the upstream, 0 when omitted
}

// pageResponse mirrors the upstream response envelope.
type pageResponse struct {
	Studies       []json.RawMessage `json:"studies"`
	NextPageToken string            `json:"nextPageToken"`
	TotalCount    int               `json:"totalCount"`
}

// Fetch returns a pager over all studies, or over studies whose last
// update date is on or after since when since is non-empty (ISO date,
// inclusive). The pager issues one HTTP request per Next call; pages must
// be consumed in order and the sequence is not restartable.
func (c *Client) Fetch(ctx context.Context, since string) *Pager {
	return &Pager{client: c, ctx: ctx, since: since}
}

// Pager iterates page batches in the bufio.Scanner shape:
//
//	p := client.Fetch(ctx, "")
//	for p.Next() {
//	    use(p.Page())
//	}
//	if err := p.Err(); err != nil { ... }
type Pager struct {
	client *Client
	ctx    context.Context
	since  string

	token   string // continuation token for the next request
	started bool
	done    bool
	err     error
	page    Page
}

// Next fetches the next page, blocking through the politeness delay and
// any rate-limit backoff. It returns false when the sequence is exhausted
// or a fatal error occurred; check Err after the loop.
func (p *Pager) Next() bool {
	if p.done || p.err != nil {
		return false
	}
	if p.started {
		if p.token == "" {
			p.done = true
			return false
		}
		// Politeness throttle between successful page requests,
		// independent of the rate-limit backoff.
		p.client.sleep(p.client.cfg.PageDelay)
	}
	p.started = true

	page, err := p.client.getPage(p.ctx, p.since, p.token)
	if err != nil {
		p.err = err
		p.done = true
		return false
	}

	p.page = page
	p.token = page.NextPageToken
	return true
}

// Page returns the page fetched by the last successful Next.
func (p *Pager) Page() Page {
	return p.page
}

// Err returns the fatal error that terminated the sequence, if any.
func (p *Pager) Err() error {
	return p.err
}

// getPage performs one catalog request, retrying the same request
// indefinitely on 429 with a fixed wait. Registry rate limits are assumed
// to eventually clear; any other non-success status is fatal.
func (c *Client) getPage(ctx context.Context, since, token string) (Page, error) {
	reqURL, err := c.pageURL(since, token)
	if err != nil {
		return Page{}, err
	}

	for {
		body, status, err := c.get(ctx, reqURL)
		if err != nil {
			return Page{}, err
		}
		if status == http.StatusTooManyRequests {
			rateLimitWaits.Inc()
			c.sleep(c.cfg.RetryWait)
			continue
		}
		if status < 200 || status >= 300 {
			return Page{}, fmt.Errorf("catalog request failed: %s returned status %d", reqURL, status)
		}

		var resp pageResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return Page{}, fmt.Errorf("decoding catalog response: %w", err)
		}
		pagesFetched.Inc()
		return Page{
			Studies:       resp.Studies,
			NextPageToken: resp.NextPageToken,
			TotalCount:    resp.TotalCount,
		}, nil
	}
}

// pageURL builds a catalog request URL with the fixed page size, the
// optional server-side date filter, and the continuation token.
func (c *Client) pageURL(since, token string) (string, error) {
	u, err := url.Parse(c.cfg.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parsing base URL: %w", err)
	}

	q := u.Query()
	q.Set("pageSize", fmt.Sprint(c.cfg.PageSize))
	q.Set("format", "json")
	if since != "" {
		q.Set("query.term", fmt.Sprintf("AREA[LastUpdatePostDate]RANGE[%s,MAX]", since))
	}
	if token != "" {
		q.Set("pageToken", token)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// get performs one GET and returns the body and status code. Transport
// failures are returned as errors; HTTP status handling is the caller's.
func (c *Client) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("building catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("requesting %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading catalog response: %w", err)
	}
	return body, resp.StatusCode, nil
}
