package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mesh-intelligence/trialmirror/pkg/types"
)

// newTestClient wires a client to a test server with instant, recorded
// sleeps. Returns the client and a pointer to the recorded waits.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := types.FetchConfig{
		BaseURL:   srv.URL,
		PageSize:  100,
		PageDelay: 250 * time.Millisecond,
		RetryWait: 60 * time.Second,
		Timeout:   5 * time.Second,
	}
	c := NewClient(cfg)
	sleeps := &[]time.Duration{}
	c.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return c, sleeps
}

// collect drains a pager into its pages.
func collect(t *testing.T, p *Pager) []Page {
	t.Helper()
	var pages []Page
	for p.Next() {
		pages = append(pages, p.Page())
	}
	return pages
}

func studyJSON(id string) json.RawMessage {
	return json.RawMessage(`{"protocolSection": {"identificationModule": {"nctId": "` + id + `"}}}`)
}

func writePage(w http.ResponseWriter, token string, total int, ids ...string) {
	studies := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		studies = append(studies, studyJSON(id))
	}
	resp := map[string]any{"studies": studies, "totalCount": total}
	if token != "" {
		resp["nextPageToken"] = token
	}
	json.NewEncoder(w).Encode(resp)
}

func TestFetchSinglePage(t *testing.T) {
	var requests int
	c, sleeps := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		writePage(w, "", 2, "NCT1", "NCT2")
	}))

	p := c.Fetch(context.Background(), "")
	pages := collect(t, p)
	if err := p.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	// Absent nextPageToken terminates after one page.
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if requests != 1 {
		t.Errorf("got %d requests, want 1", requests)
	}
	if len(pages[0].Studies) != 2 {
		t.Errorf("got %d studies, want 2", len(pages[0].Studies))
	}
	if pages[0].TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", pages[0].TotalCount)
	}
	if len(*sleeps) != 0 {
		t.Errorf("single page should not sleep, got %v", *sleeps)
	}
}

func TestFetchFollowsContinuationCursor(t *testing.T) {
	var tokens []string
	c, sleeps := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("pageToken")
		tokens = append(tokens, token)
		switch token {
		case "":
			writePage(w, "tok-2", 3, "NCT1", "NCT2")
		case "tok-2":
			writePage(w, "", 3, "NCT3")
		default:
			t.Errorf("unexpected pageToken %q", token)
			http.Error(w, "bad token", http.StatusBadRequest)
		}
	}))

	p := c.Fetch(context.Background(), "")
	pages := collect(t, p)
	if err := p.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	if len(pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(pages))
	}
	if want := []string{"", "tok-2"}; len(tokens) != 2 || tokens[0] != want[0] || tokens[1] != want[1] {
		t.Errorf("tokens = %v, want %v", tokens, want)
	}

	// One politeness delay between the two successful requests.
	if len(*sleeps) != 1 || (*sleeps)[0] != 250*time.Millisecond {
		t.Errorf("sleeps = %v, want one 250ms delay", *sleeps)
	}
}

func TestFetchRetriesOnRateLimit(t *testing.T) {
	var requests int
	c, sleeps := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writePage(w, "", 1, "NCT1")
	}))

	p := c.Fetch(context.Background(), "")
	pages := collect(t, p)
	if err := p.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	// Same records as a direct 200, with one backoff wait observed.
	if len(pages) != 1 || len(pages[0].Studies) != 1 {
		t.Fatalf("pages = %+v, want one page with one study", pages)
	}
	if requests != 2 {
		t.Errorf("got %d requests, want 2", requests)
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != 60*time.Second {
		t.Errorf("sleeps = %v, want one 60s backoff", *sleeps)
	}
}

func TestFetchFatalOnServerError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	p := c.Fetch(context.Background(), "")
	if p.Next() {
		t.Fatal("Next should fail on a 500")
	}
	if p.Err() == nil {
		t.Fatal("Err should report the fatal status")
	}
	// A failed pager stays failed.
	if p.Next() {
		t.Fatal("Next after a fatal error should keep returning false")
	}
}

func TestFetchQueryParameters(t *testing.T) {
	t.Run("since adds the date range filter", func(t *testing.T) {
		var query string
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			query = r.URL.Query().Get("query.term")
			writePage(w, "", 0)
		}))

		p := c.Fetch(context.Background(), "2026-02-19")
		collect(t, p)
		if err := p.Err(); err != nil {
			t.Fatalf("Err: %v", err)
		}

		want := "AREA[LastUpdatePostDate]RANGE[2026-02-19,MAX]"
		if query != want {
			t.Errorf("query.term = %q, want %q", query, want)
		}
	})

	t.Run("full fetch omits the filter", func(t *testing.T) {
		var r2 *http.Request
		c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r2 = r.Clone(context.Background())
			writePage(w, "", 0)
		}))

		p := c.Fetch(context.Background(), "")
		collect(t, p)
		if err := p.Err(); err != nil {
			t.Fatalf("Err: %v", err)
		}

		q := r2.URL.Query()
		if q.Has("query.term") {
			t.Errorf("query.term should be absent, got %q", q.Get("query.term"))
		}
		if q.Get("pageSize") != "100" {
			t.Errorf("pageSize = %q, want 100", q.Get("pageSize"))
		}
		if q.Get("format") != "json" {
			t.Errorf("format = %q, want json", q.Get("format"))
		}
	})
}

func TestFetchEmptyCorpus(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writePage(w, "", 0)
	}))

	p := c.Fetch(context.Background(), "")
	pages := collect(t, p)
	if err := p.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
	if len(pages) != 1 || len(pages[0].Studies) != 0 {
		t.Errorf("pages = %+v, want one empty page", pages)
	}
}
