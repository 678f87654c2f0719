package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	DefaultBaseURL = "https://www.googleapis.com/customsearch/v1"
	DefaultTimeout = 10 * time.Second
	MaxResults     = 10
)

type Config struct {
	APIKey     string
	EngineID   string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Result struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Client issues keyword queries against a Custom Search JSON endpoint.
// An unconfigured client is valid: every search resolves to no results
// so callers degrade to their heuristic paths instead of failing.
type Client struct {
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{cfg: cfg}
}

func (c *Client) Configured() bool {
	return c != nil && strings.TrimSpace(c.cfg.APIKey) != "" && strings.TrimSpace(c.cfg.EngineID) != ""
}

type searchAPIResponse struct {
	Items []Result `json:"items"`
}

// Search returns up to MaxResults results for the query. It never returns
// an error: unconfigured keys, timeouts, and upstream failures all resolve
// to an empty slice.
func (c *Client) Search(ctx context.Context, query string) []Result {
	if !c.Configured() {
		return nil
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s?key=%s&cx=%s&q=%s&num=%d",
		strings.TrimRight(c.cfg.BaseURL, "/"),
		url.QueryEscape(c.cfg.APIKey),
		url.QueryEscape(c.cfg.EngineID),
		url.QueryEscape(query),
		MaxResults,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil
	}

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		log.Printf("websearch query failed q=%q err=%v", query, err)
		return nil
	}
	defer res.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(res.Body, 2<<20))

	if res.StatusCode != http.StatusOK {
		log.Printf("websearch query failed q=%q status=%d", query, res.StatusCode)
		return nil
	}
	var parsed searchAPIResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		log.Printf("websearch bad response q=%q err=%v", query, err)
		return nil
	}
	if len(parsed.Items) > MaxResults {
		parsed.Items = parsed.Items[:MaxResults]
	}
	return parsed.Items
}

// SearchAll fans out one goroutine per query and collects whatever came
// back. Individual query failures never abort the batch.
func (c *Client) SearchAll(ctx context.Context, queries []string) map[string][]Result {
	out := make(map[string][]Result, len(queries))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, q := range queries {
		q := q
		wg.Add(1)
		go func() {
			defer wg.Done()
			results := c.Search(ctx, q)
			mu.Lock()
			out[q] = results
			mu.Unlock()
		}()
	}
	wg.Wait()
	return out
}
