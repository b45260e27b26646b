package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rendis/markview/internal/model"
	"github.com/rendis/markview/internal/pkg/config"
)

const searchPath = "/2.0/catalog/marker/search"

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// StatusError is returned for any non-200 response that is not an empty
// result.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("catalog returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("catalog returned status %d", e.StatusCode)
}

type Client struct {
	http     *http.Client
	baseURL  string
	key      string
	regionID int
	pageSize int
}

func NewClient(cfg config.CatalogConfig) *Client {
	transport := newTransport(cfg.Proxy)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		key:      cfg.Key,
		regionID: cfg.RegionID,
		pageSize: cfg.PageSize,
	}
}

// Search fetches the markers matching query, in API order. A "no results"
// answer yields an empty slice and no error. There is no retry.
func (c *Client) Search(ctx context.Context, query string) ([]model.Marker, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("page_size", strconv.Itoa(c.pageSize))
	params.Set("region_id", strconv.Itoa(c.regionID))
	if c.key != "" {
		params.Set("key", c.key)
	}
	reqURL := c.baseURL + searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return ParseSearchResponse(body, resp.StatusCode)
}
