package fetch

import (
	"context"
	"io"
	"time"

	"github.com/dgallion1/papertrim/internal/errs"
	"github.com/go-resty/resty/v2"
)

const defaultMaxBytes = 50 << 20

// Client downloads source documents. It does not retry or cache.
type Client struct {
	http     *resty.Client
	timeout  time.Duration
	maxBytes int64
	stats    *Stats
}

func NewClient(timeout time.Duration, maxBytes int64, stats *Stats) *Client {
	if stats == nil {
		stats = NewStats(time.Hour)
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Client{
		http:     resty.New().SetHeader("Accept", "application/pdf, */*"),
		timeout:  timeout,
		maxBytes: maxBytes,
		stats:    stats,
	}
}

// Stats returns the latency window fed by Fetch.
func (c *Client) Stats() *Stats {
	return c.stats
}

// Fetch returns the body of url. Transport failures, non-2xx responses and
// oversized bodies fail with a fetch error; running past the timeout fails
// with a timeout error.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()
	body, err := c.fetch(ctx, url)
	c.stats.Record(time.Since(start), int64(len(body)), err != nil)
	return body, err
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(url)
	if err != nil {
		return nil, errs.Transport(err, "get %s", url)
	}
	raw := resp.RawBody()
	defer raw.Close()

	if !resp.IsSuccess() {
		snippet, _ := io.ReadAll(io.LimitReader(raw, 512))
		return nil, errs.Fetch(nil, "get %s: status %d: %s", url, resp.StatusCode(), string(snippet))
	}

	body, err := io.ReadAll(io.LimitReader(raw, c.maxBytes+1))
	if err != nil {
		return nil, errs.Transport(err, "get %s", url)
	}
	if int64(len(body)) > c.maxBytes {
		return nil, errs.Fetch(nil, "get %s: body exceeds %d bytes", url, c.maxBytes)
	}
	return body, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}
