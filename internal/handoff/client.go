package handoff

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/dgallion1/papertrim/internal/errs"
	"github.com/go-resty/resty/v2"
)

// Client forwards trimmed PDFs to a document-loading service as a multipart
// upload. What the loader does with the file is its own business.
type Client struct {
	http   *resty.Client
	url    string
	apiKey string
}

func NewClient(url, apiKey string, timeout time.Duration) *Client {
	return &Client{
		http:   resty.New().SetTimeout(timeout),
		url:    url,
		apiKey: apiKey,
	}
}

// Ready reports missing settings without contacting the loader.
func (c *Client) Ready() error {
	if c.apiKey == "" {
		return errs.Configuration("Missing API key")
	}
	if c.url == "" {
		return errs.Configuration("loader url is not set")
	}
	return nil
}

// Submit uploads pdf under name and returns the loader's decoded JSON reply.
func (c *Client) Submit(ctx context.Context, name string, pdf []byte) (map[string]any, error) {
	if err := c.Ready(); err != nil {
		return nil, err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetFormData(map[string]string{"title": name}).
		SetFileReader("file", Filename(name), bytes.NewReader(pdf)).
		Post(c.url)
	if err != nil {
		return nil, errs.Transport(err, "post %s", c.url)
	}
	if !resp.IsSuccess() {
		return nil, errs.Fetch(nil, "post %s: status %d: %s", c.url, resp.StatusCode(), truncate(resp.String(), 512))
	}

	reply := map[string]any{}
	if len(bytes.TrimSpace(resp.Body())) == 0 {
		return reply, nil
	}
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return nil, errs.Fetch(err, "decode loader reply")
	}
	return reply, nil
}

// Filename turns a document name into an upload filename ending in .pdf.
func Filename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	if name == "" {
		name = "document"
	}
	if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name += ".pdf"
	}
	return name
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Close releases idle connections.
func (c *Client) Close() {
	c.http.GetClient().CloseIdleConnections()
}
