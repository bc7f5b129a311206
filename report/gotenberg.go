// Package report talks to a Gotenberg instance to turn HTML into PDF.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// ErrEndpointRequired is returned when the client has no Gotenberg URL.
var ErrEndpointRequired = errors.New("gotenberg endpoint required")

// UpstreamError carries a non-2xx Gotenberg response.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("gotenberg response %d: %s", e.Status, e.Body)
}

// PageOptions are the Chromium page settings sent with each conversion.
// Sizes are in inches.
type PageOptions struct {
	PaperWidth      string
	PaperHeight     string
	Margin          string
	WaitDelay       string
	PrintBackground bool
}

// A4 is the page layout used for representative reports.
var A4 = PageOptions{
	PaperWidth:      "8.27",
	PaperHeight:     "11.7",
	Margin:          "0.4",
	WaitDelay:       "500ms",
	PrintBackground: true,
}

func (o PageOptions) fields() [][2]string {
	out := make([][2]string, 0, 8)
	add := func(k, v string) {
		if v != "" {
			out = append(out, [2]string{k, v})
		}
	}
	add("paperWidth", o.PaperWidth)
	add("paperHeight", o.PaperHeight)
	for _, side := range []string{"marginTop", "marginBottom", "marginLeft", "marginRight"} {
		add(side, o.Margin)
	}
	add("waitDelay", o.WaitDelay)
	if o.PrintBackground {
		add("printBackground", "true")
	}
	return out
}

// Client wraps interactions with the Gotenberg API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	page       PageOptions
}

// NewClient constructs a client rendering A4 pages.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		page:       A4,
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	if client != nil {
		c.httpClient = client
	}
	return c
}

// WithPage replaces the page layout.
func (c *Client) WithPage(page PageOptions) *Client {
	c.page = page
	return c
}

// Ping checks if the remote Gotenberg service is available.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", "", nil)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

// RenderHTML converts a complete HTML document into a PDF.
func (c *Client) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("files", "index.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	for _, kv := range c.page.fields() {
		if err := form.WriteField(kv[0], kv[1]); err != nil {
			return nil, err
		}
	}
	if err := form.Close(); err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/forms/chromium/convert/html", form.FormDataContentType(), body)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Response, error) {
	if c.baseURL == "" {
		return nil, ErrEndpointRequired
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
		return nil, &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return resp, nil
}
