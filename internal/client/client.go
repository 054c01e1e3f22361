package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/gardonyia/basket/internal/metrics"
)

// DefaultUserAgent identifies this tool to every upstream source
const DefaultUserAgent = "basket-matchfinder/1.0 (+https://github.com/gardonyia/basket)"

// maxBodySize caps how much of an upstream response is read
const maxBodySize = 8 << 20

// Client performs single-shot GET requests against one upstream source.
// There are no retries: a failed call is final for that call.
type Client struct {
	source     string
	userAgent  string
	httpClient *http.Client
}

// Options configures a Client
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// HTTPClient overrides the underlying client (tests)
	HTTPClient *http.Client
}

// New creates a client for one source
func New(source string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &Client{
		source:     source,
		userAgent:  opts.UserAgent,
		httpClient: httpClient,
	}
}

// Source returns the name used in logs and metrics
func (c *Client) Source() string {
	return c.source
}

// Get fetches rawURL and returns the body of a 2xx response.
// endpoint is a short label for metrics ("team_search", "events", ...).
func (c *Client) Get(ctx context.Context, endpoint, rawURL, accept string) ([]byte, error) {
	start := time.Now()

	body, err := c.fetch(ctx, endpoint, rawURL, accept, start)
	if err != nil {
		return nil, err
	}

	c.succeed(endpoint, start, len(body))
	return body, nil
}

// fetch performs the request and records failures. Callers record success
// once the body is decoded.
func (c *Client) fetch(ctx context.Context, endpoint, rawURL, accept string, start time.Time) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, c.fail(endpoint, start, &FetchError{Kind: KindTransport, Source: c.source, URL: rawURL, Err: err})
	}

	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	log.Debug().
		Str("source", c.source).
		Str("endpoint", endpoint).
		Str("url", rawURL).
		Msg("Making source request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.fail(endpoint, start, &FetchError{Kind: classifyTransport(err), Source: c.source, URL: rawURL, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.fail(endpoint, start, &FetchError{Kind: classifyTransport(err), Source: c.source, URL: rawURL, Err: err})
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.fail(endpoint, start, &FetchError{Kind: KindStatus, Source: c.source, URL: rawURL, StatusCode: resp.StatusCode})
	}

	return body, nil
}

func (c *Client) succeed(endpoint string, start time.Time, size int) {
	metrics.RecordSourceCall(c.source, endpoint, "success", time.Since(start).Seconds())
	log.Debug().
		Str("source", c.source).
		Str("endpoint", endpoint).
		Int("size", size).
		Msg("Source request successful")
}

// GetJSON fetches rawURL and decodes the body into an untyped value
func (c *Client) GetJSON(ctx context.Context, endpoint, rawURL string) (interface{}, error) {
	start := time.Now()

	body, err := c.fetch(ctx, endpoint, rawURL, "application/json", start)
	if err != nil {
		return nil, err
	}

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, c.fail(endpoint, start, ParseError(c.source, rawURL, fmt.Errorf("failed to unmarshal response: %w", err)))
	}

	c.succeed(endpoint, start, len(body))
	return data, nil
}

// GetDocument fetches rawURL and parses it as HTML
func (c *Client) GetDocument(ctx context.Context, endpoint, rawURL string) (*goquery.Document, error) {
	start := time.Now()

	body, err := c.fetch(ctx, endpoint, rawURL, "text/html,application/xhtml+xml", start)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, c.fail(endpoint, start, ParseError(c.source, rawURL, fmt.Errorf("failed to parse html: %w", err)))
	}
	c.succeed(endpoint, start, len(body))

	if base, err := url.Parse(rawURL); err == nil {
		doc.Url = base
	}

	return doc, nil
}

func (c *Client) fail(endpoint string, start time.Time, fe *FetchError) error {
	status := string(fe.Kind)
	if fe.Kind == KindStatus {
		status = fmt.Sprintf("status_%d", fe.StatusCode)
	}

	metrics.RecordSourceCall(c.source, endpoint, status, time.Since(start).Seconds())
	metrics.RecordError("client", string(fe.Kind))

	log.Debug().
		Err(fe).
		Str("source", c.source).
		Str("endpoint", endpoint).
		Str("kind", string(fe.Kind)).
		Msg("Source request failed")

	return fe
}

// Resolve turns href into an absolute URL against base.
// Unparseable input is returned unchanged.
func Resolve(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	h, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(h).String()
}
