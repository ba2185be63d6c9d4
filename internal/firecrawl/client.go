package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/crawlzip/internal/model"
	"golang.org/x/net/proxy"
)

// errorBodyLimit caps how much of a failed response is kept for the error message.
const errorBodyLimit = 4 << 10

// Options configures a Client.
type Options struct {
	// APIKey is the crawl service credential. A Client without a key can be
	// built; Crawl then fails with ErrMissingAPIKey.
	APIKey string

	// BaseURL is the service root, e.g. https://api.firecrawl.dev.
	BaseURL string

	// Timeout bounds each HTTP call. It does not bound the crawl.
	Timeout time.Duration

	// PollInterval is the delay between status requests.
	PollInterval time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in host:port form.
	ProxyAddress string

	// Logger receives debug output; slog.Default() when nil.
	Logger *slog.Logger

	// HTTPClient overrides the client built from Timeout and ProxyAddress.
	HTTPClient *http.Client
}

// Client talks to the crawl service.
// A Client is safe for concurrent use; each Crawl call is independent.
type Client struct {
	apiKey       string
	baseURL      string
	pollInterval time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

// NewClient creates a Client. It validates the proxy address but does not
// contact the proxy or the service.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		var err error
		httpClient, err = newHTTPClient(opts.ProxyAddress, opts.Timeout)
		if err != nil {
			return nil, err
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	poll := opts.PollInterval
	if poll <= 0 {
		poll = 2 * time.Second
	}

	return &Client{
		apiKey:       opts.APIKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		pollInterval: poll,
		httpClient:   httpClient,
		logger:       logger,
	}, nil
}

// newHTTPClient builds an HTTP client, dialing through a SOCKS5 proxy when
// proxyAddress is set.
func newHTTPClient(proxyAddress string, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert // DefaultTransport is always *http.Transport

	if proxyAddress != "" {
		if !isValidProxyAddress(proxyAddress) {
			return nil, ErrInvalidProxyAddress
		}
		dialer, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			transport.DialContext = cd.DialContext
		} else {
			transport.DialContext = func(_ context.Context, network, addr string) (net.Conn, error) {
				return dialer.Dial(network, addr)
			}
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

// isValidProxyAddress checks for a non-empty host and a port in 1-65535.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	return err == nil && n >= 1 && n <= 65535
}

// Crawl runs a crawl of req.URL and returns its result once the service
// reports completion. The call blocks for as long as the crawl runs;
// cancel ctx to abandon it. Failures are returned as-is and never retried.
func (c *Client) Crawl(ctx context.Context, req model.CrawlRequest) (*model.CrawlResult, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c.logger.Info("starting crawl",
		"url", req.URL,
		"maxDepth", req.Depth,
		"limit", req.MaxPages,
	)

	id, err := c.startCrawl(ctx, req)
	if err != nil {
		return nil, err
	}

	status, err := c.waitForCompletion(ctx, id)
	if err != nil {
		return nil, err
	}

	docs, err := c.collectPages(ctx, status)
	if err != nil {
		return nil, err
	}

	result := toCrawlResult(status, docs)
	c.logger.Info("crawl completed",
		"id", id,
		"status", result.StatusOrDefault(),
		"total", result.Total,
		"creditsUsed", result.CreditsUsed,
		"pages", len(result.Pages),
	)
	return result, nil
}

// startCrawl submits the crawl job and returns its ID.
func (c *Client) startCrawl(ctx context.Context, req model.CrawlRequest) (string, error) {
	endpoint, err := url.JoinPath(c.baseURL, "v1", "crawl")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCrawlService, err)
	}

	body := crawlRequest{
		URL:      req.URL,
		Limit:    req.MaxPages,
		MaxDepth: req.Depth,
		ScrapeOptions: scrapeOptions{
			Formats:         []string{"markdown"},
			OnlyMainContent: true,
		},
	}

	var resp crawlStartResponse
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.ID == "" {
		msg := resp.Error
		if msg == "" {
			msg = "no crawl id returned"
		}
		return "", fmt.Errorf("%w: %s", ErrCrawlService, msg)
	}

	c.logger.Debug("crawl job accepted", "id", resp.ID)
	return resp.ID, nil
}

// waitForCompletion polls the job until it completes, fails or ctx ends.
func (c *Client) waitForCompletion(ctx context.Context, id string) (*crawlStatusResponse, error) {
	endpoint, err := url.JoinPath(c.baseURL, "v1", "crawl", id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCrawlService, err)
	}

	for {
		var status crawlStatusResponse
		if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &status); err != nil {
			return nil, err
		}

		switch status.Status {
		case statusCompleted:
			return &status, nil
		case statusFailed, statusCancelled:
			msg := status.Error
			if msg == "" {
				msg = "status " + status.Status
			}
			return nil, fmt.Errorf("%w: %s", ErrCrawlFailed, msg)
		}

		c.logger.Debug("crawl in progress",
			"id", id,
			"status", status.Status,
			"completed", status.Completed,
			"total", status.Total,
		)

		timer := time.NewTimer(c.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// collectPages follows the status response's next links and returns all
// documents in service order.
func (c *Client) collectPages(ctx context.Context, first *crawlStatusResponse) ([]document, error) {
	docs := append([]document(nil), first.Data...)
	seen := map[string]bool{}

	next := first.Next
	for next != "" && !seen[next] {
		seen[next] = true

		endpoint, err := c.sameOrigin(next)
		if err != nil {
			return nil, err
		}

		var page crawlStatusResponse
		if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}
		docs = append(docs, page.Data...)
		next = page.Next
	}
	return docs, nil
}

// sameOrigin resolves a next link against the base URL and rejects links
// to another scheme or host, which would receive the API key.
func (c *Client) sameOrigin(next string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCrawlService, err)
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("%w: next link %q: %w", ErrMalformedResponse, next, err)
	}
	u := base.ResolveReference(ref)
	if !strings.EqualFold(u.Scheme, base.Scheme) || !strings.EqualFold(u.Host, base.Host) {
		return "", fmt.Errorf("%w: next link %q leaves %s", ErrMalformedResponse, next, base.Host)
	}
	return u.String(), nil
}

// doJSON sends an authenticated request and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCrawlService, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %w", ErrCrawlService, method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s: %s", ErrCrawlService, method, endpoint, describeFailure(resp))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %w", ErrMalformedResponse, method, endpoint, err)
	}
	return nil
}

// describeFailure renders an error response as "status N: message".
func describeFailure(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit)) //nolint:errcheck // best effort

	var payload struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		msg = payload.Error
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Sprintf("status %d: %s", resp.StatusCode, msg)
}
