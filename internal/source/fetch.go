package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/law-makers/harvest/internal/identity"
	"github.com/rs/zerolog/log"
)

// Page is a fetched listing page before parsing.
type Page struct {
	Body       string
	StatusCode int
}

// Fetcher retrieves the raw HTML of a listing page through a specific
// egress identity. Implementations must not retry or rotate; that policy
// belongs to the adapter and the orchestrator.
type Fetcher interface {
	Fetch(ctx context.Context, url string, ident identity.Identity, userAgent string) (*Page, error)
	Name() string
}

// DefaultFetchTimeout bounds a single page fetch.
const DefaultFetchTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read. Listing pages
// are far below this; it guards against tarpit responses.
const maxBodyBytes = 8 << 20

// StaticFetcher fetches pages with plain HTTP requests. The per-request
// proxy comes from the identity: the base transport is cloned with the
// proxy applied, so connection pools are not shared across identities.
type StaticFetcher struct {
	client *http.Client
}

// NewStaticFetcher builds a fetcher with the standard keep-alive
// transport and the given timeout.
func NewStaticFetcher(timeout time.Duration) *StaticFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return NewStaticFetcherWithClient(&http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableCompression:  false,
		},
	})
}

// NewStaticFetcherWithClient injects the HTTP client, primarily for
// tests. When the client's transport is not an *http.Transport (a mock),
// it is used as-is and the identity's proxy is not applied.
func NewStaticFetcherWithClient(client *http.Client) *StaticFetcher {
	return &StaticFetcher{client: client}
}

// Name returns the fetcher name.
func (f *StaticFetcher) Name() string {
	return "StaticFetcher"
}

// Fetch issues one GET and returns the body and status. A non-2xx status
// is not an error at this layer; the adapter maps it to the taxonomy.
func (f *StaticFetcher) Fetch(ctx context.Context, url string, ident identity.Identity, userAgent string) (*Page, error) {
	start := time.Now()

	client := f.client
	if ident.HasProxy() {
		if base, ok := f.client.Transport.(*http.Transport); ok {
			transport := base.Clone()
			transport.Proxy = http.ProxyURL(ident.Proxy)
			client = &http.Client{Transport: transport, Timeout: f.client.Timeout}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Connection", "keep-alive")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}

	log.Debug().
		Str("url", url).
		Str("proxy", ident.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Fetch completed")

	return &Page{Body: string(body), StatusCode: resp.StatusCode}, nil
}
