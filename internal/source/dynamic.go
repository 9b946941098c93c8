package source

import (
	"context"
	"net/http"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/harvest/internal/identity"
	"github.com/rs/zerolog/log"
)

// DynamicFetcher renders pages in headless Chrome for marketplaces that
// only populate listing data client-side. Selected per source via config;
// the eBay source uses the static fetcher.
type DynamicFetcher struct {
	timeout  time.Duration
	headless bool
}

// NewDynamicFetcher builds a headless-Chrome fetcher.
func NewDynamicFetcher(timeout time.Duration, headless bool) *DynamicFetcher {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &DynamicFetcher{timeout: timeout, headless: headless}
}

// Name returns the fetcher name.
func (f *DynamicFetcher) Name() string {
	return "DynamicFetcher"
}

// Fetch navigates to the URL and returns the rendered outer HTML. The
// proxy and user agent are applied at the browser level, so the rendered
// page carries the same egress identity as a static fetch would.
func (f *DynamicFetcher) Fetch(ctx context.Context, url string, ident identity.Identity, userAgent string) (*Page, error) {
	start := time.Now()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", f.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("window-size", "1920,1080"),
	}
	if userAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(userAgent))
	}
	if ident.HasProxy() {
		allocOpts = append(allocOpts, chromedp.ProxyServer(ident.Proxy.String()))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	runCtx, runCancel := context.WithTimeout(browserCtx, f.timeout)
	defer runCancel()

	var html string
	err := chromedp.Run(runCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": "en-US,en;q=0.9",
		}),
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("url", url).
		Str("proxy", ident.String()).
		Dur("elapsed", time.Since(start)).
		Msg("Dynamic fetch completed")

	// chromedp only surfaces navigation failures as errors, so a page
	// that rendered is treated as a 200.
	return &Page{Body: html, StatusCode: http.StatusOK}, nil
}
