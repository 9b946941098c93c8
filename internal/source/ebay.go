// internal/source/ebay.go
package source

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/law-makers/harvest/internal/extract"
	"github.com/law-makers/harvest/internal/identity"
	"github.com/law-makers/harvest/internal/metrics"
	"github.com/law-makers/harvest/pkg/models"
	"github.com/rs/zerolog/log"
)

// DefaultEbayBaseURL is the canonical listing host.
const DefaultEbayBaseURL = "https://www.ebay.com"

var (
	itemIDPattern   = regexp.MustCompile(`/itm/(\d+)`)
	nonPricePattern = regexp.MustCompile(`[^\d.]`)
	leadingIntRe    = regexp.MustCompile(`\d+`)
)

// EbayAdapter scrapes eBay listing pages. It holds references to the
// shared identity pools: on a detected block page it force-rotates both,
// then reports BLOCKED and lets the orchestrator decide about retrying.
type EbayAdapter struct {
	baseURL string
	fetcher Fetcher
	proxies *identity.Pool
	agents  *identity.UserAgentPool
	metrics *metrics.Metrics

	brand extract.Chain
	model extract.Chain
}

// NewEbay builds an eBay adapter sharing the given pools and
// cross-reference store.
func NewEbay(baseURL string, fetcher Fetcher, proxies *identity.Pool, agents *identity.UserAgentPool, xref *extract.CrossRef, m *metrics.Metrics) *EbayAdapter {
	if baseURL == "" {
		baseURL = DefaultEbayBaseURL
	}
	a := &EbayAdapter{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		fetcher: fetcher,
		proxies: proxies,
		agents:  agents,
		metrics: m,
	}
	a.brand = extract.NewBrandChain(xref, a.extractUPC)
	a.model = extract.NewModelChain(xref, a.extractUPC, a.extractASIN)
	return a
}

// Name returns the source type key.
func (a *EbayAdapter) Name() string {
	return "ebay"
}

// CanonicalURL maps an item ID to its listing URL.
func (a *EbayAdapter) CanonicalURL(id string) string {
	return fmt.Sprintf("%s/itm/%s", a.baseURL, id)
}

// FetchByID scrapes a listing by item ID.
func (a *EbayAdapter) FetchByID(ctx context.Context, id string) models.Outcome {
	return a.fetch(ctx, models.TargetByID(id), a.CanonicalURL(id))
}

// FetchByURL scrapes a listing by URL.
func (a *EbayAdapter) FetchByURL(ctx context.Context, url string) models.Outcome {
	return a.fetch(ctx, models.TargetByURL(url), url)
}

func (a *EbayAdapter) fetch(ctx context.Context, target models.ScrapeTarget, url string) models.Outcome {
	ident := a.proxies.Current()
	userAgent := a.agents.Current()

	a.metrics.IncFetch(a.Name())
	start := time.Now()
	page, err := a.fetcher.Fetch(ctx, url, ident, userAgent)
	a.metrics.ObserveFetch(time.Since(start))

	if err != nil {
		return models.Failure(target, NewError(KindNetwork, target, "transport failure", err))
	}
	if page.StatusCode < 200 || page.StatusCode > 299 {
		return models.Failure(target,
			NewError(KindNetwork, target, fmt.Sprintf("unexpected status %d", page.StatusCode), nil))
	}

	if isBlockPage(page.Body) {
		log.Warn().
			Str("url", url).
			Str("proxy", ident.String()).
			Msg("Block page detected, rotating identity")
		a.metrics.IncBlocked()
		a.proxies.Rotate()
		a.metrics.IncRotation("proxy", "block")
		a.agents.Rotate()
		a.metrics.IncRotation("user_agent", "block")
		return models.Failure(target, NewError(KindBlocked, target, "anti-bot page detected", nil))
	}

	doc, err := extract.NewDocument(strings.NewReader(page.Body))
	if err != nil {
		return models.Failure(target, NewError(KindValidation, target, "unparseable page", err))
	}

	record := a.extractRecord(doc)
	if missing := record.MissingRequired(); len(missing) > 0 {
		return models.Failure(target,
			NewError(KindValidation, target, "missing required fields: "+strings.Join(missing, ", "), nil))
	}

	record.SourceURL = url
	record.FetchedAt = time.Now().UTC()
	return models.Success(target, record)
}

func (a *EbayAdapter) extractRecord(doc *extract.Document) *models.ScrapedRecord {
	record := &models.ScrapedRecord{
		ExternalID:   a.extractExternalID(doc),
		Title:        a.extractTitle(doc),
		CurrentPrice: a.extractPrice(doc),
		Brand:        a.brand.Extract(doc),
		Model:        a.model.Extract(doc),
		UPC:          a.extractUPC(doc),
		ASIN:         a.extractASIN(doc),
		Condition:    a.extractCondition(doc),
		DamageNotes:  a.extractDamageNotes(doc),
		EndTime:      a.extractEndTime(doc),
		Seller:       a.extractSeller(doc),
		Shipping:     a.extractShipping(doc),
		Returns:      a.extractReturns(doc),
	}
	return record
}

// extractExternalID prefers the og:url meta (stable across page
// variants), falling back to the on-page item number element.
func (a *EbayAdapter) extractExternalID(doc *extract.Document) string {
	if content, ok := doc.Find(`meta[property="og:url"]`).Attr("content"); ok {
		if m := itemIDPattern.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	return strings.TrimSpace(doc.Find(".itm-num").First().Text())
}

func (a *EbayAdapter) extractTitle(doc *extract.Document) string {
	return strings.TrimSpace(doc.Find("h1.it-ttl").First().Text())
}

func (a *EbayAdapter) extractPrice(doc *extract.Document) float64 {
	text := strings.TrimSpace(doc.Find("span.prc").First().Text())
	if text == "" {
		return 0
	}
	value, err := strconv.ParseFloat(nonPricePattern.ReplaceAllString(text, ""), 64)
	if err != nil {
		log.Debug().Str("raw", text).Msg("Unparseable price text")
		return 0
	}
	return value
}

// itemAttr reads a value from the item attribute table.
func (a *EbayAdapter) itemAttr(doc *extract.Document, name string) string {
	sel := fmt.Sprintf(`.it-attr[data-name=%q] .attr-value`, name)
	return strings.TrimSpace(doc.Find(sel).First().Text())
}

func (a *EbayAdapter) extractUPC(doc *extract.Document) string {
	if v := a.itemAttr(doc, "UPC"); v != "" {
		return v
	}
	return extract.DescriptionLabel("UPC").Run(doc)
}

func (a *EbayAdapter) extractASIN(doc *extract.Document) string {
	if v := a.itemAttr(doc, "ASIN"); v != "" {
		return v
	}
	return extract.DescriptionLabel("ASIN").Run(doc)
}

func (a *EbayAdapter) extractCondition(doc *extract.Document) string {
	if v := a.itemAttr(doc, "Condition"); v != "" {
		return v
	}
	return extract.DescriptionLabel("Condition").Run(doc)
}

func (a *EbayAdapter) extractDamageNotes(doc *extract.Document) []string {
	if notes := extract.DescriptionList("Damage Notes")(doc); len(notes) > 0 {
		return notes
	}
	if v := a.itemAttr(doc, "Damage"); v != "" {
		parts := strings.Split(v, ",")
		notes := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				notes = append(notes, p)
			}
		}
		return notes
	}
	return nil
}

func (a *EbayAdapter) extractEndTime(doc *extract.Document) *time.Time {
	sel := doc.Find(".it-tm").First()
	raw, ok := sel.Attr("datetime")
	if !ok {
		raw = sel.Text()
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		log.Debug().Str("raw", raw).Msg("Unparseable end time")
		return nil
	}
	return &t
}

func (a *EbayAdapter) extractSeller(doc *extract.Document) *models.Seller {
	sel := doc.Find(".sllr-info").First()
	if sel.Length() == 0 {
		return nil
	}
	seller := &models.Seller{
		Name: strings.TrimSpace(sel.Find(".sllr-name").First().Text()),
	}
	if raw := leadingIntRe.FindString(sel.Find(".sllr-fdbk").First().Text()); raw != "" {
		seller.FeedbackScore, _ = strconv.Atoi(raw)
	}
	if raw := strings.TrimSuffix(strings.TrimSpace(sel.Find(".sllr-pos").First().Text()), "%"); raw != "" {
		if pct, err := strconv.ParseFloat(raw, 64); err == nil {
			seller.PositiveFeedbackRatio = pct / 100
		}
	}
	if seller.Name == "" {
		return nil
	}
	return seller
}

func (a *EbayAdapter) extractShipping(doc *extract.Document) *models.Shipping {
	sel := doc.Find(".shp-info").First()
	if sel.Length() == 0 {
		return nil
	}
	shipping := &models.Shipping{
		Service:  strings.TrimSpace(sel.Find(".shp-srv").First().Text()),
		Location: strings.TrimSpace(sel.Find(".shp-loc").First().Text()),
	}
	if raw := nonPricePattern.ReplaceAllString(sel.Find(".shp-cost").First().Text(), ""); raw != "" {
		shipping.Cost, _ = strconv.ParseFloat(raw, 64)
	}
	return shipping
}

func (a *EbayAdapter) extractReturns(doc *extract.Document) *models.Returns {
	sel := doc.Find(".rtn-info").First()
	if sel.Length() == 0 {
		return nil
	}
	returns := &models.Returns{
		Accepted:   strings.EqualFold(strings.TrimSpace(sel.Find(".rtn-acc").First().Text()), "yes"),
		CostBearer: strings.TrimSpace(sel.Find(".rtn-cost").First().Text()),
	}
	if raw := leadingIntRe.FindString(sel.Find(".rtn-tm").First().Text()); raw != "" {
		returns.WindowDays, _ = strconv.Atoi(raw)
	}
	return returns
}
