// Package models defines the data structures exchanged between the
// orchestrator, the source adapters and external callers.
package models

import "time"

// TargetKind distinguishes how a scrape target is addressed.
type TargetKind string

const (
	TargetID  TargetKind = "id"
	TargetURL TargetKind = "url"
)

// ScrapeTarget is the input to one scrape attempt: either a marketplace
// item ID or a full listing URL.
type ScrapeTarget struct {
	Kind  TargetKind `json:"kind"`
	Value string     `json:"value"`
}

// TargetByID builds a target addressed by marketplace item ID.
func TargetByID(id string) ScrapeTarget {
	return ScrapeTarget{Kind: TargetID, Value: id}
}

// TargetByURL builds a target addressed by listing URL.
func TargetByURL(url string) ScrapeTarget {
	return ScrapeTarget{Kind: TargetURL, Value: url}
}

func (t ScrapeTarget) String() string {
	return string(t.Kind) + ":" + t.Value
}

// Seller describes the listing's seller.
type Seller struct {
	Name                  string  `json:"name"`
	FeedbackScore         int     `json:"feedback_score"`
	PositiveFeedbackRatio float64 `json:"positive_feedback_ratio"`
}

// Shipping describes the listing's shipping terms.
type Shipping struct {
	Cost     float64 `json:"cost"`
	Service  string  `json:"service"`
	Location string  `json:"location"`
}

// Returns describes the listing's return policy.
type Returns struct {
	Accepted   bool   `json:"accepted"`
	WindowDays int    `json:"window_days"`
	CostBearer string `json:"cost_bearer"`
}

// ScrapedRecord is the canonical output of one successful scrape.
//
// ExternalID, Title and CurrentPrice are required; a record missing any
// of them is rejected during adapter validation and never returned.
// A zero CurrentPrice is treated as absent.
type ScrapedRecord struct {
	ExternalID   string     `json:"external_id"`
	Title        string     `json:"title"`
	CurrentPrice float64    `json:"current_price"`
	Brand        string     `json:"brand,omitempty"`
	Model        string     `json:"model,omitempty"`
	UPC          string     `json:"upc,omitempty"`
	ASIN         string     `json:"asin,omitempty"`
	Condition    string     `json:"condition,omitempty"`
	DamageNotes  []string   `json:"damage_notes,omitempty"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Seller       *Seller    `json:"seller,omitempty"`
	Shipping     *Shipping  `json:"shipping,omitempty"`
	Returns      *Returns   `json:"returns,omitempty"`
	SourceURL    string     `json:"source_url"`
	FetchedAt    time.Time  `json:"fetched_at"`
}

// MissingRequired returns the names of required fields that are absent.
func (r *ScrapedRecord) MissingRequired() []string {
	var missing []string
	if r.ExternalID == "" {
		missing = append(missing, "external_id")
	}
	if r.Title == "" {
		missing = append(missing, "title")
	}
	if r.CurrentPrice <= 0 {
		missing = append(missing, "current_price")
	}
	return missing
}

// Valid reports whether all required fields are present.
func (r *ScrapedRecord) Valid() bool {
	return len(r.MissingRequired()) == 0
}

// Outcome is the per-target result of a scrape: exactly one of Record or
// Err is set. Batch operations yield one Outcome per input target, in
// input order, regardless of individual failures.
type Outcome struct {
	Target ScrapeTarget   `json:"target"`
	Record *ScrapedRecord `json:"record,omitempty"`
	Err    error          `json:"-"`
}

// Success wraps a validated record for the given target.
func Success(target ScrapeTarget, record *ScrapedRecord) Outcome {
	return Outcome{Target: target, Record: record}
}

// Failure wraps a terminal error for the given target.
func Failure(target ScrapeTarget, err error) Outcome {
	return Outcome{Target: target, Err: err}
}

// OK reports whether the outcome carries a record.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Record != nil
}

// Health is the operational snapshot exposed for dashboards.
type Health struct {
	StaticProxies int      `json:"static_proxies"`
	TorFallback   int      `json:"tor_fallback"`
	UserAgents    int      `json:"user_agents"`
	ActiveSources []string `json:"active_sources"`
}
