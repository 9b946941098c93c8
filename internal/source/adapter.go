// Package source implements marketplace-specific listing adapters behind
// a small capability interface. Adapters fetch one page through the
// shared egress identity, detect block pages, run the extraction chain
// and validate the canonical record. Retry policy lives in the
// orchestrator, not here.
package source

import (
	"context"
	"strings"

	"github.com/law-makers/harvest/pkg/models"
)

// Adapter fetches one listing from a specific marketplace.
type Adapter interface {
	// FetchByID scrapes the listing with the given marketplace item ID.
	// Defined as FetchByURL of the canonical listing URL for that ID.
	FetchByID(ctx context.Context, id string) models.Outcome

	// FetchByURL scrapes the listing at the given URL.
	FetchByURL(ctx context.Context, url string) models.Outcome

	// Name returns the source type key this adapter serves.
	Name() string
}

// blockMarkers are the substrings that identify an anti-bot challenge
// page. Matching is case-insensitive over the whole body.
var blockMarkers = []string{"captcha", "robot"}

// isBlockPage reports whether the response body looks like an anti-bot
// challenge rather than a listing.
func isBlockPage(body string) bool {
	lower := strings.ToLower(body)
	for _, marker := range blockMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
