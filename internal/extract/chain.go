package extract

import "github.com/rs/zerolog/log"

// Method produces one candidate value for a field. An empty string means
// this method could not find a value; the chain moves on to the next.
type Method struct {
	Name string
	Run  func(d *Document) string
}

// Chain is an ordered list of independent methods for one field. Order is
// significant: the first non-empty result wins and later methods are not
// consulted.
type Chain struct {
	Field   string
	Methods []Method
}

// Extract runs the chain in priority order. It returns "" when every
// method comes up empty; whether that is acceptable is the caller's
// concern (required-field validation happens in the adapter).
func (c Chain) Extract(d *Document) string {
	for _, m := range c.Methods {
		if v := m.Run(d); v != "" {
			log.Debug().
				Str("field", c.Field).
				Str("method", m.Name).
				Msg("Field extracted")
			return v
		}
	}
	return ""
}

// NewBrandChain builds the brand chain: structured description parsing,
// then title inference, then UPC cross-reference. upcOf supplies the
// page's UPC for the lookup step and is adapter-specific.
func NewBrandChain(xref *CrossRef, upcOf func(d *Document) string) Chain {
	return Chain{
		Field: "brand",
		Methods: []Method{
			DescriptionLabel("Brand"),
			TitleInference("brand"),
			{
				Name: "upc-lookup",
				Run: func(d *Document) string {
					if upc := upcOf(d); upc != "" {
						return xref.BrandByUPC(upc)
					}
					return ""
				},
			},
		},
	}
}

// NewModelChain builds the model chain: the brand chain's three methods
// plus an ASIN cross-reference as the final fallback.
func NewModelChain(xref *CrossRef, upcOf, asinOf func(d *Document) string) Chain {
	return Chain{
		Field: "model",
		Methods: []Method{
			DescriptionLabel("Model"),
			TitleInference("model"),
			{
				Name: "upc-lookup",
				Run: func(d *Document) string {
					if upc := upcOf(d); upc != "" {
						return xref.ModelByUPC(upc)
					}
					return ""
				},
			},
			{
				Name: "asin-lookup",
				Run: func(d *Document) string {
					if asin := asinOf(d); asin != "" {
						return xref.ModelByASIN(asin)
					}
					return ""
				},
			},
		},
	}
}
