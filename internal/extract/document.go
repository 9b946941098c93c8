// Package extract implements per-field extraction over a parsed listing
// page. Fields with unreliable markup (brand, model) run an ordered chain
// of independent methods and keep the first non-empty result; everything
// else uses a single deterministic method. Absence is never an error at
// this layer.
package extract

import (
	"io"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

// descriptionSelector locates the labeled "Key: Value" description block
// that the structured-description methods parse.
const descriptionSelector = ".lot-description"

// Document wraps a parsed listing page. The flattened description text is
// computed lazily and cached, since several chain methods share it.
type Document struct {
	doc *goquery.Document

	descOnce sync.Once
	desc     string
}

// NewDocument parses an HTML body into a Document.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// Find exposes goquery selection for the single-method field extractors.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.doc.Find(selector)
}

// Description returns the description block flattened to line-oriented
// plain text, so "Brand: X" style labels survive <br> and <div> markup.
func (d *Document) Description() string {
	d.descOnce.Do(func() {
		sel := d.doc.Find(descriptionSelector).First()
		if sel.Length() == 0 {
			return
		}

		html, err := sel.Html()
		if err != nil || strings.TrimSpace(html) == "" {
			d.desc = strings.TrimSpace(sel.Text())
			return
		}

		converter := md.NewConverter("", true, nil)
		text, err := converter.ConvertString(html)
		if err != nil {
			log.Debug().Err(err).Msg("Description markdown conversion failed, using raw text")
			d.desc = strings.TrimSpace(sel.Text())
			return
		}
		d.desc = strings.TrimSpace(text)
	})
	return d.desc
}
