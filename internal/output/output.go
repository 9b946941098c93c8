// Package output renders batch results for the CLI: JSON, CSV or
// Markdown, chosen by the destination file extension.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/law-makers/harvest/pkg/models"
)

// Report is the document emitted by the scrape command.
type Report struct {
	Scraped  int                     `json:"scraped"`
	Failed   int                     `json:"failed"`
	Records  []*models.ScrapedRecord `json:"records"`
	Failures []Failure               `json:"failures,omitempty"`
}

// Failure describes one target that exhausted its attempts.
type Failure struct {
	Target string `json:"target"`
	Error  string `json:"error"`
}

// BuildReport splits outcomes into records and failures.
func BuildReport(outcomes []models.Outcome) Report {
	report := Report{Records: []*models.ScrapedRecord{}}
	for _, outcome := range outcomes {
		if outcome.OK() {
			report.Scraped++
			report.Records = append(report.Records, outcome.Record)
			continue
		}
		report.Failed++
		report.Failures = append(report.Failures, Failure{
			Target: outcome.Target.String(),
			Error:  outcome.Err.Error(),
		})
	}
	return report
}

// Save writes the report to filepath, picking the format from the
// extension (.json, .csv, .md). Anything else is written as JSON.
func Save(report Report, filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer file.Close()

	switch {
	case strings.HasSuffix(filepath, ".csv"):
		return WriteCSV(file, report.Records)
	case strings.HasSuffix(filepath, ".md"):
		return WriteMarkdown(file, report)
	default:
		return WriteJSON(file, report)
	}
}

// WriteJSON writes the indented JSON export.
func WriteJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

var csvHeader = []string{
	"external_id", "title", "current_price", "brand", "model", "upc",
	"asin", "condition", "end_time", "seller", "source_url",
}

// WriteCSV writes one row per scraped record. Failures are not part of
// the CSV export; callers report them separately.
func WriteCSV(w io.Writer, records []*models.ScrapedRecord) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		var seller, endTime string
		if r.Seller != nil {
			seller = r.Seller.Name
		}
		if r.EndTime != nil {
			endTime = r.EndTime.Format(time.RFC3339)
		}
		row := []string{
			r.ExternalID,
			r.Title,
			strconv.FormatFloat(r.CurrentPrice, 'f', 2, 64),
			r.Brand,
			r.Model,
			r.UPC,
			r.ASIN,
			r.Condition,
			endTime,
			seller,
			r.SourceURL,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMarkdown writes a human-readable digest, one section per record.
func WriteMarkdown(w io.Writer, report Report) error {
	fmt.Fprintf(w, "# Scrape Report\n\n%d scraped, %d failed\n", report.Scraped, report.Failed)

	for _, r := range report.Records {
		fmt.Fprintf(w, "\n## %s\n\n", r.Title)
		fmt.Fprintf(w, "- Item: [%s](%s)\n", r.ExternalID, r.SourceURL)
		fmt.Fprintf(w, "- Current bid: %.2f\n", r.CurrentPrice)
		if r.Brand != "" {
			fmt.Fprintf(w, "- Brand: %s\n", r.Brand)
		}
		if r.Model != "" {
			fmt.Fprintf(w, "- Model: %s\n", r.Model)
		}
		if r.Condition != "" {
			fmt.Fprintf(w, "- Condition: %s\n", r.Condition)
		}
		if r.EndTime != nil {
			fmt.Fprintf(w, "- Ends: %s\n", r.EndTime.Format(time.RFC3339))
		}
		if r.Seller != nil {
			fmt.Fprintf(w, "- Seller: %s (%d, %.1f%% positive)\n",
				r.Seller.Name, r.Seller.FeedbackScore, r.Seller.PositiveFeedbackRatio*100)
		}
	}

	if len(report.Failures) > 0 {
		fmt.Fprintf(w, "\n## Failures\n\n")
		for _, f := range report.Failures {
			fmt.Fprintf(w, "- %s: %s\n", f.Target, f.Error)
		}
	}
	return nil
}
