package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/law-makers/harvest/pkg/models"
)

func sampleOutcomes() []models.Outcome {
	endTime := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	record := &models.ScrapedRecord{
		ExternalID:   "123",
		Title:        "Vintage Lamp",
		CurrentPrice: 42.5,
		Brand:        "Acme",
		Condition:    "Used",
		EndTime:      &endTime,
		Seller:       &models.Seller{Name: "lamp_dealer", FeedbackScore: 1523, PositiveFeedbackRatio: 0.992},
		SourceURL:    "https://www.ebay.com/itm/123",
	}
	return []models.Outcome{
		models.Success(models.TargetByID("123"), record),
		models.Failure(models.TargetByID("456"), errors.New("retries exhausted")),
	}
}

func TestBuildReportSplitsRecordsAndFailures(t *testing.T) {
	report := BuildReport(sampleOutcomes())

	if report.Scraped != 1 || report.Failed != 1 {
		t.Errorf("Expected 1 scraped and 1 failed, got %d and %d", report.Scraped, report.Failed)
	}
	if len(report.Records) != 1 || report.Records[0].ExternalID != "123" {
		t.Errorf("Unexpected records: %+v", report.Records)
	}
	if len(report.Failures) != 1 || report.Failures[0].Target != "id:456" {
		t.Errorf("Unexpected failures: %+v", report.Failures)
	}
}

func TestWriteCSVOneRowPerRecord(t *testing.T) {
	report := BuildReport(sampleOutcomes())

	var buf bytes.Buffer
	if err := WriteCSV(&buf, report.Records); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse written CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected header plus 1 record row, got %d rows", len(rows))
	}
	if rows[0][0] != "external_id" {
		t.Errorf("Unexpected header: %v", rows[0])
	}
	if rows[1][0] != "123" || rows[1][2] != "42.50" || rows[1][9] != "lamp_dealer" {
		t.Errorf("Unexpected record row: %v", rows[1])
	}
}

func TestWriteMarkdownIncludesRecordsAndFailures(t *testing.T) {
	report := BuildReport(sampleOutcomes())

	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, report); err != nil {
		t.Fatalf("WriteMarkdown failed: %v", err)
	}
	got := buf.String()

	for _, want := range []string{
		"## Vintage Lamp",
		"[123](https://www.ebay.com/itm/123)",
		"Current bid: 42.50",
		"## Failures",
		"id:456: retries exhausted",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Markdown output missing %q:\n%s", want, got)
		}
	}
}

func TestWriteJSONOmitsErrField(t *testing.T) {
	report := BuildReport(sampleOutcomes())

	var buf bytes.Buffer
	if err := WriteJSON(&buf, report); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	got := buf.String()

	if !strings.Contains(got, `"scraped": 1`) || !strings.Contains(got, `"Vintage Lamp"`) {
		t.Errorf("Unexpected JSON output:\n%s", got)
	}
	if !strings.Contains(got, `"retries exhausted"`) {
		t.Errorf("Expected the failure message in the failures list:\n%s", got)
	}
}
