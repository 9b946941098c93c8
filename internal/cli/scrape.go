// internal/cli/scrape.go
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/law-makers/harvest/internal/output"
	"github.com/law-makers/harvest/pkg/models"
)

var (
	sourceType string
	asURLs     bool
	concurrent bool
	outputPath string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape <item-id>...",
	Short: "Scrape marketplace listings by item ID or URL",
	Long: `Scrapes one or more listing pages and prints the extracted records
as JSON. Each listing is retried with a rotated proxy and user agent when
the marketplace blocks or the fetch fails; one listing's failure never
stops the rest of the batch.`,
	Example: `  # Scrape two listings by item ID
  harvest scrape 256789012345 256789099999

  # Scrape by full listing URL
  harvest scrape --urls https://www.ebay.com/itm/256789012345

  # Scrape a large batch concurrently and save as CSV
  harvest scrape --concurrent --output=records.csv 256789012345 256789099999`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&sourceType, "source", "s", "ebay", "Marketplace source type")
	scrapeCmd.Flags().BoolVar(&asURLs, "urls", false, "Treat arguments as listing URLs instead of item IDs")
	scrapeCmd.Flags().BoolVarP(&concurrent, "concurrent", "c", false, "Scrape with the concurrent worker pool")
	scrapeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "File path to save output (.json, .csv or .md; stdout if omitted)")
}

func runScrape(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)

	targets := make([]models.ScrapeTarget, len(args))
	for i, arg := range args {
		if asURLs {
			if !strings.HasPrefix(arg, "http://") && !strings.HasPrefix(arg, "https://") {
				return fmt.Errorf("invalid URL %q: must start with http:// or https://", arg)
			}
			targets[i] = models.TargetByURL(arg)
		} else {
			targets[i] = models.TargetByID(arg)
		}
	}

	bar := progressbar.NewOptions(len(targets),
		progressbar.OptionSetDescription("Scraping listings"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	a.Orchestrator.OnProgress(func(models.Outcome) { _ = bar.Add(1) })

	var (
		outcomes []models.Outcome
		err      error
	)
	if concurrent {
		outcomes, err = a.Orchestrator.ScrapeAll(cmd.Context(), targets, sourceType)
	} else {
		outcomes, err = a.Orchestrator.ScrapeBatch(cmd.Context(), targets, sourceType)
	}
	_ = bar.Finish()
	if err != nil && len(outcomes) == 0 {
		return err
	}

	report := output.BuildReport(outcomes)
	if outputPath != "" {
		if werr := output.Save(report, outputPath); werr != nil {
			return fmt.Errorf("failed to save output: %w", werr)
		}
		fmt.Printf("Saved %d records to %s\n", report.Scraped, outputPath)
	} else {
		if werr := output.WriteJSON(os.Stdout, report); werr != nil {
			return werr
		}
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d listings failed", report.Failed, len(targets))
	}
	return err
}
