// internal/cli/health.go
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/law-makers/harvest/internal/ui"
)

var probeEgress bool

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show pool sizes and active sources",
	Long: `Reports the operational snapshot of the scraper: how many static
proxies and user agents are in rotation, whether the Tor fallback is
active, and which source adapters have been instantiated.`,
	Example: `  # Show the pool snapshot
  harvest health

  # Also verify the current proxy can reach the outside world
  harvest health --probe`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().BoolVar(&probeEgress, "probe", false, "Issue a live request through the current egress identity")
}

func runHealth(cmd *cobra.Command, args []string) error {
	a := GetAppFromCmd(cmd)
	health := a.Orchestrator.Health()

	jsonFlag := cmd.Flags().Lookup("json")
	if jsonFlag != nil && jsonFlag.Value.String() == "true" {
		content, err := json.MarshalIndent(health, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(content))
	} else {
		fmt.Printf("\n%s\n", ui.Bold("Pool Health"))
		fmt.Printf("  Static proxies:  %d\n", health.StaticProxies)
		fmt.Printf("  Tor fallback:    %d\n", health.TorFallback)
		fmt.Printf("  User agents:     %d\n", health.UserAgents)
		fmt.Printf("  Active sources:  %s\n", formatSources(health.ActiveSources))
	}

	if probeEgress {
		fmt.Printf("\nProbing egress via %s... ", a.Proxies.Current())
		if err := a.ProbeIdentity(cmd.Context()); err != nil {
			fmt.Println(ui.Error("unreachable"))
			fmt.Fprintf(os.Stderr, "  %v\n", err)
			return fmt.Errorf("egress probe failed")
		}
		fmt.Println(ui.Success("ok"))
	}
	return nil
}

func formatSources(sources []string) string {
	if len(sources) == 0 {
		return "(none instantiated)"
	}
	return strings.Join(sources, ", ")
}
