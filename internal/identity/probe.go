package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultProbeEndpoint echoes the caller's apparent IP, which makes it a
// cheap end-to-end check that a proxy actually relays traffic.
const DefaultProbeEndpoint = "https://api.ipify.org?format=json"

// Probe verifies that the given identity can reach the endpoint. It is
// meant for operational checks, never for the scrape hot path.
func Probe(ctx context.Context, id Identity, endpoint string, timeout time.Duration) error {
	if endpoint == "" {
		endpoint = DefaultProbeEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	transport := &http.Transport{}
	if id.HasProxy() {
		transport.Proxy = http.ProxyURL(id.Proxy)
	}
	client := &http.Client{Transport: transport, Timeout: timeout}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("proxy", id.String()).Msg("Proxy probe failed")
		return fmt.Errorf("probe through %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe through %s: unexpected status %d", id, resp.StatusCode)
	}
	return nil
}
