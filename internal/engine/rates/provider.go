// Package rates converts amounts between currencies. Live rates come from an
// HTTP provider and are cached per base currency with a TTL; when the
// provider is unreachable a static fallback table keeps conversions working
// at reduced precision instead of failing the computation.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/splitledger/internal/config"
)

// Provider fetches the latest multipliers for a base currency
type Provider interface {
	FetchRates(ctx context.Context, base string) (map[string]float64, error)
}

// HTTPProvider fetches rates from a JSON endpoint of the form <url>/<base>
type HTTPProvider struct {
	url    string
	client *http.Client
	logger *slog.Logger
}

// NewHTTPProvider creates a rate provider client with a bounded request timeout
func NewHTTPProvider(logger *slog.Logger, cfg *config.RatesConfig) *HTTPProvider {
	return &HTTPProvider{
		url: cfg.APIURL,
		client: &http.Client{
			Timeout: cfg.FetchTimeout,
		},
		logger: logger,
	}
}

// rateResponse matches the provider's wire contract: { "rates": { code: multiplier } }
type rateResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// FetchRates requests the latest rates for the given base currency
func (p *HTTPProvider) FetchRates(ctx context.Context, base string) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", p.url, base), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from rate provider: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read rate response: %w", err)
	}

	var parsed rateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse rate response: %w", err)
	}
	if len(parsed.Rates) == 0 {
		return nil, fmt.Errorf("rate provider returned no rates for base %s", base)
	}

	p.logger.Debug("Fetched exchange rates", "base", base, "count", len(parsed.Rates))

	return parsed.Rates, nil
}
