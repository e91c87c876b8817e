package rates

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/splitledger/internal/config"
)

// ErrRateUnavailable indicates that neither live nor fallback rates cover the
// requested currency pair
type ErrRateUnavailable struct {
	From string
	To   string
}

func (e ErrRateUnavailable) Error() string {
	return "no exchange rate available for " + e.From + " -> " + e.To
}

// Is implements the errors.Is interface for ErrRateUnavailable
func (e ErrRateUnavailable) Is(target error) bool {
	t, ok := target.(ErrRateUnavailable)
	if !ok {
		return false
	}
	if t.From == "" && t.To == "" {
		return true
	}
	return e.From == t.From && e.To == t.To
}

// RateSet is the result of a rate lookup. Fresh is false when the rates came
// from the static fallback table rather than the live provider.
type RateSet struct {
	Rates map[string]float64
	Fresh bool
}

// Converter converts a single amount between currencies. The boolean result
// mirrors RateSet.Fresh: false means the amount is an approximation derived
// from fallback rates.
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, bool, error)
}

// Normalizer resolves exchange rates with a per-base snapshot cache and a
// static fallback table. Safe for concurrent use.
type Normalizer struct {
	provider Provider
	cache    *snapshotCache
	logger   *slog.Logger
	now      func() time.Time
}

// NewNormalizer creates a currency normalizer backed by the given provider
func NewNormalizer(logger *slog.Logger, provider Provider, cfg *config.RatesConfig) *Normalizer {
	return &Normalizer{
		provider: provider,
		cache:    newSnapshotCache(cfg.CacheTTL, cfg.CacheSize),
		logger:   logger,
		now:      time.Now,
	}
}

// GetRates returns the rate set for the base currency. Cached snapshots are
// served within their validity window; otherwise a fresh fetch is attempted
// and, on failure, the fallback table is re-based for the request. A provider
// failure is a degradation, not an error: the error return is reserved for
// bases unknown to both sources.
func (n *Normalizer) GetRates(ctx context.Context, base string) (*RateSet, error) {
	base = strings.ToUpper(base)

	if snap, ok := n.cache.Get(base, n.now()); ok {
		return &RateSet{Rates: snap.Rates, Fresh: true}, nil
	}

	fetched, err := n.provider.FetchRates(ctx, base)
	if err == nil {
		n.cache.Put(&Snapshot{BaseCurrency: base, Rates: fetched, FetchedAt: n.now()})
		return &RateSet{Rates: fetched, Fresh: true}, nil
	}

	n.logger.Warn("Rate fetch failed, using static fallback table", "base", base, "error", err)

	rebased, ok := fallbackRates(base)
	if !ok {
		return nil, ErrRateUnavailable{From: base}
	}
	// Fallback results are never cached: a recovered provider should win on
	// the next call.
	return &RateSet{Rates: rebased, Fresh: false}, nil
}

// Convert converts an amount between currencies. Identity conversions return
// the input unchanged without consulting any rate source. The boolean result
// is false when the conversion used fallback rates.
func (n *Normalizer) Convert(ctx context.Context, amount float64, from, to string) (float64, bool, error) {
	from = strings.ToUpper(from)
	to = strings.ToUpper(to)

	if from == to {
		return amount, true, nil
	}

	set, err := n.GetRates(ctx, from)
	if err != nil {
		return 0, false, err
	}

	rate, ok := set.Rates[to]
	if !ok || rate == 0 {
		return 0, false, ErrRateUnavailable{From: from, To: to}
	}

	return amount * rate, set.Fresh, nil
}
