package rates

// usdFallbackRates is a static table of approximate multipliers relative to
// USD, used only when the live provider is unreachable. Values are
// intentionally coarse; conversions derived from them report success=false
// so callers can label the result an approximation.
var usdFallbackRates = map[string]float64{
	"USD": 1.0,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 149.50,
	"CNY": 7.24,
	"INR": 83.10,
	"THB": 35.60,
	"SGD": 1.34,
	"AUD": 1.52,
	"CAD": 1.36,
	"CHF": 0.88,
	"SEK": 10.45,
	"NOK": 10.60,
	"DKK": 6.87,
	"MXN": 17.10,
	"BRL": 4.97,
	"KRW": 1330.00,
	"HKD": 7.82,
	"NZD": 1.64,
	"RUB": 92.50,
}

// fallbackRates re-bases the static USD table for the requested base
// currency: rate(base->X) = usd(X) / usd(base). Returns false when the base
// itself is not in the table.
func fallbackRates(base string) (map[string]float64, bool) {
	baseRate, ok := usdFallbackRates[base]
	if !ok || baseRate == 0 {
		return nil, false
	}

	rebased := make(map[string]float64, len(usdFallbackRates))
	for code, rate := range usdFallbackRates {
		rebased[code] = rate / baseRate
	}
	return rebased, true
}
