// Package balance folds a set of recorded expenses into net per-counterparty
// balances for one viewer. Aggregation always recomputes from the full
// expense set; nothing is patched incrementally.
package balance

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/engine/rates"
	"github.com/splitledger/internal/engine/split"
)

// SettleTolerance is the absolute net amount below which a balance counts as settled
const SettleTolerance = 0.01

// Balance is the viewer's reconciled position against every counterparty.
// Positive detail entries mean the counterparty owes the viewer; negative
// entries mean the viewer owes the counterparty. Approximate is set when any
// amount was converted via fallback rates or kept in its original currency
// because no rate was available.
type Balance struct {
	TotalOwed   float64               `json:"total_owed"`
	TotalOwes   float64               `json:"total_owes"`
	Details     map[uuid.UUID]float64 `json:"details"`
	Currency    string                `json:"currency"`
	Approximate bool                  `json:"approximate"`
}

// normalizedExpense is one expense with resolved splits converted into the
// viewer's display currency, ready for the fold
type normalizedExpense struct {
	payerID     uuid.UUID
	shares      map[uuid.UUID]float64
	approximate bool
	skip        bool
}

// Aggregator computes balances. Conversion fan-out runs on the shared worker
// pool and is joined before any folding begins, so the fold only ever sees a
// fully normalized expense list.
type Aggregator struct {
	converter rates.Converter
	pool      *ants.Pool
	logger    *slog.Logger
}

// NewAggregator creates a balance aggregator. The pool may be nil, in which
// case conversions run sequentially.
func NewAggregator(logger *slog.Logger, converter rates.Converter, pool *ants.Pool) *Aggregator {
	return &Aggregator{
		converter: converter,
		pool:      pool,
		logger:    logger,
	}
}

// Aggregate computes the viewer's balance over the given expenses in the
// display currency. Identical inputs always produce identical output. A
// single unresolvable or unconvertible expense degrades the result (skipped
// split, original-currency amount, Approximate flag) but never aborts the
// aggregation of the remaining expenses.
func (a *Aggregator) Aggregate(ctx context.Context, expenses []*expense.Expense, viewerID uuid.UUID, displayCurrency string) (*Balance, error) {
	normalized := make([]normalizedExpense, len(expenses))

	var wg sync.WaitGroup
	for i, exp := range expenses {
		wg.Add(1)
		task := func(i int, exp *expense.Expense) func() {
			return func() {
				defer wg.Done()
				normalized[i] = a.normalize(ctx, exp, displayCurrency)
			}
		}(i, exp)

		if a.pool != nil {
			if err := a.pool.Submit(task); err == nil {
				continue
			}
			// Pool saturated or released; fall through to inline execution
		}
		task()
	}
	// Barrier: the fold must never observe partially converted data
	wg.Wait()

	net := make(map[uuid.UUID]float64)
	approximate := false
	for _, ne := range normalized {
		if ne.skip {
			continue
		}
		if ne.approximate {
			approximate = true
		}

		if ne.payerID == viewerID {
			// Every other participant owes the viewer their share
			for p, share := range ne.shares {
				if p != viewerID {
					net[p] += share
				}
			}
		} else if share, ok := ne.shares[viewerID]; ok {
			// The viewer owes the payer their own share
			net[ne.payerID] -= share
		}
		// An expense where the viewer is neither payer nor split member
		// contributes nothing.
	}

	balance := &Balance{
		Details:  make(map[uuid.UUID]float64, len(net)),
		Currency: displayCurrency,
	}
	for p, v := range net {
		v = roundToCents(v)
		balance.Details[p] = v
		if v > 0 {
			balance.TotalOwed += v
		} else {
			balance.TotalOwes += -v
		}
	}
	balance.TotalOwed = roundToCents(balance.TotalOwed)
	balance.TotalOwes = roundToCents(balance.TotalOwes)
	balance.Approximate = approximate

	return balance, nil
}

// normalize resolves one expense's splits and converts every share into the
// display currency. Conversion failures keep the original amounts and mark
// the result approximate; resolution failures and non-positive amounts skip
// the expense entirely.
func (a *Aggregator) normalize(ctx context.Context, exp *expense.Expense, displayCurrency string) normalizedExpense {
	// Upstream validation rejects non-positive amounts; be defensive here
	// and treat them as zero contribution rather than crashing the fold.
	if exp == nil || exp.Amount <= 0 {
		return normalizedExpense{skip: true}
	}

	shares, err := split.Resolve(exp.Amount, exp.SplitMethod, splitSpecOf(exp))
	if err != nil {
		a.logger.Warn("Skipping expense with unresolvable split",
			"expense_id", exp.ExpenseID.String(),
			"split_method", string(exp.SplitMethod),
			"error", err,
		)
		return normalizedExpense{skip: true}
	}

	ne := normalizedExpense{
		payerID: exp.PayerID,
		shares:  make(map[uuid.UUID]float64, len(shares)),
	}

	for p, share := range shares {
		converted, fresh, err := a.converter.Convert(ctx, share, exp.Currency, displayCurrency)
		if err != nil {
			var unavailable rates.ErrRateUnavailable
			if errors.As(err, &unavailable) {
				// Keep the original amount rather than dropping the expense
				a.logger.Warn("No rate for expense currency, keeping original amount",
					"expense_id", exp.ExpenseID.String(),
					"from", exp.Currency,
					"to", displayCurrency,
				)
				ne.shares[p] = share
				ne.approximate = true
				continue
			}
			ne.shares[p] = share
			ne.approximate = true
			continue
		}
		ne.shares[p] = converted
		if !fresh {
			ne.approximate = true
		}
	}

	return ne
}

func splitSpecOf(exp *expense.Expense) split.Spec {
	spec := split.Spec{
		PayerID:      exp.PayerID,
		Participants: exp.Participants,
	}
	if len(exp.SplitValues) > 0 {
		spec.Values = make(map[uuid.UUID]float64, len(exp.SplitValues))
		for key, v := range exp.SplitValues {
			id, err := uuid.Parse(key)
			if err != nil {
				continue
			}
			spec.Values[id] = v
		}
	}
	return spec
}

func roundToCents(v float64) float64 {
	return math.Round(v*100) / 100
}
