// Package split resolves an expense's split configuration into per-participant
// owed amounts in the expense's original currency. Resolution is a pure
// computation: no I/O, no logging, no state.
package split

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/shared"
)

const (
	// AmountTolerance is the absolute tolerance for custom amounts summing to the expense total
	AmountTolerance = 0.01
	// PercentTolerance is the tolerance, in percentage points, for custom percentages summing to 100
	PercentTolerance = 0.1
)

// ErrInvalidSplit indicates a split configuration that cannot be resolved
type ErrInvalidSplit struct {
	Reason string
}

func (e ErrInvalidSplit) Error() string {
	return "invalid split: " + e.Reason
}

// Is implements the errors.Is interface for ErrInvalidSplit
func (e ErrInvalidSplit) Is(target error) bool {
	_, ok := target.(ErrInvalidSplit)
	return ok
}

// Spec is the raw input needed to resolve one expense's splits
type Spec struct {
	PayerID      uuid.UUID
	Participants []uuid.UUID
	// Values carries per-participant amounts (CUSTOM_AMOUNT) or percentages
	// (CUSTOM_PERCENTAGE); ignored for EQUAL splits
	Values map[uuid.UUID]float64
}

// Resolve turns a split configuration into a per-participant owed amount map.
// The returned amounts are in the expense's original currency and sum to the
// expense amount within AmountTolerance.
//
// Equal splits truncate each share to the cent; leftover cents go to the
// payer when the payer is in the split set, otherwise to the participant
// with the smallest ID. The rule is deterministic regardless of input order.
func Resolve(amount float64, method shared.SplitMethod, spec Spec) (map[uuid.UUID]float64, error) {
	if len(spec.Participants) == 0 {
		return nil, ErrInvalidSplit{Reason: "no participants in split set"}
	}
	if amount < 0 {
		return nil, ErrInvalidSplit{Reason: "amount must not be negative"}
	}
	if hasDuplicates(spec.Participants) {
		return nil, ErrInvalidSplit{Reason: "duplicate participant in split set"}
	}

	switch method {
	case shared.SplitMethodEqual:
		return resolveEqual(amount, spec), nil
	case shared.SplitMethodCustomAmount:
		return resolveCustomAmount(amount, spec)
	case shared.SplitMethodCustomPercentage:
		return resolveCustomPercentage(amount, spec)
	default:
		return nil, ErrInvalidSplit{Reason: "unknown split method: " + string(method)}
	}
}

// Validate checks a split configuration without materializing the shares.
// Used by ingestion surfaces to reject bad splits before queuing.
func Validate(amount float64, method shared.SplitMethod, spec Spec) error {
	_, err := Resolve(amount, method, spec)
	return err
}

func resolveEqual(amount float64, spec Spec) map[uuid.UUID]float64 {
	n := len(spec.Participants)
	share := truncateToCents(amount / float64(n))

	resolved := make(map[uuid.UUID]float64, n)
	for _, id := range spec.Participants {
		resolved[id] = share
	}

	residual := roundToCents(amount - share*float64(n))
	if residual > 0 {
		resolved[remainderRecipient(spec)] = roundToCents(share + residual)
	}

	return resolved
}

func resolveCustomAmount(amount float64, spec Spec) (map[uuid.UUID]float64, error) {
	resolved := make(map[uuid.UUID]float64, len(spec.Participants))
	var sum float64
	for _, id := range spec.Participants {
		value, ok := spec.Values[id]
		if !ok {
			return nil, ErrInvalidSplit{Reason: "missing amount for participant " + id.String()}
		}
		if value < 0 {
			return nil, ErrInvalidSplit{Reason: "negative amount for participant " + id.String()}
		}
		resolved[id] = roundToCents(value)
		sum += value
	}

	if math.Abs(sum-amount) > AmountTolerance {
		return nil, ErrInvalidSplit{Reason: "custom amounts do not sum to expense total"}
	}

	return resolved, nil
}

func resolveCustomPercentage(amount float64, spec Spec) (map[uuid.UUID]float64, error) {
	var sum float64
	for _, id := range spec.Participants {
		value, ok := spec.Values[id]
		if !ok {
			return nil, ErrInvalidSplit{Reason: "missing percentage for participant " + id.String()}
		}
		if value < 0 {
			return nil, ErrInvalidSplit{Reason: "negative percentage for participant " + id.String()}
		}
		sum += value
	}

	if math.Abs(sum-100) > PercentTolerance {
		return nil, ErrInvalidSplit{Reason: "custom percentages do not sum to 100"}
	}

	resolved := make(map[uuid.UUID]float64, len(spec.Participants))
	for _, id := range spec.Participants {
		resolved[id] = roundToCents(amount * spec.Values[id] / 100)
	}

	return resolved, nil
}

// remainderRecipient picks who absorbs the indivisible cents of an equal split
func remainderRecipient(spec Spec) uuid.UUID {
	for _, id := range spec.Participants {
		if id == spec.PayerID {
			return id
		}
	}

	ids := make([]string, 0, len(spec.Participants))
	for _, id := range spec.Participants {
		ids = append(ids, id.String())
	}
	sort.Strings(ids)
	recipient, _ := uuid.Parse(ids[0])
	return recipient
}

func hasDuplicates(ids []uuid.UUID) bool {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}

func truncateToCents(v float64) float64 {
	return math.Trunc(v*100) / 100
}

func roundToCents(v float64) float64 {
	return math.Round(v*100) / 100
}
