// Package settlement turns a reconciled net balance between two participants
// into the expense that cancels it. Settlements are not a separate ledger
// concept: the generated expense flows through the same recording pipeline as
// any other expense, which is what makes the balance converge to zero.
package settlement

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/engine/balance"
)

// Generate builds the settlement expense that zeroes out the net balance
// between the viewer and one counterparty. The net amount follows the balance
// detail convention: positive means the counterparty owes the viewer. A net
// within the settle tolerance needs no settlement and yields nil.
//
// The debtor is always the payer of the settlement expense, and the creditor
// its sole split member, so that aggregating the expense moves the pair's net
// balance to exactly zero.
func Generate(net float64, viewerID, counterpartyID uuid.UUID, currency string) *shared.ExpenseRequest {
	if math.Abs(net) <= balance.SettleTolerance {
		return nil
	}

	var payerID, creditorID uuid.UUID
	if net > 0 {
		// Counterparty owes the viewer
		payerID = counterpartyID
		creditorID = viewerID
	} else {
		// Viewer owes the counterparty
		payerID = viewerID
		creditorID = counterpartyID
	}

	amount := math.Round(math.Abs(net)*100) / 100

	return &shared.ExpenseRequest{
		ExpenseID:   uuid.New(),
		PayerID:     payerID,
		Description: "Settlement",
		Amount:      amount,
		Currency:    currency,
		SplitMethod: shared.SplitMethodCustomAmount,
		Participants: []uuid.UUID{
			creditorID,
		},
		SplitValues: map[string]float64{
			creditorID.String(): amount,
		},
		Category:  shared.CategorySettlement,
		Timestamp: time.Now().UTC(),
	}
}
