package settlement

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/expense"
	"github.com/splitledger/internal/domain/shared"
	"github.com/splitledger/internal/engine/balance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	viewer       = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	counterparty = uuid.MustParse("22222222-2222-2222-2222-222222222222")
)

type identityConverter struct{}

func (identityConverter) Convert(_ context.Context, amount float64, _, _ string) (float64, bool, error) {
	return amount, true, nil
}

func TestGenerate(t *testing.T) {
	t.Run("counterparty owes viewer, counterparty pays", func(t *testing.T) {
		req := Generate(25.50, viewer, counterparty, "USD")

		require.NotNil(t, req)
		assert.Equal(t, counterparty, req.PayerID)
		assert.Equal(t, []uuid.UUID{viewer}, req.Participants)
		assert.Equal(t, 25.50, req.Amount)
		assert.Equal(t, "USD", req.Currency)
		assert.Equal(t, shared.SplitMethodCustomAmount, req.SplitMethod)
		assert.Equal(t, map[string]float64{viewer.String(): 25.50}, req.SplitValues)
		assert.Equal(t, shared.CategorySettlement, req.Category)
		assert.NotEqual(t, uuid.Nil, req.ExpenseID)
	})

	t.Run("viewer owes counterparty, viewer pays", func(t *testing.T) {
		req := Generate(-12.00, viewer, counterparty, "EUR")

		require.NotNil(t, req)
		assert.Equal(t, viewer, req.PayerID)
		assert.Equal(t, []uuid.UUID{counterparty}, req.Participants)
		assert.Equal(t, 12.00, req.Amount)
		assert.Equal(t, map[string]float64{counterparty.String(): 12.00}, req.SplitValues)
	})

	t.Run("net within tolerance yields no settlement", func(t *testing.T) {
		assert.Nil(t, Generate(0, viewer, counterparty, "USD"))
		assert.Nil(t, Generate(balance.SettleTolerance, viewer, counterparty, "USD"))
		assert.Nil(t, Generate(-balance.SettleTolerance, viewer, counterparty, "USD"))
	})

	t.Run("just above tolerance yields a settlement", func(t *testing.T) {
		req := Generate(0.02, viewer, counterparty, "USD")
		require.NotNil(t, req)
		assert.Equal(t, 0.02, req.Amount)
	})

	t.Run("amount is rounded to cents", func(t *testing.T) {
		req := Generate(10.006, viewer, counterparty, "USD")
		require.NotNil(t, req)
		assert.Equal(t, 10.01, req.Amount)
	})
}

// Recording the generated settlement and re-aggregating must drive the pair's
// net balance to zero.
func TestGenerate_ZeroSumRoundTrip(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	agg := balance.NewAggregator(logger, identityConverter{}, nil)

	original := &expense.Expense{
		ExpenseID:    uuid.New(),
		PayerID:      viewer,
		Amount:       30.00,
		Currency:     "USD",
		SplitMethod:  shared.SplitMethodEqual,
		Participants: []uuid.UUID{viewer, counterparty},
	}

	before, err := agg.Aggregate(ctx, []*expense.Expense{original}, viewer, "USD")
	require.NoError(t, err)
	require.Equal(t, 15.00, before.Details[counterparty])

	settlementReq := Generate(before.Details[counterparty], viewer, counterparty, "USD")
	require.NotNil(t, settlementReq)

	settled := expense.FromRequest(settlementReq)
	settled.Status = shared.ExpenseStatusCompleted

	after, err := agg.Aggregate(ctx, []*expense.Expense{original, settled}, viewer, "USD")
	require.NoError(t, err)
	assert.Equal(t, 0.00, after.Details[counterparty])
	assert.Equal(t, 0.00, after.TotalOwed)
	assert.Equal(t, 0.00, after.TotalOwes)
}
