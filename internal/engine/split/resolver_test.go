package split

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/splitledger/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	idA = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	idB = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	idC = uuid.MustParse("33333333-3333-3333-3333-333333333333")
)

func sumShares(shares map[uuid.UUID]float64) float64 {
	var sum float64
	for _, v := range shares {
		sum += v
	}
	return sum
}

func TestResolve_Equal(t *testing.T) {
	t.Run("exact division", func(t *testing.T) {
		shares, err := Resolve(30.00, shared.SplitMethodEqual, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB, idC},
		})
		require.NoError(t, err)
		assert.Equal(t, 10.00, shares[idA])
		assert.Equal(t, 10.00, shares[idB])
		assert.Equal(t, 10.00, shares[idC])
	})

	t.Run("remainder goes to payer when payer is in split set", func(t *testing.T) {
		shares, err := Resolve(100.00, shared.SplitMethodEqual, Spec{
			PayerID:      idB,
			Participants: []uuid.UUID{idA, idB, idC},
		})
		require.NoError(t, err)
		assert.Equal(t, 33.33, shares[idA])
		assert.Equal(t, 33.34, shares[idB])
		assert.Equal(t, 33.33, shares[idC])
		assert.InDelta(t, 100.00, sumShares(shares), AmountTolerance)
	})

	t.Run("remainder goes to smallest ID when payer is not in split set", func(t *testing.T) {
		payer := uuid.MustParse("99999999-9999-9999-9999-999999999999")
		shares, err := Resolve(100.00, shared.SplitMethodEqual, Spec{
			PayerID:      payer,
			Participants: []uuid.UUID{idC, idA, idB}, // Unordered on purpose
		})
		require.NoError(t, err)
		assert.Equal(t, 33.34, shares[idA])
		assert.Equal(t, 33.33, shares[idB])
		assert.Equal(t, 33.33, shares[idC])
	})

	t.Run("deterministic regardless of participant order", func(t *testing.T) {
		spec1 := Spec{PayerID: idB, Participants: []uuid.UUID{idA, idB, idC}}
		spec2 := Spec{PayerID: idB, Participants: []uuid.UUID{idC, idB, idA}}

		shares1, err := Resolve(100.00, shared.SplitMethodEqual, spec1)
		require.NoError(t, err)
		shares2, err := Resolve(100.00, shared.SplitMethodEqual, spec2)
		require.NoError(t, err)
		assert.Equal(t, shares1, shares2)
	})

	t.Run("single participant", func(t *testing.T) {
		shares, err := Resolve(42.37, shared.SplitMethodEqual, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA},
		})
		require.NoError(t, err)
		assert.Equal(t, 42.37, shares[idA])
	})

	t.Run("zero amount", func(t *testing.T) {
		shares, err := Resolve(0, shared.SplitMethodEqual, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
		})
		require.NoError(t, err)
		assert.Equal(t, 0.0, shares[idA])
		assert.Equal(t, 0.0, shares[idB])
	})
}

func TestResolve_CustomAmount(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		shares, err := Resolve(50.00, shared.SplitMethodCustomAmount, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
			Values:       map[uuid.UUID]float64{idA: 20.00, idB: 30.00},
		})
		require.NoError(t, err)
		assert.Equal(t, 20.00, shares[idA])
		assert.Equal(t, 30.00, shares[idB])
	})

	t.Run("sum within tolerance accepted", func(t *testing.T) {
		_, err := Resolve(50.00, shared.SplitMethodCustomAmount, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
			Values:       map[uuid.UUID]float64{idA: 20.00, idB: 30.009},
		})
		assert.NoError(t, err)
	})

	t.Run("sum outside tolerance rejected", func(t *testing.T) {
		_, err := Resolve(50.00, shared.SplitMethodCustomAmount, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
			Values:       map[uuid.UUID]float64{idA: 20.00, idB: 30.02},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit{})
	})

	t.Run("missing participant value rejected", func(t *testing.T) {
		_, err := Resolve(50.00, shared.SplitMethodCustomAmount, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
			Values:       map[uuid.UUID]float64{idA: 50.00},
		})
		var invalidErr ErrInvalidSplit
		require.ErrorAs(t, err, &invalidErr)
		assert.Contains(t, invalidErr.Reason, "missing amount")
	})

	t.Run("negative value rejected", func(t *testing.T) {
		_, err := Resolve(50.00, shared.SplitMethodCustomAmount, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
			Values:       map[uuid.UUID]float64{idA: 60.00, idB: -10.00},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit{})
	})
}

func TestResolve_CustomPercentage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		shares, err := Resolve(80.00, shared.SplitMethodCustomPercentage, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB, idC},
			Values:       map[uuid.UUID]float64{idA: 50, idB: 25, idC: 25},
		})
		require.NoError(t, err)
		assert.Equal(t, 40.00, shares[idA])
		assert.Equal(t, 20.00, shares[idB])
		assert.Equal(t, 20.00, shares[idC])
	})

	t.Run("percentages within tolerance accepted", func(t *testing.T) {
		_, err := Resolve(80.00, shared.SplitMethodCustomPercentage, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
			Values:       map[uuid.UUID]float64{idA: 50.05, idB: 50.00},
		})
		assert.NoError(t, err)
	})

	t.Run("percentages outside tolerance rejected", func(t *testing.T) {
		_, err := Resolve(80.00, shared.SplitMethodCustomPercentage, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
			Values:       map[uuid.UUID]float64{idA: 50, idB: 49},
		})
		var invalidErr ErrInvalidSplit
		require.ErrorAs(t, err, &invalidErr)
		assert.Contains(t, invalidErr.Reason, "sum to 100")
	})

	t.Run("missing percentage rejected", func(t *testing.T) {
		_, err := Resolve(80.00, shared.SplitMethodCustomPercentage, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
			Values:       map[uuid.UUID]float64{idA: 100},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit{})
	})
}

func TestResolve_CommonRejections(t *testing.T) {
	t.Run("empty participants", func(t *testing.T) {
		_, err := Resolve(10.00, shared.SplitMethodEqual, Spec{PayerID: idA})
		assert.ErrorIs(t, err, ErrInvalidSplit{})
	})

	t.Run("duplicate participants", func(t *testing.T) {
		_, err := Resolve(10.00, shared.SplitMethodEqual, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB, idA},
		})
		var invalidErr ErrInvalidSplit
		require.ErrorAs(t, err, &invalidErr)
		assert.Contains(t, invalidErr.Reason, "duplicate")
	})

	t.Run("negative amount", func(t *testing.T) {
		_, err := Resolve(-5.00, shared.SplitMethodEqual, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit{})
	})

	t.Run("unknown split method", func(t *testing.T) {
		_, err := Resolve(10.00, shared.SplitMethod("BOGUS"), Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
		})
		var invalidErr ErrInvalidSplit
		require.ErrorAs(t, err, &invalidErr)
		assert.Contains(t, invalidErr.Reason, "unknown split method")
	})

	t.Run("ErrInvalidSplit does not match unrelated errors", func(t *testing.T) {
		assert.False(t, errors.Is(errors.New("boom"), ErrInvalidSplit{}))
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid spec passes", func(t *testing.T) {
		err := Validate(50.00, shared.SplitMethodCustomAmount, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
			Values:       map[uuid.UUID]float64{idA: 25.00, idB: 25.00},
		})
		assert.NoError(t, err)
	})

	t.Run("invalid spec fails", func(t *testing.T) {
		err := Validate(50.00, shared.SplitMethodCustomAmount, Spec{
			PayerID:      idA,
			Participants: []uuid.UUID{idA, idB},
			Values:       map[uuid.UUID]float64{idA: 1.00, idB: 1.00},
		})
		assert.ErrorIs(t, err, ErrInvalidSplit{})
	})
}
